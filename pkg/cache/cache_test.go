package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	c := Discard
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("Discard.Get should always return a nil miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("Discard should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "page:1"); err != nil || hit {
		t.Fatalf("empty cache Get = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "page:1", []byte("png-bytes"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "page:1")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("Get = %q, want png-bytes", data)
	}

	if err := c.Delete(ctx, "page:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "page:1"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "page:1"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should be a miss")
	}

	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("ttl 0 entry should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	fc := c.(*FileCache)

	path := fc.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry Get = hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestClearDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := ClearDir(dir)
	if err != nil {
		t.Fatalf("ClearDir: %v", err)
	}
	if n != 3 {
		t.Errorf("removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived ClearDir")
	}
	left, _ := os.ReadDir(dir)
	if len(left) != 0 {
		t.Errorf("%d shard directories left", len(left))
	}

	if n, err := ClearDir(filepath.Join(dir, "missing")); n != 0 || err != nil {
		t.Errorf("missing dir = %d, %v", n, err)
	}
}

func TestHash(t *testing.T) {
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := Hash([]byte("hello")); got != want {
		t.Errorf("Hash(hello) = %s, want %s", got, want)
	}
}

func TestDocumentScope(t *testing.T) {
	a := DocumentScope([]byte(`{"pages":["p1.png"]}`))
	if a != "doc:"+Hash([]byte(`{"pages":["p1.png"]}`))[:12]+":" {
		t.Errorf("DocumentScope = %q", a)
	}
	if a == DocumentScope([]byte(`{"pages":["p2.png"]}`)) {
		t.Error("edited documents should get a fresh scope")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	a := k.PageKey("https://example.org/p/page-1.png")
	b := k.PageKey("https://example.org/p/page-2.png")
	if a == b {
		t.Error("different refs should produce different keys")
	}
	if a != k.PageKey("https://example.org/p/page-1.png") {
		t.Error("PageKey should be deterministic")
	}
	if !strings.HasPrefix(a, "page:") || len(a) != len("page:")+64 {
		t.Errorf("PageKey = %q, want page: and a 64 digit hash", a)
	}
	long := "data:image/png;base64," + strings.Repeat("A", 1<<16)
	if got := k.PageKey(long); len(got) != len(a) {
		t.Errorf("PageKey of a data URI has length %d, want %d", len(got), len(a))
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "doc:abc:")
	key := scoped.PageKey("page-1.png")
	if !strings.HasPrefix(key, "doc:abc:page:") {
		t.Errorf("ScopedKeyer PageKey should be prefixed: %s", key)
	}
	if strings.TrimPrefix(key, "doc:abc:") != NewDefaultKeyer().PageKey("page-1.png") {
		t.Error("ScopedKeyer should only add the prefix")
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().PageKey("x")
	if got := scoped.PageKey("x"); got != want {
		t.Errorf("PageKey with nil inner = %s, want %s", got, want)
	}
}

// TestRedisCache runs against a live server when PAPERSYNC_TEST_REDIS is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("PAPERSYNC_TEST_REDIS")
	if addr == "" {
		t.Skip("PAPERSYNC_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: "papersync-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry still present after Delete")
	}
}
