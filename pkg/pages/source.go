package pages

import (
	"context"
	"encoding/base64"
	"image"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/papersync/pkg/cache"
	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/httputil"
)

// Source provides page images in reading order.
type Source interface {
	// Len returns the number of pages.
	Len() int
	// Ref returns a printable reference for page i (URL, path, or label).
	Ref(i int) string
	// Open loads and decodes page i. It may block on I/O.
	Open(ctx context.Context, i int) (image.Image, error)
}

// FetchSource opens pages by URL or local path.
type FetchSource struct {
	refs   []string
	dir    string
	client *http.Client
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
}

// FetchOption configures a FetchSource.
type FetchOption func(*FetchSource)

// WithBaseDir resolves relative paths against dir.
func WithBaseDir(dir string) FetchOption {
	return func(s *FetchSource) { s.dir = dir }
}

// WithHTTPClient sets the client used for URLs.
func WithHTTPClient(c *http.Client) FetchOption {
	return func(s *FetchSource) { s.client = c }
}

// WithCache stores fetched URL bodies in c under keys from k.
// A nil keyer uses the default.
func WithCache(c cache.Cache, k cache.Keyer, ttl time.Duration) FetchOption {
	return func(s *FetchSource) {
		s.cache = c
		if k != nil {
			s.keyer = k
		}
		s.ttl = ttl
	}
}

// NewFetchSource creates a source over refs. Data URIs are accepted too,
// so a document may mix embedded and linked pages.
func NewFetchSource(refs []string, opts ...FetchOption) *FetchSource {
	s := &FetchSource{
		refs:   refs,
		client: http.DefaultClient,
		cache:  cache.Discard,
		keyer:  cache.NewDefaultKeyer(),
		ttl:    cache.DefaultPageTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len implements Source.
func (s *FetchSource) Len() int { return len(s.refs) }

// Ref implements Source.
func (s *FetchSource) Ref(i int) string {
	if i < 0 || i >= len(s.refs) {
		return ""
	}
	ref := s.refs[i]
	if strings.HasPrefix(ref, "data:") && len(ref) > 32 {
		return ref[:32] + "..."
	}
	return ref
}

// Open implements Source.
func (s *FetchSource) Open(ctx context.Context, i int) (image.Image, error) {
	if i < 0 || i >= len(s.refs) {
		return nil, errors.New(errors.ErrCodePageNotFound, "page %d of %d", i, len(s.refs))
	}
	ref := s.refs[i]
	switch {
	case strings.HasPrefix(ref, "data:"):
		data, err := ParseDataURI(ref)
		if err != nil {
			return nil, err
		}
		return DecodeBytes(data)
	case isURL(ref):
		data, err := s.fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		return DecodeBytes(data)
	default:
		return s.openFile(ref)
	}
}

func (s *FetchSource) fetch(ctx context.Context, ref string) ([]byte, error) {
	key := s.keyer.PageKey(ref)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	var data []byte
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = httputil.Fetch(ctx, s.client, ref, 0)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "fetch %s", ref)
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", ref)
	}
	// A cache write failure only costs a refetch next time.
	_ = s.cache.Set(ctx, key, data, s.ttl)
	return data, nil
}

func (s *FetchSource) openFile(ref string) (image.Image, error) {
	path := ref
	if !filepath.IsAbs(path) && s.dir != "" {
		path = filepath.Join(s.dir, path)
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open page")
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

func isURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// EmbeddedSource serves pages from memory.
type EmbeddedSource struct {
	pages [][]byte
}

// NewEmbeddedSource creates a source over encoded image bytes.
func NewEmbeddedSource(pages ...[]byte) *EmbeddedSource {
	return &EmbeddedSource{pages: pages}
}

// NewDataURISource decodes every data URI up front; a malformed URI fails
// the whole source.
func NewDataURISource(uris []string) (*EmbeddedSource, error) {
	pages := make([][]byte, len(uris))
	for i, u := range uris {
		data, err := ParseDataURI(u)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "page %d", i)
		}
		pages[i] = data
	}
	return &EmbeddedSource{pages: pages}, nil
}

// Len implements Source.
func (s *EmbeddedSource) Len() int { return len(s.pages) }

// Ref implements Source.
func (s *EmbeddedSource) Ref(i int) string { return "embedded:" + strconv.Itoa(i) }

// Open implements Source.
func (s *EmbeddedSource) Open(ctx context.Context, i int) (image.Image, error) {
	if i < 0 || i >= len(s.pages) {
		return nil, errors.New(errors.ErrCodePageNotFound, "page %d of %d", i, len(s.pages))
	}
	return DecodeBytes(s.pages[i])
}

// ParseDataURI returns the payload of a data URI such as
// "data:image/png;base64,iVBOR...". Non-base64 payloads are percent-decoded.
func ParseDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "data URI has no payload")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "data URI payload")
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "data URI payload")
	}
	return []byte(data), nil
}

var (
	_ Source = (*FetchSource)(nil)
	_ Source = (*EmbeddedSource)(nil)
)
