package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DocumentScope returns the key prefix for pages of the document whose
// file contents are raw. Editing the document moves its pages to a fresh
// scope, so stale entries are never read back.
func DocumentScope(raw []byte) string {
	return "doc:" + Hash(raw)[:12] + ":"
}

// pageKey hashes ref, which may be a long data URI, into a fixed-length key.
func pageKey(ref string) string {
	return "page:" + Hash([]byte(ref))
}
