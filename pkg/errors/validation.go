package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidatePageRef validates a page image reference taken from a layout document.
// References may be http(s) URLs, data URIs or paths relative to the document.
//
// Relative paths are rejected when they escape the document directory:
//   - No empty references
//   - No control characters or null bytes
//   - No parent-directory traversal for local paths
//   - Maximum length of 4096 characters for non data URIs
func ValidatePageRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidDocument, "page reference cannot be empty")
	}
	if strings.HasPrefix(ref, "data:") {
		return nil
	}
	if len(ref) > 4096 {
		return New(ErrCodeInvalidDocument, "page reference too long (max 4096 characters)")
	}
	for _, r := range ref {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "page reference contains invalid control characters")
		}
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return nil
	}
	if filepath.IsAbs(ref) {
		return nil
	}
	clean := filepath.ToSlash(filepath.Clean(ref))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return New(ErrCodeInvalidDocument, "page reference escapes the document directory: %q", ref)
	}
	return nil
}

// sessionIDPattern matches canonical UUID strings.
var sessionIDPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateSessionID checks that id looks like a session identifier issued by the server.
func ValidateSessionID(id string) error {
	if !sessionIDPattern.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid session id: %q", id)
	}
	return nil
}
