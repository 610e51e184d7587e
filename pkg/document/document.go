package document

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/papersync/pkg/address"
	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/pages"
)

// Kind is the kind of transcript block.
type Kind string

// Block kinds.
const (
	KindText    Kind = "text"
	KindHeading Kind = "heading"
	KindFigure  Kind = "figure"
)

// Block is one transcript block.
type Block struct {
	ID      string  `json:"id,omitempty"`
	Kind    Kind    `json:"kind,omitempty"`
	Address string  `json:"address"`
	Top     float64 `json:"top,omitempty"`
	Bottom  float64 `json:"bottom,omitempty"`
	Text    string  `json:"text,omitempty"`
}

// Measured reports whether the block has a laid-out extent.
func (b Block) Measured() bool { return b.Bottom > b.Top }

// Document is a parsed layout document.
type Document struct {
	Title        string   `json:"title,omitempty"`
	HeaderHeight float64  `json:"header_height,omitempty"`
	Pages        []string `json:"pages,omitempty"`
	PagesGlob    string   `json:"pages_glob,omitempty"`
	Blocks       []Block  `json:"blocks"`

	// Dir is the directory relative page paths resolve against.
	Dir string `json:"-"`
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout document")
	}
	if err != nil {
		return nil, err
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes and validates a document. Relative page paths resolve
// against dir.
func Parse(data []byte, dir string) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode layout document")
	}
	d.Dir = dir
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the document's structure. Block addresses are not
// checked here: a malformed address only disables its own block.
func (d *Document) Validate() error {
	if len(d.Pages) == 0 && d.PagesGlob == "" {
		return errors.New(errors.ErrCodeInvalidDocument, "document lists no pages")
	}
	if len(d.Pages) > 0 && d.PagesGlob != "" {
		return errors.New(errors.ErrCodeInvalidDocument, "pages and pages_glob are mutually exclusive")
	}
	for i, ref := range d.Pages {
		if err := errors.ValidatePageRef(ref); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "page %d", i)
		}
	}
	if d.HeaderHeight < 0 {
		return errors.New(errors.ErrCodeInvalidDocument, "negative header_height %v", d.HeaderHeight)
	}
	for i, b := range d.Blocks {
		if b.Bottom < b.Top {
			return errors.New(errors.ErrCodeInvalidDocument, "block %d: bottom %v above top %v", i, b.Bottom, b.Top)
		}
		switch b.Kind {
		case "", KindText, KindHeading, KindFigure:
		default:
			return errors.New(errors.ErrCodeInvalidDocument, "block %d: unknown kind %q", i, b.Kind)
		}
	}
	return nil
}

// Problem is a block whose address cannot be used.
type Problem struct {
	Block int
	Err   error
}

// Check parses every block address and reports the malformed ones.
func (d *Document) Check() []Problem {
	var out []Problem
	for i, b := range d.Blocks {
		if _, err := address.First(b.Address); err != nil {
			out = append(out, Problem{Block: i, Err: err})
		}
	}
	return out
}

// PageRefs returns the page references in reading order, expanding
// pages_glob against Dir.
func (d *Document) PageRefs() ([]string, error) {
	if d.PagesGlob == "" {
		return d.Pages, nil
	}
	refs, err := pages.Glob(d.Dir, d.PagesGlob)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "pages_glob %q matches no files", d.PagesGlob)
	}
	return refs, nil
}

// Source returns the page source for the document. A document whose pages
// are all data URIs gets an embedded source; anything else is fetched.
func (d *Document) Source(opts ...pages.FetchOption) (pages.Source, error) {
	refs, err := d.PageRefs()
	if err != nil {
		return nil, err
	}
	embedded := true
	for _, ref := range refs {
		if !strings.HasPrefix(ref, "data:") {
			embedded = false
			break
		}
	}
	if embedded {
		return pages.NewDataURISource(refs)
	}
	opts = append([]pages.FetchOption{pages.WithBaseDir(d.Dir)}, opts...)
	return pages.NewFetchSource(refs, opts...), nil
}

// Laid returns the blocks with extents, stacking them when any block is
// unmeasured.
func (d *Document) Laid(opts ...StackOption) []Block {
	for _, b := range d.Blocks {
		if !b.Measured() {
			return Stack(d.Blocks, opts...)
		}
	}
	return d.Blocks
}
