package pages

import (
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"

	"github.com/matzehuels/papersync/pkg/errors"
)

// Glob expands pattern (doublestar syntax, e.g. "pages/**/page-*.png")
// relative to dir and returns the matches in natural order, so that
// page-2.png sorts before page-10.png.
func Glob(dir, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid glob pattern %q", pattern)
	}
	if dir == "" {
		dir = "."
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "glob %q", pattern)
	}
	sort.Sort(natural.StringSlice(matches))
	return matches, nil
}
