package address

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/transform"
)

const (
	// RecordSeparator separates regions of a multi-region block.
	RecordSeparator = "|"

	// FieldSeparator separates the five fields of a record.
	FieldSeparator = ","

	fieldCount = 5
)

// Address locates one region of a block on a page image.
type Address struct {
	Page   int
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Width returns the horizontal extent of the region.
func (a Address) Width() float64 { return a.Right - a.Left }

// Height returns the vertical extent of the region.
func (a Address) Height() float64 { return a.Bottom - a.Top }

// Region converts the address to the solver's target region.
func (a Address) Region() transform.Region {
	return transform.Region{Left: a.Left, Top: a.Top, Width: a.Width(), Height: a.Height()}
}

// String formats a single record.
func (a Address) String() string {
	return strings.Join([]string{
		strconv.Itoa(a.Page),
		formatFloat(a.Left),
		formatFloat(a.Top),
		formatFloat(a.Right),
		formatFloat(a.Bottom),
	}, FieldSeparator)
}

// Parse decodes an address attribute into its records, in order.
// It fails with an errors.ErrCodeParse error when a record has fewer than
// five fields, the page is not a non-negative integer, or a coordinate is not
// a finite number. Extra fields after the fifth are ignored.
func Parse(s string) ([]Address, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New(errors.ErrCodeParse, "empty address")
	}
	records := strings.Split(s, RecordSeparator)
	out := make([]Address, 0, len(records))
	for i, rec := range records {
		a, err := parseRecord(rec)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "record %d of %q", i, s)
		}
		out = append(out, a)
	}
	return out, nil
}

// First parses s and returns its first record.
func First(s string) (Address, error) {
	addrs, err := Parse(s)
	if err != nil {
		return Address{}, err
	}
	return addrs[0], nil
}

// Format serializes addresses back into the attribute form accepted by Parse.
func Format(addrs []Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, RecordSeparator)
}

func parseRecord(rec string) (Address, error) {
	fields := strings.Split(rec, FieldSeparator)
	if len(fields) < fieldCount {
		return Address{}, errors.New(errors.ErrCodeParse, "want %d fields, got %d", fieldCount, len(fields))
	}

	page, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Address{}, errors.New(errors.ErrCodeParse, "page %q is not an integer", fields[0])
	}
	if page < 0 {
		return Address{}, errors.New(errors.ErrCodeParse, "page %d is negative", page)
	}

	var coords [4]float64
	for i := range coords {
		raw := strings.TrimSpace(fields[i+1])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Address{}, errors.New(errors.ErrCodeParse, "field %d %q is not a finite number", i+1, raw)
		}
		coords[i] = v
	}

	return Address{
		Page:   page,
		Left:   coords[0],
		Top:    coords[1],
		Right:  coords[2],
		Bottom: coords[3],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
