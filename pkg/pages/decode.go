package pages

import (
	"bufio"
	"bytes"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/matzehuels/papersync/pkg/errors"
)

// Page dimension limits. Scanned pages at 600dpi stay well below these.
const (
	MaxPageWidth  = 8192
	MaxPageHeight = 8192
)

// Decode reads one page image. The header is checked against the size
// limits before the pixels are decoded.
func Decode(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	var head bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(br, &head))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupportedFormat, err, "read image header")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s image has empty size %dx%d", format, cfg.Width, cfg.Height)
	}
	if cfg.Width > MaxPageWidth || cfg.Height > MaxPageHeight {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%s image too large: %dx%d (max %dx%d)", format, cfg.Width, cfg.Height, MaxPageWidth, MaxPageHeight)
	}

	img, _, err := image.Decode(io.MultiReader(&head, br))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s image", format)
	}
	return img, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (image.Image, error) {
	return Decode(bytes.NewReader(data))
}
