// Package photo inspects and scales the author photo referenced by the site
// configuration.
package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// MaxWidth caps any requested width.
	MaxWidth    = 800
	jpegQuality = 85
)

// ErrInvalidWidth is returned for widths outside 1..MaxWidth.
var ErrInvalidWidth = errors.New("invalid width")

// Info describes a decoded image.
type Info struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Inspect reads just enough of r to report its dimensions and format.
func Inspect(r io.Reader) (Info, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode image config: %w", err)
	}
	return Info{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// Resize decodes src and re-encodes it as JPEG no wider than width, keeping
// the aspect ratio. Narrower images are re-encoded at their own size.
func Resize(src io.Reader, width int) ([]byte, Info, error) {
	if width < 1 || width > MaxWidth {
		return nil, Info{}, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > width {
		newH := h * width / w
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = width, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, Info{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), Info{Width: w, Height: h, Format: "jpeg"}, nil
}
