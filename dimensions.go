package imgnamer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Dimensions is a (width, height) pair in pixels. The zero value means unknown.
type Dimensions struct {
	Width  int
	Height int
}

// Known reports whether any component was reported.
func (d Dimensions) Known() bool {
	return d.Width != 0 || d.Height != 0
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

func (d Dimensions) norm() float64 {
	return math.Hypot(float64(d.Width), float64(d.Height))
}

// DimensionSimilarity compares two dimension pairs as 2D vectors:
// 1 - |a-b| / max(|a|, |b|), clamped to [0, 1].
// Two zero pairs are identical (1.0). Negative components yield ErrInvalidDimension.
func DimensionSimilarity(a, b Dimensions) (float64, error) {
	if a.Width < 0 || a.Height < 0 || b.Width < 0 || b.Height < 0 {
		return 0, fmt.Errorf("%w: %s vs %s", ErrInvalidDimension, a, b)
	}

	denom := math.Max(a.norm(), b.norm())
	if denom == 0 {
		return 1, nil
	}

	diff := Dimensions{Width: a.Width - b.Width, Height: a.Height - b.Height}.norm()
	sim := 1 - diff/denom
	// Orthogonal non-negative vectors can push this down to 1-sqrt(2).
	return math.Max(0, math.Min(1, sim)), nil
}

// ReadDimensions returns the displayed pixel dimensions of the image at path.
// Width and height are swapped when EXIF orientation says the image is rotated
// by 90 degrees. Unknown layouts yield ErrUnsupportedFormat.
func ReadDimensions(path string) (Dimensions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dimensions{}, err
	}
	return decodeDimensions(data)
}

func decodeDimensions(data []byte) (Dimensions, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Dimensions{}, ErrUnsupportedFormat
		}
		return Dimensions{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	dims := Dimensions{Width: cfg.Width, Height: cfg.Height}
	if swapsAxes(ImageOrientation(data)) {
		dims.Width, dims.Height = dims.Height, dims.Width
	}
	return dims, nil
}

// swapsAxes reports whether an EXIF orientation value transposes the image.
func swapsAxes(orientation int) bool {
	return orientation >= 5 && orientation <= 8
}
