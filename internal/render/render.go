// Package render turns an assembled grid into an encoded raster image.
//
// Three modes are supported:
//   - raw: values in [0,1] scaled to 8-bit gray
//   - linear: values kept as 32-bit floats
//   - color: contrast stretch followed by a color ramp, 8-bit RGB
package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/woozymasta/meshraster/internal/grid"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyDynamicRange is returned by color mode when no cell is strictly positive.
var ErrEmptyDynamicRange = errors.New("empty dynamic range")

// Mode selects how grid values are encoded.
type Mode string

// Supported modes.
const (
	ModeRaw    Mode = "raw"
	ModeLinear Mode = "linear"
	ModeColor  Mode = "color"
)

// DefaultScaleFactor is the contrast multiplier used by color mode.
const DefaultScaleFactor = 8

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeRaw, ModeLinear, ModeColor:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Kind is the pixel encoding of an Image.
type Kind int

// Pixel encodings.
const (
	Gray8 Kind = iota
	Float32
	RGB8
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Gray8:
		return "gray8"
	case Float32:
		return "float32"
	case RGB8:
		return "rgb8"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Image is an encoded raster in row-major order, row 0 being the north edge.
// Gray8 and RGB8 images use Pix, Float32 images use Float.
type Image struct {
	Pix    []uint8
	Float  []float32
	Width  int
	Height int
	Kind   Kind
}

// Channels returns the number of samples per pixel.
func (img *Image) Channels() int {
	if img.Kind == RGB8 {
		return 3
	}
	return 1
}

// Options control Normalize.
type Options struct {
	Ramp        Ramp // defaults to Jet
	Mode        Mode
	ScaleFactor float64 // color mode only, defaults to DefaultScaleFactor
}

// Normalize encodes an already flipped grid according to opts.Mode.
func Normalize(g *grid.Grid, opts Options) (*Image, error) {
	switch opts.Mode {
	case ModeRaw:
		return encodeRaw(g), nil
	case ModeLinear:
		return encodeLinear(g), nil
	case ModeColor:
		return encodeColor(g, opts)
	default:
		return nil, fmt.Errorf("unknown mode %q", opts.Mode)
	}
}

// encodeRaw clamps to [0,255] instead of letting out of range values wrap.
func encodeRaw(g *grid.Grid) *Image {
	values := g.Values()
	img := &Image{Kind: Gray8, Width: g.Size(), Height: g.Size(), Pix: make([]uint8, len(values))}

	for i, v := range values {
		img.Pix[i] = toByte(v * 255)
	}

	return img
}

func encodeLinear(g *grid.Grid) *Image {
	values := g.Values()
	img := &Image{Kind: Float32, Width: g.Size(), Height: g.Size(), Float: make([]float32, len(values))}

	for i, v := range values {
		if isFinite(v) {
			img.Float[i] = float32(v)
		}
	}

	return img
}

func encodeColor(g *grid.Grid, opts Options) (*Image, error) {
	values := g.Values()

	minValue, maxValue, err := DynamicRange(values)
	if err != nil {
		return nil, err
	}

	ramp := opts.Ramp
	if ramp == nil {
		ramp = Jet
	}
	scale := opts.ScaleFactor
	if scale <= 0 {
		scale = DefaultScaleFactor
	}

	img := &Image{Kind: RGB8, Width: g.Size(), Height: g.Size(), Pix: make([]uint8, len(values)*3)}
	span := maxValue - minValue

	for i, v := range values {
		if !isFinite(v) {
			continue
		}

		s := (v - minValue) / span * scale
		if math.IsNaN(s) {
			continue
		}

		r, gr, b := ramp(clip01(s))
		img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2] = r, gr, b
	}

	return img, nil
}

// DynamicRange returns the smallest strictly positive value and the largest
// value among finite cells.
func DynamicRange(values []float64) (float64, float64, error) {
	finite := make([]float64, 0, len(values))
	positive := make([]float64, 0, len(values))

	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		finite = append(finite, v)
		if v > 0 {
			positive = append(positive, v)
		}
	}

	if len(positive) == 0 {
		return 0, 0, fmt.Errorf("%w: no strictly positive cell among %d", ErrEmptyDynamicRange, len(values))
	}

	return floats.Min(positive), floats.Max(finite), nil
}

func clip01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func toByte(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
