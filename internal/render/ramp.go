package render

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Ramp maps a value in [0,1] to an RGB color. 0 must be a cool (blue leaning)
// color and 1 a warm (red leaning) one.
type Ramp func(v float64) (r, g, b uint8)

// Names of the built-in ramps.
const (
	RampJet = "jet"
	RampHCL = "hcl"
)

// RampByName resolves a built-in ramp.
func RampByName(name string) (Ramp, error) {
	switch name {
	case "", RampJet:
		return Jet, nil
	case RampHCL:
		return HCL, nil
	default:
		return nil, fmt.Errorf("unknown color ramp %q", name)
	}
}

type segment struct{ x, y float64 }

// Anchor points of the classic "jet" colormap, per channel.
var (
	jetRed   = []segment{{0, 0}, {0.35, 0}, {0.66, 1}, {0.89, 1}, {1, 0.5}}
	jetGreen = []segment{{0, 0}, {0.125, 0}, {0.375, 1}, {0.64, 1}, {0.91, 0}, {1, 0}}
	jetBlue  = []segment{{0, 0.5}, {0.11, 1}, {0.34, 1}, {0.65, 0}, {1, 0}}
)

const jetLevels = 256

var jetLUT = buildLUT(jetLevels)

func buildLUT(n int) [][3]uint8 {
	lut := make([][3]uint8, n)
	for i := range lut {
		x := float64(i) / float64(n-1)
		lut[i] = [3]uint8{
			uint8(interpolate(jetRed, x) * 255),
			uint8(interpolate(jetGreen, x) * 255),
			uint8(interpolate(jetBlue, x) * 255),
		}
	}
	return lut
}

func interpolate(segs []segment, x float64) float64 {
	for i := 1; i < len(segs); i++ {
		if x <= segs[i].x {
			a, b := segs[i-1], segs[i]
			return a.y + (x-a.x)/(b.x-a.x)*(b.y-a.y)
		}
	}
	return segs[len(segs)-1].y
}

// Jet is a blue-cyan-yellow-red rainbow quantized to 256 levels. NaN maps to
// the color of 0.
func Jet(v float64) (uint8, uint8, uint8) {
	if math.IsNaN(v) {
		v = 0
	}
	i := int(clip01(v) * jetLevels)
	if i >= jetLevels {
		i = jetLevels - 1
	}
	c := jetLUT[i]
	return c[0], c[1], c[2]
}

var (
	hclCold = colorful.Color{R: 0, G: 0, B: 1}
	hclWarm = colorful.Color{R: 1, G: 0, B: 0}
)

// HCL blends blue into red through the HCL color space.
func HCL(v float64) (uint8, uint8, uint8) {
	if math.IsNaN(v) {
		v = 0
	}
	return hclCold.BlendHcl(hclWarm, clip01(v)).Clamped().RGB255()
}
