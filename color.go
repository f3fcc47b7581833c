package tessel

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a region colour in the Oklab colour space. Averaging and mixing
// happen in Oklab, which keeps blends perceptually even.
type Color struct {
	L, A, B float64
}

// White is the colour of a fresh tessellation.
var White = Color{L: 1}

// FromSRGB converts sRGB components in the [0, 1] range to Oklab.
func FromSRGB(r, g, b float64) Color {
	l, a, bb := colorful.Color{R: r, G: g, B: b}.OkLab()
	return Color{L: l, A: a, B: bb}
}

// ParseHex parses a "#rgb" or "#rrggbb" colour.
func ParseHex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("tessel: invalid colour: %w", err)
	}
	return FromSRGB(c.R, c.G, c.B), nil
}

func (c Color) srgb() colorful.Color {
	return colorful.OkLab(c.L, c.A, c.B).Clamped()
}

// SRGB returns the 8 bit sRGB components of c. Colours outside of the sRGB
// gamut are clamped.
func (c Color) SRGB() (r, g, b uint8) {
	return c.srgb().RGB255()
}

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.srgb().RGBA()
}

// Hex returns the "#rrggbb" representation of c.
func (c Color) Hex() string {
	return c.srgb().Hex()
}

// Add returns the component wise sum of c and o.
func (c Color) Add(o Color) Color {
	return Color{c.L + o.L, c.A + o.A, c.B + o.B}
}

// Scale multiplies every component of c by f.
func (c Color) Scale(f float64) Color {
	return Color{c.L * f, c.A * f, c.B * f}
}

// Mix interpolates linearly between c (t = 0) and o (t = 1).
func (c Color) Mix(o Color, t float64) Color {
	return Color{
		L: c.L + (o.L-c.L)*t,
		A: c.A + (o.A-c.A)*t,
		B: c.B + (o.B-c.B)*t,
	}
}

// String implements fmt.Stringer.
func (c Color) String() string {
	return c.Hex()
}
