package render

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Colormap is a sequential colormap sampled through a fixed size lookup table.
type Colormap struct {
	Name   string
	stops  []drawing.Color
	levels int
}

func hexStops(hex ...string) []drawing.Color {
	out := make([]drawing.Color, len(hex))
	for i, h := range hex {
		out[i] = drawing.ColorFromHex(h)
	}
	return out
}

// Cividis and Viridis use 64 levels.
var (
	Cividis = Colormap{Name: "cividis", levels: 64, stops: hexStops(
		"00224E", "123570", "3B496C", "575D6D", "707173", "8A8678", "A59C74", "C3B369", "FEE838")}
	Viridis = Colormap{Name: "viridis", levels: 64, stops: hexStops(
		"440154", "482878", "3E4989", "31688E", "26828E", "1F9E89", "35B779", "6ECE58", "FDE725")}
)

// Named colors.
var (
	SteelBlue = drawing.ColorFromHex("4682B4")
	SeaGreen  = drawing.ColorFromHex("2E8B57")
	LightGrey = drawing.ColorFromHex("D3D3D3")
	DarkGrey  = drawing.ColorFromHex("404040")
)

// At returns the color for x in [0,1]. x is first snapped to the lookup table
// entry it falls in.
func (c Colormap) At(x float64) drawing.Color {
	if math.IsNaN(x) {
		x = 0
	}
	x = math.Max(0, math.Min(1, x))
	k := int(x * float64(c.levels))
	if k >= c.levels {
		k = c.levels - 1
	}
	pos := float64(k) / float64(c.levels-1) * float64(len(c.stops)-1)
	lo := int(math.Floor(pos))
	if lo >= len(c.stops)-1 {
		return c.stops[len(c.stops)-1]
	}
	f := pos - float64(lo)
	a, b := c.stops[lo], c.stops[lo+1]
	mix := func(u, v uint8) uint8 { return uint8(math.Round(float64(u) + f*(float64(v)-float64(u)))) }
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// Linspace samples n evenly spaced colors between lo and hi inclusive.
func Linspace(c Colormap, lo, hi float64, n int) []drawing.Color {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []drawing.Color{c.At(lo)}
	}
	out := make([]drawing.Color, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = c.At(lo + float64(i)*step)
	}
	return out
}

// withAlpha applies an opacity in [0,1].
func withAlpha(c drawing.Color, alpha float64) drawing.Color {
	return c.WithAlpha(uint8(math.Round(math.Max(0, math.Min(1, alpha)) * 255)))
}
