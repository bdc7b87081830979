package render

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Output formats supported by the drawing surface.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// Options control how figures are rasterized. Sizes are in inches and font
// sizes in points, both scaled by DPI.
type Options struct {
	Width         float64 `mapstructure:"width"`
	Height        float64 `mapstructure:"height"`
	DPI           int     `mapstructure:"dpi"`
	Format        string  `mapstructure:"format"`
	TitleFontSize float64 `mapstructure:"title_font_size"`
	LabelFontSize float64 `mapstructure:"label_font_size"`
	AlphaDark     float64 `mapstructure:"alpha_dark"`
	AlphaLight    float64 `mapstructure:"alpha_light"`
	BarWidth      float64 `mapstructure:"bar_width"`
	Footer        bool    `mapstructure:"footer"`
}

// DefaultOptions gives 7x7 in figures at 200 DPI.
func DefaultOptions() Options {
	return Options{
		Width:         7,
		Height:        7,
		DPI:           200,
		Format:        FormatPNG,
		TitleFontSize: 14,
		LabelFontSize: 12,
		AlphaDark:     0.85,
		AlphaLight:    0.55,
		BarWidth:      0.7,
	}
}

// Validate rejects options the surface cannot honor.
func (o Options) Validate() error {
	switch strings.ToLower(o.Format) {
	case FormatPNG, FormatSVG:
	default:
		return errors.Errorf("unsupported image format %q (want png or svg)", o.Format)
	}
	if o.DPI <= 0 {
		return errors.Errorf("dpi must be positive, got %d", o.DPI)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return errors.Errorf("figure size must be positive, got %gx%g in", o.Width, o.Height)
	}
	if o.BarWidth <= 0 || o.BarWidth > 1 {
		return errors.Errorf("bar width must be in (0,1], got %g", o.BarWidth)
	}
	for name, a := range map[string]float64{"alpha_dark": o.AlphaDark, "alpha_light": o.AlphaLight} {
		if a < 0 || a > 1 {
			return errors.Errorf("%s must be in [0,1], got %g", name, a)
		}
	}
	if o.TitleFontSize <= 0 || o.LabelFontSize <= 0 {
		return errors.New("font sizes must be positive")
	}
	return nil
}

// Ext returns the file extension for the configured format.
func (o Options) Ext() string { return strings.ToLower(o.Format) }

// Pixels converts a size in inches to pixels at the configured DPI.
func (o Options) Pixels(inches float64) int {
	return int(math.Round(inches * float64(o.DPI)))
}

// points converts typographic points to pixels.
func (o Options) points(pt float64) int {
	return int(math.Round(pt * float64(o.DPI) / 72))
}
