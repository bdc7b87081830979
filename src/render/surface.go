package render

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Surface is one figure's drawing canvas. Acquire a surface per figure, draw,
// Save, then Release; a released surface rejects further use so no state can
// leak from one chart into the next.
type Surface struct {
	r      chart.Renderer
	font   *truetype.Font
	opts   Options
	width  int
	height int
	footer string
}

// Acquire allocates a blank white surface of width x height pixels.
func Acquire(width, height int, opts Options) (*Surface, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("surface size must be positive, got %dx%d", width, height)
	}
	provider := chart.PNG
	if opts.Ext() == FormatSVG {
		provider = chart.SVG
	}
	r, err := provider(width, height)
	if err != nil {
		return nil, errors.Wrap(err, "create renderer")
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, errors.Wrap(err, "load default font")
	}
	r.SetDPI(float64(opts.DPI))
	r.SetFont(font)
	s := &Surface{r: r, font: font, opts: opts, width: width, height: height}
	s.fillRect(chart.Box{Top: 0, Left: 0, Right: width, Bottom: height}, drawing.ColorWhite)
	return s, nil
}

// Size returns the surface dimensions in pixels.
func (s *Surface) Size() (int, int) { return s.width, s.height }

// SetFooter sets text stamped in the bottom-left corner on Save (png only).
func (s *Surface) SetFooter(text string) { s.footer = text }

// Released reports whether Release has been called.
func (s *Surface) Released() bool { return s.r == nil }

// Release drops the renderer. It is safe to call more than once.
func (s *Surface) Release() {
	s.r = nil
	s.font = nil
}

// Save encodes the surface and writes it to path.
func (s *Surface) Save(path string) error {
	if s.Released() {
		return ErrReleased
	}
	var buf bytes.Buffer
	if err := s.r.Save(&buf); err != nil {
		return errors.Wrapf(err, "encode %s", filepath.Base(path))
	}
	out := buf.Bytes()
	if s.footer != "" && s.opts.Ext() == FormatPNG {
		img, err := png.Decode(bytes.NewReader(out))
		if err != nil {
			return errors.Wrapf(err, "decode %s", filepath.Base(path))
		}
		var stamped bytes.Buffer
		if err := png.Encode(&stamped, stampFooter(img, s.footer)); err != nil {
			return errors.Wrapf(err, "png encode %s", filepath.Base(path))
		}
		out = stamped.Bytes()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create out dir")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

func (s *Surface) path(points ...[2]int) {
	s.r.MoveTo(points[0][0], points[0][1])
	for _, p := range points[1:] {
		s.r.LineTo(p[0], p[1])
	}
}

func (s *Surface) fillRect(b chart.Box, c drawing.Color) {
	s.r.ResetStyle()
	s.r.SetFillColor(c)
	s.path([2]int{b.Left, b.Top}, [2]int{b.Right, b.Top}, [2]int{b.Right, b.Bottom}, [2]int{b.Left, b.Bottom})
	s.r.Close()
	s.r.Fill()
}

func (s *Surface) strokeRect(b chart.Box, c drawing.Color, width float64) {
	s.r.ResetStyle()
	s.r.SetStrokeColor(c)
	s.r.SetStrokeWidth(width)
	s.path([2]int{b.Left, b.Top}, [2]int{b.Right, b.Top}, [2]int{b.Right, b.Bottom}, [2]int{b.Left, b.Bottom})
	s.r.Close()
	s.r.Stroke()
}

func (s *Surface) line(x0, y0, x1, y1 int, c drawing.Color, width float64, dash []float64) {
	s.r.ResetStyle()
	s.r.SetStrokeColor(c)
	s.r.SetStrokeWidth(width)
	if len(dash) > 0 {
		s.r.SetStrokeDashArray(dash)
	}
	s.path([2]int{x0, y0}, [2]int{x1, y1})
	s.r.Stroke()
}

func (s *Surface) setText(size float64, c drawing.Color) {
	s.r.ResetStyle()
	s.r.SetFont(s.font)
	s.r.SetFontSize(size)
	s.r.SetFontColor(c)
}

func (s *Surface) measure(text string, size float64) (int, int) {
	s.setText(size, drawing.ColorBlack)
	b := s.r.MeasureText(text)
	return b.Width(), b.Height()
}

// text draws with the baseline at y. align is -1 left, 0 center, 1 right of x.
func (s *Surface) text(body string, x, y int, size float64, c drawing.Color, align int) {
	w, _ := s.measure(body, size)
	switch align {
	case 0:
		x -= w / 2
	case 1:
		x -= w
	}
	s.setText(size, c)
	s.r.Text(body, x, y)
}
