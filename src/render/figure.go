// Package render draws bar charts onto go-chart raster surfaces and writes
// them as image files.
package render

import (
	"math"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/mickaelfiorentino/keyv/src/series"
)

// Figure is one output image holding a grid of panels filled row by row.
type Figure struct {
	Name   string
	Path   string
	Rows   int
	Cols   int
	Panels []BarPanel
	// Width and Height in inches override Options when set.
	Width  float64
	Height float64
	// Source names the input the figure was built from; used for the footer.
	Source string
}

// Validate checks the grid and every panel.
func (f Figure) Validate() error {
	if f.Rows <= 0 || f.Cols <= 0 {
		return errors.Errorf("figure %s: grid %dx%d must be positive", f.Name, f.Rows, f.Cols)
	}
	if len(f.Panels) == 0 || len(f.Panels) > f.Rows*f.Cols {
		return errors.Errorf("figure %s: %d panels do not fit a %dx%d grid", f.Name, len(f.Panels), f.Rows, f.Cols)
	}
	for _, p := range f.Panels {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Renderer turns panels and figures into image files.
type Renderer struct {
	opts Options
}

// NewRenderer returns a Renderer using opts.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Options returns the renderer configuration.
func (r *Renderer) Options() Options { return r.opts }

// RenderSimple draws one bar per category annotated with its value.
func (r *Renderer) RenderSimple(path string, categories []string, s series.Series, title, format string) error {
	return r.RenderFigure(Figure{Name: title, Path: path, Rows: 1, Cols: 1,
		Panels: []BarPanel{SimplePanel(title, categories, s, format)}})
}

// RenderStacked draws list stacked per category with the totals annotated on top.
func (r *Renderer) RenderStacked(path string, categories []string, list []series.Series, title, format string) error {
	return r.RenderFigure(Figure{Name: title, Path: path, Rows: 1, Cols: 1,
		Panels: []BarPanel{StackedPanel(title, categories, list, format)}})
}

// RenderFigure draws every panel of f on a fresh surface and saves it to f.Path.
// Inputs are validated before any surface is acquired.
func (r *Renderer) RenderFigure(f Figure) error {
	if err := f.Validate(); err != nil {
		return err
	}
	wIn, hIn := r.opts.Width, r.opts.Height
	if f.Width > 0 {
		wIn = f.Width
	}
	if f.Height > 0 {
		hIn = f.Height
	}
	w, h := r.opts.Pixels(wIn), r.opts.Pixels(hIn)
	s, err := Acquire(w, h, r.opts)
	if err != nil {
		return err
	}
	defer s.Release()

	for i, p := range f.Panels {
		if err := drawPanel(s, gridCell(w, h, f.Rows, f.Cols, i), p); err != nil {
			return errors.Wrapf(err, "figure %s", f.Name)
		}
	}
	if r.opts.Footer && f.Source != "" {
		s.SetFooter(f.Source)
	}
	return s.Save(f.Path)
}

// gridCell returns the pixel box of panel i in a rows x cols grid, leaving an
// outer margin and a gap between cells.
func gridCell(w, h, rows, cols, i int) chart.Box {
	margin := 0.03
	gap := 0.06
	fw, fh := float64(w), float64(h)
	cw := (fw*(1-2*margin) - fw*gap*float64(cols-1)) / float64(cols)
	ch := (fh*(1-2*margin) - fh*gap*float64(rows-1)) / float64(rows)
	row, col := i/cols, i%cols
	left := fw*margin + float64(col)*(cw+fw*gap)
	top := fh*margin + float64(row)*(ch+fh*gap)
	return chart.Box{
		Left:   int(math.Round(left)),
		Top:    int(math.Round(top)),
		Right:  int(math.Round(left + cw)),
		Bottom: int(math.Round(top + ch)),
	}
}
