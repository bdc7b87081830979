package render

import (
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/mickaelfiorentino/keyv/src/series"
)

// DefaultHeadroom keeps the top annotation inside the plot.
const DefaultHeadroom = 1.1

// Cluster is one stack of bars per category. Segments are drawn bottom to top
// in slice order, each starting where the previous one ended.
type Cluster struct {
	Stack []series.Series
	// Err, when set, draws a symmetric error bar of that half-height on top of
	// the stack at each category.
	Err []float64
}

// BarPanel describes one set of axes: categories along x and, per category,
// one or more clusters of stacked bars side by side.
type BarPanel struct {
	Title      string
	Categories []string
	Clusters   []Cluster
	// Format is applied to stack totals to annotate bar tops. Empty disables
	// annotations.
	Format string
	YLabel string
	// TickStep fixes the y tick spacing; zero picks nice ticks.
	TickStep float64
	Grid     bool
	Legend   bool
	// SegmentAlpha sets the opacity of each stack level. Missing levels use
	// Options.AlphaDark.
	SegmentAlpha []float64
	// Headroom scales the tallest stack into the y upper limit. Zero means
	// DefaultHeadroom.
	Headroom float64
}

// SimplePanel is one bar per category annotated with its height.
func SimplePanel(title string, categories []string, s series.Series, format string) BarPanel {
	return BarPanel{
		Title:      title,
		Categories: categories,
		Clusters:   []Cluster{{Stack: []series.Series{s}}},
		Format:     format,
	}
}

// StackedPanel stacks list per category, annotates the totals and shows a legend.
func StackedPanel(title string, categories []string, list []series.Series, format string) BarPanel {
	return BarPanel{
		Title:      title,
		Categories: categories,
		Clusters:   []Cluster{{Stack: list}},
		Format:     format,
		Legend:     true,
	}
}

// Validate checks every series and error slice against the category count.
func (p BarPanel) Validate() error {
	n := len(p.Categories)
	ctx := fmt.Sprintf("chart %q", p.Title)
	if len(p.Clusters) == 0 {
		return &DimensionMismatchError{Context: ctx + " clusters", Want: 1, Got: 0}
	}
	for _, c := range p.Clusters {
		if len(c.Stack) == 0 {
			return &DimensionMismatchError{Context: ctx + " series list", Want: 1, Got: 0}
		}
		for _, s := range c.Stack {
			if s.Len() != n {
				return &DimensionMismatchError{Context: ctx, Label: s.Label, Want: n, Got: s.Len()}
			}
		}
		if c.Err != nil && len(c.Err) != n {
			return &DimensionMismatchError{Context: ctx + " error bars", Want: n, Got: len(c.Err)}
		}
		for _, s := range c.Stack {
			if i, v, ok := finite(s.Values); !ok {
				return &NonFiniteError{Context: ctx, Label: s.Label, Index: i, Value: v}
			}
		}
		if i, v, ok := finite(c.Err); !ok {
			return &NonFiniteError{Context: ctx + " error bars", Index: i, Value: v}
		}
	}
	return nil
}

// finite reports the first NaN or infinite value.
func finite(values []float64) (int, float64, bool) {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i, v, false
		}
	}
	return 0, 0, true
}

// Totals returns, per cluster, the cumulative stack height at each category.
func (p BarPanel) Totals() ([][]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out := make([][]float64, len(p.Clusters))
	for j, c := range p.Clusters {
		tot, err := series.Totals(c.Stack)
		if err != nil {
			return nil, err
		}
		out[j] = tot
	}
	return out, nil
}

// Annotations returns the text drawn above each stack, indexed by cluster then
// category. It is nil when the panel has no Format.
func (p BarPanel) Annotations() ([][]string, error) {
	totals, err := p.Totals()
	if err != nil || p.Format == "" {
		return nil, err
	}
	out := make([][]string, len(totals))
	for j, tot := range totals {
		out[j] = make([]string, len(tot))
		for i, v := range tot {
			out[j][i] = fmt.Sprintf(p.Format, v)
		}
	}
	return out, nil
}

// YRange returns the y axis limits: zero (or the lowest running sum when
// values go negative) up to headroom times the tallest stack including error
// bars.
func (p BarPanel) YRange() (float64, float64, error) {
	if err := p.Validate(); err != nil {
		return 0, 0, err
	}
	lo, hi := 0.0, math.Inf(-1)
	for _, c := range p.Clusters {
		for i := range p.Categories {
			run := 0.0
			for _, s := range c.Stack {
				run += s.Values[i]
				lo = math.Min(lo, run)
			}
			top := run
			if c.Err != nil {
				top += math.Abs(c.Err[i])
			}
			hi = math.Max(hi, top)
		}
	}
	headroom := p.Headroom
	if headroom <= 0 {
		headroom = DefaultHeadroom
	}
	hi *= headroom
	if math.IsInf(hi, -1) || math.IsNaN(hi) || hi <= lo {
		hi = lo + 1
	}
	return lo, hi, nil
}

func (p BarPanel) ticks(lo, hi float64) []chart.Tick {
	if p.TickStep > 0 {
		return stepTicks(lo, hi, p.TickStep, 0)
	}
	return niceTicks(lo, hi, 6)
}

func (p BarPanel) alpha(level int, opts Options) float64 {
	if level < len(p.SegmentAlpha) {
		return p.SegmentAlpha[level]
	}
	return opts.AlphaDark
}
