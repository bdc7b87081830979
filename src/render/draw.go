package render

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mickaelfiorentino/keyv/src/series"
)

// bar is one drawn segment, kept so the legend can avoid it.
type bar struct {
	box   chart.Box
	color drawing.Color
}

// plotArea maps data values onto a pixel box.
type plotArea struct {
	box    chart.Box
	lo, hi float64
}

func (a plotArea) y(v float64) int {
	f := (v - a.lo) / (a.hi - a.lo)
	return a.box.Bottom - int(math.Round(f*float64(a.box.Height())))
}

// slot returns the pixel center of category i and the width allotted to it.
func (a plotArea) slot(i, n int) (float64, float64) {
	w := float64(a.box.Width()) / float64(n)
	return float64(a.box.Left) + (float64(i)+0.5)*w, w
}

// clusterSpans returns the left offset (relative to the slot center) and width
// of each of k clusters sharing barWidth of a slot, separated by a fifth of a
// cluster width.
func clusterSpans(k int, barWidth, slot float64) ([]float64, float64) {
	w := barWidth * slot / float64(k)
	gap := 0.2 * w
	if k == 1 {
		gap = 0
	}
	total := float64(k)*w + float64(k-1)*gap
	offs := make([]float64, k)
	for j := range offs {
		offs[j] = -total/2 + float64(j)*(w+gap)
	}
	return offs, w
}

func seriesColor(s series.Series, idx int) drawing.Color {
	if s.Color == (drawing.Color{}) {
		return chart.GetDefaultColor(idx)
	}
	return s.Color
}

// drawPanel renders p into box on s.
func drawPanel(s *Surface, box chart.Box, p BarPanel) error {
	if s.Released() {
		return ErrReleased
	}
	lo, hi, err := p.YRange()
	if err != nil {
		return err
	}
	o := s.opts
	titleSize, labelSize := o.TitleFontSize, o.LabelFontSize
	pad := o.points(4)

	// title
	top := box.Top
	if p.Title != "" {
		_, th := s.measure(p.Title, titleSize)
		s.text(p.Title, (box.Left+box.Right)/2, top+th, titleSize, drawing.ColorBlack, 0)
		top += th + 2*pad
	}
	_, lh := s.measure("0", labelSize)
	if p.YLabel != "" {
		top += lh + pad
	}

	ticks := p.ticks(lo, hi)
	gutter := 0
	for _, t := range ticks {
		if w, _ := s.measure(t.Label, labelSize); w > gutter {
			gutter = w
		}
	}
	area := plotArea{
		box: chart.Box{
			Left:   box.Left + gutter + 2*pad,
			Top:    top + lh + pad,
			Right:  box.Right - pad,
			Bottom: box.Bottom - 2*lh - pad,
		},
		lo: lo,
		hi: hi,
	}
	if area.box.Right <= area.box.Left || area.box.Bottom <= area.box.Top {
		return errors.Errorf("panel %q does not fit in %dx%d pixels", p.Title, box.Width(), box.Height())
	}
	pb := area.box

	// grid and ticks
	for _, t := range ticks {
		y := area.y(t.Value)
		if p.Grid {
			s.line(pb.Left, y, pb.Right, y, LightGrey, 1, []float64{2, 3})
		}
		s.line(pb.Left-pad/2, y, pb.Left, y, drawing.ColorBlack, 1, nil)
		s.text(t.Label, pb.Left-pad, y+lh/2, labelSize, drawing.ColorBlack, 1)
	}
	if p.YLabel != "" {
		s.text(p.YLabel, pb.Left, top-pad, labelSize, drawing.ColorBlack, -1)
	}

	// bars
	n := len(p.Categories)
	var bars []bar
	totals, _ := p.Totals()
	for i := 0; i < n; i++ {
		cx, slot := area.slot(i, n)
		offs, w := clusterSpans(len(p.Clusters), o.BarWidth, slot)
		for j, c := range p.Clusters {
			left := int(math.Round(cx + offs[j]))
			right := int(math.Round(cx + offs[j] + w))
			base := 0.0
			for k, seg := range c.Stack {
				v := seg.Values[i]
				y0, y1 := area.y(base), area.y(base+v)
				if y1 > y0 {
					y0, y1 = y1, y0
				}
				b := chart.Box{Left: left, Right: right, Top: y1, Bottom: y0}
				col := withAlpha(seriesColor(seg, k), p.alpha(k, o))
				if b.Height() > 0 {
					s.fillRect(b, col)
					if len(c.Stack) > 1 {
						s.strokeRect(b, drawing.ColorWhite, 1)
					}
				}
				bars = append(bars, bar{box: b, color: col})
				base += v
			}
			mid := (left + right) / 2
			if c.Err != nil && c.Err[i] != 0 {
				e := math.Abs(c.Err[i])
				ya, yb := area.y(base-e), area.y(base+e)
				capHalf := o.points(2)
				s.line(mid, ya, mid, yb, DarkGrey, 1, nil)
				s.line(mid-capHalf, ya, mid+capHalf, ya, DarkGrey, 1, nil)
				s.line(mid-capHalf, yb, mid+capHalf, yb, DarkGrey, 1, nil)
			}
			if p.Format != "" {
				label := fmt.Sprintf(p.Format, totals[j][i])
				s.text(label, mid, area.y(base)-o.points(3), labelSize, drawing.ColorBlack, 0)
			}
		}
		s.text(p.Categories[i], int(math.Round(cx)), pb.Bottom+lh+pad, labelSize, drawing.ColorBlack, 0)
	}

	// axes on top of bars
	s.line(pb.Left, pb.Top, pb.Left, pb.Bottom, drawing.ColorBlack, 1, nil)
	s.line(pb.Left, area.y(0), pb.Right, area.y(0), drawing.ColorBlack, 1, nil)

	if p.Legend {
		drawLegend(s, pb, p, bars)
	}
	return nil
}

type legendEntry struct {
	label string
	color drawing.Color
}

func legendEntries(p BarPanel, o Options) []legendEntry {
	var out []legendEntry
	if len(p.Clusters) == 0 {
		return nil
	}
	for k, seg := range p.Clusters[0].Stack {
		if seg.Label == "" {
			continue
		}
		out = append(out, legendEntry{label: seg.Label, color: withAlpha(seriesColor(seg, k), p.alpha(k, o))})
	}
	return out
}

// drawLegend lists the labeled series of the first cluster in stack order.
func drawLegend(s *Surface, pb chart.Box, p BarPanel, bars []bar) {
	entries := legendEntries(p, s.opts)
	if len(entries) == 0 {
		return
	}
	size := s.opts.LabelFontSize
	pad := s.opts.points(4)
	_, lh := s.measure("Mg", size)
	sw := lh
	wmax := 0
	for _, e := range entries {
		if w, _ := s.measure(e.label, size); w > wmax {
			wmax = w
		}
	}
	rowH := lh + pad
	w := pad + sw + pad + wmax + pad
	h := pad + len(entries)*rowH
	boxes := make([]chart.Box, len(bars))
	for i, b := range bars {
		boxes[i] = b.box
	}
	lb := placeLegend(pb, w, h, pad, boxes)

	s.fillRect(lb, drawing.ColorWhite.WithAlpha(220))
	s.strokeRect(lb, LightGrey, 1)
	for i, e := range entries {
		rowTop := lb.Top + pad + i*rowH
		s.fillRect(chart.Box{Left: lb.Left + pad, Top: rowTop, Right: lb.Left + pad + sw, Bottom: rowTop + lh}, e.color)
		s.text(e.label, lb.Left+2*pad+sw, rowTop+lh, size, drawing.ColorBlack, -1)
	}
}

// placeLegend picks the corner of plot where a w x h legend hides the least
// bar area. Upper right wins ties.
func placeLegend(plot chart.Box, w, h, margin int, bars []chart.Box) chart.Box {
	candidates := []chart.Box{
		{Left: plot.Right - margin - w, Top: plot.Top + margin, Right: plot.Right - margin, Bottom: plot.Top + margin + h},
		{Left: plot.Left + margin, Top: plot.Top + margin, Right: plot.Left + margin + w, Bottom: plot.Top + margin + h},
		{Left: (plot.Left+plot.Right-w)/2, Top: plot.Top + margin, Right: (plot.Left+plot.Right+w)/2, Bottom: plot.Top + margin + h},
		{Left: plot.Right - margin - w, Top: plot.Bottom - margin - h, Right: plot.Right - margin, Bottom: plot.Bottom - margin},
		{Left: plot.Left + margin, Top: plot.Bottom - margin - h, Right: plot.Left + margin + w, Bottom: plot.Bottom - margin},
	}
	best, bestArea := candidates[0], math.MaxInt
	for _, c := range candidates {
		area := 0
		for _, b := range bars {
			area += overlap(c, b)
		}
		if area < bestArea {
			best, bestArea = c, area
		}
	}
	return best
}

func overlap(a, b chart.Box) int {
	w := min(a.Right, b.Right) - max(a.Left, b.Left)
	h := min(a.Bottom, b.Bottom) - max(a.Top, b.Top)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}
