package report

import (
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mickaelfiorentino/keyv/src/render"
	"github.com/mickaelfiorentino/keyv/src/series"
	"github.com/mickaelfiorentino/keyv/src/table"
)

const areaFile = "area_summary.csv"

// Hierarchy labels shared by the area and power breakdowns, bottom to top.
var hierLabels = []string{"RF", "ALU", "DECODE", "SYS", "PERF", "PC", "LSU", "OTHER"}

// module columns per hierarchy label, without the AR-/PWR- prefix
var hierColumns = map[string]string{
	"RF":     "RF",
	"ALU":    "ALU",
	"DECODE": "IDECODE",
	"SYS":    "SYS",
	"PERF":   "PERF",
	"PC":     "PC",
	"LSU":    "LSU",
}

func prefixed(prefix string) []string {
	out := make([]string, 0, len(hierColumns))
	for _, l := range hierLabels {
		if c, ok := hierColumns[l]; ok {
			out = append(out, prefix+c)
		}
	}
	return out
}

// Area draws the cell type split and the module hierarchy of each processor.
type Area struct{}

func (Area) Name() string { return "area" }

func (Area) Build(env *Env) ([]render.Figure, error) {
	t, err := load(env, areaFile, "PROCESSOR")
	if err != nil {
		return nil, err
	}
	cols, err := t.Resolve(append([]string{"CMB", "BUF", "SEQ"}, prefixed("AR-")...)...)
	if err != nil {
		return nil, err
	}
	procs, err := t.Identifier("PROCESSOR")
	if err != nil {
		return nil, err
	}
	groups, hier, err := AreaStacks(cols)
	if err != nil {
		return nil, err
	}
	return []render.Figure{{
		Name: "area",
		Path: env.Output("area"),
		Rows: 1, Cols: 2,
		Panels: []render.BarPanel{
			render.StackedPanel("Area (um2)", procs, groups, "%.0f"),
			render.StackedPanel("Area (um2)", procs, hier, "%.0f"),
		},
		Source: t.Path(),
	}}, nil
}

// AreaStacks derives the CMB/SEQ stack and the module hierarchy stack. Buffers
// count as combinational area and OTHER is whatever the named modules leave of
// cmb + seq.
func AreaStacks(cols table.Columns) (groups, hier []series.Series, err error) {
	cmb, err := series.Sum("CMB", series.New("CMB", cols.Get("CMB")), series.New("BUF", cols.Get("BUF")))
	if err != nil {
		return nil, nil, err
	}
	seq := series.New("SEQ", cols.Get("SEQ"))
	groups = colored([]series.Series{cmb, seq}, render.Linspace(render.Viridis, 0.3, 0.6, 2))

	total, err := series.Sum("TOTAL", cmb, seq)
	if err != nil {
		return nil, nil, err
	}
	hier, err = hierarchy(cols, "AR-", total, 1)
	if err != nil {
		return nil, nil, err
	}
	return groups, colored(hier, render.Linspace(render.Cividis, 0.1, 0.9, len(hier))), nil
}

// hierarchy returns the named modules scaled by k followed by the OTHER residual of total.
func hierarchy(cols table.Columns, prefix string, total series.Series, k float64) ([]series.Series, error) {
	var out []series.Series
	for _, l := range hierLabels {
		c, ok := hierColumns[l]
		if !ok {
			continue
		}
		out = append(out, series.Scale(l, series.New(l, cols.Get(prefix+c)), k))
	}
	other, err := series.Residual("OTHER", total, out...)
	if err != nil {
		return nil, err
	}
	return append(out, other), nil
}

func colored(list []series.Series, colors []drawing.Color) []series.Series {
	out := make([]series.Series, len(list))
	for i, s := range list {
		out[i] = s.WithColor(colors[i])
	}
	return out
}
