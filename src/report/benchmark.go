package report

import (
	"slices"

	"github.com/mickaelfiorentino/keyv/src/logging"
	"github.com/mickaelfiorentino/keyv/src/render"
	"github.com/mickaelfiorentino/keyv/src/series"
	"github.com/mickaelfiorentino/keyv/src/table"
)

const (
	benchmarkFile = "benchmarks_summary.csv"
	// Dhrystone iterations per second of the reference VAX 11/780.
	dmipsDivisor = 1757
	// power columns are in W, charts in mW
	milli = 1e3
)

// Power is what one benchmark partition contributes to the power figures.
type Power struct {
	Score      series.Series
	ScorePerMW series.Series
	Groups     []series.Series
	Categories []series.Series
	Hierarchy  []series.Series
}

func benchmarkColumns() []string {
	cols := []string{"PERIOD", "CYCLES", "PWR-TOT",
		"PWR-CT", "PWR-SEQ", "PWR-REG", "PWR-CMB",
		"PWR-INT", "PWR-LEAK", "PWR-SWITCH"}
	return append(cols, prefixed("PWR-")...)
}

// PowerSeries derives scores and power breakdowns of one benchmark. The score
// is scoreScale / (PERIOD * CYCLES) and every power series is in mW.
func PowerSeries(cols table.Columns, scoreScale float64) (Power, error) {
	var p Power
	exec, err := series.Mul("EXEC", series.New("PERIOD", cols.Get("PERIOD")), series.New("CYCLES", cols.Get("CYCLES")))
	if err != nil {
		return p, err
	}
	mw := func(label, col string) series.Series {
		return series.Scale(label, series.New(col, cols.Get(col)), milli)
	}
	tot := mw("TOT", "PWR-TOT")
	p.Score = series.Inverse("SCORE", exec, scoreScale)
	if p.ScorePerMW, err = series.Div("SCORE/mW", p.Score, tot); err != nil {
		return p, err
	}

	seq, err := series.Sum("SEQ", mw("SEQ", "PWR-SEQ"), mw("REG", "PWR-REG"))
	if err != nil {
		return p, err
	}
	p.Groups = []series.Series{mw("CT", "PWR-CT"), seq, mw("CMB", "PWR-CMB")}
	p.Categories = []series.Series{mw("INTERNAL", "PWR-INT"), mw("LEAKAGE", "PWR-LEAK"), mw("SWITCH", "PWR-SWITCH")}
	p.Hierarchy, err = hierarchy(cols, "PWR-", tot, milli)
	return p, err
}

// Benchmark draws scores and power breakdowns for dhrystone and coremark.
type Benchmark struct{}

func (Benchmark) Name() string { return "benchmark" }

func (Benchmark) Build(env *Env) ([]render.Figure, error) {
	t, err := load(env, benchmarkFile, "PROCESSOR", "BENCHMARK")
	if err != nil {
		return nil, err
	}
	dh, err := partition(t, "dhrystone")
	if err != nil {
		return nil, err
	}
	cm, err := partition(t, "coremark")
	if err != nil {
		return nil, err
	}
	if dh.Rows() != cm.Rows() {
		return nil, &series.DimensionMismatchError{Context: "benchmark partitions", Label: "coremark", Want: dh.Rows(), Got: cm.Rows()}
	}
	procs, err := dh.Identifier("PROCESSOR")
	if err != nil {
		return nil, err
	}
	if cmProcs, err := cm.Identifier("PROCESSOR"); err == nil && !slices.Equal(procs, cmProcs) {
		logging.Warnf("%s: coremark processors %v differ from dhrystone %v; using dhrystone labels", t.Path(), cmProcs, procs)
	}

	dhCols, err := dh.Resolve(benchmarkColumns()...)
	if err != nil {
		return nil, err
	}
	cmCols, err := cm.Resolve(benchmarkColumns()...)
	if err != nil {
		return nil, err
	}
	dhp, err := PowerSeries(dhCols, 1.0/dmipsDivisor)
	if err != nil {
		return nil, err
	}
	cmp, err := PowerSeries(cmCols, 1)
	if err != nil {
		return nil, err
	}

	score := render.Figure{
		Name: "power_score", Path: env.Output("power_score"), Rows: 2, Cols: 2, Source: t.Path(),
		Panels: []render.BarPanel{
			render.SimplePanel("Dhrystone (DMIPS)", procs, dhp.Score.WithColor(render.Cividis.At(0.1)), "%.2f"),
			render.SimplePanel("Coremark (CM)", procs, cmp.Score.WithColor(render.Viridis.At(0.5)), "%.2f"),
			render.SimplePanel("Dhrystone (DMIPS/mW)", procs, dhp.ScorePerMW.WithColor(render.Cividis.At(0.3)), "%.2f"),
			render.SimplePanel("Coremark (CM/mW)", procs, cmp.ScorePerMW.WithColor(render.Viridis.At(0.7)), "%.2f"),
		},
	}
	pair := func(name string, dhList, cmList []series.Series) render.Figure {
		return render.Figure{
			Name: name, Path: env.Output(name), Rows: 1, Cols: 2, Source: t.Path(),
			Panels: []render.BarPanel{
				render.StackedPanel("Dhrystone (mW)", procs, colored(dhList, render.Linspace(render.Cividis, 0.1, 0.9, len(dhList))), "%.2f"),
				render.StackedPanel("Coremark (mW)", procs, colored(cmList, render.Linspace(render.Viridis, 0.2, 0.8, len(cmList))), "%.2f"),
			},
		}
	}
	return []render.Figure{
		score,
		pair("power_groups", dhp.Groups, cmp.Groups),
		pair("power_categories", dhp.Categories, cmp.Categories),
		pair("power_hier", dhp.Hierarchy, cmp.Hierarchy),
	}, nil
}

func partition(t *table.Table, benchmark string) (*table.Table, error) {
	sub, err := t.Where("BENCHMARK", benchmark)
	if err != nil {
		return nil, err
	}
	if sub.Rows() == 0 {
		return nil, &table.SchemaError{Path: t.Path(), Column: "BENCHMARK", Reason: "no " + benchmark + " rows"}
	}
	logging.Debugf("%s: %d %s rows", t.Path(), sub.Rows(), benchmark)
	return sub, nil
}
