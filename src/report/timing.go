package report

import (
	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mickaelfiorentino/keyv/src/logging"
	"github.com/mickaelfiorentino/keyv/src/render"
	"github.com/mickaelfiorentino/keyv/src/series"
	"github.com/mickaelfiorentino/keyv/src/table"
)

const (
	timingFile = "sta_summary.csv"
	// rows cycle through the left, up, right and down path directions
	directions = 4
)

// Pipeline stages of one trial, in row order.
var stageLabels = []string{"F", "D", "R", "E", "M", "W"}

// Direction is the per-stage split of one path direction averaged over trials.
type Direction struct {
	Delay []float64
	Busy  []float64
	Slack []float64
	// Std is the spread of the plotted height across trials.
	Std    []float64
	Trials int
}

// SplitDirection groups the rows of one direction into trials of one value per
// stage, averages delay and slack per stage and splits the mean delay into
// busy and slack segments.
func SplitDirection(delay, slack []float64) (Direction, error) {
	var d Direction
	dt, err := series.Trials(delay, len(stageLabels))
	if err != nil {
		return d, err
	}
	st, err := series.Trials(slack, len(stageLabels))
	if err != nil {
		return d, err
	}
	if d.Delay, err = series.MeanAcross(dt); err != nil {
		return d, err
	}
	meanSlack, err := series.MeanAcross(st)
	if err != nil {
		return d, err
	}
	heights := make([][]float64, len(dt))
	for i, trial := range dt {
		heights[i] = series.Heights(trial)
	}
	if d.Std, err = series.StdAcross(heights); err != nil {
		return d, err
	}
	d.Busy, d.Slack, err = series.SplitDelays(d.Delay, meanSlack)
	d.Trials = len(dt)
	return d, err
}

// Timing draws the average setup and hold arrival time and slack per stage.
type Timing struct{}

func (Timing) Name() string { return "timing" }

func (Timing) Build(env *Env) ([]render.Figure, error) {
	t, err := load(env, timingFile, "LAUNCH", "CAPTURE")
	if err != nil {
		return nil, err
	}
	cols, err := t.Resolve("SETUP DELAY", "SETUP SLACK", "HOLD DELAY", "HOLD SLACK")
	if err != nil {
		return nil, err
	}
	groups, err := series.GroupByStride(t.Rows(), directions)
	if err != nil {
		return nil, shapeError(t, err)
	}

	split := func(kind string, rows []int) (Direction, error) {
		d, err := SplitDirection(series.Pick(cols.Get(kind+" DELAY"), rows), series.Pick(cols.Get(kind+" SLACK"), rows))
		if err != nil {
			return d, shapeError(t, err)
		}
		return d, nil
	}
	left, err := split("SETUP", groups[0])
	if err != nil {
		return nil, err
	}
	up, err := split("SETUP", groups[1])
	if err != nil {
		return nil, err
	}
	right, err := split("HOLD", groups[2])
	if err != nil {
		return nil, err
	}
	down, err := split("HOLD", groups[3])
	if err != nil {
		return nil, err
	}
	logging.Debugf("%s: %d trials per direction", t.Path(), left.Trials)

	opts := env.Renderer.Options()
	return []render.Figure{{
		Name: "sta_avg", Path: env.Output("sta_avg"), Rows: 2, Cols: 1,
		Width: 15, Height: 10,
		Panels: []render.BarPanel{
			timingPanel("Setup", render.SteelBlue, left, up, opts),
			timingPanel("Hold", render.SeaGreen, right, down, opts),
		},
		Source: t.Path(),
	}}, nil
}

// timingPanel puts the two directions side by side per stage; only the first
// one carries legend labels.
func timingPanel(title string, c drawing.Color, first, second Direction, o render.Options) render.BarPanel {
	cluster := func(d Direction, busy, slack string) render.Cluster {
		return render.Cluster{
			Stack: []series.Series{
				series.New(busy, d.Busy).WithColor(c),
				series.New(slack, d.Slack).WithColor(c),
			},
			Err: d.Std,
		}
	}
	return render.BarPanel{
		Title:        title,
		Categories:   stageLabels,
		Clusters:     []render.Cluster{cluster(first, "Data Arrival Time", "Slack"), cluster(second, "", "")},
		YLabel:       "ns",
		TickStep:     0.5,
		Grid:         true,
		Legend:       true,
		SegmentAlpha: []float64{o.AlphaDark, o.AlphaLight},
		Headroom:     1.05,
	}
}

// shapeError reports a row count that does not fit the direction and trial
// grouping as a schema problem of the file.
func shapeError(t *table.Table, err error) error {
	var se *series.ShapeError
	if errors.As(err, &se) {
		return &table.SchemaError{Path: t.Path(), Reason: "row count does not fit timing groups", Err: err}
	}
	return err
}
