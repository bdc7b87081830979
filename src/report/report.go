// Package report holds the fixed recipes that turn the hardware evaluation
// summaries into figures, and the runner that renders them.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mickaelfiorentino/keyv/src/config"
	"github.com/mickaelfiorentino/keyv/src/logging"
	"github.com/mickaelfiorentino/keyv/src/render"
	"github.com/mickaelfiorentino/keyv/src/table"
)

// Env is what a builder needs from the outside world.
type Env struct {
	Config   *config.Config
	Renderer *render.Renderer
}

// NewEnv builds an Env rendering with the configured options.
func NewEnv(cfg *config.Config) *Env {
	return &Env{Config: cfg, Renderer: render.NewRenderer(cfg.Render)}
}

// Input is the path of a summary file in the data directory.
func (e *Env) Input(name string) string { return e.Config.Path(name) }

// Output is the image path for a figure name.
func (e *Env) Output(name string) string {
	return e.Config.Path(name + "." + e.Renderer.Options().Ext())
}

// Builder loads one summary and derives the figures drawn from it.
type Builder interface {
	Name() string
	Build(env *Env) ([]render.Figure, error)
}

// All returns the builders in run order.
func All() []Builder {
	return []Builder{Area{}, Benchmark{}, Timing{}}
}

// Lookup finds a builder by name.
func Lookup(name string) (Builder, bool) {
	for _, b := range All() {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// Failure is one builder that did not complete.
type Failure struct {
	Builder string
	Err     error
}

// RunError collects the failures of a run that kept going past them.
type RunError struct {
	Failures []Failure
}

func (e *RunError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.Builder, f.Err)
	}
	return fmt.Sprintf("%d report(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *RunError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}
	return out
}

// Result lists what a run produced.
type Result struct {
	Images   []string
	Workbook string
	Figures  []render.Figure
}

// Run builds and renders each builder in order. The first failure aborts the
// run unless Config.KeepGoing is set, in which case the remaining builders
// still run and the failures come back together as a *RunError.
func Run(env *Env, builders ...Builder) (*Result, error) {
	res := &Result{}
	var failures []Failure
	for _, b := range builders {
		figs, err := runOne(env, b)
		res.Figures = append(res.Figures, figs...)
		for _, f := range figs {
			res.Images = append(res.Images, f.Path)
		}
		if err == nil {
			continue
		}
		if !env.Config.KeepGoing {
			return res, errors.Wrapf(err, "%s report", b.Name())
		}
		logging.WithField("report", b.Name()).Errorf("failed: %v", err)
		failures = append(failures, Failure{Builder: b.Name(), Err: err})
	}

	if env.Config.Export.Workbook && len(res.Figures) > 0 {
		path := env.Config.Path(env.Config.Export.WorkbookName)
		if err := ExportWorkbook(path, res.Figures); err != nil {
			if !env.Config.KeepGoing {
				return res, err
			}
			failures = append(failures, Failure{Builder: "workbook", Err: err})
		} else {
			res.Workbook = path
			logging.Infof("wrote %s", path)
		}
	}

	if len(failures) > 0 {
		return res, &RunError{Failures: failures}
	}
	return res, nil
}

// runOne returns the figures that were written before any error.
func runOne(env *Env, b Builder) ([]render.Figure, error) {
	defer logging.TimeTrack(time.Now(), b.Name()+" report")
	figs, err := b.Build(env)
	if err != nil {
		return nil, err
	}
	var done []render.Figure
	for _, f := range figs {
		if err := env.Renderer.RenderFigure(f); err != nil {
			return done, err
		}
		logging.Infof("wrote %s", f.Path)
		done = append(done, f)
	}
	return done, nil
}

// load reads a summary and logs its size.
func load(env *Env, name string, ids ...string) (*table.Table, error) {
	t, err := table.Load(env.Input(name), ids...)
	if err != nil {
		return nil, err
	}
	logging.Debugf("loaded %s: %d rows, %d numeric columns", t.Path(), t.Rows(), len(t.NumericNames()))
	return t, nil
}
