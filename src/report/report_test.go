package report

import (
	"fmt"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/mickaelfiorentino/keyv/src/config"
	"github.com/mickaelfiorentino/keyv/src/render"
	"github.com/mickaelfiorentino/keyv/src/series"
	"github.com/mickaelfiorentino/keyv/src/table"
)

const eps = 1e-9

const areaCSV = `PROCESSOR,CMB,BUF,SEQ,TOTAL,AR-IDECODE,AR-PC,AR-RF,AR-ALU,AR-LSU,AR-SYS,AR-PERF,AR-RST-SYNC
chip1,100,50,200,500,30,10,20,15,25,5,5,1
chip2,80,20,100,250,10,10,10,10,10,10,10,1
`

const benchmarkHeader = "PROCESSOR,BENCHMARK,PERIOD,CYCLES,PWR-TOT,PWR-CT,PWR-SEQ,PWR-REG,PWR-CMB,PWR-INT,PWR-LEAK,PWR-SWITCH,PWR-IDECODE,PWR-PC,PWR-RF,PWR-ALU,PWR-LSU,PWR-SYS,PWR-PERF\n"

const benchmarkCSV = benchmarkHeader +
	"keyv,dhrystone,0.5,2,0.010,0.001,0.002,0.001,0.006,0.005,0.001,0.004,0.001,0.001,0.002,0.001,0.001,0.0005,0.0005\n" +
	"keyv,coremark,0.25,2,0.020,0.002,0.004,0.002,0.012,0.010,0.002,0.008,0.002,0.002,0.004,0.002,0.002,0.001,0.003\n" +
	"ref,dhrystone,1,2,0.008,0.001,0.001,0.001,0.005,0.004,0.001,0.003,0.001,0.001,0.001,0.001,0.001,0.001,0.001\n" +
	"ref,coremark,1,4,0.016,0.002,0.002,0.002,0.010,0.008,0.002,0.006,0.002,0.002,0.002,0.002,0.002,0.002,0.002\n"

// timingCSV builds rows cycling through the four directions, one per stage per
// trial. delay(trial, stage) gives the setup and hold delay of every direction.
func timingCSV(trials int, delay func(trial, stage int) float64) string {
	var b strings.Builder
	b.WriteString("LAUNCH,CAPTURE,SETUP DELAY,SETUP SLACK,HOLD DELAY,HOLD SLACK\n")
	for tr := 0; tr < trials; tr++ {
		for st := range stageLabels {
			for d := 0; d < directions; d++ {
				fmt.Fprintf(&b, "clk%d,clk%d,%g,0.3,%g,0.3\n", st, d, delay(tr, st), delay(tr, st))
			}
		}
	}
	return b.String()
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func testEnv(t *testing.T) (*Env, string) {
	t.Helper()
	dir := t.TempDir()
	opts := render.DefaultOptions()
	opts.DPI = 40
	cfg := &config.Config{
		DataDir:  dir,
		LogLevel: "info",
		Render:   opts,
		Export:   config.Export{WorkbookName: "plots_data.xlsx"},
	}
	return NewEnv(cfg), dir
}

func pngSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func parse(t *testing.T, body string, ids ...string) *table.Table {
	t.Helper()
	tb, err := table.Parse(strings.NewReader(body), "test.csv", ',', ids...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tb
}

func TestAreaStacks_OtherIsResidual(t *testing.T) {
	tb := parse(t, areaCSV, "PROCESSOR")
	cols, err := tb.Resolve(append([]string{"CMB", "BUF", "SEQ"}, prefixed("AR-")...)...)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	groups, hier, err := AreaStacks(cols)
	if err != nil {
		t.Fatalf("AreaStacks: %v", err)
	}
	if groups[0].Label != "CMB" || groups[0].Values[0] != 150 || groups[1].Values[0] != 200 {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if len(hier) != len(hierLabels) {
		t.Fatalf("hierarchy has %d series, want %d", len(hier), len(hierLabels))
	}
	for i, s := range hier {
		if s.Label != hierLabels[i] {
			t.Fatalf("hier[%d]=%s want %s", i, s.Label, hierLabels[i])
		}
	}
	other := hier[len(hier)-1]
	if other.Values[0] != 240 {
		t.Fatalf("OTHER[chip1]=%g want 240", other.Values[0])
	}
	for i := range other.Values {
		want := cols.Get("CMB")[i] + cols.Get("BUF")[i] + cols.Get("SEQ")[i]
		for _, c := range prefixed("AR-") {
			want -= cols.Get(c)[i]
		}
		if math.Abs(other.Values[i]-want) > eps {
			t.Fatalf("OTHER[%d]=%g want %g", i, other.Values[i], want)
		}
	}
	gt, _ := series.Totals(groups)
	ht, _ := series.Totals(hier)
	for i := range gt {
		if math.Abs(gt[i]-ht[i]) > eps {
			t.Fatalf("stack totals differ at %d: %g vs %g", i, gt[i], ht[i])
		}
	}
}

func TestPowerSeries(t *testing.T) {
	tb := parse(t, benchmarkCSV, "PROCESSOR", "BENCHMARK")
	dh, err := tb.Where("BENCHMARK", "dhrystone")
	if err != nil {
		t.Fatalf("where: %v", err)
	}
	cols, err := dh.Resolve(benchmarkColumns()...)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	p, err := PowerSeries(cols, 1.0/dmipsDivisor)
	if err != nil {
		t.Fatalf("PowerSeries: %v", err)
	}
	if math.Abs(p.Score.Values[0]-1.0/1757) > eps {
		t.Fatalf("score=%g", p.Score.Values[0])
	}
	if math.Abs(p.ScorePerMW.Values[0]-1.0/1757/10) > eps {
		t.Fatalf("score/mW=%g", p.ScorePerMW.Values[0])
	}
	if got := p.Groups[1].Values[0]; math.Abs(got-3) > eps {
		t.Fatalf("SEQ+REG=%g mW want 3", got)
	}
	perf := p.Hierarchy[4]
	if perf.Label != "PERF" || math.Abs(perf.Values[0]-0.5) > eps {
		t.Fatalf("PERF=%+v", perf)
	}
	tot, _ := series.Totals(p.Hierarchy)
	for i, v := range tot {
		if math.Abs(v-cols.Get("PWR-TOT")[i]*milli) > eps {
			t.Fatalf("hierarchy total %g at %d does not match PWR-TOT", v, i)
		}
	}
}

func TestBenchmark_ReadsPerfColumn(t *testing.T) {
	tb := parse(t, benchmarkCSV, "PROCESSOR", "BENCHMARK")
	cm, _ := tb.Where("BENCHMARK", "coremark")
	cols, err := cm.Resolve(benchmarkColumns()...)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	p, err := PowerSeries(cols, 1)
	if err != nil {
		t.Fatalf("PowerSeries: %v", err)
	}
	sys, perf := p.Hierarchy[3], p.Hierarchy[4]
	if math.Abs(sys.Values[0]-1) > eps || math.Abs(perf.Values[0]-3) > eps {
		t.Fatalf("SYS=%g PERF=%g want 1 and 3", sys.Values[0], perf.Values[0])
	}
}

func TestBenchmark_PartitionMismatch(t *testing.T) {
	env, dir := testEnv(t)
	body := benchmarkCSV + "extra,dhrystone,1,2,0.008,0.001,0.001,0.001,0.005,0.004,0.001,0.003,0.001,0.001,0.001,0.001,0.001,0.001,0.001\n"
	writeFile(t, dir, benchmarkFile, body)
	_, err := Benchmark{}.Build(env)
	var dm *series.DimensionMismatchError
	if !errors.As(err, &dm) || dm.Want != 3 || dm.Got != 2 {
		t.Fatalf("expected partition mismatch, got %v", err)
	}
}

func TestBenchmark_MissingPartition(t *testing.T) {
	env, dir := testEnv(t)
	lines := strings.Split(benchmarkCSV, "\n")
	var kept []string
	for _, l := range lines {
		if !strings.Contains(l, "coremark") {
			kept = append(kept, l)
		}
	}
	writeFile(t, dir, benchmarkFile, strings.Join(kept, "\n"))
	_, err := Benchmark{}.Build(env)
	var se *table.SchemaError
	if !errors.As(err, &se) || se.Column != "BENCHMARK" {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestBenchmark_Figures(t *testing.T) {
	env, dir := testEnv(t)
	writeFile(t, dir, benchmarkFile, benchmarkCSV)
	res, err := Run(env, Benchmark{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"power_score", "power_groups", "power_categories", "power_hier"}
	if len(res.Images) != len(want) {
		t.Fatalf("images=%v", res.Images)
	}
	for i, name := range want {
		if res.Images[i] != filepath.Join(dir, name+".png") {
			t.Fatalf("image %d = %s want %s", i, res.Images[i], name)
		}
		if w, h := pngSize(t, res.Images[i]); w != 280 || h != 280 {
			t.Fatalf("%s is %dx%d", name, w, h)
		}
	}
	cats := res.Figures[0].Panels[0].Categories
	if len(cats) != 2 || cats[0] != "keyv" || cats[1] != "ref" {
		t.Fatalf("categories=%v", cats)
	}
}

func TestSplitDirection(t *testing.T) {
	// three trials of six stages, stage 0 varies, stage 5 has no valid path
	delay := []float64{
		0.7, 0.8, 0.8, 0.8, 0.8, -0.1,
		0.8, 0.8, 0.8, 0.8, 0.8, -0.1,
		0.9, 0.8, 0.8, 0.8, 0.8, -0.1,
	}
	slack := make([]float64, len(delay))
	for i := range slack {
		slack[i] = 0.3
	}
	d, err := SplitDirection(delay, slack)
	if err != nil {
		t.Fatalf("SplitDirection: %v", err)
	}
	if d.Trials != 3 {
		t.Fatalf("trials=%d", d.Trials)
	}
	if math.Abs(d.Busy[1]-0.5) > eps || math.Abs(d.Slack[1]-0.3) > eps {
		t.Fatalf("stage D busy=%g slack=%g", d.Busy[1], d.Slack[1])
	}
	if d.Busy[5] != 0 || d.Slack[5] != 0 || d.Std[5] != 0 {
		t.Fatalf("stage W should be empty, got busy=%g slack=%g std=%g", d.Busy[5], d.Slack[5], d.Std[5])
	}
	if want := math.Sqrt(0.02 / 3); math.Abs(d.Std[0]-want) > 1e-9 {
		t.Fatalf("std=%g want %g", d.Std[0], want)
	}
	for i := range d.Delay {
		if d.Delay[i] > 0 && math.Abs(d.Busy[i]+d.Slack[i]-d.Delay[i]) > eps {
			t.Fatalf("stage %d: busy+slack != delay", i)
		}
	}
}

func TestTiming_Figure(t *testing.T) {
	env, dir := testEnv(t)
	writeFile(t, dir, timingFile, timingCSV(3, func(tr, st int) float64 {
		if st == 5 {
			return -0.1
		}
		return 0.8 + 0.1*float64(tr)
	}))
	res, err := Run(env, Timing{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w, h := pngSize(t, filepath.Join(dir, "sta_avg.png")); w != 600 || h != 400 {
		t.Fatalf("sta_avg is %dx%d want 600x400", w, h)
	}
	setup := res.Figures[0].Panels[0]
	if setup.Title != "Setup" || len(setup.Clusters) != 2 || setup.TickStep != 0.5 || setup.YLabel != "ns" {
		t.Fatalf("unexpected setup panel: %+v", setup)
	}
	busy := setup.Clusters[0].Stack[0]
	if busy.Label != "Data Arrival Time" || math.Abs(busy.Values[0]-0.6) > eps {
		t.Fatalf("busy=%+v", busy)
	}
	if setup.Clusters[1].Stack[0].Label != "" {
		t.Fatalf("second cluster should not be in the legend")
	}
}

func TestTiming_RowCountNotStride(t *testing.T) {
	env, dir := testEnv(t)
	body := timingCSV(3, func(int, int) float64 { return 1 })
	body += "x,y,1,0.3,1,0.3\n"
	writeFile(t, dir, timingFile, body)
	_, err := Timing{}.Build(env)
	var se *table.SchemaError
	var shape *series.ShapeError
	if !errors.As(err, &se) || !errors.As(err, &shape) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestTiming_GroupNotTrials(t *testing.T) {
	env, dir := testEnv(t)
	body := timingCSV(1, func(int, int) float64 { return 1 })
	// one more row per direction
	body += "a,b,1,0.3,1,0.3\na,b,1,0.3,1,0.3\na,b,1,0.3,1,0.3\na,b,1,0.3,1,0.3\n"
	writeFile(t, dir, timingFile, body)
	_, err := Timing{}.Build(env)
	var se *table.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestRun_AbortsOnFirstFailure(t *testing.T) {
	env, dir := testEnv(t)
	writeFile(t, dir, timingFile, timingCSV(3, func(int, int) float64 { return 1 }))
	_, err := Run(env, All()...)
	var nf *table.NotFoundError
	if !errors.As(err, &nf) || !strings.Contains(err.Error(), "area report") {
		t.Fatalf("expected area not found, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sta_avg.png")); !os.IsNotExist(err) {
		t.Fatalf("timing should not have run")
	}
}

func TestRun_KeepGoing(t *testing.T) {
	env, dir := testEnv(t)
	env.Config.KeepGoing = true
	writeFile(t, dir, timingFile, timingCSV(3, func(int, int) float64 { return 1 }))
	res, err := Run(env, All()...)
	var re *RunError
	if !errors.As(err, &re) {
		t.Fatalf("expected RunError, got %v", err)
	}
	if len(re.Failures) != 2 || re.Failures[0].Builder != "area" || re.Failures[1].Builder != "benchmark" {
		t.Fatalf("failures=%+v", re.Failures)
	}
	var nf *table.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("RunError should unwrap to the builder errors")
	}
	if len(res.Images) != 1 || res.Images[0] != filepath.Join(dir, "sta_avg.png") {
		t.Fatalf("images=%v", res.Images)
	}
}

func TestRun_Workbook(t *testing.T) {
	env, dir := testEnv(t)
	env.Config.Export.Workbook = true
	writeFile(t, dir, areaFile, areaCSV)
	res, err := Run(env, Area{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Workbook != filepath.Join(dir, "plots_data.xlsx") {
		t.Fatalf("workbook=%q", res.Workbook)
	}
	f, err := excelize.OpenFile(res.Workbook)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "area" {
		t.Fatalf("sheets=%v", sheets)
	}
	rows, err := f.GetRows("area")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if rows[0][0] != "Area (um2)" || strings.Join(rows[1], ",") != "CATEGORY,CMB,SEQ,TOTAL" {
		t.Fatalf("unexpected block header: %v %v", rows[0], rows[1])
	}
	if strings.Join(rows[2], ",") != "chip1,150,200,350" {
		t.Fatalf("unexpected first row: %v", rows[2])
	}
	// second panel block: the hierarchy with OTHER before TOTAL
	hdr := rows[6]
	if hdr[len(hdr)-2] != "OTHER" || rows[7][len(hdr)-1] != "350" || rows[7][len(hdr)-2] != "240" {
		t.Fatalf("unexpected hierarchy block: %v %v", hdr, rows[7])
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"area", "benchmark", "timing"} {
		if b, ok := Lookup(name); !ok || b.Name() != name {
			t.Fatalf("Lookup(%s) failed", name)
		}
	}
	if _, ok := Lookup("power"); ok {
		t.Fatalf("unknown builder found")
	}
}
