package render

import (
	"math"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
)

// niceTicks returns about n ticks covering [min, max] on a 1, 2, 2.5 or 5
// times a power of ten step.
func niceTicks(min, max float64, n int) []chart.Tick {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	return stepTicks(min, max, niceStep(max-min, n), n+2)
}

// niceStep picks the step whose tick count over span is closest to n.
func niceStep(span float64, n int) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	best, bestDiff := mag, math.Inf(1)
	for _, m := range [...]float64{1, 2, 2.5, 5, 10} {
		count := math.Max(2, math.Ceil(span/(m*mag)))
		if d := math.Abs(count - float64(n)); d < bestDiff {
			best, bestDiff = m*mag, d
		}
	}
	return best
}

// stepTicks places ticks on multiples of step that fall inside [min, max].
func stepTicks(min, max, step float64, limit int) []chart.Tick {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil
	}
	start := math.Ceil(min/step-1e-9) * step
	ticks := []chart.Tick{}
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v > max+step*1e-9 {
			break
		}
		// snap float noise so labels read 0.5 rather than 0.49999999
		v = math.Round(v/step) * step
		ticks = append(ticks, chart.Tick{Value: v, Label: tickLabel(v, step)})
		if limit > 0 && len(ticks) >= limit {
			break
		}
	}
	return ticks
}

// tickLabel prints v with as many decimals as step needs.
func tickLabel(v, step float64) string {
	if v == 0 {
		return "0"
	}
	decimals := int(math.Max(0, -math.Floor(math.Log10(step)+1e-9)))
	if frac := step * math.Pow(10, float64(decimals)); math.Abs(frac-math.Round(frac)) > 1e-9 {
		decimals++
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
