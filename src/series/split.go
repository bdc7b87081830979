package series

// SplitDelay divides a timing path delay into the busy part (data arrival) and
// the slack on top of it. A non-positive delay means the stage has no valid path
// and yields two zero heights. Otherwise busy is clamped at zero and
// busy + slack == delay.
func SplitDelay(delay, slack float64) (busy, rest float64) {
	if delay <= 0 {
		return 0, 0
	}
	busy = delay - slack
	if busy < 0 {
		busy = 0
	}
	return busy, delay - busy
}

// SplitDelays applies SplitDelay position by position.
func SplitDelays(delay, slack []float64) (busy, rest []float64, err error) {
	if len(delay) != len(slack) {
		return nil, nil, &DimensionMismatchError{Context: "delay split", Label: "slack", Want: len(delay), Got: len(slack)}
	}
	busy = make([]float64, len(delay))
	rest = make([]float64, len(delay))
	for i := range delay {
		busy[i], rest[i] = SplitDelay(delay[i], slack[i])
	}
	return busy, rest, nil
}

// Heights returns the plotted bar height for each delay: the delay when a path
// exists, zero otherwise.
func Heights(delay []float64) []float64 {
	out := make([]float64, len(delay))
	for i, d := range delay {
		if d > 0 {
			out[i] = d
		}
	}
	return out
}
