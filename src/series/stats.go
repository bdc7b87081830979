package series

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// column gathers position i of every trial.
func column(trials [][]float64, i int) stats.Float64Data {
	col := make(stats.Float64Data, len(trials))
	for t, row := range trials {
		col[t] = row[i]
	}
	return col
}

func checkTrials(op string, trials [][]float64) (int, error) {
	if len(trials) == 0 {
		return 0, &DimensionMismatchError{Context: op, Want: 1, Got: 0}
	}
	width := len(trials[0])
	for _, row := range trials[1:] {
		if len(row) != width {
			return 0, &DimensionMismatchError{Context: op, Want: width, Got: len(row)}
		}
	}
	return width, nil
}

// MeanAcross returns the mean of each position across trials.
func MeanAcross(trials [][]float64) ([]float64, error) {
	width, err := checkTrials("mean across trials", trials)
	if err != nil {
		return nil, err
	}
	out := make([]float64, width)
	for i := range out {
		m, err := stats.Mean(column(trials, i))
		if err != nil {
			return nil, errors.Wrapf(err, "mean at position %d", i)
		}
		out[i] = m
	}
	return out, nil
}

// StdAcross returns the population standard deviation of each position across trials.
func StdAcross(trials [][]float64) ([]float64, error) {
	width, err := checkTrials("stddev across trials", trials)
	if err != nil {
		return nil, err
	}
	out := make([]float64, width)
	for i := range out {
		sd, err := stats.StandardDeviationPopulation(column(trials, i))
		if err != nil {
			return nil, errors.Wrapf(err, "stddev at position %d", i)
		}
		out[i] = sd
	}
	return out, nil
}
