package series

import "fmt"

// ShapeError reports a row count that cannot be split evenly.
type ShapeError struct {
	What    string
	N       int
	Divisor int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %d rows is not a positive multiple of %d", e.What, e.N, e.Divisor)
}

// GroupByStride returns stride index groups over n rows: group k holds the rows
// whose position modulo stride is k, in row order.
func GroupByStride(n, stride int) ([][]int, error) {
	if stride <= 0 || n <= 0 || n%stride != 0 {
		return nil, &ShapeError{What: "stride grouping", N: n, Divisor: stride}
	}
	groups := make([][]int, stride)
	for k := range groups {
		groups[k] = make([]int, 0, n/stride)
	}
	for i := 0; i < n; i++ {
		groups[i%stride] = append(groups[i%stride], i)
	}
	return groups, nil
}

// Pick returns values at the given indices.
func Pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}

// Trials splits values into consecutive chunks of size, one chunk per repeated
// measurement. len(values) must be a positive multiple of size.
func Trials(values []float64, size int) ([][]float64, error) {
	n := len(values)
	if size <= 0 || n == 0 || n%size != 0 {
		return nil, &ShapeError{What: "trial grouping", N: n, Divisor: size}
	}
	out := make([][]float64, 0, n/size)
	for start := 0; start < n; start += size {
		t := make([]float64, size)
		copy(t, values[start:start+size])
		out = append(out, t)
	}
	return out, nil
}
