package render

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mickaelfiorentino/keyv/src/series"
)

// DimensionMismatchError is returned when chart inputs do not line up with the
// category axis.
type DimensionMismatchError = series.DimensionMismatchError

// ErrReleased is returned when a surface is used after Release.
var ErrReleased = errors.New("drawing surface already released")

// NonFiniteError is returned when a plotted value or error bar is NaN or
// infinite, e.g. a score divided by a zero power reading.
type NonFiniteError struct {
	Context string
	Label   string
	Index   int
	Value   float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("non-finite value in %s: series %q at category %d is %g", e.Context, e.Label, e.Index, e.Value)
}
