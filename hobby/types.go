package hobby

import (
	"errors"
	"math/cmplx"

	"github.com/npillmayer/arcspline"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'arcspline.hobby'
func tracer() tracing.Trace {
	return tracing.Select("arcspline.hobby")
}

const _epsilon = 0.0000001

var (
	// ErrNilPath indicates a nil path pointer.
	ErrNilPath = errors.New("path must not be nil")
	// ErrTooFewKnots indicates path knot count is insufficient for solving.
	ErrTooFewKnots = errors.New("path has too few knots")
	// ErrInvalidKnot indicates a knot coordinate contains NaN/Inf.
	ErrInvalidKnot = errors.New("path has invalid knot coordinate")
	// ErrDegenerateSegment indicates two consecutive knots collapse to one
	// point in the path's plane.
	ErrDegenerateSegment = errors.New("path has degenerate segment")
	// ErrCycleHasDuplicateTerminalKnot indicates a cyclic path redundantly
	// repeats its first knot as last knot.
	ErrCycleHasDuplicateTerminalKnot = errors.New("cycle path must not repeat first knot as terminal knot")
)

var unknown = cmplx.NaN()

// Path is a skeleton of knots in a coordinate plane, together with the
// shape parameters Hobby's algorithm respects: tensions, curls at the ends
// and explicit directions. To construct a path, start with Nullpath(), which
// creates an empty path, and then extend it.
//
// Knots are stored as complex numbers of their in-plane coordinates. The
// depth of each knot (its coordinate along the plane's normal) is kept
// separately and interpolated linearly into the handles.
type Path struct {
	plane    arcspline.Plane
	points   []complex128 // knot i, in-plane
	depths   []float64    // depth of knot i
	cycle    bool         // is this path cyclic ?
	predirs  []complex128 // explicit pre-direction at knot i, NaN if unset
	postdirs []complex128 // explicit post-direction at knot i, NaN if unset
	curls    []complex128 // explicit pre- and post-curl at knot i, NaN if unset
	tensions []complex128 // pre- and post-tension at knot i
}

// A run of knots between two rough knots, as a view onto a parent path.
// Indices may exceed the parent's knot count for cyclic parents.
type pathPartial struct {
	whole    *Path
	start    int
	end      int
	cyclic   bool      // covers the whole of a cyclic path without breaks
	controls *controls // shared with parent path
}

// controls collects calculated spline control points, indexed by knot.
type controls struct {
	prec  []complex128 // control point i-
	postc []complex128 // control point i+
}

func newControls(n int) *controls {
	c := &controls{
		prec:  make([]complex128, n),
		postc: make([]complex128, n),
	}
	for i := 0; i < n; i++ {
		c.prec[i], c.postc[i] = unknown, unknown
	}
	return c
}
