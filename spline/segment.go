package spline

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/arcspline"
)

// Segment is a single cubic Bézier arc between two adjacent nodes.
//
// A segment knows its own (estimated) arc length and a table of length
// fractions, one per integration chord. Once the total length of the
// enclosing spline is known, SetPathLength maps the segment into the
// spline's global parameter space [0,1].
type Segment struct {
	start, end  arcspline.Node
	offset      float64   // arc length of all preceding segments
	length      float64   // sum of chord lengths
	fractions   []float64 // chord length / length
	tOffset     float64   // global t at segment start
	tLength     float64   // global t covered by segment
	initialized bool      // tOffset and tLength are valid
	last        bool      // segment owns global t = 1
	c1, c2      mgl64.Vec3
	c3, c4      mgl64.Vec3
}

// NewSegment creates a segment from start to end, using start.H2 and end.H1
// as control points. offset is the arc length of the spline in front of the
// segment. Arc length is estimated by integrationSegments straight chords.
//
// The segment cannot be evaluated before SetPathLength has been called.
func NewSegment(start, end arcspline.Node, offset float64, integrationSegments int) (*Segment, error) {
	if integrationSegments < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrIntegrationSegments, integrationSegments)
	}
	seg := &Segment{
		start:     start,
		end:       end,
		offset:    offset,
		fractions: make([]float64, integrationSegments),
		tOffset:   -1,
	}
	a, b := start.Position, start.H2
	c, d := end.H1, end.Position
	seg.c1 = d.Sub(c.Mul(3)).Add(b.Mul(3)).Sub(a)
	seg.c2 = c.Mul(3).Sub(b.Mul(6)).Add(a.Mul(3))
	seg.c3 = b.Mul(3).Sub(a.Mul(3))
	seg.c4 = a
	seg.integrate()
	return seg, nil
}

// Chord lengths at n equal steps of the cubic's parameter.
func (seg *Segment) integrate() {
	n := len(seg.fractions)
	prev := seg.c4
	for i := 1; i <= n; i++ {
		p := seg.Point(float64(i) / float64(n))
		seg.fractions[i-1] = arcspline.Distance(p, prev)
		seg.length += seg.fractions[i-1]
		prev = p
	}
	if arcspline.Is0(seg.length) {
		tracer().Debugf("segment %s -> %s is degenerate", arcspline.VecString(seg.start.Position),
			arcspline.VecString(seg.end.Position))
		seg.length = 0
		for i := range seg.fractions {
			seg.fractions[i] = 1 / float64(n)
		}
		return
	}
	for i := range seg.fractions {
		seg.fractions[i] /= seg.length
	}
}

// Length returns the estimated arc length of the segment. The estimate is
// always a lower bound of the true arc length.
func (seg *Segment) Length() float64 {
	return seg.length
}

// Fractions returns a copy of the chord length fractions. They sum up to 1.
func (seg *Segment) Fractions() []float64 {
	f := make([]float64, len(seg.fractions))
	copy(f, seg.fractions)
	return f
}

// Start returns the node the segment starts at.
func (seg *Segment) Start() arcspline.Node {
	return seg.start
}

// End returns the node the segment ends at.
func (seg *Segment) End() arcspline.Node {
	return seg.end
}

// SetPathLength sets the total arc length of the enclosing spline, making
// the global parameter mapping of the segment valid. A spline of length 0
// maps every segment onto global t = 0 with zero extent.
func (seg *Segment) SetPathLength(total float64) {
	seg.initialized = true
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		seg.tOffset, seg.tLength = 0, 0
		return
	}
	seg.tOffset = seg.offset / total
	seg.tLength = seg.length / total
}

// GlobalRange returns the global offset and extent of the segment.
func (seg *Segment) GlobalRange() (float64, float64) {
	seg.mustBeInitialized()
	return seg.tOffset, seg.tLength
}

func (seg *Segment) mustBeInitialized() {
	if !seg.initialized {
		panic(ErrUninitializedSegment)
	}
}

// InRange is a predicate: is the global t within this segment?
// The range is half-open, except for the last segment of a spline, which
// includes t = 1.
func (seg *Segment) InRange(t float64) bool {
	seg.mustBeInitialized()
	if seg.last && t == 1 {
		return true
	}
	return t >= seg.tOffset && t < seg.tOffset+seg.tLength
}

// GlobalToLocalT maps a global t onto the segment's own parameter. The result
// is not clamped. Segments of zero extent always map to 0.
//
// Panics with ErrUninitializedSegment if SetPathLength has not been called.
func (seg *Segment) GlobalToLocalT(t float64) float64 {
	seg.mustBeInitialized()
	if seg.tLength == 0 {
		return 0
	}
	return (t - seg.tOffset) / seg.tLength
}

// LocalToGlobalT is the inverse of GlobalToLocalT.
func (seg *Segment) LocalToGlobalT(local float64) float64 {
	seg.mustBeInitialized()
	return seg.tOffset + local*seg.tLength
}

// RemapPiecewise remaps a local t, interpreted as a fraction of the
// segment's arc length, to the cubic parameter covering that arc length.
// The chord containing the fraction is found, and the remainder is scaled
// linearly within the chord.
func (seg *Segment) RemapPiecewise(local float64) float64 {
	n := float64(len(seg.fractions))
	t0 := 0.0
	for i, f := range seg.fractions {
		t1 := t0 + f
		if t1 > local {
			return (local-t0)/(f*n) + float64(i)/n
		}
		t0 = t1
	}
	return local
}

// Point evaluates the cubic at local parameter t, without any correction.
func (seg *Segment) Point(t float64) mgl64.Vec3 {
	return seg.c1.Mul(t * t * t).Add(seg.c2.Mul(t * t)).Add(seg.c3.Mul(t)).Add(seg.c4)
}

// Derivative returns dC/dt at local parameter t.
func (seg *Segment) Derivative(t float64) mgl64.Vec3 {
	return seg.c1.Mul(3 * t * t).Add(seg.c2.Mul(2 * t)).Add(seg.c3)
}

// Evaluate returns the position at global t. If constantSpeed is set, t is
// treated as an arc length fraction and remapped with the piecewise table.
func (seg *Segment) Evaluate(t float64, constantSpeed bool) mgl64.Vec3 {
	local := arcspline.Clamp01(seg.GlobalToLocalT(t))
	if constantSpeed {
		local = seg.RemapPiecewise(local)
	}
	return seg.Point(local)
}

// EvaluateWithVelocity advances a global t by dt with differential stretch
// correction and returns the position at the new t. t is the integrator's
// state: it is updated in place and callers have to keep it between calls.
//
// dt is interpreted as a fraction of the spline's total arc length. The
// step in local parameter space is dt·pathLength / |dC/dt|, an Euler step
// which drifts proportionally to the change of speed along the curve.
//
// For dt = 0, t is resynchronized: it is treated as an arc length fraction,
// remapped with the piecewise table and written back in the cubic's
// parameter space.
//
// The new t may leave the segment; the returned position is then clamped to
// the segment's end points.
func (seg *Segment) EvaluateWithVelocity(t *float64, dt float64) mgl64.Vec3 {
	g := arcspline.Clamp01(*t)
	local := seg.GlobalToLocalT(g)
	if seg.tLength == 0 {
		*t = g + dt
		return seg.c4
	}
	if dt == 0 {
		local = seg.RemapPiecewise(arcspline.Clamp01(local))
	} else {
		local += seg.localStep(local, dt)
	}
	*t = seg.LocalToGlobalT(local)
	return seg.Point(arcspline.Clamp01(local))
}

// localStep converts a global increment dt into an increment of the local
// cubic parameter at local.
func (seg *Segment) localStep(local, dt float64) float64 {
	step := dt / seg.tLength // fraction of this segment's length
	speed := seg.Derivative(arcspline.Clamp01(local)).Len()
	// speed is bounded below by the resolution of the chord table, keeping
	// cusps (handles on top of nodes) from producing huge jumps.
	minSpeed := seg.length / float64(len(seg.fractions))
	if speed < minSpeed {
		speed = minSpeed
	}
	return step * seg.length / speed
}

// Tangent returns the derivative of the cubic at global t. The result is not
// normalized. If unstretch is set, t is remapped with the piecewise table
// first.
func (seg *Segment) Tangent(t float64, unstretch bool) mgl64.Vec3 {
	return seg.TangentLocal(seg.GlobalToLocalT(arcspline.Clamp01(t)), unstretch)
}

// TangentLocal returns the derivative of the cubic at local parameter t.
func (seg *Segment) TangentLocal(t float64, unstretch bool) mgl64.Vec3 {
	t = arcspline.Clamp01(t)
	if unstretch {
		t = seg.RemapPiecewise(t)
	}
	return seg.Derivative(t)
}

// Rotation interpolates the orientations of the segment's nodes at global t
// (spherical linear interpolation).
func (seg *Segment) Rotation(t float64, unstretch bool) mgl64.Quat {
	local := arcspline.Clamp01(seg.GlobalToLocalT(arcspline.Clamp01(t)))
	if unstretch {
		local = seg.RemapPiecewise(local)
	}
	return mgl64.QuatSlerp(seg.start.Orientation(), seg.end.Orientation(), local)
}
