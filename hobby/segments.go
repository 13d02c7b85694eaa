package hobby

import (
	"fmt"
	"math"
	"math/cmplx"
)

func (pp *pathPartial) IsCycle() bool {
	return pp.cyclic
}

func (pp *pathPartial) N() int {
	return pp.end - pp.start + 1
}

func (pp *pathPartial) pmap(i int) int {
	return pp.whole.wrap(pp.start + i)
}

func (pp *pathPartial) Z(i int) complex128 {
	return pp.whole.Z(pp.pmap(i))
}

func (pp *pathPartial) PreDir(i int) complex128 {
	return pp.whole.PreDir(pp.pmap(i))
}

func (pp *pathPartial) PostDir(i int) complex128 {
	return pp.whole.PostDir(pp.pmap(i))
}

// PreCurl is the curl before z.i, defaulting to 1.
func (pp *pathPartial) PreCurl(i int) float64 {
	if c := pp.whole.PreCurl(pp.pmap(i)); !math.IsNaN(c) {
		return c
	}
	return 1.0
}

// PostCurl is the curl after z.i, defaulting to 1.
func (pp *pathPartial) PostCurl(i int) float64 {
	if c := pp.whole.PostCurl(pp.pmap(i)); !math.IsNaN(c) {
		return c
	}
	return 1.0
}

func (pp *pathPartial) PreTension(i int) float64 {
	return pp.whole.PreTension(pp.pmap(i))
}

func (pp *pathPartial) PostTension(i int) float64 {
	return pp.whole.PostTension(pp.pmap(i))
}

func (pp *pathPartial) SetPreControl(i int, c complex128) {
	pp.controls.prec[pp.pmap(i)] = c
}

func (pp *pathPartial) SetPostControl(i int, c complex128) {
	pp.controls.postc[pp.pmap(i)] = c
}

func (pp *pathPartial) delta(i int) complex128 {
	return pp.Z(i+1) - pp.Z(i)
}

func (pp *pathPartial) d(i int) float64 {
	return cmplx.Abs(pp.delta(i))
}

// Turning angle at z.i.
func (pp *pathPartial) psi(i int) float64 {
	psi := 0.0
	if pp.IsCycle() || (i > 0 && i < pp.N()-1) {
		psi = cmplx.Phase(pp.delta(i)) - cmplx.Phase(pp.delta(i-1))
	}
	return reduceAngle(psi)
}

// number of curve pieces in this partial
func (pp *pathPartial) pieces() int {
	if pp.IsCycle() {
		return pp.N()
	}
	return pp.N() - 1
}

func asStringPartial(pp *pathPartial) string {
	var s string
	for i := 0; i < pp.N(); i++ {
		if i > 0 {
			s += fmt.Sprintf(" and %s\n  .. ", ptstring(pp.controls.prec[pp.pmap(i)], true))
		}
		s += ptstring(pp.Z(i), false)
		if i < pp.pieces() {
			s += fmt.Sprintf(" .. controls %s", ptstring(pp.controls.postc[pp.pmap(i)], true))
		}
	}
	if pp.IsCycle() {
		s += fmt.Sprintf(" and %s\n  .. cycle", ptstring(pp.controls.prec[pp.pmap(0)], true))
	}
	return s
}

// Split a path into partials, breaking it up at rough knots.
func splitSegments(path *Path, ctrls *controls) []*pathPartial {
	n := path.N()
	var rough []int
	for i := 0; i < n; i++ {
		if (path.IsCycle() || (i > 0 && i < n-1)) && isrough(path, i) {
			rough = append(rough, i)
		}
	}
	var segments []*pathPartial
	if !path.IsCycle() {
		at := 0
		for _, r := range rough {
			segments = append(segments, makePathSegment(path, ctrls, at, r))
			at = r
		}
		return append(segments, makePathSegment(path, ctrls, at, n-1))
	}
	if len(rough) == 0 {
		seg := makePathSegment(path, ctrls, 0, n-1)
		seg.cyclic = true
		return append(segments, seg)
	}
	for k, r := range rough {
		next := rough[(k+1)%len(rough)]
		if next <= r {
			next += n
		}
		segments = append(segments, makePathSegment(path, ctrls, r, next))
	}
	return segments
}

// Create a path segment as a projection onto a parent path subset.
func makePathSegment(path *Path, ctrls *controls, from, to int) *pathPartial {
	tracer().Debugf("breaking segment %d - %d at %s and %s", from, to,
		ptstring(path.Z(from), false), ptstring(path.Z(to), false))
	return &pathPartial{
		whole:    path,
		start:    from,
		end:      to,
		controls: ctrls,
	}
}

// Is a knot a breakpoint for splitting a path into segments? Any explicit
// curl or direction breaks the path.
func isrough(path *Path, i int) bool {
	hascurl := !math.IsNaN(path.PreCurl(i)) || !math.IsNaN(path.PostCurl(i))
	hasdir := !cmplx.IsNaN(getC(path.predirs, i, unknown)) ||
		!cmplx.IsNaN(getC(path.postdirs, i, unknown))
	return hascurl || hasdir
}
