package hobby

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/arcspline"
)

// ValidateForSolve checks if a path is solvable by Hobby interpolation.
func (path *Path) ValidateForSolve() error {
	if path == nil {
		return ErrNilPath
	}
	n := path.N()
	if path.IsCycle() {
		if n < 3 {
			return fmt.Errorf("%w: cycle needs at least 3 knots, got %d", ErrTooFewKnots, n)
		}
		if cmplx.Abs(path.points[0]-path.points[n-1]) <= _epsilon {
			return ErrCycleHasDuplicateTerminalKnot
		}
	} else if n < 2 {
		return fmt.Errorf("%w: open path needs at least 2 knots, got %d", ErrTooFewKnots, n)
	}
	for i := 0; i < n; i++ {
		z := path.points[i]
		if cmplx.IsNaN(z) || cmplx.IsInf(z) || math.IsNaN(path.depths[i]) || math.IsInf(path.depths[i], 0) {
			return fmt.Errorf("%w at knot %d", ErrInvalidKnot, i)
		}
	}
	limit := n - 1
	if path.IsCycle() {
		limit = n
	}
	for i := 0; i < limit; i++ {
		j := path.wrap(i + 1)
		if cmplx.Abs(path.points[j]-path.points[i]) <= _epsilon {
			return fmt.Errorf("%w between knots %d and %d", ErrDegenerateSegment, i, j)
		}
	}
	return nil
}

// Solve finds the control points of a Hobby spline through the knots of
// path and returns them as spline nodes, lifted back into 3D.
//
// For open paths, the unused incoming handle of the first node and outgoing
// handle of the last node mirror their partners.
//
// Solve will trace the calculated segments using log-level INFO (as MetaFont
// does with tracingchoices).
func (path *Path) Solve() ([]arcspline.Node, error) {
	if err := path.ValidateForSolve(); err != nil {
		return nil, err
	}
	ctrls := newControls(path.N())
	for _, segment := range splitSegments(path, ctrls) {
		findSegmentControls(segment)
		tracer().Infof("segment %s", asStringPartial(segment))
	}
	return path.lift(ctrls), nil
}

// MustSolve is a helper which panics on validation errors.
func (path *Path) MustSolve() []arcspline.Node {
	nodes, err := path.Solve()
	if err != nil {
		panic(err)
	}
	return nodes
}

func (path *Path) lift(ctrls *controls) []arcspline.Node {
	n := path.N()
	nodes := make([]arcspline.Node, n)
	for i := 0; i < n; i++ {
		z, depth := path.Z(i), path.depth(i)
		pos := path.plane.Lift(real(z), imag(z), depth)
		nodes[i] = arcspline.Node{Position: pos, Rotation: mgl64.QuatIdent()}
		hasPre, hasPost := path.cycle || i > 0, path.cycle || i < n-1
		if hasPre {
			dz := (depth - path.depth(i-1)) / 3
			c := ctrls.prec[i]
			nodes[i].H1 = path.plane.Lift(real(c), imag(c), depth-dz)
		}
		if hasPost {
			dz := (path.depth(i+1) - depth) / 3
			c := ctrls.postc[i]
			nodes[i].H2 = path.plane.Lift(real(c), imag(c), depth+dz)
		}
		if !hasPre {
			nodes[i].H1 = pos.Mul(2).Sub(nodes[i].H2)
		}
		if !hasPost {
			nodes[i].H2 = pos.Mul(2).Sub(nodes[i].H1)
		}
	}
	return nodes
}

/*
Find the control points according to Hobby's algorithm, for one partial
between two rough knots (or for a smooth cycle).

Hobby's algorithm chooses the angles theta.i (between the chord to the next
knot and the outgoing tangent) such that the mock curvature is continuous at
every smooth knot. This yields a tridiagonal system of linear equations,
with an extra column for cyclic paths.
*/
func findSegmentControls(path *pathPartial) {
	var u = make([]float64, path.N()+2)
	var v = make([]float64, path.N()+2)
	var theta = make([]float64, path.N()+2)
	if path.IsCycle() {
		var w = make([]float64, path.N()+2)
		solveCyclePath(path, theta, u, v, w)
	} else {
		solveOpenPath(path, theta, u, v)
	}
	setControls(path, theta) // set control points from theta angles
}

func solveOpenPath(path *pathPartial, theta, u, v []float64) {
	if path.N() == 2 && cmplx.IsNaN(path.PostDir(0)) && cmplx.IsNaN(path.PreDir(1)) {
		theta[0], theta[1] = 0, 0 // curl at both ends: straight line
		return
	}
	startOpen(path, u, v)
	buildEqs(path, u, v, nil, path.N()-2)
	endOpen(path, theta, u, v)
}

func solveCyclePath(path *pathPartial, theta, u, v, w []float64) {
	u[0], v[0], w[0] = 0, 0, 1
	buildEqs(path, u, v, w, path.N())
	endCycle(path, theta, u, v, w)
}

func startOpen(path *pathPartial, u, v []float64) {
	if cmplx.IsNaN(path.PostDir(0)) {
		a := recip(path.PostTension(0))
		b := recip(path.PreTension(1))
		c := square(a) * path.PostCurl(0) / square(b)
		tracer().Debugf("a = %.4g, b = %.4g, c = %.4g", a, b, c)
		u[0] = ((3-a)*c + b) / (a*c + 3 - b)
		v[0] = -u[0] * path.psi(1)
	} else {
		u[0] = 0
		v[0] = reduceAngle(angle(path.PostDir(0)) - angle(path.delta(0)))
	}
	tracer().Debugf("u.0 = %.4g, v.0 = %.4g", u[0], v[0])
}

func endOpen(path *pathPartial, theta, u, v []float64) {
	last := path.N() - 1
	if cmplx.IsNaN(path.PreDir(last)) {
		a := recip(path.PostTension(last - 1))
		b := recip(path.PreTension(last))
		c := square(b) * path.PreCurl(last) / square(a)
		u[last] = (b*c + 3 - a) / ((3-b)*c + a)
		tracer().Debugf("u.%d = %g", last, u[last])
		theta[last] = v[last-1] / (u[last-1] - u[last])
	} else {
		theta[last] = reduceAngle(angle(path.PreDir(last)) - angle(path.delta(last-1)))
	}
	tracer().Debugf("theta.%d = %.4g", last, rad2deg(theta[last]))
	for i := last - 1; i >= 0; i-- {
		theta[i] = v[i] - u[i]*theta[i+1]
		tracer().Debugf("theta.%d = %.4g", i, rad2deg(theta[i]))
	}
}

// Every theta.k of a cycle is a linear function of theta.n = theta.0. Back-
// substitution from k = n-1 down to 1 and around to n gives
// theta.n = a + b * theta.n.
func endCycle(path *pathPartial, theta, u, v, w []float64) {
	n := path.N()
	var a, b float64 = 0, 1
	for k := n - 1; k > 0; k-- {
		a = v[k] - a*u[k]
		b = w[k] - b*u[k]
	}
	a = v[n] - a*u[n]
	b = w[n] - b*u[n]
	t0 := a / (1 - b)
	theta[0], theta[n] = t0, t0
	for k := n - 1; k > 0; k-- {
		theta[k] = v[k] + w[k]*t0 - u[k]*theta[k+1]
	}
	tracer().Debugf("theta.0 = %.4g", rad2deg(t0))
}

func buildEqs(path *pathPartial, u, v, w []float64, count int) {
	for i := 1; i <= count; i++ {
		a0 := recip(path.PostTension(i - 1))
		a1 := recip(path.PostTension(i))
		b1 := recip(path.PreTension(i))
		b2 := recip(path.PreTension(i + 1))
		A := a0 / (square(b1) * path.d(i-1))
		B := (3 - a0) / (square(b1) * path.d(i-1))
		C := (3 - b2) / (square(a1) * path.d(i))
		D := b2 / (square(a1) * path.d(i))
		tracer().Debugf("A, B, C, D: %.4g, %.4g, %.4g, %.4g", A, B, C, D)
		t := B - u[i-1]*A + C
		u[i] = D / t
		v[i] = (-B*path.psi(i) - D*path.psi(i+1) - A*v[i-1]) / t
		if w != nil {
			w[i] = -A * w[i-1] / t
		}
		tracer().Debugf("u.%d = %.4g, v.%d = %.4g", i, u[i], i, v[i])
	}
}

func setControls(path *pathPartial, theta []float64) {
	for i := 0; i < path.pieces(); i++ {
		phi := -path.psi(i+1) - theta[i+1]
		a := recip(path.PostTension(i))
		b := recip(path.PreTension(i + 1))
		p2, p3 := controlPoints(phi, theta[i], a, b, path.delta(i))
		path.SetPostControl(i, path.Z(i)+p2)
		path.SetPreControl(i+1, path.Z(i+1)-p3)
	}
}
