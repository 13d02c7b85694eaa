package knots

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/arcspline"
	"github.com/npillmayer/arcspline/hobby"
	"github.com/npillmayer/arcspline/spline"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var V = arcspline.V

type counter struct {
	dirty  int
	closed bool
}

func (c *counter) MarkDirty()          { c.dirty++ }
func (c *counter) SetClosed(flag bool) { c.closed = flag }

func assertVec(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	assert.True(t, arcspline.VecEqual(want, got), "expected %s, got %s",
		arcspline.VecString(want), arcspline.VecString(got))
}

func TestBuilder(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := Nullchain().Knot(V(0, 0, 0)).Knot(V(3, 0, 0)).Cycle()
	assert.Equal(t, 2, c.N())
	assert.True(t, c.IsCycle())
	assert.Equal(t, "(0,0,0){full} .. (3,0,0){full} .. cycle", AsString(c))
	assert.Same(t, c.K(1), c.K(-1))
	assert.Same(t, c.K(0), c.K(2))
	assert.Panics(t, func() { Nullchain().K(0) })
}

func TestDefaultHandles(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	k := NewKnot(V(1, 1, 1))
	assertVec(t, V(1, 1, 0), k.H1())
	assertVec(t, V(1, 1, 2), k.H2())
	k.SetRotation(mgl64.QuatRotate(math.Pi/2, V(0, 1, 0)))
	assertVec(t, V(2, 1, 1), k.H2())
	assertVec(t, V(0, 1, 1), k.H1())
	require.NoError(t, k.SetScale(2))
	assertVec(t, V(3, 1, 1), k.H2())
	assert.ErrorIs(t, k.SetScale(0), ErrZeroScale)
	k.SetPosition(V(0, 0, 0))
	assertVec(t, V(2, 0, 0), k.H2())
}

func TestSymmetry(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	k := NewKnot(V(0, 0, 0))
	k.SetH2(V(1, 2, 0))
	assertVec(t, V(-1, -2, 0), k.H1())

	k = NewKnot(V(0, 0, 0)).SetSymmetry(Angle)
	k.SetH2(V(0, 3, 0))
	assertVec(t, V(0, -1, 0), k.H1())
	assertVec(t, V(0, 3, 0), k.H2())

	k = NewKnot(V(0, 0, 0)).SetSymmetry(None)
	k.SetH2(V(5, 0, 0))
	assertVec(t, V(0, 0, -1), k.H1())
	k.SetSymmetry(Full)
	assertVec(t, V(0, 0, 1), k.H2())
	assert.Equal(t, "full", k.Symmetry().String())
	assert.Equal(t, "symmetry(7)", Symmetry(7).String())
}

func TestAngleSymmetryWithZeroHandle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	k := NewKnot(V(0, 0, 0)).SetSymmetry(Angle)
	k.SetH2(V(0, 0, 0))
	assertVec(t, V(0, 0, -1), k.H1())
}

func TestStrength(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := Nullchain().Knot(V(0, 0, 0)).End()
	require.NoError(t, c.SetStrength(2))
	assertVec(t, V(0, 0, 2), c.K(0).H2())
	require.NoError(t, c.K(0).SetStrength(0.5))
	assertVec(t, V(0, 0, 1), c.K(0).H2())
	c.K(0).SetH2(V(0, 0, 4))
	h1, h2 := c.K(0).LocalHandles()
	assertVec(t, V(0, 0, 4), h2)
	assertVec(t, V(0, 0, -4), h1)
	assert.ErrorIs(t, c.SetStrength(0), ErrZeroStrength)
	assert.ErrorIs(t, c.K(0).SetStrength(0), ErrZeroStrength)
}

func TestWatchers(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := Nullchain().Knot(V(0, 0, 0)).Knot(V(1, 0, 0)).End()
	w := &counter{}
	c.Watch(w)
	assert.Equal(t, 1, w.dirty)
	c.K(0).SetH2(V(1, 1, 0))
	c.K(1).SetPosition(V(2, 0, 0))
	assert.Equal(t, 3, w.dirty)
	c.Cycle()
	assert.True(t, w.closed)
	assert.Equal(t, 4, w.dirty)
	c.Cycle() // no change
	assert.Equal(t, 4, w.dirty)
	require.NoError(t, c.Swap(0, 1))
	k, err := c.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, 6, w.dirty)
	k.SetPosition(V(9, 9, 9)) // removed knots no longer notify
	assert.Equal(t, 6, w.dirty)
	require.NoError(t, c.Insert(0, k))
	assert.Equal(t, 7, w.dirty)
	assertVec(t, V(9, 9, 9), c.K(0).Position())
}

func TestIndexErrors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := Nullchain().Knot(V(0, 0, 0)).End()
	_, err := c.Remove(1)
	assert.ErrorIs(t, err, ErrKnotIndex)
	assert.ErrorIs(t, c.Swap(0, 3), ErrKnotIndex)
	assert.ErrorIs(t, c.Insert(5, NewKnot(V(0, 0, 0))), ErrKnotIndex)
	other := Nullchain().Knot(V(1, 1, 1)).End()
	assert.Panics(t, func() { c.Append(other.K(0)) })
}

func TestChainDrivesSpline(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := Nullchain().
		HandleKnot(V(0, 0, 0), V(-1, 0, 0), V(1, 0, 0)).
		HandleKnot(V(3, 0, 0), V(2, 0, 0), V(4, 0, 0)).End()
	sp, err := c.Spline(spline.WithIntegrationSegments(50))
	require.NoError(t, err)
	p, err := sp.EvaluateStateless(0.5, false)
	require.NoError(t, err)
	assertVec(t, V(1.5, 0, 0), p)
	assert.Equal(t, spline.Clean, sp.State())

	c.K(1).SetH1(V(2, 2, 0))
	assert.Equal(t, spline.Dirty, sp.State())
	p, err = sp.EvaluateStateless(0.5, false)
	require.NoError(t, err)
	assertVec(t, V(1.5, 0.75, 0), p)

	c.Cycle()
	assert.True(t, sp.IsClosed())
	n, err := sp.SegmentCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	p, err = sp.EvaluateStateless(1, true)
	require.NoError(t, err)
	assertVec(t, V(0, 0, 0), p)
}

func TestSmooth(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := Nullchain().Knot(V(1, 0, 1)).Knot(V(2, 0, 2)).Knot(V(3, 0, 1)).Knot(V(2, 0, 0)).Cycle()
	c.K(0).SetRotation(mgl64.QuatRotate(math.Pi/3, V(1, 0, 0)))
	w := &counter{}
	c.Watch(w)
	require.NoError(t, c.Smooth(arcspline.XZ))
	assert.Equal(t, 2, w.dirty)
	for i := 0; i < c.N(); i++ {
		assert.Equal(t, Angle, c.K(i).Symmetry())
	}
	near := func(want, got mgl64.Vec3) {
		assert.InDelta(t, 0, got.Sub(want).Len(), 1e-4, "expected %s, got %s",
			arcspline.VecString(want), arcspline.VecString(got))
	}
	near(V(1, 0, 1.5523), c.K(0).H2())
	near(V(1, 0, 0.4477), c.K(0).H1())
	near(V(2.5523, 0, 2), c.K(1).H2())

	open := Nullchain().Knot(V(0, 0, 0)).End()
	assert.ErrorIs(t, open.Smooth(arcspline.XY), hobby.ErrTooFewKnots)
}
