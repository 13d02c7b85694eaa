package spline

import (
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/arcspline"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEval(t *testing.T, sp *Spline, u float64, constantSpeed bool) mgl64.Vec3 {
	t.Helper()
	p, err := sp.EvaluateStateless(u, constantSpeed)
	require.NoError(t, err)
	return p
}

func assertVec(t *testing.T, want, got mgl64.Vec3, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, 0, got.Sub(want).Len(), delta, msgAndArgs...)
}

func TestStraightMidpoint(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	sp := MustBuild(straightNodes(), 100, false)
	assertVec(t, V(1.5, 0, 0), mustEval(t, sp, 0.5, true), 1e-9)
	assertVec(t, V(1.5, 0, 0), mustEval(t, sp, 0.5, false), 1e-9)
}

func TestBoundariesAreExact(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nodes := curvedNodes()
	sp := MustBuild(nodes, 37, false)
	for _, cs := range []bool{true, false} {
		assert.Equal(t, nodes[0].Position, mustEval(t, sp, 0, cs))
		assert.Equal(t, nodes[2].Position, mustEval(t, sp, 1, cs))
		// out of range t is clamped
		assert.Equal(t, nodes[0].Position, mustEval(t, sp, -0.5, cs))
		assert.Equal(t, nodes[2].Position, mustEval(t, sp, 7, cs))
	}
}

func TestContinuityAtSegmentBoundary(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nodes := curvedNodes()
	sp := MustBuild(nodes, 100, false)
	seg, err := sp.Segment(1)
	require.NoError(t, err)
	b, _ := seg.GlobalRange()
	assertVec(t, nodes[1].Position, mustEval(t, sp, b, false), 1e-9)
	prev := math.Inf(1)
	for _, h := range []float64{1e-2, 1e-3, 1e-4} {
		d := arcspline.Distance(mustEval(t, sp, b-h, false), mustEval(t, sp, b+h, false))
		assert.Less(t, d, prev, "gap does not shrink at h = %g", h)
		prev = d
	}
	assert.Less(t, prev, 1e-2)
}

func TestConstantSpeedOnStraightChain(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nodes := []arcspline.Node{
		{Position: V(0, 0, 0), H1: V(0, 0, 0), H2: V(0.2, 0, 0)},
		{Position: V(3, 0, 0), H1: V(2.5, 0, 0), H2: V(3.9, 0, 0)},
		{Position: V(6, 0, 0), H1: V(5.9, 0, 0), H2: V(6, 0, 0)},
	}
	sp := MustBuild(nodes, 100, false)
	l, err := sp.Length()
	require.NoError(t, err)
	assert.InDelta(t, 6.0, l, 1e-9)
	uncorrected := 0.0
	for i := 0; i <= 20; i++ {
		u := float64(i) / 20
		p := mustEval(t, sp, u, true)
		assertVec(t, V(6*u, 0, 0), p, 1e-3, "at t = %g", u)
		uncorrected = math.Max(uncorrected, math.Abs(mustEval(t, sp, u, false).X()-6*u))
	}
	assert.Greater(t, uncorrected, 0.1, "raw parameterization should not be uniform")
}

func TestEmptyNodeList(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := Build(nil, 10, false)
	assert.ErrorIs(t, err, ErrNoNodes)
	sp, err := New(arcspline.NodeList{})
	require.NoError(t, err)
	_, err = sp.EvaluateStateless(0.5, true)
	assert.ErrorIs(t, err, ErrNoNodes)
	u := 0.0
	_, err = sp.EvaluateStateful(&u, 0.1)
	assert.ErrorIs(t, err, ErrNoNodes)
	_, err = sp.Tangent(0.5, false)
	assert.ErrorIs(t, err, ErrNoNodes)
	_, err = sp.Rotation(0.5, false)
	assert.ErrorIs(t, err, ErrNoNodes)
	assert.Equal(t, Dirty, sp.State())
	assert.Equal(t, "<spline has no nodes>", AsString(sp))
}

func TestInvalidConfiguration(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilSource)
	_, err = New(arcspline.NodeList(straightNodes()), WithIntegrationSegments(0))
	assert.ErrorIs(t, err, ErrIntegrationSegments)
	sp, err := New(arcspline.NodeList(straightNodes()))
	require.NoError(t, err)
	assert.ErrorIs(t, sp.SetIntegrationSegments(-1), ErrIntegrationSegments)
	nodes := straightNodes()
	nodes[1].H1 = V(math.NaN(), 0, 0)
	_, err = Build(nodes, 10, false)
	assert.ErrorIs(t, err, ErrInvalidNode)
	assert.Panics(t, func() { MustBuild(nil, 10, false) })
}

func TestSingleNode(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	n := arcspline.StraightNode(V(2, 3, 4))
	for _, closed := range []bool{false, true} {
		sp := MustBuild([]arcspline.Node{n}, 10, closed)
		cnt, err := sp.SegmentCount()
		require.NoError(t, err)
		assert.Equal(t, 0, cnt)
		assert.Equal(t, n.Position, mustEval(t, sp, 0.5, true))
		u := 0.5
		p, err := sp.EvaluateStateful(&u, 0.1)
		require.NoError(t, err)
		assert.Equal(t, n.Position, p)
		tan, err := sp.Tangent(0.5, true)
		require.NoError(t, err)
		assert.Equal(t, mgl64.Vec3{}, tan)
	}
}

func TestDegenerateSegments(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	same := arcspline.StraightNode(V(1, 1, 1))
	sp := MustBuild([]arcspline.Node{same, same}, 10, false)
	l, err := sp.Length()
	require.NoError(t, err)
	assert.Equal(t, 0.0, l)
	assert.Equal(t, same.Position, mustEval(t, sp, 0.5, true))
	u := 0.0
	p, err := sp.EvaluateStateful(&u, 0.1)
	require.NoError(t, err)
	assert.Equal(t, same.Position, p)

	// a zero-length segment in the middle of a chain
	nodes := []arcspline.Node{
		{Position: V(0, 0, 0), H2: V(1, 0, 0)},
		{Position: V(2, 0, 0), H1: V(1.5, 0, 0), H2: V(2, 0, 0)},
		{Position: V(2, 0, 0), H1: V(2, 0, 0), H2: V(2.5, 0, 0)},
		{Position: V(4, 0, 0), H1: V(3, 0, 0)},
	}
	sp = MustBuild(nodes, 50, false)
	cnt, err := sp.SegmentCount()
	require.NoError(t, err)
	assert.Equal(t, 3, cnt)
	for i := 0; i <= 50; i++ {
		u := float64(i) / 50
		for _, cs := range []bool{true, false} {
			p := mustEval(t, sp, u, cs)
			assert.True(t, arcspline.IsFinite(p), "NaN at t = %g", u)
		}
		tan, err := sp.Tangent(u, true)
		require.NoError(t, err)
		assert.True(t, arcspline.IsFinite(tan))
	}
	assertVec(t, V(2, 0, 0), mustEval(t, sp, 0.5, true), 1e-3)
}

func TestInRangeHalfOpen(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nodes := []arcspline.Node{
		{Position: V(0, 0, 0), H2: V(1, 0, 0)},
		{Position: V(3, 0, 0), H1: V(2, 0, 0), H2: V(4, 0, 0)},
		{Position: V(6, 0, 0), H1: V(5, 0, 0)},
	}
	sp := MustBuild(nodes, 100, false)
	s0, err := sp.Segment(0)
	require.NoError(t, err)
	s1, err := sp.Segment(1)
	require.NoError(t, err)
	off, ext := s1.GlobalRange()
	assert.InDelta(t, 0.5, off, 1e-9)
	assert.InDelta(t, 0.5, ext, 1e-9)
	assert.True(t, s0.InRange(0))
	assert.False(t, s0.InRange(off))
	assert.True(t, s1.InRange(off))
	assert.True(t, s1.InRange(1))
	assert.False(t, s0.InRange(1))
	_, err = sp.Segment(2)
	assert.Error(t, err)
}

func TestStatefulTraversal(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nodes := curvedNodes()
	sp := MustBuild(nodes, 100, false)
	total, err := sp.Length()
	require.NoError(t, err)
	const dt = 0.001
	u, steps := 0.0, 0
	var p mgl64.Vec3
	for u < 1 && steps < 5000 {
		p, err = sp.EvaluateStateful(&u, dt)
		require.NoError(t, err)
		steps++
		if steps == 500 {
			// half way: compare with piecewise correction
			q := mustEval(t, sp, 0.5, true)
			assert.Less(t, arcspline.Distance(p, q), 0.02*total)
		}
	}
	assert.InDelta(t, 1000, steps, 20)
	assert.Equal(t, 1.0, u)
	assert.Equal(t, nodes[2].Position, p)

	// and back again
	steps = 0
	for u > 0 && steps < 5000 {
		p, err = sp.EvaluateStateful(&u, -dt)
		require.NoError(t, err)
		steps++
	}
	assert.InDelta(t, 1000, steps, 20)
	assert.Equal(t, nodes[0].Position, p)
}

func TestStatefulBoundaries(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nodes := straightNodes()
	sp := MustBuild(nodes, 100, false)
	u := 1.0
	p, err := sp.EvaluateStateful(&u, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, u)
	assert.Equal(t, nodes[1].Position, p)
	u = 0
	p, err = sp.EvaluateStateful(&u, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, u)
	assert.Equal(t, nodes[0].Position, p)
	u = 0.4
	p, err = sp.EvaluateStateful(&u, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, u, 1e-9)
	assertVec(t, V(1.2, 0, 0), p, 1e-9)
	u = 0.95
	_, err = sp.EvaluateStateful(&u, 0.2) // overshoot is clamped
	require.NoError(t, err)
	assert.Equal(t, 1.0, u)
}

func TestMarkDirty(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nodes := arcspline.NodeList(straightNodes())
	sp, err := New(nodes)
	require.NoError(t, err)
	assertVec(t, V(1.5, 0, 0), mustEval(t, sp, 0.5, false), 1e-9)
	nodes[1].H1 = V(2, 2, 0)
	// no MarkDirty: stale geometry
	assertVec(t, V(1.5, 0, 0), mustEval(t, sp, 0.5, false), 1e-9)
	sp.MarkDirty()
	assertVec(t, V(1.5, 0.75, 0), mustEval(t, sp, 0.5, false), 1e-9)
}

func TestCacheStates(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	sp, err := New(arcspline.NodeList(straightNodes()), WithIntegrationSegments(20))
	require.NoError(t, err)
	assert.Equal(t, Dirty, sp.State())
	assert.Equal(t, "dirty", sp.State().String())
	_, err = sp.Length()
	require.NoError(t, err)
	assert.Equal(t, Clean, sp.State())
	sp.MarkDirty()
	assert.Equal(t, Dirty, sp.State())
	require.NoError(t, sp.Rebuild())
	assert.Equal(t, Clean, sp.State())
	sp.SetClosed(false) // no change
	assert.Equal(t, Clean, sp.State())
	require.NoError(t, sp.SetIntegrationSegments(20))
	assert.Equal(t, Clean, sp.State())
	sp.SetClosed(true)
	assert.True(t, sp.IsClosed())
	assert.Equal(t, Dirty, sp.State())
	cnt, err := sp.SegmentCount()
	require.NoError(t, err)
	assert.Equal(t, 2, cnt)
	require.NoError(t, sp.SetIntegrationSegments(30))
	assert.Equal(t, Dirty, sp.State())
}

func TestClosedTriangle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nodes := []arcspline.Node{
		{Position: V(0, 0, 0), H1: V(-1, 1, 0), H2: V(1, -1, 0)},
		{Position: V(4, 0, 0), H1: V(3, -1, 0), H2: V(5, 1, 0)},
		{Position: V(2, 3, 0), H1: V(3, 3, 0), H2: V(1, 3, 0)},
	}
	sp := MustBuild(nodes, 50, true)
	cnt, err := sp.SegmentCount()
	require.NoError(t, err)
	assert.Equal(t, 3, cnt)
	for _, cs := range []bool{true, false} {
		assert.Equal(t, nodes[0].Position, mustEval(t, sp, 0, cs))
		assert.Equal(t, nodes[0].Position, mustEval(t, sp, 1, cs))
	}
	cached, err := sp.Nodes()
	require.NoError(t, err)
	assert.Len(t, cached, 4)
	// the closing segment ends in the first node, arriving through its H1
	last, err := sp.Segment(2)
	require.NoError(t, err)
	assert.Equal(t, nodes[0].H1, last.End().H1)
	assertVec(t, nodes[0].Position, last.Point(1), 1e-12)
}

func TestTangentAndRotation(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nodes := straightNodes()
	nodes[1].Rotation = mgl64.QuatRotate(math.Pi/2, V(0, 1, 0))
	sp := MustBuild(nodes, 100, false)
	for _, u := range []float64{0, 0.3, 1} {
		tan, err := sp.Tangent(u, true)
		require.NoError(t, err)
		assertVec(t, V(3, 0, 0), tan, 1e-9)
	}
	q, err := sp.Rotation(0.5, false)
	require.NoError(t, err)
	s := math.Sqrt(0.5)
	assertVec(t, V(s, 0, s), q.Rotate(V(0, 0, 1)), 1e-9)
	q, err = sp.Rotation(0, false)
	require.NoError(t, err)
	assertVec(t, V(0, 0, 1), q.Rotate(V(0, 0, 1)), 1e-9)
}

func TestAsString(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	sp := MustBuild(straightNodes(), 10, false)
	want := "(0,0,0) .. controls (1.0000,0.0000,0.0000) and (2.0000,0.0000,0.0000)\n  .. (3,0,0)"
	assert.Equal(t, want, AsString(sp))
	sp.SetClosed(true)
	want = "(0,0,0) .. controls (1.0000,0.0000,0.0000) and (2.0000,0.0000,0.0000)\n" +
		"  .. (3,0,0) .. controls (4.0000,0.0000,0.0000) and (-1.0000,0.0000,0.0000)\n" +
		"  .. cycle"
	assert.Equal(t, want, AsString(sp))
}

func TestConcurrentQueries(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	sp, err := New(arcspline.NodeList(curvedNodes()), WithIntegrationSegments(20))
	require.NoError(t, err)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if g == 0 && i%10 == 0 {
					sp.MarkDirty()
				}
				p, err := sp.EvaluateStateless(float64(i)/200, true)
				if err != nil {
					errs <- err
					return
				}
				if !arcspline.IsFinite(p) {
					errs <- assert.AnError
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
