package spline

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/arcspline"
)

// Spline is a chain of cubic Bézier segments, parameterized over [0,1].
//
// A spline reads its nodes from a NodeSource and caches segments built from
// them. The cache is rebuilt lazily on the first query after MarkDirty has
// been called. Spline does not detect changes of node content by itself:
// whoever edits the nodes has to call MarkDirty.
//
// Queries may run concurrently. Each rebuild publishes a new immutable
// snapshot of segments; readers use whichever complete snapshot is current.
type Spline struct {
	src         arcspline.NodeSource
	mu          sync.Mutex // serializes rebuilds and configuration changes
	integration int
	closed      bool
	generation  atomic.Uint64          // incremented by MarkDirty
	cached      atomic.Pointer[chain] // current snapshot, may be stale
}

// chain is an immutable snapshot of segments built from a node list.
type chain struct {
	generation uint64
	nodes      []arcspline.Node // with closing node appended for closed chains
	segments   []*Segment
	length     float64
	closed     bool
}

// New creates a spline reading its nodes from src. The spline starts out
// Dirty; nodes are read on the first query.
func New(src arcspline.NodeSource, opts ...Option) (*Spline, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.integration < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrIntegrationSegments, o.integration)
	}
	sp := &Spline{
		src:         src,
		integration: o.integration,
		closed:      o.closed,
	}
	return sp, nil
}

// Build creates a spline over a private copy of nodes and builds its
// segments right away.
func Build(nodes []arcspline.Node, integrationSegments int, closed bool) (*Spline, error) {
	list := make(arcspline.NodeList, len(nodes))
	copy(list, nodes)
	sp, err := New(list, WithIntegrationSegments(integrationSegments), WithClosed(closed))
	if err != nil {
		return nil, err
	}
	if err = sp.Rebuild(); err != nil {
		return nil, err
	}
	return sp, nil
}

// MustBuild is like Build, but panics on errors.
func MustBuild(nodes []arcspline.Node, integrationSegments int, closed bool) *Spline {
	sp, err := Build(nodes, integrationSegments, closed)
	if err != nil {
		panic(err)
	}
	return sp
}

// MarkDirty invalidates the segment cache. Call it after any change of node
// geometry, node count or node order.
func (sp *Spline) MarkDirty() {
	sp.generation.Add(1)
}

// State returns the state of the segment cache.
func (sp *Spline) State() CacheState {
	c := sp.cached.Load()
	if c == nil || c.generation != sp.generation.Load() {
		return Dirty
	}
	return Clean
}

// SetClosed opens or closes the spline. Toggling invalidates the cache.
func (sp *Spline) SetClosed(closed bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.closed != closed {
		sp.closed = closed
		sp.MarkDirty()
	}
}

// IsClosed is a predicate: is this spline a closed loop?
func (sp *Spline) IsClosed() bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.closed
}

// SetIntegrationSegments changes the number of chords per segment used for
// arc length estimation. Changing it invalidates the cache.
func (sp *Spline) SetIntegrationSegments(n int) error {
	if n < 1 {
		return fmt.Errorf("%w, got %d", ErrIntegrationSegments, n)
	}
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.integration != n {
		sp.integration = n
		sp.MarkDirty()
	}
	return nil
}

// Rebuild reads the nodes from the source and rebuilds all segments,
// regardless of the cache state. On error the spline stays Dirty.
func (sp *Spline) Rebuild() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	_, err := sp.rebuild()
	return err
}

// rebuild expects sp.mu to be held.
func (sp *Spline) rebuild() (*chain, error) {
	gen := sp.generation.Load()
	c, err := buildChain(sp.src.Nodes(), sp.integration, sp.closed)
	if err != nil {
		tracer().Errorf("cannot rebuild spline: %v", err)
		return nil, err
	}
	c.generation = gen
	sp.cached.Store(c)
	tracer().Debugf("rebuilt spline: %d segments, length %.4g", len(c.segments), c.length)
	return c, nil
}

// snapshot returns a clean snapshot, rebuilding if necessary.
func (sp *Spline) snapshot() (*chain, error) {
	if c := sp.cached.Load(); c != nil && c.generation == sp.generation.Load() {
		return c, nil
	}
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if c := sp.cached.Load(); c != nil && c.generation == sp.generation.Load() {
		return c, nil // rebuilt while we were waiting
	}
	return sp.rebuild()
}

func buildChain(nodes []arcspline.Node, integration int, closed bool) (*chain, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}
	for i, n := range nodes {
		if !n.IsValid() {
			return nil, fmt.Errorf("%w at node %d", ErrInvalidNode, i)
		}
	}
	c := &chain{closed: closed}
	c.nodes = make([]arcspline.Node, len(nodes), len(nodes)+1)
	copy(c.nodes, nodes)
	if closed && len(nodes) > 1 {
		c.nodes = append(c.nodes, nodes[0])
	}
	c.segments = make([]*Segment, 0, len(c.nodes)-1)
	for i := 0; i < len(c.nodes)-1; i++ {
		seg, err := NewSegment(c.nodes[i], c.nodes[i+1], c.length, integration)
		if err != nil {
			return nil, err
		}
		c.segments = append(c.segments, seg)
		c.length += seg.Length()
	}
	for _, seg := range c.segments {
		seg.SetPathLength(c.length)
	}
	if len(c.segments) > 0 {
		c.segments[len(c.segments)-1].last = true
	}
	return c, nil
}

// boundary returns the exact node position for t at either end of the chain,
// and for chains without segments.
func (c *chain) boundary(t float64) (mgl64.Vec3, bool) {
	if t == 0 || len(c.segments) == 0 {
		return c.nodes[0].Position, true
	}
	if t == 1 {
		return c.nodes[len(c.nodes)-1].Position, true
	}
	return mgl64.Vec3{}, false
}

// locate finds the segment owning global t. Expects at least one segment.
func (c *chain) locate(t float64) *Segment {
	if t <= 0 {
		return c.segments[0]
	}
	if t >= 1 {
		return c.segments[len(c.segments)-1]
	}
	for _, seg := range c.segments {
		if seg.InRange(t) {
			return seg
		}
	}
	// t fell into a rounding gap, or all segments are degenerate
	for i := len(c.segments) - 1; i > 0; i-- {
		if c.segments[i].tOffset <= t {
			return c.segments[i]
		}
	}
	return c.segments[0]
}

// EvaluateStateless returns the position at t, clamped to [0,1]. If
// constantSpeed is set, t is treated as a fraction of the spline's arc
// length (piecewise stretch correction); otherwise the cubics' own
// parameterization is used within each segment.
//
// At t = 0 and t = 1 the first and last node positions are returned exactly.
func (sp *Spline) EvaluateStateless(t float64, constantSpeed bool) (mgl64.Vec3, error) {
	c, err := sp.snapshot()
	if err != nil {
		return mgl64.Vec3{}, err
	}
	t = arcspline.Clamp01(t)
	if pos, ok := c.boundary(t); ok {
		return pos, nil
	}
	return c.locate(t).Evaluate(t, constantSpeed), nil
}

// EvaluateStateful advances t by dt using differential stretch correction
// and returns the position at the new t. t is updated in place; callers own
// it and pass it in again on the next tick. With dt = 0, t is resynchronized
// from an arc length fraction to the differential parameter space.
//
// t is clamped to [0,1]. On a boundary, the boundary node is returned unless
// dt points into the spline.
func (sp *Spline) EvaluateStateful(t *float64, dt float64) (mgl64.Vec3, error) {
	c, err := sp.snapshot()
	if err != nil {
		return mgl64.Vec3{}, err
	}
	*t = arcspline.Clamp01(*t)
	if len(c.segments) == 0 || (*t == 0 && dt <= 0) || (*t == 1 && dt >= 0) {
		pos, _ := c.boundary(*t)
		return pos, nil
	}
	seg := c.locate(*t)
	pos := seg.EvaluateWithVelocity(t, dt)
	if *t <= 0 || *t >= 1 {
		*t = arcspline.Clamp01(*t)
		pos, _ = c.boundary(*t)
		return pos, nil
	}
	if !seg.InRange(*t) {
		seg = c.locate(*t)
		pos = seg.Point(arcspline.Clamp01(seg.GlobalToLocalT(*t)))
	}
	return pos, nil
}

// Tangent returns the derivative of the spline at t. The result is not
// normalized. If unstretch is set, the segment's piecewise remapping is
// applied first. Splines without segments have a zero tangent.
func (sp *Spline) Tangent(t float64, unstretch bool) (mgl64.Vec3, error) {
	c, err := sp.snapshot()
	if err != nil {
		return mgl64.Vec3{}, err
	}
	if len(c.segments) == 0 {
		return mgl64.Vec3{}, nil
	}
	t = arcspline.Clamp01(t)
	return c.locate(t).Tangent(t, unstretch), nil
}

// Rotation returns the orientation at t, interpolated between the node
// orientations of the owning segment.
func (sp *Spline) Rotation(t float64, unstretch bool) (mgl64.Quat, error) {
	c, err := sp.snapshot()
	if err != nil {
		return mgl64.QuatIdent(), err
	}
	if len(c.segments) == 0 {
		return c.nodes[0].Orientation(), nil
	}
	t = arcspline.Clamp01(t)
	return c.locate(t).Rotation(t, unstretch), nil
}

// Length returns the estimated total arc length.
func (sp *Spline) Length() (float64, error) {
	c, err := sp.snapshot()
	if err != nil {
		return 0, err
	}
	return c.length, nil
}

// SegmentCount returns the number of segments. Closed splines with n > 1
// nodes have n segments, open ones n-1.
func (sp *Spline) SegmentCount() (int, error) {
	c, err := sp.snapshot()
	if err != nil {
		return 0, err
	}
	return len(c.segments), nil
}

// Segment returns segment i of the current snapshot.
func (sp *Spline) Segment(i int) (*Segment, error) {
	c, err := sp.snapshot()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(c.segments) {
		return nil, fmt.Errorf("segment index %d out of range [0,%d)", i, len(c.segments))
	}
	return c.segments[i], nil
}

// Nodes returns a copy of the nodes of the current snapshot. For closed
// splines, the first node is repeated at the end.
func (sp *Spline) Nodes() ([]arcspline.Node, error) {
	c, err := sp.snapshot()
	if err != nil {
		return nil, err
	}
	nodes := make([]arcspline.Node, len(c.nodes))
	copy(nodes, c.nodes)
	return nodes, nil
}
