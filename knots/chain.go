package knots

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/arcspline"
	"github.com/npillmayer/arcspline/hobby"
	"github.com/npillmayer/arcspline/spline"
)

// Invalidator is notified whenever a chain's geometry changes.
// *spline.Spline implements it.
type Invalidator interface {
	MarkDirty()
}

// closer is implemented by invalidators which care about the chain being
// closed, like *spline.Spline.
type closer interface {
	SetClosed(bool)
}

// Chain is an ordered, editable sequence of knots. It is a NodeSource for
// splines and tells its watchers about every change of knot geometry, knot
// count, knot order or the closed flag.
type Chain struct {
	knots    []*Knot
	cycle    bool
	strength float64
	watchers []Invalidator
}

var _ arcspline.NodeSource = (*Chain)(nil)

// Nullchain creates an empty chain, to be extended by subsequent builder
// calls:
//
//	chain := Nullchain().Knot(V(0,0,0)).Knot(V(3,1,0)).Knot(V(5,0,2)).Cycle()
//
// Calling Cycle() or End() returns the chain.
func Nullchain() *Chain {
	return &Chain{strength: 1}
}

// End an open chain. Part of builder functionality.
func (c *Chain) End() *Chain {
	c.SetCycle(false)
	return c
}

// Cycle closes a chain. Part of builder functionality.
func (c *Chain) Cycle() *Chain {
	c.SetCycle(true)
	return c
}

// Knot appends a knot with default handles at pos. Part of builder
// functionality.
func (c *Chain) Knot(pos mgl64.Vec3) *Chain {
	return c.Append(NewKnot(pos))
}

// HandleKnot appends a knot with explicit world-space handles and no
// handle symmetry. Part of builder functionality.
func (c *Chain) HandleKnot(pos, h1, h2 mgl64.Vec3) *Chain {
	k := NewKnot(pos)
	k.symmetry = None
	k.chain = c
	k.h1 = k.toLocal(h1)
	k.h2 = k.toLocal(h2)
	return c.Append(k)
}

// Append adds a knot at the end of the chain. A knot belongs to one chain
// at a time.
func (c *Chain) Append(k *Knot) *Chain {
	if k.chain != nil && k.chain != c {
		panic("knot already belongs to another chain")
	}
	k.chain = c
	c.knots = append(c.knots, k)
	c.changed()
	return c
}

// Insert adds a knot in front of knot i. i = N() appends.
func (c *Chain) Insert(i int, k *Knot) error {
	if i < 0 || i > c.N() {
		return fmt.Errorf("%w: %d", ErrKnotIndex, i)
	}
	if k.chain != nil && k.chain != c {
		panic("knot already belongs to another chain")
	}
	k.chain = c
	c.knots = append(c.knots, nil)
	copy(c.knots[i+1:], c.knots[i:])
	c.knots[i] = k
	c.changed()
	return nil
}

// Remove deletes knot i from the chain and returns it.
func (c *Chain) Remove(i int) (*Knot, error) {
	if i < 0 || i >= c.N() {
		return nil, fmt.Errorf("%w: %d", ErrKnotIndex, i)
	}
	k := c.knots[i]
	c.knots = append(c.knots[:i], c.knots[i+1:]...)
	k.chain = nil
	c.changed()
	return k, nil
}

// Swap exchanges knots i and j.
func (c *Chain) Swap(i, j int) error {
	if i < 0 || i >= c.N() || j < 0 || j >= c.N() {
		return fmt.Errorf("%w: %d, %d", ErrKnotIndex, i, j)
	}
	c.knots[i], c.knots[j] = c.knots[j], c.knots[i]
	c.changed()
	return nil
}

// N returns the number of knots.
func (c *Chain) N() int {
	return len(c.knots)
}

// K returns the knot at position (i mod N).
func (c *Chain) K(i int) *Knot {
	if c.N() == 0 {
		panic("cannot get knot of empty chain")
	}
	i %= c.N()
	if i < 0 {
		i += c.N()
	}
	return c.knots[i]
}

// IsCycle is a predicate: is this chain closed?
func (c *Chain) IsCycle() bool {
	return c.cycle
}

// SetCycle opens or closes the chain.
func (c *Chain) SetCycle(cycle bool) {
	if c.cycle == cycle {
		return
	}
	c.cycle = cycle
	for _, w := range c.watchers {
		if cl, ok := w.(closer); ok {
			cl.SetClosed(cycle)
		}
	}
	c.changed()
}

// Strength returns the chain-wide handle strength scale.
func (c *Chain) Strength() float64 {
	return c.strength
}

// SetStrength sets the chain-wide handle strength scale, which multiplies
// every knot's own strength.
func (c *Chain) SetStrength(s float64) error {
	if arcspline.Is0(s) {
		return ErrZeroStrength
	}
	c.strength = s
	c.changed()
	return nil
}

// Nodes implements arcspline.NodeSource, returning a world-space snapshot of
// all knots.
func (c *Chain) Nodes() []arcspline.Node {
	nodes := make([]arcspline.Node, len(c.knots))
	for i, k := range c.knots {
		nodes[i] = k.Node()
	}
	return nodes
}

// Smooth replaces the handles of all knots by those of a Hobby spline
// through the knot positions, solved in plane. Knots switch to angle
// symmetry, so that later handle edits keep the curve smooth. Watchers are
// notified once.
func (c *Chain) Smooth(plane arcspline.Plane) error {
	path := hobby.Nullpath(plane)
	for _, k := range c.knots {
		path.Knot(k.position)
	}
	if c.cycle {
		path.Cycle()
	}
	nodes, err := path.Solve()
	if err != nil {
		return err
	}
	for i, k := range c.knots {
		k.symmetry = Angle
		k.h1 = k.toLocal(nodes[i].H1)
		k.h2 = k.toLocal(nodes[i].H2)
	}
	c.changed()
	return nil
}

// Watch registers an invalidator to be notified on changes. Watchers
// implementing SetClosed(bool) are told the chain's closed state right away.
func (c *Chain) Watch(w Invalidator) {
	c.watchers = append(c.watchers, w)
	if cl, ok := w.(closer); ok {
		cl.SetClosed(c.cycle)
	}
	w.MarkDirty()
}

// Spline creates a spline over this chain, watching it for changes.
func (c *Chain) Spline(opts ...spline.Option) (*spline.Spline, error) {
	opts = append(opts, spline.WithClosed(c.cycle))
	sp, err := spline.New(c, opts...)
	if err != nil {
		return nil, err
	}
	c.Watch(sp)
	return sp, nil
}

func (c *Chain) changed() {
	tracer().Debugf("chain of %d knots changed, notifying %d watchers", c.N(), len(c.watchers))
	for _, w := range c.watchers {
		w.MarkDirty()
	}
}

// AsString returns the knots of a chain as a (debugging) string.
func AsString(c *Chain) string {
	s := ""
	for i, k := range c.knots {
		if i > 0 {
			s += " .. "
		}
		s += fmt.Sprintf("%s{%s}", arcspline.VecString(arcspline.ZapVec(k.position)), k.symmetry)
	}
	if c.cycle {
		s += " .. cycle"
	}
	return s
}
