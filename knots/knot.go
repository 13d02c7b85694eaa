package knots

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/arcspline"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'arcspline.knots'
func tracer() tracing.Trace {
	return tracing.Select("arcspline.knots")
}

var (
	// ErrKnotIndex indicates an index outside of a chain.
	ErrKnotIndex = errors.New("knot index out of range")
	// ErrZeroStrength indicates a handle strength scale of 0, which would
	// collapse handles onto their knot irreversibly.
	ErrZeroStrength = errors.New("handle strength must not be 0")
	// ErrZeroScale indicates a knot scale of 0.
	ErrZeroScale = errors.New("knot scale must not be 0")
)

// Symmetry controls how editing one handle of a knot affects the other one.
type Symmetry uint8

const (
	// Full mirrors the handle vector through the knot.
	Full Symmetry = iota
	// Angle mirrors the handle direction, but keeps the other handle's length.
	Angle
	// None leaves the other handle alone.
	None
)

func (s Symmetry) String() string {
	switch s {
	case Full:
		return "full"
	case Angle:
		return "angle"
	case None:
		return "none"
	}
	return fmt.Sprintf("symmetry(%d)", s)
}

// Knot is an editable spline node. Its handles are stored relative to the
// knot's own placement (position, rotation, uniform scale), so moving or
// turning a knot carries its handles along.
//
// World-space handle = placement(local handle · knot strength · chain strength)
type Knot struct {
	chain    *Chain
	position mgl64.Vec3
	rotation mgl64.Quat
	scale    float64
	h1, h2   mgl64.Vec3 // knot-local
	strength float64
	symmetry Symmetry
}

// NewKnot creates a knot at pos with handles one unit behind and ahead of
// it along the local z-axis, and full symmetry.
func NewKnot(pos mgl64.Vec3) *Knot {
	return &Knot{
		position: pos,
		rotation: mgl64.QuatIdent(),
		scale:    1,
		h1:       arcspline.V(0, 0, -1),
		h2:       arcspline.V(0, 0, 1),
		strength: 1,
		symmetry: Full,
	}
}

func (k *Knot) frame() arcspline.Frame {
	return arcspline.Placement(k.position, k.rotation, k.scale)
}

func (k *Knot) handleScale() float64 {
	s := k.strength
	if k.chain != nil {
		s *= k.chain.strength
	}
	return s
}

func (k *Knot) toWorld(local mgl64.Vec3) mgl64.Vec3 {
	return k.frame().Transform(local.Mul(k.handleScale()))
}

func (k *Knot) toLocal(world mgl64.Vec3) mgl64.Vec3 {
	return k.frame().Inverse().Transform(world).Mul(1 / k.handleScale())
}

// Position returns the world-space position of the knot.
func (k *Knot) Position() mgl64.Vec3 {
	return k.position
}

// Rotation returns the knot's orientation.
func (k *Knot) Rotation() mgl64.Quat {
	return k.rotation
}

// Symmetry returns the knot's handle symmetry mode.
func (k *Knot) Symmetry() Symmetry {
	return k.symmetry
}

// H1 returns the world-space position of the incoming handle.
func (k *Knot) H1() mgl64.Vec3 {
	return k.toWorld(k.h1)
}

// H2 returns the world-space position of the outgoing handle.
func (k *Knot) H2() mgl64.Vec3 {
	return k.toWorld(k.h2)
}

// LocalHandles returns both handles in knot-local space, without strength
// scaling.
func (k *Knot) LocalHandles() (mgl64.Vec3, mgl64.Vec3) {
	return k.h1, k.h2
}

// SetPosition moves the knot, carrying its handles along.
func (k *Knot) SetPosition(pos mgl64.Vec3) *Knot {
	k.position = pos
	k.changed()
	return k
}

// SetRotation turns the knot around its position, carrying its handles along.
func (k *Knot) SetRotation(q mgl64.Quat) *Knot {
	k.rotation = arcspline.NormalizedQuat(q)
	k.changed()
	return k
}

// SetScale scales the knot's handles uniformly around its position.
func (k *Knot) SetScale(s float64) error {
	if arcspline.Is0(s) {
		return ErrZeroScale
	}
	k.scale = s
	k.changed()
	return nil
}

// SetStrength sets the knot's handle strength scale.
func (k *Knot) SetStrength(s float64) error {
	if arcspline.Is0(s) {
		return ErrZeroStrength
	}
	k.strength = s
	k.changed()
	return nil
}

// SetH1 moves the incoming handle to a world-space position. The outgoing
// handle follows according to the knot's symmetry.
func (k *Knot) SetH1(world mgl64.Vec3) *Knot {
	k.h1 = k.toLocal(world)
	k.h2 = mirror(k.symmetry, k.h1, k.h2)
	k.changed()
	return k
}

// SetH2 moves the outgoing handle to a world-space position. The incoming
// handle follows according to the knot's symmetry.
func (k *Knot) SetH2(world mgl64.Vec3) *Knot {
	k.h2 = k.toLocal(world)
	k.h1 = mirror(k.symmetry, k.h2, k.h1)
	k.changed()
	return k
}

// SetSymmetry changes the symmetry mode. The outgoing handle is realigned to
// the incoming one.
func (k *Knot) SetSymmetry(s Symmetry) *Knot {
	if s == k.symmetry {
		return k
	}
	k.symmetry = s
	k.h2 = mirror(s, k.h1, k.h2)
	k.changed()
	return k
}

// Node returns a world-space snapshot of the knot.
func (k *Knot) Node() arcspline.Node {
	return arcspline.Node{
		Position: k.position,
		H1:       k.H1(),
		H2:       k.H2(),
		Rotation: k.rotation,
	}
}

func (k *Knot) changed() {
	if k.chain != nil {
		k.chain.changed()
	}
}

// mirror returns the new slave handle for an edited master handle.
func mirror(s Symmetry, master, slave mgl64.Vec3) mgl64.Vec3 {
	switch s {
	case Full:
		return master.Mul(-1)
	case Angle:
		m := master.Len()
		if arcspline.Is0(m) {
			tracer().Debugf("angle symmetry with zero-length handle, keeping other handle")
			return slave
		}
		return master.Mul(-slave.Len() / m)
	}
	return slave
}
