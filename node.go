package arcspline

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Node is a control node of a spline, as seen by the evaluator: a world-space
// position and two world-space handles. H1 shapes the curve arriving at the
// node, H2 the curve leaving it.
//
// Rotation is an optional orientation, used for interpolating orientations
// along a spline. Handles do not depend on it: only the raw coordinates
// matter for the curve.
type Node struct {
	Position mgl64.Vec3
	H1       mgl64.Vec3
	H2       mgl64.Vec3
	Rotation mgl64.Quat
}

// StraightNode creates a node with both handles on the node position,
// rotation unset.
func StraightNode(pos mgl64.Vec3) Node {
	return Node{Position: pos, H1: pos, H2: pos}
}

// Orientation returns the node's rotation as a unit quaternion.
func (n Node) Orientation() mgl64.Quat {
	return NormalizedQuat(n.Rotation)
}

// IsValid is a predicate: are all coordinates finite?
func (n Node) IsValid() bool {
	return IsFinite(n.Position) && IsFinite(n.H1) && IsFinite(n.H2)
}

func (n Node) String() string {
	return fmt.Sprintf("%s[%s,%s]", VecString(n.Position), VecString(n.H1), VecString(n.H2))
}

// NodeSource supplies an ordered sequence of nodes. Implementations are read
// at rebuild time only; a spline never watches its source for changes.
type NodeSource interface {
	Nodes() []Node
}

// NodeList is a NodeSource backed by a plain slice. Clients may edit its
// elements in place and then tell the spline to recache.
type NodeList []Node

// Nodes implements NodeSource.
func (l NodeList) Nodes() []Node {
	return l
}
