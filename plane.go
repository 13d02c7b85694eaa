package arcspline

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane is one of the coordinate planes. Planar algorithms work on the two
// in-plane coordinates and carry the third one along as depth.
type Plane uint8

// Coordinate planes. XZ is the ground plane of y-up scenes.
const (
	XY Plane = iota
	XZ
	YZ
)

func (pl Plane) String() string {
	switch pl {
	case XY:
		return "xy"
	case XZ:
		return "xz"
	case YZ:
		return "yz"
	}
	return fmt.Sprintf("plane(%d)", pl)
}

// Coords splits v into in-plane coordinates x, y and the depth along the
// plane's normal.
func (pl Plane) Coords(v mgl64.Vec3) (x, y, depth float64) {
	switch pl {
	case XZ:
		return v[0], v[2], v[1]
	case YZ:
		return v[1], v[2], v[0]
	}
	return v[0], v[1], v[2]
}

// Lift is the inverse of Coords.
func (pl Plane) Lift(x, y, depth float64) mgl64.Vec3 {
	switch pl {
	case XZ:
		return V(x, depth, y)
	case YZ:
		return V(depth, x, y)
	}
	return V(x, y, depth)
}
