package arcspline

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// === Affine Transformations ================================================

// Frame is an affine transform in 3D space, used for transforming points
// from a node's local space into world space.
type Frame struct {
	m mgl64.Mat4
}

// Identity transform. Will transform a point onto itself.
func Identity() Frame {
	return Frame{m: mgl64.Ident4()}
}

// Translation transform. Translate a point by v.
func Translation(v mgl64.Vec3) Frame {
	return Frame{m: mgl64.Translate3D(v[0], v[1], v[2])}
}

// Rotation transform. Rotate a point around the origin by quaternion q.
// A zero quaternion is treated as no rotation.
func Rotation(q mgl64.Quat) Frame {
	return Frame{m: NormalizedQuat(q).Mat4()}
}

// Scaling transform. Scale a point uniformly by s.
func Scaling(s float64) Frame {
	return Frame{m: mgl64.Scale3D(s, s, s)}
}

// Placement is the usual TRS frame of an object: scale first, then rotate,
// then translate to pos.
func Placement(pos mgl64.Vec3, rot mgl64.Quat, scale float64) Frame {
	return Scaling(scale).Combine(Rotation(rot)).Combine(Translation(pos))
}

// Combine 2 affine transformations to a new one. The resulting frame applies
// f first, then n. Returns a new transformation without changing the
// argument(s).
func (f Frame) Combine(n Frame) Frame {
	return Frame{m: n.m.Mul4(f.m)}
}

// Transform a 3D-point. The argument is unchanged and a new point is returned.
func (f Frame) Transform(p mgl64.Vec3) mgl64.Vec3 {
	return f.m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformVector transforms a direction, ignoring the translation part.
func (f Frame) TransformVector(v mgl64.Vec3) mgl64.Vec3 {
	return f.m.Mul4x1(v.Vec4(0)).Vec3()
}

// Inverse returns the inverse transform. Singular frames (e.g., scaled by 0)
// return the identity and trace an error.
func (f Frame) Inverse() Frame {
	if f.m.Det() == 0 {
		tracer().Errorf("inverting singular frame %s", f)
		return Identity()
	}
	return Frame{m: f.m.Inv()}
}

// Debug Stringer for a frame; prints the upper 3 rows.
func (f Frame) String() string {
	m := f.m
	return fmt.Sprintf("[%g,%g,%g,%g|%g,%g,%g,%g|%g,%g,%g,%g]",
		m.At(0, 0), m.At(0, 1), m.At(0, 2), m.At(0, 3),
		m.At(1, 0), m.At(1, 1), m.At(1, 2), m.At(1, 3),
		m.At(2, 0), m.At(2, 1), m.At(2, 2), m.At(2, 3))
}

// NormalizedQuat returns q as a unit quaternion. The zero value of
// mgl64.Quat is interpreted as identity.
func NormalizedQuat(q mgl64.Quat) mgl64.Quat {
	if Is0(q.Len()) {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}
