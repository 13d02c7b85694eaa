/*
Package arcspline implements arc-length parameterized cubic Bézier splines
in 3D. This package holds the numeric predicates, vector helpers, affine
frames and the node data model shared by the sub-packages.

Sub-packages:

	spline   segments and splines, constant-speed evaluation
	knots    editing layer: handles, symmetry, change notification
	follow   objects travelling along a spline
	hobby    smooth handles by Hobby's algorithm, for knots in a plane
	polygon  preview sampling and 2D footprints

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package arcspline

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'arcspline'
func tracer() tracing.Trace {
	return tracing.Select("arcspline")
}

// === Numeric Data Type =====================================================

// Deg2Rad is a constant for converting from DEG to RAD or vice versa
var Deg2Rad float64 = 0.01745329251

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Is1 is a predicate: is n = 1.0 ?
func Is1(n float64) bool {
	return math.Abs(1-n) <= Epsilon
}

// Zap makes n = 0 if n "means" to be zero
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// Round to ε.
func Round(n float64) float64 {
	return math.Round(n/Epsilon) * Epsilon
}

// Clamp01 clamps n to [0,1]. NaN is mapped to 0.
func Clamp01(n float64) float64 {
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// === Vectors ===============================================================

// Origin represents the frequently used constant (0,0,0).
var Origin = V(0, 0, 0)

// V is a quick notation for constructing a 3D vector from floats.
func V(x, y, z float64) mgl64.Vec3 {
	return mgl64.Vec3{x, y, z}
}

// VecString is a pretty Stringer for vectors, "(x,y,z)".
func VecString(v mgl64.Vec3) string {
	return fmt.Sprintf("(%g,%g,%g)", v[0], v[1], v[2])
}

// ZapVec rounds every component of v to zero if it "means" to be zero.
func ZapVec(v mgl64.Vec3) mgl64.Vec3 {
	return V(Zap(v[0]), Zap(v[1]), Zap(v[2]))
}

// VecEqual compares two vectors component-wise within ε.
func VecEqual(v, w mgl64.Vec3) bool {
	return Is0(v[0]-w[0]) && Is0(v[1]-w[1]) && Is0(v[2]-w[2])
}

// IsFinite is a predicate: does v contain neither NaN nor ±Inf?
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Distance returns |v-w|.
func Distance(v, w mgl64.Vec3) float64 {
	return v.Sub(w).Len()
}
