package hobby

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Hobby's velocity function f(theta, phi), which gives the relative length
// of the handle leaving at angle theta towards a knot entered at angle phi.
func velocity(theta, phi float64) float64 {
	constA := 1.41421356     // sqrt(2) -- empiric constants, as explained by J.Hobby
	constB := 0.0625         // 1/16
	constC := 0.38196601125  // (3 - sqrt(5)) / 2
	constCC := 0.61803398875 // 1 - c
	st, ct := math.Sin(theta), math.Cos(theta)
	sf, cf := math.Sin(phi), math.Cos(phi)
	alpha := constA * (st - constB*sf) * (sf - constB*st) * (ct - cf)
	beta := 1 + constCC*ct + constC*cf
	return (2 + alpha) / beta
}

// Calculate control point offsets between z.i and z.[i+1]: p2 is relative to
// z.i, p3 is to be subtracted from z.[i+1].
func controlPoints(phi, theta, a, b float64, dvec complex128) (complex128, complex128) {
	rho := velocity(theta, phi)
	sigma := velocity(phi, theta)
	uv1 := dvec * cmplx.Rect(1, theta)
	uv2 := dvec * cmplx.Rect(1, -phi)
	p2 := complex(a/3*rho, 0) * uv1
	p3 := complex(b/3*sigma, 0) * uv2
	return p2, p3
}

// Extend a slice of pairs to make room for index i.
// Will do nothing if the slice is already large enough.
func extendC(arr []complex128, i int, deflt complex128) []complex128 {
	for len(arr) <= i {
		arr = append(arr, deflt)
	}
	return arr
}

// Get a value from a slice if present, default value deflt otherwise.
func getC(arr []complex128, i int, deflt complex128) complex128 {
	if i < 0 || i >= len(arr) {
		return deflt
	}
	return arr[i]
}

func angle(pr complex128) float64 {
	if cmplx.IsNaN(pr) {
		return 0.0
	}
	return cmplx.Phase(pr)
}

// Reduce an angle to fit into -pi .. pi.
func reduceAngle(a float64) float64 {
	if math.Abs(a) > math.Pi {
		if a > 0 {
			a -= 2 * math.Pi
		} else {
			a += 2 * math.Pi
		}
	}
	return a
}

// Return 1/a for a.
func recip(a float64) float64 {
	if math.IsNaN(a) {
		return 1.0
	}
	return 1.0 / a
}

// Return a^2 for a.
func square(a float64) float64 {
	return a * a
}

func rad2deg(a float64) float64 {
	return a * 180 / math.Pi
}

func ptstring(p complex128, iscontrol bool) string {
	if cmplx.IsNaN(p) {
		return "(<unknown>)"
	}
	if iscontrol {
		return fmt.Sprintf("(%.4f,%.4f)", round(real(p)), round(imag(p)))
	}
	return fmt.Sprintf("(%.4g,%.4g)", round(real(p)), round(imag(p)))
}

func round(x float64) float64 {
	if x >= 0 {
		return float64(int64(x*10000.0+0.5)) / 10000.0
	}
	return float64(int64(x*10000.0-0.5)) / 10000.0
}
