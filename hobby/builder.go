package hobby

import (
	"math"
	"math/cmplx"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/arcspline"
)

// Nullpath creates an empty path in a coordinate plane, to be extended by
// subsequent builder calls. The following example builds a closed path of
// three knots on the ground plane, which are connected by a curve, then a
// straight line, and a curve again.
//
//	path := Nullpath(arcspline.XZ).Knot(V(0,0,0)).Curve().Knot(V(3,0,2)).Line().Knot(V(5,0,2.5)).Curve().Cycle()
//	nodes, err := path.Solve()
//
// Calling Cycle() or End() returns the path. Knots off the plane keep their
// depth; handles interpolate it linearly.
func Nullpath(plane arcspline.Plane) *Path {
	return &Path{plane: plane}
}

// End an open path. Part of builder functionality.
func (path *Path) End() *Path {
	path.cycle = false
	return path
}

// Cycle closes a cyclic path. Part of builder functionality.
//
// Parameters set for the knot after the last one (by Line() or
// TensionCurve()) are moved to the first knot.
func (path *Path) Cycle() *Path {
	path.cycle = true
	n := path.N()
	if n == 0 {
		return path
	}
	if len(path.curls) > n {
		if pre := real(path.curls[n]); !math.IsNaN(pre) {
			path.SetPreCurl(0, pre)
		}
		path.curls = path.curls[:n]
	}
	if len(path.tensions) > n {
		path.SetPreTension(0, real(path.tensions[n]))
		path.tensions = path.tensions[:n]
	}
	return path
}

// Knot adds a standard smooth knot to a path. Part of builder functionality.
func (path *Path) Knot(v mgl64.Vec3) *Path {
	x, y, depth := path.plane.Coords(v)
	path.points = append(path.points, complex(x, y))
	path.depths = append(path.depths, depth)
	return path
}

// CurlKnot adds a knot with curl information to a path. Callers may specify
// pre- and/or post-curl; NaN leaves a side unset. A curl value of 1.0 is
// considered neutral. Part of builder functionality.
func (path *Path) CurlKnot(v mgl64.Vec3, precurl, postcurl float64) *Path {
	path.Knot(v)
	if !math.IsNaN(precurl) {
		path.SetPreCurl(path.N()-1, precurl)
	}
	if !math.IsNaN(postcurl) {
		path.SetPostCurl(path.N()-1, postcurl)
	}
	return path
}

// DirKnot adds a knot with a given tangent direction. Only the in-plane part
// of dir counts. Part of builder functionality.
func (path *Path) DirKnot(v mgl64.Vec3, dir mgl64.Vec3) *Path {
	path.Knot(v)
	path.SetPreDir(path.N()-1, dir)
	path.SetPostDir(path.N()-1, dir)
	return path
}

// Line connects the last knot and the next one with a straight line.
// Part of builder functionality.
func (path *Path) Line() *Path {
	if path.N() == 0 {
		panic("cannot add line to empty path")
	}
	path.SetPostCurl(path.N()-1, 1.0)
	path.SetPreCurl(path.N(), 1.0)
	return path
}

// Curve connects two knots with a smooth curve.
// Part of builder functionality.
func (path *Path) Curve() *Path {
	return path.TensionCurve(1.0, 1.0)
}

// TensionCurve connects two knots with a tense curve.
// Part of builder functionality.
//
// Tensions are adapted to lie between 3/4 and 4 (absolute).
func (path *Path) TensionCurve(t1, t2 float64) *Path {
	if path.N() == 0 {
		panic("cannot add curve to empty path")
	}
	if t1 != 1.0 {
		path.SetPostTension(path.N()-1, t1)
	}
	if t2 != 1.0 {
		path.SetPreTension(path.N(), t2)
	}
	return path
}

// SetPreDir is a property setter.
func (path *Path) SetPreDir(i int, dir mgl64.Vec3) *Path {
	path.predirs = extendC(path.predirs, i, unknown)
	path.predirs[i] = path.inPlane(dir)
	return path
}

// SetPostDir is a property setter.
func (path *Path) SetPostDir(i int, dir mgl64.Vec3) *Path {
	path.postdirs = extendC(path.postdirs, i, unknown)
	path.postdirs[i] = path.inPlane(dir)
	return path
}

func (path *Path) inPlane(dir mgl64.Vec3) complex128 {
	x, y, _ := path.plane.Coords(dir)
	return complex(x, y)
}

// SetPreCurl is a property setter.
func (path *Path) SetPreCurl(i int, curl float64) *Path {
	path.curls = extendC(path.curls, i, unknown)
	path.curls[i] = complex(math.Max(curl, 0), imag(path.curls[i]))
	return path
}

// SetPostCurl is a property setter.
func (path *Path) SetPostCurl(i int, curl float64) *Path {
	path.curls = extendC(path.curls, i, unknown)
	path.curls[i] = complex(real(path.curls[i]), math.Max(curl, 0))
	return path
}

// SetPreTension is a property setter.
//
// Tensions are adapted to lie between 3/4 and 4 (absolute).
func (path *Path) SetPreTension(i int, tension float64) *Path {
	path.tensions = extendC(path.tensions, i, 1+1i)
	path.tensions[i] = complex(clampTension(tension), imag(path.tensions[i]))
	return path
}

// SetPostTension is a property setter.
//
// Tensions are adapted to lie between 3/4 and 4 (absolute).
func (path *Path) SetPostTension(i int, tension float64) *Path {
	path.tensions = extendC(path.tensions, i, 1+1i)
	path.tensions[i] = complex(real(path.tensions[i]), clampTension(tension))
	return path
}

func clampTension(t float64) float64 {
	t = math.Abs(t)
	if t < 0.75 {
		return 0.75
	} else if t > 4.0 {
		return 4.0
	}
	return t
}

// Plane returns the coordinate plane of the path.
func (path *Path) Plane() arcspline.Plane {
	return path.plane
}

// IsCycle is a predicate: is this path cyclic?
func (path *Path) IsCycle() bool {
	return path.cycle
}

// N returns the length of this path (knot count).
func (path *Path) N() int {
	return len(path.points)
}

// Z returns the in-plane position of knot (i mod N).
func (path *Path) Z(i int) complex128 {
	return path.points[path.wrap(i)]
}

func (path *Path) depth(i int) float64 {
	return path.depths[path.wrap(i)]
}

func (path *Path) wrap(i int) int {
	n := path.N()
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// PreDir gets the incoming direction at z.i, NaN if unset. A knot with only
// an outgoing direction and no incoming curl uses it for both sides.
func (path *Path) PreDir(i int) complex128 {
	d := getC(path.predirs, i, unknown)
	if cmplx.IsNaN(d) && math.IsNaN(path.PreCurl(i)) {
		d = getC(path.postdirs, i, unknown)
	}
	return d
}

// PostDir gets the outgoing direction at z.i, NaN if unset. A knot with only
// an incoming direction and no outgoing curl uses it for both sides.
func (path *Path) PostDir(i int) complex128 {
	d := getC(path.postdirs, i, unknown)
	if cmplx.IsNaN(d) && math.IsNaN(path.PostCurl(i)) {
		d = getC(path.predirs, i, unknown)
	}
	return d
}

// PreCurl gets the curl before z.i, NaN if unset.
func (path *Path) PreCurl(i int) float64 {
	return real(getC(path.curls, i, unknown))
}

// PostCurl gets the curl after z.i, NaN if unset.
func (path *Path) PostCurl(i int) float64 {
	return imag(getC(path.curls, i, unknown))
}

// PreTension returns the tension before z.i.
func (path *Path) PreTension(i int) float64 {
	return real(getC(path.tensions, i, 1+1i))
}

// PostTension returns the tension after z.i.
func (path *Path) PostTension(i int) float64 {
	return imag(getC(path.tensions, i, 1+1i))
}
