// Package hobby finds smooth handles for knots in a coordinate plane. It
// provides an implementation of John Hobby's spline interpolation algorithm.
/*

Spline interpolation by Hobby's algorithm results in aesthetically pleasing
curves superior to "normal" spline interpolation (as used in many graphics
programs). The primary source of information for "Hobby-splines" is:

	Smooth, Easy to Compute Interpolating Splines -- John D. Hobby
	Computer Science Dept. Stanford University
	Report No. STAN-CS-85-1047, Jan 1985

The practical algorithm is explained in

	Computers & Typesetting, Vol. B & D.

The notation sticks closely to the original code in MetaFont.

Hobby's algorithm is planar. Paths live in one of the coordinate planes
(arcspline.XY, XZ or YZ); the third coordinate of each knot is carried
along and interpolated linearly into the handles, which is good enough for
gently sloped routes on a ground plane.

# Usage

Clients build a "skeleton" path without any handle information. It may
contain various parameters at knots and/or joins. In the MetaFont/MetaPost
DSL one may specify it as follows:

	(0,0)..(2,3)..tension 1.4..(5,3)..(3,-1){left}..cycle

With package hobby, clients build the same path with a kind of builder
pattern:

	Nullpath(arcspline.XY).Knot(V(0,0,0)).Curve().Knot(V(2,3,0)).TensionCurve(1.4,1.4).Knot(V(5,3,0))
	   .Curve().DirKnot(V(3,-1,0),V(-1,0,0)).Curve().Cycle()

A built path is then solved:

	nodes, err := path.Solve()

which returns spline nodes with handles producing a smooth curve. Nodes may
be handed to spline.Build directly, or applied to a knot chain by
knots.Chain.Smooth.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package hobby

// AsString returns the skeleton of a path as a (debugging) string, in
// MetaFont notation. Example, a circle of diameter 2 around (2,1):
//
//	(1,1) .. (2,2) .. (3,1) .. (2,0) .. cycle
//
// Joins with curl on both sides are written as "--".
func AsString(path *Path) string {
	var s string
	for i := 0; i < path.N(); i++ {
		if i > 0 {
			s += join(path, i-1)
		}
		s += ptstring(path.Z(i), false)
	}
	if path.IsCycle() {
		s += join(path, path.N()-1) + "cycle"
	}
	return s
}

func join(path *Path, i int) string {
	j := i + 1
	if path.IsCycle() {
		j = path.wrap(j)
	}
	if path.PostCurl(i) == 1 && path.PreCurl(j) == 1 {
		return " -- "
	}
	return " .. "
}
