// Package spline evaluates chains of cubic Bézier segments with approximately
// constant speed.
/*

A cubic Bézier segment, evaluated at equal steps of its parameter, does not
advance by equal distances: the curve moves faster where its handles are
far apart and slower near them. For animation along a path this is usually
unwanted. A Spline therefore maps its parameter t ∈ [0,1] onto arc length.

Arc length is estimated per segment by summing straight chords at equal
parameter steps ("integration segments"). The chord lengths, divided by the
segment length, form a table of fractions which allows remapping an arc
length fraction back to the cubic's parameter.

Two kinds of stretch correction are offered:

Piecewise correction (EvaluateStateless) is stateless. It locates the chord
containing an arc length fraction and interpolates linearly within it.

Differential correction (EvaluateStateful) is stateful. It advances a
parameter by an arc length step, dividing by the instantaneous speed of the
cubic. The caller keeps the parameter between calls:

	var t float64
	for tick := range ticks {
	    pos, err := sp.EvaluateStateful(&t, speed*tick.Seconds())
	    ...
	}

Usage

Splines read their nodes from an arcspline.NodeSource and cache segments
until told otherwise:

	nodes := arcspline.NodeList{ ... }
	sp, err := spline.New(nodes, spline.WithIntegrationSegments(50))
	pos, err := sp.EvaluateStateless(0.5, true)
	nodes[1].H1 = arcspline.V(2, 1, 0)
	sp.MarkDirty()  // without it, the old geometry would still be used

BSD License

Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package spline
