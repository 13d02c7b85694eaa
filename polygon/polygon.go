/*
Package polygon flattens splines into polylines and builds 2D polygons from
them.

Polylines are what a preview or drawing layer needs: positions sampled at
equal steps of t. Footprints project a sampled spline onto a coordinate
plane, giving a polygon which may be tested for containment or clipped
against other polygons.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package polygon

import (
	"errors"
	"fmt"
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/arcspline"
	"github.com/npillmayer/schuko/tracing"
)

// L traces to the polygon tracer.
func L() tracing.Trace {
	return tracing.Select("arcspline.polygon")
}

var (
	// ErrSteps indicates a sample count below 1.
	ErrSteps = errors.New("sample steps must be at least 1")
	// ErrTooFewPoints indicates a footprint with less than 3 distinct points.
	ErrTooFewPoints = errors.New("footprint has too few distinct points")
	// ErrNoArea indicates a footprint whose points are all on a line.
	ErrNoArea = errors.New("footprint encloses no area")
)

// P is a quick notation for constructing a 2D point.
func P(x, y float64) polyclip.Point {
	return polyclip.Point{X: x, Y: y}
}

// Sampler is what flattening needs from a spline. *spline.Spline
// implements it.
type Sampler interface {
	EvaluateStateless(t float64, constantSpeed bool) (mgl64.Vec3, error)
}

// Flatten samples path at steps+1 equally spaced values of t, including both
// ends.
func Flatten(path Sampler, steps int, constantSpeed bool) ([]mgl64.Vec3, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrSteps, steps)
	}
	points := make([]mgl64.Vec3, 0, steps+1)
	for i := 0; i <= steps; i++ {
		p, err := path.EvaluateStateless(float64(i)/float64(steps), constantSpeed)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// Project drops the coordinate orthogonal to plane.
func Project(plane arcspline.Plane, v mgl64.Vec3) polyclip.Point {
	x, y, _ := plane.Coords(v)
	return P(x, y)
}

// Polygon is a closed or open sequence of 2D points.
type Polygon struct {
	contour polyclip.Contour
	cycle   bool
}

// NullPolygon creates an empty polygon, to be extended by subsequent builder
// calls:
//
//	pg := NullPolygon().Knot(P(0,0)).Knot(P(1,3)).Knot(P(3,0)).Cycle()
func NullPolygon() *Polygon {
	return &Polygon{}
}

// Knot appends a point. Part of builder functionality.
func (pg *Polygon) Knot(p polyclip.Point) *Polygon {
	pg.contour.Add(p)
	return pg
}

// Cycle closes the polygon. Part of builder functionality.
func (pg *Polygon) Cycle() *Polygon {
	pg.cycle = true
	return pg
}

// Box creates a closed, axis-aligned rectangle from two opposite corners.
func Box(a, b polyclip.Point) *Polygon {
	x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return NullPolygon().Knot(P(x0, y0)).Knot(P(x1, y0)).Knot(P(x1, y1)).Knot(P(x0, y1)).Cycle()
}

// Footprint samples path and projects it onto plane, giving a closed
// polygon. For open splines the polygon is closed by a straight edge.
func Footprint(path Sampler, steps int, plane arcspline.Plane) (*Polygon, error) {
	points, err := Flatten(path, steps, true)
	if err != nil {
		return nil, err
	}
	pg := NullPolygon()
	for _, v := range points {
		p := Project(plane, v)
		if n := pg.N(); n > 0 && samePoint(pg.contour[n-1], p) {
			continue
		}
		pg.Knot(p)
	}
	if n := pg.N(); n > 1 && samePoint(pg.contour[0], pg.contour[n-1]) {
		pg.contour = pg.contour[:n-1]
	}
	if pg.N() < 3 {
		return nil, fmt.Errorf("%w: %d", ErrTooFewPoints, pg.N())
	}
	if arcspline.Is0(pg.Area()) {
		return nil, ErrNoArea
	}
	L().Debugf("footprint with %d points, area %.4g", pg.N(), pg.Area())
	return pg.Cycle(), nil
}

func samePoint(a, b polyclip.Point) bool {
	return arcspline.Is0(a.X-b.X) && arcspline.Is0(a.Y-b.Y)
}

// N returns the number of points.
func (pg *Polygon) N() int {
	return len(pg.contour)
}

// IsCycle is a predicate: is this polygon closed?
func (pg *Polygon) IsCycle() bool {
	return pg.cycle
}

// Point returns point (i mod N).
func (pg *Polygon) Point(i int) polyclip.Point {
	i %= pg.N()
	if i < 0 {
		i += pg.N()
	}
	return pg.contour[i]
}

// Contains is a predicate: is p inside the polygon? Open polygons contain
// nothing.
func (pg *Polygon) Contains(p polyclip.Point) bool {
	if !pg.cycle || pg.N() < 3 {
		return false
	}
	return pg.contour.Contains(p)
}

// Area returns the enclosed area (shoelace formula), regardless of the
// orientation of the points.
func (pg *Polygon) Area() float64 {
	return math.Abs(contourArea(pg.contour))
}

func contourArea(c polyclip.Contour) float64 {
	a := 0.0
	for i := range c {
		j := (i + 1) % len(c)
		a += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return a / 2
}

// Area sums the areas of all contours of a clipping result. Holes are not
// subtracted.
func Area(p polyclip.Polygon) float64 {
	a := 0.0
	for _, c := range p {
		a += math.Abs(contourArea(c))
	}
	return a
}

// BoundingBox returns the smallest axis-aligned rectangle containing all
// points.
func (pg *Polygon) BoundingBox() polyclip.Rectangle {
	return pg.contour.BoundingBox()
}

// Polyclip returns the polygon in polyclip's representation.
func (pg *Polygon) Polyclip() polyclip.Polygon {
	return polyclip.Polygon{pg.contour.Clone()}
}

// Intersection clips pg against other.
func (pg *Polygon) Intersection(other *Polygon) polyclip.Polygon {
	return pg.Polyclip().Construct(polyclip.INTERSECTION, other.Polyclip())
}

// Union merges pg and other.
func (pg *Polygon) Union(other *Polygon) polyclip.Polygon {
	return pg.Polyclip().Construct(polyclip.UNION, other.Polyclip())
}

// Difference subtracts other from pg.
func (pg *Polygon) Difference(other *Polygon) polyclip.Polygon {
	return pg.Polyclip().Construct(polyclip.DIFFERENCE, other.Polyclip())
}

// Overlaps is a predicate: do pg and other share some area?
func (pg *Polygon) Overlaps(other *Polygon) bool {
	if !pg.BoundingBox().Overlaps(other.BoundingBox()) {
		return false
	}
	return !arcspline.Is0(Area(pg.Intersection(other)))
}

// AsString returns a polygon as a (debugging) string.
func AsString(pg *Polygon) string {
	s := ""
	for i, p := range pg.contour {
		if i > 0 {
			s += " -- "
		}
		s += fmt.Sprintf("(%g,%g)", p.X, p.Y)
	}
	if pg.cycle {
		s += " -- cycle"
	}
	return s
}
