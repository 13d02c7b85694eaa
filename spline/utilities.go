package spline

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/arcspline"
)

// Bezier calculates the position at t along a manually defined cubic
// Bézier curve. t is clamped to [0,1].
func Bezier(t float64, start, handle1, handle2, end mgl64.Vec3) mgl64.Vec3 {
	t = arcspline.Clamp01(t)
	u := 1 - t
	result := start.Mul(u * u * u)
	result = result.Add(handle1.Mul(3 * u * u * t))
	result = result.Add(handle2.Mul(3 * u * t * t))
	return result.Add(end.Mul(t * t * t))
}

// AsString returns the cached segments of a spline as a (debugging) string,
// in a notation resembling MetaPost's:
//
//	(0,0,0) .. controls (1.0000,0.0000,0.0000) and (2.0000,0.0000,0.0000)
//	  .. (3,0,0)
//
// Closed splines end in " .. cycle" instead of repeating the first node.
func AsString(sp *Spline) string {
	c, err := sp.snapshot()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	var b strings.Builder
	n := len(c.nodes)
	if c.closed && n > 1 {
		n--
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString("\n  .. ")
		}
		b.WriteString(ptstring(c.nodes[i].Position, false))
		if i < len(c.segments) {
			seg := c.segments[i]
			fmt.Fprintf(&b, " .. controls %s and %s", ptstring(seg.start.H2, true),
				ptstring(seg.end.H1, true))
		}
	}
	if c.closed && len(c.nodes) > 1 {
		b.WriteString("\n  .. cycle")
	}
	return b.String()
}

func ptstring(p mgl64.Vec3, iscontrol bool) string {
	if iscontrol {
		return fmt.Sprintf("(%.4f,%.4f,%.4f)", round(p[0]), round(p[1]), round(p[2]))
	}
	return fmt.Sprintf("(%.4g,%.4g,%.4g)", round(p[0]), round(p[1]), round(p[2]))
}

func round(x float64) float64 {
	if x >= 0 {
		return float64(int64(x*10000.0+0.5)) / 10000.0
	}
	return float64(int64(x*10000.0-0.5)) / 10000.0
}
