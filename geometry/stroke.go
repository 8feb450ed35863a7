package geometry

import (
	"math"

	"github.com/javagg/layoutview"
	"github.com/javagg/layoutview/model"
)

// miterLimit is the maximum miter length as a multiple of the half width.
// Sharper corners fall back to a bevel join.
const miterLimit = 4.0

// capSegments is the number of segments approximating a semicircular cap.
const capSegments = 8

// strokeOutline expands a path centerline into a closed outline polygon:
// the left offset walked forward, the end cap, the right offset walked
// backward, and the start cap. Joins are mitered with a bevel fallback.
// Returns ErrDegenerate for paths with no extent or no width.
func strokeOutline(pts []layoutview.Point, width float64, cap model.CapStyle) ([]layoutview.Point, error) {
	pts = dedupe(pts)
	if len(pts) < 2 || width <= 0 {
		return nil, ErrDegenerate
	}

	half := width / 2
	if cap == model.CapSquare {
		// A square cap is a flush cap on a centerline extended by the
		// half width at both ends.
		pts = append([]layoutview.Point{}, pts...)
		d0 := pts[1].Sub(pts[0]).Normalize()
		dn := pts[len(pts)-1].Sub(pts[len(pts)-2]).Normalize()
		pts[0] = pts[0].Sub(d0.Mul(half))
		pts[len(pts)-1] = pts[len(pts)-1].Add(dn.Mul(half))
	}

	left := offsetSide(pts, half)
	right := offsetSide(pts, -half)

	outline := make([]layoutview.Point, 0, len(left)+len(right)+2*capSegments)
	outline = append(outline, left...)
	if cap == model.CapRound {
		outline = append(outline, roundCap(pts[len(pts)-1], pts[len(pts)-1].Sub(pts[len(pts)-2]), half)...)
	}
	for i := len(right) - 1; i >= 0; i-- {
		outline = append(outline, right[i])
	}
	if cap == model.CapRound {
		outline = append(outline, roundCap(pts[0], pts[0].Sub(pts[1]), half)...)
	}
	return outline, nil
}

// offsetSide offsets the centerline sideways by d (positive = left of
// travel), mitering interior joins.
func offsetSide(pts []layoutview.Point, d float64) []layoutview.Point {
	out := make([]layoutview.Point, 0, len(pts))

	first := pts[1].Sub(pts[0]).Normalize().Perp()
	out = append(out, pts[0].Add(first.Mul(d)))

	for i := 1; i < len(pts)-1; i++ {
		nPrev := pts[i].Sub(pts[i-1]).Normalize().Perp()
		nNext := pts[i+1].Sub(pts[i]).Normalize().Perp()

		m := nPrev.Add(nNext).Normalize()
		denom := m.Dot(nPrev)
		// denom = cos(half turn angle); the miter length scales with
		// 1/denom. Near-reversals and over-limit miters get a bevel.
		if denom < 1/miterLimit {
			out = append(out, pts[i].Add(nPrev.Mul(d)), pts[i].Add(nNext.Mul(d)))
			continue
		}
		out = append(out, pts[i].Add(m.Mul(d/denom)))
	}

	last := pts[len(pts)-1].Sub(pts[len(pts)-2]).Normalize().Perp()
	out = append(out, pts[len(pts)-1].Add(last.Mul(d)))
	return out
}

// roundCap returns the interior points of a semicircle around center,
// sweeping from the left offset to the right offset through the outward
// direction. The offset endpoints themselves are contributed by the
// side walks.
func roundCap(center, outward layoutview.Point, half float64) []layoutview.Point {
	dir := outward.Normalize()
	start := math.Atan2(dir.Perp().Y, dir.Perp().X)

	arc := make([]layoutview.Point, 0, capSegments-1)
	for k := 1; k < capSegments; k++ {
		a := start - math.Pi*float64(k)/capSegments
		arc = append(arc, layoutview.Pt(
			center.X+half*math.Cos(a),
			center.Y+half*math.Sin(a),
		))
	}
	return arc
}

// dedupe removes consecutive duplicate points.
func dedupe(pts []layoutview.Point) []layoutview.Point {
	if len(pts) == 0 {
		return pts
	}
	out := make([]layoutview.Point, 0, len(pts))
	out = append(out, pts[0])
	for _, p := range pts[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
