package geometry

import (
	"errors"
	"math"

	"github.com/javagg/layoutview"
)

// ErrDegenerate reports geometry with no drawable area: too few vertices,
// collinear outlines, zero-width paths. Degenerate elements are skipped
// with a warning; they never fail a build.
var ErrDegenerate = errors.New("geometry: degenerate element")

const areaEpsilon = 1e-12

// signedArea returns twice the signed area of the polygon (shoelace).
// Positive for counter-clockwise winding.
func signedArea(pts []layoutview.Point) float64 {
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].Cross(pts[j])
	}
	return sum
}

// Area returns the absolute area of a polygon outline.
func Area(pts []layoutview.Point) float64 {
	return math.Abs(signedArea(pts)) / 2
}

// triangulate converts a simple polygon outline into triangle indices by
// ear clipping. The outline must not repeat the closing vertex. Returns
// ErrDegenerate for outlines with fewer than three distinct vertices or
// zero area. A simple polygon with n vertices yields n-2 triangles.
func triangulate(pts []layoutview.Point) ([]uint32, error) {
	pts = dropRepeatedClose(pts)
	if len(pts) < 3 {
		return nil, ErrDegenerate
	}

	area2 := signedArea(pts)
	if math.Abs(area2) < areaEpsilon {
		return nil, ErrDegenerate
	}

	// Work on an index ring; clipping removes indices, never points.
	ring := make([]uint32, len(pts))
	for i := range ring {
		ring[i] = uint32(i)
	}
	if area2 < 0 {
		// Normalize to counter-clockwise so convexity tests are uniform.
		for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
			ring[i], ring[j] = ring[j], ring[i]
		}
	}

	indices := make([]uint32, 0, 3*(len(pts)-2))
	for len(ring) > 3 {
		clipped := false
		for i := 0; i < len(ring); i++ {
			prev := ring[(i+len(ring)-1)%len(ring)]
			cur := ring[i]
			next := ring[(i+1)%len(ring)]

			if !isEar(pts, ring, prev, cur, next) {
				continue
			}
			indices = append(indices, prev, cur, next)
			ring = append(ring[:i], ring[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Numerically stuck (near-degenerate spike or self-touching
			// outline). Clip the widest corner so the loop terminates
			// with plausible output.
			i := widestCorner(pts, ring)
			prev := ring[(i+len(ring)-1)%len(ring)]
			cur := ring[i]
			next := ring[(i+1)%len(ring)]
			indices = append(indices, prev, cur, next)
			ring = append(ring[:i], ring[i+1:]...)
		}
	}
	indices = append(indices, ring[0], ring[1], ring[2])
	return indices, nil
}

// isEar reports whether the corner (a,b,c) is convex and contains no other
// ring vertex.
func isEar(pts []layoutview.Point, ring []uint32, a, b, c uint32) bool {
	pa, pb, pc := pts[a], pts[b], pts[c]
	// Convex corner in CCW winding.
	if pb.Sub(pa).Cross(pc.Sub(pb)) <= 0 {
		return false
	}
	for _, idx := range ring {
		if idx == a || idx == b || idx == c {
			continue
		}
		if pointInTriangle(pts[idx], pa, pb, pc) {
			return false
		}
	}
	return true
}

// widestCorner returns the ring position whose interior angle is largest.
func widestCorner(pts []layoutview.Point, ring []uint32) int {
	best, bestCos := 0, math.Inf(1)
	for i := range ring {
		pa := pts[ring[(i+len(ring)-1)%len(ring)]]
		pb := pts[ring[i]]
		pc := pts[ring[(i+1)%len(ring)]]
		u := pa.Sub(pb).Normalize()
		v := pc.Sub(pb).Normalize()
		if cos := u.Dot(v); cos < bestCos {
			bestCos = cos
			best = i
		}
	}
	return best
}

// pointInTriangle reports whether p lies strictly inside or on the
// boundary of triangle (a,b,c) given in CCW order.
func pointInTriangle(p, a, b, c layoutview.Point) bool {
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}

// PointInTriangles reports whether p falls inside any triangle of an
// indexed mesh. Used for picking.
func PointInTriangles(p layoutview.Point, vertices []layoutview.Point, indices []uint32) bool {
	for i := 0; i+2 < len(indices); i += 3 {
		a := vertices[indices[i]]
		b := vertices[indices[i+1]]
		c := vertices[indices[i+2]]
		// Winding of the mesh is CCW after normalization, but accept
		// either orientation to stay robust.
		if pointInTriangle(p, a, b, c) || pointInTriangle(p, a, c, b) {
			return true
		}
	}
	return false
}

// dropRepeatedClose strips a trailing vertex equal to the first and any
// consecutive duplicates.
func dropRepeatedClose(pts []layoutview.Point) []layoutview.Point {
	if len(pts) == 0 {
		return pts
	}
	out := make([]layoutview.Point, 0, len(pts))
	for i, p := range pts {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}
