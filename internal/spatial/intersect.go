package spatial

import "github.com/paulmach/orb"

// polygonIntersects reports whether two simple polygons share any
// interior area: either one polygon has a vertex strictly inside the
// other, or a pair of their edges cross at a point that is not merely
// a shared vertex or a touching tangency. Touching only at a vertex or
// along an edge, with no interior overlap, does not count (spec.md
// §4.5's tie-break rule).
func polygonIntersects(a, b orb.Ring) bool {
	if len(a) < 4 || len(b) < 4 {
		return false
	}

	for _, p := range a[:len(a)-1] {
		if pointStrictlyInRing(p, b) {
			return true
		}
	}
	for _, p := range b[:len(b)-1] {
		if pointStrictlyInRing(p, a) {
			return true
		}
	}

	for i := 0; i < len(a)-1; i++ {
		a0, a1 := a[i], a[i+1]
		for j := 0; j < len(b)-1; j++ {
			b0, b1 := b[j], b[j+1]
			if segmentsProperlyIntersect(a0, a1, b0, b1) {
				return true
			}
		}
	}
	return false
}

// pointStrictlyInRing is a standard ray-casting point-in-polygon test;
// points exactly on the boundary are treated as outside, so a polygon
// merely touching another's edge does not register as "inside".
func pointStrictlyInRing(p orb.Point, ring orb.Ring) bool {
	inside := false
	n := len(ring) - 1 // last point duplicates the first
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if onSegment(pj, pi, p) {
			return false
		}
		if (pi[1] > p[1]) != (pj[1] > p[1]) {
			xCross := pj[0] + (p[1]-pj[1])*(pi[0]-pj[0])/(pi[1]-pj[1])
			if p[0] < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

// segmentsProperlyIntersect reports whether segments p0-p1 and q0-q1
// cross at an interior point of both, excluding shared endpoints and
// collinear overlaps that are only tangential.
func segmentsProperlyIntersect(p0, p1, q0, q1 orb.Point) bool {
	d1 := cross(q1, q0, p0)
	d2 := cross(q1, q0, p1)
	d3 := cross(p1, p0, q0)
	d4 := cross(p1, p0, q1)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	const eps = 1e-12
	if abs(cross(a, b, p)) > eps {
		return false
	}
	return p[0] >= minf(a[0], b[0])-eps && p[0] <= maxf(a[0], b[0])+eps &&
		p[1] >= minf(a[1], b[1])-eps && p[1] <= maxf(a[1], b[1])+eps
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// multiPolygonIntersects reports whether any component polygon of mp
// intersects ring.
func multiPolygonIntersects(mp orb.MultiPolygon, ring orb.Ring) bool {
	for _, poly := range mp {
		if len(poly) == 0 {
			continue
		}
		if polygonIntersects(poly[0], ring) {
			return true
		}
	}
	return false
}
