package geodesy

import (
	"math"

	"github.com/paulmach/orb"
)

// minSegmentsPerQuarterTurn is the cap/join tessellation density spec.md
// requires: at least 8 segments per 90° of arc.
const minSegmentsPerQuarterTurn = 8

type xy struct{ x, y float64 }

// BufferPolyline approximates the Minkowski sum of the polyline with a
// disc of radius widthNM, using a locally flat projection anchored at
// the polyline's centroid (spec.md §4.1). Cap and join style are both
// round. Returns a closed orb.Ring suitable for wrapping in an
// orb.Polygon.
func BufferPolyline(points []orb.Point, widthNM float64) orb.Ring {
	if len(points) == 0 || widthNM <= 0 {
		return orb.Ring{}
	}
	if len(points) == 1 {
		return circle(points[0], widthNM)
	}

	anchorLat, anchorLon := centroid(points)
	pts := make([]xy, len(points))
	for i, p := range points {
		pts[i] = projectXY(p[1], p[0], anchorLat, anchorLon)
	}
	radiusKM := NMToKM(widthNM)

	left := buildSide(pts, radiusKM, 1)
	right := buildSide(pts, radiusKM, -1)

	n := len(pts)
	lastDir := direction(pts[n-2], pts[n-1])
	firstDir := direction(pts[0], pts[1])

	endCap := capArc(pts[n-1], radiusKM, angle(leftNormal(pts[n-2], pts[n-1])), angle(rightNormal(pts[n-2], pts[n-1])), lastDir)
	startCap := capArc(pts[0], radiusKM, angle(rightNormal(pts[0], pts[1])), angle(leftNormal(pts[0], pts[1])), firstDir+math.Pi)

	outline := make([]xy, 0, len(left)+len(right)+len(endCap)+len(startCap)+1)
	outline = append(outline, left...)
	outline = append(outline, endCap...)
	for i := len(right) - 1; i >= 0; i-- {
		outline = append(outline, right[i])
	}
	outline = append(outline, startCap...)
	outline = append(outline, left[0])

	ring := make(orb.Ring, len(outline))
	for i, p := range outline {
		lat, lon := unproject(p.x, p.y, anchorLat, anchorLon)
		ring[i] = orb.Point{lon, lat}
	}
	return ring
}

func circle(center orb.Point, radiusNM float64) orb.Ring {
	radiusKM := NMToKM(radiusNM)
	const segments = 8 * 4 // full turn at the minimum tessellation density
	ring := make(orb.Ring, 0, segments+1)
	origin := projectXY(center[1], center[0], center[1], center[0])
	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / segments
		x := origin.x + radiusKM*math.Cos(theta)
		y := origin.y + radiusKM*math.Sin(theta)
		lat, lon := unproject(x, y, center[1], center[0])
		ring = append(ring, orb.Point{lon, lat})
	}
	return ring
}

func centroid(points []orb.Point) (lat, lon float64) {
	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p[1]
		sumLon += p[0]
	}
	n := float64(len(points))
	return sumLat / n, sumLon / n
}

// projectXY converts a (lat, lon) pair to a locally flat (x, y) in
// kilometers, anchored at (anchorLat, anchorLon). Equirectangular
// approximation: accurate to spec.md's ≤1% bound for corridors up to
// 500 km.
func projectXY(lat, lon, anchorLat, anchorLon float64) xy {
	x, y := Project(lat, lon, anchorLat, anchorLon)
	return xy{x, y}
}

func unproject(x, y, anchorLat, anchorLon float64) (lat, lon float64) {
	return Unproject(x, y, anchorLat, anchorLon)
}

func direction(a, b xy) float64 {
	return math.Atan2(b.y-a.y, b.x-a.x)
}

// leftNormal returns the unit normal pointing to the left of travel
// from a to b (direction rotated +90°).
func leftNormal(a, b xy) xy {
	dx, dy := b.x-a.x, b.y-a.y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return xy{0, 0}
	}
	return xy{-dy / length, dx / length}
}

func rightNormal(a, b xy) xy {
	n := leftNormal(a, b)
	return xy{-n.x, -n.y}
}

func angle(v xy) float64 { return math.Atan2(v.y, v.x) }

func offset(p xy, normal xy, radius float64) xy {
	return xy{p.x + normal.x*radius, p.y + normal.y*radius}
}

// buildSide walks the polyline in order, producing the offset outline
// on one side (sign=+1 left, sign=-1 right), inserting a round join arc
// at each interior vertex.
func buildSide(pts []xy, radius, sign float64) []xy {
	out := make([]xy, 0, len(pts)*2)
	for k := 0; k < len(pts)-1; k++ {
		n := leftNormal(pts[k], pts[k+1])
		n = xy{n.x * sign, n.y * sign}
		start := offset(pts[k], n, radius)
		end := offset(pts[k+1], n, radius)

		if k == 0 {
			out = append(out, start)
		} else {
			prevN := leftNormal(pts[k-1], pts[k])
			prevN = xy{prevN.x * sign, prevN.y * sign}
			arc := arcBetween(pts[k], radius, angle(prevN), angle(n))
			out = append(out, arc...)
			out = append(out, start)
		}
		out = append(out, end)
	}
	return out
}

// capArc builds a round cap: the ≥180° arc between fromAngle and
// toAngle around center that passes near throughAngle (the path's
// forward or backward direction, so the cap bulges away from the
// polyline rather than folding back over it).
func capArc(center xy, radius, fromAngle, toAngle, throughAngle float64) []xy {
	return arcThrough(center, radius, fromAngle, toAngle, throughAngle)
}

// arcBetween generates the shorter of the two possible sweeps from
// fromAngle to toAngle (used for joins, where either direction is an
// acceptable approximation of the true offset-curve join).
func arcBetween(center xy, radius, fromAngle, toAngle float64) []xy {
	ccw := normalizeSweep(toAngle - fromAngle)
	cw := normalizeSweep(fromAngle - toAngle)
	if ccw <= cw {
		return arcPoints(center, radius, fromAngle, ccw)
	}
	return reverseArc(arcPoints(center, radius, toAngle, cw))
}

// arcThrough generates the sweep from fromAngle to toAngle, choosing
// whichever of the two directions passes through throughAngle.
func arcThrough(center xy, radius, fromAngle, toAngle, throughAngle float64) []xy {
	ccwSweep := normalizeSweep(toAngle - fromAngle)
	throughSweep := normalizeSweep(throughAngle - fromAngle)
	if throughSweep <= ccwSweep {
		return arcPoints(center, radius, fromAngle, ccwSweep)
	}
	cwSweep := normalizeSweep(fromAngle - toAngle)
	return reverseArc(arcPoints(center, radius, toAngle, cwSweep))
}

func reverseArc(pts []xy) []xy {
	out := make([]xy, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

// normalizeSweep reduces a signed angular delta to [0, 2π).
func normalizeSweep(delta float64) float64 {
	const twoPi = 2 * math.Pi
	for delta < 0 {
		delta += twoPi
	}
	for delta >= twoPi {
		delta -= twoPi
	}
	return delta
}

// arcPoints generates points counterclockwise from fromAngle through
// sweep radians, at the cap/join tessellation density spec.md requires.
func arcPoints(center xy, radius, fromAngle, sweep float64) []xy {
	if sweep <= 0 {
		return nil
	}
	segments := int(math.Ceil(sweep / (math.Pi / 2) * minSegmentsPerQuarterTurn))
	if segments < 1 {
		segments = 1
	}
	pts := make([]xy, 0, segments+1)
	for i := 0; i <= segments; i++ {
		theta := fromAngle + sweep*float64(i)/float64(segments)
		pts = append(pts, xy{
			x: center.x + radius*math.Cos(theta),
			y: center.y + radius*math.Sin(theta),
		})
	}
	return pts
}
