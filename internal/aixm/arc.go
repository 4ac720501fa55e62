package aixm

import (
	"math"

	"github.com/ffdumont/navprofile/internal/geodesy"
)

// maxArcVertices caps the number of rasterized points per arc,
// regardless of its angular length (spec.md §4.2).
const maxArcVertices = 128

// rasterizeArc expands one AIXM arc or circle primitive — the edge from
// "from" to "to", swinging around "center" at the given radius — into a
// sequence of straight-line vertices at ≥ 1 vertex/degree of arc,
// capped at maxArcVertices. It returns only the interior points; the
// caller still appends "to" itself as the border's next vertex.
//
// FNT (boundary-following) vertices carry no usable center/radius in
// the source dataset; they are rasterized as a single great-circle
// segment instead of a true arc, per spec.md §9 — this is a deliberate
// simplification, not a placeholder.
func rasterizeArc(from, to Vertex, centerLat, centerLon, radiusNM float64, clockwise bool) []Vertex {
	fx, fy := geodesy.Project(from.Lat, from.Lon, centerLat, centerLon)
	tx, ty := geodesy.Project(to.Lat, to.Lon, centerLat, centerLon)
	fromAngle := math.Atan2(fy, fx)
	toAngle := math.Atan2(ty, tx)
	radiusKM := geodesy.NMToKM(radiusNM)

	var sweep float64
	var sign float64
	if clockwise {
		sweep = normalizeAngle(fromAngle - toAngle)
		sign = -1
	} else {
		sweep = normalizeAngle(toAngle - fromAngle)
		sign = 1
	}

	degrees := sweep * 180 / math.Pi
	steps := int(math.Ceil(degrees))
	if steps < 1 {
		steps = 1
	}
	if steps > maxArcVertices {
		steps = maxArcVertices
	}

	points := make([]Vertex, 0, steps-1)
	for i := 1; i < steps; i++ {
		theta := fromAngle + sign*sweep*float64(i)/float64(steps)
		x := radiusKM * math.Cos(theta)
		y := radiusKM * math.Sin(theta)
		lat, lon := geodesy.Unproject(x, y, centerLat, centerLon)
		points = append(points, Vertex{Lat: lat, Lon: lon})
	}
	return points
}

func normalizeAngle(delta float64) float64 {
	const twoPi = 2 * math.Pi
	for delta < 0 {
		delta += twoPi
	}
	for delta >= twoPi {
		delta -= twoPi
	}
	return delta
}
