// Package corridor builds the buffered 3-D volume a flight path sweeps
// through, per spec.md §4.1: a horizontal polygon (the path buffered by
// a width in nautical miles) paired with a vertical altitude interval.
package corridor

import (
	"math"

	"github.com/ffdumont/navprofile/internal/flightpath"
	"github.com/ffdumont/navprofile/internal/geodesy"
	"github.com/paulmach/orb"
)

// Corridor is the buffered horizontal footprint of a flight path plus
// its vertical extent, retaining the original polyline (and per-point
// cumulative distance and altitude) so later stages can sample
// distance-along-path and interpolated altitude at an arbitrary point.
type Corridor struct {
	Footprint orb.Ring
	Altitude  geodesy.Interval

	points       []orb.Point
	cumulativeKm []float64
	altitudesFt  []float64
}

// Build constructs a Corridor from a flight path, buffering its ground
// track by widthNM on each side and extending its altitude envelope by
// heightFt above and below the path's own min/max altitude.
//
// Waypoints with NaN altitude are excluded from the min/max scan; if
// every waypoint is NaN the resulting interval is [-heightFt, heightFt].
func Build(fp flightpath.FlightPath, widthNM, heightFt float64) Corridor {
	points := make([]orb.Point, len(fp.Waypoints))
	altitudesFt := make([]float64, len(fp.Waypoints))
	cumulativeKm := make([]float64, len(fp.Waypoints))

	minAlt, maxAlt := math.Inf(1), math.Inf(-1)
	var cum float64
	for i, wp := range fp.Waypoints {
		points[i] = orb.Point{wp.Lon, wp.Lat}
		altitudesFt[i] = wp.AltitudeFt
		if i > 0 {
			prev := fp.Waypoints[i-1]
			cum += geodesy.GreatCircleKM(prev.Lat, prev.Lon, wp.Lat, wp.Lon)
		}
		cumulativeKm[i] = cum

		if !math.IsNaN(wp.AltitudeFt) {
			minAlt = math.Min(minAlt, wp.AltitudeFt)
			maxAlt = math.Max(maxAlt, wp.AltitudeFt)
		}
	}
	if math.IsInf(minAlt, 1) {
		minAlt, maxAlt = 0, 0
	}

	return Corridor{
		Footprint:    geodesy.BufferPolyline(points, widthNM),
		Altitude:     geodesy.Interval{Lo: minAlt - heightFt, Hi: maxAlt + heightFt},
		points:       points,
		cumulativeKm: cumulativeKm,
		altitudesFt:  altitudesFt,
	}
}

// DistanceAlongKm returns the cumulative great-circle distance from the
// first waypoint to the nearest sampled path point to p, used to locate
// a crossing point along the original (unbuffered) path.
func (c Corridor) DistanceAlongKm(p orb.Point) float64 {
	best := math.Inf(1)
	bestIdx := 0
	for i, sp := range c.points {
		d := geodesy.GreatCircleKM(p[1], p[0], sp[1], sp[0])
		if d < best {
			best = d
			bestIdx = i
		}
	}
	return c.cumulativeKm[bestIdx]
}

// AltitudeAtKm linearly interpolates the path's planned altitude at a
// given cumulative distance along the path. NaN waypoint altitudes
// propagate as NaN for the segment(s) touching them.
func (c Corridor) AltitudeAtKm(km float64) float64 {
	n := len(c.cumulativeKm)
	if n == 0 {
		return math.NaN()
	}
	if km <= c.cumulativeKm[0] {
		return c.altitudesFt[0]
	}
	if km >= c.cumulativeKm[n-1] {
		return c.altitudesFt[n-1]
	}
	for i := 1; i < n; i++ {
		if km <= c.cumulativeKm[i] {
			span := c.cumulativeKm[i] - c.cumulativeKm[i-1]
			if span == 0 {
				return c.altitudesFt[i]
			}
			t := (km - c.cumulativeKm[i-1]) / span
			return c.altitudesFt[i-1] + t*(c.altitudesFt[i]-c.altitudesFt[i-1])
		}
	}
	return c.altitudesFt[n-1]
}

// PathPointAt interpolates the original (unbuffered) polyline's
// position at cumulative distance km from the first waypoint, clamped
// to the path's own extent. Used to walk the centerline itself rather
// than its bounding box when locating where it enters/exits an
// airspace polygon.
func (c Corridor) PathPointAt(km float64) orb.Point {
	n := len(c.cumulativeKm)
	if n == 0 {
		return orb.Point{}
	}
	if km <= c.cumulativeKm[0] {
		return c.points[0]
	}
	if km >= c.cumulativeKm[n-1] {
		return c.points[n-1]
	}
	for i := 1; i < n; i++ {
		if km <= c.cumulativeKm[i] {
			span := c.cumulativeKm[i] - c.cumulativeKm[i-1]
			if span == 0 {
				return c.points[i]
			}
			t := (km - c.cumulativeKm[i-1]) / span
			prev, cur := c.points[i-1], c.points[i]
			return orb.Point{prev[0] + t*(cur[0]-prev[0]), prev[1] + t*(cur[1]-prev[1])}
		}
	}
	return c.points[n-1]
}

// TotalDistanceKm is the path's total great-circle length.
func (c Corridor) TotalDistanceKm() float64 {
	if len(c.cumulativeKm) == 0 {
		return 0
	}
	return c.cumulativeKm[len(c.cumulativeKm)-1]
}
