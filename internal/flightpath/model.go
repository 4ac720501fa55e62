// Package flightpath builds an immutable FlightPath from a KML nav
// route or GPS trace, per spec.md §4.6.
package flightpath

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ffdumont/navprofile/internal/geodesy"
)

// Waypoint is one point in a flight path.
type Waypoint struct {
	ID         string
	Lat        float64
	Lon        float64
	AltitudeFt float64 // NaN if the source KML omitted altitude
	Name       string
}

// FlightPath is an ordered, immutable-after-load sequence of waypoints.
type FlightPath struct {
	Waypoints []Waypoint
}

// Parse reads a KML document and builds a FlightPath. A document whose
// Placemarks carry <Point> elements is treated as a nav route (ids
// taken from Placemark names); one whose Placemark carries a
// <LineString> is treated as a GPS trace (ids synthesized as
// TRK_0001, TRK_0002, ...). When one document mixes the two, the
// waypoints of every Placemark are concatenated in document order.
func Parse(r io.Reader) (FlightPath, error) {
	var doc kmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return FlightPath{}, fmt.Errorf("decode KML: %w", err)
	}

	var waypoints []Waypoint
	for _, pm := range doc.Document.Placemarks {
		switch {
		case pm.Point != nil:
			wp, err := pointToWaypoint(pm.Name, pm.Point.Coordinates)
			if err != nil {
				return FlightPath{}, fmt.Errorf("placemark %q: %w", pm.Name, err)
			}
			waypoints = append(waypoints, wp)
		case pm.LineString != nil:
			trace, err := lineStringToWaypoints(pm.LineString.Coordinates)
			if err != nil {
				return FlightPath{}, fmt.Errorf("placemark %q: %w", pm.Name, err)
			}
			waypoints = append(waypoints, trace...)
		}
	}

	fp := FlightPath{Waypoints: waypoints}
	if err := fp.Validate(); err != nil {
		return FlightPath{}, err
	}
	return fp, nil
}

func pointToWaypoint(name, coords string) (Waypoint, error) {
	lon, lat, alt, err := parseCoordinate(coords)
	if err != nil {
		return Waypoint{}, err
	}
	return Waypoint{ID: name, Lat: lat, Lon: lon, AltitudeFt: alt, Name: name}, nil
}

func lineStringToWaypoints(coords string) ([]Waypoint, error) {
	fields := strings.Fields(coords)
	out := make([]Waypoint, 0, len(fields))
	for i, f := range fields {
		lon, lat, alt, err := parseCoordinate(f)
		if err != nil {
			return nil, fmt.Errorf("trace point %d: %w", i+1, err)
		}
		id := fmt.Sprintf("TRK_%04d", i+1)
		out = append(out, Waypoint{ID: id, Lat: lat, Lon: lon, AltitudeFt: alt})
	}
	return out, nil
}

// parseCoordinate parses one "lon,lat[,alt_m]" KML coordinate tuple.
// Altitude is assumed meters MSL and converted to feet (spec.md §6.3);
// a missing altitude field yields NaN, flagged for the profile
// corrector rather than silently defaulted.
func parseCoordinate(s string) (lon, lat, altFt float64, err error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < 2 {
		return 0, 0, 0, fmt.Errorf("malformed coordinate %q", s)
	}
	lon, err = strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("malformed longitude in %q: %w", s, err)
	}
	lat, err = strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("malformed latitude in %q: %w", s, err)
	}
	if len(parts) < 3 || strings.TrimSpace(parts[2]) == "" {
		return lon, lat, math.NaN(), nil
	}
	altM, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("malformed altitude in %q: %w", s, err)
	}
	return lon, lat, geodesy.ToFeet(altM, geodesy.UnitMeters), nil
}

// Validate checks the invariants spec.md §4.6 requires: at least 2
// waypoints, no two adjacent waypoints identical in (lat, lon).
func (fp FlightPath) Validate() error {
	if len(fp.Waypoints) < 2 {
		return fmt.Errorf("flight path has %d waypoints, need at least 2", len(fp.Waypoints))
	}
	for i := 1; i < len(fp.Waypoints); i++ {
		a, b := fp.Waypoints[i-1], fp.Waypoints[i]
		if a.Lat == b.Lat && a.Lon == b.Lon {
			return fmt.Errorf("waypoints %d and %d are identical in position", i-1, i)
		}
	}
	return nil
}

// ArcLengthKm returns the total great-circle length of the path.
func (fp FlightPath) ArcLengthKm() float64 {
	var total float64
	for i := 1; i < len(fp.Waypoints); i++ {
		a, b := fp.Waypoints[i-1], fp.Waypoints[i]
		total += geodesy.GreatCircleKM(a.Lat, a.Lon, b.Lat, b.Lon)
	}
	return total
}
