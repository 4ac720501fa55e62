package aixm

import (
	"fmt"
	"regexp"
	"strconv"
)

// dmsPattern matches the AIXM DMS coordinate encoding: a run of digits
// (degrees, two or three of them, then minutes and seconds, two each),
// an optional fractional-seconds part, and a hemisphere letter.
// Latitudes carry a 2-digit degree field and N/S; longitudes carry a
// 3-digit degree field and E/W.
var dmsPattern = regexp.MustCompile(`^(\d{2,3})(\d{2})(\d{2}(?:\.\d+)?)([NSEW])$`)

// ParseDMS parses an AIXM geoLat or geoLong string (e.g. "483000.00N",
// "0023000.00E") into decimal degrees. Negative for S and W.
func ParseDMS(s string) (float64, error) {
	m := dmsPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("malformed DMS coordinate %q", s)
	}
	deg, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed DMS coordinate %q: %w", s, err)
	}
	min, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed DMS coordinate %q: %w", s, err)
	}
	sec, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed DMS coordinate %q: %w", s, err)
	}
	hemisphere := m[4]

	value := deg + min/60 + sec/3600
	switch hemisphere {
	case "S", "W":
		value = -value
	case "N", "E":
		// positive, no change
	default:
		return 0, fmt.Errorf("malformed DMS coordinate %q: unexpected hemisphere", s)
	}

	switch hemisphere {
	case "N", "S":
		if value < -90 || value > 90 {
			return 0, fmt.Errorf("latitude %q out of range", s)
		}
	case "E", "W":
		if value < -180 || value > 180 {
			return 0, fmt.Errorf("longitude %q out of range", s)
		}
	}
	return value, nil
}
