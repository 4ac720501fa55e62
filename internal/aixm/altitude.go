package aixm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ffdumont/navprofile/internal/geodesy"
)

// parseAltitude normalizes one codeDistVer/valDistVer/uomDistVer triple
// (spec.md §6.1) to feet MSL, the raw unit code as stored, and whether
// the bound is height-above-ground (codeDistVer == "HEI") rather than
// MSL.
func parseAltitude(codeDistVer, valDistVer, uomDistVer string) (ft float64, unitCode string, agl bool, err error) {
	agl = strings.EqualFold(codeDistVer, "HEI")
	val := strings.TrimSpace(valDistVer)
	uom := strings.ToUpper(strings.TrimSpace(uomDistVer))

	switch {
	case uom == "GND" || strings.EqualFold(val, "GND"):
		return 0, "GND", agl, nil
	case uom == "UNL" || strings.EqualFold(val, "UNL"):
		return geodesy.ToFeet(0, geodesy.UnitUnlimited), "UNL", agl, nil
	}

	unit, ok := geodesy.ParseUnit(uom)
	if !ok {
		return 0, "", false, fmt.Errorf("unknown altitude unit %q", uomDistVer)
	}
	value, perr := strconv.ParseFloat(val, 64)
	if perr != nil {
		return 0, "", false, fmt.Errorf("malformed altitude value %q: %w", valDistVer, perr)
	}
	return geodesy.ToFeet(value, unit), uom, agl, nil
}
