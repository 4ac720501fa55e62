// Package profile turns a flight path with potentially nonphysical
// altitudes into a flyable profile by inserting top-of-climb /
// top-of-descent points, per spec.md §4.8.
package profile

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ffdumont/navprofile/internal/flightpath"
	"github.com/ffdumont/navprofile/internal/geodesy"
	"github.com/ffdumont/navprofile/internal/terrain"
)

// AnchorMode resolves the one ambiguity spec.md §4.8 leaves open: for
// a non-final-branch descent, whether the top-of-descent point is
// anchored to fit within the branch containing it (the literal "Wi+2"
// reading) or allowed to reach back into earlier branches when the one
// branch is too short for the required descent rate.
type AnchorMode int

const (
	// AnchorAtNextWaypoint requires the descent to fit within the
	// single branch ending at the next waypoint; if it doesn't, the
	// branch is flagged unreachable and the descent clamped to the
	// branch start.
	AnchorAtNextWaypoint AnchorMode = iota
	// AnchorAtTransitionBoundary lets the descent reach back across
	// earlier branches (borrowing distance) before giving up and
	// flagging unreachable.
	AnchorAtTransitionBoundary
)

// Params carries the profile corrector's tunable rates, all with the
// defaults spec.md §4.8 and §6.6 name.
type Params struct {
	ClimbRateFtpm   float64 // default 500
	DescentRateFtpm float64 // default 500
	GroundSpeedKt   float64 // default 100
	DescentAnchor   AnchorMode
	Budget          time.Duration // overall elevation-lookup budget, default 30s
}

// DefaultParams returns spec.md §6.6's stated defaults.
func DefaultParams() Params {
	return Params{ClimbRateFtpm: 500, DescentRateFtpm: 500, GroundSpeedKt: 100, Budget: 30 * time.Second}
}

// Branch is one row of the branch report: the segment between two
// consecutive waypoints of the input path (inserted transition points
// do not start rows of their own), its classified action, and the
// altitude change it carries out.
type Branch struct {
	Index       int
	DistanceNM  float64
	Action      string // "CLIMB", "DESCENT", "LEVEL"
	FromAlt     float64
	ToAlt       float64
	Unreachable bool
}

// CorrectedFlightPath is the output profile: the original waypoints
// with top-of-climb/top-of-descent points inserted, plus a parallel
// ordered branch report.
type CorrectedFlightPath struct {
	flightpath.FlightPath
	Branches []Branch

	// EstimatedEndpoints reports whether either endpoint's terrain
	// elevation came from the oracle's degrade path rather than a real
	// lookup.
	EstimatedEndpoints bool
}

// anchorHeightFt is added to field elevation at both endpoints
// (spec.md §4.8 step 1).
const anchorHeightFt = 1000

// Correct builds a flyable profile from path, anchoring its endpoint
// altitudes against oracle and classifying/resolving every branch's
// climb, descent, or level action.
func Correct(ctx context.Context, path flightpath.FlightPath, oracle terrain.Oracle, params Params) (CorrectedFlightPath, error) {
	if len(path.Waypoints) < 2 {
		return CorrectedFlightPath{}, fmt.Errorf("profile correction requires at least 2 waypoints, got %d", len(path.Waypoints))
	}
	if params.Budget <= 0 {
		params.Budget = 30 * time.Second
	}

	budgetCtx, cancel := context.WithTimeout(ctx, params.Budget)
	defer cancel()

	wps := make([]flightpath.Waypoint, len(path.Waypoints))
	copy(wps, path.Waypoints)

	estimated, err := anchorEndpoints(budgetCtx, wps, oracle)
	if err != nil {
		return CorrectedFlightPath{}, err
	}

	targets := make([]float64, len(wps))
	for i, wp := range wps {
		targets[i] = wp.AltitudeFt
	}

	var out []flightpath.Waypoint
	var branches []Branch
	out = append(out, wps[0])

	for b := 0; b < len(wps)-1; b++ {
		from, to := wps[b], wps[b+1]
		distKm := geodesy.GreatCircleKM(from.Lat, from.Lon, to.Lat, to.Lon)
		distNM := geodesy.KMToNM(distKm)

		branch := Branch{Index: b, DistanceNM: distNM, FromAlt: targets[b], ToAlt: targets[b+1]}

		switch classifyAction(targets, b) {
		case actionClimb:
			branch.Action = "CLIMB"
			wp, unreachable := insertClimb(from, to, targets[b], targets[b+1], distNM, params)
			branch.Unreachable = unreachable
			if wp != nil {
				out = append(out, *wp)
			}
		case actionDescent:
			branch.Action = "DESCENT"
			wp, unreachable := insertDescent(wps, b, distNM, targets, params)
			branch.Unreachable = unreachable
			if wp != nil {
				out = append(out, *wp)
			}
		default:
			branch.Action = "LEVEL"
		}

		branches = append(branches, branch)
		out = append(out, to)
	}

	return CorrectedFlightPath{
		FlightPath:         flightpath.FlightPath{Waypoints: out},
		Branches:           branches,
		EstimatedEndpoints: estimated,
	}, nil
}

type action int

const (
	actionLevel action = iota
	actionClimb
	actionDescent
)

// classifyAction implements spec.md §4.8 step 4: branch b runs from
// waypoint b to waypoint b+1, and its action is decided by comparing
// those two waypoints' own target altitudes directly — the same pair
// insertClimb/insertDescent then consume.
func classifyAction(targets []float64, b int) action {
	from, to := targets[b], targets[b+1]
	switch {
	case to > from:
		return actionClimb
	case to < from:
		return actionDescent
	default:
		return actionLevel
	}
}

// anchorEndpoints overrides the departure and arrival waypoints'
// altitude to field_elevation_ft + 1000 (spec.md §4.8 step 1).
func anchorEndpoints(ctx context.Context, wps []flightpath.Waypoint, oracle terrain.Oracle) (estimated bool, err error) {
	n := len(wps)
	depFt, depEst, err := oracle.ElevationFt(ctx, wps[0].Lat, wps[0].Lon)
	if err != nil {
		return false, fmt.Errorf("departure elevation lookup: %w", err)
	}
	arrFt, arrEst, err := oracle.ElevationFt(ctx, wps[n-1].Lat, wps[n-1].Lon)
	if err != nil {
		return false, fmt.Errorf("arrival elevation lookup: %w", err)
	}
	wps[0].AltitudeFt = depFt + anchorHeightFt
	wps[n-1].AltitudeFt = arrFt + anchorHeightFt
	return depEst || arrEst, nil
}

// insertClimb places a synthetic top-of-climb waypoint along branch
// (from, to) at the distance reached after climbing from fromAlt to
// toAlt at the configured climb rate and ground speed. If that
// distance exceeds the branch length, the climb is flagged unreachable
// and no transition waypoint is returned: the branch's own end
// waypoint follows directly, carrying its target altitude rather than
// the altitude actually attainable within the branch.
func insertClimb(from, to flightpath.Waypoint, fromAlt, toAlt, branchNM float64, params Params) (*flightpath.Waypoint, bool) {
	deltaAlt := toAlt - fromAlt
	if deltaAlt <= 0 {
		return nil, false
	}
	climbTimeMin := deltaAlt / params.ClimbRateFtpm
	climbDistNM := params.GroundSpeedKt * (climbTimeMin / 60)

	unreachable := climbDistNM > branchNM
	actualDistNM := climbDistNM
	actualAlt := toAlt
	if unreachable {
		actualDistNM = branchNM
		actualAlt = fromAlt + params.ClimbRateFtpm*(branchNM/params.GroundSpeedKt*60)
	}
	if actualDistNM <= 0 || actualDistNM >= branchNM {
		return nil, unreachable
	}

	t := actualDistNM / branchNM
	lat, lon := interpolateGreatCircle(from.Lat, from.Lon, to.Lat, to.Lon, t)
	wp := flightpath.Waypoint{
		ID:         fmt.Sprintf("Climb_%s_%d", from.ID, int(math.Round(toAlt))),
		Lat:        lat,
		Lon:        lon,
		AltitudeFt: actualAlt,
	}
	return &wp, unreachable
}

// insertDescent places a synthetic top-of-descent waypoint along the
// branch ending at wps[b+1], at the distance from the branch start
// that leaves exactly enough room to descend from targets[b] to
// targets[b+1] by the branch's own end (spec.md §4.8 step 5's
// "anchored so the lower altitude is reached at Wi+2"). Under
// AnchorAtTransitionBoundary, if the branch itself is too short, the
// search reaches back across earlier branches for room before
// flagging unreachable.
func insertDescent(wps []flightpath.Waypoint, b int, branchNM float64, targets []float64, params Params) (*flightpath.Waypoint, bool) {
	from, to := wps[b], wps[b+1]
	fromAlt, toAlt := targets[b], targets[b+1]
	deltaAlt := fromAlt - toAlt
	if deltaAlt <= 0 {
		return nil, false
	}
	descentTimeMin := deltaAlt / params.DescentRateFtpm
	descentDistNM := params.GroundSpeedKt * (descentTimeMin / 60)

	dTod := branchNM - descentDistNM
	if dTod >= 0 {
		if dTod <= 0 || dTod >= branchNM {
			return nil, false
		}
		t := dTod / branchNM
		lat, lon := interpolateGreatCircle(from.Lat, from.Lon, to.Lat, to.Lon, t)
		wp := flightpath.Waypoint{
			ID:         fmt.Sprintf("Descent_%d_%s", int(math.Round(fromAlt)), to.ID),
			Lat:        lat,
			Lon:        lon,
			AltitudeFt: fromAlt,
		}
		return &wp, false
	}

	if params.DescentAnchor == AnchorAtTransitionBoundary {
		if wp, ok := borrowDescentRoom(wps, b, -dTod, fromAlt, to, params); ok {
			return wp, false
		}
	}

	// Unreachable: clamp to branch start, descent begins immediately.
	wp := flightpath.Waypoint{
		ID:         fmt.Sprintf("Descent_%d_%s", int(math.Round(fromAlt)), to.ID),
		Lat:        from.Lat,
		Lon:        from.Lon,
		AltitudeFt: fromAlt,
	}
	return &wp, true
}

// borrowDescentRoom walks backward across branches before b looking
// for enough cumulative distance to fit neededNM of descent, returning
// a transition point that far back from b's start.
func borrowDescentRoom(wps []flightpath.Waypoint, b int, neededNM, fromAlt float64, destination flightpath.Waypoint, params Params) (*flightpath.Waypoint, bool) {
	remaining := neededNM
	for k := b - 1; k >= 0; k-- {
		segFrom, segTo := wps[k], wps[k+1]
		segKm := geodesy.GreatCircleKM(segFrom.Lat, segFrom.Lon, segTo.Lat, segTo.Lon)
		segNM := geodesy.KMToNM(segKm)
		if segNM >= remaining {
			t := (segNM - remaining) / segNM
			lat, lon := interpolateGreatCircle(segFrom.Lat, segFrom.Lon, segTo.Lat, segTo.Lon, t)
			wp := flightpath.Waypoint{
				ID:         fmt.Sprintf("Descent_%d_%s", int(math.Round(fromAlt)), destination.ID),
				Lat:        lat,
				Lon:        lon,
				AltitudeFt: fromAlt,
			}
			return &wp, true
		}
		remaining -= segNM
	}
	return nil, false
}

// interpolateGreatCircle linearly interpolates lat/lon by fraction t
// of the straight chord between two points; adequate for the short
// branch lengths transition points fall within.
func interpolateGreatCircle(lat1, lon1, lat2, lon2, t float64) (lat, lon float64) {
	return lat1 + t*(lat2-lat1), lon1 + t*(lon2-lon1)
}
