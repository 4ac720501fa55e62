package profile

import (
	"context"
	"strings"
	"testing"

	"github.com/ffdumont/navprofile/internal/flightpath"
	"github.com/ffdumont/navprofile/internal/terrain"
)

func flatOracle() terrain.Static {
	return terrain.Static{Ft: map[[2]float64]float64{
		{48.00000, 2.00000}: 300,
		{49.00000, 2.00000}: 400,
	}}
}

func climbPath() flightpath.FlightPath {
	return flightpath.FlightPath{Waypoints: []flightpath.Waypoint{
		{ID: "DEP", Lat: 48.0, Lon: 2.0, AltitudeFt: 1300},
		{ID: "W1", Lat: 48.5, Lon: 2.0, AltitudeFt: 6000},
		{ID: "ARR", Lat: 49.0, Lon: 2.0, AltitudeFt: 1400},
	}}
}

func TestCorrectAnchorsEndpoints(t *testing.T) {
	oracle := flatOracle()
	cfp, err := Correct(context.Background(), climbPath(), oracle, DefaultParams())
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	first := cfp.Waypoints[0]
	last := cfp.Waypoints[len(cfp.Waypoints)-1]
	if first.AltitudeFt != 300+anchorHeightFt {
		t.Errorf("departure altitude = %v, want %v", first.AltitudeFt, 300+anchorHeightFt)
	}
	if last.AltitudeFt != 400+anchorHeightFt {
		t.Errorf("arrival altitude = %v, want %v", last.AltitudeFt, 400+anchorHeightFt)
	}
}

func TestCorrectProducesBranchReport(t *testing.T) {
	oracle := flatOracle()
	cfp, err := Correct(context.Background(), climbPath(), oracle, DefaultParams())
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if len(cfp.Branches) != 2 {
		t.Fatalf("got %d branches, want 2", len(cfp.Branches))
	}
	// Anchored targets are [300+1000, 6000, 400+1000] = [1300, 6000, 1400]:
	// branch 0 climbs to the cruise waypoint, branch 1 descends to the
	// arrival anchor.
	if cfp.Branches[0].Action != "CLIMB" {
		t.Errorf("first branch action = %q, want CLIMB (anchored departure to cruise waypoint)", cfp.Branches[0].Action)
	}
	if cfp.Branches[1].Action != "DESCENT" {
		t.Errorf("second branch action = %q, want DESCENT (cruise waypoint to arrival anchor)", cfp.Branches[1].Action)
	}
}

// TestCorrectMatchesFlatRequestScenario reproduces spec.md §8 scenario 4
// literally: W1 field elevation 79 ft, W2 at 1400 ft, W3 field elevation
// 548 ft. Both branches climb (1079->1400, then 1400->1548), and the
// first branch's synthetic transition waypoint must be named
// Climb_W1_1400.
func TestCorrectMatchesFlatRequestScenario(t *testing.T) {
	oracle := terrain.Static{Ft: map[[2]float64]float64{
		{48.00000, 2.00000}: 79,
		{49.00000, 2.00000}: 548,
	}}
	fp := flightpath.FlightPath{Waypoints: []flightpath.Waypoint{
		{ID: "W1", Lat: 48.0, Lon: 2.0, AltitudeFt: 0},
		{ID: "W2", Lat: 48.5, Lon: 2.0, AltitudeFt: 1400},
		{ID: "W3", Lat: 49.0, Lon: 2.0, AltitudeFt: 0},
	}}
	cfp, err := Correct(context.Background(), fp, oracle, DefaultParams())
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if len(cfp.Branches) != 2 {
		t.Fatalf("got %d branches, want 2", len(cfp.Branches))
	}
	if cfp.Branches[0].Action != "CLIMB" {
		t.Errorf("branch 0 action = %q, want CLIMB (1079->1400)", cfp.Branches[0].Action)
	}
	if cfp.Branches[1].Action != "CLIMB" {
		t.Errorf("branch 1 action = %q, want CLIMB (1400->1548)", cfp.Branches[1].Action)
	}
	var found bool
	for _, wp := range cfp.Waypoints {
		if wp.ID == "Climb_W1_1400" {
			found = true
		}
	}
	if !found {
		t.Error("expected a synthetic waypoint named Climb_W1_1400")
	}
}

func TestCorrectInsertsNamedTransitionWaypoint(t *testing.T) {
	oracle := flatOracle()
	cfp, err := Correct(context.Background(), climbPath(), oracle, DefaultParams())
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	var foundDescent bool
	for _, wp := range cfp.Waypoints {
		if strings.HasPrefix(wp.ID, "Descent_") {
			foundDescent = true
		}
	}
	if !foundDescent {
		t.Error("expected a synthetic Descent_ waypoint in the corrected path")
	}
}

func TestCorrectIsDeterministic(t *testing.T) {
	oracle := flatOracle()
	a, err := Correct(context.Background(), climbPath(), oracle, DefaultParams())
	if err != nil {
		t.Fatalf("Correct (first): %v", err)
	}
	b, err := Correct(context.Background(), climbPath(), oracle, DefaultParams())
	if err != nil {
		t.Fatalf("Correct (second): %v", err)
	}
	if len(a.Waypoints) != len(b.Waypoints) {
		t.Fatalf("non-deterministic waypoint count: %d vs %d", len(a.Waypoints), len(b.Waypoints))
	}
	for i := range a.Waypoints {
		if a.Waypoints[i] != b.Waypoints[i] {
			t.Errorf("waypoint %d differs across runs: %+v vs %+v", i, a.Waypoints[i], b.Waypoints[i])
		}
	}
}

func TestCorrectRejectsTooShortPath(t *testing.T) {
	oracle := flatOracle()
	single := flightpath.FlightPath{Waypoints: []flightpath.Waypoint{{ID: "A", Lat: 1, Lon: 1}}}
	if _, err := Correct(context.Background(), single, oracle, DefaultParams()); err == nil {
		t.Fatal("expected error for a path with fewer than 2 waypoints")
	}
}

func TestUnreachableClimbFlagged(t *testing.T) {
	fp := flightpath.FlightPath{Waypoints: []flightpath.Waypoint{
		{ID: "DEP", Lat: 48.0, Lon: 2.0, AltitudeFt: 1300},
		{ID: "W1", Lat: 48.001, Lon: 2.0, AltitudeFt: 35000},
		{ID: "ARR", Lat: 49.0, Lon: 2.0, AltitudeFt: 1400},
	}}
	oracle := flatOracle()
	cfp, err := Correct(context.Background(), fp, oracle, DefaultParams())
	if err != nil {
		t.Fatalf("Correct: %v", err)
	}
	if len(cfp.Branches) < 1 {
		t.Fatal("expected at least one branch")
	}
	foundUnreachable := false
	for _, b := range cfp.Branches {
		if b.Unreachable {
			foundUnreachable = true
		}
	}
	if !foundUnreachable {
		t.Error("expected an unreachable branch for a climb that can't physically fit in the given distance")
	}
}
