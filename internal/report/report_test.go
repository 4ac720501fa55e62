package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ffdumont/navprofile/internal/flightpath"
	"github.com/ffdumont/navprofile/internal/profile"
	"github.com/ffdumont/navprofile/internal/spatial"
)

func sampleCrossings() []spatial.Crossing {
	return []spatial.Crossing{
		{AirspaceID: 1, CodeID: "LF_R1", Name: "ZONE R", Type: "R", Class: "", DistanceKm: 5, Critical: true},
		{AirspaceID: 2, CodeID: "LF_TMA1", Name: "PARIS TMA", Type: "TMA", Class: "D", DistanceKm: 10, Critical: false},
		{AirspaceID: 3, CodeID: "LF_CTA1", Name: "HIGH CTA", Type: "CTA", Class: "A", DistanceKm: 20, Critical: true},
	}
}

func TestCategorizeBuckets(t *testing.T) {
	s := Categorize(sampleCrossings())
	if len(s.Buckets[BucketR]) != 1 {
		t.Errorf("expected 1 restricted-zone crossing, got %d", len(s.Buckets[BucketR]))
	}
	if len(s.Buckets[BucketTMA]) != 1 {
		t.Errorf("expected 1 TMA crossing, got %d", len(s.Buckets[BucketTMA]))
	}
	if len(s.Buckets[BucketClassA]) != 1 {
		t.Errorf("expected 1 class-A crossing (classified ahead of its raw type), got %d", len(s.Buckets[BucketClassA]))
	}
	if len(s.Critical) != 2 {
		t.Errorf("expected 2 critical crossings, got %d", len(s.Critical))
	}
}

func TestJSONMatchesSchema(t *testing.T) {
	data, err := JSON(sampleCrossings())
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("got %d entries, want 3", len(decoded))
	}
	wantKeys := []string{"airspace_id", "code_id", "name", "type", "class", "min_alt_ft", "max_alt_ft", "distance_km", "entry_alt_ft", "exit_alt_ft", "critical"}
	for _, k := range wantKeys {
		if _, ok := decoded[0][k]; !ok {
			t.Errorf("missing key %q in JSON output", k)
		}
	}
}

func TestTextHighlightsCritical(t *testing.T) {
	s := Categorize(sampleCrossings())
	text := s.Text(false)
	if !strings.Contains(text, "CRITICAL") {
		t.Error("expected text summary to highlight critical crossings")
	}
	if !strings.Contains(text, "2 critical crossing") {
		t.Error("expected text summary to report critical crossing count")
	}
}

func TestCorrectedProfileKMLMarshalsTransitions(t *testing.T) {
	cfp := profile.CorrectedFlightPath{
		FlightPath: flightpath.FlightPath{Waypoints: []flightpath.Waypoint{
			{ID: "DEP", Lat: 48.0, Lon: 2.0, AltitudeFt: 1300},
			{ID: "Climb_DEP_6000", Lat: 48.2, Lon: 2.0, AltitudeFt: 6000},
			{ID: "ARR", Lat: 49.0, Lon: 2.0, AltitudeFt: 1400},
		}},
	}
	data, err := CorrectedProfileKML(cfp)
	if err != nil {
		t.Fatalf("CorrectedProfileKML: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "Climb_DEP_6000") {
		t.Error("expected transition waypoint name in KML output")
	}
	if !strings.Contains(out, transitionStyleID) {
		t.Error("expected transition style reference in KML output")
	}
}
