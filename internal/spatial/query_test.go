package spatial

import (
	"context"
	"testing"

	"github.com/ffdumont/navprofile/internal/corridor"
	"github.com/ffdumont/navprofile/internal/flightpath"
	"github.com/ffdumont/navprofile/internal/store"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

type fakeGeometry struct {
	polys map[int64]orb.MultiPolygon
}

func (f *fakeGeometry) Load(_ context.Context, id int64) (orb.MultiPolygon, error) {
	return f.polys[id], nil
}

type fakeAirspaceLookup struct {
	airspaces map[int64]store.Airspace
}

func (f *fakeAirspaceLookup) GetByID(_ context.Context, id int64) (store.Airspace, error) {
	return f.airspaces[id], nil
}

func squareRing(minLat, minLon, maxLat, maxLon float64) orb.Ring {
	return orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}
}

func straightFlightPath() flightpath.FlightPath {
	return flightpath.FlightPath{Waypoints: []flightpath.Waypoint{
		{ID: "A", Lat: 48.0, Lon: 2.0, AltitudeFt: 3000},
		{ID: "B", Lat: 49.0, Lon: 2.0, AltitudeFt: 5000},
	}}
}

func buildIndexOf(ids []int64, boxes map[int64]Rect) *Index {
	var entries []entry
	for _, id := range ids {
		b := boxes[id]
		entries = append(entries, entry{airspaceID: id, minLon: b.MinLon, minLat: b.MinLat, maxLon: b.MaxLon, maxLat: b.MaxLat})
	}
	sortStripOrder(entries)
	tree := rtreego.NewTree(2, 8, 16)
	for _, e := range entries {
		tree.Insert(e)
	}
	return &Index{rtree: tree}
}

func TestEmptyDatasetYieldsNoCrossings(t *testing.T) {
	idx := buildIndexOf(nil, nil)
	eng := &Engine{
		Index:    idx,
		Geometry: &fakeGeometry{polys: map[int64]orb.MultiPolygon{}},
		Airspace: &fakeAirspaceLookup{airspaces: map[int64]store.Airspace{}},
	}
	c := corridor.Build(straightFlightPath(), 10, 1000)
	crossings, err := eng.Crossings(context.Background(), c)
	if err != nil {
		t.Fatalf("Crossings: %v", err)
	}
	if len(crossings) != 0 {
		t.Errorf("expected 0 crossings on empty dataset, got %d", len(crossings))
	}
}

func TestSingleContainedAirspace(t *testing.T) {
	ring := squareRing(47.5, 1.5, 49.5, 2.5)
	idx := buildIndexOf([]int64{1}, map[int64]Rect{1: {MinLon: 1.5, MinLat: 47.5, MaxLon: 2.5, MaxLat: 49.5}})
	eng := &Engine{
		Index:    idx,
		Geometry: &fakeGeometry{polys: map[int64]orb.MultiPolygon{1: {orb.Polygon{ring}}}},
		Airspace: &fakeAirspaceLookup{airspaces: map[int64]store.Airspace{
			1: {ID: 1, CodeID: "LF_TMA1", Name: "TEST TMA", CodeType: "TMA", Class: "D", MinAltitudeFt: 0, MaxAltitudeFt: 10000},
		}},
	}
	c := corridor.Build(straightFlightPath(), 10, 1000)
	crossings, err := eng.Crossings(context.Background(), c)
	if err != nil {
		t.Fatalf("Crossings: %v", err)
	}
	if len(crossings) != 1 {
		t.Fatalf("expected 1 crossing, got %d", len(crossings))
	}
	if crossings[0].CodeID != "LF_TMA1" {
		t.Errorf("got code %q, want LF_TMA1", crossings[0].CodeID)
	}
}

func TestAltitudeMissExcludesAirspace(t *testing.T) {
	ring := squareRing(47.5, 1.5, 49.5, 2.5)
	idx := buildIndexOf([]int64{1}, map[int64]Rect{1: {MinLon: 1.5, MinLat: 47.5, MaxLon: 2.5, MaxLat: 49.5}})
	eng := &Engine{
		Index:    idx,
		Geometry: &fakeGeometry{polys: map[int64]orb.MultiPolygon{1: {orb.Polygon{ring}}}},
		Airspace: &fakeAirspaceLookup{airspaces: map[int64]store.Airspace{
			1: {ID: 1, CodeID: "HIGH", CodeType: "CTA", Class: "E", MinAltitudeFt: 20000, MaxAltitudeFt: 30000},
		}},
	}
	c := corridor.Build(straightFlightPath(), 10, 1000)
	crossings, err := eng.Crossings(context.Background(), c)
	if err != nil {
		t.Fatalf("Crossings: %v", err)
	}
	if len(crossings) != 0 {
		t.Errorf("expected airspace excluded on altitude miss, got %d crossings", len(crossings))
	}
}

func TestCriticalAirspaceFlagging(t *testing.T) {
	ring := squareRing(47.5, 1.5, 49.5, 2.5)
	idx := buildIndexOf([]int64{1, 2}, map[int64]Rect{
		1: {MinLon: 1.5, MinLat: 47.5, MaxLon: 2.5, MaxLat: 49.5},
		2: {MinLon: 1.5, MinLat: 47.5, MaxLon: 2.5, MaxLat: 49.5},
	})
	eng := &Engine{
		Index: idx,
		Geometry: &fakeGeometry{polys: map[int64]orb.MultiPolygon{
			1: {orb.Polygon{ring}},
			2: {orb.Polygon{ring}},
		}},
		Airspace: &fakeAirspaceLookup{airspaces: map[int64]store.Airspace{
			1: {ID: 1, CodeID: "R_ZONE", CodeType: "R", Class: "", MinAltitudeFt: 0, MaxAltitudeFt: 10000},
			2: {ID: 2, CodeID: "A_TMA", CodeType: "TMA", Class: "A", MinAltitudeFt: 0, MaxAltitudeFt: 10000},
		}},
	}
	c := corridor.Build(straightFlightPath(), 10, 1000)
	crossings, err := eng.Crossings(context.Background(), c)
	if err != nil {
		t.Fatalf("Crossings: %v", err)
	}
	if len(crossings) != 2 {
		t.Fatalf("expected 2 crossings, got %d", len(crossings))
	}
	for _, cr := range crossings {
		if !cr.Critical {
			t.Errorf("expected %s to be critical", cr.CodeID)
		}
	}
}

func TestUnlimitedMaxAltitudeAlwaysOverlaps(t *testing.T) {
	ring := squareRing(47.5, 1.5, 49.5, 2.5)
	idx := buildIndexOf([]int64{1}, map[int64]Rect{1: {MinLon: 1.5, MinLat: 47.5, MaxLon: 2.5, MaxLat: 49.5}})
	eng := &Engine{
		Index:    idx,
		Geometry: &fakeGeometry{polys: map[int64]orb.MultiPolygon{1: {orb.Polygon{ring}}}},
		Airspace: &fakeAirspaceLookup{airspaces: map[int64]store.Airspace{
			1: {ID: 1, CodeID: "UNL1", CodeType: "D-OTHER", MinAltitudeFt: 40000, MaxAltitudeUnit: "UNL"},
		}},
	}
	c := corridor.Build(straightFlightPath(), 10, 1000)
	crossings, err := eng.Crossings(context.Background(), c)
	if err != nil {
		t.Fatalf("Crossings: %v", err)
	}
	if len(crossings) != 1 {
		t.Errorf("expected UNL-ceiling airspace to be reported regardless of corridor top, got %d", len(crossings))
	}
}

// TestEntryExitDistanceFollowsBentPath builds an L-shaped path (east,
// then north) and an airspace square straddling the middle of the
// first (east-west) leg. The square sits nowhere near the straight
// line between the footprint's bounding-box corners, so a fix that
// regressed to sampling that bbox diagonal would find no sample
// inside the square and silently fall back to "wholly inside"
// (entry=0, exit=full path length). Walking the actual centerline must
// instead locate the real, partial overlap.
func TestEntryExitDistanceFollowsBentPath(t *testing.T) {
	fp := flightpath.FlightPath{Waypoints: []flightpath.Waypoint{
		{ID: "A", Lat: 48.0, Lon: 2.0, AltitudeFt: 3000},
		{ID: "B", Lat: 48.0, Lon: 3.0, AltitudeFt: 3000},
		{ID: "C", Lat: 49.0, Lon: 3.0, AltitudeFt: 3000},
	}}
	c := corridor.Build(fp, 5, 1000)
	total := c.TotalDistanceKm()

	square := squareRing(47.95, 2.45, 48.05, 2.55)
	mp := orb.MultiPolygon{orb.Polygon{square}}

	entry, exit := entryExitDistance(mp, c)
	if entry <= 0 {
		t.Errorf("entry = %v, want > 0 (square starts partway along the east leg)", entry)
	}
	if exit >= total {
		t.Errorf("exit = %v, want < total path length %v (square ends before the path's end)", exit, total)
	}
	if entry >= exit {
		t.Errorf("entry (%v) should be before exit (%v)", entry, exit)
	}
}

func TestDeterministicOrdering(t *testing.T) {
	ringNear := squareRing(47.9, 1.5, 48.2, 2.5)
	ringFar := squareRing(48.7, 1.5, 49.0, 2.5)
	idx := buildIndexOf([]int64{2, 1}, map[int64]Rect{
		1: {MinLon: 1.5, MinLat: 47.9, MaxLon: 2.5, MaxLat: 48.2},
		2: {MinLon: 1.5, MinLat: 48.7, MaxLon: 2.5, MaxLat: 49.0},
	})
	eng := &Engine{
		Index: idx,
		Geometry: &fakeGeometry{polys: map[int64]orb.MultiPolygon{
			1: {orb.Polygon{ringNear}},
			2: {orb.Polygon{ringFar}},
		}},
		Airspace: &fakeAirspaceLookup{airspaces: map[int64]store.Airspace{
			1: {ID: 1, CodeID: "NEAR", CodeType: "D-OTHER", MinAltitudeFt: 0, MaxAltitudeFt: 10000},
			2: {ID: 2, CodeID: "FAR", CodeType: "D-OTHER", MinAltitudeFt: 0, MaxAltitudeFt: 10000},
		}},
	}
	c := corridor.Build(straightFlightPath(), 10, 1000)
	crossings, err := eng.Crossings(context.Background(), c)
	if err != nil {
		t.Fatalf("Crossings: %v", err)
	}
	if len(crossings) != 2 {
		t.Fatalf("expected 2 crossings, got %d", len(crossings))
	}
	if crossings[0].CodeID != "NEAR" || crossings[1].CodeID != "FAR" {
		t.Errorf("expected crossings ordered by distance along path, got %q then %q", crossings[0].CodeID, crossings[1].CodeID)
	}
}
