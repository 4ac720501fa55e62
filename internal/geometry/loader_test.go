package geometry

import (
	"context"
	"testing"

	"github.com/ffdumont/navprofile/internal/store"
)

type fakeSource struct {
	geometries map[int64][]store.BorderGeometry
	calls      int
}

func (f *fakeSource) GetGeometry(_ context.Context, id int64) ([]store.BorderGeometry, error) {
	f.calls++
	return f.geometries[id], nil
}

func squareBorder() store.BorderGeometry {
	return store.BorderGeometry{
		Ordinal: 0,
		Vertices: []store.VertexGeometry{
			{Ordinal: 0, Lat: 48.0, Lon: 2.0},
			{Ordinal: 1, Lat: 49.0, Lon: 2.0},
			{Ordinal: 2, Lat: 49.0, Lon: 3.0},
			{Ordinal: 3, Lat: 48.0, Lon: 3.0},
		},
	}
}

func TestLoadAssemblesAndClosesRing(t *testing.T) {
	src := &fakeSource{geometries: map[int64][]store.BorderGeometry{1: {squareBorder()}}}
	loader, err := NewLoader(src, 16, nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	mp, err := loader.Load(context.Background(), 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(mp) != 1 {
		t.Fatalf("got %d polygon components, want 1", len(mp))
	}
	ring := mp[0][0]
	if ring[0] != ring[len(ring)-1] {
		t.Errorf("ring not closed: first=%v last=%v", ring[0], ring[len(ring)-1])
	}
	if len(ring) != 5 {
		t.Errorf("got %d ring points, want 5 (4 distinct + closing point)", len(ring))
	}
}

func TestLoadCachesResult(t *testing.T) {
	src := &fakeSource{geometries: map[int64][]store.BorderGeometry{1: {squareBorder()}}}
	loader, err := NewLoader(src, 16, nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	if _, err := loader.Load(context.Background(), 1); err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if _, err := loader.Load(context.Background(), 1); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if src.calls != 1 {
		t.Errorf("GetGeometry called %d times, want 1 (second load should hit cache)", src.calls)
	}
}

func TestLoadDiscardsDegenerateRing(t *testing.T) {
	degenerate := store.BorderGeometry{
		Ordinal: 0,
		Vertices: []store.VertexGeometry{
			{Ordinal: 0, Lat: 48.0, Lon: 2.0},
			{Ordinal: 1, Lat: 48.0, Lon: 2.0},
			{Ordinal: 2, Lat: 48.0, Lon: 2.0000000001},
		},
	}
	src := &fakeSource{geometries: map[int64][]store.BorderGeometry{1: {degenerate}}}
	loader, err := NewLoader(src, 16, nil)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	mp, err := loader.Load(context.Background(), 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(mp) != 0 {
		t.Errorf("expected degenerate ring to be discarded, got %d components", len(mp))
	}
}
