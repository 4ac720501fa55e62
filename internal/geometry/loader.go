// Package geometry assembles an airspace's persisted borders and
// vertices into a (possibly multi-) polygon, caching the result,
// following the assembly rules of spec.md §4.4.
package geometry

import (
	"context"
	"fmt"
	"math"

	"github.com/ffdumont/navprofile/internal/diag"
	"github.com/ffdumont/navprofile/internal/store"
	"github.com/paulmach/orb"
)

// closureToleranceDeg is how close a border's first and last vertex
// must be to be treated as already closed.
const closureToleranceDeg = 1e-7

// degenerateAreaThreshold discards rings whose oriented area falls
// below this, in square degrees.
const degenerateAreaThreshold = 1e-12

// geometrySource is the subset of *store.Store the loader needs; kept
// as an interface so tests can substitute a fake without a real
// database (spec.md §9's "pass dependencies explicitly" design note).
type geometrySource interface {
	GetGeometry(ctx context.Context, airspaceID int64) ([]store.BorderGeometry, error)
}

// Loader borrows vertex data from the store and owns the assembled
// polygon cache, per the ownership model in spec.md §3. It adapts the
// teacher's pkg/v1 loader+cache pair (beetlebugorg-s57) onto
// paulmach/orb geometry and a hashicorp/golang-lru/v2-backed cache.
type Loader struct {
	source geometrySource
	cache  *Cache
	log    *diag.Log
}

// NewLoader builds a Loader with an LRU of the given size. log may be
// nil; when present, discarded degenerate rings are recorded there
// rather than silently dropped.
func NewLoader(source geometrySource, cacheSize int, log *diag.Log) (*Loader, error) {
	cache, err := NewCache(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("build geometry cache: %w", err)
	}
	return &Loader{source: source, cache: cache, log: log}, nil
}

// Load returns the assembled multi-polygon for an airspace id, serving
// from cache when possible.
func (l *Loader) Load(ctx context.Context, airspaceID int64) (orb.MultiPolygon, error) {
	if mp, ok := l.cache.Get(airspaceID); ok {
		return mp, nil
	}

	borders, err := l.source.GetGeometry(ctx, airspaceID)
	if err != nil {
		return nil, fmt.Errorf("load geometry for airspace %d: %w", airspaceID, err)
	}

	mp := make(orb.MultiPolygon, 0, len(borders))
	for _, b := range borders {
		ring := assembleRing(b)
		if ring == nil {
			if l.log != nil {
				l.log.Record(diag.KindDatasetIncomplete,
					fmt.Sprintf("airspace %d border %d", airspaceID, b.Ordinal),
					"ring degenerate or too few distinct vertices, discarded")
			}
			continue
		}
		mp = append(mp, orb.Polygon{ring})
	}

	l.cache.Add(airspaceID, mp)
	return mp, nil
}

// assembleRing closes a border's vertex sequence into a ring and
// discards it if it ends up degenerate, returning nil in that case.
func assembleRing(b store.BorderGeometry) orb.Ring {
	if len(b.Vertices) < 3 {
		return nil
	}
	ring := make(orb.Ring, 0, len(b.Vertices)+1)
	for _, v := range b.Vertices {
		ring = append(ring, orb.Point{v.Lon, v.Lat})
	}

	first, last := ring[0], ring[len(ring)-1]
	if math.Abs(first[0]-last[0]) > closureToleranceDeg || math.Abs(first[1]-last[1]) > closureToleranceDeg {
		ring = append(ring, first)
	}

	if countDistinct(ring) < 3 {
		return nil
	}
	if math.Abs(orientedArea(ring)) < degenerateAreaThreshold {
		return nil
	}
	return ring
}

// orientedArea returns twice the signed area of the ring via the
// shoelace formula, in square degrees; sign encodes winding order.
func orientedArea(ring orb.Ring) float64 {
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		p0, p1 := ring[i], ring[i+1]
		sum += p0[0]*p1[1] - p1[0]*p0[1]
	}
	return sum / 2
}

func countDistinct(ring orb.Ring) int {
	seen := make(map[orb.Point]bool, len(ring))
	for _, p := range ring[:len(ring)-1] {
		seen[p] = true
	}
	return len(seen)
}
