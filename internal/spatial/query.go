package spatial

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ffdumont/navprofile/internal/corridor"
	"github.com/ffdumont/navprofile/internal/diag"
	"github.com/ffdumont/navprofile/internal/geodesy"
	"github.com/ffdumont/navprofile/internal/store"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

// Crossing is one airspace the corridor passes through, per spec.md
// §3's Crossing data model. DistanceKm corresponds to
// distance_along_path_km; EntryAltitude/ExitAltitude are the planned
// altitude in feet sampled at the corridor's entry/exit points.
type Crossing struct {
	AirspaceID    int64
	CodeID        string
	Name          string
	Type          string
	Class         string
	MinAltitudeFt float64
	MaxAltitudeFt float64
	DistanceKm    float64
	EntryAltitude float64
	ExitAltitude  float64
	Critical      bool
}

// geometryLoader is the subset of *geometry.Loader the engine needs.
type geometryLoader interface {
	Load(ctx context.Context, airspaceID int64) (orb.MultiPolygon, error)
}

// airspaceLookup is the subset of *store.Store the engine needs to
// resolve a candidate id to its metadata.
type airspaceLookup interface {
	GetByID(ctx context.Context, id int64) (store.Airspace, error)
}

// Engine runs the bbox-prune -> exact-intersection -> altitude-overlap
// pipeline of spec.md §4.5.
type Engine struct {
	Index    *Index
	Geometry geometryLoader
	Airspace airspaceLookup
	Log      *diag.Log
}

// criticalTypes are the airspace types that make a crossing critical
// regardless of class (spec.md §3: "type ∈ {P, R} or class = A").
var criticalTypes = map[string]bool{"P": true, "R": true}

// Crossings computes the list of crossings for a corridor, splitting
// across the antimeridian first and merging results, sorted by
// (distance_along_path_km, airspace_id) as spec.md §4.5 requires.
func (e *Engine) Crossings(ctx context.Context, c corridor.Corridor) ([]Crossing, error) {
	subRings := SplitAtAntimeridian(c.Footprint)

	var all []Crossing
	for _, ring := range subRings {
		sub, err := e.crossingsForRing(ctx, ring, c)
		if err != nil {
			return nil, err
		}
		all = append(all, sub...)
	}

	all = dedupeByAirspace(all)
	sort.Slice(all, func(i, j int) bool {
		if all[i].DistanceKm != all[j].DistanceKm {
			return all[i].DistanceKm < all[j].DistanceKm
		}
		return all[i].AirspaceID < all[j].AirspaceID
	})
	return all, nil
}

func dedupeByAirspace(crossings []Crossing) []Crossing {
	seen := make(map[int64]bool, len(crossings))
	out := crossings[:0]
	for _, c := range crossings {
		if seen[c.AirspaceID] {
			continue
		}
		seen[c.AirspaceID] = true
		out = append(out, c)
	}
	return out
}

func (e *Engine) crossingsForRing(ctx context.Context, ring orb.Ring, c corridor.Corridor) ([]Crossing, error) {
	rect := envelope(ring)
	candidateIDs := e.Index.Candidates(rect)
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	results := make([]*Crossing, len(candidateIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range candidateIDs {
		i, id := i, id
		g.Go(func() error {
			crossing, ok, err := e.evaluateCandidate(gctx, id, ring, c)
			if err != nil {
				if e.Log != nil {
					e.Log.Record(diag.KindDatasetIncomplete, fmt.Sprintf("airspace %d", id), err.Error())
				}
				return nil
			}
			if ok {
				results[i] = &crossing
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Crossing, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (e *Engine) evaluateCandidate(ctx context.Context, id int64, ring orb.Ring, c corridor.Corridor) (Crossing, bool, error) {
	mp, err := e.Geometry.Load(ctx, id)
	if err != nil {
		return Crossing{}, false, fmt.Errorf("load geometry: %w", err)
	}
	if !multiPolygonIntersects(mp, ring) {
		return Crossing{}, false, nil
	}

	a, err := e.Airspace.GetByID(ctx, id)
	if err != nil {
		return Crossing{}, false, fmt.Errorf("load airspace metadata: %w", err)
	}

	// An airspace with an unlimited (UNL) ceiling is kept regardless of
	// the corridor's altitude interval; any other airspace needs the two
	// closed intervals to overlap.
	airspaceInterval := geodesy.Interval{Lo: a.MinAltitudeFt, Hi: a.MaxAltitudeFt}
	if a.MaxAltitudeUnit != "UNL" && !airspaceInterval.Overlaps(c.Altitude) {
		return Crossing{}, false, nil
	}

	entryDist, exitDist := entryExitDistance(mp, c)
	entryAlt := c.AltitudeAtKm(entryDist)
	exitAlt := c.AltitudeAtKm(exitDist)

	return Crossing{
		AirspaceID:    id,
		CodeID:        a.CodeID,
		Name:          a.Name,
		Type:          a.CodeType,
		Class:         a.Class,
		MinAltitudeFt: a.MinAltitudeFt,
		MaxAltitudeFt: a.MaxAltitudeFt,
		DistanceKm:    entryDist,
		EntryAltitude: entryAlt,
		ExitAltitude:  exitAlt,
		Critical:      criticalTypes[a.CodeType] || a.Class == "A",
	}, true, nil
}

// entryExitDistance walks the corridor's own centerline (not its
// footprint's bounding box, which can miss a non-convex footprint
// entirely for any path with more than two waypoints) and finds the
// nearest/farthest sampled point lying inside the airspace polygon,
// reporting the path distance there as entry/exit. The centerline lies
// inside the buffered footprint by construction, so testing against mp
// directly is sufficient. When the corridor lies wholly inside the
// airspace (no sample point falls on the boundary), entry collapses to
// 0 and exit to the path length, per spec.md §4.5's "wholly inside"
// edge case.
func entryExitDistance(mp orb.MultiPolygon, c corridor.Corridor) (entryKm, exitKm float64) {
	const samplesPerSegmentKm = 0.5
	total := c.TotalDistanceKm()
	samples := int(total/samplesPerSegmentKm) + 1
	if samples < 200 {
		samples = 200
	}

	entryKm = math.Inf(1)
	exitKm = math.Inf(-1)
	found := false

	for i := 0; i <= samples; i++ {
		d := total * float64(i) / float64(samples)
		p := c.PathPointAt(d)
		if !multiPolygonContains(mp, p) {
			continue
		}
		if d < entryKm {
			entryKm = d
		}
		if d > exitKm {
			exitKm = d
		}
		found = true
	}

	if !found {
		return 0, total
	}
	return entryKm, exitKm
}

func multiPolygonContains(mp orb.MultiPolygon, p orb.Point) bool {
	for _, poly := range mp {
		if len(poly) == 0 {
			continue
		}
		if pointStrictlyInRing(p, poly[0]) {
			return true
		}
	}
	return false
}

func envelope(ring orb.Ring) Rect {
	r := Rect{MinLon: ring[0][0], MinLat: ring[0][1], MaxLon: ring[0][0], MaxLat: ring[0][1]}
	for _, p := range ring {
		r.MinLon = minf(r.MinLon, p[0])
		r.MaxLon = maxf(r.MaxLon, p[0])
		r.MinLat = minf(r.MinLat, p[1])
		r.MaxLat = maxf(r.MaxLat, p[1])
	}
	return r
}
