// Package spatial implements the bounding-box index and the
// bbox-prune → exact-intersection → altitude-overlap query pipeline of
// spec.md §4.5, grounded on the teacher's rtreego-based ChartIndex
// (beetlebugorg-s57/pkg/s57/index.go).
package spatial

import (
	"context"
	"fmt"
	"sort"

	"github.com/ffdumont/navprofile/internal/store"
	"github.com/dhconnelly/rtreego"
)

// entry is one airspace's bounding rectangle, as handed to the R-tree.
// The index owns only bounding boxes keyed by airspace id, per spec.md
// §3's ownership model — never raw geometry.
type entry struct {
	airspaceID int64
	minLon     float64
	minLat     float64
	maxLon     float64
	maxLat     float64
}

func (e entry) Bounds() rtreego.Rect {
	point := rtreego.Point{e.minLon, e.minLat}
	lengths := []float64{
		maxf(e.maxLon-e.minLon, minRectSize),
		maxf(e.maxLat-e.minLat, minRectSize),
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// minRectSize keeps degenerate (point-like) bounding boxes non-zero,
// which rtreego's NewRect rejects.
const minRectSize = 1e-9

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Index is an R-tree over airspace bounding boxes. rtreego v1.2.0 has
// no bulk-load/STR constructor, only incremental Insert; Build
// approximates the "bulk-loaded, fan-out 16" requirement by presorting
// entries into longitude strips ordered by latitude (sortStripOrder)
// before inserting them one at a time, so spatially close entries end
// up packed into nearby tree nodes.
type Index struct {
	rtree *rtreego.Rtree
}

// airspaceSource is the subset of *store.Store Build needs.
type airspaceSource interface {
	IterAllWithGeometry(ctx context.Context, fn func(store.Airspace) error) error
	GetGeometry(ctx context.Context, airspaceID int64) ([]store.BorderGeometry, error)
}

// Build constructs an Index over every airspace the store reports has
// geometry, reading each one's assembled bounding box from its raw
// vertices (not from the geometry loader's cache, since the index is
// built once up front and need not warm the polygon cache).
func Build(ctx context.Context, src airspaceSource) (*Index, error) {
	var entries []entry

	err := src.IterAllWithGeometry(ctx, func(a store.Airspace) error {
		borders, err := src.GetGeometry(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("load geometry for airspace %d: %w", a.ID, err)
		}
		e, ok := boundingBox(a.ID, borders)
		if !ok {
			return nil
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortStripOrder(entries)

	tree := rtreego.NewTree(2, 8, 16)
	for _, e := range entries {
		tree.Insert(e)
	}
	return &Index{rtree: tree}, nil
}

func boundingBox(airspaceID int64, borders []store.BorderGeometry) (entry, bool) {
	first := true
	var e entry
	e.airspaceID = airspaceID
	for _, b := range borders {
		for _, v := range b.Vertices {
			if first {
				e.minLon, e.maxLon = v.Lon, v.Lon
				e.minLat, e.maxLat = v.Lat, v.Lat
				first = false
				continue
			}
			e.minLon = minf(e.minLon, v.Lon)
			e.maxLon = maxf(e.maxLon, v.Lon)
			e.minLat = minf(e.minLat, v.Lat)
			e.maxLat = maxf(e.maxLat, v.Lat)
		}
	}
	return e, !first
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// sortStripOrder orders entries by a coarse lon-strip then lat value,
// a simplified Sort-Tile-Recursive pass: grouping spatial neighbors
// before sequential Insert gives better node packing than insertion
// order, without requiring a true bulk-load API.
func sortStripOrder(entries []entry) {
	const stripWidthDeg = 10.0
	sort.Slice(entries, func(i, j int) bool {
		si := int(entries[i].minLon / stripWidthDeg)
		sj := int(entries[j].minLon / stripWidthDeg)
		if si != sj {
			return si < sj
		}
		return entries[i].minLat < entries[j].minLat
	})
}

// Candidates returns airspace ids whose bounding box intersects rect.
func (idx *Index) Candidates(rect Rect) []int64 {
	point := rtreego.Point{rect.MinLon, rect.MinLat}
	lengths := []float64{
		maxf(rect.MaxLon-rect.MinLon, minRectSize),
		maxf(rect.MaxLat-rect.MinLat, minRectSize),
	}
	queryRect, _ := rtreego.NewRect(point, lengths)

	hits := idx.rtree.SearchIntersect(queryRect)
	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.(entry).airspaceID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Rect is an axis-aligned (lon, lat) bounding rectangle.
type Rect struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}
