// Package report categorizes crossings into buckets and serializes
// them to the machine-readable and human-readable formats of spec.md
// §4.9 and §6.4.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ffdumont/navprofile/internal/spatial"
)

// Bucket is one of the categories spec.md §4.9 names.
type Bucket string

const (
	BucketTMA       Bucket = "TMAs"
	BucketRAS       Bucket = "RAS"
	BucketCTR       Bucket = "Control Zones (CTR)"
	BucketR         Bucket = "Restricted (R)"
	BucketP         Bucket = "Prohibited (P)"
	BucketD         Bucket = "Danger (D)"
	BucketClassA    Bucket = "Class-A"
	BucketOther     Bucket = "Other"
)

// bucketOrder fixes the display order of buckets in the human summary.
var bucketOrder = []Bucket{BucketClassA, BucketP, BucketR, BucketTMA, BucketRAS, BucketCTR, BucketD, BucketOther}

// criticalBuckets are highlighted per spec.md §4.9 ("P/R/Class-A").
var criticalBuckets = map[Bucket]bool{BucketP: true, BucketR: true, BucketClassA: true}

// classify assigns a crossing to a bucket, preferring class A over
// type, and type over the Other fallback.
func classify(c spatial.Crossing) Bucket {
	if c.Class == "A" {
		return BucketClassA
	}
	switch c.Type {
	case "TMA":
		return BucketTMA
	case "RAS":
		return BucketRAS
	case "CTR":
		return BucketCTR
	case "R":
		return BucketR
	case "P":
		return BucketP
	case "D":
		return BucketD
	default:
		return BucketOther
	}
}

// crossingJSON is the exact wire shape spec.md §6.4 names.
type crossingJSON struct {
	AirspaceID  int64   `json:"airspace_id"`
	CodeID      string  `json:"code_id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Class       string  `json:"class"`
	MinAltFt    float64 `json:"min_alt_ft"`
	MaxAltFt    float64 `json:"max_alt_ft"`
	DistanceKm  float64 `json:"distance_km"`
	EntryAltFt  float64 `json:"entry_alt_ft"`
	ExitAltFt   float64 `json:"exit_alt_ft"`
	Critical    bool    `json:"critical"`
}

// JSON serializes crossings, already sorted by distance_km by the
// query engine, into spec.md §6.4's machine format.
func JSON(crossings []spatial.Crossing) ([]byte, error) {
	out := make([]crossingJSON, len(crossings))
	for i, c := range crossings {
		out[i] = crossingJSON{
			AirspaceID: c.AirspaceID,
			CodeID:     c.CodeID,
			Name:       c.Name,
			Type:       c.Type,
			Class:      c.Class,
			MinAltFt:   c.MinAltitudeFt,
			MaxAltFt:   c.MaxAltitudeFt,
			DistanceKm: c.DistanceKm,
			EntryAltFt: c.EntryAltitude,
			ExitAltFt:  c.ExitAltitude,
			Critical:   c.Critical,
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

// Summary is the categorized, human-readable view of a crossings list.
type Summary struct {
	Buckets  map[Bucket][]spatial.Crossing
	Critical []spatial.Crossing
}

// Categorize buckets crossings per spec.md §4.9, pulling critical ones
// into their own highlighted list as well.
func Categorize(crossings []spatial.Crossing) Summary {
	s := Summary{Buckets: make(map[Bucket][]spatial.Crossing)}
	for _, c := range crossings {
		b := classify(c)
		s.Buckets[b] = append(s.Buckets[b], c)
		if criticalBuckets[b] || c.Critical {
			s.Critical = append(s.Critical, c)
		}
	}
	for _, list := range s.Buckets {
		sort.Slice(list, func(i, j int) bool { return list[i].DistanceKm < list[j].DistanceKm })
	}
	return s
}

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Text renders a human-readable summary, bucketed in bucketOrder, with
// critical crossings flagged inline. color controls whether the
// [CRITICAL] mark is wrapped in ANSI red, which callers should only
// request when writing to an interactive terminal.
func (s Summary) Text(color bool) string {
	var sb strings.Builder
	for _, b := range bucketOrder {
		list := s.Buckets[b]
		if len(list) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s (%d)\n", b, len(list))
		for _, c := range list {
			mark := ""
			if c.Critical {
				mark = " [CRITICAL]"
				if color {
					mark = " " + ansiRed + "[CRITICAL]" + ansiReset
				}
			}
			fmt.Fprintf(&sb, "  %6.1f km  %-12s %-30s %6.0f-%6.0f ft%s\n",
				c.DistanceKm, c.CodeID, c.Name, c.MinAltitudeFt, c.MaxAltitudeFt, mark)
		}
	}
	if len(s.Critical) > 0 {
		fmt.Fprintf(&sb, "\n%d critical crossing(s)\n", len(s.Critical))
	}
	return sb.String()
}
