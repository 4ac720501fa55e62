package aixm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The raw* types below mirror just the AIXM elements spec.md §6.1 lists;
// everything else in a real French-AIP extract is ignored by never
// giving it a struct tag to land in.

type rawAseUid struct {
	CodeType string `xml:"codeType"`
	CodeID   string `xml:"codeId"`
}

type rawTimsh struct {
	TxtRmkTimsh string `xml:"txtRmkTimsh"`
}

type rawTimeTable struct {
	Timsh []rawTimsh `xml:"Timsh"`
}

type rawAtt struct {
	TimeTable rawTimeTable `xml:"TimeTable"`
}

type rawAse struct {
	AseUid           rawAseUid `xml:"AseUid"`
	TxtName          string    `xml:"txtName"`
	CodeClass        string    `xml:"codeClass"`
	CodeDistVerUpper string    `xml:"codeDistVerUpper"`
	CodeDistVerLower string    `xml:"codeDistVerLower"`
	ValDistVerUpper  string    `xml:"valDistVerUpper"`
	ValDistVerLower  string    `xml:"valDistVerLower"`
	UomDistVerUpper  string    `xml:"uomDistVerUpper"`
	UomDistVerLower  string    `xml:"uomDistVerLower"`
	Att              []rawAtt  `xml:"Att"`
	TxtRmk           string    `xml:"txtRmk"`
}

type rawAvx struct {
	CodeType     string `xml:"codeType"`
	GeoLat       string `xml:"geoLat"`
	GeoLong      string `xml:"geoLong"`
	GeoLatArc    string `xml:"geoLatArc"`
	GeoLongArc   string `xml:"geoLongArc"`
	ValRadiusArc string `xml:"valRadiusArc"`
}

type rawAbdUid struct {
	AseUid rawAseUid `xml:"AseUid"`
}

type rawAbd struct {
	AbdUid rawAbdUid `xml:"AbdUid"`
	Avx    []rawAvx  `xml:"Avx"`
}

func operatingHours(atts []rawAtt) string {
	var parts []string
	for _, a := range atts {
		for _, t := range a.TimeTable.Timsh {
			if t.TxtRmkTimsh != "" {
				parts = append(parts, t.TxtRmkTimsh)
			}
		}
	}
	return strings.Join(parts, "; ")
}

// processAse turns one decoded Ase plus its attached Abd borders into a
// Record, or an error describing why the single record is rejected
// (spec.md §4.2 partial-failure isolation — the caller logs and skips,
// it never aborts the whole extraction).
func processAse(a rawAse, borders []rawAbd) (Record, error) {
	minFt, minUnit, minAGL, err := parseAltitude(a.CodeDistVerLower, a.ValDistVerLower, a.UomDistVerLower)
	if err != nil {
		return Record{}, fmt.Errorf("lower altitude: %w", err)
	}
	maxFt, maxUnit, maxAGL, err := parseAltitude(a.CodeDistVerUpper, a.ValDistVerUpper, a.UomDistVerUpper)
	if err != nil {
		return Record{}, fmt.Errorf("upper altitude: %w", err)
	}
	if !math.IsInf(minFt, 0) && !math.IsInf(maxFt, 0) && minFt > maxFt {
		return Record{}, fmt.Errorf("min altitude %.1f ft exceeds max altitude %.1f ft", minFt, maxFt)
	}

	recBorders := make([]Border, 0, len(borders))
	for i, b := range borders {
		verts, err := assembleBorderVertices(b.Avx)
		if err != nil {
			return Record{}, fmt.Errorf("border %d: %w", i, err)
		}
		recBorders = append(recBorders, Border{Ordinal: i, Vertices: verts})
	}

	airspace := Airspace{
		CodeID:          a.AseUid.CodeID,
		CodeType:        normalizeType(a.AseUid.CodeType),
		Name:            a.TxtName,
		Class:           a.CodeClass,
		MinAltitudeFt:   minFt,
		MaxAltitudeFt:   maxFt,
		MinAltitudeUnit: minUnit,
		MaxAltitudeUnit: maxUnit,
		MinAltitudeAGL:  minAGL,
		MaxAltitudeAGL:  maxAGL,
		OperatingHours:  operatingHours(a.Att),
		Remarks:         a.TxtRmk,
	}
	return Record{Airspace: airspace, Borders: recBorders}, nil
}

// assembleBorderVertices walks one border's Avx list in document order,
// rasterizing CCA/CWA arcs into interior points and passing GRC/FNT
// vertices straight through as great-circle segment endpoints.
func assembleBorderVertices(avxList []rawAvx) ([]Vertex, error) {
	verts := make([]Vertex, 0, len(avxList))
	var prev *Vertex
	for _, v := range avxList {
		lat, err := ParseDMS(v.GeoLat)
		if err != nil {
			return nil, fmt.Errorf("vertex coordinate: %w", err)
		}
		lon, err := ParseDMS(v.GeoLong)
		if err != nil {
			return nil, fmt.Errorf("vertex coordinate: %w", err)
		}
		cur := Vertex{Lat: lat, Lon: lon}

		if prev != nil && (v.CodeType == "CCA" || v.CodeType == "CWA") && v.GeoLatArc != "" {
			centerLat, errA := ParseDMS(v.GeoLatArc)
			centerLon, errB := ParseDMS(v.GeoLongArc)
			radius, errC := strconv.ParseFloat(v.ValRadiusArc, 64)
			if errA == nil && errB == nil && errC == nil {
				clockwise := v.CodeType == "CWA"
				verts = append(verts, rasterizeArc(*prev, cur, centerLat, centerLon, radius, clockwise)...)
			}
		}

		verts = append(verts, cur)
		prevCopy := cur
		prev = &prevCopy
	}
	for i := range verts {
		verts[i].Ordinal = i
	}
	return verts, nil
}
