package report

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ffdumont/navprofile/internal/profile"
)

// The structs below mirror plane-watch-acars-parser's
// tools/kmlexport/main.go marshal-side KML shapes directly, reused
// here for the corrected-profile output (spec.md §6.5) rather than
// waypoint export: one Placemark per corrected waypoint, synthetic
// transition points distinguished by a styleUrl.

type outputKML struct {
	XMLName   xml.Name      `xml:"kml"`
	Namespace string        `xml:"xmlns,attr"`
	Document  outputDoc     `xml:"Document"`
}

type outputDoc struct {
	Name       string          `xml:"name"`
	Styles     []outputStyle   `xml:"Style"`
	Placemarks []outputPlacemark `xml:"Placemark"`
}

type outputStyle struct {
	ID        string          `xml:"id,attr"`
	IconStyle outputIconStyle `xml:"IconStyle"`
}

type outputIconStyle struct {
	Scale float64   `xml:"scale,omitempty"`
	Icon  outputIcon `xml:"Icon"`
}

type outputIcon struct {
	Href string `xml:"href"`
}

type outputPlacemark struct {
	Name         string              `xml:"name"`
	StyleURL     string              `xml:"styleUrl,omitempty"`
	Point        outputPoint         `xml:"Point"`
	ExtendedData *outputExtendedData `xml:"ExtendedData,omitempty"`
}

type outputPoint struct {
	Coordinates string `xml:"coordinates"`
}

type outputExtendedData struct {
	Data []outputData `xml:"Data"`
}

type outputData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

const transitionStyleID = "transitionPoint"

// CorrectedProfileKML marshals a corrected flight path to KML,
// tagging synthetic climb/descent transition waypoints with a distinct
// style so they render differently from the original route points.
func CorrectedProfileKML(cfp profile.CorrectedFlightPath) ([]byte, error) {
	doc := outputKML{
		Namespace: "http://www.opengis.net/kml/2.2",
		Document: outputDoc{
			Name: "corrected flight profile",
			Styles: []outputStyle{{
				ID:        transitionStyleID,
				IconStyle: outputIconStyle{Scale: 1.2, Icon: outputIcon{Href: "http://maps.google.com/mapfiles/kml/shapes/triangle.png"}},
			}},
		},
	}

	for _, wp := range cfp.Waypoints {
		pm := outputPlacemark{
			Name:  wp.ID,
			Point: outputPoint{Coordinates: fmt.Sprintf("%.6f,%.6f,%.1f", wp.Lon, wp.Lat, wp.AltitudeFt/3.28084)},
			ExtendedData: &outputExtendedData{Data: []outputData{
				{Name: "altitude_ft", Value: fmt.Sprintf("%.0f", wp.AltitudeFt)},
			}},
		}
		if isSyntheticTransition(wp.ID) {
			pm.StyleURL = "#" + transitionStyleID
		}
		doc.Document.Placemarks = append(doc.Document.Placemarks, pm)
	}

	xmlData, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal corrected profile KML: %w", err)
	}
	return append([]byte(xml.Header), xmlData...), nil
}

func isSyntheticTransition(id string) bool {
	return strings.HasPrefix(id, "Climb_") || strings.HasPrefix(id, "Descent_")
}
