package flightpath

import "encoding/xml"

// The structs below mirror the KML 2.2 shapes plane-watch-acars-parser's
// tools/kmlexport/main.go marshals for output, reversed here into a
// decode path, with a LineString alternative added for GPS-trace input
// (spec.md §6.3) that the export-only original never needed.

type kmlDocument struct {
	XMLName   xml.Name     `xml:"kml"`
	Document  kmlDocument2 `xml:"Document"`
}

type kmlDocument2 struct {
	Name       string         `xml:"name"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name       string          `xml:"name"`
	Point      *kmlPoint       `xml:"Point"`
	LineString *kmlLineString  `xml:"LineString"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlLineString struct {
	Coordinates string `xml:"coordinates"`
}
