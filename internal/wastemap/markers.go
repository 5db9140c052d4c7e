// Package wastemap serves the curated waste marker layer: a small fixed
// data set around the monitored target area plus filtering, nearest-marker
// lookup and synthetic grid points inside a boundary.
package wastemap

import (
	"time"

	"github.com/paulmach/orb"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var AllSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

type Marker struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Severity  Severity  `json:"severity"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Size      float64   `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// TargetBoundary is the closed ring, in lng/lat order, of the monitored area.
var TargetBoundary = orb.Ring{
	{-87.623357, 15.975562},
	{-87.621791, 15.975562},
	{-87.621791, 15.974811},
	{-87.623357, 15.974811},
	{-87.623357, 15.975562},
}

// Initial returns the built-in markers, all stamped with now.
func Initial(now time.Time) []Marker {
	base := []Marker{
		{ID: 1, Type: "plastic", Severity: SeverityHigh, Lat: 15.975562, Lng: -87.623357, Size: 25},
		{ID: 2, Type: "plastic", Severity: SeverityHigh, Lat: 15.975562, Lng: -87.621791, Size: 30},
		{ID: 3, Type: "industrial", Severity: SeverityMedium, Lat: 15.974811, Lng: -87.621791, Size: 15},
		{ID: 4, Type: "oil", Severity: SeverityLow, Lat: 15.974811, Lng: -87.623357, Size: 10},

		{ID: 5, Type: "plastic", Severity: SeverityHigh, Lat: 15.975000, Lng: -87.622500, Size: 28},
		{ID: 6, Type: "industrial", Severity: SeverityMedium, Lat: 15.975300, Lng: -87.622000, Size: 18},
		{ID: 7, Type: "chemical", Severity: SeverityHigh, Lat: 15.974900, Lng: -87.622800, Size: 22},
		{ID: 8, Type: "plastic", Severity: SeverityMedium, Lat: 15.975100, Lng: -87.623100, Size: 16},
		{ID: 9, Type: "oil", Severity: SeverityHigh, Lat: 15.974700, Lng: -87.622200, Size: 24},
		{ID: 10, Type: "plastic", Severity: SeverityHigh, Lat: 15.975800, Lng: -87.622600, Size: 27},

		{ID: 11, Type: "industrial", Severity: SeverityMedium, Lat: 35.0, Lng: -70.0, Size: 15},
		{ID: 12, Type: "oil", Severity: SeverityLow, Lat: 15.0, Lng: -90.0, Size: 5},
		{ID: 13, Type: "chemical", Severity: SeverityMedium, Lat: -10.0, Lng: 10.0, Size: 18},
	}
	for i := range base {
		base[i].Timestamp = now
	}
	return base
}
