package wastemap

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const day = 24 * time.Hour

// PeriodWindow maps "24h", "7d", "30d" and "90d" to a look-back window.
// Any other period is unbounded.
func PeriodWindow(period string) (time.Duration, bool) {
	switch period {
	case "24h":
		return day, true
	case "7d":
		return 7 * day, true
	case "30d":
		return 30 * day, true
	case "90d":
		return 90 * day, true
	default:
		return 0, false
	}
}

// Filter keeps markers of typ ("all" matches every type) whose severity is
// listed and whose timestamp falls inside period.
func Filter(markers []Marker, typ, period string, severities []Severity, now time.Time) []Marker {
	var threshold time.Time
	if w, ok := PeriodWindow(period); ok {
		threshold = now.Add(-w)
	}
	out := make([]Marker, 0, len(markers))
	for _, m := range markers {
		if typ != "all" && m.Type != typ {
			continue
		}
		if !slices.Contains(severities, m.Severity) {
			continue
		}
		if m.Timestamp.Before(threshold) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Fallback is what Closest returns for an empty marker set.
var Fallback = Marker{Type: "plastic", Severity: SeverityMedium, Size: 15}

// Closest returns the marker with the smallest great-circle distance to the
// point; ties go to the earlier marker.
func Closest(lng, lat float64, markers []Marker) Marker {
	if len(markers) == 0 {
		return Fallback
	}
	at := s2.LatLngFromDegrees(lat, lng)
	best := markers[0]
	bestDist := at.Distance(s2.LatLngFromDegrees(best.Lat, best.Lng))
	for _, m := range markers[1:] {
		if d := at.Distance(s2.LatLngFromDegrees(m.Lat, m.Lng)); d < bestDist {
			best, bestDist = m, d
		}
	}
	return best
}

func severityIntensity(s Severity) float64 {
	switch s {
	case SeverityHigh:
		return 0.9
	case SeverityMedium:
		return 0.5
	default:
		return 0.2
	}
}

// MaxGridPoints bounds how many points GridInBoundary will generate.
const MaxGridPoints = 10000

var ErrGridTooDense = fmt.Errorf("grid would exceed %d points", MaxGridPoints)

// GridSize is the number of points GridInBoundary generates for boundary at
// spacing, or 0 for a degenerate boundary or non-positive spacing. The count
// is computed in floating point so absurd spacings cannot overflow.
func GridSize(boundary orb.Ring, spacing float64) float64 {
	if len(boundary) < 4 || !(spacing > 0) {
		return 0
	}
	b := boundary.Bound()
	cols := math.Floor((b.Max.Lon()-b.Min.Lon())/spacing) + 1
	rows := math.Floor((b.Max.Lat()-b.Min.Lat())/spacing) + 1
	return cols * rows
}

// GridInBoundary spreads points spacing degrees apart over the boundary's
// bounding box. Each point inherits type, a damped size and an intensity
// from the closest marker. Boundaries with fewer than four vertices yield
// no points; grids above MaxGridPoints are refused with ErrGridTooDense.
func GridInBoundary(boundary orb.Ring, spacing float64, markers []Marker) ([]*geojson.Feature, error) {
	n := GridSize(boundary, spacing)
	if n == 0 {
		return []*geojson.Feature{}, nil
	}
	if n > MaxGridPoints {
		return nil, ErrGridTooDense
	}
	b := boundary.Bound()
	out := make([]*geojson.Feature, 0, int(n))
	for i := 0; ; i++ {
		lng := b.Min.Lon() + float64(i)*spacing
		if lng > b.Max.Lon() {
			break
		}
		for j := 0; ; j++ {
			lat := b.Min.Lat() + float64(j)*spacing
			if lat > b.Max.Lat() {
				break
			}
			c := Closest(lng, lat, markers)
			f := geojson.NewFeature(orb.Point{lng, lat})
			f.Properties["intensity"] = severityIntensity(c.Severity)
			f.Properties["size"] = c.Size * 0.8
			f.Properties["type"] = c.Type
			out = append(out, f)
		}
	}
	return out, nil
}
