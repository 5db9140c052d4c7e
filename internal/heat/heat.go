// Package heat defines the raw waste observations read from the GeoJSON
// assets and the normalized heat points handed to map renderers.
package heat

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const (
	MinIntensity     = 0.3
	MaxIntensity     = 1.0
	DefaultIntensity = 0.5

	// raw intensities are on a 0..5 scale
	intensityScale = 5.0
)

// KnownTypes are the waste categories the background preloader keeps
// individual cache entries for.
var KnownTypes = []string{
	"plastic_waste",
	"plastic_debris",
	"ocean_waste",
	"fishing_gear",
	"industrial_waste",
	"sewage_waste",
}

// Entry is one element of a waste asset file. Type may hold several
// comma-separated categories.
type Entry struct {
	Latitude  float64
	Longitude float64
	Intensity *float64
	Type      string
}

type wireEntry struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Intensity *float64 `json:"intensity"`
	Type      string   `json:"type"`
}

// UnmarshalJSON marks missing coordinates as NaN so Valid rejects them.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var w wireEntry
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("decode entry: %w", err)
	}
	e.Latitude, e.Longitude = math.NaN(), math.NaN()
	if w.Latitude != nil {
		e.Latitude = *w.Latitude
	}
	if w.Longitude != nil {
		e.Longitude = *w.Longitude
	}
	e.Intensity = w.Intensity
	e.Type = w.Type
	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	w := wireEntry{Intensity: e.Intensity, Type: e.Type}
	if !math.IsNaN(e.Latitude) {
		w.Latitude = &e.Latitude
	}
	if !math.IsNaN(e.Longitude) {
		w.Longitude = &e.Longitude
	}
	return json.Marshal(w)
}

// Valid reports whether the coordinates are finite and within WGS84 bounds.
func (e Entry) Valid() bool {
	lat, lng := e.Latitude, e.Longitude
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Types splits the entry's type field into trimmed, non-empty categories.
func (e Entry) Types() []string {
	return TypesOf(e.Type)
}

func TypesOf(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for t := range strings.SplitSeq(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Point is a [latitude, longitude, normalizedIntensity] triple.
type Point [3]float64

func NewPoint(lat, lng, intensity float64) Point { return Point{lat, lng, intensity} }

func (p Point) Lat() float64       { return p[0] }
func (p Point) Lng() float64       { return p[1] }
func (p Point) Intensity() float64 { return p[2] }

// Normalize maps a raw intensity onto [MinIntensity, MaxIntensity]; a missing
// or NaN intensity yields DefaultIntensity.
func Normalize(intensity *float64) float64 {
	if intensity == nil || math.IsNaN(*intensity) {
		return DefaultIntensity
	}
	return math.Max(MinIntensity, math.Min(MaxIntensity, *intensity/intensityScale))
}

// ToPoint converts a valid entry. ok is false for out-of-bounds coordinates.
func ToPoint(e Entry) (Point, bool) {
	if !e.Valid() {
		return Point{}, false
	}
	return Point{e.Latitude, e.Longitude, Normalize(e.Intensity)}, true
}

// Matches reports whether any of the entry's categories is selected. An empty
// selection matches every entry.
func Matches(e Entry, selected map[string]struct{}) bool {
	if len(selected) == 0 {
		return true
	}
	for _, t := range e.Types() {
		if _, ok := selected[t]; ok {
			return true
		}
	}
	return false
}

// Process filters entries by the selected types, drops invalid coordinates
// and normalizes intensities, preserving input order.
func Process(entries []Entry, selected []string) []Point {
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}
	out := make([]Point, 0, len(entries))
	for _, e := range entries {
		if !Matches(e, set) {
			continue
		}
		if p, ok := ToPoint(e); ok {
			out = append(out, p)
		}
	}
	return out
}
