package heat

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestNormalize_RangeAndDefault(t *testing.T) {
	if got := Normalize(nil); got != DefaultIntensity {
		t.Fatalf("Normalize(nil)=%v want %v", got, DefaultIntensity)
	}
	if got := Normalize(fptr(math.NaN())); got != DefaultIntensity {
		t.Fatalf("Normalize(NaN)=%v want %v", got, DefaultIntensity)
	}
	for _, v := range []float64{0, 0.1, 1, 1.5, 2.5, 4.99, 5, 7, 1e9, math.Inf(1)} {
		got := Normalize(fptr(v))
		if got < MinIntensity || got > MaxIntensity {
			t.Fatalf("Normalize(%v)=%v outside [%v,%v]", v, got, MinIntensity, MaxIntensity)
		}
	}
	if got := Normalize(fptr(2.5)); got != 0.5 {
		t.Fatalf("Normalize(2.5)=%v want 0.5", got)
	}
	if got := Normalize(fptr(10)); got != 1 {
		t.Fatalf("Normalize(10)=%v want 1", got)
	}
}

func TestProcess_DropsOutOfBounds(t *testing.T) {
	entries := []Entry{
		{Latitude: 91, Longitude: 0, Type: "ocean_waste"},
		{Latitude: -90.5, Longitude: 0, Type: "ocean_waste"},
		{Latitude: 0, Longitude: 180.01, Type: "ocean_waste"},
		{Latitude: 0, Longitude: -181, Type: "ocean_waste"},
		{Latitude: math.NaN(), Longitude: 10, Type: "ocean_waste"},
		{Latitude: 10, Longitude: math.NaN(), Type: "ocean_waste"},
		{Latitude: 90, Longitude: -180, Type: "ocean_waste"},
	}
	got := Process(entries, nil)
	if len(got) != 1 {
		t.Fatalf("len=%d want 1: %v", len(got), got)
	}
	if got[0].Lat() != 90 || got[0].Lng() != -180 || got[0].Intensity() != DefaultIntensity {
		t.Fatalf("unexpected point %v", got[0])
	}
}

func TestProcess_EmptySelectionMatchesAll(t *testing.T) {
	entries := []Entry{
		{Latitude: 1, Longitude: 1, Type: "plastic_waste"},
		{Latitude: 2, Longitude: 2, Type: ""},
		{Latitude: 3, Longitude: 3, Type: "something_else"},
	}
	if got := Process(entries, []string{}); len(got) != 3 {
		t.Fatalf("len=%d want 3", len(got))
	}
}

func TestProcess_MultiTypeMatch(t *testing.T) {
	entries := []Entry{
		{Latitude: 1, Longitude: 1, Type: "plastic_waste,fishing_gear", Intensity: fptr(5)},
		{Latitude: 2, Longitude: 2, Type: " sewage_waste , fishing_gear"},
		{Latitude: 3, Longitude: 3, Type: ""},
	}
	got := Process(entries, []string{"plastic_waste"})
	if len(got) != 1 || got[0] != NewPoint(1, 1, 1) {
		t.Fatalf("got %v want single [1 1 1]", got)
	}
	got = Process(entries, []string{"fishing_gear"})
	if len(got) != 2 {
		t.Fatalf("fishing_gear matches=%d want 2", len(got))
	}
}

func TestDecodeEntries_ToleratesBadElements(t *testing.T) {
	body := []byte(`[
		{"latitude": 10.5, "longitude": 20.25, "intensity": 4, "type": "plastic_waste"},
		{"latitude": "bad", "longitude": 1, "type": "x"},
		{"longitude": 1, "type": "missing_lat"},
		42,
		{"latitude": -5, "longitude": 7, "intensity": null, "type": "ocean_waste"}
	]`)
	entries, err := DecodeEntries(body)
	if err != nil {
		t.Fatalf("DecodeEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries=%d want 3", len(entries))
	}
	pts := Process(entries, nil)
	if len(pts) != 2 {
		t.Fatalf("points=%d want 2 (missing latitude dropped)", len(pts))
	}
	if pts[0] != NewPoint(10.5, 20.25, 0.8) {
		t.Fatalf("first point=%v", pts[0])
	}
	if pts[1].Intensity() != DefaultIntensity {
		t.Fatalf("null intensity should normalize to default, got %v", pts[1].Intensity())
	}
}

func TestDecodeEntries_RejectsNonArray(t *testing.T) {
	if _, err := DecodeEntries([]byte(`{"type":"FeatureCollection"}`)); !errors.Is(err, ErrNotArray) {
		t.Fatalf("err=%v want ErrNotArray", err)
	}
	if _, err := DecodeEntries([]byte(`[{"latitude":1,`)); err == nil {
		t.Fatalf("expected error for truncated JSON")
	}
}

func TestPoint_JSONIsTriple(t *testing.T) {
	b, err := json.Marshal([]Point{NewPoint(1.5, -2, 0.3)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `[[1.5,-2,0.3]]` {
		t.Fatalf("json=%s", b)
	}
}
