package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohammed-shakir/oceanwatch/internal/notify"
)

const owmBody = `{
  "name": "Roatán",
  "main": {"temp": 27.6, "humidity": 78},
  "weather": [{"id": 801, "description": "few clouds", "icon": "02d"}],
  "wind": {"speed": 6.3},
  "clouds": {"all": 20}
}`

type recorder struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (r *recorder) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	r.got = append(r.got, n)
	r.mu.Unlock()
}

func fixedNow() time.Time { return time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC) }

func TestByCoordinates_MapsResponseAndCaches(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("path=%s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") != "15.9755" || q.Get("lon") != "-87.6233" || q.Get("appid") != "k" || q.Get("units") != "metric" {
			t.Errorf("query=%v", q)
		}
		_, _ = w.Write([]byte(owmBody))
	}))
	defer srv.Close()

	c, err := New(srv.Client(), srv.URL, "k", Options{Now: fixedNow})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d, err := c.ByCoordinates(context.Background(), 15.9755, -87.6233)
	if err != nil {
		t.Fatalf("ByCoordinates: %v", err)
	}
	want := Data{
		Location: "Roatán", Temperature: 28, Description: "few clouds", Humidity: 78,
		WindSpeed: 6.3, Icon: "02d", UVIndex: 9, WaveHeight: 1.3,
		HighTide: "14:30", LowTide: "20:30",
	}
	if d != want {
		t.Fatalf("got %+v\nwant %+v", d, want)
	}

	// same point after rounding to two decimals
	if _, err := c.ByCoordinates(context.Background(), 15.9751, -87.6229); err != nil {
		t.Fatalf("cached lookup: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("upstream calls=%d want 1", calls.Load())
	}
}

func TestByCoordinates_FailureNotifies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := &recorder{}
	c, err := New(srv.Client(), srv.URL, "bad", Options{Notifier: n})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.ByCoordinates(context.Background(), 1, 2)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err=%v want ErrUnavailable", err)
	}
	if len(n.got) != 1 || n.got[0].Variant != notify.VariantDestructive || n.got[0].Description != "Unable to load weather data" {
		t.Fatalf("notifications=%+v", n.got)
	}
}

func TestByCoordinates_InvalidCoordinates(t *testing.T) {
	c, err := New(nil, "https://api.openweathermap.org", "k", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.ByCoordinates(context.Background(), 91, 0); !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("err=%v", err)
	}
}

func TestEstimates(t *testing.T) {
	cases := []struct {
		id     int
		clouds float64
		want   int
	}{
		{800, 0, 10},
		{804, 100, 5},
		{500, 40, 3},
		{200, 100, 1},
		{801, 10, 10}, // 9.5 rounds up
	}
	for _, tc := range cases {
		if got := EstimateUVIndex(tc.id, tc.clouds); got != tc.want {
			t.Fatalf("UV(%d,%v)=%d want %d", tc.id, tc.clouds, got, tc.want)
		}
	}
	if got := EstimateWaveHeight(7.4); got != 1.5 {
		t.Fatalf("wave=%v want 1.5", got)
	}
	now := fixedNow()
	if TideTime(now, true) != "14:30" || TideTime(now, false) != "20:30" {
		t.Fatalf("tides %s/%s", TideTime(now, true), TideTime(now, false))
	}
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	if _, err := New(nil, "ftp://weather", "k", Options{}); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}
