// Package router mounts the HTTP API on chi: heat map data, markers, the
// monitor feed, notifications and the weather/detection proxies.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/oceanwatch/internal/core/health"
	"github.com/mohammed-shakir/oceanwatch/internal/core/middleware"
	"github.com/mohammed-shakir/oceanwatch/internal/core/observability"
	"github.com/mohammed-shakir/oceanwatch/internal/detect"
	"github.com/mohammed-shakir/oceanwatch/internal/heatmap"
	"github.com/mohammed-shakir/oceanwatch/internal/mapper"
	"github.com/mohammed-shakir/oceanwatch/internal/monitor"
	"github.com/mohammed-shakir/oceanwatch/internal/notify"
	"github.com/mohammed-shakir/oceanwatch/internal/wastemap"
	"github.com/mohammed-shakir/oceanwatch/internal/weather"
)

// Views hands out the per-client heat map view.
type Views interface {
	View(id string) *heatmap.View
}

type NotificationFeed interface {
	List() []notify.Notification
	Dismiss(id int64) bool
}

type WeatherLookup interface {
	ByCoordinates(ctx context.Context, lat, lng float64) (weather.Data, error)
}

type Detector interface {
	DetectImage(ctx context.Context, f detect.File, threshold float64) (detect.ImageResponse, error)
	ProcessMultiple(ctx context.Context, files []detect.File, threshold float64, fps int) (detect.MultipleImagesResponse, error)
	Videos(ctx context.Context) ([]detect.VideoInfo, error)
}

// Deps is everything the API serves from. Weather and Detector may be nil,
// in which case their routes answer 503.
type Deps struct {
	Logger   *slog.Logger
	Loader   heatmap.Loader
	Views    Views
	Mapper   mapper.Interface
	Feed     NotificationFeed
	Monitor  *monitor.Monitor
	Markers  []wastemap.Marker
	Weather  WeatherLookup
	Detector Detector
	Ready    health.ReadinessReporter
	Metrics  http.Handler
	Now      func() time.Time

	// CORSOrigins restricts cross-origin access; empty allows any origin.
	CORSOrigins []string
}

type api struct {
	Deps
	log *slog.Logger
}

func New(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	a := &api{Deps: d, log: d.Logger.With("component", "api")}

	r := chi.NewRouter()
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(instrument)

	r.Get("/healthz", health.Liveness())
	if d.Ready != nil {
		r.Get("/readyz", health.Readiness(d.Ready))
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/heatmap", a.heatmap)
		r.Get("/heatmap/geojson", a.heatmapGeoJSON)
		r.Get("/heatmap/cells", a.heatmapCells)

		r.Get("/notifications", a.listNotifications)
		r.Delete("/notifications/{id}", a.dismissNotification)

		r.Get("/markers", a.markers)
		r.Get("/markers/closest", a.closestMarker)
		r.Get("/markers/grid", a.markerGrid)

		r.Get("/monitor", a.monitorState)
		r.Post("/monitor/update", a.monitorUpdate)
		r.Post("/monitor/toggle", a.monitorToggle)
		r.Put("/monitor/interval", a.monitorInterval)
		r.Delete("/monitor/alerts/{index}", a.dismissAlert)
		r.Post("/monitor/activities", a.addActivity)

		r.Get("/weather", a.weather)

		r.Get("/videos", a.videos)
		r.Post("/detect/image", a.detectImage)
		r.Post("/detect/multiple", a.detectMultiple)
	})
	return r
}

// instrument records request count and latency by chi route pattern so
// path parameters don't explode label cardinality.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}
