// Package observability holds the service's Prometheus collectors and the
// small helpers the rest of the code uses to record into them.
package observability

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream"},
	)

	assetFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_fetch_total",
			Help: "GeoJSON asset fetches by priority and outcome.",
		},
		[]string{"priority", "outcome"},
	)

	loaderResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heatmap_loader_results_total",
			Help: "Loader calls by outcome (hit, preload_hit, fetched, early_exit, error).",
		},
		[]string{"outcome"},
	)

	loaderPoints = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "heatmap_loader_points",
			Help:    "Number of heat points returned by a fetching loader call.",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	preloadProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "preload_progress_ratio",
			Help: "Fraction of background preload batches completed.",
		},
	)

	preloadPoints = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "preload_points",
			Help: "Heat points accumulated by the background preloader.",
		},
	)

	cacheOpTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_op_total",
			Help: "Cache tier operations by op and result.",
		},
		[]string{"op", "result"},
	)

	cacheOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Duration of Redis operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"op"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heat_cache_lookups_total",
			Help: "Heat cache reads by tier and result.",
		},
		[]string{"tier", "result"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "User-visible notifications by variant.",
		},
		[]string{"variant"},
	)

	alertPublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_publish_total",
			Help: "Pollution alert publishes by result.",
		},
		[]string{"result"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal, httpRequestDurationSeconds, upstreamLatencySeconds,
		assetFetchTotal, loaderResults, loaderPoints, preloadProgress, preloadPoints,
		cacheOpTotal, cacheOpDuration, cacheLookups, notificationsTotal, alertPublishTotal,
	}
}

// Init registers every collector with reg. Registering into a registry that
// already holds them is a no-op, so tests may call it repeatedly.
func Init(reg prometheus.Registerer, enabled bool) {
	if !enabled || reg == nil {
		return
	}
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			panic(err)
		}
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(durationSeconds)
}

func IncAssetFetch(priority, outcome string) {
	assetFetchTotal.WithLabelValues(priority, outcome).Inc()
}

func IncLoaderResult(outcome string) {
	loaderResults.WithLabelValues(outcome).Inc()
}

func ObserveLoaderPoints(n int) {
	loaderPoints.Observe(float64(n))
}

func SetPreloadProgress(done, total int, points int) {
	if total > 0 {
		preloadProgress.Set(float64(done) / float64(total))
	}
	preloadPoints.Set(float64(points))
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	res := "ok"
	if err != nil {
		res = "error"
	}
	cacheOpTotal.WithLabelValues(op, res).Inc()
	cacheOpDuration.WithLabelValues(op).Observe(durationSeconds)
}

// ObserveCacheLookup counts a read against a cache tier ("memory", "redis").
func ObserveCacheLookup(tier string, hit bool) {
	res := "miss"
	if hit {
		res = "hit"
	}
	cacheLookups.WithLabelValues(tier, res).Inc()
}

func IncNotification(variant string) {
	if variant == "" {
		variant = "default"
	}
	notificationsTotal.WithLabelValues(variant).Inc()
}

func IncAlertPublish(err error) {
	if err != nil {
		alertPublishTotal.WithLabelValues("error").Inc()
		return
	}
	alertPublishTotal.WithLabelValues("ok").Inc()
}
