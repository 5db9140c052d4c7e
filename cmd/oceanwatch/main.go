package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mohammed-shakir/oceanwatch/internal/cache"
	"github.com/mohammed-shakir/oceanwatch/internal/cache/keys"
	"github.com/mohammed-shakir/oceanwatch/internal/cache/memstore"
	"github.com/mohammed-shakir/oceanwatch/internal/cache/redisstore"
	"github.com/mohammed-shakir/oceanwatch/internal/cache/tiered"
	"github.com/mohammed-shakir/oceanwatch/internal/core/config"
	"github.com/mohammed-shakir/oceanwatch/internal/core/httpclient"
	"github.com/mohammed-shakir/oceanwatch/internal/core/router"
	"github.com/mohammed-shakir/oceanwatch/internal/core/server"
	"github.com/mohammed-shakir/oceanwatch/internal/detect"
	"github.com/mohammed-shakir/oceanwatch/internal/heat"
	"github.com/mohammed-shakir/oceanwatch/internal/heatmap"
	"github.com/mohammed-shakir/oceanwatch/internal/loader"
	"github.com/mohammed-shakir/oceanwatch/internal/logger"
	h3mapper "github.com/mohammed-shakir/oceanwatch/internal/mapper/h3"
	"github.com/mohammed-shakir/oceanwatch/internal/metrics"
	"github.com/mohammed-shakir/oceanwatch/internal/monitor"
	"github.com/mohammed-shakir/oceanwatch/internal/notify"
	"github.com/mohammed-shakir/oceanwatch/internal/source"
	"github.com/mohammed-shakir/oceanwatch/internal/wastemap"
	"github.com/mohammed-shakir/oceanwatch/internal/weather"
	"github.com/mohammed-shakir/oceanwatch/pkg/alerts/kafka"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	addrFlag := flag.String("addr", "", "listen address (overrides ADDR)")
	assetDirFlag := flag.String("assets", "", "serve GeoJSON assets from this directory instead of ASSET_BASE_URL")
	flag.Parse()

	cfg := config.FromEnv()
	if *addrFlag != "" {
		cfg.Addr = strings.TrimSpace(*addrFlag)
	}
	if *assetDirFlag != "" {
		cfg.AssetDir = strings.TrimSpace(*assetDirFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "oceanwatch",
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)
	slog.SetDefault(appLog)

	appLog.Info("starting oceanwatch",
		"addr", cfg.Addr,
		"version", Version,
		"assets", assetLocation(cfg),
		"redis", cfg.Redis.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prov := metrics.Init(metrics.Config{
		Path: cfg.MetricsPath,
		Build: metrics.BuildInfo{
			Version:   firstNonEmpty(os.Getenv("BUILD_VERSION"), Version),
			Revision:  os.Getenv("BUILD_REVISION"),
			Branch:    os.Getenv("BUILD_BRANCH"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})

	outbound := httpclient.NewOutbound(cfg.OutboundTimeout)
	feed := notify.NewFeed(cfg.NotifyFeedSize, appLog)

	src, err := newSource(cfg, outbound)
	if err != nil {
		appLog.Error("asset source setup failed", "err", err)
		return 1
	}

	store, closeStore, err := newStore(ctx, cfg, appLog)
	if err != nil {
		appLog.Error("heat cache setup failed", "err", err)
		return 1
	}
	defer closeStore()

	svc := loader.New(ctx, src, store, feed, loader.OptionsFrom(cfg.Loader), appLog)
	defer svc.Stop()

	sessions, err := heatmap.NewSessions(heatmap.DefaultSessions, svc, feed, appLog)
	if err != nil {
		appLog.Error("heatmap sessions setup failed", "err", err)
		return 1
	}

	alertsCfg := kafka.FromEnv()
	pub, err := kafka.New(alertsCfg, kafka.Options{Logger: appLog, Register: prov.Registerer()})
	if err != nil {
		appLog.Error("alert publisher setup failed", "err", err)
		return 1
	}
	defer func() { _ = pub.Close() }()

	monOpts := monitor.Options{
		Interval: cfg.MonitorInterval,
		RealTime: cfg.MonitorRealtime,
		Logger:   appLog,
	}
	if pub.Enabled() {
		monOpts.Publisher = alertPublisher{pub: pub}
	}
	if cfg.MonitorSeed != 0 {
		monOpts.Rand = rand.New(rand.NewPCG(cfg.MonitorSeed, cfg.MonitorSeed))
	}
	mon := monitor.New(monOpts)

	deps := router.Deps{
		Logger:  appLog,
		Loader:  svc,
		Views:   sessions,
		Mapper:  h3mapper.New(),
		Feed:    feed,
		Monitor: mon,
		Markers: wastemap.Initial(timeNow()),
		Ready:   svc,

		CORSOrigins: cfg.CORSOrigins,
	}
	if prov.Enabled() {
		deps.Metrics = prov.Handler()
	}
	if cfg.WeatherAPIKey != "" {
		wc, err := weather.New(outbound, cfg.WeatherAPIURL, cfg.WeatherAPIKey, weather.Options{
			CacheSize: cfg.WeatherCacheN,
			CacheTTL:  cfg.WeatherCacheTTL,
			Notifier:  feed,
			Logger:    appLog,
		})
		if err != nil {
			appLog.Error("weather client setup failed", "err", err)
			return 1
		}
		deps.Weather = wc
	} else {
		appLog.Info("weather lookups disabled (WEATHER_API_KEY unset)")
	}
	if cfg.DetectAPIURL != "" {
		dc, err := detect.New(outbound, cfg.DetectAPIURL, appLog)
		if err != nil {
			appLog.Error("detect client setup failed", "err", err)
			return 1
		}
		deps.Detector = dc
	}

	go func() {
		if err := mon.Run(ctx); err != nil {
			appLog.Error("monitor stopped", "err", err)
		}
	}()

	// warm the unfiltered view; this also starts the background preloader
	go func() {
		pts := svc.Load(ctx, nil)
		appLog.Info("initial heat load done", "points", len(pts))
	}()

	if err := server.Run(ctx, cfg, appLog, router.New(deps)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("server exited", "err", err)
		return 1
	}
	appLog.Info("shutdown complete")
	return 0
}

func newSource(cfg config.Config, hc *http.Client) (source.Source, error) {
	if cfg.AssetDir != "" {
		return source.NewDirPath(cfg.AssetDir)
	}
	return source.NewHTTP(hc, cfg.AssetBaseURL)
}

// newStore returns the heat cache. With Redis enabled the memory tier is
// backed by Redis and pre-warmed from it; Redis being unreachable at startup
// is fatal so a misconfigured tier isn't silently skipped.
func newStore(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Store, func(), error) {
	local := memstore.New()
	if !cfg.Redis.Enabled {
		return local, func() {}, nil
	}
	rc, err := redisstore.New(ctx, cfg.Redis.Addr)
	if err != nil {
		return nil, nil, err
	}
	st := tiered.New(local, rc, tiered.Options{
		Prefix:    cfg.Redis.KeyPrefix,
		TTL:       cfg.Redis.TTL,
		OpTimeout: cfg.Redis.OpTimeout,
		Logger:    log,
	})
	warm := append([]string{keys.All, keys.InitialPreload}, heat.KnownTypes...)
	if n, err := st.Warm(ctx, warm); err != nil {
		log.Warn("heat cache warm failed", "err", err)
	} else {
		log.Info("heat cache warmed from redis", "keys", n)
	}
	return st, func() { _ = rc.Close() }, nil
}

func assetLocation(cfg config.Config) string {
	if cfg.AssetDir != "" {
		return cfg.AssetDir
	}
	return cfg.AssetBaseURL
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
