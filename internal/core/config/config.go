package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoaderCfg tunes the initial-batch loader and the background preloader.
type LoaderCfg struct {
	PriorityFiles   int
	ChunkSize       int
	EarlyExitPoints int
	MinChunkOffset  int
	TotalFiles      int
	BatchSize       int
	SnapshotEvery   int
}

type RedisCfg struct {
	Enabled   bool
	Addr      string
	KeyPrefix string
	TTL       time.Duration
	OpTimeout time.Duration
}

type Config struct {
	Addr            string
	LogLevel        string
	LogConsole      bool
	LogSampleN      int
	MetricsPath     string
	AssetBaseURL    string
	AssetDir        string
	OutboundTimeout time.Duration
	Loader          LoaderCfg
	Redis           RedisCfg
	NotifyFeedSize  int
	DetectAPIURL    string
	WeatherAPIURL   string
	WeatherAPIKey   string
	WeatherCacheN   int
	WeatherCacheTTL time.Duration
	MonitorInterval time.Duration
	MonitorRealtime bool
	MonitorSeed     uint64
	CORSOrigins     []string
}

func FromEnv() Config {
	chunk := getint("LOADER_CHUNK_SIZE", 10)
	if chunk <= 0 {
		chunk = 10
	}
	batch := getint("PRELOAD_BATCH_SIZE", 30)
	if batch <= 0 {
		batch = 30
	}
	snap := getint("PRELOAD_SNAPSHOT_EVERY", 10)
	if snap <= 0 {
		snap = 10
	}
	interval := getduration("MONITOR_INTERVAL", 10*time.Second)
	if interval < time.Second {
		interval = time.Second
	}

	return Config{
		Addr:            getenv("ADDR", ":8090"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogConsole:      getbool("LOG_CONSOLE", false),
		LogSampleN:      getint("LOG_SAMPLE_N", 0),
		MetricsPath:     getenv("METRICS_PATH", "/metrics"),
		AssetBaseURL:    strings.TrimRight(getenv("ASSET_BASE_URL", "http://localhost:5173"), "/"),
		AssetDir:        getenv("ASSET_DIR", ""),
		OutboundTimeout: getduration("OUTBOUND_TIMEOUT", 30*time.Second),
		Loader: LoaderCfg{
			PriorityFiles:   getint("LOADER_PRIORITY_FILES", 100),
			ChunkSize:       chunk,
			EarlyExitPoints: getint("LOADER_EARLY_EXIT_POINTS", 200),
			MinChunkOffset:  getint("LOADER_MIN_CHUNK_OFFSET", 50),
			TotalFiles:      getint("PRELOAD_TOTAL_FILES", 843),
			BatchSize:       batch,
			SnapshotEvery:   snap,
		},
		Redis: RedisCfg{
			Enabled:   getbool("REDIS_ENABLED", false),
			Addr:      getenv("REDIS_ADDR", "localhost:6379"),
			KeyPrefix: getenv("REDIS_KEY_PREFIX", "heat"),
			TTL:       getduration("CACHE_TTL", 6*time.Hour),
			OpTimeout: getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		},
		NotifyFeedSize:  getint("NOTIFY_FEED_SIZE", 50),
		DetectAPIURL:    strings.TrimRight(getenv("DETECT_API_URL", "http://localhost:8000"), "/"),
		WeatherAPIURL:   strings.TrimRight(getenv("WEATHER_API_URL", "https://api.openweathermap.org"), "/"),
		WeatherAPIKey:   getenv("WEATHER_API_KEY", ""),
		WeatherCacheN:   getint("WEATHER_CACHE_SIZE", 256),
		WeatherCacheTTL: getduration("WEATHER_CACHE_TTL", 10*time.Minute),
		MonitorInterval: interval,
		MonitorRealtime: getbool("MONITOR_REALTIME", true),
		MonitorSeed:     getuint64("MONITOR_SEED", 0),
		CORSOrigins:     getlist("CORS_ALLOWED_ORIGINS"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getlist(k string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(k), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getuint64(k string, def uint64) uint64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
