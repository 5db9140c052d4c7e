package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	l := cfg.Loader
	if l.PriorityFiles != 100 || l.ChunkSize != 10 || l.EarlyExitPoints != 200 || l.MinChunkOffset != 50 {
		t.Fatalf("unexpected loader defaults: %+v", l)
	}
	if l.TotalFiles != 843 || l.BatchSize != 30 || l.SnapshotEvery != 10 {
		t.Fatalf("unexpected preload defaults: %+v", l)
	}
	if cfg.Redis.Enabled {
		t.Fatalf("redis tier must be off by default")
	}
	if cfg.MonitorInterval != 10*time.Second || !cfg.MonitorRealtime {
		t.Fatalf("unexpected monitor defaults: %v %v", cfg.MonitorInterval, cfg.MonitorRealtime)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LOADER_PRIORITY_FILES", "40")
	t.Setenv("LOADER_CHUNK_SIZE", "0")
	t.Setenv("PRELOAD_BATCH_SIZE", "12")
	t.Setenv("REDIS_ENABLED", "yes")
	t.Setenv("ASSET_BASE_URL", "http://assets.local/")
	t.Setenv("MONITOR_INTERVAL", "200ms")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg := FromEnv()
	if cfg.Loader.PriorityFiles != 40 {
		t.Fatalf("PriorityFiles=%d want 40", cfg.Loader.PriorityFiles)
	}
	if cfg.Loader.ChunkSize != 10 {
		t.Fatalf("non-positive chunk size must fall back to default, got %d", cfg.Loader.ChunkSize)
	}
	if cfg.Loader.BatchSize != 12 {
		t.Fatalf("BatchSize=%d want 12", cfg.Loader.BatchSize)
	}
	if !cfg.Redis.Enabled {
		t.Fatalf("REDIS_ENABLED=yes should enable redis")
	}
	if cfg.AssetBaseURL != "http://assets.local" {
		t.Fatalf("AssetBaseURL=%q", cfg.AssetBaseURL)
	}
	if cfg.MonitorInterval != time.Second {
		t.Fatalf("MonitorInterval=%v want clamp to 1s", cfg.MonitorInterval)
	}
	if cfg.Redis.TTL != 6*time.Hour {
		t.Fatalf("bad duration should keep default, got %v", cfg.Redis.TTL)
	}
}

func TestFromEnv_CORSOrigins(t *testing.T) {
	if got := FromEnv().CORSOrigins; len(got) != 0 {
		t.Fatalf("default origins=%v want none", got)
	}
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://map.example.org, ,http://localhost:5173 ")
	got := FromEnv().CORSOrigins
	if len(got) != 2 || got[0] != "https://map.example.org" || got[1] != "http://localhost:5173" {
		t.Fatalf("origins=%q", got)
	}
}
