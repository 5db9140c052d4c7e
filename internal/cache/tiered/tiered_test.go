package tiered

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/mohammed-shakir/oceanwatch/internal/cache/keys"
	"github.com/mohammed-shakir/oceanwatch/internal/cache/memstore"
	"github.com/mohammed-shakir/oceanwatch/internal/cache/redisstore"
	"github.com/mohammed-shakir/oceanwatch/internal/heat"
)

func newRedis(t *testing.T) (*redisstore.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rc, err := redisstore.New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("redisstore.New: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func samplePoints() []heat.Point {
	return []heat.Point{heat.NewPoint(10, 20, 0.5), heat.NewPoint(-5, 100, 1)}
}

func TestStore_WriteThroughAndReadThrough(t *testing.T) {
	ctx := context.Background()
	rc, mr := newRedis(t)

	a := New(memstore.New(), rc, Options{Prefix: "heat", TTL: time.Hour})
	a.Set(ctx, "plastic_waste", samplePoints())

	if !mr.Exists(keys.RedisKey("heat", "plastic_waste")) {
		t.Fatalf("value not written through to redis; keys=%v", mr.Keys())
	}
	if ttl := mr.TTL(keys.RedisKey("heat", "plastic_waste")); ttl != time.Hour {
		t.Fatalf("ttl=%v want 1h", ttl)
	}

	// a second process with an empty memory tier reads through
	b := New(memstore.New(), rc, Options{Prefix: "heat", TTL: time.Hour})
	got, ok := b.Get(ctx, "plastic_waste")
	if !ok || len(got) != 2 || got[1] != heat.NewPoint(-5, 100, 1) {
		t.Fatalf("read-through got %v,%v", got, ok)
	}
	if b.Len() != 1 {
		t.Fatalf("read-through should promote into memory, Len=%d", b.Len())
	}
}

func TestStore_RedisDownDegradesToMemory(t *testing.T) {
	ctx := context.Background()
	rc, mr := newRedis(t)
	s := New(memstore.New(), rc, Options{OpTimeout: 100 * time.Millisecond})

	mr.Close()

	s.Set(ctx, "all", samplePoints())
	got, ok := s.Get(ctx, "all")
	if !ok || len(got) != 2 {
		t.Fatalf("memory tier should still serve, got %v,%v", got, ok)
	}
	if _, ok := s.Get(ctx, "missing"); ok {
		t.Fatalf("miss with redis down should be a plain miss")
	}
}

func TestStore_UndecodableRemoteValueIsMiss(t *testing.T) {
	ctx := context.Background()
	rc, mr := newRedis(t)
	if err := mr.Set(keys.RedisKey("heat", "all"), "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := New(memstore.New(), rc, Options{})
	if _, ok := s.Get(ctx, "all"); ok {
		t.Fatalf("corrupt redis value must not be served")
	}
}

func TestStore_Warm(t *testing.T) {
	ctx := context.Background()
	rc, _ := newRedis(t)

	seed := New(memstore.New(), rc, Options{TTL: time.Minute})
	seed.Set(ctx, keys.All, samplePoints())
	seed.Set(ctx, keys.InitialPreload, samplePoints()[:1])

	fresh := New(memstore.New(), rc, Options{})
	n, err := fresh.Warm(ctx, []string{keys.All, keys.InitialPreload, "sewage_waste"})
	if err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if n != 2 || fresh.Len() != 2 {
		t.Fatalf("Warm loaded %d (Len %d), want 2", n, fresh.Len())
	}
	if got, _ := fresh.Get(ctx, keys.InitialPreload); len(got) != 1 {
		t.Fatalf("warmed initial_preload = %v", got)
	}
}

func TestStore_MemoryOnly(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil, Options{})
	if _, ok := s.Get(ctx, "all"); ok {
		t.Fatalf("empty store hit")
	}
	s.Set(ctx, "all", nil)
	if got, ok := s.Get(ctx, "all"); !ok || len(got) != 0 {
		t.Fatalf("empty result should be cached, got %v,%v", got, ok)
	}
	if n, err := s.Warm(ctx, []string{"all"}); n != 0 || err != nil {
		t.Fatalf("Warm without remote = %d,%v", n, err)
	}
}
