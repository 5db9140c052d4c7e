// Package tiered layers the process-local heat cache over an optional shared
// Redis tier. Reads go to memory first and fall through to Redis; writes go
// to both. Redis failures are logged and the store keeps serving from memory.
package tiered

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mohammed-shakir/oceanwatch/internal/cache"
	"github.com/mohammed-shakir/oceanwatch/internal/cache/keys"
	"github.com/mohammed-shakir/oceanwatch/internal/cache/memstore"
	"github.com/mohammed-shakir/oceanwatch/internal/core/observability"
	"github.com/mohammed-shakir/oceanwatch/internal/heat"
)

// Remote is the subset of redisstore.Client the tier needs.
type Remote interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	MGet(ctx context.Context, keys []string) (map[string][]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type Options struct {
	Prefix    string
	TTL       time.Duration
	OpTimeout time.Duration
	Logger    *slog.Logger
}

type Store struct {
	local  *memstore.Store
	remote Remote
	opts   Options
	log    *slog.Logger
}

var _ cache.Store = (*Store)(nil)

// New returns a tiered store. A nil remote yields a memory-only store.
func New(local *memstore.Store, remote Remote, opts Options) *Store {
	if local == nil {
		local = memstore.New()
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 250 * time.Millisecond
	}
	if opts.Prefix == "" {
		opts.Prefix = "heat"
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Store{local: local, remote: remote, opts: opts, log: log.With("component", "heat_cache")}
}

func (s *Store) Get(ctx context.Context, key string) ([]heat.Point, bool) {
	if pts, ok := s.local.Get(ctx, key); ok {
		observability.ObserveCacheLookup("memory", true)
		return pts, true
	}
	observability.ObserveCacheLookup("memory", false)
	if s.remote == nil {
		return nil, false
	}

	rctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()
	b, ok, err := s.remote.Get(rctx, keys.RedisKey(s.opts.Prefix, key))
	if err != nil {
		s.log.Warn("redis read failed; serving from memory only", "key", key, "err", err)
		return nil, false
	}
	observability.ObserveCacheLookup("redis", ok)
	if !ok {
		return nil, false
	}
	pts, err := decode(b)
	if err != nil {
		s.log.Warn("discarding undecodable redis value", "key", key, "err", err)
		return nil, false
	}
	// a concurrent local write wins over the shared copy
	s.local.SetIfAbsent(ctx, key, pts)
	return s.local.Get(ctx, key)
}

func (s *Store) Set(ctx context.Context, key string, pts []heat.Point) {
	s.local.Set(ctx, key, pts)
	if s.remote == nil {
		return
	}
	b, err := json.Marshal(pts)
	if err != nil {
		s.log.Warn("encode heat points", "key", key, "err", err)
		return
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.OpTimeout)
	defer cancel()
	if err := s.remote.Set(wctx, keys.RedisKey(s.opts.Prefix, key), b, s.opts.TTL); err != nil {
		s.log.Warn("redis write failed; value kept in memory", "key", key, "points", len(pts), "err", err)
	}
}

// Warm copies any of the given keys found in Redis into memory and returns
// how many were loaded.
func (s *Store) Warm(ctx context.Context, cacheKeys []string) (int, error) {
	if s.remote == nil || len(cacheKeys) == 0 {
		return 0, nil
	}
	rkeys := make([]string, len(cacheKeys))
	back := make(map[string]string, len(cacheKeys))
	for i, k := range cacheKeys {
		rkeys[i] = keys.RedisKey(s.opts.Prefix, k)
		back[rkeys[i]] = k
	}
	rctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()
	vals, err := s.remote.MGet(rctx, rkeys)
	if err != nil {
		return 0, err
	}
	n := 0
	for rk, b := range vals {
		pts, err := decode(b)
		if err != nil {
			s.log.Warn("skipping undecodable redis value", "key", back[rk], "err", err)
			continue
		}
		if s.local.SetIfAbsent(ctx, back[rk], pts) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Keys() []string { return s.local.Keys() }

func (s *Store) Len() int { return s.local.Len() }

func decode(b []byte) ([]heat.Point, error) {
	var pts []heat.Point
	if err := json.Unmarshal(b, &pts); err != nil {
		return nil, err
	}
	if pts == nil {
		pts = []heat.Point{}
	}
	return pts, nil
}
