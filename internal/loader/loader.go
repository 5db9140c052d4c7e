// Package loader serves heat points progressively: a bounded high-priority
// batch answers the first request quickly, then a background preload walks
// the whole asset corpus and fills the cache for every known waste type.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mohammed-shakir/oceanwatch/internal/cache"
	"github.com/mohammed-shakir/oceanwatch/internal/cache/keys"
	"github.com/mohammed-shakir/oceanwatch/internal/core/observability"
	"github.com/mohammed-shakir/oceanwatch/internal/heat"
	"github.com/mohammed-shakir/oceanwatch/internal/logger"
	"github.com/mohammed-shakir/oceanwatch/internal/notify"
	"github.com/mohammed-shakir/oceanwatch/internal/source"
)

const (
	errTitle       = "Error loading map data"
	errDescription = "There was a problem loading the waste data. Please try again."
)

type Service struct {
	base     context.Context
	src      source.Source
	store    cache.Store
	notifier notify.Notifier
	opts     Options
	log      *slog.Logger

	once    sync.Once
	preload atomic.Pointer[PreloadHandle]
}

// New returns a loader bound to base; canceling base stops the preloader and
// fails loads that are still fetching.
func New(
	base context.Context,
	src source.Source,
	store cache.Store,
	n notify.Notifier,
	opts Options,
	log *slog.Logger,
) *Service {
	if n == nil {
		n = notify.Discard{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		base:     base,
		src:      src,
		store:    store,
		notifier: n,
		opts:     opts.withDefaults(),
		log:      log.With("component", "loader"),
	}
}

// Load returns the heat points for the selected waste types (empty selects
// everything). It never fails: problems are reported through the notifier
// and yield an empty result. The caller's slice is not modified.
func (s *Service) Load(ctx context.Context, selected []string) []heat.Point {
	sel := keys.NormalizeSelection(selected)
	key := keys.CacheKey(sel)
	ctx = logger.WithCacheKey(ctx, key)

	// The store may have been warmed from Redis before any fetch, so a hit
	// still has to make sure the preloader runs.
	if pts, ok := s.store.Get(ctx, key); ok {
		observability.IncLoaderResult("cached")
		s.log.DebugContext(ctx, "using cached heat data", "points", len(pts))
		s.startPreload()
		return pts
	}
	if len(sel) == 0 {
		if pts, ok := s.store.Get(ctx, keys.InitialPreload); ok {
			observability.IncLoaderResult("initial_preload")
			s.log.DebugContext(ctx, "using preloaded initial data", "points", len(pts))
			s.startPreload()
			return pts
		}
	}

	// fetches outlive the request but not the service
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(s.base, cancel)
	defer stop()

	start := time.Now()
	pts, files, err := s.loadInitial(fctx, sel)
	if err == nil && s.base.Err() != nil {
		err = fmt.Errorf("loader stopped: %w", s.base.Err())
	}
	if err != nil {
		observability.IncLoaderResult("error")
		s.log.ErrorContext(ctx, "loading heat data failed", "err", err)
		s.notifier.Notify(ctx, notify.Notification{
			Variant:     notify.VariantDestructive,
			Title:       errTitle,
			Description: errDescription,
		})
		return []heat.Point{}
	}

	s.store.Set(ctx, key, pts)
	s.startPreload()

	observability.IncLoaderResult("loaded")
	observability.ObserveLoaderPoints(len(pts))
	s.log.InfoContext(ctx, "loaded heat data for quick display",
		"points", len(pts), "files", files, "took", time.Since(start))
	return pts
}

func (s *Service) loadInitial(ctx context.Context, sel []string) ([]heat.Point, int, error) {
	all := []heat.Point{}
	files := 0
	for off := 0; off < s.opts.PriorityFiles; off += s.opts.ChunkSize {
		if err := ctx.Err(); err != nil {
			return nil, files, fmt.Errorf("initial batch at file %d: %w", off+1, err)
		}
		end := min(off+s.opts.ChunkSize, s.opts.PriorityFiles)
		res, err := s.fetchRange(ctx, off+1, end, source.PriorityHigh)
		if err != nil {
			return nil, files, err
		}
		if err := ctx.Err(); err != nil {
			return nil, files, fmt.Errorf("initial batch at file %d: %w", off+1, err)
		}
		for _, entries := range res {
			if entries == nil {
				continue
			}
			files++
			all = append(all, heat.Process(entries, sel)...)
		}
		if len(all) > s.opts.EarlyExitPoints && off > s.opts.MinChunkOffset {
			s.log.DebugContext(ctx, "initial batch early exit", "points", len(all), "files", files)
			break
		}
	}
	if len(sel) == 0 {
		if _, ok := s.store.Get(ctx, keys.InitialPreload); !ok {
			s.store.Set(ctx, keys.InitialPreload, all)
		}
	}
	return all, files, nil
}

// fetchRange fetches files from..to in parallel. A failed file leaves a nil
// slot; only a panicking source fails the whole range.
func (s *Service) fetchRange(ctx context.Context, from, to int, p source.Priority) ([][]heat.Entry, error) {
	if to < from {
		return nil, nil
	}
	out := make([][]heat.Entry, to-from+1)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		panicErr error
	)
	for n := from; n <= to; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					if panicErr == nil {
						panicErr = fmt.Errorf("fetch %s: panic: %v", source.FileName(n), r)
					}
					mu.Unlock()
				}
			}()
			entries, err := s.src.Fetch(ctx, n, p)
			if err != nil {
				s.log.DebugContext(ctx, "asset fetch failed", "file", source.FileName(n), "err", err)
				return
			}
			if entries == nil {
				entries = []heat.Entry{}
			}
			out[n-from] = entries
		}()
	}
	wg.Wait()
	return out, panicErr
}

// Preload returns the background preload handle, or nil before the first
// successful Load.
func (s *Service) Preload() *PreloadHandle {
	return s.preload.Load()
}

// Readiness reports whether the background preload has completed.
func (s *Service) Readiness() (bool, any) {
	h := s.preload.Load()
	if h == nil {
		return false, Progress{}
	}
	p := h.Progress()
	return p.Done && !p.Stopped, p
}

// Stop cancels the background preload, if running, and waits for it to exit.
func (s *Service) Stop() {
	if h := s.preload.Load(); h != nil {
		h.Stop()
	}
}
