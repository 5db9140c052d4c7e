package loader

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/mohammed-shakir/oceanwatch/internal/cache/keys"
	"github.com/mohammed-shakir/oceanwatch/internal/core/observability"
	"github.com/mohammed-shakir/oceanwatch/internal/heat"
	"github.com/mohammed-shakir/oceanwatch/internal/source"
)

type Progress struct {
	Batch   int  `json:"batch"`
	Batches int  `json:"batches"`
	Points  int  `json:"points"`
	Done    bool `json:"done"`
	Stopped bool `json:"stopped,omitempty"`
}

// PreloadHandle tracks the single background preload of a Service.
type PreloadHandle struct {
	cancel  context.CancelFunc
	done    chan struct{}
	batches int

	batch   atomic.Int64
	points  atomic.Int64
	types   atomic.Int64
	stopped atomic.Bool
}

func (h *PreloadHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the preload exits or ctx ends.
func (h *PreloadHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *PreloadHandle) Progress() Progress {
	p := Progress{
		Batch:   int(h.batch.Load()),
		Batches: h.batches,
		Points:  int(h.points.Load()),
		Stopped: h.stopped.Load(),
	}
	select {
	case <-h.done:
		p.Done = true
	default:
	}
	return p
}

// Stop cancels the preload and waits for it to exit.
func (h *PreloadHandle) Stop() {
	h.cancel()
	<-h.done
}

var errPreloadCanceled = errors.New("preload canceled")

func (s *Service) startPreload() {
	s.once.Do(func() {
		ctx, cancel := context.WithCancel(s.base)
		total, size := s.opts.TotalFiles, s.opts.BatchSize
		h := &PreloadHandle{
			cancel:  cancel,
			done:    make(chan struct{}),
			batches: (total + size - 1) / size,
		}
		s.preload.Store(h)
		go s.runPreload(ctx, h)
	})
}

func (s *Service) runPreload(ctx context.Context, h *PreloadHandle) {
	defer close(h.done)
	defer h.cancel()
	defer func() {
		if r := recover(); r != nil {
			h.stopped.Store(true)
			s.log.Error("background preload panicked", "panic", fmt.Sprint(r))
		}
	}()

	start := time.Now()
	s.log.Info("starting background data preloading", "files", s.opts.TotalFiles, "batches", h.batches)
	observability.SetPreloadProgress(0, h.batches, 0)

	err := s.preloadAll(ctx, h)
	switch {
	case errors.Is(err, errPreloadCanceled):
		h.stopped.Store(true)
		s.log.Info("background preload stopped", "batch", h.batch.Load(), "batches", h.batches)
	case err != nil:
		h.stopped.Store(true)
		s.log.Error("error in background data loading", "err", err)
	default:
		s.log.Info("background preloading complete",
			"points", h.points.Load(), "types", h.types.Load(), "took", time.Since(start))
	}
}

func (s *Service) preloadAll(ctx context.Context, h *PreloadHandle) error {
	known := make(map[string]struct{}, len(s.opts.KnownTypes))
	for _, t := range s.opts.KnownTypes {
		known[t] = struct{}{}
	}

	var all []heat.Point
	byType := make(map[string][]heat.Point, len(known))

	for b := range h.batches {
		if ctx.Err() != nil {
			return errPreloadCanceled
		}
		first := b*s.opts.BatchSize + 1
		last := min(first+s.opts.BatchSize-1, s.opts.TotalFiles)

		res, err := s.fetchRange(ctx, first, last, source.PriorityLow)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			// a canceled batch is incomplete; keep the previous snapshot
			return errPreloadCanceled
		}

		for _, entries := range res {
			for _, e := range entries {
				p, ok := heat.ToPoint(e)
				if !ok {
					continue
				}
				all = append(all, p)
				for _, t := range uniqueTypes(e) {
					if _, ok := known[t]; ok {
						byType[t] = append(byType[t], p)
					}
				}
			}
		}

		h.batch.Store(int64(b + 1))
		h.points.Store(int64(len(all)))
		h.types.Store(int64(len(byType)))
		observability.SetPreloadProgress(b+1, h.batches, len(all))

		if b%s.opts.SnapshotEvery == 0 || b == h.batches-1 {
			s.snapshot(ctx, all, byType)
			s.log.Info("background preloading progress",
				"percent", (b+1)*100/h.batches, "batch", b+1, "points", len(all))
		}
	}
	return nil
}

// snapshot publishes copies so later appends never touch cached slices.
func (s *Service) snapshot(ctx context.Context, all []heat.Point, byType map[string][]heat.Point) {
	if all == nil {
		all = []heat.Point{}
	}
	s.store.Set(ctx, keys.All, slices.Clone(all))
	for _, t := range s.opts.KnownTypes {
		if pts := byType[t]; len(pts) > 0 {
			s.store.Set(ctx, t, slices.Clone(pts))
		}
	}
}

// uniqueTypes lists an entry's categories once each.
func uniqueTypes(e heat.Entry) []string {
	ts := e.Types()
	if len(ts) < 2 {
		return ts
	}
	slices.Sort(ts)
	return slices.Compact(ts)
}
