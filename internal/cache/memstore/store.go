// Package memstore is the process-local cache tier.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/mohammed-shakir/oceanwatch/internal/cache"
	"github.com/mohammed-shakir/oceanwatch/internal/heat"
)

type Store struct {
	mu sync.RWMutex
	m  map[string][]heat.Point
}

var _ cache.Store = (*Store)(nil)

func New() *Store {
	return &Store{m: make(map[string][]heat.Point)}
}

func (s *Store) Get(_ context.Context, key string) ([]heat.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pts, ok := s.m[key]
	return pts, ok
}

func (s *Store) Set(_ context.Context, key string, pts []heat.Point) {
	if pts == nil {
		pts = []heat.Point{}
	}
	s.mu.Lock()
	s.m[key] = pts
	s.mu.Unlock()
}

// SetIfAbsent stores pts only when key is not cached yet and reports whether
// it did.
func (s *Store) SetIfAbsent(_ context.Context, key string, pts []heat.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[key]; ok {
		return false
	}
	if pts == nil {
		pts = []heat.Point{}
	}
	s.m[key] = pts
	return true
}

func (s *Store) Keys() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
