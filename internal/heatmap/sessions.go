package heatmap

import (
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mohammed-shakir/oceanwatch/internal/notify"
)

const (
	DefaultSessions = 1024
	// DefaultSession is used when a client sends no session id.
	DefaultSession = "default"
)

// Sessions keeps one View per client session; the least recently used are
// dropped once the limit is reached.
type Sessions struct {
	loader   Loader
	notifier notify.Notifier
	log      *slog.Logger

	mu    sync.Mutex
	views *lru.Cache[string, *View]
}

func NewSessions(size int, l Loader, n notify.Notifier, log *slog.Logger) (*Sessions, error) {
	if size <= 0 {
		size = DefaultSessions
	}
	c, err := lru.New[string, *View](size)
	if err != nil {
		return nil, err
	}
	return &Sessions{loader: l, notifier: n, log: log, views: c}, nil
}

func (s *Sessions) View(id string) *View {
	if id == "" {
		id = DefaultSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.views.Get(id); ok {
		return v
	}
	v := NewView(s.loader, s.notifier, s.log)
	s.views.Add(id, v)
	return v
}

func (s *Sessions) Len() int { return s.views.Len() }
