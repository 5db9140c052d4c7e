// Package notify is the user-visible notification surface: a bounded feed of
// toasts that front-ends poll, mirrored into the service log.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mohammed-shakir/oceanwatch/internal/core/observability"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

const DefaultFeedSize = 50

type Notification struct {
	ID          int64     `json:"id"`
	Variant     Variant   `json:"variant"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, Notification) {}

// Feed keeps the most recent notifications in arrival order.
type Feed struct {
	mu    sync.Mutex
	max   int
	next  int64
	items []Notification
	log   *slog.Logger
	now   func() time.Time
}

var _ Notifier = (*Feed)(nil)

func NewFeed(max int, log *slog.Logger) *Feed {
	if max <= 0 {
		max = DefaultFeedSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Feed{max: max, log: log.With("component", "notify"), now: time.Now}
}

func (f *Feed) Notify(ctx context.Context, n Notification) {
	if n.Variant == "" {
		n.Variant = VariantDefault
	}
	f.mu.Lock()
	f.next++
	n.ID = f.next
	n.At = f.now().UTC()
	f.items = append(f.items, n)
	if over := len(f.items) - f.max; over > 0 {
		f.items = append(f.items[:0:0], f.items[over:]...)
	}
	f.mu.Unlock()

	observability.IncNotification(string(n.Variant))
	lvl := slog.LevelInfo
	if n.Variant == VariantDestructive {
		lvl = slog.LevelWarn
	}
	f.log.Log(ctx, lvl, "notification", "id", n.ID, "variant", string(n.Variant),
		"title", n.Title, "description", n.Description)
}

// List returns a copy of the feed, oldest first.
func (f *Feed) List() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Dismiss removes the notification with id and reports whether it existed.
func (f *Feed) Dismiss(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.items {
		if n.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}
