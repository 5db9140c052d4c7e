// Package heatmap holds the per-session heatmap view state and renders heat
// points for map clients.
package heatmap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mohammed-shakir/oceanwatch/internal/cache/keys"
	"github.com/mohammed-shakir/oceanwatch/internal/heat"
	"github.com/mohammed-shakir/oceanwatch/internal/notify"
)

// significantChange is the point count delta that is announced to the user.
const significantChange = 100

type Loader interface {
	Load(ctx context.Context, selected []string) []heat.Point
}

type Result struct {
	Key    string       `json:"key"`
	Points []heat.Point `json:"points"`
	// Skipped is set when the view was already refreshing; Points is then the
	// current view data.
	Skipped bool `json:"skipped,omitempty"`
}

// View tracks what one map client is showing so repeated identical requests
// skip the loader and significant data changes are announced.
type View struct {
	loader   Loader
	notifier notify.Notifier
	log      *slog.Logger

	mu          sync.Mutex
	loading     bool
	prevKey     string
	data        []heat.Point
	initialDone bool
}

func NewView(l Loader, n notify.Notifier, log *slog.Logger) *View {
	if n == nil {
		n = notify.Discard{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &View{loader: l, notifier: n, log: log.With("component", "heatmap_view")}
}

// Refresh loads the points for types unless the selection is unchanged and
// already showing data. An empty load keeps the previous view data.
func (v *View) Refresh(ctx context.Context, types []string) Result {
	key := keys.CacheKey(types)

	v.mu.Lock()
	if v.loading {
		cur := v.data
		v.mu.Unlock()
		return Result{Key: key, Points: nonNil(cur), Skipped: true}
	}
	if key == v.prevKey && len(v.data) > 0 {
		cur := v.data
		v.mu.Unlock()
		return Result{Key: key, Points: cur}
	}
	v.prevKey = key
	v.loading = true
	v.mu.Unlock()

	data := v.loader.Load(ctx, types)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false

	switch {
	case len(data) > 0:
		prev := len(v.data)
		v.data = data
		if !v.initialDone {
			v.initialDone = true
			break
		}
		if diff := len(data) - prev; diff > significantChange || -diff > significantChange {
			v.notifier.Notify(ctx, notify.Notification{
				Title:       "Map Updated",
				Description: fmt.Sprintf("Loaded %d waste data points. Zoom in to explore.", len(data)),
			})
		}
	case len(keys.NormalizeSelection(types)) > 0:
		v.notifier.Notify(ctx, notify.Notification{
			Title:       "No Data Found",
			Description: "No waste data found for the selected filters",
		})
	}
	v.log.DebugContext(ctx, "heatmap refreshed", "key", key, "points", len(data))
	return Result{Key: key, Points: nonNil(data)}
}

func nonNil(p []heat.Point) []heat.Point {
	if p == nil {
		return []heat.Point{}
	}
	return p
}
