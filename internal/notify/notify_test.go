package notify

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestFeed_BoundedAndOrdered(t *testing.T) {
	f := NewFeed(3, nil)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		f.Notify(ctx, Notification{Title: title})
	}
	got := f.List()
	if len(got) != 3 {
		t.Fatalf("len=%d want 3", len(got))
	}
	if got[0].Title != "c" || got[2].Title != "e" {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[0].ID != 3 || got[2].ID != 5 {
		t.Fatalf("ids should keep increasing across trims: %+v", got)
	}
	if got[0].Variant != VariantDefault || got[0].At.IsZero() {
		t.Fatalf("defaults not applied: %+v", got[0])
	}
}

func TestFeed_Dismiss(t *testing.T) {
	f := NewFeed(0, nil)
	ctx := context.Background()
	f.Notify(ctx, Notification{Title: "one"})
	f.Notify(ctx, Notification{Title: "two"})

	if !f.Dismiss(1) {
		t.Fatalf("Dismiss(1) should succeed")
	}
	if f.Dismiss(1) {
		t.Fatalf("second Dismiss(1) should report false")
	}
	if got := f.List(); len(got) != 1 || got[0].Title != "two" {
		t.Fatalf("after dismiss: %+v", got)
	}
}

func TestFeed_ListIsCopy(t *testing.T) {
	f := NewFeed(5, nil)
	f.Notify(context.Background(), Notification{Title: "x"})
	l := f.List()
	l[0].Title = "mutated"
	if f.List()[0].Title != "x" {
		t.Fatalf("List must return a copy")
	}
}

func TestFeed_LogsDestructiveAtWarn(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	log := slog.New(slog.NewTextHandler(&lockedWriter{w: &buf, mu: &mu}, nil))
	f := NewFeed(5, log)
	f.Notify(context.Background(), Notification{
		Variant:     VariantDestructive,
		Title:       "Error loading map data",
		Description: "There was a problem loading the waste data. Please try again.",
	})
	mu.Lock()
	out := buf.String()
	mu.Unlock()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, `title="Error loading map data"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
