// Package cache defines the heat point cache shared by the loader and the
// background preloader.
package cache

import (
	"context"

	"github.com/mohammed-shakir/oceanwatch/internal/heat"
)

// Store maps cache keys to heat point sequences. Entries are never evicted
// by the loader; a Set replaces the whole value (last write wins). Stored
// slices are shared with readers and must not be mutated after Set.
type Store interface {
	Get(ctx context.Context, key string) ([]heat.Point, bool)
	Set(ctx context.Context, key string, pts []heat.Point)
	Keys() []string
	Len() int
}
