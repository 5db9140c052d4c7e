// Package source fetches numbered GeoJSON waste asset files
// (file1.geojson .. fileN.geojson) over HTTP or from a local directory.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/mohammed-shakir/oceanwatch/internal/heat"
)

// Priority is a hint for how a fetch should be scheduled upstream.
type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityLow  Priority = "low"
)

// ErrNotFound is returned when the numbered asset does not exist.
var ErrNotFound = errors.New("asset not found")

// Source returns the raw entries of asset file n (1-based).
type Source interface {
	Fetch(ctx context.Context, n int, p Priority) ([]heat.Entry, error)
}

// FileName is the asset's name under the geojson_files directory.
func FileName(n int) string {
	return fmt.Sprintf("file%d.geojson", n)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, heat.ErrNotArray):
		return "malformed"
	default:
		return "error"
	}
}
