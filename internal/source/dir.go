package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mohammed-shakir/oceanwatch/internal/core/observability"
	"github.com/mohammed-shakir/oceanwatch/internal/heat"
)

// DirSource reads assets from a file system, e.g. os.DirFS("public/geojson_files").
type DirSource struct {
	fsys fs.FS
}

func NewDir(fsys fs.FS) *DirSource { return &DirSource{fsys: fsys} }

// NewDirPath is NewDir over an on-disk directory.
func NewDirPath(dir string) (*DirSource, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("asset dir: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("asset dir %q is not a directory", dir)
	}
	return NewDir(os.DirFS(dir)), nil
}

func (s *DirSource) Fetch(ctx context.Context, n int, p Priority) ([]heat.Entry, error) {
	entries, err := s.read(ctx, n)
	observability.IncAssetFetch(string(p), outcome(err))
	return entries, err
}

func (s *DirSource) read(ctx context.Context, n int) ([]heat.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := fs.ReadFile(s.fsys, FileName(n))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", FileName(n), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileName(n), err)
	}
	entries, err := heat.DecodeEntries(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", FileName(n), err)
	}
	return entries, nil
}
