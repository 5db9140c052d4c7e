package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/mohammed-shakir/oceanwatch/internal/core/observability"
	"github.com/mohammed-shakir/oceanwatch/internal/heat"
)

// max asset body size read into memory
const maxAssetBytes = 32 << 20

// HTTPSource serves GET {base}/geojson_files/file{N}.geojson.
type HTTPSource struct {
	client *http.Client
	base   *url.URL
	now    func() time.Time
}

func NewHTTP(client *http.Client, baseURL string) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse asset base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported asset url scheme %q", u.Scheme)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{client: client, base: u, now: time.Now}, nil
}

// URL returns the absolute URL of asset n.
func (s *HTTPSource) URL(n int) string {
	u := *s.base
	u.Path = path.Join("/", s.base.Path, "geojson_files", FileName(n))
	u.RawQuery = ""
	return u.String()
}

func (s *HTTPSource) Fetch(ctx context.Context, n int, p Priority) ([]heat.Entry, error) {
	entries, err := s.fetch(ctx, n, p)
	observability.IncAssetFetch(string(p), outcome(err))
	return entries, err
}

func (s *HTTPSource) fetch(ctx context.Context, n int, p Priority) ([]heat.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(n), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/geo+json")
	if p == PriorityHigh {
		req.Header.Set("Priority", "u=1")
	} else {
		req.Header.Set("Priority", "u=5")
	}

	start := s.now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", FileName(n), err)
	}
	defer func() { _ = resp.Body.Close() }()
	observability.ObserveUpstreamLatency("assets", time.Since(start).Seconds())

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("get %s: %w", FileName(n), ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("get %s: upstream status %d: %s", FileName(n), resp.StatusCode, string(b))
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileName(n), err)
	}
	entries, err := heat.DecodeEntries(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", FileName(n), err)
	}
	return entries, nil
}
