package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	h3mapper "github.com/mohammed-shakir/oceanwatch/internal/mapper/h3"
	"github.com/mohammed-shakir/oceanwatch/internal/wastemap"
)

// parseTypes reads the waste type selection from ?types=a,b (repeatable).
// Normalization happens in the loader.
func parseTypes(q url.Values) []string {
	var out []string
	for _, v := range q["types"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

func parseRes(q url.Values) (int, error) {
	raw := strings.TrimSpace(q.Get("res"))
	if raw == "" {
		return h3mapper.DefaultRes, nil
	}
	res, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid res: %w", err)
	}
	if res < 0 || res > 15 {
		return 0, fmt.Errorf("res must be within [0,15], got %d", res)
	}
	return res, nil
}

// parseParent reads the optional ?parent= rollup resolution. It must not be
// finer than res; ok is false when the parameter is absent.
func parseParent(q url.Values, res int) (parent int, ok bool, err error) {
	raw := strings.TrimSpace(q.Get("parent"))
	if raw == "" {
		return 0, false, nil
	}
	parent, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid parent: %w", err)
	}
	if parent < 0 || parent > res {
		return 0, false, fmt.Errorf("parent must be within [0,%d], got %d", res, parent)
	}
	return parent, true, nil
}

// parseSeverities defaults to every severity when the parameter is absent.
func parseSeverities(q url.Values) ([]wastemap.Severity, error) {
	if _, ok := q["severity"]; !ok {
		return slices.Clone(wastemap.AllSeverities), nil
	}
	var out []wastemap.Severity
	for _, s := range strings.Split(q.Get("severity"), ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		sev := wastemap.Severity(s)
		if !slices.Contains(wastemap.AllSeverities, sev) {
			return nil, fmt.Errorf("unknown severity %q", s)
		}
		if !slices.Contains(out, sev) {
			out = append(out, sev)
		}
	}
	return out, nil
}

func parsePeriod(q url.Values) (string, error) {
	p := strings.TrimSpace(q.Get("period"))
	if p == "" || p == "all" {
		return "all", nil
	}
	if _, ok := wastemap.PeriodWindow(p); !ok {
		return "", fmt.Errorf("unknown period %q (want 24h, 7d, 30d, 90d or all)", p)
	}
	return p, nil
}

func parseLatLng(q url.Values) (lat, lng float64, err error) {
	if lat, err = parseCoord(q.Get("lat"), "lat", 90); err != nil {
		return 0, 0, err
	}
	if lng, err = parseCoord(q.Get("lng"), "lng", 180); err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

func parseCoord(raw, name string, limit float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("missing required parameter: %s", name)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if f != f || f < -limit || f > limit {
		return 0, fmt.Errorf("%s must be within [%v,%v]", name, -limit, limit)
	}
	return f, nil
}

func parsePositiveFloat(q url.Values, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || !(f > 0) {
		return 0, fmt.Errorf("%s must be a positive number", name)
	}
	return f, nil
}

// parseOptionalFloat returns def when the field is absent.
func parseOptionalFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || f > 1 {
		return 0, fmt.Errorf("%s must be within [0,1]", name)
	}
	return f, nil
}

func parseOptionalInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

var errNotConfigured = errors.New("not configured")

// clientID picks the heat map view for the request: X-Client-ID header,
// then ?client=, else the shared default view.
func clientID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Client-ID")); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("client"))
}
