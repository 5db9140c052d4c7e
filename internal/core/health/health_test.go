package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLiveness_Handler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	Liveness()(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want 200", rr.Code)
	}
	ct := rr.Header().Get("Content-Type")
	if !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content-type=%q want text/plain", ct)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "ok" {
		t.Fatalf("body=%q want ok", got)
	}
}

type fakeReporter struct {
	ready  bool
	detail any
}

func (f fakeReporter) Readiness() (bool, any) { return f.ready, f.detail }

func TestReadiness_Handler(t *testing.T) {
	cases := []struct {
		name   string
		rep    fakeReporter
		code   int
		status string
	}{
		{"ready", fakeReporter{ready: true, detail: map[string]int{"batch": 29}}, http.StatusOK, "ready"},
		{"warming", fakeReporter{detail: map[string]int{"batch": 3}}, http.StatusServiceUnavailable, "not_ready"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Readiness(tc.rep)(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			if rr.Code != tc.code {
				t.Fatalf("status=%d want %d", rr.Code, tc.code)
			}
			var body struct {
				Status string         `json:"status"`
				Detail map[string]int `json:"detail"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tc.status || body.Detail["batch"] == 0 {
				t.Fatalf("body=%+v", body)
			}
		})
	}
}
