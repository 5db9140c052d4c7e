package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/oceanwatch/internal/monitor"
)

func (a *api) monitorState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.Monitor.Snapshot())
}

func (a *api) monitorUpdate(w http.ResponseWriter, r *http.Request) {
	d, ok := a.Monitor.ManualUpdate(r.Context())
	out := struct {
		Added     bool               `json:"added"`
		Detection *monitor.Detection `json:"detection,omitempty"`
	}{Added: ok}
	if ok {
		out.Detection = &d
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) monitorToggle(w http.ResponseWriter, _ *http.Request) {
	on := a.Monitor.ToggleRealTime()
	writeJSON(w, http.StatusOK, map[string]bool{"isRealTimeUpdates": on})
}

func (a *api) monitorInterval(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("seconds"))
	secs, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(w, fmt.Errorf("invalid seconds %q", raw))
		return
	}
	if err := a.Monitor.SetInterval(time.Duration(secs) * time.Second); err != nil {
		if errors.Is(err, monitor.ErrIntervalTooShort) {
			badRequest(w, err)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updateInterval": secs})
}

func (a *api) dismissAlert(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		badRequest(w, fmt.Errorf("invalid alert index"))
		return
	}
	if !a.Monitor.DismissAlert(idx) {
		http.Error(w, "alert not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) addActivity(w http.ResponseWriter, r *http.Request) {
	var in monitor.Activity
	dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		badRequest(w, fmt.Errorf("invalid activity: %w", err))
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		badRequest(w, errors.New("activity name is required"))
		return
	}
	writeJSON(w, http.StatusCreated, a.Monitor.AddActivity(in))
}
