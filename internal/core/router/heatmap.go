package router

import (
	"net/http"

	"github.com/mohammed-shakir/oceanwatch/internal/cache/keys"
	"github.com/mohammed-shakir/oceanwatch/internal/heat"
	"github.com/mohammed-shakir/oceanwatch/internal/heatmap"
	mylog "github.com/mohammed-shakir/oceanwatch/internal/logger"
)

type heatmapResponse struct {
	Key     string       `json:"key"`
	Count   int          `json:"count"`
	Points  []heat.Point `json:"points"`
	Skipped bool         `json:"skipped,omitempty"`
}

func (a *api) heatmap(w http.ResponseWriter, r *http.Request) {
	types := parseTypes(r.URL.Query())
	ctx := mylog.WithCacheKey(r.Context(), keys.CacheKey(types))

	var res heatmap.Result
	if a.Views != nil {
		res = a.Views.View(clientID(r)).Refresh(ctx, types)
	} else {
		res = heatmap.Result{Key: keys.CacheKey(types), Points: a.Loader.Load(ctx, types)}
	}
	writeJSON(w, http.StatusOK, heatmapResponse{
		Key:     res.Key,
		Count:   len(res.Points),
		Points:  res.Points,
		Skipped: res.Skipped,
	})
}

func (a *api) heatmapGeoJSON(w http.ResponseWriter, r *http.Request) {
	pts := a.Loader.Load(r.Context(), parseTypes(r.URL.Query()))
	b, err := heatmap.FeatureCollection(pts).MarshalJSON()
	if err != nil {
		a.log.ErrorContext(r.Context(), "encode heat geojson", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(b)
}

func (a *api) heatmapCells(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := parseRes(q)
	if err != nil {
		badRequest(w, err)
		return
	}
	parent, rollup, err := parseParent(q, res)
	if err != nil {
		badRequest(w, err)
		return
	}
	pts := a.Loader.Load(r.Context(), parseTypes(q))
	cells, err := a.Mapper.Density(pts, res)
	if err != nil {
		badRequest(w, err)
		return
	}
	if rollup {
		if cells, err = a.Mapper.Rollup(cells, parent); err != nil {
			badRequest(w, err)
			return
		}
		res = parent
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"res":   res,
		"count": len(cells),
		"cells": cells,
	})
}
