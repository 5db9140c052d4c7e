package router

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb/geojson"

	"github.com/mohammed-shakir/oceanwatch/internal/detect"
	"github.com/mohammed-shakir/oceanwatch/internal/wastemap"
	"github.com/mohammed-shakir/oceanwatch/internal/weather"
)

const (
	defaultGridSpacing = 0.0002
	maxUploadBytes     = 64 << 20
)

func (a *api) listNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.Feed.List())
}

func (a *api) dismissNotification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, fmt.Errorf("invalid notification id"))
		return
	}
	if !a.Feed.Dismiss(id) {
		http.Error(w, "notification not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) markers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sev, err := parseSeverities(q)
	if err != nil {
		badRequest(w, err)
		return
	}
	period, err := parsePeriod(q)
	if err != nil {
		badRequest(w, err)
		return
	}
	typ := q.Get("type")
	if typ == "" {
		typ = "all"
	}
	writeJSON(w, http.StatusOK, wastemap.Filter(a.Markers, typ, period, sev, a.Now()))
}

func (a *api) closestMarker(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := parseLatLng(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wastemap.Closest(lng, lat, a.Markers))
}

func (a *api) markerGrid(w http.ResponseWriter, r *http.Request) {
	spacing, err := parsePositiveFloat(r.URL.Query(), "spacing", defaultGridSpacing)
	if err != nil {
		badRequest(w, err)
		return
	}
	features, err := wastemap.GridInBoundary(wastemap.TargetBoundary, spacing, a.Markers)
	if err != nil {
		badRequest(w, fmt.Errorf("spacing %g: %w", spacing, err))
		return
	}
	fc := geojson.NewFeatureCollection()
	fc.Features = features
	b, err := fc.MarshalJSON()
	if err != nil {
		a.log.ErrorContext(r.Context(), "encode marker grid", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(b)
}

func (a *api) weather(w http.ResponseWriter, r *http.Request) {
	if a.Weather == nil {
		notConfigured(w, "weather")
		return
	}
	lat, lng, err := parseLatLng(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}
	d, err := a.Weather.ByCoordinates(r.Context(), lat, lng)
	if err != nil {
		if errors.Is(err, weather.ErrInvalidCoordinates) {
			badRequest(w, err)
			return
		}
		badGateway(w, "weather data")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *api) videos(w http.ResponseWriter, r *http.Request) {
	if a.Detector == nil {
		notConfigured(w, "detection backend")
		return
	}
	vids, err := a.Detector.Videos(r.Context())
	if err != nil {
		a.log.WarnContext(r.Context(), "list videos", "err", err)
		badGateway(w, "detection backend")
		return
	}
	if vids == nil {
		vids = []detect.VideoInfo{}
	}
	writeJSON(w, http.StatusOK, vids)
}

func (a *api) detectImage(w http.ResponseWriter, r *http.Request) {
	if a.Detector == nil {
		notConfigured(w, "detection backend")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequest(w, fmt.Errorf("invalid upload: %w", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	threshold, err := parseOptionalFloat(r, "confidence_threshold", detect.UseDefaultThreshold)
	if err != nil {
		badRequest(w, err)
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		badRequest(w, errors.New("missing file"))
		return
	}
	defer func() { _ = f.Close() }()

	out, err := a.Detector.DetectImage(r.Context(), detect.File{Name: hdr.Filename, Body: f}, threshold)
	if err != nil {
		a.log.WarnContext(r.Context(), "detect image", "err", err)
		badGateway(w, "detection backend")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) detectMultiple(w http.ResponseWriter, r *http.Request) {
	if a.Detector == nil {
		notConfigured(w, "detection backend")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequest(w, fmt.Errorf("invalid upload: %w", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	threshold, err := parseOptionalFloat(r, "confidence_threshold", detect.UseDefaultThreshold)
	if err != nil {
		badRequest(w, err)
		return
	}
	fps, err := parseOptionalInt(r, "fps")
	if err != nil {
		badRequest(w, err)
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		badRequest(w, errors.New("missing files"))
		return
	}
	files, closeAll, err := openAll(headers)
	defer closeAll()
	if err != nil {
		badRequest(w, err)
		return
	}

	out, err := a.Detector.ProcessMultiple(r.Context(), files, threshold, fps)
	if err != nil {
		a.log.WarnContext(r.Context(), "process multiple images", "files", len(files), "err", err)
		badGateway(w, "detection backend")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func openAll(headers []*multipart.FileHeader) ([]detect.File, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	files := make([]detect.File, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("open %s: %w", h.Filename, err)
		}
		opened = append(opened, f)
		files = append(files, detect.File{Name: h.Filename, Body: f})
	}
	return files, closeAll, nil
}
