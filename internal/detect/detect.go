// Package detect is a client for the object-detection backend that scores
// uploaded photos and frame sequences for marine debris.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mohammed-shakir/oceanwatch/internal/core/observability"
)

const (
	DefaultThreshold = 0.5
	DefaultFPS       = 5

	// UseDefaultThreshold asks for DefaultThreshold. Zero is a valid
	// threshold that keeps every detection.
	UseDefaultThreshold = -1.0
)

type Detection struct {
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Category   string  `json:"category"`
	Location   string  `json:"location"`
}

type ImageResponse struct {
	ProcessedImage string      `json:"processed_image"`
	Detections     []Detection `json:"detections"`
	DetectionCount int         `json:"detection_count"`
}

type MultipleImagesResponse struct {
	VideoURL       string        `json:"video_url"`
	DetectionCount int           `json:"detection_count"`
	FrameCount     int           `json:"frame_count"`
	Detections     [][]Detection `json:"detections"`
}

type VideoInfo struct {
	ID        string  `json:"id"`
	URL       string  `json:"url"`
	CreatedAt float64 `json:"created_at"`
	FileSize  int64   `json:"file_size"`
}

// File is one upload part.
type File struct {
	Name string
	Body io.Reader
}

type Client struct {
	http *http.Client
	base string
	log  *slog.Logger
}

func New(hc *http.Client, baseURL string, log *slog.Logger) (*Client, error) {
	base := strings.TrimRight(baseURL, "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse detect base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("detect base url must be http(s), got %q", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{http: hc, base: base, log: log.With("component", "detect")}, nil
}

// DetectImage scores a single image. A negative threshold uses the default.
func (c *Client) DetectImage(ctx context.Context, f File, threshold float64) (ImageResponse, error) {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	body, ctype, err := buildForm("file", []File{f}, map[string]string{
		"confidence_threshold": formatFloat(threshold),
	})
	if err != nil {
		return ImageResponse{}, err
	}
	var out ImageResponse
	if err := c.do(ctx, http.MethodPost, "/detect/image", body, ctype, &out); err != nil {
		return ImageResponse{}, fmt.Errorf("detect image: %w", err)
	}
	return out, nil
}

// ProcessMultiple scores a sequence of frames and has the backend stitch
// them into a video. The returned video URL is absolute.
func (c *Client) ProcessMultiple(ctx context.Context, files []File, threshold float64, fps int) (MultipleImagesResponse, error) {
	if len(files) == 0 {
		return MultipleImagesResponse{}, fmt.Errorf("process multiple: no files")
	}
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	body, ctype, err := buildForm("files", files, map[string]string{
		"confidence_threshold": formatFloat(threshold),
		"fps":                  strconv.Itoa(fps),
	})
	if err != nil {
		return MultipleImagesResponse{}, err
	}
	var out MultipleImagesResponse
	if err := c.do(ctx, http.MethodPost, "/detect/multiple", body, ctype, &out); err != nil {
		return MultipleImagesResponse{}, fmt.Errorf("process multiple: %w", err)
	}
	out.VideoURL = c.absolute(out.VideoURL)
	return out, nil
}

func (c *Client) Videos(ctx context.Context) ([]VideoInfo, error) {
	var out []VideoInfo
	if err := c.do(ctx, http.MethodGet, "/api/videos", nil, "", &out); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	for i := range out {
		out[i].URL = c.absolute(out[i].URL)
	}
	return out, nil
}

func (c *Client) absolute(u string) string {
	if strings.HasPrefix(u, "/") {
		return c.base + u
	}
	return u
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, ctype string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	observability.ObserveUpstreamLatency("detect", time.Since(start).Seconds())
	if err != nil {
		c.log.WarnContext(ctx, "detect request failed", "path", path, "err", err)
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.WarnContext(ctx, "detect backend error", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func buildForm(field string, files []File, values map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		name := f.Name
		if name == "" {
			name = "upload"
		}
		part, err := w.CreateFormFile(field, name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", name, err)
		}
	}
	for k, v := range values {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
