package detect

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDetectImage_SendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/detect/image" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		if got := r.FormValue("confidence_threshold"); got != "0.5" {
			t.Errorf("threshold=%q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		b, _ := io.ReadAll(f)
		if hdr.Filename != "beach.jpg" || string(b) != "jpegbytes" {
			t.Errorf("file %q=%q", hdr.Filename, b)
		}
		_ = json.NewEncoder(w).Encode(ImageResponse{
			ProcessedImage: "aGk=",
			Detections:     []Detection{{ClassName: "bottle", Confidence: 0.91, Category: "plastic"}},
			DetectionCount: 1,
		})
	}))
	defer srv.Close()

	c, err := New(srv.Client(), srv.URL, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := c.DetectImage(context.Background(), File{Name: "beach.jpg", Body: strings.NewReader("jpegbytes")}, UseDefaultThreshold)
	if err != nil {
		t.Fatalf("DetectImage: %v", err)
	}
	if out.DetectionCount != 1 || out.Detections[0].ClassName != "bottle" {
		t.Fatalf("out=%+v", out)
	}
}

func TestProcessMultiple_AbsoluteVideoURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		if n := len(r.MultipartForm.File["files"]); n != 2 {
			t.Errorf("files=%d", n)
		}
		if r.FormValue("fps") != "5" || r.FormValue("confidence_threshold") != "0.7" {
			t.Errorf("fields=%v", r.MultipartForm.Value)
		}
		_, _ = w.Write([]byte(`{"video_url":"/videos/abc.mp4","detection_count":3,"frame_count":2,"detections":[[],[{"class_name":"net"}]]}`))
	}))
	defer srv.Close()

	c, _ := New(srv.Client(), srv.URL+"/", nil)
	out, err := c.ProcessMultiple(context.Background(), []File{
		{Name: "a.jpg", Body: strings.NewReader("a")},
		{Name: "b.jpg", Body: strings.NewReader("b")},
	}, 0.7, 0)
	if err != nil {
		t.Fatalf("ProcessMultiple: %v", err)
	}
	if out.VideoURL != srv.URL+"/videos/abc.mp4" {
		t.Fatalf("video url=%q", out.VideoURL)
	}
	if out.FrameCount != 2 || len(out.Detections) != 2 || out.Detections[1][0].ClassName != "net" {
		t.Fatalf("out=%+v", out)
	}
}

func TestProcessMultiple_NoFiles(t *testing.T) {
	c, _ := New(nil, "http://localhost:8000", nil)
	if _, err := c.ProcessMultiple(context.Background(), nil, UseDefaultThreshold, 0); err == nil {
		t.Fatalf("expected error")
	}
}

func TestVideos_RewritesRelativeURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/videos" {
			t.Errorf("path=%s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":"1","url":"/videos/1.mp4","created_at":1700000000.5,"file_size":42},{"id":"2","url":"https://cdn.example.com/2.mp4"}]`))
	}))
	defer srv.Close()

	c, _ := New(srv.Client(), srv.URL, nil)
	vids, err := c.Videos(context.Background())
	if err != nil {
		t.Fatalf("Videos: %v", err)
	}
	if len(vids) != 2 || vids[0].URL != srv.URL+"/videos/1.mp4" || vids[1].URL != "https://cdn.example.com/2.mp4" {
		t.Fatalf("vids=%+v", vids)
	}
}

func TestBackendErrorIncludesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := New(srv.Client(), srv.URL, nil)
	_, err := c.Videos(context.Background())
	if err == nil || !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "model not loaded") {
		t.Fatalf("err=%v", err)
	}
}

func TestDetectImage_ZeroThresholdIsSent(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		got = append(got, r.FormValue("confidence_threshold"))
		_, _ = w.Write([]byte(`{"detection_count":0}`))
	}))
	defer srv.Close()

	c, _ := New(srv.Client(), srv.URL, nil)
	if _, err := c.DetectImage(context.Background(), File{Name: "a.jpg", Body: strings.NewReader("a")}, 0); err != nil {
		t.Fatalf("DetectImage: %v", err)
	}
	if _, err := c.ProcessMultiple(context.Background(), []File{{Name: "a.jpg", Body: strings.NewReader("a")}}, 0, 0); err != nil {
		t.Fatalf("ProcessMultiple: %v", err)
	}
	if _, err := c.DetectImage(context.Background(), File{Name: "a.jpg", Body: strings.NewReader("a")}, UseDefaultThreshold); err != nil {
		t.Fatalf("DetectImage: %v", err)
	}
	if len(got) != 3 || got[0] != "0" || got[1] != "0" || got[2] != "0.5" {
		t.Fatalf("thresholds=%q want [0 0 0.5]", got)
	}
}

func TestDo_WrapsRequestBuildError(t *testing.T) {
	c, _ := New(nil, "http://localhost:8000", nil)
	var ctx context.Context
	err := c.do(ctx, http.MethodGet, "/api/videos", nil, "", new([]VideoInfo))
	if err == nil || !strings.Contains(err.Error(), "build GET /api/videos") {
		t.Fatalf("err=%v", err)
	}
}
