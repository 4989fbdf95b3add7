package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-recognition/internal/embedding"
)

func createTestImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		for y := range height {
			img.Set(x, y, c)
		}
	}
	return img
}

func faceServer(t *testing.T, resp FaceResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart file: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if ct := header.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("expected image/jpeg part, got %s", ct)
		}
		data, _ := io.ReadAll(file)
		if len(data) < 3 || data[0] != 0xFF || data[1] != 0xD8 {
			t.Error("expected JPEG payload")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPDetector_SingleFace(t *testing.T) {
	server := faceServer(t, FaceResponse{
		FacesCount: 1,
		Faces:      []FaceDetection{{FaceIndex: 0, Dim: 3, Embedding: []float32{0.5, 0.25, -1}}},
		Model:      "dlib",
	})
	defer server.Close()

	detector := NewHTTPDetector(server.URL+"/", time.Second)
	detection, err := Extract(context.Background(), detector, createTestImage(20, 20, color.White))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	single, ok := detection.(embedding.SingleFace)
	if !ok {
		t.Fatalf("expected SingleFace, got %T", detection)
	}
	if single.Embedding.Dim() != 3 || single.Embedding[2] != -1 {
		t.Errorf("unexpected embedding: %v", single.Embedding)
	}
}

func TestHTTPDetector_NoUsableFace(t *testing.T) {
	tests := []struct {
		name  string
		faces []FaceDetection
	}{
		{"no faces", nil},
		{"two faces", []FaceDetection{
			{FaceIndex: 0, Embedding: []float32{1}},
			{FaceIndex: 1, Embedding: []float32{2}},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := faceServer(t, FaceResponse{FacesCount: len(tc.faces), Faces: tc.faces})
			defer server.Close()

			detection, err := Extract(context.Background(), NewHTTPDetector(server.URL, time.Second), createTestImage(4, 4, color.Black))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			none, ok := detection.(embedding.NoUsableFace)
			if !ok {
				t.Fatalf("expected NoUsableFace, got %T", detection)
			}
			if none.Count != len(tc.faces) {
				t.Errorf("expected count %d, got %d", len(tc.faces), none.Count)
			}
		})
	}
}

func TestHTTPDetector_InconsistentCount(t *testing.T) {
	server := faceServer(t, FaceResponse{FacesCount: 2, Faces: []FaceDetection{{Embedding: []float32{1}}}})
	defer server.Close()

	_, err := NewHTTPDetector(server.URL, time.Second).Detect(context.Background(), createTestImage(4, 4, color.White))
	if err == nil || !strings.Contains(err.Error(), "inconsistent response") {
		t.Errorf("expected inconsistent response error, got %v", err)
	}
}

func TestHTTPDetector_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := Extract(context.Background(), NewHTTPDetector(server.URL, time.Second), createTestImage(4, 4, color.White))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("expected status in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "(http)") {
		t.Errorf("expected backend name in error, got %v", err)
	}
}

func TestHTTPDetector_Ping(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	detector := NewHTTPDetector(server.URL, time.Second)
	if err := Ping(context.Background(), detector); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}

	healthy = false
	if err := Ping(context.Background(), detector); err == nil {
		t.Error("expected error for unhealthy server")
	}
}

func TestNew_Backends(t *testing.T) {
	d, err := New("", "", 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Name() != "http" {
		t.Errorf("expected http backend by default, got %s", d.Name())
	}

	if _, err := New("tensorflow", "", 0, ""); err == nil {
		t.Error("expected error for unknown backend")
	}
}

type staticDetector struct{}

func (staticDetector) Name() string { return "static" }
func (staticDetector) Detect(context.Context, image.Image) ([]embedding.Embedding, error) {
	return nil, errors.New("boom")
}

func TestPing_WithoutPinger(t *testing.T) {
	if err := Ping(context.Background(), staticDetector{}); err != nil {
		t.Errorf("expected nil for detector without Ping, got %v", err)
	}
}
