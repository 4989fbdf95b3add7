package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kozaktomas/face-recognition/internal/embedding"
	"github.com/kozaktomas/face-recognition/internal/observe"
	"go.opentelemetry.io/otel/metric/noop"
)

var errExtractorDown = errors.New("extractor down")

// fakeDetector returns canned faces and records how often it was called
type fakeDetector struct {
	mu      sync.Mutex
	faces   []embedding.Embedding
	err     error
	pingErr error
	calls   int
}

func (f *fakeDetector) Name() string { return "fake" }

func (f *fakeDetector) Detect(ctx context.Context, img image.Image) ([]embedding.Embedding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.faces, f.err
}

func (f *fakeDetector) Ping(ctx context.Context) error {
	return f.pingErr
}

func (f *fakeDetector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// testMetrics returns instruments that discard everything
func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	m, err := observe.NewMetrics(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return m
}

// createFacesHandler creates a FacesHandler around a fake detector
func createFacesHandler(t *testing.T, detector *fakeDetector) *FacesHandler {
	t.Helper()
	return NewFacesHandler(detector, testMetrics(t))
}

// testImageBase64 returns a small PNG encoded as base64
func testImageBase64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := range 4 {
		for y := range 4 {
			img.Set(x, y, color.Gray{Y: uint8(x * y * 10)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// filled returns an embedding with every component set to value
func filled(dim int, value float64) embedding.Embedding {
	e := make(embedding.Embedding, dim)
	for i := range e {
		e[i] = value
	}
	return e
}

// jsonRequest creates a POST request with a JSON body
func jsonRequest(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	var data []byte
	switch v := body.(type) {
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%v'", expectedMessage, result["error"])
	}
}
