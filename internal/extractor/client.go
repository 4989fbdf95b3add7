package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/kozaktomas/face-recognition/internal/constants"
	"github.com/kozaktomas/face-recognition/internal/embedding"
	"github.com/kozaktomas/face-recognition/internal/imagedata"
)

const (
	defaultEmbeddingURL = "http://localhost:8000"
	defaultTimeout      = 30 * time.Second
)

// HTTPDetector computes face embeddings using the embedding server
type HTTPDetector struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDetector creates a new embedding server client
func NewHTTPDetector(baseURL string, timeout time.Duration) *HTTPDetector {
	if baseURL == "" {
		baseURL = defaultEmbeddingURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPDetector{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// FaceDetection represents a single detected face
type FaceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// FaceResponse represents the response from the face embedding endpoint
type FaceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []FaceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// Name returns the backend name
func (c *HTTPDetector) Name() string {
	return "http"
}

// Detect detects faces and computes their embeddings
func (c *HTTPDetector) Detect(ctx context.Context, img image.Image) ([]embedding.Embedding, error) {
	imageData, err := imagedata.EncodeJPEG(img, constants.JPEGQuality)
	if err != nil {
		return nil, err
	}

	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var faceResp FaceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if faceResp.FacesCount != len(faceResp.Faces) {
		return nil, fmt.Errorf("inconsistent response: faces_count=%d but %d faces returned",
			faceResp.FacesCount, len(faceResp.Faces))
	}

	faces := make([]embedding.Embedding, len(faceResp.Faces))
	for i, f := range faceResp.Faces {
		if len(f.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding returned for face %d", f.FaceIndex)
		}
		faces[i] = embedding.FromFloat32(f.Embedding)
	}
	return faces, nil
}

// Ping checks that the embedding server is reachable
func (c *HTTPDetector) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("embedding server unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding server unhealthy (status %d)", resp.StatusCode)
	}
	return nil
}

// postMultipartImage constructs a multipart form with the JPEG image and posts it to the given endpoint.
func (c *HTTPDetector) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// requestID reuses the incoming request id when there is one.
func requestID(ctx context.Context) string {
	if id := chiMiddleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
