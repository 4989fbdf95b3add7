// Package extractor turns images into face embeddings.
//
// The actual model is an external collaborator: either an embedding server
// reached over HTTP or dlib loaded in-process (build tag "dlib"). Both are
// constructed once at startup and shared by all requests.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/kozaktomas/face-recognition/internal/embedding"
)

// Detector finds faces in an image and returns one embedding per face.
// Order is undefined across calls but stable within a call.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]embedding.Embedding, error)
	// Name identifies the backend in logs and metrics.
	Name() string
}

// Pinger is implemented by detectors that depend on a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Extract runs the detector and classifies the result.
// Zero or several faces produce embedding.NoUsableFace, not an error.
func Extract(ctx context.Context, d Detector, img image.Image) (embedding.Detection, error) {
	faces, err := d.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("extracting face embedding (%s): %w", d.Name(), err)
	}
	return embedding.Classify(faces), nil
}

// Ping checks the detector's backend if it has one.
func Ping(ctx context.Context, d Detector) error {
	if p, ok := d.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// ErrDlibUnavailable is returned when the dlib backend was not compiled in.
var ErrDlibUnavailable = errors.New("dlib backend not available: build with -tags dlib")

// New builds the detector selected by backend ("http" or "dlib").
func New(backend, url string, timeout time.Duration, modelsDir string) (Detector, error) {
	switch backend {
	case "", "http":
		return NewHTTPDetector(url, timeout), nil
	case "dlib":
		d, err := NewDlibDetector(modelsDir)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown extractor backend %q", backend)
	}
}
