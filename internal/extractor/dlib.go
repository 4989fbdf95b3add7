//go:build dlib

package extractor

import (
	"context"
	"fmt"
	"image"
	"sync"

	face "github.com/Kagami/go-face"
	"github.com/kozaktomas/face-recognition/internal/constants"
	"github.com/kozaktomas/face-recognition/internal/embedding"
	"github.com/kozaktomas/face-recognition/internal/imagedata"
)

// DlibDetector runs dlib's face recognition model in-process.
type DlibDetector struct {
	mu         sync.Mutex
	recognizer *face.Recognizer
}

// NewDlibDetector loads the dlib models from modelsDir. This is slow; call it once at startup.
func NewDlibDetector(modelsDir string) (*DlibDetector, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("loading dlib models from %s: %w", modelsDir, err)
	}
	return &DlibDetector{recognizer: rec}, nil
}

// Name returns the backend name
func (d *DlibDetector) Name() string {
	return "dlib"
}

// Detect returns a 128-dimensional embedding per detected face.
func (d *DlibDetector) Detect(ctx context.Context, img image.Image) ([]embedding.Embedding, error) {
	// go-face only accepts JPEG input.
	data, err := imagedata.EncodeJPEG(img, constants.JPEGQuality)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	faces, err := d.recognizer.Recognize(data)
	d.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("dlib recognize: %w", err)
	}

	result := make([]embedding.Embedding, len(faces))
	for i := range faces {
		result[i] = embedding.FromFloat32(faces[i].Descriptor[:])
	}
	return result, nil
}

// Close releases the native recognizer.
func (d *DlibDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recognizer.Close()
}
