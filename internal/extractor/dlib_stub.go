//go:build !dlib

package extractor

import (
	"context"
	"image"

	"github.com/kozaktomas/face-recognition/internal/embedding"
)

// DlibDetector is unavailable in builds without the "dlib" tag.
type DlibDetector struct{}

// NewDlibDetector always fails; rebuild with -tags dlib to enable the in-process model.
func NewDlibDetector(string) (*DlibDetector, error) {
	return nil, ErrDlibUnavailable
}

func (d *DlibDetector) Name() string { return "dlib" }

func (d *DlibDetector) Detect(context.Context, image.Image) ([]embedding.Embedding, error) {
	return nil, ErrDlibUnavailable
}

func (d *DlibDetector) Close() {}
