//go:build !dlib

package extractor

import (
	"errors"
	"testing"
)

func TestNew_DlibWithoutTag(t *testing.T) {
	d, err := New("dlib", "", 0, "/models")
	if !errors.Is(err, ErrDlibUnavailable) {
		t.Errorf("expected ErrDlibUnavailable, got %v", err)
	}
	if d != nil {
		t.Error("expected nil detector")
	}
}
