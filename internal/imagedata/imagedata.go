// Package imagedata decodes base64 image payloads into images.
package imagedata

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned when the payload contains no image data.
var ErrEmptyImage = errors.New("empty image data")

// StripDataURL removes a data URL prefix ("data:image/jpeg;base64,") from a payload.
// Everything up to and including the first comma is dropped; payloads without a comma are returned unchanged.
func StripDataURL(payload string) string {
	if _, data, found := strings.Cut(payload, ","); found {
		return data
	}
	return payload
}

// DecodeBase64 decodes a raw base64 or data URL payload into image bytes.
func DecodeBase64(payload string) ([]byte, error) {
	data := strings.TrimSpace(StripDataURL(payload))
	if data == "" {
		return nil, ErrEmptyImage
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyImage
	}
	return raw, nil
}

// Decode decodes image bytes in any registered format (jpeg, png, gif, bmp, tiff, webp).
func Decode(raw []byte) (image.Image, string, error) {
	if len(raw) == 0 {
		return nil, "", ErrEmptyImage
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// FromBase64 decodes a base64 or data URL payload straight into an image.
func FromBase64(payload string) (image.Image, error) {
	raw, err := DecodeBase64(payload)
	if err != nil {
		return nil, err
	}
	img, _, err := Decode(raw)
	return img, err
}

// EncodeJPEG encodes an image as JPEG with the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
