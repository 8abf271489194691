package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	"golang.org/x/image/draw"

	// registered so image.Decode handles the formats users actually upload
	_ "image/gif"
	_ "image/png"
)

var (
	// ErrInvalidType is returned when the input is not an image.
	ErrInvalidType = errors.New("input is not an image")
	// ErrTooLarge is returned when the image cannot be encoded within the
	// size bound even at the minimum quality floor. Callers must not persist
	// anything in that case.
	ErrTooLarge = errors.New("image exceeds the storage bound at minimum quality")
)

// Options bound the durable encoding produced by Ingest.
type Options struct {
	MaxEncodedBytes int // cap on the persisted data URI length
	MaxDimension    int // widest edge after downscaling, in pixels
	MinQuality      int // JPEG quality floor for re-encoding
}

// DefaultOptions returns the bounds used by the dashboard.
func DefaultOptions() Options {
	return Options{
		MaxEncodedBytes: 300 * 1024,
		MaxDimension:    800,
		MinQuality:      40,
	}
}

// Ingest turns a user-picked image into a durable self-contained encoding (a
// base64 data URI) that fits within o.MaxEncodedBytes. Inputs already under
// the bound pass through in their original format; oversized inputs are
// downscaled to o.MaxDimension and re-encoded as JPEG at decreasing quality
// until they fit. The result is always safe to persist and reload without
// any session-local reference.
func Ingest(data []byte, o Options) (string, error) {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", ErrInvalidType
	}
	if enc := dataURI(mimeType, data); len(enc) <= o.MaxEncodedBytes {
		return enc, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidType, err)
	}
	scaled := downscale(img, o.MaxDimension)

	for quality := 80; quality >= o.MinQuality; quality -= 10 {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
			return "", fmt.Errorf("re-encode jpeg: %w", err)
		}
		if enc := dataURI("image/jpeg", buf.Bytes()); len(enc) <= o.MaxEncodedBytes {
			return enc, nil
		}
	}
	return "", ErrTooLarge
}

// IsDurable reports whether an image value is safe to persist: empty values,
// static paths and data URIs all survive a reload.
func IsDurable(image string) bool {
	return !strings.HasPrefix(image, "blob:")
}

func dataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// downscale shrinks img so its widest edge is at most maxDim, preserving the
// aspect ratio. Images already within the limit are returned as-is.
func downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if h < 1 {
		h = 1
	}
	if w < 1 {
		w = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
