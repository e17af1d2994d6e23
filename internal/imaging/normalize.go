// Package imaging turns uploaded images into the JPEGs kept in storage.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

const ContentType = "image/jpeg"

var ErrUnsupportedImage = errors.New("imaging: unsupported or corrupt image")

type Normalizer struct {
	maxEdge uint
	quality int
}

// NewNormalizer bounds the longer edge by maxEdge (0 keeps the size) and
// encodes with the given JPEG quality.
func NewNormalizer(maxEdge uint, quality int) *Normalizer {
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	return &Normalizer{maxEdge: maxEdge, quality: quality}
}

func (n *Normalizer) Normalize(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	if n.maxEdge > 0 {
		// Thumbnail keeps the aspect ratio and never upscales.
		img = resize.Thumbnail(n.maxEdge, n.maxEdge, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: n.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
