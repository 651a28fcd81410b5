package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
)

// ErrNotImage is returned when uploaded content cannot be decoded as an image.
var ErrNotImage = errors.New("content is not a supported image")

// ImageProcessor produces room image thumbnails.
type ImageProcessor struct {
	maxWidth  int
	maxHeight int
	quality   int
}

// NewImageProcessor returns a processor fitting thumbnails into maxWidth x maxHeight.
func NewImageProcessor(maxWidth, maxHeight int) *ImageProcessor {
	return &ImageProcessor{
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
		quality:   80,
	}
}

// GenerateThumbnail decodes content and returns a JPEG that fits the configured box.
// Aspect ratio is preserved.
func (p *ImageProcessor) GenerateThumbnail(content io.Reader) (io.Reader, error) {
	img, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	thumbnail := imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, thumbnail, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return buf, nil
}
