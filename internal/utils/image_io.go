package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".gif"}

// ImageProcessingError represents errors that can occur while loading or
// converting an image.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error {
	return e.Err
}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path      string
	Format    string
	SizeBytes int64
	Width     int
	Height    int
}

// LoadImage opens and decodes an image file, returning the image and metadata.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		err := &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
		return nil, ImageMetadata{}, err
	}
	if !IsSupportedImage(path) {
		err := &ImageProcessingError{Operation: "load", Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
		return nil, ImageMetadata{}, err
	}

	f, err := os.Open(path) //nolint:gosec // G304: Reading user-provided image file path is expected
	if err != nil {
		err = &ImageProcessingError{Operation: "load", Err: err}
		return nil, ImageMetadata{}, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing image file: %v\n", err)
		}
	}()

	fi, statErr := f.Stat()
	if statErr != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "load", Err: statErr}
	}

	img, meta, err := DecodeImage(f)
	if err != nil {
		return nil, ImageMetadata{}, err
	}
	meta.Path = path
	meta.SizeBytes = fi.Size()
	return img, meta, nil
}

// DecodeImage decodes an image from r in any registered format.
func DecodeImage(r io.Reader) (image.Image, ImageMetadata, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, ImageMetadata{}, &ImageProcessingError{Operation: "decode", Err: err}
	}
	b := img.Bounds()
	return img, ImageMetadata{Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

// DecodeImageBytes is DecodeImage over an in-memory buffer.
func DecodeImageBytes(data []byte) (image.Image, ImageMetadata, error) {
	img, meta, err := DecodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, ImageMetadata{}, err
	}
	meta.SizeBytes = int64(len(data))
	return img, meta, nil
}
