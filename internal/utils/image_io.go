package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
)

// DefaultMaxDimension caps the longest side of a decoded image before it
// enters the pipeline. Camera stills are far larger than the detector input
// and only cost memory beyond this point.
const DefaultMaxDimension = 1280

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

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
	Width     int // dimensions after the max-dimension cap
	Height    int
}

// DecodeImageMax decodes an image stream into a raw RGB raster, then halves
// it repeatedly until the longest side fits within maxDimension, mirroring
// how camera sources subsample on decode. Returns the decoded format name.
func DecodeImageMax(r io.Reader, maxDimension int) (*Image, string, error) {
	if maxDimension <= 1 {
		maxDimension = DefaultMaxDimension
	}

	decoded, format, err := image.Decode(r)
	if err != nil {
		return nil, "", &ImageError{Operation: "decode", Err: err}
	}

	b := decoded.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, "", &ImageError{Operation: "decode", Err: fmt.Errorf("invalid dimensions %dx%d", w, h)}
	}

	sample := 1
	maxSide := max(w, h)
	for maxSide/sample > maxDimension {
		sample *= 2
	}
	if sample > 1 {
		decoded = imaging.Resize(decoded, w/sample, h/sample, imaging.Lanczos)
	}

	img, err := FromGoImage(decoded)
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

// LoadImage opens and decodes an image file, converting it to a raw RGB
// raster with the longest side capped at DefaultMaxDimension.
func LoadImage(path string) (*Image, ImageMetadata, error) {
	return LoadImageMax(path, DefaultMaxDimension)
}

// LoadImageMax is LoadImage with an explicit dimension cap. A cap <= 1 falls
// back to DefaultMaxDimension. Downsampling halves the image repeatedly until
// the longest side fits, mirroring how camera sources subsample on decode.
func LoadImageMax(path string, maxDimension int) (*Image, ImageMetadata, error) {
	if path == "" {
		return nil, ImageMetadata{}, &ImageError{Operation: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		return nil, ImageMetadata{}, &ImageError{
			Operation: "load",
			Err:       fmt.Errorf("unsupported format: %s", filepath.Ext(path)),
		}
	}
	if maxDimension <= 1 {
		maxDimension = DefaultMaxDimension
	}

	f, err := os.Open(path) //nolint:gosec // G304: reading a user-provided image path is expected
	if err != nil {
		return nil, ImageMetadata{}, &ImageError{Operation: "load", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Error closing image file: %v\n", cerr)
		}
	}()

	fi, statErr := f.Stat()
	if statErr != nil {
		return nil, ImageMetadata{}, &ImageError{Operation: "load", Err: statErr}
	}

	img, format, err := DecodeImageMax(f, maxDimension)
	if err != nil {
		return nil, ImageMetadata{}, err
	}

	meta := ImageMetadata{
		Path:      path,
		Format:    format,
		SizeBytes: fi.Size(),
		Width:     img.Width,
		Height:    img.Height,
	}
	return img, meta, nil
}
