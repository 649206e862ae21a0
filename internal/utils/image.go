package utils

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ErrEmptyImage reports an image with no pixel content.
var ErrEmptyImage = errors.New("empty image")

// ImageError represents errors that can occur while handling raw images.
type ImageError struct {
	Operation string
	Err       error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image error in %s: %v", e.Operation, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// Image is an 8-bit interleaved RGB raster. Rows are tightly packed:
// the stride is exactly Width*3 bytes and the channel order is R, G, B.
// An Image owns its pixel buffer; crops never alias their source.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// NewImage allocates a zeroed raster of the given dimensions.
func NewImage(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, &ImageError{Operation: "new", Err: fmt.Errorf("invalid dimensions %dx%d", width, height)}
	}
	return &Image{Width: width, Height: height, Pix: make([]byte, width*height*3)}, nil
}

// NewImageFromPix wraps an existing interleaved RGB buffer. The buffer length
// must be exactly width*height*3.
func NewImageFromPix(width, height int, pix []byte) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, &ImageError{Operation: "wrap", Err: fmt.Errorf("invalid dimensions %dx%d", width, height)}
	}
	if len(pix) != width*height*3 {
		return nil, &ImageError{
			Operation: "wrap",
			Err:       fmt.Errorf("pixel buffer length %d != %d", len(pix), width*height*3),
		}
	}
	return &Image{Width: width, Height: height, Pix: pix}, nil
}

// FromGoImage converts a standard library image into a raw RGB Image,
// dropping any alpha channel.
func FromGoImage(img image.Image) (*Image, error) {
	if img == nil {
		return nil, &ImageError{Operation: "convert", Err: errors.New("input image is nil")}
	}
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, &ImageError{Operation: "convert", Err: fmt.Errorf("invalid dimensions %dx%d", w, h)}
	}
	out := &Image{Width: w, Height: h, Pix: make([]byte, w*h*3)}
	for y := range h {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		dst := out.Pix[y*w*3 : (y+1)*w*3]
		for x := range w {
			dst[x*3+0] = src[x*4+0]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return out, nil
}

// ToGoImage converts the raster back to an NRGBA image with full opacity.
func (im *Image) ToGoImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.Width, im.Height))
	for y := range im.Height {
		src := im.Pix[y*im.Width*3 : (y+1)*im.Width*3]
		dst := out.Pix[y*out.Stride : y*out.Stride+im.Width*4]
		for x := range im.Width {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return out
}

// At returns the R, G, B bytes at (x, y). Bounds are not checked.
func (im *Image) At(x, y int) (byte, byte, byte) {
	i := (y*im.Width + x) * 3
	return im.Pix[i], im.Pix[i+1], im.Pix[i+2]
}

// CropImage copies the sub-raster enclosed by box into a freshly owned Image.
// Corners are floored and clamped into the source bounds. A box that
// degenerates to zero width or height yields nil, which is not an error.
func CropImage(src *Image, box Box) *Image {
	x1 := clampInt(int(math.Floor(box.MinX)), 0, src.Width)
	y1 := clampInt(int(math.Floor(box.MinY)), 0, src.Height)
	x2 := clampInt(int(math.Floor(box.MaxX)), 0, src.Width)
	y2 := clampInt(int(math.Floor(box.MaxY)), 0, src.Height)
	w := x2 - x1
	h := y2 - y1
	if w <= 0 || h <= 0 {
		return nil
	}
	out := &Image{Width: w, Height: h, Pix: make([]byte, w*h*3)}
	for row := range h {
		srcOff := ((y1+row)*src.Width + x1) * 3
		copy(out.Pix[row*w*3:(row+1)*w*3], src.Pix[srcOff:srcOff+w*3])
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
