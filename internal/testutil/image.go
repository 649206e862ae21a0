// Package testutil provides helpers for constructing synthetic scale-display
// images and canned operators for pipeline tests.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/scalevision/scaleread/internal/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DisplayImageConfig holds configuration for generating synthetic display images.
type DisplayImageConfig struct {
	Text       string
	Width      int
	Height     int
	Background color.Color
	Foreground color.Color
}

// DefaultDisplayImageConfig returns a config resembling a lit LCD segment panel.
func DefaultDisplayImageConfig() DisplayImageConfig {
	return DisplayImageConfig{
		Text:       "12.34kg",
		Width:      320,
		Height:     240,
		Background: color.RGBA{R: 190, G: 210, B: 190, A: 255},
		Foreground: color.Black,
	}
}

// GenerateDisplayImage renders the configured text roughly centered on a
// solid background, as a stand-in for a photographed scale display.
func GenerateDisplayImage(t *testing.T, cfg DisplayImageConfig) *utils.Image {
	t.Helper()
	rgba := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.Draw(rgba, rgba.Bounds(), &image.Uniform{cfg.Background}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  rgba,
		Src:  &image.Uniform{cfg.Foreground},
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(cfg.Width/2 - len(cfg.Text)*7/2),
			Y: fixed.I(cfg.Height / 2),
		},
	}
	drawer.DrawString(cfg.Text)

	img, err := utils.FromGoImage(rgba)
	require.NoError(t, err)
	return img
}

// SolidImage returns a uniformly colored raster.
func SolidImage(t *testing.T, w, h int, r, g, b byte) *utils.Image {
	t.Helper()
	img, err := utils.NewImage(w, h)
	require.NoError(t, err)
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
	}
	return img
}

// GradientImage returns a raster with distinct per-pixel values, handy for
// verifying geometric transforms.
func GradientImage(t *testing.T, w, h int) *utils.Image {
	t.Helper()
	img, err := utils.NewImage(w, h)
	require.NoError(t, err)
	for y := range h {
		for x := range w {
			i := (y*w + x) * 3
			img.Pix[i] = byte(x * 255 / max(1, w-1))
			img.Pix[i+1] = byte(y * 255 / max(1, h-1))
			img.Pix[i+2] = byte((x + y) % 256)
		}
	}
	return img
}
