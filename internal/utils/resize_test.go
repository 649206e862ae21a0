package utils

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomImage(t *testing.T, w, h int, seed int64) *Image {
	t.Helper()
	img, err := NewImage(w, h)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	for i := range img.Pix {
		img.Pix[i] = byte(rng.Intn(256))
	}
	return img
}

func TestResizeBilinearIdentity(t *testing.T) {
	src := randomImage(t, 17, 11, 42)
	dst := ResizeBilinear(src, src.Width, src.Height)
	require.Equal(t, src.Width, dst.Width)
	require.Equal(t, src.Height, dst.Height)
	for i := range src.Pix {
		diff := int(src.Pix[i]) - int(dst.Pix[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > 1 {
			t.Fatalf("pixel %d differs by %d after identity resize", i, diff)
		}
	}
}

func TestResizeBilinearEmptyDestination(t *testing.T) {
	src := randomImage(t, 8, 8, 1)
	for _, dims := range [][2]int{{0, 4}, {4, 0}, {-1, 4}, {0, 0}} {
		dst := ResizeBilinear(src, dims[0], dims[1])
		assert.Zero(t, dst.Width*dst.Height)
		assert.Empty(t, dst.Pix)
	}
}

func TestResizeBilinearUniformColor(t *testing.T) {
	src, err := NewImage(10, 10)
	require.NoError(t, err)
	for i := 0; i < len(src.Pix); i += 3 {
		src.Pix[i] = 200
		src.Pix[i+1] = 100
		src.Pix[i+2] = 50
	}
	dst := ResizeBilinear(src, 7, 13)
	require.Len(t, dst.Pix, 7*13*3)
	for i := 0; i < len(dst.Pix); i += 3 {
		assert.Equal(t, byte(200), dst.Pix[i])
		assert.Equal(t, byte(100), dst.Pix[i+1])
		assert.Equal(t, byte(50), dst.Pix[i+2])
	}
}

func TestResizeBilinearDownUp(t *testing.T) {
	src := randomImage(t, 32, 32, 7)
	small := ResizeBilinear(src, 16, 16)
	require.Equal(t, 16, small.Width)
	require.Len(t, small.Pix, 16*16*3)
	big := ResizeBilinear(small, 64, 48)
	require.Equal(t, 64, big.Width)
	require.Equal(t, 48, big.Height)
	require.Len(t, big.Pix, 64*48*3)
}
