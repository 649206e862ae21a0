package testutil

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/scalevision/scaleread/internal/utils"
	"github.com/stretchr/testify/require"
)

// WritePNG writes an Image to a PNG file inside the test's temp dir and
// returns the path.
func WritePNG(t *testing.T, img *utils.Image, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path) //nolint:gosec // test temp path
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()
	require.NoError(t, png.Encode(f, img.ToGoImage()))
	return path
}
