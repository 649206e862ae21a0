package detector

import (
	"testing"

	"github.com/scalevision/scaleread/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utils64(x1, y1, x2, y2 float64) utils.Box {
	return utils.NewBox(x1, y1, x2, y2)
}

func TestNonMaxSuppressionIdenticalBoxes(t *testing.T) {
	dets := []Detection{
		{Box: utils64(10, 10, 50, 50), Confidence: 0.6},
		{Box: utils64(10, 10, 50, 50), Confidence: 0.9},
	}
	kept := NonMaxSuppression(dets, 0.5)
	require.Len(t, kept, 1)
	assert.InDelta(t, 0.9, kept[0].Confidence, 1e-9)
}

func TestNonMaxSuppressionKeepsDisjoint(t *testing.T) {
	dets := []Detection{
		{Box: utils64(0, 0, 10, 10), Confidence: 0.7},
		{Box: utils64(100, 100, 110, 110), Confidence: 0.9},
		{Box: utils64(1, 1, 9, 9), Confidence: 0.5},
	}
	kept := NonMaxSuppression(dets, 0.5)
	require.Len(t, kept, 2)
	// Confidence-descending survivor order.
	assert.InDelta(t, 0.9, kept[0].Confidence, 1e-9)
	assert.InDelta(t, 0.7, kept[1].Confidence, 1e-9)
}

func TestNonMaxSuppressionEqualIoUKept(t *testing.T) {
	a := Detection{Box: utils64(0, 0, 10, 10), Confidence: 0.9}
	b := Detection{Box: utils64(0, 5, 10, 15), Confidence: 0.8}
	iou := utils.IoU(a.Box, b.Box)
	// A candidate at exactly the threshold survives; only strictly greater
	// overlap suppresses.
	kept := NonMaxSuppression([]Detection{a, b}, iou)
	assert.Len(t, kept, 2)
	kept = NonMaxSuppression([]Detection{a, b}, iou-1e-9)
	assert.Len(t, kept, 1)
}

func TestNonMaxSuppressionSmallInputs(t *testing.T) {
	assert.Empty(t, NonMaxSuppression(nil, 0.5))
	one := []Detection{{Box: utils64(0, 0, 1, 1), Confidence: 0.5}}
	assert.Len(t, NonMaxSuppression(one, 0.5), 1)
}
