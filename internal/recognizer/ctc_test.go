package recognizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalevision/scaleread/internal/model"
)

// probRows builds one-hot probability rows for the given class sequence.
func probRows(classes []int, numClasses int) ([]float32, model.OutputLayout) {
	data := make([]float32, len(classes)*numClasses)
	for t, cls := range classes {
		data[t*numClasses+cls] = 1.0
	}
	return data, model.OutputLayout{Kind: model.Shape2D, Rows: len(classes), Cols: numClasses}
}

func TestDecodeGreedyCollapsesRepeatsAndBlanks(t *testing.T) {
	charset := NewCharset([]string{"1", "2", "3"})
	data, layout := probRows([]int{0, 0, 1, 1, 2, 0, 3, 3}, 4)

	out := DecodeGreedy(data, layout, charset)

	assert.Equal(t, "123", out.Text)
	assert.InDelta(t, 1.0, out.Confidence, 1e-9)
}

func TestDecodeGreedyRepeatSeparatedByBlank(t *testing.T) {
	charset := NewCharset([]string{"x"})
	data, layout := probRows([]int{1, 0, 1}, 2)

	out := DecodeGreedy(data, layout, charset)

	assert.Equal(t, "xx", out.Text)
}

func TestDecodeGreedySoftmaxConfidence(t *testing.T) {
	charset := NewCharset([]string{"a"})
	// Logits: row sums are far from 1, so the decoder must softmax.
	data := []float32{0, 2}
	layout := model.OutputLayout{Kind: model.Shape2D, Rows: 1, Cols: 2}

	out := DecodeGreedy(data, layout, charset)

	require.Equal(t, "a", out.Text)
	want := 1.0 / (1.0 + math.Exp(-2.0))
	assert.InDelta(t, want, out.Confidence, 1e-9)
}

func TestDecodeGreedyOneBadRowFlipsWholeSequence(t *testing.T) {
	charset := NewCharset([]string{"a"})
	// Row 0 sums to 1 on its own, but row 1 does not, so every row is
	// softmax-normalized.
	data := []float32{0, 1, 0, 3}
	layout := model.OutputLayout{Kind: model.Shape2D, Rows: 2, Cols: 2}

	out := DecodeGreedy(data, layout, charset)

	require.Equal(t, "a", out.Text)
	want := 1.0 / (math.Exp(-1.0) + 1.0) // row 0 carries the collapsed character
	assert.InDelta(t, want, out.Confidence, 1e-9)
}

func TestDecodeGreedyMeanConfidence(t *testing.T) {
	charset := NewCharset([]string{"a", "b"})
	data := []float32{
		0.1, 0.8, 0.1,
		0.2, 0.1, 0.7,
	}
	layout := model.OutputLayout{Kind: model.Shape2D, Rows: 2, Cols: 3}

	out := DecodeGreedy(data, layout, charset)

	assert.Equal(t, "ab", out.Text)
	assert.InDelta(t, 0.75, out.Confidence, 1e-6)
}

func TestDecodeGreedyOutOfBoundsClassSkipped(t *testing.T) {
	charset := NewCharset([]string{"x"})
	data, layout := probRows([]int{2, 0, 1}, 3)

	out := DecodeGreedy(data, layout, charset)

	assert.Equal(t, "x", out.Text)
	assert.InDelta(t, 1.0, out.Confidence, 1e-9)
}

func TestDecodeGreedyBlanksOnly(t *testing.T) {
	charset := NewCharset([]string{"x"})
	data, layout := probRows([]int{0, 0, 0}, 2)

	out := DecodeGreedy(data, layout, charset)

	assert.Empty(t, out.Text)
	assert.Zero(t, out.Confidence)
}

func TestDecodeGreedyDegenerateInput(t *testing.T) {
	charset := NewCharset([]string{"x"})

	assert.Zero(t, DecodeGreedy(nil, model.OutputLayout{}, charset))
	assert.Zero(t, DecodeGreedy([]float32{1}, model.OutputLayout{Rows: 2, Cols: 2}, charset))
	assert.Zero(t, DecodeGreedy([]float32{1, 0}, model.OutputLayout{Rows: 1, Cols: 2}, nil))
}
