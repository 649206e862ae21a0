package recognizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalevision/scaleread/internal/model"
	"github.com/scalevision/scaleread/internal/testutil"
)

// recognitionOutput builds a [1, len(classes), numClasses] one-hot tensor.
func recognitionOutput(classes []int, numClasses int) []model.Tensor {
	data := make([]float32, len(classes)*numClasses)
	for t, cls := range classes {
		data[t*numClasses+cls] = 1.0
	}
	return []model.Tensor{{
		Data:  data,
		Shape: []int64{1, int64(len(classes)), int64(numClasses)},
	}}
}

func TestRecognizeEndToEnd(t *testing.T) {
	charset := NewCharset([]string{"2", "5", "0", "g"})
	op := testutil.NewStaticOperator(
		[]int64{1, 48, 320, 3},
		[]int64{1, 6, 5},
		recognitionOutput([]int{1, 2, 0, 3, 3, 4}, 5),
	)
	rec, err := New(DefaultConfig(), op, charset)
	require.NoError(t, err)

	crop := testutil.SolidImage(t, 60, 20, 40, 200, 40)
	result, err := rec.Recognize(crop)
	require.NoError(t, err)

	assert.Equal(t, "250g", result.Text)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)

	require.Len(t, op.Calls, 1)
	assert.Equal(t, []int64{1, 48, 320, 3}, op.Calls[0].Shape)
}

func TestRecognizeNoOutputIsRecoverable(t *testing.T) {
	op := testutil.NewStaticOperator([]int64{1, 48, 320, 3}, []int64{1, 6, 5}, nil)
	rec, err := New(DefaultConfig(), op, DefaultCharset())
	require.NoError(t, err)

	_, err = rec.Recognize(testutil.SolidImage(t, 10, 10, 0, 0, 0))
	assert.ErrorIs(t, err, ErrNoOutput)
}

func TestRecognizeUnsupportedOutputRank(t *testing.T) {
	out := []model.Tensor{{Data: make([]float32, 10), Shape: []int64{10}}}
	op := testutil.NewStaticOperator([]int64{1, 48, 320, 3}, []int64{10}, out)
	rec, err := New(DefaultConfig(), op, DefaultCharset())
	require.NoError(t, err)

	_, err = rec.Recognize(testutil.SolidImage(t, 10, 10, 0, 0, 0))

	var shapeErr *model.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "recognition", shapeErr.Operator)
}

func TestRecognizeMissingDescriptors(t *testing.T) {
	op := testutil.NewStaticOperator([]int64{1, 48, 320, 3}, []int64{1, 6, 5}, nil)
	op.InputInfos = nil
	rec, err := New(DefaultConfig(), op, DefaultCharset())
	require.NoError(t, err)

	_, err = rec.Recognize(testutil.SolidImage(t, 10, 10, 0, 0, 0))
	require.ErrorContains(t, err, "missing input tensor descriptor")

	op = testutil.NewStaticOperator([]int64{1, 48, 320, 3}, []int64{1, 6, 5}, nil)
	op.OutputInfos = nil
	rec, err = New(DefaultConfig(), op, DefaultCharset())
	require.NoError(t, err)

	_, err = rec.Recognize(testutil.SolidImage(t, 10, 10, 0, 0, 0))
	require.ErrorContains(t, err, "missing output tensor descriptor")
}

func TestInputSizeFromDeclaredShape(t *testing.T) {
	tests := []struct {
		name       string
		inputShape []int64
		wantH      int
		wantW      int
	}{
		{"nhwc", []int64{1, 32, 100, 3}, 32, 100},
		{"nchw", []int64{1, 3, 32, 100}, 32, 100},
		{"dynamic", []int64{1, -1, -1, 3}, 48, 320},
		{"rank2", []int64{32, 100}, 48, 320},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := testutil.NewStaticOperator(tt.inputShape, []int64{1, 6, 5}, nil)
			rec, err := New(DefaultConfig(), op, DefaultCharset())
			require.NoError(t, err)

			h, w, err := rec.InputSize()
			require.NoError(t, err)
			assert.Equal(t, tt.wantH, h)
			assert.Equal(t, tt.wantW, w)
		})
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(DefaultConfig(), nil, DefaultCharset())
	assert.Error(t, err)

	op := testutil.NewStaticOperator([]int64{1, 48, 320, 3}, []int64{1, 6, 5}, nil)
	_, err = New(DefaultConfig(), op, nil)
	assert.Error(t, err)
	_, err = New(DefaultConfig(), op, NewCharset(nil))
	assert.Error(t, err)
	_, err = New(Config{ImageHeight: 0, ImageWidth: 320}, op, DefaultCharset())
	assert.Error(t, err)
}
