package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalevision/scaleread/internal/detector"
	"github.com/scalevision/scaleread/internal/model"
	"github.com/scalevision/scaleread/internal/recognizer"
	"github.com/scalevision/scaleread/internal/testutil"
)

// detectionOutput builds a [1, 5, len(cands)] attribute-major tensor of
// cx,cy,w,h,conf candidates, the channel-first orientation detectors with
// few attribute rows emit.
func detectionOutput(cands [][5]float32) []model.Tensor {
	n := len(cands)
	data := make([]float32, 5*n)
	for i, c := range cands {
		for attr, v := range c {
			data[attr*n+i] = v
		}
	}
	return []model.Tensor{{Data: data, Shape: []int64{1, 5, int64(n)}}}
}

// rowMajorDetectionOutput builds a [1, N, 5] candidate-major tensor, padded
// with below-threshold rows so the row count cannot be mistaken for a small
// attribute-row block.
func rowMajorDetectionOutput(cands [][5]float32) []model.Tensor {
	const minRows = 8
	data := make([]float32, 0, minRows*5)
	for _, c := range cands {
		data = append(data, c[:]...)
	}
	rows := len(cands)
	for ; rows < minRows; rows++ {
		data = append(data, 1, 1, 1, 1, 0)
	}
	return []model.Tensor{{Data: data, Shape: []int64{1, int64(rows), 5}}}
}

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

func newTestPipeline(t *testing.T, detOut, recOut []model.Tensor, chars []string) (*Pipeline, *testutil.StaticOperator, *testutil.StaticOperator) {
	t.Helper()
	detOp := testutil.NewStaticOperator([]int64{1, 64, 64, 3}, []int64{1, 5, 1}, detOut)
	recOp := testutil.NewStaticOperator([]int64{1, 48, 320, 3}, []int64{1, 6, 5}, recOut)

	det, err := detector.New(detector.DefaultConfig(), detOp)
	require.NoError(t, err)
	rec, err := recognizer.New(recognizer.DefaultConfig(), recOp, recognizer.NewCharset(chars))
	require.NoError(t, err)

	p, err := New(det, rec)
	require.NoError(t, err)
	return p, detOp, recOp
}

func TestProcessReadsWeightFromSingleBox(t *testing.T) {
	// One pixel-unit candidate centered in the 64x64 input space.
	detOut := detectionOutput([][5]float32{{32, 32, 16, 16, 0.9}})
	recOut := recognitionOutput([]int{1, 2, 0, 3, 3, 4}, 5)
	p, _, recOp := newTestPipeline(t, detOut, recOut, []string{"2", "5", "0", "g"})

	img := testutil.SolidImage(t, 100, 100, 180, 200, 180)
	result, err := p.Process(img)
	require.NoError(t, err)

	require.Len(t, result.Boxes, 1)
	require.Len(t, result.Fragments, 1)
	assert.Equal(t, "250g", result.Fragments[0].Text)
	assert.InDelta(t, 0.9, result.Fragments[0].DetConfidence, 1e-6)
	assert.Equal(t, "250g", result.Combined)
	require.NotNil(t, result.Value)
	require.NotNil(t, result.Unit)
	assert.Equal(t, "250", *result.Value)
	assert.Equal(t, "g", *result.Unit)
	assert.InDelta(t, 1.0, result.RecConfidence, 1e-9)
	assert.Positive(t, result.Duration)

	require.Len(t, recOp.Calls, 1)
	assert.Equal(t, []int64{1, 48, 320, 3}, recOp.Calls[0].Shape)
}

func TestProcessReadsWeightFromRowMajorOutput(t *testing.T) {
	// Same candidate as above, but emitted candidate-major with padding rows.
	detOut := rowMajorDetectionOutput([][5]float32{{32, 32, 16, 16, 0.9}})
	recOut := recognitionOutput([]int{1, 2, 0, 3, 3, 4}, 5)
	p, _, _ := newTestPipeline(t, detOut, recOut, []string{"2", "5", "0", "g"})

	result, err := p.Process(testutil.SolidImage(t, 100, 100, 180, 200, 180))
	require.NoError(t, err)

	require.Len(t, result.Boxes, 1)
	require.Len(t, result.Fragments, 1)
	assert.Equal(t, "250g", result.Combined)
}

func TestProcessNoDetections(t *testing.T) {
	// Every candidate scores below the confidence threshold.
	detOut := detectionOutput([][5]float32{{32, 32, 16, 16, 0.1}, {10, 10, 4, 4, 0.05}})
	recOut := recognitionOutput([]int{1}, 5)
	p, _, recOp := newTestPipeline(t, detOut, recOut, []string{"2", "5", "0", "g"})

	result, err := p.Process(testutil.SolidImage(t, 100, 100, 0, 0, 0))
	require.NoError(t, err)

	assert.Empty(t, result.Boxes)
	assert.Empty(t, result.Fragments)
	assert.Equal(t, NoDetectionMarker, result.Combined)
	assert.Nil(t, result.Value)
	assert.Nil(t, result.Unit)
	assert.Zero(t, result.RecConfidence)
	assert.Empty(t, recOp.Calls)
}

func TestProcessJoinsFragments(t *testing.T) {
	detOut := detectionOutput([][5]float32{
		{16, 16, 12, 12, 0.9},
		{48, 48, 12, 12, 0.8},
	})
	recOut := recognitionOutput([]int{1, 2}, 4)
	p, _, _ := newTestPipeline(t, detOut, recOut, []string{"1", "2", "3"})

	result, err := p.Process(testutil.SolidImage(t, 100, 100, 0, 0, 0))
	require.NoError(t, err)

	require.Len(t, result.Fragments, 2)
	assert.Equal(t, "12 | 12", result.Combined)
	require.NotNil(t, result.Value)
	assert.Equal(t, "12", *result.Value)
}

func TestProcessSkipsBoxWithNoRecognitionOutput(t *testing.T) {
	detOut := detectionOutput([][5]float32{{32, 32, 16, 16, 0.9}})
	p, _, _ := newTestPipeline(t, detOut, nil, []string{"1"})

	result, err := p.Process(testutil.SolidImage(t, 100, 100, 0, 0, 0))
	require.NoError(t, err)

	require.Len(t, result.Boxes, 1)
	assert.Empty(t, result.Fragments)
	assert.Equal(t, NoDetectionMarker, result.Combined)
	assert.Nil(t, result.Value)
}

func TestProcessFailsOnBadRecognitionShape(t *testing.T) {
	detOut := detectionOutput([][5]float32{{32, 32, 16, 16, 0.9}})
	recOut := []model.Tensor{{Data: make([]float32, 8), Shape: []int64{2, 2, 2}}}
	p, _, _ := newTestPipeline(t, detOut, recOut, []string{"1"})

	_, err := p.Process(testutil.SolidImage(t, 100, 100, 0, 0, 0))

	var shapeErr *model.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "recognition", shapeErr.Operator)
}

func TestProcessIsIdempotent(t *testing.T) {
	detOut := detectionOutput([][5]float32{{32, 32, 16, 16, 0.9}})
	recOut := recognitionOutput([]int{1, 2, 0, 3, 3, 4}, 5)
	p, _, _ := newTestPipeline(t, detOut, recOut, []string{"2", "5", "0", "g"})

	img := testutil.SolidImage(t, 100, 100, 120, 120, 120)
	first, err := p.Process(img)
	require.NoError(t, err)
	second, err := p.Process(img)
	require.NoError(t, err)

	assert.Equal(t, first.Boxes, second.Boxes)
	assert.Equal(t, first.Fragments, second.Fragments)
	assert.Equal(t, first.Combined, second.Combined)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.Unit, second.Unit)
	assert.InDelta(t, first.RecConfidence, second.RecConfidence, 1e-12)
}

func TestProcessRejectsNilImage(t *testing.T) {
	detOut := detectionOutput([][5]float32{{32, 32, 16, 16, 0.9}})
	p, _, _ := newTestPipeline(t, detOut, nil, []string{"1"})

	_, err := p.Process(nil)
	assert.Error(t, err)
}

func TestNewValidation(t *testing.T) {
	detOp := testutil.NewStaticOperator([]int64{1, 64, 64, 3}, []int64{1, 1, 5}, nil)
	recOp := testutil.NewStaticOperator([]int64{1, 48, 320, 3}, []int64{1, 6, 5}, nil)
	det, err := detector.New(detector.DefaultConfig(), detOp)
	require.NoError(t, err)
	rec, err := recognizer.New(recognizer.DefaultConfig(), recOp, recognizer.DefaultCharset())
	require.NoError(t, err)

	_, err = New(nil, rec)
	assert.Error(t, err)
	_, err = New(det, nil)
	assert.Error(t, err)
}

func TestBuilderConfiguration(t *testing.T) {
	b := NewBuilder().
		WithDetectorModelPath("det.onnx").
		WithRecognizerModelPath("rec.onnx").
		WithDictionaryPath("dict.txt").
		WithNumThreads(4).
		WithConfidenceThreshold(0.5).
		WithIoUThreshold(0.3)

	cfg := b.Config()
	assert.Equal(t, "det.onnx", cfg.DetectorModelPath)
	assert.Equal(t, "rec.onnx", cfg.RecognizerModelPath)
	assert.Equal(t, "dict.txt", cfg.DictionaryPath)
	assert.Equal(t, 4, cfg.NumThreads)
	assert.InDelta(t, 0.5, cfg.Detector.ConfThreshold, 1e-9)
	assert.InDelta(t, 0.3, cfg.Detector.IoUThreshold, 1e-9)
}

func TestBuilderValidateMissingModels(t *testing.T) {
	assert.Error(t, NewBuilder().Validate())
	assert.Error(t, NewBuilder().WithDetectorModelPath("/nonexistent/det.onnx").
		WithRecognizerModelPath("/nonexistent/rec.onnx").Validate())
}
