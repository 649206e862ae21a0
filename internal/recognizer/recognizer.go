// Package recognizer decodes the output of an external text-recognition
// operator into text fragments with per-character confidence.
package recognizer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/scalevision/scaleread/internal/model"
	"github.com/scalevision/scaleread/internal/utils"
)

// ErrNoOutput reports a recognition invocation that returned zero outputs.
// Callers skip the affected box instead of aborting the whole call.
var ErrNoOutput = errors.New("recognition operator returned no outputs")

// Config holds configuration for the text recognizer.
type Config struct {
	ImageHeight int // model input height, used when the model declares a dynamic shape
	ImageWidth  int // model input width, used when the model declares a dynamic shape
}

// DefaultConfig returns a default recognizer configuration.
func DefaultConfig() Config {
	return Config{
		ImageHeight: 48,
		ImageWidth:  320,
	}
}

// Recognizer runs the recognition stage against an external operator.
type Recognizer struct {
	config  Config
	op      model.Operator
	charset *Charset
}

// New creates a recognizer bound to the given operator and dictionary.
func New(config Config, op model.Operator, charset *Charset) (*Recognizer, error) {
	if op == nil {
		return nil, errors.New("recognition operator is nil")
	}
	if charset == nil || charset.Size() == 0 {
		return nil, errors.New("recognition dictionary is empty")
	}
	if config.ImageHeight <= 0 || config.ImageWidth <= 0 {
		return nil, fmt.Errorf("invalid recognizer input size %dx%d", config.ImageWidth, config.ImageHeight)
	}
	return &Recognizer{config: config, op: op, charset: charset}, nil
}

// Config returns a copy of the recognizer configuration.
func (r *Recognizer) Config() Config { return r.config }

// Charset returns the dictionary the recognizer decodes with.
func (r *Recognizer) Charset() *Charset { return r.charset }

// InputSize resolves the model input height and width from the operator's
// declared input shape, falling back to the configured size for dynamic
// dimensions. A missing input descriptor is a fatal contract violation.
func (r *Recognizer) InputSize() (height, width int, err error) {
	inputs := r.op.Inputs()
	if len(inputs) == 0 {
		return 0, 0, errors.New("recognition operator: missing input tensor descriptor")
	}
	h, w := inferInputSize(inputs[0].Shape, r.config.ImageHeight, r.config.ImageWidth)
	return h, w, nil
}

// Result is the decoded text for one crop.
type Result struct {
	Text       string
	Confidence float64
}

// Recognize runs preprocessing, the external operator, and CTC decoding on a
// single crop. A zero-output invocation returns ErrNoOutput; descriptor and
// shape violations return other errors and should abort the caller.
func (r *Recognizer) Recognize(crop *utils.Image) (Result, error) {
	height, width, err := r.InputSize()
	if err != nil {
		return Result{}, err
	}
	if len(r.op.Outputs()) == 0 {
		return Result{}, errors.New("recognition operator: missing output tensor descriptor")
	}

	pre, err := Preprocess(crop, height, width)
	if err != nil {
		return Result{}, fmt.Errorf("recognition preprocess: %w", err)
	}
	defer pre.Release()

	outs, err := r.op.Run(pre.Tensor)
	if err != nil {
		return Result{}, fmt.Errorf("recognition inference: %w", err)
	}
	if len(outs) == 0 {
		return Result{}, ErrNoOutput
	}

	layout, err := model.ResolveOutputLayout("recognition", outs[0].Shape)
	if err != nil {
		return Result{}, err
	}

	decoded := DecodeGreedy(outs[0].Data, layout, r.charset)
	slog.Debug("recognition completed",
		"text", decoded.Text,
		"confidence", decoded.Confidence,
		"timesteps", layout.Rows)
	return Result{Text: decoded.Text, Confidence: decoded.Confidence}, nil
}

// inferInputSize extracts height and width from an NHWC or NCHW rank-4
// shape. Dynamic (<=0) dimensions fall back to the configured defaults.
func inferInputSize(shape []int64, fallbackH, fallbackW int) (int, int) {
	h, w := fallbackH, fallbackW
	if len(shape) == 4 {
		switch {
		case shape[3] == 3: // NHWC
			if shape[1] > 0 {
				h = int(shape[1])
			}
			if shape[2] > 0 {
				w = int(shape[2])
			}
		case shape[1] == 3: // NCHW
			if shape[2] > 0 {
				h = int(shape[2])
			}
			if shape[3] > 0 {
				w = int(shape[3])
			}
		}
	}
	return h, w
}
