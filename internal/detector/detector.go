// Package detector decodes the output of an external text-detection operator
// into scored boxes in source-image coordinates.
package detector

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/scalevision/scaleread/internal/model"
	"github.com/scalevision/scaleread/internal/utils"
)

// Config holds configuration for the box detector.
type Config struct {
	InputSize     int     // square model input edge, used when the model declares a dynamic shape
	ConfThreshold float64 // candidates scoring at or below this are discarded
	IoUThreshold  float64 // greedy NMS overlap threshold
}

// DefaultConfig returns a default detector configuration.
func DefaultConfig() Config {
	return Config{
		InputSize:     640,
		ConfThreshold: 0.25,
		IoUThreshold:  0.45,
	}
}

// Detector runs the detection stage against an external operator.
type Detector struct {
	config Config
	op     model.Operator
}

// New creates a detector bound to the given operator.
func New(config Config, op model.Operator) (*Detector, error) {
	if op == nil {
		return nil, errors.New("detection operator is nil")
	}
	if config.InputSize <= 0 {
		return nil, fmt.Errorf("invalid detector input size %d", config.InputSize)
	}
	return &Detector{config: config, op: op}, nil
}

// Config returns a copy of the detector configuration.
func (d *Detector) Config() Config { return d.config }

// InputSize resolves the square input edge from the operator's declared
// input shape, falling back to the configured size for dynamic dimensions.
// A missing input descriptor is a fatal contract violation.
func (d *Detector) InputSize() (int, error) {
	inputs := d.op.Inputs()
	if len(inputs) == 0 {
		return 0, errors.New("detection operator: missing input tensor descriptor")
	}
	return inferSquareInput(inputs[0].Shape, d.config.InputSize), nil
}

// Detect runs preprocessing, the external operator, and postprocessing,
// returning surviving boxes in source-image pixel coordinates ordered by
// descending confidence.
func (d *Detector) Detect(img *utils.Image) ([]Detection, error) {
	inputSize, err := d.InputSize()
	if err != nil {
		return nil, err
	}
	if len(d.op.Outputs()) == 0 {
		return nil, errors.New("detection operator: missing output tensor descriptor")
	}

	pre, err := Preprocess(img, inputSize)
	if err != nil {
		return nil, fmt.Errorf("detection preprocess: %w", err)
	}
	defer pre.Release()

	outs, err := d.op.Run(pre.Tensor)
	if err != nil {
		return nil, fmt.Errorf("detection inference: %w", err)
	}
	if len(outs) == 0 {
		return nil, errors.New("detection operator returned no outputs")
	}

	layout, err := model.ResolveOutputLayout("detection", outs[0].Shape)
	if err != nil {
		return nil, err
	}

	candidates := DecodeCandidates(outs[0].Data, layout, inputSize, d.config.ConfThreshold)
	kept := NonMaxSuppression(candidates, d.config.IoUThreshold)
	boxes := InverseMap(kept, pre.Scale, pre.PadW, pre.PadH, img.Width, img.Height)

	slog.Debug("detection completed",
		"candidates", len(candidates),
		"after_nms", len(kept),
		"boxes", len(boxes))
	return boxes, nil
}

// inferSquareInput extracts the input edge from an NHWC or NCHW rank-4
// shape. Dynamic (<=0) dimensions fall back to the configured default.
func inferSquareInput(shape []int64, fallback int) int {
	if len(shape) == 4 {
		var edge int64
		switch {
		case shape[3] == 3: // NHWC
			edge = shape[1]
		case shape[1] == 3: // NCHW
			edge = shape[2]
		}
		if edge > 0 {
			return int(edge)
		}
	}
	return fallback
}
