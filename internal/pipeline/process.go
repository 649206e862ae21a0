package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/scalevision/scaleread/internal/common"
	"github.com/scalevision/scaleread/internal/reading"
	"github.com/scalevision/scaleread/internal/recognizer"
	"github.com/scalevision/scaleread/internal/utils"
)

// Process runs detection, recognizes every surviving box in order, and parses
// the combined text into a weight reading.
//
// A box whose crop degenerates to empty or whose recognition invocation
// returns zero outputs contributes no fragment; the remaining boxes still
// run. Missing descriptors and unsupported output shapes abort the call.
func (p *Pipeline) Process(img *utils.Image) (*InferenceResult, error) {
	timer := common.NewNamedTimer("inference")

	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil, &utils.ImageError{Operation: "process", Err: utils.ErrEmptyImage}
	}

	boxes, err := p.detector.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("detection stage: %w", err)
	}

	fragments := make([]TextFragment, 0, len(boxes))
	for i, det := range boxes {
		crop := utils.CropImage(img, det.Box)
		if crop == nil {
			slog.Debug("skipping box with empty crop", "box", i)
			continue
		}
		res, err := p.recognizer.Recognize(crop)
		if errors.Is(err, recognizer.ErrNoOutput) {
			slog.Debug("skipping box with no recognition output", "box", i)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("recognition stage, box %d: %w", i, err)
		}
		fragments = append(fragments, TextFragment{
			Text:          res.Text,
			DetConfidence: det.Confidence,
			RecConfidence: res.Confidence,
		})
	}

	result := &InferenceResult{
		Boxes:     boxes,
		Fragments: fragments,
		Combined:  NoDetectionMarker,
	}
	if len(fragments) > 0 {
		parts := make([]string, len(fragments))
		for i, f := range fragments {
			parts[i] = f.Text
			if f.RecConfidence > result.RecConfidence {
				result.RecConfidence = f.RecConfidence
			}
		}
		result.Combined = strings.Join(parts, fragmentSeparator)
		if r, ok := reading.Parse(result.Combined); ok {
			result.Value = &r.Value
			result.Unit = &r.Unit
		}
	}

	result.Duration = timer.Stop()
	slog.Debug("inference completed",
		"boxes", len(boxes),
		"fragments", len(fragments),
		"combined", result.Combined,
		"duration", result.Duration)
	return result, nil
}
