package pipeline

import (
	"time"

	"github.com/scalevision/scaleread/internal/detector"
)

// NoDetectionMarker is the combined text when no box yields a fragment.
const NoDetectionMarker = "(no detection)"

// fragmentSeparator joins per-box fragments into the combined text.
const fragmentSeparator = " | "

// TextFragment is the recognition outcome for one detected box.
type TextFragment struct {
	Text          string  `json:"text"`
	DetConfidence float64 `json:"det_confidence"`
	RecConfidence float64 `json:"rec_confidence"`
}

// InferenceResult is the full outcome of one pipeline call. Value and Unit
// are nil when no fragment parsed as a weight reading.
type InferenceResult struct {
	Boxes         []detector.Detection `json:"boxes"`
	Fragments     []TextFragment       `json:"fragments"`
	Combined      string               `json:"combined"`
	Value         *string              `json:"value"`
	Unit          *string              `json:"unit"`
	RecConfidence float64              `json:"rec_confidence"`
	Duration      time.Duration        `json:"duration"`
}

// HasReading reports whether a numeric value was parsed from the fragments.
func (r *InferenceResult) HasReading() bool {
	return r.Value != nil
}
