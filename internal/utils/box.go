package utils

import "math"

// Box represents an axis-aligned bounding box in float coordinates.
type Box struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// NewBox constructs a Box from min/max coordinates ensuring ordering.
func NewBox(x1, y1, x2, y2 float64) Box {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Box{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Area returns the box area, never negative.
func (b Box) Area() float64 {
	w := math.Max(0, b.Width())
	h := math.Max(0, b.Height())
	return w * h
}

// iouEpsilon keeps the union denominator strictly positive for
// degenerate boxes.
const iouEpsilon = 1e-6

// IoU computes Intersection over Union for two boxes. Intersection width and
// height are clamped to zero before multiplying.
func IoU(a, b Box) float64 {
	interW := math.Max(0, math.Min(a.MaxX, b.MaxX)-math.Max(a.MinX, b.MinX))
	interH := math.Max(0, math.Min(a.MaxY, b.MaxY)-math.Max(a.MinY, b.MinY))
	inter := interW * interH
	return inter / (a.Area() + b.Area() - inter + iouEpsilon)
}
