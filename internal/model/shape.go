package model

import "fmt"

// LayoutKind tags the accepted output tensor ranks.
type LayoutKind int

const (
	// Shape2D is a plain rows x cols output.
	Shape2D LayoutKind = iota
	// Shape3DBatch1 is rows x cols behind a leading batch dimension of 1.
	Shape3DBatch1
)

// OutputLayout is the resolved view of an operator output shape. It is
// resolved once per call and drives every subsequent read of the buffer.
type OutputLayout struct {
	Kind LayoutKind
	Rows int
	Cols int
}

// ShapeError reports an output shape the pipeline cannot interpret. It names
// the operator so the caller knows which model violated the contract.
type ShapeError struct {
	Operator string
	Shape    []int64
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s operator: unsupported output shape %v (want [rows cols] or [1 rows cols])", e.Operator, e.Shape)
}

// ResolveOutputLayout accepts rank-2 shapes and rank-3 shapes with a leading
// batch of 1; anything else is a fatal contract violation.
func ResolveOutputLayout(operator string, shape []int64) (OutputLayout, error) {
	switch len(shape) {
	case 2:
		return OutputLayout{Kind: Shape2D, Rows: int(shape[0]), Cols: int(shape[1])}, nil
	case 3:
		if shape[0] != 1 {
			return OutputLayout{}, &ShapeError{Operator: operator, Shape: shape}
		}
		return OutputLayout{Kind: Shape3DBatch1, Rows: int(shape[1]), Cols: int(shape[2])}, nil
	default:
		return OutputLayout{}, &ShapeError{Operator: operator, Shape: shape}
	}
}
