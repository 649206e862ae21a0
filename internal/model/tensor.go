// Package model defines the boundary to the externally executed neural
// network operators: flat float tensors, operator descriptors, and the
// accepted output layouts.
package model

import (
	"errors"
	"fmt"
)

// Tensor is a flat float32 buffer with its declared shape, row-major.
// Image tensors use NHWC with interleaved channels.
type Tensor struct {
	Data  []float32
	Shape []int64
}

// NewImageTensor builds a single-image tensor with shape [1, H, W, 3].
// data must be length H*W*3 in interleaved row-major order.
func NewImageTensor(data []float32, h, w int) (Tensor, error) {
	if data == nil {
		return Tensor{}, errors.New("nil data")
	}
	expected := h * w * 3
	if len(data) != expected {
		return Tensor{}, fmt.Errorf("unexpected data length: got %d, want %d", len(data), expected)
	}
	return Tensor{Data: data, Shape: []int64{1, int64(h), int64(w), 3}}, nil
}

// TensorInfo describes one declared operator input or output.
type TensorInfo struct {
	Name  string
	Shape []int64
}

// Operator is an opaque neural network invocation: one input tensor in, a
// list of output tensors out. The pipeline reads Inputs()[0].Shape and
// Outputs()[0].Shape before invocation to select preprocessing parameters
// and treats the first returned tensor as the raw output buffer.
//
// Implementations decide their own thread safety; the pipeline issues calls
// strictly sequentially within one inference.
type Operator interface {
	Inputs() []TensorInfo
	Outputs() []TensorInfo
	Run(input Tensor) ([]Tensor, error)
}
