package testutil

import (
	"errors"

	"github.com/scalevision/scaleread/internal/model"
)

// StaticOperator is a model.Operator returning canned tensors, used to drive
// the pipeline without a real inference engine. Run replays Results in order
// and sticks to the last entry once exhausted.
type StaticOperator struct {
	InputInfos  []model.TensorInfo
	OutputInfos []model.TensorInfo
	Results     [][]model.Tensor
	RunErr      error

	// Calls records every input tensor Run received.
	Calls []model.Tensor

	next int
}

// NewStaticOperator builds an operator with single input/output descriptors
// and a fixed result for every Run call.
func NewStaticOperator(inputShape, outputShape []int64, result []model.Tensor) *StaticOperator {
	return &StaticOperator{
		InputInfos:  []model.TensorInfo{{Name: "input", Shape: inputShape}},
		OutputInfos: []model.TensorInfo{{Name: "output", Shape: outputShape}},
		Results:     [][]model.Tensor{result},
	}
}

// Inputs implements model.Operator.
func (s *StaticOperator) Inputs() []model.TensorInfo { return s.InputInfos }

// Outputs implements model.Operator.
func (s *StaticOperator) Outputs() []model.TensorInfo { return s.OutputInfos }

// Run implements model.Operator.
func (s *StaticOperator) Run(input model.Tensor) ([]model.Tensor, error) {
	s.Calls = append(s.Calls, input)
	if s.RunErr != nil {
		return nil, s.RunErr
	}
	if len(s.Results) == 0 {
		return nil, errors.New("static operator has no results configured")
	}
	i := s.next
	if i >= len(s.Results) {
		i = len(s.Results) - 1
	}
	s.next++
	return s.Results[i], nil
}
