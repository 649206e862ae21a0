package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	onnxrt "github.com/yalue/onnxruntime_go"
)

// ONNXOperator executes a single-input, single-output ONNX model through
// ONNX Runtime, exposing it behind the Operator interface. Run is serialized
// with a mutex so one operator handle can be shared by concurrent pipeline
// calls.
type ONNXOperator struct {
	modelPath  string
	session    *onnxrt.DynamicAdvancedSession
	inputInfo  onnxrt.InputOutputInfo
	outputInfo onnxrt.InputOutputInfo
	mu         sync.Mutex
}

// NewONNXOperator loads the model at modelPath and creates an inference
// session. numThreads limits intra-op parallelism when > 0.
func NewONNXOperator(modelPath string, numThreads int) (*ONNXOperator, error) {
	if modelPath == "" {
		return nil, errors.New("model path cannot be empty")
	}
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	if err := setONNXLibraryPath(); err != nil {
		return nil, fmt.Errorf("failed to set ONNX Runtime library path: %w", err)
	}
	if !onnxrt.IsInitialized() {
		if err := onnxrt.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
		}
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("expected 1 input, got %d", len(inputs))
	}
	if len(outputs) != 1 {
		return nil, fmt.Errorf("expected 1 output, got %d", len(outputs))
	}

	sessionOptions, err := onnxrt.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer func() {
		if derr := sessionOptions.Destroy(); derr != nil {
			fmt.Fprintf(os.Stderr, "Error destroying session options: %v\n", derr)
		}
	}()

	if numThreads > 0 {
		if err := sessionOptions.SetIntraOpNumThreads(numThreads); err != nil {
			return nil, fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	session, err := onnxrt.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		sessionOptions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXOperator{
		modelPath:  modelPath,
		session:    session,
		inputInfo:  inputs[0],
		outputInfo: outputs[0],
	}, nil
}

// Inputs returns the declared input descriptors.
func (o *ONNXOperator) Inputs() []TensorInfo {
	return []TensorInfo{{Name: o.inputInfo.Name, Shape: copyShape(o.inputInfo.Dimensions)}}
}

// Outputs returns the declared output descriptors.
func (o *ONNXOperator) Outputs() []TensorInfo {
	return []TensorInfo{{Name: o.outputInfo.Name, Shape: copyShape(o.outputInfo.Dimensions)}}
}

// Run executes one forward pass. The output buffer is copied out of ONNX
// Runtime ownership and coerced to float32 if the model emits another dtype.
func (o *ONNXOperator) Run(input Tensor) ([]Tensor, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil, errors.New("operator session is closed")
	}

	inputTensor, err := onnxrt.NewTensor(onnxrt.NewShape(input.Shape...), input.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer func() { _ = inputTensor.Destroy() }()

	outputs := []onnxrt.Value{nil}
	if err := o.session.Run([]onnxrt.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		for _, v := range outputs {
			if v != nil {
				_ = v.Destroy()
			}
		}
	}()

	out := make([]Tensor, 0, len(outputs))
	for _, v := range outputs {
		if v == nil {
			continue
		}
		data, err := coerceFloat32(v)
		if err != nil {
			return nil, err
		}
		out = append(out, Tensor{Data: data, Shape: copyShape(v.GetShape())})
	}
	return out, nil
}

// Close releases the underlying session.
func (o *ONNXOperator) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil {
		if err := o.session.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying session: %v\n", err)
		}
		o.session = nil
	}
	return nil
}

// ModelPath returns the path the operator was loaded from.
func (o *ONNXOperator) ModelPath() string { return o.modelPath }

func copyShape(shape []int64) []int64 {
	out := make([]int64, len(shape))
	copy(out, shape)
	return out
}

func coerceFloat32(v onnxrt.Value) ([]float32, error) {
	switch t := v.(type) {
	case *onnxrt.Tensor[float32]:
		data := t.GetData()
		out := make([]float32, len(data))
		copy(out, data)
		return out, nil
	case *onnxrt.Tensor[float64]:
		return convertFloat32(t.GetData()), nil
	case *onnxrt.Tensor[int64]:
		return convertFloat32(t.GetData()), nil
	case *onnxrt.Tensor[int32]:
		return convertFloat32(t.GetData()), nil
	case *onnxrt.Tensor[uint8]:
		return convertFloat32(t.GetData()), nil
	default:
		return nil, fmt.Errorf("unsupported output tensor type %T", v)
	}
}

func convertFloat32[T float64 | int64 | int32 | uint8](data []T) []float32 {
	out := make([]float32, len(data))
	for i, x := range data {
		out[i] = float32(x)
	}
	return out
}

// setONNXLibraryPath sets the onnxruntime shared library path from common locations.
func setONNXLibraryPath() error {
	if path := findSystemLibraryPath(); path != "" {
		onnxrt.SetSharedLibraryPath(path)
		return nil
	}

	root, err := findProjectRoot()
	if err != nil {
		return err
	}
	libPath, err := getProjectLibraryPath(root)
	if err != nil {
		return err
	}
	onnxrt.SetSharedLibraryPath(libPath)
	return nil
}

// findSystemLibraryPath checks common system locations for the ONNX Runtime library.
func findSystemLibraryPath() string {
	systemPaths := []string{
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/libonnxruntime.so",
		"/opt/onnxruntime/cpu/lib/libonnxruntime.so",
	}
	for _, p := range systemPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	root := cwd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root, nil
		}
		parent := filepath.Dir(root)
		if parent == root {
			return "", errors.New("could not find project root")
		}
		root = parent
	}
}

// getProjectLibraryPath constructs the project-relative library path.
func getProjectLibraryPath(root string) (string, error) {
	libName, err := getLibraryName()
	if err != nil {
		return "", err
	}
	libPath := filepath.Join(root, "onnxruntime", "lib", libName)
	if _, err := os.Stat(libPath); err != nil {
		return "", fmt.Errorf("ONNX Runtime library not found at %s", libPath)
	}
	return libPath, nil
}

// getLibraryName returns the appropriate library name for the current OS.
func getLibraryName() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return "libonnxruntime.so", nil
	case "darwin":
		return "libonnxruntime.dylib", nil
	case "windows":
		return "onnxruntime.dll", nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}
