// Package pipeline sequences detection, per-box recognition and reading
// extraction into a single inference call over one image.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/scalevision/scaleread/internal/detector"
	"github.com/scalevision/scaleread/internal/model"
	"github.com/scalevision/scaleread/internal/recognizer"
)

// Config holds configuration for the inference pipeline and its components.
type Config struct {
	DetectorModelPath   string
	RecognizerModelPath string
	DictionaryPath      string // empty selects the built-in scale-display charset
	NumThreads          int
	Detector            detector.Config
	Recognizer          recognizer.Config
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		NumThreads: 1,
		Detector:   detector.DefaultConfig(),
		Recognizer: recognizer.DefaultConfig(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithDetectorModelPath overrides the detection model path.
func (b *Builder) WithDetectorModelPath(path string) *Builder {
	if path != "" {
		b.cfg.DetectorModelPath = path
	}
	return b
}

// WithRecognizerModelPath overrides the recognition model path.
func (b *Builder) WithRecognizerModelPath(path string) *Builder {
	if path != "" {
		b.cfg.RecognizerModelPath = path
	}
	return b
}

// WithDictionaryPath overrides the recognition dictionary path.
func (b *Builder) WithDictionaryPath(path string) *Builder {
	if path != "" {
		b.cfg.DictionaryPath = path
	}
	return b
}

// WithNumThreads sets the intra-op thread count for both operators.
func (b *Builder) WithNumThreads(n int) *Builder {
	if n > 0 {
		b.cfg.NumThreads = n
	}
	return b
}

// WithConfidenceThreshold sets the detection confidence cutoff.
func (b *Builder) WithConfidenceThreshold(thresh float64) *Builder {
	if thresh > 0 {
		b.cfg.Detector.ConfThreshold = thresh
	}
	return b
}

// WithIoUThreshold sets the NMS overlap threshold.
func (b *Builder) WithIoUThreshold(thresh float64) *Builder {
	if thresh > 0 {
		b.cfg.Detector.IoUThreshold = thresh
	}
	return b
}

// Config returns a copy of the builder's current configuration.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that the configured model files exist.
func (b *Builder) Validate() error {
	for name, path := range map[string]string{
		"detector":   b.cfg.DetectorModelPath,
		"recognizer": b.cfg.RecognizerModelPath,
	} {
		if path == "" {
			return fmt.Errorf("%s model path is not set", name)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s model: %w", name, err)
		}
	}
	return nil
}

// Build initializes the operators and assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	charset := recognizer.DefaultCharset()
	if b.cfg.DictionaryPath != "" {
		var err error
		charset, err = recognizer.LoadCharset(b.cfg.DictionaryPath)
		if err != nil {
			return nil, fmt.Errorf("init dictionary: %w", err)
		}
	}

	detOp, err := model.NewONNXOperator(b.cfg.DetectorModelPath, b.cfg.NumThreads)
	if err != nil {
		return nil, fmt.Errorf("init detection operator: %w", err)
	}
	recOp, err := model.NewONNXOperator(b.cfg.RecognizerModelPath, b.cfg.NumThreads)
	if err != nil {
		_ = detOp.Close()
		return nil, fmt.Errorf("init recognition operator: %w", err)
	}

	det, err := detector.New(b.cfg.Detector, detOp)
	if err != nil {
		_ = detOp.Close()
		_ = recOp.Close()
		return nil, fmt.Errorf("init detector: %w", err)
	}
	rec, err := recognizer.New(b.cfg.Recognizer, recOp, charset)
	if err != nil {
		_ = detOp.Close()
		_ = recOp.Close()
		return nil, fmt.Errorf("init recognizer: %w", err)
	}

	p, err := New(det, rec)
	if err != nil {
		_ = detOp.Close()
		_ = recOp.Close()
		return nil, err
	}
	p.closers = []io.Closer{detOp, recOp}
	return p, nil
}

// Pipeline runs the full image-to-reading inference sequence.
type Pipeline struct {
	detector   *detector.Detector
	recognizer *recognizer.Recognizer
	closers    []io.Closer
}

// New assembles a pipeline from already constructed components. The pipeline
// does not take ownership of the components' operators.
func New(det *detector.Detector, rec *recognizer.Recognizer) (*Pipeline, error) {
	if det == nil {
		return nil, errors.New("detector is nil")
	}
	if rec == nil {
		return nil, errors.New("recognizer is nil")
	}
	return &Pipeline{detector: det, recognizer: rec}, nil
}

// Close releases operator resources owned by the pipeline.
func (p *Pipeline) Close() error {
	var errs []error
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}
