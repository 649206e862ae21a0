// Package batch reads scale displays from many image files in one run.
package batch

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/scalevision/scaleread/internal/pipeline"
)

// Config holds all configuration for batch processing.
type Config struct {
	Pipeline        pipeline.Config
	Workers         int
	ContinueOnError bool
	Recursive       bool
	MaxImageSize    int
	Format          string
	OutputFile      string
}

// FileResult pairs one input file with its inference outcome or error.
type FileResult struct {
	Path   string                    `json:"path" yaml:"path"`
	Result *pipeline.InferenceResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string                    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result holds the outcome of one batch run.
type Result struct {
	Files    []FileResult  `json:"files" yaml:"files"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Workers  int           `json:"workers" yaml:"workers"`
}

// ProcessBatch discovers image files, builds a pipeline and processes every
// file, in input order.
func ProcessBatch(paths []string, config *Config) (*Result, error) {
	files, err := discoverImageFiles(paths, config.Recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}

	pl, err := pipeline.NewBuilder().WithConfig(config.Pipeline).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer func() {
		if cerr := pl.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "Error closing pipeline: %v\n", cerr)
		}
	}()

	start := time.Now()
	results, err := processFiles(pl, files, config)
	if err != nil {
		return nil, err
	}

	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	return &Result{
		Files:    results,
		Duration: time.Since(start),
		Workers:  workers,
	}, nil
}
