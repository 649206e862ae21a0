// Package config loads and validates scaleread configuration from files,
// environment variables and flags.
package config

import (
	"fmt"

	"github.com/scalevision/scaleread/internal/detector"
	"github.com/scalevision/scaleread/internal/pipeline"
	"github.com/scalevision/scaleread/internal/recognizer"
	"github.com/scalevision/scaleread/internal/utils"
)

// validOutputFormats are the formats the output writers understand.
var validOutputFormats = map[string]bool{
	"text": true,
	"json": true,
	"yaml": true,
}

// DefaultConfig returns the application defaults.
func DefaultConfig() *Config {
	det := detector.DefaultConfig()
	rec := recognizer.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Pipeline: PipelineConfig{
			Detector: DetectorConfig{
				InputSize:     det.InputSize,
				ConfThreshold: det.ConfThreshold,
				IoUThreshold:  det.IoUThreshold,
			},
			Recognizer: RecognizerConfig{
				ImageHeight: rec.ImageHeight,
				ImageWidth:  rec.ImageWidth,
			},
			NumThreads:   1,
			MaxImageSize: utils.DefaultMaxDimension,
		},
		Output: OutputConfig{Format: "text"},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     20,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
		Batch: BatchConfig{
			Workers:         1,
			ContinueOnError: true,
		},
	}
}

// Validate checks configuration value ranges. Model paths are validated at
// pipeline build time, not here, so commands that never build a pipeline can
// run without models.
func (c *Config) Validate() error {
	if !validOutputFormats[c.Output.Format] {
		return fmt.Errorf("invalid output format %q (want text, json or yaml)", c.Output.Format)
	}
	if c.Pipeline.Detector.InputSize <= 0 {
		return fmt.Errorf("detector input size must be positive, got %d", c.Pipeline.Detector.InputSize)
	}
	if t := c.Pipeline.Detector.ConfThreshold; t < 0 || t > 1 {
		return fmt.Errorf("confidence threshold must be in [0,1], got %g", t)
	}
	if t := c.Pipeline.Detector.IoUThreshold; t < 0 || t > 1 {
		return fmt.Errorf("iou threshold must be in [0,1], got %g", t)
	}
	if c.Pipeline.Recognizer.ImageHeight <= 0 || c.Pipeline.Recognizer.ImageWidth <= 0 {
		return fmt.Errorf("recognizer input size must be positive, got %dx%d",
			c.Pipeline.Recognizer.ImageWidth, c.Pipeline.Recognizer.ImageHeight)
	}
	if c.Pipeline.NumThreads < 1 {
		return fmt.Errorf("num_threads must be at least 1, got %d", c.Pipeline.NumThreads)
	}
	if c.Pipeline.MaxImageSize < 1 {
		return fmt.Errorf("max_image_size must be at least 1, got %d", c.Pipeline.MaxImageSize)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.Batch.Workers)
	}
	return nil
}

// ToPipelineConfig translates the loaded configuration into the pipeline's
// component configuration.
func (c *Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		DetectorModelPath:   c.Pipeline.Detector.ModelPath,
		RecognizerModelPath: c.Pipeline.Recognizer.ModelPath,
		DictionaryPath:      c.Pipeline.DictionaryPath,
		NumThreads:          c.Pipeline.NumThreads,
		Detector: detector.Config{
			InputSize:     c.Pipeline.Detector.InputSize,
			ConfThreshold: c.Pipeline.Detector.ConfThreshold,
			IoUThreshold:  c.Pipeline.Detector.IoUThreshold,
		},
		Recognizer: recognizer.Config{
			ImageHeight: c.Pipeline.Recognizer.ImageHeight,
			ImageWidth:  c.Pipeline.Recognizer.ImageWidth,
		},
	}
}
