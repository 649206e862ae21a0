package batch

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/scalevision/scaleread/internal/pipeline"
	"github.com/scalevision/scaleread/internal/utils"
)

// processor is the slice of the pipeline the batch runner needs.
type processor interface {
	Process(img *utils.Image) (*pipeline.InferenceResult, error)
}

// processFiles runs every file through the pipeline, preserving input order.
// With Workers > 1 files run concurrently; the pipeline's operators serialize
// their own invocations so sharing one pipeline is safe.
func processFiles(pl processor, files []string, config *Config) ([]FileResult, error) {
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	results := make([]FileResult, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = processOneFile(pl, files[i], config.MaxImageSize)
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if !config.ContinueOnError {
		for _, r := range results {
			if r.Error != "" {
				return nil, fmt.Errorf("processing %s: %s", r.Path, r.Error)
			}
		}
	}
	return results, nil
}

func processOneFile(pl processor, path string, maxImageSize int) FileResult {
	img, _, err := utils.LoadImageMax(path, maxImageSize)
	if err != nil {
		slog.Warn("failed to load image", "file", path, "error", err)
		return FileResult{Path: path, Error: err.Error()}
	}
	res, err := pl.Process(img)
	if err != nil {
		slog.Warn("inference failed", "file", path, "error", err)
		return FileResult{Path: path, Error: err.Error()}
	}
	return FileResult{Path: path, Result: res}
}
