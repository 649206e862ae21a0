package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scalevision/scaleread/internal/batch"
	"github.com/scalevision/scaleread/internal/detector"
	"github.com/scalevision/scaleread/internal/pipeline"
	"github.com/scalevision/scaleread/internal/utils"
)

// imageCmd reads one or more image files.
var imageCmd = &cobra.Command{
	Use:   "image [files...]",
	Short: "Read scale displays from image files",
	Long: `Process one or more image files and print the recognized weight reading.

Supported formats: JPEG, PNG, BMP

Examples:
  scaleread image photo.jpg
  scaleread image a.jpg b.jpg --format json
  scaleread image photo.jpg --output result.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}
		cfg := GetConfig()

		pl, err := pipeline.NewBuilder().WithConfig(cfg.ToPipelineConfig()).Build()
		if err != nil {
			return fmt.Errorf("failed to build pipeline: %w", err)
		}
		defer func() {
			if cerr := pl.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "Error closing pipeline: %v\n", cerr)
			}
		}()

		start := time.Now()
		files := make([]batch.FileResult, 0, len(args))
		for _, path := range args {
			files = append(files, readOneImage(pl, path, cfg.Pipeline.MaxImageSize))
		}
		result := &batch.Result{Files: files, Duration: time.Since(start), Workers: 1}

		out, err := batch.FormatResults(result, cfg.Output.Format)
		if err != nil {
			return fmt.Errorf("failed to format results: %w", err)
		}
		return batch.WriteOutput(out, cfg.Output.File)
	},
}

func readOneImage(pl *pipeline.Pipeline, path string, maxImageSize int) batch.FileResult {
	img, _, err := utils.LoadImageMax(path, maxImageSize)
	if err != nil {
		return batch.FileResult{Path: path, Error: err.Error()}
	}
	res, err := pl.Process(img)
	if err != nil {
		return batch.FileResult{Path: path, Error: err.Error()}
	}
	return batch.FileResult{Path: path, Result: res}
}

func init() {
	rootCmd.AddCommand(imageCmd)

	imageCmd.Flags().StringP("format", "f", "text", "output format (text, json, yaml)")
	imageCmd.Flags().StringP("output", "o", "", "write output to file instead of stdout")
	// Flag default mirrors the config default: an unchanged bound flag sits
	// above SetDefault in viper's precedence.
	imageCmd.Flags().Float64("confidence", detector.DefaultConfig().ConfThreshold,
		"detection confidence threshold")

	_ = viper.BindPFlag("output.format", imageCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.file", imageCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("pipeline.detector.conf_threshold", imageCmd.Flags().Lookup("confidence"))
}
