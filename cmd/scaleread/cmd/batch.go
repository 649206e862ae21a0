package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scalevision/scaleread/internal/batch"
)

// batchCmd reads scale displays from whole directories of images.
var batchCmd = &cobra.Command{
	Use:   "batch [files or directories...]",
	Short: "Read scale displays from many images",
	Long: `Process files and directories of images in one run.

Examples:
  scaleread batch ./shots
  scaleread batch ./shots --recursive --workers 4
  scaleread batch a.jpg b.jpg --format yaml --output readings.yaml`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input paths provided")
		}
		cfg := GetConfig()

		recursive, _ := cmd.Flags().GetBool("recursive")
		result, err := batch.ProcessBatch(args, &batch.Config{
			Pipeline:        cfg.ToPipelineConfig(),
			Workers:         cfg.Batch.Workers,
			ContinueOnError: cfg.Batch.ContinueOnError,
			Recursive:       recursive,
			MaxImageSize:    cfg.Pipeline.MaxImageSize,
			Format:          cfg.Output.Format,
			OutputFile:      cfg.Output.File,
		})
		if err != nil {
			return err
		}

		out, err := batch.FormatResults(result, cfg.Output.Format)
		if err != nil {
			return fmt.Errorf("failed to format results: %w", err)
		}
		return batch.WriteOutput(out, cfg.Output.File)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolP("recursive", "r", false, "recurse into subdirectories")
	batchCmd.Flags().Int("workers", 1, "number of concurrent workers")
	batchCmd.Flags().Bool("continue-on-error", true, "record per-file errors instead of aborting")
	batchCmd.Flags().StringP("format", "f", "text", "output format (text, json, yaml)")
	batchCmd.Flags().StringP("output", "o", "", "write output to file instead of stdout")

	_ = viper.BindPFlag("batch.workers", batchCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("batch.continue_on_error", batchCmd.Flags().Lookup("continue-on-error"))
	_ = viper.BindPFlag("output.format", batchCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.file", batchCmd.Flags().Lookup("output"))
}
