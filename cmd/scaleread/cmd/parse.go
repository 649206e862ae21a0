package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scalevision/scaleread/internal/reading"
)

// parseCmd extracts a reading from already recognized text, without models.
var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Parse a weight reading from recognized text",
	Long: `Extract the numeric value and unit from a piece of recognized display
text, applying the same clipping and unit normalization the pipeline uses.

Examples:
  scaleread parse "12.34kg"
  scaleread parse "wt: 88.5oz" --format json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no text provided")
		}
		text := strings.Join(args, " ")
		format, _ := cmd.Flags().GetString("format")

		r, ok := reading.Parse(text)

		if format == "json" {
			payload := struct {
				Input string  `json:"input"`
				Found bool    `json:"found"`
				Value *string `json:"value"`
				Unit  *string `json:"unit"`
			}{Input: text, Found: ok}
			if ok {
				payload.Value = &r.Value
				payload.Unit = &r.Unit
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(payload)
		}

		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "no reading")
			return nil
		}
		if r.Unit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r.Value, r.Unit)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), r.Value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
}
