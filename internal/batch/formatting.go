package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FormatResults renders a batch result in the requested format: "text",
// "json" or "yaml".
func FormatResults(result *Result, format string) (string, error) {
	switch format {
	case "json":
		bts, err := json.MarshalIndent(result, "", "  ")
		return string(bts), err
	case "yaml":
		bts, err := yaml.Marshal(result)
		return string(bts), err
	default:
		return formatText(result), nil
	}
}

func formatText(result *Result) string {
	var out strings.Builder
	for i, f := range result.Files {
		if i > 0 {
			out.WriteString("\n")
		}
		fmt.Fprintf(&out, "# %s\n", f.Path)
		switch {
		case f.Error != "":
			fmt.Fprintf(&out, "error: %s\n", f.Error)
		case f.Result == nil:
			out.WriteString("error: no result\n")
		default:
			fmt.Fprintf(&out, "%s\n", f.Result.Combined)
			if f.Result.Value != nil && f.Result.Unit != nil {
				fmt.Fprintf(&out, "reading: %s %s\n", *f.Result.Value, *f.Result.Unit)
			}
		}
	}
	return out.String()
}

// WriteOutput writes formatted output to the given file, or stdout when the
// path is empty.
func WriteOutput(content, outputFile string) error {
	if outputFile == "" {
		_, err := fmt.Print(content)
		return err
	}
	return os.WriteFile(outputFile, []byte(content), 0o600)
}
