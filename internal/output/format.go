package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// IsValidFormat reports whether format is one of Formats.
func IsValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Format renders a single result.
func Format(res *Result, format string) (string, error) {
	return FormatBatch([]*Result{res}, format)
}

// FormatBatch renders several results in the specified format.
func FormatBatch(results []*Result, format string) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(results)
	case FormatCSV:
		return formatCSV(results)
	case FormatYAML:
		return formatYAML(results)
	case FormatText, "":
		return formatText(results), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
}

// formatJSON emits a single object for one result and an array otherwise.
func formatJSON(results []*Result) (string, error) {
	var v any = results
	if len(results) == 1 {
		v = results[0]
	}
	bts, err := json.MarshalIndent(v, "", "  ")
	return string(bts), err
}

func formatYAML(results []*Result) (string, error) {
	var v any = results
	if len(results) == 1 {
		v = results[0]
	}
	bts, err := yaml.Marshal(v)
	return string(bts), err
}

// formatCSV writes one row per contour point.
func formatCSV(results []*Result) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	if err := writer.Write([]string{"file", "index", "row", "col", "error"}); err != nil {
		return "", err
	}

	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Error != "" {
			if err := writer.Write([]string{res.File, "", "", "", res.Error}); err != nil {
				return "", err
			}
			continue
		}
		for i, p := range res.Points {
			row := []string{res.File, strconv.Itoa(i), strconv.Itoa(p.Row), strconv.Itoa(p.Col), ""}
			if err := writer.Write(row); err != nil {
				return "", err
			}
		}
	}
	writer.Flush()
	return output.String(), writer.Error()
}

func formatText(results []*Result) string {
	var output strings.Builder
	for i, res := range results {
		if res == nil {
			continue
		}
		if i > 0 {
			output.WriteString("\n")
		}
		if res.File != "" {
			output.WriteString(fmt.Sprintf("# %s\n", res.File))
		}
		output.WriteString(fmt.Sprintf("Image: %dx%d\n", res.Width, res.Height))
		if res.Error != "" {
			output.WriteString(fmt.Sprintf("Error: %s\n", res.Error))
			continue
		}
		if res.Start != nil {
			output.WriteString(fmt.Sprintf("Start: %v\n", *res.Start))
		}
		output.WriteString(fmt.Sprintf("Points: %d (%d distinct)\n", res.Length, res.Distinct))
		if res.Bounds != nil {
			output.WriteString(fmt.Sprintf("Bounds: rows %d-%d, cols %d-%d\n",
				res.Bounds.MinRow, res.Bounds.MaxRow, res.Bounds.MinCol, res.Bounds.MaxCol))
		}
		output.WriteString("Contour:")
		for _, p := range res.Points {
			output.WriteString(" ")
			output.WriteString(p.String())
		}
		output.WriteString("\n")
	}
	return output.String()
}
