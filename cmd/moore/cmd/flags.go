package cmd

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/MeKo-Tech/moore/internal/batch"
	"github.com/MeKo-Tech/moore/internal/config"
	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/MeKo-Tech/moore/internal/output"
	"github.com/MeKo-Tech/moore/internal/utils"
	"github.com/spf13/cobra"
)

// addTraceFlags registers the flags shared by every command that traces.
func addTraceFlags(cmd *cobra.Command) {
	cmd.Flags().Int("threshold", 0, "luminance a pixel must exceed to be foreground (0-255)")
	cmd.Flags().Bool("invert", false, "treat dark pixels as foreground")
	cmd.Flags().Int("max-steps", 0, "walk step budget (0 derives it from the image size)")
	cmd.Flags().StringP("format", "f", output.FormatText, "output format: "+strings.Join(output.Formats, ", "))
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
}

// addOverlayFlags registers the overlay image flags.
func addOverlayFlags(cmd *cobra.Command) {
	cmd.Flags().String("overlay-dir", "", "directory to save contour overlay images")
	cmd.Flags().String("overlay-color", "#FF0000", "overlay contour color (hex)")
	cmd.Flags().String("start-color", "#00FF00", "overlay start marker color (hex)")
}

// imageConfig maps the configuration and the trace and overlay flags onto a
// batch.Config. Flags override configuration values only when set.
func imageConfig(cmd *cobra.Command, cfg *config.Config) (*batch.Config, error) {
	threshold := cfg.Binarize.Threshold
	if cmd.Flags().Changed("threshold") {
		threshold, _ = cmd.Flags().GetInt("threshold")
	}
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("invalid threshold: %d (must be between 0 and 255)", threshold)
	}

	invert := cfg.Binarize.Invert
	if cmd.Flags().Changed("invert") {
		invert, _ = cmd.Flags().GetBool("invert")
	}

	maxSteps, err := maxStepsFlag(cmd, cfg)
	if err != nil {
		return nil, err
	}

	format, err := formatFlag(cmd, cfg)
	if err != nil {
		return nil, err
	}

	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}

	bc := &batch.Config{
		Binarize:   utils.BinarizeOptions{Threshold: uint8(threshold), Invert: invert}, //nolint:gosec // G115: range checked above
		MaxSteps:   maxSteps,
		Format:     format,
		OutputFile: outputFile,
		OverlayDir: cfg.Output.OverlayDir,
	}
	if cmd.Flags().Changed("overlay-dir") {
		bc.OverlayDir, _ = cmd.Flags().GetString("overlay-dir")
	}

	overlayColor := cfg.Output.OverlayColor
	if cmd.Flags().Changed("overlay-color") {
		overlayColor, _ = cmd.Flags().GetString("overlay-color")
	}
	startColor := cfg.Output.StartColor
	if cmd.Flags().Changed("start-color") {
		startColor, _ = cmd.Flags().GetString("start-color")
	}
	if bc.OverlayColor, err = parseColor(overlayColor, "overlay color"); err != nil {
		return nil, err
	}
	if bc.StartColor, err = parseColor(startColor, "start color"); err != nil {
		return nil, err
	}

	return bc, nil
}

func maxStepsFlag(cmd *cobra.Command, cfg *config.Config) (int, error) {
	maxSteps := cfg.Trace.MaxSteps
	if cmd.Flags().Changed("max-steps") {
		maxSteps, _ = cmd.Flags().GetInt("max-steps")
	}
	if maxSteps < 0 {
		return 0, fmt.Errorf("invalid max steps: %d (must not be negative)", maxSteps)
	}
	return maxSteps, nil
}

func formatFlag(cmd *cobra.Command, cfg *config.Config) (string, error) {
	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}
	if format == "" {
		format = output.FormatText
	}
	if !output.IsValidFormat(format) {
		return "", fmt.Errorf("invalid output format: %s (must be one of: %s)", format, strings.Join(output.Formats, ", "))
	}
	return format, nil
}

// newTracer builds a tracer honouring the step budget.
func newTracer(maxSteps int) *contour.Tracer {
	if maxSteps > 0 {
		return contour.NewTracer(contour.WithMaxSteps(maxSteps))
	}
	return contour.NewTracer()
}

func parseColor(value, name string) (color.Color, error) {
	if value == "" {
		return nil, nil
	}
	c := utils.ParseHexColor(value)
	if c == nil {
		return nil, fmt.Errorf("invalid %s: %q (must be #RRGGBB)", name, value)
	}
	return c, nil
}

// writeOutput writes text to file, or to the command's stdout when file is
// empty.
func writeOutput(cmd *cobra.Command, text, file string) error {
	if file == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(file, []byte(text), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
