package cmd

import (
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/moore/internal/batch"
	"github.com/MeKo-Tech/moore/internal/output"
	"github.com/spf13/cobra"
)

// traceCmd traces one or more image files sequentially.
var traceCmd = &cobra.Command{
	Use:   "trace <image...>",
	Short: "Trace the outer contour of the first object in each image",
	Long: `Trace the outer boundary of the first foreground object in one or more
image files. A pixel is foreground when its luminance exceeds --threshold
(or does not exceed it with --invert); fully transparent pixels are background.

Supported formats: PNG, JPEG, GIF, BMP, TIFF

Examples:
  moore trace blob.png
  moore trace *.png --format json --output contours.json
  moore trace scan.tif --invert --threshold 128 --overlay-dir overlays/`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runTrace,
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	bc, err := imageConfig(cmd, cfg)
	if err != nil {
		return err
	}

	tracer := newTracer(bc.MaxSteps)
	results := make([]*output.Result, 0, len(args))
	failed := 0
	for _, path := range args {
		res, err := batch.ProcessImage(cmd.Context(), tracer, path, bc)
		if err != nil {
			slog.Warn("Trace failed", "file", path, "error", err)
			failed++
		}
		results = append(results, res)
	}

	text, err := output.FormatBatch(results, bc.Format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, text, bc.OutputFile); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(args))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(traceCmd)
	addTraceFlags(traceCmd)
	addOverlayFlags(traceCmd)
}
