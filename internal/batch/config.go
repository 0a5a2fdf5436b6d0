package batch

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/moore/internal/output"
	"github.com/MeKo-Tech/moore/internal/utils"
)

// Config holds all configuration for batch processing.
type Config struct {
	// Tracing settings
	Binarize utils.BinarizeOptions
	MaxSteps int

	// Output settings
	Format       string
	OutputFile   string
	OverlayDir   string
	OverlayColor color.Color
	StartColor   color.Color

	// Parallel processing settings
	Workers         int
	ContinueOnError bool

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ProgressInterval time.Duration
	ProgressWriter   io.Writer
}

// Result holds the result of batch processing.
type Result struct {
	Results     []*output.Result
	ImagePaths  []string
	Duration    time.Duration
	WorkerCount int
}

// Failed returns the number of images whose trace failed.
func (r *Result) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res != nil && res.Error != "" {
			n++
		}
	}
	return n
}

// FormatResults formats the batch processing results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return output.FormatBatch(r.Results, format)
}

// SaveResults writes the formatted results to outputFile, or to w when no
// file is given.
func (r *Result) SaveResults(w io.Writer, format, outputFile string, quiet bool) error {
	text, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(text), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(w, "Results written to %s\n", outputFile)
		}
	} else {
		_, _ = fmt.Fprint(w, text)
	}

	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer, quiet bool) {
	if quiet {
		return
	}
	total := len(r.ImagePaths)
	failed := r.Failed()
	var avg time.Duration
	var rate float64
	if total > 0 {
		avg = r.Duration / time.Duration(total)
	}
	if secs := r.Duration.Seconds(); secs > 0 {
		rate = float64(total) / secs
	}
	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total images: %d\n", total)
	_, _ = fmt.Fprintf(w, "  Traced: %d\n", total-failed)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", failed)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "  Avg per image: %v\n", avg.Round(time.Microsecond))
	_, _ = fmt.Fprintf(w, "  Throughput: %.1f images/sec\n", rate)
}
