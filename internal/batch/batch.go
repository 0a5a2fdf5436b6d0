// Package batch traces many images concurrently and collects one result per
// image.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/moore/internal/contour"
)

// ProcessBatch discovers the images named by paths and traces each of them.
func ProcessBatch(ctx context.Context, paths []string, config *Config) (*Result, error) {
	files, err := discoverImageFiles(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}

	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}

	var progress ProgressCallback
	if config.ShowProgress && !config.Quiet && config.ProgressWriter != nil {
		progress = NewConsoleProgressCallback(config.ProgressWriter, "Tracing: ").
			WithUpdateInterval(config.ProgressInterval)
	} else {
		progress = NewLogProgressCallback(slog.Default(), 10)
	}

	var opts []contour.Option
	if config.MaxSteps > 0 {
		opts = append(opts, contour.WithMaxSteps(config.MaxSteps))
	}
	tracer := contour.NewTracer(opts...)

	startTime := time.Now()
	results, err := processImagesParallel(ctx, tracer, files, config, progress)
	duration := time.Since(startTime)
	if err != nil {
		return nil, fmt.Errorf("batch processing failed: %w", err)
	}

	return &Result{
		Results:     results,
		ImagePaths:  files,
		Duration:    duration,
		WorkerCount: min(max(config.Workers, 1), len(files)),
	}, nil
}
