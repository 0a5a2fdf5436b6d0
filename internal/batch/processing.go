package batch

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/MeKo-Tech/moore/internal/output"
	"github.com/MeKo-Tech/moore/internal/render"
	"github.com/MeKo-Tech/moore/internal/utils"
)

// ProcessImage loads, binarizes and traces a single image. The returned
// result is never nil; on failure it carries the error as well.
func ProcessImage(ctx context.Context, tracer *contour.Tracer, path string, config *Config) (*output.Result, error) {
	if !utils.IsSupportedImage(path) {
		err := fmt.Errorf("unsupported image format: %s", path)
		return output.NewErrorResult(path, 0, 0, err), err
	}

	img, meta, err := utils.LoadImage(path)
	if err != nil {
		err = fmt.Errorf("failed to load %s: %w", path, err)
		return output.NewErrorResult(path, 0, 0, err), err
	}

	grid, err := utils.Binarize(img, config.Binarize)
	if err != nil {
		return output.NewErrorResult(path, meta.Width, meta.Height, err), err
	}

	start := time.Now()
	c, err := tracer.Trace(ctx, grid)
	if err != nil {
		return output.NewErrorResult(path, meta.Width, meta.Height, err), fmt.Errorf("trace failed for %s: %w", path, err)
	}
	res := output.NewResult(path, meta.Width, meta.Height, c, time.Since(start))

	if config.OverlayDir != "" {
		if err := saveOverlay(img, c, path, config); err != nil {
			return res, err
		}
	}
	return res, nil
}

// saveOverlay writes <overlay-dir>/<name>_contour.png.
func saveOverlay(img image.Image, c contour.Contour, path string, config *Config) error {
	style := render.DefaultStyle()
	if config.OverlayColor != nil {
		style.ContourColor = config.OverlayColor
	}
	if config.StartColor != nil {
		style.StartColor = config.StartColor
	}

	if err := os.MkdirAll(config.OverlayDir, 0o750); err != nil {
		return fmt.Errorf("failed to create overlay dir: %w", err)
	}

	base := filepath.Base(path)
	outPath := filepath.Join(config.OverlayDir, strings.TrimSuffix(base, filepath.Ext(base))+"_contour.png")
	f, err := os.Create(outPath) //nolint:gosec // G304: outPath built from the overlay-dir flag
	if err != nil {
		return fmt.Errorf("failed to create overlay: %w", err)
	}
	if err := png.Encode(f, render.Overlay(img, c, style)); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return f.Close()
}

type imageJob struct {
	index int
	path  string
}

type imageResult struct {
	index  int
	result *output.Result
	err    error
}

// processImagesParallel traces images on a bounded worker pool. Results are
// returned in input order. Unless ContinueOnError is set the first failure
// cancels the remaining work and is returned.
func processImagesParallel(ctx context.Context, tracer *contour.Tracer, paths []string,
	config *Config, progress ProgressCallback) ([]*output.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := min(max(config.Workers, 1), len(paths))

	if progress != nil {
		progress.OnStart(len(paths))
		defer progress.OnComplete()
	}

	jobs := make(chan imageJob)
	results := make(chan imageResult, len(paths))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res, err := ProcessImage(ctx, tracer, job.path, config)
				results <- imageResult{index: job.index, result: res, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, path := range paths {
			select {
			case jobs <- imageJob{index: i, path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*output.Result, len(paths))
	var firstErr error
	done := 0
	for r := range results {
		ordered[r.index] = r.result
		done++
		if r.err != nil {
			if progress != nil {
				progress.OnError(paths[r.index], r.err)
			}
			if !config.ContinueOnError && firstErr == nil {
				firstErr = r.err
				cancel()
			}
		}
		if progress != nil {
			progress.OnProgress(done, len(paths))
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch interrupted after %d of %d images: %w", done, len(paths), err)
	}
	return ordered, nil
}
