package support

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/moore/internal/testutil"
	"github.com/cucumber/godog"
)

// RegisterImageSteps registers steps that create input images and grids.
func (testCtx *TestContext) RegisterImageSteps(sc *godog.ScenarioContext) {
	sc.Step(`^an image "([^"]*)" of (\d+)x(\d+) pixels with a (\d+)x\d+ square at (\d+),(\d+)$`,
		testCtx.anImageWithASquare)
	sc.Step(`^a blank image "([^"]*)" of (\d+)x(\d+) pixels$`, testCtx.aBlankImage)
	sc.Step(`^an image "([^"]*)" drawn as:$`, testCtx.anImageDrawnAs)
	sc.Step(`^a grid file "([^"]*)" containing:$`, testCtx.aGridFileContaining)
	sc.Step(`^a directory "([^"]*)" with (\d+) square images$`, testCtx.aDirectoryWithSquareImages)
	sc.Step(`^a file "([^"]*)" containing "([^"]*)"$`, testCtx.aFileContaining)
}

func (testCtx *TestContext) writePNG(name string, img image.Image) error {
	path := testCtx.TempPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path) //nolint:gosec // G304: path inside the scenario temp dir
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

func (testCtx *TestContext) anImageWithASquare(name string, w, h, n, row, col int) error {
	return testCtx.writePNG(name, testutil.SquareImage(w, h, row, col, n))
}

func (testCtx *TestContext) aBlankImage(name string, w, h int) error {
	return testCtx.writePNG(name, image.NewGray(image.Rect(0, 0, w, h)))
}

func (testCtx *TestContext) anImageDrawnAs(name string, drawing *godog.DocString) error {
	return testCtx.writePNG(name, testutil.ImageFromRows(strings.Split(strings.TrimSpace(drawing.Content), "\n")...))
}

func (testCtx *TestContext) aGridFileContaining(name string, grid *godog.DocString) error {
	return testCtx.aFileContaining(name, grid.Content+"\n")
}

func (testCtx *TestContext) aDirectoryWithSquareImages(dir string, count int) error {
	for i := range count {
		name := filepath.Join(dir, fmt.Sprintf("square%02d.png", i))
		if err := testCtx.writePNG(name, testutil.SquareImage(10, 10, 1, 1, i+2)); err != nil {
			return err
		}
	}
	return nil
}

func (testCtx *TestContext) aFileContaining(name, content string) error {
	path := testCtx.TempPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o600)
}
