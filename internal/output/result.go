// Package output formats trace results for the CLI and the HTTP API.
package output

import (
	"errors"
	"time"

	"github.com/MeKo-Tech/moore/internal/contour"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// Formats lists every supported output format.
var Formats = []string{FormatText, FormatJSON, FormatCSV, FormatYAML}

// Box is an axis-aligned bounding box in image coordinates; Max is inclusive.
type Box struct {
	MinRow int `json:"min_row" yaml:"min_row"`
	MinCol int `json:"min_col" yaml:"min_col"`
	MaxRow int `json:"max_row" yaml:"max_row"`
	MaxCol int `json:"max_col" yaml:"max_col"`
}

// Result is the outcome of tracing one image.
type Result struct {
	File       string          `json:"file,omitempty" yaml:"file,omitempty"`
	Width      int             `json:"width" yaml:"width"`
	Height     int             `json:"height" yaml:"height"`
	Start      *contour.Point  `json:"start,omitempty" yaml:"start,omitempty"`
	Length     int             `json:"length" yaml:"length"`
	Distinct   int             `json:"distinct" yaml:"distinct"`
	Bounds     *Box            `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	Points     contour.Contour `json:"points" yaml:"points"`
	DurationNs int64           `json:"duration_ns" yaml:"duration_ns"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorType  string          `json:"error_type,omitempty" yaml:"error_type,omitempty"`
}

// NewResult summarises a traced contour for the given image size.
func NewResult(file string, width, height int, c contour.Contour, d time.Duration) *Result {
	res := &Result{
		File:       file,
		Width:      width,
		Height:     height,
		Points:     c,
		Length:     len(c),
		DurationNs: d.Nanoseconds(),
	}
	if len(c) > 0 {
		start := c.Start()
		res.Start = &start
		res.Distinct = c.Distinct()
		b := c.Bounds()
		res.Bounds = &Box{MinRow: b.Min.Y, MinCol: b.Min.X, MaxRow: b.Max.Y - 1, MaxCol: b.Max.X - 1}
	}
	return res
}

// NewErrorResult records a failed trace.
func NewErrorResult(file string, width, height int, err error) *Result {
	return &Result{
		File:      file,
		Width:     width,
		Height:    height,
		Points:    contour.Contour{},
		Error:     err.Error(),
		ErrorType: ErrorType(err),
	}
}

// ErrorType classifies trace errors into stable identifiers.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, contour.ErrNoForegroundPixel):
		return "no_foreground_pixel"
	case errors.Is(err, contour.ErrIsolatedPixel):
		return "isolated_pixel"
	case errors.Is(err, contour.ErrContourNotClosed):
		return "contour_not_closed"
	default:
		return "error"
	}
}
