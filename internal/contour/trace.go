// Package contour extracts the ordered outer boundary of a single object in a
// binary image using 8-connected, clockwise Moore-neighbour tracing.
package contour

import (
	"context"
	"fmt"
	"log/slog"
)

// State is a phase of the trace state machine.
type State int

const (
	// LocatingStart searches for the first foreground pixel.
	LocatingStart State = iota
	// Walking follows the boundary one neighbour at a time.
	Walking
	// Terminated means the contour is closed.
	Terminated
)

func (s State) String() string {
	switch s {
	case LocatingStart:
		return "locating_start"
	case Walking:
		return "walking"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// initialDirection is the first probe direction at the start pixel. The start
// pixel is found by a top-down, left-to-right scan, so nothing above it or to
// its left is foreground.
const initialDirection = East

// Option configures a Tracer.
type Option func(*Tracer)

// WithMaxSteps bounds the number of walk steps. Zero or negative selects the
// default of 4*area+8 of the padded image.
func WithMaxSteps(n int) Option {
	return func(t *Tracer) { t.maxSteps = n }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracer) {
		if l != nil {
			t.logger = l
		}
	}
}

// Tracer runs Moore-neighbour tracing. A Tracer holds only configuration and
// is safe for concurrent use.
type Tracer struct {
	maxSteps int
	logger   *slog.Logger
}

// NewTracer returns a tracer configured by opts.
func NewTracer(opts ...Option) *Tracer {
	t := &Tracer{logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Trace returns the closed contour of the object in g using default settings.
func Trace(g Grid) (Contour, error) {
	return NewTracer().Trace(context.Background(), g)
}

// TraceContext is Trace with cancellation checked between walk steps.
func TraceContext(ctx context.Context, g Grid) (Contour, error) {
	return NewTracer().Trace(ctx, g)
}

// run holds the mutable state of one trace.
type run struct {
	state   State
	padded  Grid
	current Point
	next    Direction
	points  Contour
	steps   int
}

// Trace walks the boundary of the first object found in row-major order and
// returns it in original image coordinates. The result starts and ends with
// the same point.
func (t *Tracer) Trace(ctx context.Context, g Grid) (Contour, error) {
	if len(g.Cells) != g.Height*g.Width {
		return nil, fmt.Errorf("grid %dx%d has %d cells: %w", g.Height, g.Width, len(g.Cells), ErrRaggedRows)
	}

	r := &run{state: LocatingStart, padded: pad(g)}
	limit := t.stepLimit(r.padded)

	for r.state != Terminated {
		switch r.state {
		case LocatingStart:
			if err := r.locate(); err != nil {
				return nil, err
			}
			t.logger.Debug("contour start located", "row", r.current.Row-padding, "col", r.current.Col-padding)
		case Walking:
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("trace interrupted after %d steps: %w", r.steps, err)
			}
			if r.steps >= limit {
				return nil, fmt.Errorf("%w: %d steps", ErrContourNotClosed, r.steps)
			}
			if err := r.step(); err != nil {
				return nil, err
			}
		}
	}

	t.logger.Debug("contour closed", "points", len(r.points), "steps", r.steps)
	return remap(r.points), nil
}

func (t *Tracer) stepLimit(padded Grid) int {
	if t.maxSteps > 0 {
		return t.maxSteps
	}
	return 4*padded.Height*padded.Width + 8
}

// locate performs the LocatingStart transition.
func (r *run) locate() error {
	start, err := locateStart(r.padded)
	if err != nil {
		return err
	}
	r.current = start
	r.points = Contour{start}
	r.next = initialDirection
	r.state = Walking
	return nil
}

// step performs one Walking transition: find the next boundary pixel and
// either append it or terminate when the loop has closed.
func (r *run) step() error {
	nextPoint, found, err := nextBoundaryPoint(r.padded, r.current, r.next)
	if err != nil {
		return err
	}
	r.steps++
	r.next = found.Continuation()

	if closes(r.points, nextPoint) {
		r.state = Terminated
		return nil
	}
	r.points = append(r.points, nextPoint)
	r.current = nextPoint
	return nil
}
