package contour

import (
	"errors"
	"fmt"
)

var (
	// ErrNoForegroundPixel is returned when the image contains no object.
	ErrNoForegroundPixel = errors.New("no foreground pixel found")

	// ErrIsolatedPixel is matched by every *IsolatedPixelError.
	ErrIsolatedPixel = errors.New("isolated foreground pixel, contour undefined")

	// ErrContourNotClosed is returned when the walk exceeds its step budget
	// without meeting the closure condition.
	ErrContourNotClosed = errors.New("contour did not close within step budget")
)

// IsolatedPixelError reports a foreground pixel without any foreground
// neighbour. Point is given in original image coordinates.
type IsolatedPixelError struct {
	Point Point
}

func (e *IsolatedPixelError) Error() string {
	return fmt.Sprintf("%v at %v", ErrIsolatedPixel, e.Point)
}

// Is makes errors.Is(err, ErrIsolatedPixel) hold for any IsolatedPixelError.
func (e *IsolatedPixelError) Is(target error) bool {
	return target == ErrIsolatedPixel
}
