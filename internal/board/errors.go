package board

import "errors"

var (
	// ErrOutOfBounds indicates a square coordinate outside [0,8)x[0,8).
	ErrOutOfBounds = errors.New("square out of bounds")

	// ErrSameSide indicates a placement onto a square held by the same side.
	ErrSameSide = errors.New("square occupied by same side")

	// ErrInvalidConfiguration indicates an unsupported board layout.
	ErrInvalidConfiguration = errors.New("invalid board configuration")

	// ErrInvalidPlacement indicates a malformed placement string.
	ErrInvalidPlacement = errors.New("invalid placement")
)
