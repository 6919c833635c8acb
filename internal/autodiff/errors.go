package autodiff

import "errors"

// Sentinel errors for autodiff operations.
var (
	// ErrUnsupportedOperand is returned when an operation receives an operand
	// it cannot differentiate through, such as a Value used as an exponent.
	ErrUnsupportedOperand = errors.New("autodiff: variable exponent is not supported")
)
