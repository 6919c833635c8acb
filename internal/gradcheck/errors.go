package gradcheck

import "errors"

// Sentinel errors for gradient checks.
var (
	ErrNoInputs      = errors.New("gradcheck: no inputs to check")
	ErrInvalidConfig = errors.New("gradcheck: epsilon and tolerance must be positive")
	ErrNilRoot       = errors.New("gradcheck: function returned a nil root")
	ErrMismatch      = errors.New("gradcheck: analytic and numeric gradients differ")
)
