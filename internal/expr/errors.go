package expr

import "errors"

// Sentinel errors for expression files.
var (
	ErrParse                 = errors.New("expr: invalid HCL")
	ErrUnsupportedExpression = errors.New("expr: unsupported expression")
	ErrUnknownAttribute      = errors.New("expr: unknown attribute")
	ErrCycle                 = errors.New("expr: attribute reference cycle")
	ErrNotANumber            = errors.New("expr: value is not a number")
	ErrEmptyProgram          = errors.New("expr: no attributes defined")
)
