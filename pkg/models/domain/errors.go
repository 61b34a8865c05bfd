package domain

import "errors"

var (
	// ErrGeneration means the text-generation collaborator was unreachable, rate
	// limited or returned a malformed response.
	ErrGeneration = errors.New("generation failure")
	// ErrParse means collaborator output was not in the expected numeric shape.
	ErrParse          = errors.New("parse error")
	ErrShapeMismatch  = errors.New("shape mismatch")
	ErrDivisionByZero = errors.New("division by zero")
	ErrEmptyInput     = errors.New("empty input")
	// ErrSink is the only failure fatal to a whole report.
	ErrSink           = errors.New("sink failure")
	ErrStageTimeout   = errors.New("stage timed out")
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNonFinite means a computation produced NaN or an infinity.
	ErrNonFinite = errors.New("non-finite result")
	ErrNotFound  = errors.New("not found")
)
