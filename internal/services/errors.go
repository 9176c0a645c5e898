package services

import "fmt"

// ValidationError rejects a request before any model is built. Handlers
// map it to a 400; everything else in the optimization path degrades to
// a completed_with_warnings result instead of erroring.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
