package model

import (
	"errors"
	"fmt"
)

// Failure classes for an evaluation run. Both are fatal and leave history untouched.
var (
	ErrDataUnavailable = errors.New("data unavailable")
	ErrEmptyResult     = errors.New("empty result")
)

// RunError carries the reason code of a fatal run failure, e.g. "no_data_advances".
type RunError struct {
	Kind   error
	Reason string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
}

func (e *RunError) Unwrap() error { return e.Kind }

// DataUnavailable builds a RunError of kind ErrDataUnavailable.
func DataUnavailable(reason string) *RunError {
	return &RunError{Kind: ErrDataUnavailable, Reason: reason}
}

// EmptyResult builds a RunError of kind ErrEmptyResult.
func EmptyResult(reason string) *RunError {
	return &RunError{Kind: ErrEmptyResult, Reason: reason}
}
