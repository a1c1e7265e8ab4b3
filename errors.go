package addesso

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure modes of the synth core and its backends.
var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrResourceExhausted = errors.New("audio backend resources exhausted")
	ErrForeignNode       = errors.New("node belongs to a different graph")
	ErrReleased          = errors.New("node has been released")
)

// ParameterError reports a control value outside of its documented range.
type ParameterError struct {
	Name  string
	Value float64
	Range Range
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s = %v is outside [%v, %v]", e.Name, e.Value, e.Range.Min, e.Range.Max)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// CheckRange returns a *ParameterError if value is NaN or outside r.
func CheckRange(name string, value float64, r Range) error {
	if !r.Contains(value) {
		return &ParameterError{Name: name, Value: value, Range: r}
	}
	return nil
}
