package probe

import (
	"errors"
	"fmt"
)

// errRepeatedCard is reported when the subsystem hands back a card that was
// already visited in the same walk.
var errRepeatedCard = errors.New("card visited twice")

// errNilMixer is recorded as a failed mixer_open when a backend returns
// neither a mixer nor an error.
var errNilMixer = errors.New("backend returned nil mixer")

// EnumerationError is a failed request for the next card. Only an Initial
// failure is fatal to a run.
type EnumerationError struct {
	Initial bool
	After   DeviceHandle
	Err     error
}

func (e *EnumerationError) Error() string {
	if e.Initial {
		return fmt.Sprintf("card enumeration failed: %v", e.Err)
	}
	return fmt.Sprintf("card enumeration failed after card %d: %v", e.After, e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err is an initial enumeration failure.
func IsFatal(err error) bool {
	var enumErr *EnumerationError
	return errors.As(err, &enumErr) && enumErr.Initial
}

// StepError is a failed step. It is recorded in the ProbeResult, never returned.
type StepError struct {
	Handle DeviceHandle
	Step   StepName
	Code   int
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("card %d: %s failed (%d): %v", e.Handle, e.Step, e.Code, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
