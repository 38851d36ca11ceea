package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while simulating or searching.
//
// Runtime errors include:
//   - No broadcaster: presses have no entry point
//   - No feeder / ambiguous feeder: the target is not fed by exactly one
//     conjunction, so the periodic extrapolation does not apply
//   - Horizon exceeded: some feeder input never emitted High within the
//     safety horizon
//   - Answer overflow: the LCM of the recorded presses exceeds uint64
//   - Not fresh: a cycle search was started on a simulator that has
//     already been pressed
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Target names the module the cycle search was asked about, if any.
	Target string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	ErrCodeNoBroadcaster     RuntimeErrorCode = "NO_BROADCASTER"
	ErrCodeNoFeeder          RuntimeErrorCode = "NO_FEEDER"
	ErrCodeAmbiguousFeeder   RuntimeErrorCode = "AMBIGUOUS_FEEDER"
	ErrCodeHorizonExceeded   RuntimeErrorCode = "HORIZON_EXCEEDED"
	ErrCodeAnswerOverflow    RuntimeErrorCode = "ANSWER_OVERFLOW"
	ErrCodeSimulatorNotFresh RuntimeErrorCode = "SIMULATOR_NOT_FRESH"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s: %s (target=%s)", e.Code, e.Message, e.Target)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnsolvable returns true if the error means the target cannot be
// answered under the periodic sub-circuit assumption, or its answer does
// not fit in a uint64.
// Uses errors.As to handle wrapped errors.
func IsUnsolvable(err error) bool {
	var re *RuntimeError
	if !errors.As(err, &re) {
		return false
	}
	switch re.Code {
	case ErrCodeNoFeeder, ErrCodeAmbiguousFeeder, ErrCodeHorizonExceeded, ErrCodeAnswerOverflow:
		return true
	}
	return false
}

// NewFeederError creates a RuntimeError for a target without exactly one
// conjunction feeding it.
func NewFeederError(target string, feeders []string) *RuntimeError {
	if len(feeders) == 0 {
		return &RuntimeError{
			Code:    ErrCodeNoFeeder,
			Message: "no conjunction feeds the target; target unreachable under current structural assumption",
			Target:  target,
		}
	}
	return &RuntimeError{
		Code:    ErrCodeAmbiguousFeeder,
		Message: fmt.Sprintf("target must be fed by exactly one conjunction, found %v", feeders),
		Target:  target,
		Details: map[string]string{"feeders": fmt.Sprint(feeders)},
	}
}

// NewHorizonError creates a RuntimeError for inputs that never fired.
func NewHorizonError(target string, horizon int64, missing []string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeHorizonExceeded,
		Message: fmt.Sprintf("inputs %v emitted no High pulse within %d presses; unsolvable under current structural assumption", missing, horizon),
		Target:  target,
		Details: map[string]string{
			"horizon": fmt.Sprintf("%d", horizon),
			"missing": fmt.Sprint(missing),
		},
	}
}

// NewOverflowError creates a RuntimeError for periods whose LCM does not
// fit in a uint64.
func NewOverflowError(target string, periods []InputPeriod) *RuntimeError {
	presses := make([]string, len(periods))
	for i, p := range periods {
		presses[i] = fmt.Sprintf("%s=%d", p.Input, p.Press)
	}
	return &RuntimeError{
		Code:    ErrCodeAnswerOverflow,
		Message: fmt.Sprintf("lcm of first-high presses %v exceeds uint64", presses),
		Target:  target,
		Details: map[string]string{"periods": fmt.Sprint(presses)},
	}
}
