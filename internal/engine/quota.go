package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxPulsesPerPress bounds the pulses delivered in one press.
// A network can oscillate forever inside a single press (e.g. "&a -> a");
// the quota turns that into an error instead of a hang. Real inputs stay
// several orders of magnitude below it.
const DefaultMaxPulsesPerPress = 1_000_000

// PulseQuotaError is returned when a press exceeds its pulse quota.
//
// The press is abandoned mid-flight, so module state no longer corresponds
// to any whole number of presses. The simulator refuses further presses.
type PulseQuotaError struct {
	Press  int64 // The press that exceeded the quota
	Pulses int64 // Pulses delivered, including the refused one
	Limit  int64 // Maximum allowed pulses per press
}

// Error implements the error interface.
func (e *PulseQuotaError) Error() string {
	return fmt.Sprintf("press %d exceeded pulse quota: %d pulses > %d limit; network does not quiesce",
		e.Press, e.Pulses, e.Limit)
}

// IsPulseQuotaError returns true if the error is a PulseQuotaError.
// Uses errors.As to handle wrapped errors.
func IsPulseQuotaError(err error) bool {
	var qe *PulseQuotaError
	return errors.As(err, &qe)
}
