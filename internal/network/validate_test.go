package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func codes(warns []ValidationWarning) []string {
	out := make([]string, len(warns))
	for i, w := range warns {
		out[i] = w.Code
	}
	return out
}

func TestValidate_CleanNetwork(t *testing.T) {
	warns := Validate(MustParse(exampleOne))
	assert.Empty(t, warns)
}

func TestValidate_UndefinedDestination(t *testing.T) {
	warns := Validate(MustParse(exampleTwo))
	assert.Equal(t, []string{WarnUndefinedDestination}, codes(warns))
	assert.Equal(t, "output", warns[0].Module)
}

func TestValidate_NoBroadcaster(t *testing.T) {
	warns := Validate(MustParse("%a -> b\n%b -> a\n"))
	assert.Contains(t, codes(warns), WarnNoBroadcaster)
}

func TestValidate_MultipleBroadcasters(t *testing.T) {
	warns := Validate(MustParse("broadcaster -> a\nother -> a\n%a -> broadcaster\n"))
	assert.Contains(t, codes(warns), WarnMultipleBroadcasters)
}

func TestValidate_ConjunctionWithoutInputs(t *testing.T) {
	warns := Validate(MustParse("broadcaster -> a\n%a -> broadcaster\n&idle -> a\n"))
	assert.Contains(t, codes(warns), WarnConjunctionNoInputs)
	assert.Contains(t, codes(warns), WarnUnreachable)
}

func TestValidationWarning_String(t *testing.T) {
	w := ValidationWarning{Code: WarnUnreachable, Module: "x", Line: 3, Message: "m"}
	assert.Equal(t, "[W005] line 3: x: m", w.String())
}
