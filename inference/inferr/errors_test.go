package inferr

import (
	"fmt"
	"testing"

	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
	"github.com/stretchr/testify/assert"
)

func TestIsBoundViolation(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "lower bound", err: New(NewLowerBound{TypeVariable: "T1", New: symbols.String, UpperBound: symbols.Int}), expected: true},
		{name: "upper bound", err: New(NewUpperBound{TypeVariable: "T1", New: symbols.Int, LowerBound: symbols.String}), expected: true},
		{name: "intersection", err: New(NewIntersectionBound{TypeVariable: "T1", New: symbols.Array, Existing: symbols.Int}), expected: true},
		{name: "ambiguous conversion", err: New(NewAmbiguousConversion{TypeVariable: "T1", From: symbols.Bool, To: symbols.Num}), expected: true},
		{name: "wrapped", err: fmt.Errorf("candidate: %w", New(NewLowerBound{TypeVariable: "T1", New: symbols.String, UpperBound: symbols.Int})), expected: true},
		{name: "no overload", err: New(NewNoApplicableOverload{Callee: "f"}), expected: false},
		{
			name:     "no overload wrapping a violation",
			err:      New(NewNoApplicableOverload{Callee: "f", Causes: []error{New(NewLowerBound{TypeVariable: "T1", New: symbols.String, UpperBound: symbols.Int})}}),
			expected: false,
		},
		{name: "other", err: fmt.Errorf("boom"), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsBoundViolation(tc.err))
		})
	}
}

func TestFormatWithCode(t *testing.T) {
	err := New(NewUpperBound{TypeVariable: "T1", New: symbols.Int, LowerBound: symbols.String})
	assert.Equal(t, "(E002) T1: upper bound 'int' is not a super type of lower bound 'string'", FormatWithCode(err))

	err = New(NewAmbiguousConversion{TypeVariable: "T2", From: symbols.Bool, To: symbols.Num, Providers: []symbols.TypeSymbol{symbols.Float, symbols.Int}})
	assert.Equal(t, AmbiguousConversion, err.Code())
	assert.Contains(t, err.Error(), "float, int")
}

func TestNoApplicableOverloadUnwraps(t *testing.T) {
	cause := New(NewLowerBound{TypeVariable: "V1", New: symbols.Array, UpperBound: symbols.Num})
	err := New(NewNoApplicableOverload{Callee: "inc", Causes: []error{cause}})
	assert.False(t, IsBoundViolation(err))
	assert.False(t, IsCandidateFailure(err))
	var violation BoundViolation
	assert.ErrorAs(t, err, &violation, "the causes are unwrapped")
	assert.Contains(t, err.Error(), "no applicable overload of 'inc'")
	assert.Contains(t, err.Error(), "V1")
}
