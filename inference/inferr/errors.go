// Package inferr holds the errors raised while inferring types.
// Bound violations are expected during overload resolution: they only mean
// that the candidate being evaluated does not apply.
package inferr

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
)

// enableDebugErrorPrinting makes errors include the frame which raised them when formatted
const enableDebugErrorPrinting bool = false

type ErrCode int

const (
	None ErrCode = iota
	LowerBound
	UpperBound
	IntersectionBound
	AmbiguousConversion
	NoApplicableOverload
	ArityMismatch
)

type InferError interface {
	error
	Code() ErrCode

	withStack([]byte) InferError
	getStack() []byte
}

// BoundViolation is implemented by the errors which invalidate the current
// overload candidate
type BoundViolation interface {
	InferError
	// Types returns the newly asserted type and the bound it conflicts with
	Types() (symbols.TypeSymbol, symbols.TypeSymbol)
}

func New[E InferError](err E) InferError {
	return err.withStack(debug.Stack())
}

// IsBoundViolation reports whether err (or an error it wraps) is a BoundViolation.
// A NewNoApplicableOverload is never one, even though it wraps the violations of its candidates.
func IsBoundViolation(err error) bool {
	var noOverload NewNoApplicableOverload
	if errors.As(err, &noOverload) {
		return false
	}
	var violation BoundViolation
	return errors.As(err, &violation)
}

// IsCandidateFailure reports whether err only means that an overload does not
// apply to a call
func IsCandidateFailure(err error) bool {
	var arity NewArityMismatch
	return IsBoundViolation(err) || errors.As(err, &arity)
}

func FormatWithCode(e InferError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		lines := strings.Split(string(e.getStack()), "\n")
		if len(lines) > 6 {
			return fmt.Sprintf("%s:(E%03d) %s", strings.TrimSpace(lines[6]), e.Code(), e.Error())
		}
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

// NewLowerBound is raised when a lower bound is not a subtype of the existing upper bound
type NewLowerBound struct {
	TypeVariable string
	New          symbols.TypeSymbol
	UpperBound   symbols.TypeSymbol
	stack        []byte
}

func (e NewLowerBound) Error() string {
	return fmt.Sprintf("%s: lower bound '%s' is not a subtype of upper bound '%s'", e.TypeVariable, e.New, e.UpperBound)
}
func (e NewLowerBound) Code() ErrCode { return LowerBound }
func (e NewLowerBound) Types() (symbols.TypeSymbol, symbols.TypeSymbol) {
	return e.New, e.UpperBound
}
func (e NewLowerBound) getStack() []byte { return e.stack }
func (e NewLowerBound) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

// NewUpperBound is raised when the existing lower bound is not a subtype of a new upper bound
type NewUpperBound struct {
	TypeVariable string
	New          symbols.TypeSymbol
	LowerBound   symbols.TypeSymbol
	stack        []byte
}

func (e NewUpperBound) Error() string {
	return fmt.Sprintf("%s: upper bound '%s' is not a super type of lower bound '%s'", e.TypeVariable, e.New, e.LowerBound)
}
func (e NewUpperBound) Code() ErrCode { return UpperBound }
func (e NewUpperBound) Types() (symbols.TypeSymbol, symbols.TypeSymbol) {
	return e.New, e.LowerBound
}
func (e NewUpperBound) getStack() []byte { return e.stack }
func (e NewUpperBound) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

// NewIntersectionBound is raised when no type could satisfy all upper bounds at once
type NewIntersectionBound struct {
	TypeVariable string
	New          symbols.TypeSymbol
	Existing     symbols.TypeSymbol
	stack        []byte
}

func (e NewIntersectionBound) Error() string {
	return fmt.Sprintf("%s: upper bounds '%s' and '%s' cannot be satisfied together", e.TypeVariable, e.New, e.Existing)
}
func (e NewIntersectionBound) Code() ErrCode { return IntersectionBound }
func (e NewIntersectionBound) Types() (symbols.TypeSymbol, symbols.TypeSymbol) {
	return e.New, e.Existing
}
func (e NewIntersectionBound) getStack() []byte { return e.stack }
func (e NewIntersectionBound) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

// NewAmbiguousConversion is raised when more than one implicit conversion
// could satisfy a bound, so the bound cannot be narrowed
type NewAmbiguousConversion struct {
	TypeVariable string
	From         symbols.TypeSymbol
	To           symbols.TypeSymbol
	Providers    []symbols.TypeSymbol
	stack        []byte
}

func (e NewAmbiguousConversion) Error() string {
	names := make([]string, 0, len(e.Providers))
	for _, p := range e.Providers {
		names = append(names, p.AbsoluteName())
	}
	return fmt.Sprintf("%s: ambiguous implicit conversion from '%s' to '%s', candidates: %s", e.TypeVariable, e.From, e.To, strings.Join(names, ", "))
}
func (e NewAmbiguousConversion) Code() ErrCode { return AmbiguousConversion }
func (e NewAmbiguousConversion) Types() (symbols.TypeSymbol, symbols.TypeSymbol) {
	return e.From, e.To
}
func (e NewAmbiguousConversion) getStack() []byte { return e.stack }
func (e NewAmbiguousConversion) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

// NewNoApplicableOverload is returned by the resolver when every candidate failed
type NewNoApplicableOverload struct {
	Callee string
	Causes []error
	stack  []byte
}

func (e NewNoApplicableOverload) Error() string {
	if len(e.Causes) == 0 {
		return fmt.Sprintf("no overload of '%s' is defined", e.Callee)
	}
	causes := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		causes = append(causes, c.Error())
	}
	return fmt.Sprintf("no applicable overload of '%s': %s", e.Callee, strings.Join(causes, "; "))
}
func (e NewNoApplicableOverload) Code() ErrCode    { return NoApplicableOverload }
func (e NewNoApplicableOverload) Unwrap() []error  { return e.Causes }
func (e NewNoApplicableOverload) getStack() []byte { return e.stack }
func (e NewNoApplicableOverload) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}

// NewArityMismatch is raised when a call does not pass as many arguments as an overload has parameters
type NewArityMismatch struct {
	Callee    string
	Expected  int
	Arguments int
	stack     []byte
}

func (e NewArityMismatch) Error() string {
	return fmt.Sprintf("'%s' expects %d arguments, %d given", e.Callee, e.Expected, e.Arguments)
}
func (e NewArityMismatch) Code() ErrCode    { return ArityMismatch }
func (e NewArityMismatch) getStack() []byte { return e.stack }
func (e NewArityMismatch) withStack(stack []byte) InferError {
	e.stack = stack
	return e
}
