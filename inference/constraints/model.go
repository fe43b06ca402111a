// Package constraints holds the vocabulary used to resolve calls against
// function overloads, and the resolver which does so on copies of a binding
// collection.
package constraints

import (
	"slices"
	"strings"

	"github.com/TinsPHP/tins-symbols-sub001/inference/bindings"
)

// Variable is a program variable, identified as in its binding collection
type Variable struct {
	ID string
}

func (v Variable) String() string { return v.ID }

// Constraint asks for LeftHandSide = Callee(Arguments...)
type Constraint struct {
	LeftHandSide Variable
	Arguments    []Variable
	Callee       string
}

func (c Constraint) String() string {
	args := make([]string, 0, len(c.Arguments))
	for _, arg := range c.Arguments {
		args = append(args, arg.ID)
	}
	return c.LeftHandSide.ID + " = " + c.Callee + "(" + strings.Join(args, ", ") + ")"
}

// FunctionType is one overload of a function: its bindings, parameters and
// return variable
type FunctionType struct {
	Name           string
	Bindings       *bindings.Collection
	Parameters     []Variable
	ReturnVariable Variable
}

// NewFunctionType returns the overload name(parameters...) whose return value
// is held by bindings.ReturnVariableName
func NewFunctionType(name string, b *bindings.Collection, parameters ...Variable) *FunctionType {
	return &FunctionType{
		Name:           name,
		Bindings:       b,
		Parameters:     parameters,
		ReturnVariable: Variable{ID: bindings.ReturnVariableName},
	}
}

// ParameterTypeVariables returns the type variables of the parameters, in order
func (f *FunctionType) ParameterTypeVariables() []string {
	tvs := make([]string, 0, len(f.Parameters))
	for _, p := range f.Parameters {
		tvs = append(tvs, f.Bindings.TypeVariable(p.ID))
	}
	return tvs
}

// Signature renders the overload as "int x T1 -> T1"
func (f *FunctionType) Signature() string {
	ret := f.typeOf(f.ReturnVariable)
	if len(f.Parameters) == 0 {
		return "() -> " + ret
	}
	params := make([]string, 0, len(f.Parameters))
	for _, p := range f.Parameters {
		params = append(params, f.typeOf(p))
	}
	return strings.Join(params, " x ") + " -> " + ret
}

func (f *FunctionType) typeOf(v Variable) string {
	if !f.Bindings.ContainsVariable(v.ID) {
		// a function without return statement returns null
		return "null"
	}
	tv := f.Bindings.TypeVariable(v.ID)
	if f.Bindings.IsFixedTypeVariable(tv) {
		return f.Bindings.LowerTypeBounds(tv).AbsoluteName()
	}
	return tv
}

// TypeParameters renders the generic type variables of the overload with their
// bounds, as "int | T1 <: T2 <: scalar"
func (f *FunctionType) TypeParameters() []string {
	var res []string
	for _, tv := range f.Bindings.TypeVariables() {
		if f.Bindings.IsFixedTypeVariable(tv) {
			continue
		}
		sb := &strings.Builder{}
		lower := slices.Clone(f.Bindings.LowerRefBounds(tv))
		if bound := f.Bindings.LowerTypeBounds(tv); bound != nil {
			lower = append(lower, bound.AbsoluteName())
		}
		if len(lower) > 0 {
			sb.WriteString(strings.Join(lower, " | "))
			sb.WriteString(" <: ")
		}
		sb.WriteString(tv)
		upper := slices.Clone(f.Bindings.UpperRefBounds(tv))
		if bound := f.Bindings.UpperTypeBounds(tv); bound != nil {
			upper = append(upper, bound.AbsoluteName())
		}
		if len(upper) > 0 {
			sb.WriteString(" <: ")
			sb.WriteString(strings.Join(upper, " & "))
		}
		res = append(res, sb.String())
	}
	return res
}

func (f *FunctionType) String() string {
	return f.Name + ": " + f.Signature()
}
