package constraints

import (
	"github.com/TinsPHP/tins-symbols-sub001/inference/bindings"
	"github.com/TinsPHP/tins-symbols-sub001/inference/inferr"
	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
	"github.com/TinsPHP/tins-symbols-sub001/internal/log"
	"github.com/TinsPHP/tins-symbols-sub001/util"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

var logger = log.DefaultLogger.With("section", "resolver")

// Resolver picks, for a call, the first overload of the callee which the
// arguments satisfy
type Resolver struct {
	overloads map[string][]*FunctionType
}

func NewResolver() *Resolver {
	return &Resolver{overloads: make(map[string][]*FunctionType)}
}

// Register adds f as the last overload of f.Name
func (r *Resolver) Register(f *FunctionType) {
	r.overloads[f.Name] = append(r.overloads[f.Name], f)
	logger.Debug("registered overload", "function", f.Name, "signature", f.Signature())
}

func (r *Resolver) Overloads(name string) []*FunctionType {
	return r.overloads[name]
}

// Resolve applies constraint to a copy of base for each overload of the
// callee, in registration order, and returns the copy of the first overload
// which raised no bound violation. base itself is never modified.
// If no overload applies the error is an inferr.NewNoApplicableOverload
// wrapping the violation of each candidate.
func (r *Resolver) Resolve(base *bindings.Collection, constraint Constraint) (*bindings.Collection, *FunctionType, error) {
	overloads := r.overloads[constraint.Callee]
	var causes []error
	for i, overload := range overloads {
		candidate, err := r.apply(base.Copy(), overload, constraint)
		if err == nil {
			logger.Debug("overload applies", "constraint", constraint, "overload", i, "signature", overload.Signature())
			return candidate, overload, nil
		}
		if !inferr.IsCandidateFailure(err) {
			return nil, nil, err
		}
		logger.Debug("overload does not apply", "constraint", constraint, "overload", i, "error", err)
		causes = append(causes, err)
	}
	return nil, nil, inferr.New(inferr.NewNoApplicableOverload{Callee: constraint.Callee, Causes: causes})
}

func (r *Resolver) apply(candidate *bindings.Collection, overload *FunctionType, constraint Constraint) (*bindings.Collection, error) {
	if len(constraint.Arguments) != len(overload.Parameters) {
		return nil, inferr.New(inferr.NewArityMismatch{
			Callee:    constraint.Callee,
			Expected:  len(overload.Parameters),
			Arguments: len(constraint.Arguments),
		})
	}
	for _, v := range append([]Variable{constraint.LeftHandSide}, constraint.Arguments...) {
		if !candidate.ContainsVariable(v.ID) {
			return nil, errors.Errorf("variable %s of %s is not declared", v.ID, constraint)
		}
	}

	mapping, err := instantiate(candidate, overload)
	if err != nil {
		return nil, err
	}
	for i, arg := range constraint.Arguments {
		param := mapping[overload.Bindings.TypeVariable(overload.Parameters[i].ID)]
		if _, err := candidate.AddLowerRefBound(param, candidate.TypeVariable(arg.ID)); err != nil {
			return nil, err
		}
	}
	if ret, ok := overload.returnTypeVariable(); ok {
		lhs := candidate.TypeVariable(constraint.LeftHandSide.ID)
		if _, err := candidate.AddLowerRefBound(lhs, mapping[ret]); err != nil {
			return nil, err
		}
	} else if _, err := candidate.AddLowerTypeBound(candidate.TypeVariable(constraint.LeftHandSide.ID), symbols.Null); err != nil {
		return nil, err
	}
	return candidate, nil
}

func (f *FunctionType) returnTypeVariable() (string, bool) {
	if !f.Bindings.ContainsVariable(f.ReturnVariable.ID) {
		return "", false
	}
	return f.Bindings.TypeVariable(f.ReturnVariable.ID), true
}

// instantiate copies the type variables of the overload which its signature
// refers to into candidate under fresh names, with their bounds, ref bounds
// and fixed state. Convertibles are rebound to the fresh type variables.
func instantiate(candidate *bindings.Collection, overload *FunctionType) (map[string]string, error) {
	ob := overload.Bindings
	roots := overload.ParameterTypeVariables()
	if ret, ok := overload.returnTypeVariable(); ok {
		roots = append(roots, ret)
	}
	tvs := signatureTypeVariables(ob, roots)

	mapping := make(map[string]string, tvs.Size())
	ordered := util.SortedSlice(tvs)
	for _, tv := range ordered {
		mapping[tv] = candidate.CreateTypeVariable()
	}

	copier := symbols.NewCopier(ob)
	lower := make(map[string]symbols.TypeSymbol)
	upper := make(map[string]symbols.TypeSymbol)
	for _, tv := range ordered {
		if bound := ob.LowerTypeBounds(tv); bound != nil {
			lower[tv] = bound.Copy(copier)
		}
		if bound := ob.UpperTypeBounds(tv); bound != nil {
			upper[tv] = bound.Copy(copier)
		}
	}
	for _, conv := range copier.Copies() {
		conv.Bind(candidate, mapping[conv.TypeVariable()])
	}

	for _, tv := range ordered {
		if bound, ok := upper[tv]; ok {
			if _, err := candidate.AddUpperTypeBound(mapping[tv], bound); err != nil {
				return nil, err
			}
		}
		if bound, ok := lower[tv]; ok {
			if _, err := candidate.AddLowerTypeBound(mapping[tv], bound); err != nil {
				return nil, err
			}
		}
	}
	for _, tv := range ordered {
		for _, ref := range ob.LowerRefBounds(tv) {
			if !tvs.Contains(ref) {
				continue
			}
			if _, err := candidate.AddLowerRefBound(mapping[tv], mapping[ref]); err != nil {
				return nil, err
			}
		}
	}
	for _, tv := range ordered {
		if ob.IsFixedTypeVariable(tv) {
			candidate.FixTypeParameter(mapping[tv])
		}
	}
	return mapping, nil
}

// signatureTypeVariables returns roots and every type variable reachable from
// them through ref bounds or convertibles in their bounds
func signatureTypeVariables(b *bindings.Collection, roots []string) *set.Set[string] {
	seen := set.From(roots)
	todo := util.StackOf(roots...)
	visit := func(tv string) {
		if seen.Insert(tv) {
			todo.Push(tv)
		}
	}
	for tv, ok := todo.Pop(); ok; tv, ok = todo.Pop() {
		for _, ref := range b.LowerRefBounds(tv) {
			visit(ref)
		}
		for _, ref := range b.UpperRefBounds(tv) {
			visit(ref)
		}
		var bounds []symbols.TypeSymbol
		if bound := b.LowerTypeBounds(tv); bound != nil {
			bounds = append(bounds, bound)
		}
		if bound := b.UpperTypeBounds(tv); bound != nil {
			bounds = append(bounds, bound)
		}
		for _, bound := range bounds {
			for _, conv := range symbols.Convertibles(bound) {
				if conv.Owner() == symbols.Owner(b) {
					visit(conv.TypeVariable())
				}
			}
		}
	}
	return seen
}
