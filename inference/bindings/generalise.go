package bindings

import (
	"slices"

	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
	"github.com/TinsPHP/tins-symbols-sub001/util"
	"github.com/hashicorp/go-set/v3"
)

// TryToFix generalises the collection of a function once its body has been
// analysed, given the type variables of its parameters:
//   - parameters the return value does not depend on get their final type
//   - type variables which only alias a parameter are merged into it
//   - locals which no generic type variable flows into are fixed
//   - parameters in a cycle of ref bounds are merged
//
// It returns the type variables which remain generic.
func (c *Collection) TryToFix(parameterTypeVariables []string) *set.Set[string] {
	params := set.From(parameterTypeVariables)
	kept := set.New[string](len(parameterTypeVariables))
	visited := set.New[string](0)

	flows := set.New[string](0)
	rtrn, hasReturn := c.returnTypeVariable()
	if hasReturn && !c.isDetermined(rtrn) {
		flows = reachable(rtrn, c.lowerRefBounds)
	}

	for _, p := range c.sortedTypeVariables(params) {
		if !c.isKnown(p) || c.IsFixedTypeVariable(p) {
			continue
		}
		if flows.Contains(p) && !c.isShadowed(p, rtrn) {
			kept.Insert(p)
			visited.InsertSet(reachable(p, c.upperRefBounds).Intersect(flows))
			continue
		}
		c.logger.Debug("parameter does not affect the return type", "typeVariable", p)
		c.fixTypeVariable(p, true)
	}
	for _, tv := range c.nestedTypeVariables(kept) {
		visited.Insert(tv)
	}

	c.mergeAliases(params, kept)
	c.fixLocals(params, visited)
	c.mergeRecursiveParameters(kept)

	remaining := set.New[string](0)
	for tv := range c.typeVariable2Variables {
		if !c.IsFixedTypeVariable(tv) {
			remaining.Insert(tv)
		}
	}
	c.logger.Debug("generalised", "remaining", remaining, "bindings", c)
	return remaining
}

func (c *Collection) returnTypeVariable() (string, bool) {
	ref, ok := c.variable2TypeVariable[ReturnVariableName]
	if !ok {
		return "", false
	}
	return ref.typeVariable, true
}

// isDetermined reports whether tv is fixed or its lower and upper bounds coincide
func (c *Collection) isDetermined(tv string) bool {
	if c.IsFixedTypeVariable(tv) {
		return true
	}
	lower, upper := c.lowerTypeBounds[tv], c.upperTypeBounds[tv]
	return lower != nil && upper != nil && lower.AbsoluteName() == upper.AbsoluteName()
}

func (c *Collection) sortedTypeVariables(tvs set.Collection[string]) []string {
	return slices.SortedFunc(tvs.Items(), compareTypeVariables)
}

// isShadowed reports whether the return type already covers anything the
// parameter could be, non-coercively, which makes keeping it generic pointless
func (c *Collection) isShadowed(p, rtrn string) bool {
	upper, lower := c.upperTypeBounds[p], c.lowerTypeBounds[rtrn]
	if upper == nil || lower == nil {
		return false
	}
	res := c.helper.Classify(upper, lower)
	return res.Relation == symbols.SubtypeOfSecond && !res.Coercive
}

// nestedTypeVariables returns the unfixed type variables of this collection
// which convertibles in the bounds of tvs refer to, transitively
func (c *Collection) nestedTypeVariables(tvs *set.Set[string]) []string {
	seen := tvs.Copy()
	var nested []string
	todo := util.StackOf(tvs.Slice()...)
	for tv, ok := todo.Pop(); ok; tv, ok = todo.Pop() {
		var bounds []symbols.TypeSymbol
		if lower := c.lowerTypeBounds[tv]; lower != nil {
			bounds = append(bounds, lower)
		}
		if upper := c.upperTypeBounds[tv]; upper != nil {
			bounds = append(bounds, upper)
		}
		for _, bound := range bounds {
			for _, conv := range symbols.Convertibles(bound) {
				next := conv.TypeVariable()
				if conv.Owner() != symbols.Owner(c) || c.IsFixedTypeVariable(next) || !seen.Insert(next) {
					continue
				}
				nested = append(nested, next)
				todo.Push(next)
			}
		}
	}
	return nested
}

// mergeAliases renames into p every type variable whose only lower ref bound
// is the generic parameter p and whose lower bound equals the one of p
func (c *Collection) mergeAliases(params, kept *set.Set[string]) {
	for changed := true; changed; {
		changed = false
		for _, tv := range c.TypeVariables() {
			if params.Contains(tv) || c.IsFixedTypeVariable(tv) {
				continue
			}
			lowerRefs := c.LowerRefBounds(tv)
			if len(lowerRefs) != 1 || !kept.Contains(lowerRefs[0]) {
				continue
			}
			p := lowerRefs[0]
			if !sameBound(c.lowerTypeBounds[tv], c.lowerTypeBounds[p]) {
				continue
			}
			c.RenameTypeVariable(tv, p)
			changed = true
		}
	}
}

func sameBound(a, b *symbols.UnionTypeSymbol) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.AbsoluteName() == b.AbsoluteName()
}

// fixLocals fixes the locals which no generic type variable flows into, until
// no more can be fixed
func (c *Collection) fixLocals(params, visited *set.Set[string]) {
	for changed := true; changed; {
		changed = false
		for _, tv := range c.TypeVariables() {
			if params.Contains(tv) || visited.Contains(tv) || c.IsFixedTypeVariable(tv) || c.HasLowerRefBounds(tv) {
				continue
			}
			c.fixTypeVariable(tv, false)
			changed = true
		}
	}
}

// mergeRecursiveParameters merges the type variables which are both above and
// below a generic parameter into it
func (c *Collection) mergeRecursiveParameters(kept *set.Set[string]) {
	for _, p := range c.sortedTypeVariables(kept) {
		if !c.isKnown(p) || c.IsFixedTypeVariable(p) {
			continue
		}
		cycle := reachable(p, c.upperRefBounds).Intersect(reachable(p, c.lowerRefBounds))
		for _, tv := range c.sortedTypeVariables(cycle) {
			if tv == p || !c.isKnown(tv) || c.IsFixedTypeVariable(tv) {
				continue
			}
			c.RenameTypeVariable(tv, p)
		}
	}
}
