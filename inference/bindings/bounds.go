package bindings

import (
	"github.com/TinsPHP/tins-symbols-sub001/inference/inferr"
	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
)

// AddLowerTypeBound asserts typeSymbol <: typeVariable and propagates the new
// bound to every type variable above typeVariable.
// It reports whether the lower bound of typeVariable changed.
// A returned error is an inferr.BoundViolation: the collection must then be discarded.
func (c *Collection) AddLowerTypeBound(typeVariable string, typeSymbol symbols.TypeSymbol) (bool, error) {
	c.mustBeKnown(typeVariable)
	return c.addLowerTypeBound(typeVariable, typeSymbol)
}

// AddUpperTypeBound asserts typeVariable <: typeSymbol and propagates the new
// bound to every type variable below typeVariable.
// It reports whether the upper bound of typeVariable changed.
func (c *Collection) AddUpperTypeBound(typeVariable string, typeSymbol symbols.TypeSymbol) (bool, error) {
	c.mustBeKnown(typeVariable)
	return c.addUpperTypeBound(typeVariable, typeSymbol)
}

// AddLowerRefBound asserts refTypeVariable <: typeVariable.
// It reports whether a new edge was recorded. Edges touching a fixed type
// variable are not recorded, the bounds are propagated nonetheless.
func (c *Collection) AddLowerRefBound(typeVariable, refTypeVariable string) (bool, error) {
	c.mustBeKnown(typeVariable)
	c.mustBeKnown(refTypeVariable)
	if typeVariable == refTypeVariable {
		return false, nil
	}
	changed := false
	if !c.IsFixedTypeVariable(typeVariable) && !c.IsFixedTypeVariable(refTypeVariable) {
		changed = c.addRefEdge(typeVariable, refTypeVariable)
	}
	if changed {
		c.logger.Debug("added ref bound", "lower", refTypeVariable, "upper", typeVariable)
	}
	if upper := c.upperTypeBounds[typeVariable]; upper != nil {
		if _, err := c.addUpperTypeBound(refTypeVariable, upper); err != nil {
			return changed, err
		}
	}
	if lower := c.lowerTypeBounds[refTypeVariable]; lower != nil {
		if _, err := c.addLowerTypeBound(typeVariable, lower); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

func (c *Collection) addLowerTypeBound(tv string, t symbols.TypeSymbol) (bool, error) {
	t = symbols.StripSelfReferences(t, c, tv)
	if t == nil {
		return false, nil
	}

	var res symbols.Result
	upper := c.upperTypeBounds[tv]
	if upper != nil {
		res = c.helper.Classify(t, upper)
		if !res.Holds() {
			return false, inferr.New(inferr.NewLowerBound{TypeVariable: tv, New: t, UpperBound: upper})
		}
		if res.Coercive && len(res.Witnesses) > 1 {
			return false, inferr.New(inferr.NewAmbiguousConversion{TypeVariable: tv, From: t, To: upper, Providers: res.Witnesses})
		}
	}
	if err := c.applyConstraints(res.Constraints); err != nil {
		return false, err
	}
	if c.IsFixedTypeVariable(tv) {
		return false, nil
	}

	c.registerBoundTypes(t)
	lower := c.lowerTypeBounds[tv]
	if lower == nil {
		lower = c.factory.CreateUnionTypeSymbol()
		c.lowerTypeBounds[tv] = lower
	}
	changed := lower.AddTypeSymbol(t)

	if res.Coercive && len(res.Witnesses) == 1 {
		if _, err := c.narrowUpperBound(tv, res.Witnesses[0]); err != nil {
			return changed, err
		}
	}
	if !changed {
		return false, nil
	}
	c.logger.Debug("added lower bound", "typeVariable", tv, "bound", t, "lower", lower)
	for _, ref := range c.UpperRefBounds(tv) {
		if _, err := c.addLowerTypeBound(ref, t); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (c *Collection) addUpperTypeBound(tv string, t symbols.TypeSymbol) (bool, error) {
	t = symbols.StripSelfReferences(t, c, tv)
	if t == nil {
		return false, nil
	}

	var res symbols.Result
	lower := c.lowerTypeBounds[tv]
	if lower != nil {
		res = c.helper.Classify(lower, t)
		if !res.Holds() {
			return false, inferr.New(inferr.NewUpperBound{TypeVariable: tv, New: t, LowerBound: lower})
		}
		if res.Coercive && len(res.Witnesses) > 1 {
			return false, inferr.New(inferr.NewAmbiguousConversion{TypeVariable: tv, From: lower, To: t, Providers: res.Witnesses})
		}
	}
	if err := c.applyConstraints(res.Constraints); err != nil {
		return false, err
	}
	if c.IsFixedTypeVariable(tv) {
		return false, nil
	}

	upper := c.upperTypeBounds[tv]
	if upper == nil {
		upper = c.factory.CreateIntersectionTypeSymbol()
		c.upperTypeBounds[tv] = upper
	} else if err := c.checkSatisfiable(tv, t, upper); err != nil {
		return false, err
	}
	c.registerBoundTypes(t)
	changed := upper.AddTypeSymbol(t)

	if res.Coercive && len(res.Witnesses) == 1 {
		narrowed, err := c.narrowUpperBound(tv, res.Witnesses[0])
		if err != nil || narrowed {
			return true, err
		}
	}
	if !changed {
		return false, nil
	}
	c.logger.Debug("added upper bound", "typeVariable", tv, "bound", t, "upper", upper)
	for _, ref := range c.LowerRefBounds(tv) {
		if _, err := c.addUpperTypeBound(ref, t); err != nil {
			return true, err
		}
	}
	return true, nil
}

// narrowUpperBound replaces the upper bound of tv by the single conversion
// target which made the lower bound fit. Former upper bound members which the
// lower bound no longer satisfies are discarded.
func (c *Collection) narrowUpperBound(tv string, witness symbols.TypeSymbol) (bool, error) {
	upper := c.upperTypeBounds[tv]
	narrowed := c.factory.CreateIntersectionTypeSymbol(witness)
	lower := c.lowerTypeBounds[tv]
	if upper != nil {
		for _, member := range upper.Members() {
			if lower != nil && !c.helper.Classify(lower, member).Holds() {
				c.logger.Debug("narrowing discards upper bound", "typeVariable", tv, "member", member)
				continue
			}
			narrowed.AddTypeSymbol(member)
		}
		if narrowed.AbsoluteName() == upper.AbsoluteName() {
			return false, nil
		}
	}
	c.upperTypeBounds[tv] = narrowed
	c.registerBoundTypes(narrowed)
	c.logger.Debug("narrowed upper bound", "typeVariable", tv, "witness", witness, "upper", narrowed)
	for _, ref := range c.LowerRefBounds(tv) {
		if _, err := c.addUpperTypeBound(ref, narrowed); err != nil {
			return true, err
		}
	}
	return true, nil
}

// checkSatisfiable rejects t when some nominal member of upper and t are
// unrelated in both directions, even through implicit conversions
func (c *Collection) checkSatisfiable(tv string, t symbols.TypeSymbol, upper *symbols.IntersectionTypeSymbol) error {
	if !isNominal(t) {
		return nil
	}
	for _, member := range upper.Members() {
		if !isNominal(member) {
			continue
		}
		if c.helper.Classify(t, member).Holds() || c.helper.Classify(member, t).Holds() {
			continue
		}
		return inferr.New(inferr.NewIntersectionBound{TypeVariable: tv, New: t, Existing: member})
	}
	return nil
}

func isNominal(t symbols.TypeSymbol) bool {
	switch t.Kind() {
	case symbols.KindScalar, symbols.KindArray:
		return true
	case symbols.KindAlias:
		return isNominal(t.(*symbols.AliasTypeSymbol).Target())
	default:
		return false
	}
}

// applyConstraints records the lower bounds required by convertibles of this
// collection which were not resolved yet when a bound was classified
func (c *Collection) applyConstraints(constraints []symbols.Constraint) error {
	for _, constraint := range constraints {
		if constraint.Owner != symbols.Owner(c) || !c.isKnown(constraint.TypeVariable) {
			continue
		}
		if _, err := c.addLowerTypeBound(constraint.TypeVariable, constraint.Type); err != nil {
			return err
		}
	}
	return nil
}

// registerBoundTypes remembers the convertibles of t bound to a type variable
// of this collection, so they can be notified once it gets fixed
func (c *Collection) registerBoundTypes(t symbols.TypeSymbol) {
	for _, conv := range symbols.Convertibles(t) {
		if conv.Owner() != symbols.Owner(c) {
			continue
		}
		tv := conv.TypeVariable()
		known := false
		for _, bound := range c.typeVariable2BoundTypes[tv] {
			if bound == conv {
				known = true
				break
			}
		}
		if !known {
			c.typeVariable2BoundTypes[tv] = append(c.typeVariable2BoundTypes[tv], conv)
		}
	}
}

// addRefEdge records lower <: upper
func (c *Collection) addRefEdge(upper, lower string) bool {
	lowerRefs, ok := c.lowerRefBounds[upper]
	if !ok {
		lowerRefs = newRefSet()
		c.lowerRefBounds[upper] = lowerRefs
	}
	upperRefs, ok := c.upperRefBounds[lower]
	if !ok {
		upperRefs = newRefSet()
		c.upperRefBounds[lower] = upperRefs
	}
	upperRefs.Insert(upper)
	return lowerRefs.Insert(lower)
}

func (c *Collection) removeRefEdge(upper, lower string) {
	if refs, ok := c.lowerRefBounds[upper]; ok {
		refs.Remove(lower)
		if refs.Empty() {
			delete(c.lowerRefBounds, upper)
		}
	}
	if refs, ok := c.upperRefBounds[lower]; ok {
		refs.Remove(upper)
		if refs.Empty() {
			delete(c.upperRefBounds, lower)
		}
	}
}
