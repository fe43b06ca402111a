package bindings

import (
	"slices"

	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
	"github.com/TinsPHP/tins-symbols-sub001/util"
	"github.com/hashicorp/go-set/v3"
)

// FixType freezes the type variable of the local variable id: its lower bound
// becomes its final type, or its upper bound if it has no lower bound, or mixed.
// The final type is pushed along the ref bounds of the type variable before they are cut.
func (c *Collection) FixType(id string) {
	c.fixTypeVariable(c.mustVariable(id).typeVariable, false)
}

// FixTypeParameter freezes a parameter type variable: its upper bound becomes
// its final type, or mixed if it has none
func (c *Collection) FixTypeParameter(typeVariable string) {
	c.mustBeKnown(typeVariable)
	c.fixTypeVariable(typeVariable, true)
}

func (c *Collection) fixTypeVariable(tv string, asParameter bool) {
	if c.fixedTypeVariables.Contains(tv) {
		return
	}
	var final symbols.TypeSymbol = symbols.Mixed
	lower, upper := c.lowerTypeBounds[tv], c.upperTypeBounds[tv]
	switch {
	case !asParameter && lower != nil:
		final = lower
	case upper != nil:
		final = upper
	}
	c.lowerTypeBounds[tv] = c.factory.CreateUnionTypeSymbol(final)
	c.upperTypeBounds[tv] = c.factory.CreateIntersectionTypeSymbol(final)
	c.registerBoundTypes(final)

	c.fixedTypeVariables.Insert(tv)
	if vars, ok := c.typeVariable2Variables[tv]; ok {
		for id := range vars.Items() {
			c.variable2TypeVariable[id].fixed = true
		}
	}
	for _, upper := range c.UpperRefBounds(tv) {
		if _, err := c.addLowerTypeBound(upper, final); err != nil {
			c.logger.Warn("could not propagate fixed type", "typeVariable", tv, "to", upper, "error", err)
		}
		c.removeRefEdge(upper, tv)
	}
	for _, lower := range c.LowerRefBounds(tv) {
		if _, err := c.addUpperTypeBound(lower, final); err != nil {
			c.logger.Warn("could not propagate fixed type", "typeVariable", tv, "to", lower, "error", err)
		}
		c.removeRefEdge(tv, lower)
	}
	for _, conv := range c.typeVariable2BoundTypes[tv] {
		conv.OnTypeVariableFixed(tv)
	}
	c.logger.Debug("fixed type variable", "typeVariable", tv, "type", c.lowerTypeBounds[tv], "parameter", asParameter)
}

// RenameTypeVariable merges from into to: the variables, bounds, edges and
// convertibles of from move over to to, and from is forgotten.
// Bounds are merged without compatibility checks.
func (c *Collection) RenameTypeVariable(from, to string) {
	c.mustBeKnown(from)
	c.mustBeKnown(to)
	if from == to {
		return
	}
	c.logger.Debug("renaming type variable", "from", from, "to", to)

	toVars := c.typeVariable2Variables[to]
	for id := range c.typeVariable2Variables[from].Items() {
		ref := c.variable2TypeVariable[id]
		ref.typeVariable = to
		ref.fixed = c.IsFixedTypeVariable(to)
		toVars.Insert(id)
	}
	delete(c.typeVariable2Variables, from)

	if lower, ok := c.lowerTypeBounds[from]; ok {
		if existing, ok := c.lowerTypeBounds[to]; ok {
			existing.Merge(lower)
		} else {
			c.lowerTypeBounds[to] = lower
		}
		delete(c.lowerTypeBounds, from)
	}
	if upper, ok := c.upperTypeBounds[from]; ok {
		if existing, ok := c.upperTypeBounds[to]; ok {
			existing.Merge(upper)
		} else {
			c.upperTypeBounds[to] = upper
		}
		delete(c.upperTypeBounds, from)
	}

	for _, lower := range c.LowerRefBounds(from) {
		c.removeRefEdge(from, lower)
		if lower != to {
			c.addRefEdge(to, lower)
		}
	}
	for _, upper := range c.UpperRefBounds(from) {
		c.removeRefEdge(upper, from)
		if upper != to {
			c.addRefEdge(upper, to)
		}
	}

	for _, conv := range c.typeVariable2BoundTypes[from] {
		conv.Bind(c, to)
		if !slices.Contains(c.typeVariable2BoundTypes[to], conv) {
			c.typeVariable2BoundTypes[to] = append(c.typeVariable2BoundTypes[to], conv)
		}
	}
	delete(c.typeVariable2BoundTypes, from)
	c.fixedTypeVariables.Remove(from)
}

// reachable returns the type variables reachable from start following edges,
// start included
func reachable(start string, edges map[string]*set.TreeSet[string]) *set.Set[string] {
	seen := set.From([]string{start})
	todo := util.StackOf(start)
	for tv, ok := todo.Pop(); ok; tv, ok = todo.Pop() {
		refs, found := edges[tv]
		if !found {
			continue
		}
		for _, next := range refs.Slice() {
			if seen.Insert(next) {
				todo.Push(next)
			}
		}
	}
	return seen
}
