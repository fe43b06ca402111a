package bindings

import (
	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v3"
)

// Copy returns a deep copy of the collection. Convertibles bound to a type
// variable of c are cloned and rebound to the copy, so that mutating the copy
// never affects c.
func (c *Collection) Copy() *Collection {
	id := uuid.New()
	cp := &Collection{
		id:                      id,
		factory:                 c.factory,
		helper:                  c.helper,
		prefix:                  c.prefix,
		count:                   c.count,
		variable2TypeVariable:   make(map[string]*TypeVariableReference, len(c.variable2TypeVariable)),
		typeVariable2Variables:  make(map[string]*set.Set[string], len(c.typeVariable2Variables)),
		lowerTypeBounds:         make(map[string]*symbols.UnionTypeSymbol, len(c.lowerTypeBounds)),
		upperTypeBounds:         make(map[string]*symbols.IntersectionTypeSymbol, len(c.upperTypeBounds)),
		lowerRefBounds:          copyRefs(c.lowerRefBounds),
		upperRefBounds:          copyRefs(c.upperRefBounds),
		typeVariable2BoundTypes: make(map[string][]*symbols.ConvertibleTypeSymbol, len(c.typeVariable2BoundTypes)),
		fixedTypeVariables:      c.fixedTypeVariables.Copy(),
		logger:                  logger.With("collection", id.String(), "copyOf", c.id.String()),
	}

	for name, ref := range c.variable2TypeVariable {
		cp.variable2TypeVariable[name] = &TypeVariableReference{typeVariable: ref.typeVariable, fixed: ref.fixed}
	}
	for tv, vars := range c.typeVariable2Variables {
		cp.typeVariable2Variables[tv] = vars.Copy()
	}

	copier := symbols.NewCopier(c)
	for tv, lower := range c.lowerTypeBounds {
		cp.lowerTypeBounds[tv] = lower.Copy(copier)
	}
	for tv, upper := range c.upperTypeBounds {
		cp.upperTypeBounds[tv] = upper.Copy(copier)
	}
	for tv, bound := range c.typeVariable2BoundTypes {
		copied := make([]*symbols.ConvertibleTypeSymbol, 0, len(bound))
		for _, conv := range bound {
			copied = append(copied, copier.Convertible(conv))
		}
		cp.typeVariable2BoundTypes[tv] = copied
	}
	copier.Rebind(cp)

	c.logger.Debug("copied bindings", "copy", id.String())
	return cp
}

func copyRefs(refs map[string]*set.TreeSet[string]) map[string]*set.TreeSet[string] {
	copied := make(map[string]*set.TreeSet[string], len(refs))
	for tv, r := range refs {
		copied[tv] = r.Copy()
	}
	return copied
}
