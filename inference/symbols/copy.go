package symbols

import "slices"

// Copier deep-copies type symbols. Convertibles owned by from are cloned
// exactly once, so that they can be rebound to the copy of their owner.
type Copier struct {
	from   Owner
	copies map[*ConvertibleTypeSymbol]*ConvertibleTypeSymbol
	order  []*ConvertibleTypeSymbol
}

// NewCopier returns a Copier cloning the convertibles owned by from.
// With a nil from only containers are copied.
func NewCopier(from Owner) *Copier {
	return &Copier{
		from:   from,
		copies: make(map[*ConvertibleTypeSymbol]*ConvertibleTypeSymbol),
	}
}

func (c *Copier) Copy(t TypeSymbol) TypeSymbol {
	switch t.Kind() {
	case KindUnion:
		return t.(*UnionTypeSymbol).Copy(c)
	case KindIntersection:
		return t.(*IntersectionTypeSymbol).Copy(c)
	case KindConvertible:
		return c.Convertible(t.(*ConvertibleTypeSymbol))
	case KindScalar, KindArray, KindPseudo, KindAlias:
		return t
	}
	panic("unknown kind " + t.Kind().String())
}

// Convertible returns the clone of t, or t itself when t is not owned by the
// collection being copied
func (c *Copier) Convertible(t *ConvertibleTypeSymbol) *ConvertibleTypeSymbol {
	if c.from == nil || t.owner != c.from {
		return t
	}
	if copied, ok := c.copies[t]; ok {
		return copied
	}
	copied := &ConvertibleTypeSymbol{
		owner:        t.owner,
		typeVariable: t.typeVariable,
		fixed:        t.fixed,
	}
	c.copies[t] = copied
	c.order = append(c.order, copied)
	return copied
}

// Copies returns the cloned convertibles in the order they were cloned
func (c *Copier) Copies() []*ConvertibleTypeSymbol {
	return slices.Clone(c.order)
}

// Rebind attaches every cloned convertible to owner
func (c *Copier) Rebind(owner Owner) {
	for _, copied := range c.order {
		copied.Rebind(owner)
	}
}

// StripSelfReferences removes the convertibles bound to typeVariable of owner
// from t. It returns nil if nothing remains.
func StripSelfReferences(t TypeSymbol, owner Owner, typeVariable string) TypeSymbol {
	switch t.Kind() {
	case KindConvertible:
		if t.(*ConvertibleTypeSymbol).IsBoundTo(owner, typeVariable) {
			logger.Debug("dropping self reference", "typeVariable", typeVariable)
			return nil
		}
		return t
	case KindUnion, KindIntersection:
		c := t.(containerSymbol)
		stripped := make([]TypeSymbol, 0, c.Len())
		changed := false
		for _, member := range c.Members() {
			s := StripSelfReferences(member, owner, typeVariable)
			changed = changed || s != member
			if s != nil {
				stripped = append(stripped, s)
			}
		}
		if !changed {
			return t
		}
		if len(stripped) == 0 {
			return nil
		}
		if u, ok := t.(*UnionTypeSymbol); ok {
			res := &UnionTypeSymbol{container: newContainer(u.helper)}
			for _, s := range stripped {
				res.AddTypeSymbol(s)
			}
			return res
		}
		res := &IntersectionTypeSymbol{container: newContainer(t.(*IntersectionTypeSymbol).helper)}
		for _, s := range stripped {
			res.AddTypeSymbol(s)
		}
		return res
	case KindScalar, KindArray, KindPseudo, KindAlias:
		return t
	}
	panic("unknown kind " + t.Kind().String())
}

// Convertibles returns the convertibles contained in t, including t itself
func Convertibles(t TypeSymbol) []*ConvertibleTypeSymbol {
	switch t.Kind() {
	case KindConvertible:
		return []*ConvertibleTypeSymbol{t.(*ConvertibleTypeSymbol)}
	case KindUnion, KindIntersection:
		var res []*ConvertibleTypeSymbol
		for _, member := range membersOf(t) {
			res = append(res, Convertibles(member)...)
		}
		return res
	case KindScalar, KindArray, KindPseudo, KindAlias:
		return nil
	}
	panic("unknown kind " + t.Kind().String())
}
