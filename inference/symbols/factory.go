package symbols

// Factory creates the container and convertible symbols used by the binding
// collections, so that their construction stays in one place
type Factory struct {
	helper Classifier
}

func NewFactory(helper Classifier) *Factory {
	return &Factory{helper: helper}
}

func (f *Factory) Helper() Classifier { return f.helper }

// Mixed returns the top type
func (f *Factory) Mixed() TypeSymbol { return Mixed }

func (f *Factory) CreateUnionTypeSymbol(members ...TypeSymbol) *UnionTypeSymbol {
	u := &UnionTypeSymbol{container: newContainer(f.helper)}
	for _, member := range members {
		u.AddTypeSymbol(member)
	}
	return u
}

func (f *Factory) CreateIntersectionTypeSymbol(members ...TypeSymbol) *IntersectionTypeSymbol {
	i := &IntersectionTypeSymbol{container: newContainer(f.helper)}
	for _, member := range members {
		i.AddTypeSymbol(member)
	}
	return i
}

// CreateConvertibleType returns an unbound {as ?}, to be bound to a type variable
func (f *Factory) CreateConvertibleType() *ConvertibleTypeSymbol {
	return &ConvertibleTypeSymbol{}
}

// CreateConvertibleTypeOf returns {as target}, whose type variable lives in a
// private, already fixed owner
func (f *Factory) CreateConvertibleTypeOf(target TypeSymbol) *ConvertibleTypeSymbol {
	t := &ConvertibleTypeSymbol{}
	t.Bind(newTargetOwner(f.helper, target), targetTypeVariable)
	return t
}
