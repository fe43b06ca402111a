package symbols

// Owner is the read side of a binding collection, as seen by the convertible
// types bound to one of its type variables.
type Owner interface {
	// LowerTypeBounds returns nil if the type variable has no lower type bound
	LowerTypeBounds(typeVariable string) *UnionTypeSymbol
	// UpperTypeBounds returns nil if the type variable has no upper type bound
	UpperTypeBounds(typeVariable string) *IntersectionTypeSymbol
	IsFixedTypeVariable(typeVariable string) bool
}

// ConvertibleTypeSymbol represents {as T}: any type which can be converted
// implicitly to whatever the type variable T of its owner resolves to.
type ConvertibleTypeSymbol struct {
	owner        Owner
	typeVariable string
	fixed        bool
}

func (t *ConvertibleTypeSymbol) Kind() Kind            { return KindConvertible }
func (t *ConvertibleTypeSymbol) Parents() []TypeSymbol { return nil }
func (t *ConvertibleTypeSymbol) IsFixed() bool         { return t.fixed }
func (t *ConvertibleTypeSymbol) Owner() Owner          { return t.owner }
func (t *ConvertibleTypeSymbol) TypeVariable() string  { return t.typeVariable }
func (t *ConvertibleTypeSymbol) String() string        { return t.AbsoluteName() }

func (t *ConvertibleTypeSymbol) AbsoluteName() string {
	if t.owner == nil {
		return "{as ?}"
	}
	if t.fixed {
		if target := t.Target(); target != nil {
			return "{as " + target.AbsoluteName() + "}"
		}
	}
	return "{as " + t.typeVariable + "}"
}

// IsBoundTo reports whether t stands for the type variable typeVariable of owner
func (t *ConvertibleTypeSymbol) IsBoundTo(owner Owner, typeVariable string) bool {
	return t.owner != nil && t.owner == owner && t.typeVariable == typeVariable
}

// Bind attaches the convertible to a type variable of owner
func (t *ConvertibleTypeSymbol) Bind(owner Owner, typeVariable string) {
	t.owner = owner
	t.typeVariable = typeVariable
	t.fixed = owner.IsFixedTypeVariable(typeVariable)
}

// Rebind moves the convertible to a copy of its owner, keeping its type variable
func (t *ConvertibleTypeSymbol) Rebind(owner Owner) {
	t.Bind(owner, t.typeVariable)
}

// OnTypeVariableFixed is called by the owner once typeVariable got fixed
func (t *ConvertibleTypeSymbol) OnTypeVariableFixed(typeVariable string) {
	if t.owner != nil && t.typeVariable == typeVariable {
		t.fixed = t.owner.IsFixedTypeVariable(typeVariable)
	}
}

// Target is the type the type variable currently resolves to: its upper bound,
// otherwise its lower bound, otherwise nil
func (t *ConvertibleTypeSymbol) Target() TypeSymbol {
	if t.owner == nil {
		return nil
	}
	if upper := t.owner.UpperTypeBounds(t.typeVariable); upper != nil {
		return upper
	}
	if lower := t.owner.LowerTypeBounds(t.typeVariable); lower != nil {
		return lower
	}
	return nil
}

// targetOwner privately owns the single, fixed type variable of {as target}
type targetOwner struct {
	lower *UnionTypeSymbol
	upper *IntersectionTypeSymbol
}

const targetTypeVariable = "T"

func newTargetOwner(helper Classifier, target TypeSymbol) *targetOwner {
	lower := &UnionTypeSymbol{container: newContainer(helper)}
	lower.AddTypeSymbol(target)
	upper := &IntersectionTypeSymbol{container: newContainer(helper)}
	upper.AddTypeSymbol(target)
	return &targetOwner{lower: lower, upper: upper}
}

func (o *targetOwner) LowerTypeBounds(string) *UnionTypeSymbol        { return o.lower }
func (o *targetOwner) UpperTypeBounds(string) *IntersectionTypeSymbol { return o.upper }
func (o *targetOwner) IsFixedTypeVariable(string) bool                { return true }
