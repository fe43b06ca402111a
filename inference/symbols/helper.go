package symbols

import (
	"slices"
)

// Relation is how the first type symbol of a classification relates to the second one
type Relation int

const (
	NoRelation Relation = iota
	Same
	SubtypeOfSecond
)

func (r Relation) String() string {
	switch r {
	case NoRelation:
		return "no relation"
	case Same:
		return "same"
	case SubtypeOfSecond:
		return "subtype"
	}
	return "unknown"
}

// Constraint asks the type variable of Owner to hold at least Type.
// It is produced when a type is checked against a convertible whose type
// variable is not resolved yet.
type Constraint struct {
	Owner        Owner
	TypeVariable string
	Type         TypeSymbol
}

// Result of TypeHelper.Classify
type Result struct {
	Relation Relation
	// Coercive is set when the relation only holds through an implicit conversion
	Coercive bool
	// Witnesses are the conversion targets which make a coercive relation hold
	Witnesses   []TypeSymbol
	Constraints []Constraint
}

// Holds is true when the first type can be used where the second is expected,
// possibly through a conversion
func (r Result) Holds() bool { return r.Relation != NoRelation }

// IsSameOrSubtype is true when the relation holds without conversion
func (r Result) IsSameOrSubtype() bool { return r.Holds() && !r.Coercive }

// Conversion declares that From converts implicitly to To
type Conversion struct {
	From, To TypeSymbol
}

// Classifier decides how two type symbols relate. Implementations must be
// deterministic and free of side effects.
type Classifier interface {
	Classify(a, b TypeSymbol) Result
	IsSameOrSubtype(a, b TypeSymbol) bool
}

var _ Classifier = (*TypeHelper)(nil)

// classifyDepthLimit bounds the recursion through convertible targets
const classifyDepthLimit = 64

var subtype = Result{Relation: SubtypeOfSecond}

// TypeHelper classifies type symbols using the nominal hierarchy and a set of
// implicit conversions
type TypeHelper struct {
	conversions map[string][]TypeSymbol
}

func NewTypeHelper(conversions ...Conversion) *TypeHelper {
	h := &TypeHelper{conversions: make(map[string][]TypeSymbol, len(conversions))}
	for _, c := range conversions {
		h.AddConversion(c)
	}
	return h
}

func (h *TypeHelper) AddConversion(c Conversion) {
	from := c.From.AbsoluteName()
	if slices.ContainsFunc(h.conversions[from], func(t TypeSymbol) bool {
		return t.AbsoluteName() == c.To.AbsoluteName()
	}) {
		return
	}
	h.conversions[from] = append(h.conversions[from], c.To)
}

func (h *TypeHelper) IsSameOrSubtype(a, b TypeSymbol) bool {
	return h.Classify(a, b).IsSameOrSubtype()
}

// Classify reports whether a is the same as or a subtype of b
func (h *TypeHelper) Classify(a, b TypeSymbol) Result {
	return h.classify(a, b, 0)
}

// normalise unwraps aliases and containers which behave like their single member
func normalise(t TypeSymbol) TypeSymbol {
	for {
		switch t.Kind() {
		case KindAlias:
			t = t.(*AliasTypeSymbol).target
		case KindUnion, KindIntersection:
			members := membersOf(t)
			if len(members) == 1 && members[0].Kind() != KindConvertible {
				t = members[0]
				continue
			}
			if len(members) == 0 && t.Kind() == KindIntersection {
				return Mixed
			}
			return t
		case KindScalar, KindArray, KindPseudo, KindConvertible:
			return t
		}
	}
}

func (h *TypeHelper) classify(a, b TypeSymbol, depth int) Result {
	if depth > classifyDepthLimit {
		logger.Warn("classify: exceeded max depth limit", "first", a, "second", b)
		return Result{}
	}
	depth++
	a, b = normalise(a), normalise(b)

	if a.AbsoluteName() == b.AbsoluteName() {
		return Result{Relation: Same}
	}
	if isMixed(b) {
		return subtype
	}

	// containers: union on the left / intersection on the right need all members,
	// intersection on the left / union on the right need one
	if a.Kind() == KindUnion {
		return h.all(membersOf(a), func(member TypeSymbol) Result { return h.classify(member, b, depth) })
	}
	if b.Kind() == KindIntersection {
		return h.all(membersOf(b), func(member TypeSymbol) Result { return h.classify(a, member, depth) })
	}
	if a.Kind() == KindIntersection {
		return h.any(membersOf(a), func(member TypeSymbol) Result { return h.classify(member, b, depth) })
	}
	if b.Kind() == KindUnion {
		return h.any(membersOf(b), func(member TypeSymbol) Result { return h.classify(a, member, depth) })
	}

	if b.Kind() == KindConvertible {
		return h.classifyConvertible(a, b.(*ConvertibleTypeSymbol), depth)
	}
	if a.Kind() == KindConvertible || isMixed(a) {
		return Result{}
	}
	if isNominalSubtype(a, b) {
		return subtype
	}
	return h.coerce(a, b, depth)
}

func (h *TypeHelper) all(members []TypeSymbol, classify func(TypeSymbol) Result) Result {
	res := Result{Relation: Same}
	for _, member := range members {
		r := classify(member)
		if !r.Holds() {
			return Result{}
		}
		if r.Relation == SubtypeOfSecond {
			res.Relation = SubtypeOfSecond
		}
		res.Coercive = res.Coercive || r.Coercive
		res.Witnesses = appendWitnesses(res.Witnesses, r.Witnesses...)
		res.Constraints = append(res.Constraints, r.Constraints...)
	}
	if len(members) == 0 {
		res.Relation = SubtypeOfSecond
	}
	return res
}

func (h *TypeHelper) any(members []TypeSymbol, classify func(TypeSymbol) Result) Result {
	var coercive *Result
	for _, member := range members {
		r := classify(member)
		if r.IsSameOrSubtype() {
			r.Relation = SubtypeOfSecond
			return r
		}
		if r.Holds() && coercive == nil {
			coercive = &r
		}
	}
	if coercive != nil {
		coercive.Relation = SubtypeOfSecond
		return *coercive
	}
	return Result{}
}

func (h *TypeHelper) classifyConvertible(a TypeSymbol, b *ConvertibleTypeSymbol, depth int) Result {
	if a.Kind() == KindConvertible {
		aTarget, bTarget := a.(*ConvertibleTypeSymbol).Target(), b.Target()
		if aTarget == nil || bTarget == nil {
			return Result{}
		}
		if h.classify(aTarget, bTarget, depth).IsSameOrSubtype() {
			return subtype
		}
		return Result{}
	}

	target := b.Target()
	if target == nil {
		if b.owner == nil {
			return subtype
		}
		return Result{
			Relation:    SubtypeOfSecond,
			Constraints: []Constraint{{Owner: b.owner, TypeVariable: b.typeVariable, Type: a}},
		}
	}
	// {as T} includes every type converting to T, the conversion is not ours to track
	r := h.classify(a, target, depth)
	if !r.Holds() {
		return Result{}
	}
	return Result{Relation: SubtypeOfSecond, Constraints: r.Constraints}
}

func isNominalSubtype(a, b TypeSymbol) bool {
	name := b.AbsoluteName()
	seen := make(map[string]struct{})
	queue := slices.Clone(a.Parents())
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		if parent.AbsoluteName() == name {
			return true
		}
		if _, ok := seen[parent.AbsoluteName()]; ok {
			continue
		}
		seen[parent.AbsoluteName()] = struct{}{}
		queue = append(queue, parent.Parents()...)
	}
	return false
}

// ancestors returns t followed by all its nominal super types
func ancestors(t TypeSymbol) []TypeSymbol {
	res := []TypeSymbol{t}
	seen := map[string]struct{}{t.AbsoluteName(): {}}
	for i := 0; i < len(res); i++ {
		for _, parent := range res[i].Parents() {
			if _, ok := seen[parent.AbsoluteName()]; ok {
				continue
			}
			seen[parent.AbsoluteName()] = struct{}{}
			res = append(res, parent)
		}
	}
	return res
}

// coerce looks for implicit conversions of a (or of its super types) whose
// target is the same as or a subtype of b
func (h *TypeHelper) coerce(a, b TypeSymbol, depth int) Result {
	var witnesses []TypeSymbol
	for _, from := range ancestors(a) {
		for _, to := range h.conversions[from.AbsoluteName()] {
			if h.classify(to, b, depth).IsSameOrSubtype() {
				witnesses = appendWitnesses(witnesses, to)
			}
		}
	}
	if len(witnesses) == 0 {
		return Result{}
	}
	// keep the most specific targets only
	witnesses = slices.DeleteFunc(slices.Clone(witnesses), func(w TypeSymbol) bool {
		return slices.ContainsFunc(witnesses, func(other TypeSymbol) bool {
			return other.AbsoluteName() != w.AbsoluteName() && isNominalSubtype(other, w)
		})
	})
	return Result{Relation: SubtypeOfSecond, Coercive: true, Witnesses: witnesses}
}

func appendWitnesses(witnesses []TypeSymbol, add ...TypeSymbol) []TypeSymbol {
	for _, w := range add {
		if !slices.ContainsFunc(witnesses, func(existing TypeSymbol) bool {
			return existing.AbsoluteName() == w.AbsoluteName()
		}) {
			witnesses = append(witnesses, w)
		}
	}
	return witnesses
}
