package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func witnessNames(r Result) []string {
	names := make([]string, 0, len(r.Witnesses))
	for _, w := range r.Witnesses {
		names = append(names, w.AbsoluteName())
	}
	return names
}

func TestClassify(t *testing.T) {
	f := newTestFactory(DefaultConversions()...)
	h := f.Helper()
	intAlias := NewAliasTypeSymbol("integer", Int)

	testCases := []struct {
		name      string
		a, b      TypeSymbol
		relation  Relation
		coercive  bool
		witnesses []string
	}{
		{name: "same", a: Int, b: Int, relation: Same},
		{name: "nominal subtype", a: Int, b: Num, relation: SubtypeOfSecond},
		{name: "transitive subtype", a: Int, b: Scalar, relation: SubtypeOfSecond},
		{name: "parent is not a subtype", a: Num, b: Int, relation: NoRelation},
		{name: "unrelated", a: String, b: Array, relation: NoRelation},
		{name: "mixed is top", a: Array, b: Mixed, relation: SubtypeOfSecond},
		{name: "mixed is no subtype", a: Mixed, b: Int, relation: NoRelation},
		{name: "nothing is bottom", a: f.CreateUnionTypeSymbol(), b: Int, relation: SubtypeOfSecond},
		{name: "empty intersection is mixed", a: Mixed, b: f.CreateIntersectionTypeSymbol(), relation: Same},
		{name: "single member container", a: f.CreateUnionTypeSymbol(Int), b: Int, relation: Same},
		{name: "union needs all members", a: f.CreateUnionTypeSymbol(Int, Float), b: Num, relation: SubtypeOfSecond},
		{name: "union with unrelated member", a: f.CreateUnionTypeSymbol(Int, Array), b: Num, relation: NoRelation},
		{name: "intersection on the right needs all", a: Int, b: f.CreateIntersectionTypeSymbol(Num, Array), relation: NoRelation},
		{name: "intersection on the right", a: Int, b: f.CreateIntersectionTypeSymbol(Num, Scalar), relation: SubtypeOfSecond},
		{name: "union on the right needs one", a: Int, b: f.CreateUnionTypeSymbol(Num, Array), relation: SubtypeOfSecond},
		{name: "intersection on the left needs one", a: f.CreateIntersectionTypeSymbol(Int, Array), b: Num, relation: SubtypeOfSecond},
		{name: "alias relates as target", a: intAlias, b: Num, relation: SubtypeOfSecond},
		{name: "alias same as target", a: intAlias, b: Int, relation: Same},
		{
			name: "implicit conversion", a: Bool, b: Num,
			relation: SubtypeOfSecond, coercive: true, witnesses: []string{"int"},
		},
		{
			name: "nominal relation wins over conversion", a: Int, b: Scalar,
			relation: SubtypeOfSecond,
		},
		{
			name: "conversion through super type is not inherited downwards", a: Num, b: String,
			relation: NoRelation,
		},
		{
			name: "conversion into union", a: Bool, b: f.CreateUnionTypeSymbol(Int, Array),
			relation: SubtypeOfSecond, coercive: true, witnesses: []string{"int"},
		},
		{
			name: "conversion into intersection", a: Bool, b: f.CreateIntersectionTypeSymbol(Num, Scalar),
			relation: SubtypeOfSecond, coercive: true, witnesses: []string{"int"},
		},
		{name: "no conversion", a: String, b: Int, relation: NoRelation},
		{name: "convertible target", a: Int, b: f.CreateConvertibleTypeOf(Num), relation: SubtypeOfSecond},
		{name: "convertible absorbs conversion", a: Bool, b: f.CreateConvertibleTypeOf(Num), relation: SubtypeOfSecond},
		{name: "not convertible", a: Array, b: f.CreateConvertibleTypeOf(Num), relation: NoRelation},
		{name: "convertible only below mixed", a: f.CreateConvertibleTypeOf(Int), b: Int, relation: NoRelation},
		{name: "convertible below convertible", a: f.CreateConvertibleTypeOf(Int), b: f.CreateConvertibleTypeOf(Num), relation: SubtypeOfSecond},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := h.Classify(tc.a, tc.b)
			assert.Equal(t, tc.relation, r.Relation, "%s vs %s", tc.a, tc.b)
			assert.Equal(t, tc.coercive, r.Coercive)
			if tc.witnesses != nil {
				assert.Equal(t, tc.witnesses, witnessNames(r))
			}
		})
	}
}

func TestClassifyAmbiguousConversion(t *testing.T) {
	h := NewTypeHelper(Conversion{From: Bool, To: Int}, Conversion{From: Bool, To: Float})
	r := h.Classify(Bool, Num)
	assert.True(t, r.Holds())
	assert.True(t, r.Coercive)
	assert.ElementsMatch(t, []string{"float", "int"}, witnessNames(r))

	r = h.Classify(Bool, Int)
	assert.Equal(t, []string{"int"}, witnessNames(r))
}

func TestClassifyUnresolvedConvertible(t *testing.T) {
	f := newTestFactory()
	owner := newTestOwner(f)
	conv := f.CreateConvertibleType()
	conv.Bind(owner, "T2")

	r := f.Helper().Classify(Int, conv)
	assert.Equal(t, SubtypeOfSecond, r.Relation)
	require.Len(t, r.Constraints, 1)
	assert.Equal(t, "T2", r.Constraints[0].TypeVariable)
	assert.Equal(t, Int, r.Constraints[0].Type)

	owner.upper["T2"] = f.CreateIntersectionTypeSymbol(Num)
	r = f.Helper().Classify(String, conv)
	assert.False(t, r.Holds())
	r = f.Helper().Classify(Float, conv)
	assert.True(t, r.IsSameOrSubtype())
	assert.Empty(t, r.Constraints)
}

func TestClassifyDeterministic(t *testing.T) {
	f := newTestFactory(DefaultConversions()...)
	a := f.CreateUnionTypeSymbol(Bool, Int)
	b := f.CreateIntersectionTypeSymbol(Num, Scalar)
	first := f.Helper().Classify(a, b)
	for range 10 {
		assert.Equal(t, first, f.Helper().Classify(a, b))
	}
}
