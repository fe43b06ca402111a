// Package symbols implements the type lattice used by the inference engine:
// nominal scalars, unions, intersections and convertible types, together with
// the TypeHelper which decides how two type symbols relate.
package symbols

import (
	"fmt"

	"github.com/TinsPHP/tins-symbols-sub001/internal/log"
)

var logger = log.DefaultLogger.With("section", "symbols")

const (
	// MixedName is the absolute name of the top type and of an empty intersection
	MixedName = "mixed"
	// NothingName is the absolute name of an empty union
	NothingName = "nothing"
)

// Kind tags the closed set of type symbol variants
type Kind int

const (
	KindScalar Kind = iota
	KindArray
	KindPseudo
	KindAlias
	KindUnion
	KindIntersection
	KindConvertible
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindPseudo:
		return "pseudo"
	case KindAlias:
		return "alias"
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	case KindConvertible:
		return "convertible"
	}
	panic(fmt.Sprintf("unknown kind %d", int(k)))
}

// TypeSymbol is a node of the type lattice.
// Two type symbols with the same AbsoluteName denote the same type.
type TypeSymbol interface {
	fmt.Stringer
	Kind() Kind
	AbsoluteName() string
	// Parents are the direct nominal super types, mixed is implicit
	Parents() []TypeSymbol
	// IsFixed is false as long as the symbol depends on a type variable which
	// was not fixed yet
	IsFixed() bool
}

var (
	_ TypeSymbol = (*ScalarTypeSymbol)(nil)
	_ TypeSymbol = (*pseudoTypeSymbol)(nil)
	_ TypeSymbol = (*AliasTypeSymbol)(nil)
	_ TypeSymbol = (*UnionTypeSymbol)(nil)
	_ TypeSymbol = (*IntersectionTypeSymbol)(nil)
	_ TypeSymbol = (*ConvertibleTypeSymbol)(nil)
)

// ScalarTypeSymbol is a nominal type. Arrays are scalars tagged with KindArray.
type ScalarTypeSymbol struct {
	kind    Kind
	name    string
	parents []TypeSymbol
}

func NewScalarTypeSymbol(name string, parents ...TypeSymbol) *ScalarTypeSymbol {
	return &ScalarTypeSymbol{kind: KindScalar, name: name, parents: parents}
}

func NewArrayTypeSymbol(name string, parents ...TypeSymbol) *ScalarTypeSymbol {
	return &ScalarTypeSymbol{kind: KindArray, name: name, parents: parents}
}

func (t *ScalarTypeSymbol) Kind() Kind            { return t.kind }
func (t *ScalarTypeSymbol) AbsoluteName() string  { return t.name }
func (t *ScalarTypeSymbol) Parents() []TypeSymbol { return t.parents }
func (t *ScalarTypeSymbol) IsFixed() bool         { return true }
func (t *ScalarTypeSymbol) String() string        { return t.name }

type pseudoTypeSymbol struct {
	name string
}

func (t *pseudoTypeSymbol) Kind() Kind            { return KindPseudo }
func (t *pseudoTypeSymbol) AbsoluteName() string  { return t.name }
func (t *pseudoTypeSymbol) Parents() []TypeSymbol { return nil }
func (t *pseudoTypeSymbol) IsFixed() bool         { return true }
func (t *pseudoTypeSymbol) String() string        { return t.name }

// Mixed is the top of the lattice: every type is a subtype of it
var Mixed TypeSymbol = &pseudoTypeSymbol{name: MixedName}

func isMixed(t TypeSymbol) bool {
	return t.Kind() == KindPseudo && t.AbsoluteName() == MixedName
}

// AliasTypeSymbol is rendered under its own name but relates like its target
type AliasTypeSymbol struct {
	name   string
	target TypeSymbol
}

func NewAliasTypeSymbol(name string, target TypeSymbol) *AliasTypeSymbol {
	return &AliasTypeSymbol{name: name, target: target}
}

func (t *AliasTypeSymbol) Kind() Kind            { return KindAlias }
func (t *AliasTypeSymbol) AbsoluteName() string  { return t.name }
func (t *AliasTypeSymbol) Parents() []TypeSymbol { return []TypeSymbol{t.target} }
func (t *AliasTypeSymbol) IsFixed() bool         { return t.target.IsFixed() }
func (t *AliasTypeSymbol) String() string        { return t.name }
func (t *AliasTypeSymbol) Target() TypeSymbol    { return t.target }
