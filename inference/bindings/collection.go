// Package bindings implements the binding collection: the fixed-point engine
// which maps program variables to type variables and propagates lower and
// upper type bounds along subtype edges between type variables.
package bindings

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/TinsPHP/tins-symbols-sub001/inference/symbols"
	"github.com/TinsPHP/tins-symbols-sub001/internal/log"
	"github.com/TinsPHP/tins-symbols-sub001/util"
	"github.com/google/uuid"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

var logger = log.DefaultLogger.With("section", "bindings")

// ReturnVariableName is the id of the variable holding the return value of a function
const ReturnVariableName = "rtrn"

const (
	typeVariablePrefix         = "T"
	overloadTypeVariablePrefix = "V"
)

// TypeVariableReference links a program variable to its type variable.
// It is marked fixed once the type variable got its final type.
type TypeVariableReference struct {
	typeVariable string
	fixed        bool
}

func NewTypeVariableReference(typeVariable string) *TypeVariableReference {
	return &TypeVariableReference{typeVariable: typeVariable}
}

// NewFixedTypeVariableReference freezes the type variable as soon as the
// variable is added to a collection
func NewFixedTypeVariableReference(typeVariable string) *TypeVariableReference {
	return &TypeVariableReference{typeVariable: typeVariable, fixed: true}
}

func (r *TypeVariableReference) TypeVariable() string { return r.typeVariable }
func (r *TypeVariableReference) HasFixedType() bool   { return r.fixed }

// Collection holds the bindings of one function overload candidate.
// It is not safe for concurrent use: candidates are explored on copies.
type Collection struct {
	id      uuid.UUID
	factory *symbols.Factory
	helper  symbols.Classifier
	prefix  string
	count   int

	variable2TypeVariable  map[string]*TypeVariableReference
	typeVariable2Variables map[string]*set.Set[string]

	lowerTypeBounds map[string]*symbols.UnionTypeSymbol
	upperTypeBounds map[string]*symbols.IntersectionTypeSymbol

	// lowerRefBounds[Y] holds X iff X <: Y, upperRefBounds is its inverse
	lowerRefBounds map[string]*set.TreeSet[string]
	upperRefBounds map[string]*set.TreeSet[string]

	typeVariable2BoundTypes map[string][]*symbols.ConvertibleTypeSymbol
	fixedTypeVariables      *set.Set[string]

	logger *slog.Logger
}

var _ symbols.Owner = (*Collection)(nil)

// New returns an empty collection naming its type variables T1, T2, ...
func New(factory *symbols.Factory) *Collection {
	return newCollection(factory, typeVariablePrefix)
}

// NewOverloadBindings returns an empty collection naming its type variables V1, V2, ...
func NewOverloadBindings(factory *symbols.Factory) *Collection {
	return newCollection(factory, overloadTypeVariablePrefix)
}

func newCollection(factory *symbols.Factory, prefix string) *Collection {
	id := uuid.New()
	return &Collection{
		id:                      id,
		factory:                 factory,
		helper:                  factory.Helper(),
		prefix:                  prefix,
		variable2TypeVariable:   make(map[string]*TypeVariableReference),
		typeVariable2Variables:  make(map[string]*set.Set[string]),
		lowerTypeBounds:         make(map[string]*symbols.UnionTypeSymbol),
		upperTypeBounds:         make(map[string]*symbols.IntersectionTypeSymbol),
		lowerRefBounds:          make(map[string]*set.TreeSet[string]),
		upperRefBounds:          make(map[string]*set.TreeSet[string]),
		typeVariable2BoundTypes: make(map[string][]*symbols.ConvertibleTypeSymbol),
		fixedTypeVariables:      set.New[string](0),
		logger:                  logger.With("collection", id.String()),
	}
}

func newRefSet() *set.TreeSet[string] {
	return set.NewTreeSet[string](cmp.Compare[string])
}

func (c *Collection) Factory() *symbols.Factory { return c.factory }

// NextTypeVariable returns a fresh type variable name without registering it
func (c *Collection) NextTypeVariable() string {
	c.count++
	return c.prefix + strconv.Itoa(c.count)
}

// CreateTypeVariable registers a fresh type variable which no variable refers to yet
func (c *Collection) CreateTypeVariable() string {
	tv := c.NextTypeVariable()
	for c.isKnown(tv) {
		tv = c.NextTypeVariable()
	}
	c.typeVariable2Variables[tv] = set.New[string](1)
	return tv
}

// AddVariable registers the variable id. Registering an id twice is a programming error.
func (c *Collection) AddVariable(id string, ref *TypeVariableReference) {
	if _, ok := c.variable2TypeVariable[id]; ok {
		panic(errors.Errorf("variable %s was already added to the binding collection", id))
	}
	tv := ref.typeVariable
	c.variable2TypeVariable[id] = ref
	if vars, ok := c.typeVariable2Variables[tv]; ok {
		vars.Insert(id)
	} else {
		c.typeVariable2Variables[tv] = set.From([]string{id})
	}
	c.logger.Debug("added variable", "variable", id, "typeVariable", tv)
	if ref.fixed {
		c.fixTypeVariable(tv, false)
	} else if c.fixedTypeVariables.Contains(tv) {
		ref.fixed = true
	}
}

func (c *Collection) isKnown(tv string) bool {
	_, ok := c.typeVariable2Variables[tv]
	return ok
}

func (c *Collection) mustBeKnown(tv string) {
	if !c.isKnown(tv) {
		panic(errors.Errorf("type variable %s is not part of the binding collection", tv))
	}
}

func (c *Collection) mustVariable(id string) *TypeVariableReference {
	ref, ok := c.variable2TypeVariable[id]
	if !ok {
		panic(errors.Errorf("variable %s is not part of the binding collection", id))
	}
	return ref
}

func (c *Collection) ContainsVariable(id string) bool {
	_, ok := c.variable2TypeVariable[id]
	return ok
}

// TypeVariable returns the type variable of the variable id
func (c *Collection) TypeVariable(id string) string {
	return c.mustVariable(id).typeVariable
}

func (c *Collection) TypeVariableReference(id string) *TypeVariableReference {
	return c.mustVariable(id)
}

// Variables returns the ids of all variables, sorted
func (c *Collection) Variables() []string {
	return slices.Sorted(func(yield func(string) bool) {
		for id := range c.variable2TypeVariable {
			if !yield(id) {
				return
			}
		}
	})
}

// VariablesWithTypeVariable returns the sorted ids of the variables sharing tv
func (c *Collection) VariablesWithTypeVariable(tv string) []string {
	vars, ok := c.typeVariable2Variables[tv]
	if !ok {
		return nil
	}
	return util.SortedSlice(vars)
}

// TypeVariables returns all registered type variables, sorted
func (c *Collection) TypeVariables() []string {
	tvs := make([]string, 0, len(c.typeVariable2Variables))
	for tv := range c.typeVariable2Variables {
		tvs = append(tvs, tv)
	}
	slices.SortFunc(tvs, compareTypeVariables)
	return tvs
}

// compareTypeVariables orders T2 before T10
func compareTypeVariables(a, b string) int {
	if len(a) != len(b) {
		return cmp.Compare(len(a), len(b))
	}
	return strings.Compare(a, b)
}

func (c *Collection) HasLowerTypeBounds(tv string) bool {
	_, ok := c.lowerTypeBounds[tv]
	return ok
}

func (c *Collection) HasUpperTypeBounds(tv string) bool {
	_, ok := c.upperTypeBounds[tv]
	return ok
}

// LowerTypeBounds returns nil if tv has no lower type bound
func (c *Collection) LowerTypeBounds(tv string) *symbols.UnionTypeSymbol {
	return c.lowerTypeBounds[tv]
}

// UpperTypeBounds returns nil if tv has no upper type bound
func (c *Collection) UpperTypeBounds(tv string) *symbols.IntersectionTypeSymbol {
	return c.upperTypeBounds[tv]
}

func (c *Collection) HasLowerRefBounds(tv string) bool {
	refs, ok := c.lowerRefBounds[tv]
	return ok && !refs.Empty()
}

func (c *Collection) HasUpperRefBounds(tv string) bool {
	refs, ok := c.upperRefBounds[tv]
	return ok && !refs.Empty()
}

// LowerRefBounds returns the sorted type variables which are subtypes of tv
func (c *Collection) LowerRefBounds(tv string) []string {
	if refs, ok := c.lowerRefBounds[tv]; ok {
		return refs.Slice()
	}
	return nil
}

// UpperRefBounds returns the sorted type variables which are super types of tv
func (c *Collection) UpperRefBounds(tv string) []string {
	if refs, ok := c.upperRefBounds[tv]; ok {
		return refs.Slice()
	}
	return nil
}

func (c *Collection) IsFixedTypeVariable(tv string) bool {
	return c.fixedTypeVariables.Contains(tv)
}

// BoundTypes returns the convertible types bound to tv
func (c *Collection) BoundTypes(tv string) []*symbols.ConvertibleTypeSymbol {
	return slices.Clone(c.typeVariable2BoundTypes[tv])
}

const refBoundMarker = "@"

// LowerBoundConstraintIDs returns the absolute names of the lower type bounds
// of tv and "@" followed by the type variable for each lower ref bound
func (c *Collection) LowerBoundConstraintIDs(tv string) *set.Set[string] {
	return constraintIDs(c.lowerTypeBounds[tv], c.lowerRefBounds[tv])
}

// UpperBoundConstraintIDs is the upper counterpart of LowerBoundConstraintIDs
func (c *Collection) UpperBoundConstraintIDs(tv string) *set.Set[string] {
	return constraintIDs(c.upperTypeBounds[tv], c.upperRefBounds[tv])
}

func constraintIDs[C interface {
	comparable
	symbols.TypeSymbol
	Members() []symbols.TypeSymbol
}](bound C, refs *set.TreeSet[string]) *set.Set[string] {
	ids := set.New[string](0)
	var zero C
	if bound != zero {
		members := bound.Members()
		if len(members) == 0 {
			// nothing or mixed
			ids.Insert(bound.AbsoluteName())
		}
		for _, member := range members {
			ids.Insert(member.AbsoluteName())
		}
	}
	if refs != nil {
		for _, ref := range refs.Slice() {
			ids.Insert(refBoundMarker + ref)
		}
	}
	return ids
}

// String renders the collection as [variable:typeVariable<lower,upper>#, ...]
// where # marks a fixed type variable
func (c *Collection) String() string {
	sb := &strings.Builder{}
	sb.WriteString("[")
	for i, id := range c.Variables() {
		if i > 0 {
			sb.WriteString(", ")
		}
		tv := c.variable2TypeVariable[id].typeVariable
		_, _ = fmt.Fprintf(sb, "%s:%s<%s,%s>", id, tv,
			strings.Join(util.SortedSlice(c.LowerBoundConstraintIDs(tv)), " | "),
			strings.Join(util.SortedSlice(c.UpperBoundConstraintIDs(tv)), " | "),
		)
		if c.IsFixedTypeVariable(tv) {
			sb.WriteString("#")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
