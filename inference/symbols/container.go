package symbols

import (
	"slices"
	"strings"

	"github.com/benbjohnson/immutable"
)

type nameComparer struct{}

func (nameComparer) Compare(a, b string) int { return strings.Compare(a, b) }

// containerSymbol is implemented by UnionTypeSymbol and IntersectionTypeSymbol
type containerSymbol interface {
	TypeSymbol
	Members() []TypeSymbol
	Len() int
}

var (
	_ containerSymbol = (*UnionTypeSymbol)(nil)
	_ containerSymbol = (*IntersectionTypeSymbol)(nil)
)

// container holds the members of a union or an intersection keyed by their
// absolute name. The member set never holds two types in a parent/child
// relation: insertion removes the redundant one.
type container struct {
	helper  Classifier
	members *immutable.SortedMap[string, TypeSymbol]

	absoluteName string
	dirty        bool
}

func newContainer(helper Classifier) container {
	return container{
		helper:  helper,
		members: immutable.NewSortedMap[string, TypeSymbol](nameComparer{}),
		dirty:   true,
	}
}

// Members returns the members sorted by absolute name
func (c *container) Members() []TypeSymbol {
	members := make([]TypeSymbol, 0, c.members.Len())
	itr := c.members.Iterator()
	for !itr.Done() {
		_, member, _ := itr.Next()
		members = append(members, member)
	}
	return members
}

func (c *container) Len() int              { return c.members.Len() }
func (c *container) IsEmpty() bool         { return c.members.Len() == 0 }
func (c *container) Parents() []TypeSymbol { return nil }

// Contains reports whether a member with the given absolute name is present
func (c *container) Contains(absoluteName string) bool {
	_, ok := c.members.Get(absoluteName)
	return ok
}

// IsFixed is true once every convertible member is fixed
func (c *container) IsFixed() bool {
	itr := c.members.Iterator()
	for !itr.Done() {
		_, member, _ := itr.Next()
		if !member.IsFixed() {
			return false
		}
	}
	return true
}

func (c *container) absoluteNameWith(separator, empty string) string {
	if !c.dirty {
		return c.absoluteName
	}
	var name string
	switch c.members.Len() {
	case 0:
		name = empty
	case 1:
		name = c.Members()[0].AbsoluteName()
	default:
		names := make([]string, 0, c.members.Len())
		for _, member := range c.Members() {
			names = append(names, member.AbsoluteName())
		}
		// convertibles are renamed once fixed, so the keys may be stale
		slices.Sort(names)
		name = "(" + strings.Join(names, separator) + ")"
	}
	// unfixed convertibles change their name once fixed
	if c.IsFixed() {
		c.absoluteName = name
		c.dirty = false
	}
	return name
}

func membersOf(t TypeSymbol) []TypeSymbol {
	return t.(containerSymbol).Members()
}

func isUnfixedConvertible(t TypeSymbol) bool {
	return t.Kind() == KindConvertible && !t.IsFixed()
}

// insert adds t to the members of a container of kind own and reports whether
// the member set changed.
func (c *container) insert(t TypeSymbol, own Kind) bool {
	switch t.Kind() {
	case own:
		changed := false
		for _, member := range membersOf(t) {
			changed = c.insert(member, own) || changed
		}
		return changed
	case KindUnion, KindIntersection:
		members := membersOf(t)
		if len(members) == 1 {
			return c.insert(members[0], own)
		}
		if len(members) == 0 && t.Kind() == KindIntersection {
			return c.insert(Mixed, own)
		}
		t = NewCopier(nil).Copy(t)
	case KindScalar, KindArray, KindPseudo, KindAlias, KindConvertible:
	}

	if own == KindIntersection && isMixed(t) {
		return false
	}

	name := t.AbsoluteName()
	if _, ok := c.members.Get(name); ok {
		return false
	}

	if isUnfixedConvertible(t) {
		// keys go stale once a convertible is rebound to another type variable
		if c.holds(t) {
			return false
		}
	} else {
		removedAny := false
		itr := c.members.Iterator()
		for !itr.Done() {
			key, member, _ := itr.Next()
			if isUnfixedConvertible(member) {
				continue
			}
			// a union keeps the more general type, an intersection the more specific one
			narrower, wider := member, t
			if own == KindIntersection {
				narrower, wider = t, member
			}
			if c.helper.IsSameOrSubtype(narrower, wider) {
				if c.helper.IsSameOrSubtype(wider, narrower) {
					// same type under another name, such as an alias and its target
					return false
				}
				logger.Debug("removing redundant member", "member", member, "new", t)
				c.members = c.members.Delete(key)
				removedAny = true
				continue
			}
			if !removedAny && c.helper.IsSameOrSubtype(wider, narrower) {
				return false
			}
		}
	}

	c.members = c.members.Set(name, t)
	c.dirty = true
	return true
}

func (c *container) holds(t TypeSymbol) bool {
	itr := c.members.Iterator()
	for !itr.Done() {
		_, member, _ := itr.Next()
		if member == t {
			return true
		}
	}
	return false
}

func (c *container) copyWith(copier *Copier) container {
	copied := newContainer(c.helper)
	itr := c.members.Iterator()
	for !itr.Done() {
		key, member, _ := itr.Next()
		copied.members = copied.members.Set(key, copier.Copy(member))
	}
	return copied
}

// UnionTypeSymbol is the join of its members
type UnionTypeSymbol struct {
	container
}

func (t *UnionTypeSymbol) Kind() Kind           { return KindUnion }
func (t *UnionTypeSymbol) AbsoluteName() string { return t.absoluteNameWith(" | ", NothingName) }
func (t *UnionTypeSymbol) String() string       { return t.AbsoluteName() }

// AddTypeSymbol inserts t unless a member already subsumes it, removing the
// members t subsumes. It reports whether the member set changed.
func (t *UnionTypeSymbol) AddTypeSymbol(symbol TypeSymbol) bool {
	return t.insert(symbol, KindUnion)
}

// Merge adds every member of other
func (t *UnionTypeSymbol) Merge(other *UnionTypeSymbol) bool {
	return t.insert(other, KindUnion)
}

func (t *UnionTypeSymbol) Copy(copier *Copier) *UnionTypeSymbol {
	return &UnionTypeSymbol{container: t.copyWith(copier)}
}

// IntersectionTypeSymbol is the meet of its members
type IntersectionTypeSymbol struct {
	container
}

func (t *IntersectionTypeSymbol) Kind() Kind           { return KindIntersection }
func (t *IntersectionTypeSymbol) AbsoluteName() string { return t.absoluteNameWith(" & ", MixedName) }
func (t *IntersectionTypeSymbol) String() string       { return t.AbsoluteName() }

// AddTypeSymbol inserts t unless a member is already more specific, removing
// the members which are more general than t. It reports whether the member set changed.
func (t *IntersectionTypeSymbol) AddTypeSymbol(symbol TypeSymbol) bool {
	return t.insert(symbol, KindIntersection)
}

// Merge adds every member of other
func (t *IntersectionTypeSymbol) Merge(other *IntersectionTypeSymbol) bool {
	return t.insert(other, KindIntersection)
}

func (t *IntersectionTypeSymbol) Copy(copier *Copier) *IntersectionTypeSymbol {
	return &IntersectionTypeSymbol{container: t.copyWith(copier)}
}
