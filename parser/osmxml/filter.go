package osmxml

import (
	"github.com/pkg/errors"

	"github.com/omniscale/osmxml/element"
)

// Filter selects which element types are skipped. Skipped elements are
// neither buffered nor built.
type Filter struct {
	SkipNodes     bool
	SkipWays      bool
	SkipRelations bool
}

func (f Filter) Skips(typ element.Type) bool {
	switch typ {
	case element.NODE:
		return f.SkipNodes
	case element.WAY:
		return f.SkipWays
	case element.RELATION:
		return f.SkipRelations
	}
	return false
}

// OnlyFilter returns a filter that skips all types except typ.
func OnlyFilter(typ element.Type) Filter {
	return Filter{
		SkipNodes:     typ != element.NODE,
		SkipWays:      typ != element.WAY,
		SkipRelations: typ != element.RELATION,
	}
}

// ParseSkip returns a filter for a list of type names (node(s), way(s),
// relation(s)).
func ParseSkip(names []string) (Filter, error) {
	f := Filter{}
	for _, name := range names {
		switch name {
		case "node", "nodes":
			f.SkipNodes = true
		case "way", "ways":
			f.SkipWays = true
		case "relation", "relations":
			f.SkipRelations = true
		default:
			return f, errors.Errorf("unknown element type %q", name)
		}
	}
	return f, nil
}

// Handlers are the callbacks for MapAll. A nil handler skips all elements
// of that type.
type Handlers struct {
	Node     func(*element.Node) error
	Way      func(*element.Way) error
	Relation func(*element.Relation) error
}

func (h Handlers) Filter() Filter {
	return Filter{
		SkipNodes:     h.Node == nil,
		SkipWays:      h.Way == nil,
		SkipRelations: h.Relation == nil,
	}
}
