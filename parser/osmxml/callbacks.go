package osmxml

import (
	"io"

	"github.com/pkg/errors"

	"github.com/omniscale/osmxml/element"
)

// MapNodes calls fn for each node. Ways and relations are skipped.
// It stops at the first error, returned by the parser or by fn.
func (p *Parser) MapNodes(fn func(*element.Node) error) error {
	p.SetFilter(OnlyFilter(element.NODE))
	return p.dispatch(Handlers{Node: fn})
}

// MapWays calls fn for each way. Nodes and relations are skipped.
func (p *Parser) MapWays(fn func(*element.Way) error) error {
	p.SetFilter(OnlyFilter(element.WAY))
	return p.dispatch(Handlers{Way: fn})
}

// MapRelations calls fn for each relation. Nodes and ways are skipped.
func (p *Parser) MapRelations(fn func(*element.Relation) error) error {
	p.SetFilter(OnlyFilter(element.RELATION))
	return p.dispatch(Handlers{Relation: fn})
}

// MapAll calls the handler for each element type. Types without handler
// are skipped.
func (p *Parser) MapAll(h Handlers) error {
	p.SetFilter(h.Filter())
	return p.dispatch(h)
}

func (p *Parser) dispatch(h Handlers) error {
	for {
		obj, err := p.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := h.call(obj); err != nil {
			return err
		}
	}
}

func (h Handlers) call(obj element.OSMObj) error {
	switch {
	case obj.Node != nil && h.Node != nil:
		if err := h.Node(obj.Node); err != nil {
			return errors.Wrapf(err, "handling node %d", obj.Node.ID)
		}
	case obj.Way != nil && h.Way != nil:
		if err := h.Way(obj.Way); err != nil {
			return errors.Wrapf(err, "handling way %d", obj.Way.ID)
		}
	case obj.Rel != nil && h.Relation != nil:
		if err := h.Relation(obj.Rel); err != nil {
			return errors.Wrapf(err, "handling relation %d", obj.Rel.ID)
		}
	}
	return nil
}
