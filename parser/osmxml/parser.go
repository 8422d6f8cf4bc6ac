package osmxml

import (
	"io"

	"github.com/pkg/errors"

	"github.com/omniscale/osmxml/element"
	"github.com/omniscale/osmxml/log"
	"github.com/omniscale/osmxml/reader"
)

// Parser is a stream based parser for OSM XML files (.osm).
// Elements are built one at a time, only the children of the current
// element are buffered.
type Parser struct {
	tok    tokenizer
	filter Filter
	closer io.Closer

	// current element
	inElem   bool
	typ      element.Type
	skipping bool
	buf      []rawElement

	done bool
}

type Option func(*Parser)

func WithFilter(f Filter) Option {
	return func(p *Parser) {
		p.filter = f
	}
}

// New creates a parser for an uncompressed OSM XML stream.
func New(r io.Reader, opts ...Option) *Parser {
	return newParser(newXMLTokenizer(r), opts...)
}

func newParser(tok tokenizer, opts ...Option) *Parser {
	p := &Parser{tok: tok}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open creates a parser for a .osm, .osm.gz or .osm.bz2 file.
// The file is closed by Close.
func Open(path string, opts ...Option) (*Parser, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	p := New(r, opts...)
	p.closer = r
	return p, nil
}

// SetFilter changes the filter for all following elements.
func (p *Parser) SetFilter(f Filter) {
	p.filter = f
}

func (p *Parser) Filter() Filter {
	return p.filter
}

// Offset returns the current offset in the (uncompressed) input.
func (p *Parser) Offset() int64 {
	return p.tok.offset()
}

// Close closes the input if the parser was created with Open.
func (p *Parser) Close() error {
	p.done = true
	if p.closer != nil {
		err := p.closer.Close()
		p.closer = nil
		return err
	}
	return nil
}

// Next returns the next element. It returns a *ReadError if an element
// could not be parsed. Parsing can continue with the next element if the
// error is Recoverable. Next returns io.EOF at the end of the input and
// after any non-recoverable error.
func (p *Parser) Next() (element.OSMObj, error) {
	for !p.done {
		ev, err := p.tok.next()
		if err != nil {
			p.done = true
			p.resetBuf()
			return element.OSMObj{}, &ReadError{
				Kind:   SyntaxError,
				Msg:    "decoding next XML token",
				Offset: p.tok.offset(),
				Err:    err,
			}
		}
		obj, ok, err := p.step(ev)
		if err != nil {
			if rerr, isRead := err.(*ReadError); isRead {
				rerr.Offset = p.tok.offset()
				if !rerr.Recoverable() {
					p.done = true
					p.resetBuf()
				}
			}
			return element.OSMObj{}, err
		}
		if ok {
			return obj, nil
		}
	}
	return element.OSMObj{}, io.EOF
}

func elementType(name string) (element.Type, bool) {
	switch name {
	case "node":
		return element.NODE, true
	case "way":
		return element.WAY, true
	case "relation":
		return element.RELATION, true
	}
	return 0, false
}

func isChild(name string) bool {
	return name == "nd" || name == "tag" || name == "member"
}

// step advances the element state by one event. It returns true if an
// element was completed.
func (p *Parser) step(ev event) (element.OSMObj, bool, error) {
	switch ev.kind {
	case eofEvent:
		p.done = true
		p.resetBuf()
	case startEvent, emptyEvent:
		typ, isElem := elementType(ev.name)
		if !p.inElem {
			if isChild(ev.name) {
				return element.OSMObj{}, false, structureError("nd/tag/member outside of node/way/relation")
			}
			if !isElem {
				if ev.name != "osm" {
					log.Debugf("ignoring %s element", ev.name)
				}
				return element.OSMObj{}, false, nil
			}
			p.inElem = true
			p.typ = typ
			p.skipping = p.filter.Skips(typ)
			if !p.skipping {
				p.buf = append(p.buf, rawElement{name: ev.name, attr: ev.attr, encErr: ev.encErr})
			}
			if ev.kind == emptyEvent {
				return p.closeElem()
			}
			return element.OSMObj{}, false, nil
		}
		if isElem {
			return element.OSMObj{}, false, structureError("node/way/relation inside another")
		}
		if !p.skipping {
			p.buf = append(p.buf, rawElement{name: ev.name, attr: ev.attr, encErr: ev.encErr})
		}
	case endEvent:
		if !p.inElem {
			return element.OSMObj{}, false, nil
		}
		if _, isElem := elementType(ev.name); isElem {
			return p.closeElem()
		}
	}
	return element.OSMObj{}, false, nil
}

func (p *Parser) closeElem() (element.OSMObj, bool, error) {
	p.inElem = false
	if p.skipping {
		p.skipping = false
		p.resetBuf()
		return element.OSMObj{}, false, nil
	}
	obj, err := build(p.typ, p.buf)
	p.resetBuf()
	if err != nil {
		return element.OSMObj{}, false, err
	}
	return obj, true, nil
}

// resetBuf empties the buffer but keeps the capacity for the next element.
func (p *Parser) resetBuf() {
	clear(p.buf)
	p.buf = p.buf[:0]
}
