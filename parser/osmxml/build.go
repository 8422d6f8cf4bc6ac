package osmxml

import (
	"encoding/xml"
	"fmt"

	"github.com/omniscale/osmxml/element"
)

// rawElement is a buffered start element of the current object.
type rawElement struct {
	name   string
	attr   []xml.Attr
	encErr string
}

// build creates the element from the buffered group. The first entry is
// the node, way or relation itself, followed by its children in
// document order.
func build(typ element.Type, elems []rawElement) (element.OSMObj, error) {
	obj := element.OSMObj{}
	for _, e := range elems {
		if e.encErr != "" {
			return obj, &ReadError{Kind: EncodingError, Msg: fmt.Sprintf("%s in %s element", e.encErr, e.name)}
		}
	}
	attrs, err := collectAttrs(elems[0].attr)
	if err != nil {
		return obj, err
	}
	meta, err := parseAttrs(attrs)
	if err != nil {
		return obj, err
	}

	var tags element.Tags
	switch typ {
	case element.NODE:
		lon, err := attrs.coord("lon", "node has no longitude")
		if err != nil {
			return obj, err
		}
		lat, err := attrs.coord("lat", "node has no latitude")
		if err != nil {
			return obj, err
		}
		obj.Node = &element.Node{Attrs: meta, Lat: lat, Lon: lon}
	case element.WAY:
		obj.Way = &element.Way{Attrs: meta}
	case element.RELATION:
		obj.Rel = &element.Relation{Attrs: meta}
	}

	for _, child := range elems[1:] {
		switch child.name {
		case "tag":
			attrs, err := collectAttrs(child.attr)
			if err != nil {
				return element.OSMObj{}, err
			}
			k, okK := attrs["k"]
			v, okV := attrs["v"]
			if okK && okV {
				if tags == nil {
					tags = make(element.Tags)
				}
				tags[k] = v
			}
		case "nd":
			if obj.Way == nil {
				continue
			}
			attrs, err := collectAttrs(child.attr)
			if err != nil {
				return element.OSMObj{}, err
			}
			// nd without ref is skipped, members are strict
			ref, ok, err := attrs.int64("ref")
			if err != nil {
				return element.OSMObj{}, err
			}
			if ok {
				obj.Way.Refs = append(obj.Way.Refs, ref)
			}
		case "member":
			if obj.Rel == nil {
				continue
			}
			attrs, err := collectAttrs(child.attr)
			if err != nil {
				return element.OSMObj{}, err
			}
			m, err := parseMember(attrs)
			if err != nil {
				return element.OSMObj{}, err
			}
			obj.Rel.Members = append(obj.Rel.Members, m)
		}
	}

	switch {
	case obj.Node != nil:
		obj.Node.Tags = tags
	case obj.Way != nil:
		obj.Way.Tags = tags
	case obj.Rel != nil:
		obj.Rel.Tags = tags
	}
	return obj, nil
}
