package element

import (
	"fmt"
	"strconv"
)

type Tags map[string]string

func (t *Tags) String() string {
	return fmt.Sprintf("%v", (map[string]string)(*t))
}

// Type is the kind of an OSM element. It is used both for top-level
// elements and for relation members.
type Type int

const (
	NODE     Type = 0
	WAY      Type = 1
	RELATION Type = 2
)

var TypeValues = map[string]Type{
	"node":     NODE,
	"way":      WAY,
	"relation": RELATION,
}

func (t Type) String() string {
	switch t {
	case NODE:
		return "node"
	case WAY:
		return "way"
	case RELATION:
		return "relation"
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// AttrKey identifies one of the optional metadata attributes.
type AttrKey uint8

const (
	AttrID AttrKey = 1 << iota
	AttrTimestamp
	AttrUID
	AttrUser
	AttrVisible
	AttrDeleted
	AttrVersion
	AttrChangeset
)

// Attrs contains the common metadata of nodes, ways and relations.
// All fields are optional, use Has to check whether an attribute
// was present in the input.
type Attrs struct {
	ID        int64
	Timestamp string
	UID       int64
	User      string
	Visible   bool
	Deleted   bool
	Version   uint32
	Changeset uint64

	present AttrKey
}

// Has reports whether any of the attributes in key was present.
func (a *Attrs) Has(key AttrKey) bool {
	return a.present&key != 0
}

// Set marks key as present. The value itself is set on the field.
func (a *Attrs) Set(key AttrKey) {
	a.present |= key
}

type Node struct {
	Attrs
	Lat  float32 `json:"lat"`
	Lon  float32 `json:"lon"`
	Tags Tags    `json:"tags,omitempty"`
}

type Way struct {
	Attrs
	Tags Tags `json:"tags,omitempty"`
	// Refs contains the node IDs in document order, including duplicates.
	Refs []int64 `json:"refs"`
}

type Member struct {
	Type Type   `json:"type"`
	Ref  int64  `json:"ref"`
	Role string `json:"role"`
}

type Relation struct {
	Attrs
	Tags    Tags     `json:"tags,omitempty"`
	Members []Member `json:"members"`
}

// OSMObj holds exactly one parsed node, way or relation.
type OSMObj struct {
	Node *Node
	Way  *Way
	Rel  *Relation
}

func (o OSMObj) Type() Type {
	switch {
	case o.Way != nil:
		return WAY
	case o.Rel != nil:
		return RELATION
	}
	return NODE
}

// Attrs returns the metadata of the contained element, or nil for an
// empty OSMObj.
func (o OSMObj) Attrs() *Attrs {
	switch {
	case o.Node != nil:
		return &o.Node.Attrs
	case o.Way != nil:
		return &o.Way.Attrs
	case o.Rel != nil:
		return &o.Rel.Attrs
	}
	return nil
}

func (o OSMObj) IsZero() bool {
	return o.Node == nil && o.Way == nil && o.Rel == nil
}

func (o OSMObj) String() string {
	switch {
	case o.Node != nil:
		return fmt.Sprintf("node %d", o.Node.ID)
	case o.Way != nil:
		return fmt.Sprintf("way %d", o.Way.ID)
	case o.Rel != nil:
		return fmt.Sprintf("relation %d", o.Rel.ID)
	}
	return "<empty>"
}
