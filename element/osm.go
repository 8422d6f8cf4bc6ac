package element

import (
	"time"

	osm "github.com/omniscale/go-osm"
)

// Conversion to github.com/omniscale/go-osm types. The cache and other
// consumers built around go-osm work with these.
//
// The conversion is lossy: visible and deleted are dropped, uid is
// truncated to int32 and timestamps that are not RFC 3339 become the
// zero time (and are absent after the round trip). Metadata is only kept
// if one of version, uid, user, timestamp or changeset is present.

func (a *Attrs) metadata() *osm.Metadata {
	if !a.Has(AttrVersion | AttrUID | AttrUser | AttrTimestamp | AttrChangeset) {
		return nil
	}
	md := &osm.Metadata{
		UserID:    int32(a.UID),
		UserName:  a.User,
		Version:   int32(a.Version),
		Changeset: int64(a.Changeset),
	}
	if a.Has(AttrTimestamp) {
		// invalid timestamps are kept as zero time
		md.Timestamp, _ = time.Parse(time.RFC3339, a.Timestamp)
	}
	return md
}

func attrsFromMetadata(id int64, md *osm.Metadata) Attrs {
	a := Attrs{ID: id}
	a.Set(AttrID)
	if md == nil {
		return a
	}
	a.UID = int64(md.UserID)
	a.User = md.UserName
	a.Version = uint32(md.Version)
	a.Changeset = uint64(md.Changeset)
	a.Set(AttrUID | AttrUser | AttrVersion | AttrChangeset)
	if !md.Timestamp.IsZero() {
		a.Timestamp = md.Timestamp.UTC().Format(time.RFC3339)
		a.Set(AttrTimestamp)
	}
	return a
}

func (n *Node) ToOSM() *osm.Node {
	return &osm.Node{
		Element: osm.Element{
			ID:       n.ID,
			Tags:     osm.Tags(n.Tags),
			Metadata: n.Attrs.metadata(),
		},
		Lat:  float64(n.Lat),
		Long: float64(n.Lon),
	}
}

func NodeFromOSM(n *osm.Node) *Node {
	return &Node{
		Attrs: attrsFromMetadata(n.ID, n.Metadata),
		Lat:   float32(n.Lat),
		Lon:   float32(n.Long),
		Tags:  Tags(n.Tags),
	}
}

func (w *Way) ToOSM() *osm.Way {
	return &osm.Way{
		Element: osm.Element{
			ID:       w.ID,
			Tags:     osm.Tags(w.Tags),
			Metadata: w.Attrs.metadata(),
		},
		Refs: w.Refs,
	}
}

func WayFromOSM(w *osm.Way) *Way {
	return &Way{
		Attrs: attrsFromMetadata(w.ID, w.Metadata),
		Tags:  Tags(w.Tags),
		Refs:  w.Refs,
	}
}

var osmMemberTypes = map[Type]osm.MemberType{
	NODE:     osm.NodeMember,
	WAY:      osm.WayMember,
	RELATION: osm.RelationMember,
}

func (r *Relation) ToOSM() *osm.Relation {
	rel := &osm.Relation{
		Element: osm.Element{
			ID:       r.ID,
			Tags:     osm.Tags(r.Tags),
			Metadata: r.Attrs.metadata(),
		},
	}
	if len(r.Members) > 0 {
		rel.Members = make([]osm.Member, len(r.Members))
		for i, m := range r.Members {
			rel.Members[i] = osm.Member{
				ID:   m.Ref,
				Type: osmMemberTypes[m.Type],
				Role: m.Role,
			}
		}
	}
	return rel
}

func RelationFromOSM(r *osm.Relation) *Relation {
	rel := &Relation{
		Attrs: attrsFromMetadata(r.ID, r.Metadata),
		Tags:  Tags(r.Tags),
	}
	if len(r.Members) > 0 {
		rel.Members = make([]Member, len(r.Members))
		for i, m := range r.Members {
			var t Type
			switch m.Type {
			case osm.WayMember:
				t = WAY
			case osm.RelationMember:
				t = RELATION
			default:
				t = NODE
			}
			rel.Members[i] = Member{Type: t, Ref: m.ID, Role: m.Role}
		}
	}
	return rel
}
