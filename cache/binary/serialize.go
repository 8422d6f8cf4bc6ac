package binary

import (
	"time"

	"github.com/gogo/protobuf/proto"
	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"
)

// Records start with a flags varint, followed by the optional metadata,
// the type specific fields and the tags. IDs are not part of the record,
// they are stored in the key.

const (
	flagMetadata = 1 << iota
)

var errCorruptRecord = errors.New("corrupt cache record")

type encoder struct {
	buf *proto.Buffer
}

func newEncoder() encoder {
	return encoder{buf: proto.NewBuffer(make([]byte, 0, 64))}
}

// proto.Buffer only returns errors on decoding.
func (e encoder) uvarint(v uint64) { _ = e.buf.EncodeVarint(v) }
func (e encoder) varint(v int64) { _ = e.buf.EncodeZigzag64(uint64(v)) }
func (e encoder) str(s string) { _ = e.buf.EncodeStringBytes(s) }
func (e encoder) bytes() []byte { return e.buf.Bytes() }

func (e encoder) flags(md *osm.Metadata) {
	var f uint64
	if md != nil {
		f |= flagMetadata
	}
	e.uvarint(f)
}

func (e encoder) metadata(md *osm.Metadata) {
	if md == nil {
		return
	}
	e.varint(int64(md.Version))
	e.varint(int64(md.UserID))
	e.str(md.UserName)
	e.varint(md.Changeset)
	if md.Timestamp.IsZero() {
		e.uvarint(0)
	} else {
		e.uvarint(1)
		e.varint(md.Timestamp.Unix())
	}
}

func (e encoder) tags(tags osm.Tags) {
	arr := defaultTagTable.encode(tags)
	e.uvarint(uint64(len(arr)))
	for _, s := range arr {
		e.str(s)
	}
}

// decoder keeps the first error, all following reads return zero values.
type decoder struct {
	buf  *proto.Buffer
	size int
	err  error
}

func newDecoder(data []byte) *decoder {
	return &decoder{buf: proto.NewBuffer(data), size: len(data)}
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	var v uint64
	v, d.err = d.buf.DecodeVarint()
	return v
}

func (d *decoder) varint() int64 {
	if d.err != nil {
		return 0
	}
	var v uint64
	v, d.err = d.buf.DecodeZigzag64()
	return int64(v)
}

func (d *decoder) str() string {
	if d.err != nil {
		return ""
	}
	var s string
	s, d.err = d.buf.DecodeStringBytes()
	return s
}

// count reads a list length. Each list entry needs at least one byte.
func (d *decoder) count() int {
	n := d.uvarint()
	if d.err == nil && n > uint64(d.size) {
		d.err = errCorruptRecord
		return 0
	}
	return int(n)
}

func (d *decoder) metadata(flags uint64) *osm.Metadata {
	if flags&flagMetadata == 0 {
		return nil
	}
	md := &osm.Metadata{}
	md.Version = int32(d.varint())
	md.UserID = int32(d.varint())
	md.UserName = d.str()
	md.Changeset = d.varint()
	if d.uvarint() == 1 {
		md.Timestamp = time.Unix(d.varint(), 0).UTC()
	}
	return md
}

func (d *decoder) tags() osm.Tags {
	n := d.count()
	if d.err != nil || n == 0 {
		return nil
	}
	arr := make([]string, n)
	for i := range arr {
		arr[i] = d.str()
	}
	if d.err != nil {
		return nil
	}
	tags, err := defaultTagTable.decode(arr)
	if err != nil {
		d.err = err
	}
	return tags
}

func (d *decoder) finish(what string) error {
	if d.err != nil {
		return errors.Wrapf(d.err, "unmarshal %s", what)
	}
	return nil
}

func MarshalNode(node *osm.Node) []byte {
	e := newEncoder()
	e.flags(node.Metadata)
	e.metadata(node.Metadata)
	e.uvarint(uint64(CoordToInt(node.Long)))
	e.uvarint(uint64(CoordToInt(node.Lat)))
	e.tags(node.Tags)
	return e.bytes()
}

func UnmarshalNode(data []byte) (*osm.Node, error) {
	d := newDecoder(data)
	node := &osm.Node{}
	node.Metadata = d.metadata(d.uvarint())
	node.Long = IntToCoord(uint32(d.uvarint()))
	node.Lat = IntToCoord(uint32(d.uvarint()))
	node.Tags = d.tags()
	if err := d.finish("node"); err != nil {
		return nil, err
	}
	return node, nil
}

// MarshalWay stores the refs delta encoded.
func MarshalWay(way *osm.Way) []byte {
	e := newEncoder()
	e.flags(way.Metadata)
	e.metadata(way.Metadata)
	e.uvarint(uint64(len(way.Refs)))
	last := int64(0)
	for _, ref := range way.Refs {
		e.varint(ref - last)
		last = ref
	}
	e.tags(way.Tags)
	return e.bytes()
}

func UnmarshalWay(data []byte) (*osm.Way, error) {
	d := newDecoder(data)
	way := &osm.Way{}
	way.Metadata = d.metadata(d.uvarint())
	if n := d.count(); n > 0 {
		way.Refs = make([]int64, n)
		last := int64(0)
		for i := range way.Refs {
			last += d.varint()
			way.Refs[i] = last
		}
	}
	way.Tags = d.tags()
	if err := d.finish("way"); err != nil {
		return nil, err
	}
	return way, nil
}

// MarshalRelation stores the member IDs delta encoded.
func MarshalRelation(rel *osm.Relation) []byte {
	e := newEncoder()
	e.flags(rel.Metadata)
	e.metadata(rel.Metadata)
	e.uvarint(uint64(len(rel.Members)))
	last := int64(0)
	for _, m := range rel.Members {
		e.uvarint(uint64(m.Type))
		e.varint(m.ID - last)
		last = m.ID
		e.str(m.Role)
	}
	e.tags(rel.Tags)
	return e.bytes()
}

func UnmarshalRelation(data []byte) (*osm.Relation, error) {
	d := newDecoder(data)
	rel := &osm.Relation{}
	rel.Metadata = d.metadata(d.uvarint())
	if n := d.count(); n > 0 {
		rel.Members = make([]osm.Member, n)
		last := int64(0)
		for i := range rel.Members {
			t := d.uvarint()
			if t > osm.RelationMember && d.err == nil {
				d.err = errCorruptRecord
			}
			rel.Members[i].Type = osm.MemberType(t)
			last += d.varint()
			rel.Members[i].ID = last
			rel.Members[i].Role = d.str()
		}
	}
	rel.Tags = d.tags()
	if err := d.finish("relation"); err != nil {
		return nil, err
	}
	return rel, nil
}
