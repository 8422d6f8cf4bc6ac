package binary

import (
	"math"
	"reflect"
	"testing"
	"time"

	osm "github.com/omniscale/go-osm"
)

func TestCoordRoundTrip(t *testing.T) {
	for _, c := range []float64{-180, -90, 0, 13.3778, 52.5163, 90, 179.9999999} {
		if d := math.Abs(IntToCoord(CoordToInt(c)) - c); d > 1e-7 {
			t.Error(c, d)
		}
	}
}

func TestMarshalNode(t *testing.T) {
	node := &osm.Node{}
	node.Long = 8.5
	node.Lat = 53.25
	node.Tags = osm.Tags{"name": "test", "place": "city", "amenity": "bench"}

	node, err := UnmarshalNode(MarshalNode(node))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(node.Tags, osm.Tags{"name": "test", "place": "city", "amenity": "bench"}) {
		t.Error(node.Tags)
	}
	if math.Abs(node.Long-8.5) > 1e-7 || math.Abs(node.Lat-53.25) > 1e-7 {
		t.Error(node.Long, node.Lat)
	}
	if node.Metadata != nil {
		t.Error(node.Metadata)
	}
}

func TestMarshalNodeMetadata(t *testing.T) {
	ts := time.Date(2019, 7, 1, 12, 30, 0, 0, time.UTC)
	node := &osm.Node{}
	node.Metadata = &osm.Metadata{
		UserID:    -1,
		UserName:  "mapper",
		Version:   3,
		Changeset: 9876543210,
		Timestamp: ts,
	}
	node, err := UnmarshalNode(MarshalNode(node))
	if err != nil {
		t.Fatal(err)
	}
	md := node.Metadata
	if md == nil {
		t.Fatal("metadata missing")
	}
	if md.UserID != -1 || md.UserName != "mapper" || md.Version != 3 || md.Changeset != 9876543210 {
		t.Error(md)
	}
	if !md.Timestamp.Equal(ts) {
		t.Error(md.Timestamp)
	}

	node.Metadata.Timestamp = time.Time{}
	node, err = UnmarshalNode(MarshalNode(node))
	if err != nil {
		t.Fatal(err)
	}
	if !node.Metadata.Timestamp.IsZero() {
		t.Error(node.Metadata.Timestamp)
	}
}

func TestMarshalWay(t *testing.T) {
	way := &osm.Way{}
	way.Tags = osm.Tags{"highway": "residential", "name": "Main Street"}
	way.Refs = []int64{1000, 1001, 999, -5, 1000}

	data := MarshalWay(way)
	if way.Refs[2] != 999 {
		t.Error("refs modified", way.Refs)
	}
	way, err := UnmarshalWay(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(way.Refs, []int64{1000, 1001, 999, -5, 1000}) {
		t.Error(way.Refs)
	}
	if way.Tags["highway"] != "residential" || way.Tags["name"] != "Main Street" || len(way.Tags) != 2 {
		t.Error(way.Tags)
	}
}

func TestMarshalWayEmpty(t *testing.T) {
	way, err := UnmarshalWay(MarshalWay(&osm.Way{}))
	if err != nil {
		t.Fatal(err)
	}
	if way.Refs != nil || way.Tags != nil {
		t.Error(way)
	}
}

func TestMarshalRelation(t *testing.T) {
	rel := &osm.Relation{}
	rel.Members = []osm.Member{
		{ID: 123, Type: osm.WayMember, Role: "outer"},
		{ID: 5, Type: osm.NodeMember, Role: ""},
		{ID: 124, Type: osm.RelationMember, Role: "subarea"},
	}
	rel.Tags = osm.Tags{"type": "multipolygon"}

	rel, err := UnmarshalRelation(MarshalRelation(rel))
	if err != nil {
		t.Fatal(err)
	}
	if len(rel.Members) != 3 {
		t.Fatal(rel.Members)
	}
	for i, want := range []osm.Member{
		{ID: 123, Type: osm.WayMember, Role: "outer"},
		{ID: 5, Type: osm.NodeMember, Role: ""},
		{ID: 124, Type: osm.RelationMember, Role: "subarea"},
	} {
		if !reflect.DeepEqual(rel.Members[i], want) {
			t.Error(i, rel.Members[i])
		}
	}
	if rel.Tags["type"] != "multipolygon" {
		t.Error(rel.Tags)
	}
}

func TestUnmarshalCorrupt(t *testing.T) {
	data := MarshalWay(&osm.Way{Refs: []int64{1, 2, 3}})
	if _, err := UnmarshalWay(data[:len(data)-2]); err == nil {
		t.Error("expected error for truncated record")
	}
	// ref count larger than the record
	if _, err := UnmarshalWay([]byte{0, 0x7f}); err == nil {
		t.Error("expected error for invalid count")
	}
	// member type 7
	if _, err := UnmarshalRelation([]byte{0, 1, 7, 2, 0, 0}); err == nil {
		t.Error("expected error for invalid member type")
	}
}
