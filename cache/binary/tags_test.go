package binary

import (
	"reflect"
	"sort"
	"testing"

	osm "github.com/omniscale/go-osm"
)

func TestTagsEncode(t *testing.T) {
	tags := osm.Tags{"name": "foo", "highway": "residential", "oneway": "yes", "surface": "cobblestone"}
	arr := defaultTagTable.encode(tags)

	// sorted by key
	want := []string{
		string(defaultTagTable.tagRunes[tagPair{"highway", "residential"}]),
		"\x01foo",
		string(defaultTagTable.tagRunes[tagPair{"oneway", "yes"}]),
		"surface", "cobblestone",
	}
	if !reflect.DeepEqual(arr, want) {
		t.Fatalf("%q", arr)
	}

	decoded, err := defaultTagTable.decode(arr)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded, tags) {
		t.Error(decoded)
	}
}

func TestTagRunesStable(t *testing.T) {
	if r := defaultTagTable.tagRunes[tagPair{"building", "yes"}]; r != '\uE000' {
		t.Errorf("%x", r)
	}
	if c := defaultTagTable.keyCodes["name"]; c != 1 {
		t.Error(c)
	}
	if c := defaultTagTable.keyCodes["addr:street"]; c != 3 {
		t.Error(c)
	}
}

func TestTagsEscape(t *testing.T) {
	tags := osm.Tags{
		"\x02key":        "ctrl",
		"\uE000building": "pua",
		"\uFFFDkey":      "escape",
		"":               "empty",
	}
	arr := defaultTagTable.encode(tags)
	if len(arr) != 8 {
		t.Fatalf("%q", arr)
	}
	keys := make([]string, 0, 4)
	for i := 0; i < len(arr); i += 2 {
		keys = append(keys, arr[i])
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k[:3] != "\uFFFD" {
			t.Errorf("key not escaped: %q", k)
		}
	}
	decoded, err := defaultTagTable.decode(arr)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(decoded, tags) {
		t.Errorf("%q", decoded)
	}
}

func TestTagsDecodeCorrupt(t *testing.T) {
	for _, arr := range [][]string{
		{"highway"},
		{"\x1fvalue"},
		{string(rune(lastTagRune))},
	} {
		if _, err := defaultTagTable.decode(arr); err == nil {
			t.Errorf("expected error for %q", arr)
		}
	}
}
