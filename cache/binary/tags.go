package binary

// Tags are stored as a list of strings. Frequent key=value pairs are
// replaced by a single rune from the Unicode Private Use Area (U+E000 to
// U+F8FF, three bytes in UTF-8). Frequent keys with variable values are
// replaced by a single ASCII control char (0x01-0x1f) in front of the value.
// Other keys are stored as key, value. Keys that already start with a
// control char or a private use rune are prefixed with escapeRune.

import (
	"sort"
	"unicode/utf8"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"
)

const (
	firstTagRune = '\uE000'
	lastTagRune  = '\uF8FF'
	escapeRune   = '\uFFFD'
	maxKeyCode   = 0x1f
)

var errCorruptTags = errors.New("corrupt tag list in cache record")

type tagPair struct {
	key   string
	value string
}

type tagTable struct {
	tagRunes map[tagPair]rune
	runeTags []tagPair
	keyCodes map[string]byte
	codeKeys []string
}

func newTagTable(keys []string, tags []tagPair) *tagTable {
	if len(keys) > maxKeyCode {
		panic("too many common keys")
	}
	if len(tags) > lastTagRune-firstTagRune+1 {
		panic("too many common tags")
	}
	t := &tagTable{
		tagRunes: make(map[tagPair]rune, len(tags)),
		runeTags: tags,
		keyCodes: make(map[string]byte, len(keys)),
		codeKeys: append([]string{""}, keys...),
	}
	for i, k := range keys {
		t.keyCodes[k] = byte(i + 1)
	}
	for i, tag := range tags {
		if _, ok := t.tagRunes[tag]; ok {
			panic("duplicate common tag " + tag.key + "=" + tag.value)
		}
		t.tagRunes[tag] = firstTagRune + rune(i)
	}
	return t
}

func (t *tagTable) appendTag(arr []string, key, val string) []string {
	if r, ok := t.tagRunes[tagPair{key, val}]; ok {
		return append(arr, string(r))
	}
	if code, ok := t.keyCodes[key]; ok {
		return append(arr, string(rune(code))+val)
	}
	if needsEscape(key) {
		key = string(escapeRune) + key
	}
	return append(arr, key, val)
}

func needsEscape(key string) bool {
	if len(key) > 0 && key[0] <= maxKeyCode {
		return true
	}
	r, _ := utf8.DecodeRuneInString(key)
	return r == escapeRune || (r >= firstTagRune && r <= lastTagRune)
}

// encode returns the string list for tags, sorted by key.
func (t *tagTable) encode(tags osm.Tags) []string {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	arr := make([]string, 0, 2*len(tags))
	for _, k := range keys {
		arr = t.appendTag(arr, k, tags[k])
	}
	return arr
}

func (t *tagTable) decode(arr []string) (osm.Tags, error) {
	if len(arr) == 0 {
		return nil, nil
	}
	tags := make(osm.Tags)
	for i := 0; i < len(arr); i++ {
		s := arr[i]
		if len(s) > 0 && s[0] <= maxKeyCode {
			if int(s[0]) >= len(t.codeKeys) || s[0] == 0 {
				return nil, errCorruptTags
			}
			tags[t.codeKeys[s[0]]] = s[1:]
			continue
		}
		r, size := utf8.DecodeRuneInString(s)
		if r >= firstTagRune && r <= lastTagRune && size == len(s) {
			idx := int(r - firstTagRune)
			if idx >= len(t.runeTags) {
				return nil, errCorruptTags
			}
			tags[t.runeTags[idx].key] = t.runeTags[idx].value
			continue
		}
		if i+1 >= len(arr) {
			return nil, errCorruptTags
		}
		if r == escapeRune {
			s = s[size:]
		}
		tags[s] = arr[i+1]
		i++
	}
	return tags, nil
}

// Append new entries only. Changing the order breaks existing caches.
var commonKeys = []string{
	"name",
	"ref",
	"addr:street",
	"addr:city",
	"addr:postcode",
	"addr:housenumber",
	"addr:country",
	"source",
	"note",
	"height",
	"building:levels",
	"maxspeed",
	"operator",
	"website",
}

var commonTags = []tagPair{
	{"building", "yes"},
	{"building", "house"},
	{"building", "residential"},
	{"building", "garage"},
	{"building", "apartments"},
	{"highway", "residential"},
	{"highway", "service"},
	{"highway", "unclassified"},
	{"highway", "track"},
	{"highway", "footway"},
	{"highway", "path"},
	{"highway", "tertiary"},
	{"highway", "secondary"},
	{"highway", "primary"},
	{"highway", "trunk"},
	{"highway", "motorway"},
	{"highway", "cycleway"},
	{"highway", "crossing"},
	{"highway", "bus_stop"},
	{"oneway", "yes"},
	{"oneway", "no"},
	{"access", "private"},
	{"surface", "asphalt"},
	{"surface", "paved"},
	{"surface", "unpaved"},
	{"surface", "gravel"},
	{"bridge", "yes"},
	{"tunnel", "yes"},
	{"layer", "1"},
	{"layer", "-1"},
	{"natural", "water"},
	{"natural", "wood"},
	{"natural", "tree"},
	{"natural", "wetland"},
	{"natural", "coastline"},
	{"waterway", "stream"},
	{"waterway", "river"},
	{"waterway", "ditch"},
	{"landuse", "forest"},
	{"landuse", "residential"},
	{"landuse", "grass"},
	{"landuse", "farmland"},
	{"landuse", "meadow"},
	{"amenity", "parking"},
	{"amenity", "bench"},
	{"barrier", "fence"},
	{"barrier", "wall"},
	{"railway", "rail"},
	{"power", "tower"},
	{"power", "pole"},
	{"boundary", "administrative"},
	{"type", "multipolygon"},
	{"type", "route"},
	{"type", "restriction"},
	{"type", "boundary"},
	{"area", "yes"},
	{"lit", "yes"},
	{"foot", "yes"},
	{"bicycle", "yes"},
	{"tracktype", "grade1"},
	{"tracktype", "grade2"},
	{"tracktype", "grade3"},
	{"service", "driveway"},
	{"service", "parking_aisle"},
	{"intermittent", "yes"},
}

var defaultTagTable = newTagTable(commonKeys, commonTags)
