package osmxml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/omniscale/osmxml/element"
)

type rawAttrs map[string]string

// collectAttrs converts the attribute list of an element into a map.
// Later duplicates overwrite earlier ones.
func collectAttrs(attr []xml.Attr) (rawAttrs, error) {
	m := make(rawAttrs, len(attr))
	for _, a := range attr {
		if !utf8.ValidString(a.Value) {
			return nil, &ReadError{
				Kind: EncodingError,
				Msg:  fmt.Sprintf("invalid UTF-8 in %s attribute", a.Name.Local),
			}
		}
		m[a.Name.Local] = a.Value
	}
	return m, nil
}

func (r rawAttrs) int64(key string) (int64, bool, error) {
	v, ok := r[key]
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, true, attrError(key, v, err)
	}
	return i, true, nil
}

func (r rawAttrs) uint(key string, bitSize int) (uint64, bool, error) {
	v, ok := r[key]
	if !ok {
		return 0, false, nil
	}
	i, err := strconv.ParseUint(v, 10, bitSize)
	if err != nil {
		return 0, true, attrError(key, v, err)
	}
	return i, true, nil
}

func (r rawAttrs) bool(key string) (bool, bool, error) {
	v, ok := r[key]
	if !ok {
		return false, false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, true, attrError(key, v, err)
	}
	return b, true, nil
}

func (r rawAttrs) coord(key, missing string) (float32, error) {
	v, ok := r[key]
	if !ok {
		return 0, missingError(missing)
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, attrError(key, v, err)
	}
	return float32(f), nil
}

// parseAttrs parses the common metadata of nodes, ways and relations.
func parseAttrs(r rawAttrs) (element.Attrs, error) {
	a := element.Attrs{}
	var ok bool
	var err error

	if a.Changeset, ok, err = r.uint("changeset", 64); err != nil {
		return a, err
	} else if ok {
		a.Set(element.AttrChangeset)
	}
	if a.Deleted, ok, err = r.bool("deleted"); err != nil {
		return a, err
	} else if ok {
		a.Set(element.AttrDeleted)
	}
	if a.ID, ok, err = r.int64("id"); err != nil {
		return a, err
	} else if ok {
		a.Set(element.AttrID)
	}
	if v, ok := r["timestamp"]; ok {
		a.Timestamp = v
		a.Set(element.AttrTimestamp)
	}
	if a.UID, ok, err = r.int64("uid"); err != nil {
		return a, err
	} else if ok {
		a.Set(element.AttrUID)
	}
	if v, ok := r["user"]; ok {
		a.User = v
		a.Set(element.AttrUser)
	}
	var version uint64
	if version, ok, err = r.uint("version", 32); err != nil {
		return a, err
	} else if ok {
		a.Version = uint32(version)
		a.Set(element.AttrVersion)
	}
	if a.Visible, ok, err = r.bool("visible"); err != nil {
		return a, err
	} else if ok {
		a.Set(element.AttrVisible)
	}
	return a, nil
}

func parseMember(r rawAttrs) (element.Member, error) {
	m := element.Member{}
	typ, ok := r["type"]
	if !ok {
		return m, missingError("member element has no 'type' attribute")
	}
	if m.Type, ok = element.TypeValues[typ]; !ok {
		return m, &ReadError{Kind: TypeError, Msg: fmt.Sprintf("object type is not node/way/relation: %q", typ)}
	}
	ref, ok, err := r.int64("ref")
	if err != nil {
		return m, err
	}
	if !ok {
		return m, missingError("member element has no 'ref' attribute")
	}
	m.Ref = ref
	if m.Role, ok = r["role"]; !ok {
		return m, missingError("member element has no 'role' attribute")
	}
	return m, nil
}
