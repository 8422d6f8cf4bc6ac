package postgres

import (
	"database/sql"
	"time"

	pq "github.com/lib/pq"
	"github.com/lib/pq/hstore"

	"github.com/omniscale/osmxml/element"
)

// Rows are passed to a COPY statement. lib/pq writes []byte values as
// bytea, so hstore and array values are converted to strings.

func metadataRow(a *element.Attrs, tags element.Tags, extra int) []interface{} {
	row := make([]interface{}, 0, len(metadataColumns)+extra)
	row = append(row, a.ID)
	if a.Has(element.AttrVersion) {
		row = append(row, int64(a.Version))
	} else {
		row = append(row, nil)
	}
	row = append(row, timestampValue(a))
	if a.Has(element.AttrChangeset) {
		row = append(row, int64(a.Changeset))
	} else {
		row = append(row, nil)
	}
	if a.Has(element.AttrUID) {
		row = append(row, a.UID)
	} else {
		row = append(row, nil)
	}
	if a.Has(element.AttrUser) {
		row = append(row, a.User)
	} else {
		row = append(row, nil)
	}
	if a.Has(element.AttrVisible) {
		row = append(row, a.Visible)
	} else {
		row = append(row, nil)
	}
	return append(row, hstoreValue(tags))
}

// timestampValue returns nil for missing or unparsable timestamps.
func timestampValue(a *element.Attrs) interface{} {
	if !a.Has(element.AttrTimestamp) {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, a.Timestamp)
	if err != nil {
		return nil
	}
	return ts
}

func hstoreValue(tags element.Tags) interface{} {
	h := hstore.Hstore{Map: make(map[string]sql.NullString, len(tags))}
	for k, v := range tags {
		h.Map[k] = sql.NullString{String: v, Valid: true}
	}
	v, err := h.Value()
	if err != nil || v == nil {
		return nil
	}
	return string(v.([]byte))
}

func int64Array(ids []int64) interface{} {
	v, _ := pq.Int64Array(ids).Value()
	return v
}

func stringArray(s []string) interface{} {
	v, _ := pq.StringArray(s).Value()
	return v
}

func nodeRow(n *element.Node) []interface{} {
	row := metadataRow(&n.Attrs, n.Tags, 2)
	return append(row, float64(n.Lat), float64(n.Lon))
}

func wayRow(w *element.Way) []interface{} {
	row := metadataRow(&w.Attrs, w.Tags, 1)
	refs := w.Refs
	if refs == nil {
		refs = []int64{}
	}
	return append(row, int64Array(refs))
}

func relationRow(r *element.Relation) []interface{} {
	row := metadataRow(&r.Attrs, r.Tags, 3)
	types := make([]string, len(r.Members))
	refs := make([]int64, len(r.Members))
	roles := make([]string, len(r.Members))
	for i, m := range r.Members {
		types[i] = m.Type.String()
		refs[i] = m.Ref
		roles[i] = m.Role
	}
	return append(row, stringArray(types), int64Array(refs), stringArray(roles))
}
