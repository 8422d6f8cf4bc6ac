package postgres

import (
	"database/sql"
	"strings"

	"github.com/omniscale/osmxml/log"
)

// disableDefaultSsl adds sslmode=disable when no sslmode is set. lib/pq
// requires SSL by default.
func disableDefaultSsl(params string) string {
	if strings.Contains(params, "sslmode=") {
		return params
	}
	if params == "" {
		return "sslmode=disable"
	}
	return params + " sslmode=disable"
}

// stripParam removes the key=value option from params and returns the
// value. lib/pq rejects unknown options.
func stripParam(params, key string) (string, string) {
	parts := strings.Fields(params)
	var value string
	result := parts[:0]
	for _, p := range parts {
		if strings.HasPrefix(p, key+"=") {
			value = strings.TrimPrefix(p, key+"=")
			continue
		}
		result = append(result, p)
	}
	return strings.Join(result, " "), value
}

// stripPrefixFromConnectionParams returns params without the prefix
// option and the table prefix (osm_ by default, always ends with _).
func stripPrefixFromConnectionParams(params string) (string, string) {
	params, prefix := stripParam(params, "prefix")
	if prefix == "NONE" {
		return params, ""
	}
	if prefix == "" {
		prefix = "osm_"
	}
	if prefix[len(prefix)-1] != '_' {
		prefix = prefix + "_"
	}
	return params, prefix
}

func rollbackIfTx(tx **sql.Tx) error {
	if *tx == nil {
		return nil
	}
	err := (*tx).Rollback()
	*tx = nil
	if err != nil {
		log.Println("[warn] rollback failed:", err)
	}
	return err
}
