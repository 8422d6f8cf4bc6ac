package postgres

import (
	"fmt"
	"strings"

	pq "github.com/lib/pq"

	"github.com/omniscale/osmxml/element"
)

type ColumnSpec struct {
	Name string
	Type string
}

func (col *ColumnSpec) AsSQL() string {
	return fmt.Sprintf("\"%s\" %s", col.Name, col.Type)
}

type TableSpec struct {
	Name     string
	FullName string
	Schema   string
	Columns  []ColumnSpec
}

var metadataColumns = []ColumnSpec{
	{"id", "BIGINT NOT NULL"},
	{"version", "INTEGER"},
	{"timestamp", "TIMESTAMP WITH TIME ZONE"},
	{"changeset", "BIGINT"},
	{"uid", "BIGINT"},
	{"user", "VARCHAR"},
	{"visible", "BOOL"},
	{"tags", "HSTORE"},
}

func columns(extra ...ColumnSpec) []ColumnSpec {
	cols := make([]ColumnSpec, 0, len(metadataColumns)+len(extra))
	cols = append(cols, metadataColumns...)
	return append(cols, extra...)
}

var tableColumns = map[element.Type][]ColumnSpec{
	element.NODE: columns(
		ColumnSpec{"lat", "DOUBLE PRECISION"},
		ColumnSpec{"lon", "DOUBLE PRECISION"},
	),
	element.WAY: columns(
		ColumnSpec{"refs", "BIGINT[]"},
	),
	element.RELATION: columns(
		ColumnSpec{"member_types", "VARCHAR[]"},
		ColumnSpec{"member_refs", "BIGINT[]"},
		ColumnSpec{"member_roles", "VARCHAR[]"},
	),
}

var tableNames = map[element.Type]string{
	element.NODE:     "nodes",
	element.WAY:      "ways",
	element.RELATION: "relations",
}

func NewTableSpec(schema, prefix string, typ element.Type) *TableSpec {
	return &TableSpec{
		Name:     tableNames[typ],
		FullName: prefix + tableNames[typ],
		Schema:   schema,
		Columns:  tableColumns[typ],
	}
}

func (spec *TableSpec) CreateTableSQL() string {
	cols := []string{}
	for _, col := range spec.Columns {
		cols = append(cols, col.AsSQL())
	}
	columnSQL := strings.Join(cols, ",\n            ")
	return fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS "%s"."%s" (
            %s
        );`,
		spec.Schema,
		spec.FullName,
		columnSQL,
	)
}

func (spec *TableSpec) DropTableSQL() string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS "%s"."%s"`, spec.Schema, spec.FullName)
}

func (spec *TableSpec) CopySQL() string {
	cols := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		cols[i] = col.Name
	}
	return pq.CopyInSchema(spec.Schema, spec.FullName, cols...)
}

// IndexSQL creates the primary key. Duplicate IDs in the input let this
// fail, the import itself does not check for duplicates.
func (spec *TableSpec) IndexSQL() string {
	return fmt.Sprintf(`ALTER TABLE "%s"."%s" ADD PRIMARY KEY (id)`,
		spec.Schema, spec.FullName)
}
