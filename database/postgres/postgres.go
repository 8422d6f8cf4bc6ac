package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	pq "github.com/lib/pq"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/omniscale/osmxml/database"
	"github.com/omniscale/osmxml/element"
	"github.com/omniscale/osmxml/log"
)

type SQLError struct {
	query         string
	originalError error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s", e.originalError.Error(), e.query)
}

func (e *SQLError) Cause() error {
	return e.originalError
}

type SQLInsertError struct {
	SQLError
	data interface{}
}

func (e *SQLInsertError) Error() string {
	return fmt.Sprintf("SQL Error: %s in query %s (%+v)", e.originalError.Error(), e.query, e.data)
}

// Postgres imports nodes, ways and relations into one table each. Tags
// are stored as hstore, refs and members as arrays.
type Postgres struct {
	Db     *sql.DB
	Params string
	Config database.Config
	Prefix string
	Tables map[element.Type]*TableSpec
	txs    map[element.Type]*tableTx
}

var elementTypes = []element.Type{element.NODE, element.WAY, element.RELATION}

func New(conf database.Config) (database.DB, error) {
	pg, err := newPostgres(conf)
	if err != nil {
		return nil, err
	}
	if err := pg.Open(); err != nil {
		return nil, err
	}
	return pg, nil
}

func newPostgres(conf database.Config) (*Postgres, error) {
	pg := &Postgres{Config: conf}
	if pg.Config.ImportSchema == "" {
		pg.Config.ImportSchema = "import"
	}

	if strings.HasPrefix(pg.Config.ConnectionParams, "postgis://") {
		pg.Config.ConnectionParams = strings.Replace(
			pg.Config.ConnectionParams,
			"postgis", "postgres", 1,
		)
	}

	params, err := pq.ParseURL(pg.Config.ConnectionParams)
	if err != nil {
		return nil, errors.Wrap(err, "parsing connection")
	}
	params = disableDefaultSsl(params)
	params, pg.Prefix = stripPrefixFromConnectionParams(params)
	pg.Params = params

	pg.Tables = make(map[element.Type]*TableSpec)
	for _, typ := range elementTypes {
		pg.Tables[typ] = NewTableSpec(pg.Config.ImportSchema, pg.Prefix, typ)
	}
	return pg, nil
}

func (pg *Postgres) Open() error {
	var err error

	pg.Db, err = sql.Open("postgres", pg.Params)
	if err != nil {
		return err
	}
	// check that the connection actually works
	if err := pg.Db.Ping(); err != nil {
		return errors.Wrap(err, "connecting to database")
	}
	return nil
}

func (pg *Postgres) createSchema(schema string) error {
	if schema == "public" {
		return nil
	}
	sql := fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, schema)
	if _, err := pg.Db.Exec(sql); err != nil {
		return &SQLError{sql, err}
	}
	return nil
}

// Init creates the schema and the tables, drops existing tables.
func (pg *Postgres) Init() error {
	sql := "CREATE EXTENSION IF NOT EXISTS hstore"
	if _, err := pg.Db.Exec(sql); err != nil {
		return &SQLError{sql, err}
	}
	if err := pg.createSchema(pg.Config.ImportSchema); err != nil {
		return err
	}

	tx, err := pg.Db.Begin()
	if err != nil {
		return err
	}
	defer rollbackIfTx(&tx)
	for _, typ := range elementTypes {
		spec := pg.Tables[typ]
		for _, sql := range []string{spec.DropTableSQL(), spec.CreateTableSQL()} {
			if _, err := tx.Exec(sql); err != nil {
				return &SQLError{sql, err}
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	tx = nil
	return nil
}

// Begin starts a COPY for each table.
func (pg *Postgres) Begin() error {
	pg.txs = make(map[element.Type]*tableTx)
	for _, typ := range elementTypes {
		tt := newTableTx(pg, pg.Tables[typ])
		pg.txs[typ] = tt
		if err := tt.Begin(); err != nil {
			pg.Abort()
			return err
		}
	}
	return nil
}

func (pg *Postgres) insert(typ element.Type, row []interface{}) error {
	tt, ok := pg.txs[typ]
	if !ok {
		return errors.New("insert without Begin")
	}
	return tt.Insert(row)
}

func (pg *Postgres) InsertNode(n *element.Node) error {
	return pg.insert(element.NODE, nodeRow(n))
}

func (pg *Postgres) InsertWay(w *element.Way) error {
	return pg.insert(element.WAY, wayRow(w))
}

func (pg *Postgres) InsertRelation(r *element.Relation) error {
	return pg.insert(element.RELATION, relationRow(r))
}

// End commits all tables.
func (pg *Postgres) End() error {
	g := errgroup.Group{}
	for _, tt := range pg.txs {
		g.Go(tt.Commit)
	}
	err := g.Wait()
	if err != nil {
		pg.Abort()
	}
	pg.txs = nil
	return err
}

func (pg *Postgres) Abort() error {
	for _, tt := range pg.txs {
		tt.Rollback()
	}
	pg.txs = nil
	return nil
}

// Finish adds primary keys to all tables.
func (pg *Postgres) Finish() error {
	defer log.Step("Creating primary keys")()

	g := errgroup.Group{}
	for _, typ := range elementTypes {
		spec := pg.Tables[typ]
		g.Go(func() error {
			sql := spec.IndexSQL()
			step := log.Step(fmt.Sprintf("Creating primary key on %s", spec.FullName))
			defer step()
			if _, err := pg.Db.Exec(sql); err != nil {
				return &SQLError{sql, err}
			}
			return nil
		})
	}
	return g.Wait()
}

func (pg *Postgres) Close() error {
	return pg.Db.Close()
}

func init() {
	database.Register("postgres", New)
	database.Register("postgis", New)
}
