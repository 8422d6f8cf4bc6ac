package database

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/omniscale/osmxml/element"
)

type Config struct {
	ConnectionParams string
	ImportSchema     string
}

// DB receives parsed elements. Inserts happen between Begin and End.
type DB interface {
	Init() error
	Begin() error
	End() error
	Abort() error
	Close() error
	Inserter
}

type Inserter interface {
	InsertNode(*element.Node) error
	InsertWay(*element.Way) error
	InsertRelation(*element.Relation) error
}

type Finisher interface {
	Finish() error
}

var databases = make(map[string]func(Config) (DB, error))

func Register(name string, f func(Config) (DB, error)) {
	databases[name] = f
}

// Open returns the DB registered for the scheme of the connection string
// (e.g. postgres in postgres://localhost/osm).
func Open(conf Config) (DB, error) {
	connType := ConnectionType(conf.ConnectionParams)
	newFunc, ok := databases[connType]
	if !ok {
		return nil, errors.Errorf("unsupported database type: %q", connType)
	}

	db, err := newFunc(conf)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func ConnectionType(param string) string {
	parts := strings.SplitN(param, ":", 2)
	return parts[0]
}

// NullDb discards all elements.
type NullDb struct{}

func (n *NullDb) Init() error                            { return nil }
func (n *NullDb) Begin() error                           { return nil }
func (n *NullDb) End() error                             { return nil }
func (n *NullDb) Close() error                           { return nil }
func (n *NullDb) Abort() error                           { return nil }
func (n *NullDb) InsertNode(*element.Node) error         { return nil }
func (n *NullDb) InsertWay(*element.Way) error           { return nil }
func (n *NullDb) InsertRelation(*element.Relation) error { return nil }

func NewNullDb(conf Config) (DB, error) {
	return &NullDb{}, nil
}

func init() {
	Register("null", NewNullDb)
}
