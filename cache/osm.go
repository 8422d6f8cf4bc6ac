package cache

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger"
	lru "github.com/hashicorp/golang-lru/v2"
	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/osmxml/log"
)

var (
	NotFound = errors.New("not found")
)

const dbDir = "elements"

// DefaultReadCacheSize is the number of elements of each type that are
// kept in memory after a Get.
const DefaultReadCacheSize = 10000

// OSMCache stores parsed nodes, ways and relations by ID. All elements
// are stored in a single badger DB, the first byte of each key is the
// element type.
type OSMCache struct {
	dir           string
	readCacheSize int
	db            *badger.DB
	nodes         *lru.Cache[int64, *osm.Node]
	ways          *lru.Cache[int64, *osm.Way]
	relations     *lru.Cache[int64, *osm.Relation]
	opened        bool
}

func NewOSMCache(dir string) *OSMCache {
	return &OSMCache{dir: dir, readCacheSize: DefaultReadCacheSize}
}

// SetReadCacheSize changes the size of the in-memory read caches.
// Needs to be called before Open.
func (c *OSMCache) SetReadCacheSize(size int) {
	c.readCacheSize = size
}

func (c *OSMCache) Dir() string {
	return c.dir
}

func (c *OSMCache) Open() error {
	if c.opened {
		return nil
	}
	path := filepath.Join(c.dir, dbDir)
	if err := os.MkdirAll(path, 0755); err != nil {
		return err
	}
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return errors.Wrapf(err, "opening cache %s", path)
	}
	c.db = db

	size := c.readCacheSize
	if size <= 0 {
		size = 1
	}
	// lru.New only fails for size <= 0
	c.nodes, _ = lru.New[int64, *osm.Node](size)
	c.ways, _ = lru.New[int64, *osm.Way](size)
	c.relations, _ = lru.New[int64, *osm.Relation](size)
	c.opened = true
	return nil
}

func (c *OSMCache) Close() error {
	if !c.opened {
		return nil
	}
	c.opened = false
	c.nodes.Purge()
	c.ways.Purge()
	c.relations.Purge()
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *OSMCache) Exists() bool {
	if c.opened {
		return true
	}
	if _, err := os.Stat(filepath.Join(c.dir, dbDir)); !os.IsNotExist(err) {
		return true
	}
	return false
}

func (c *OSMCache) Remove() error {
	if err := c.Close(); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(c.dir, dbDir))
}

const (
	nodePrefix     byte = 'n'
	wayPrefix      byte = 'w'
	relationPrefix byte = 'r'
)

// idToKeyBuf returns the key for id. IDs are stored big endian so that
// iteration follows the ID order for positive IDs.
func idToKeyBuf(prefix byte, id int64) []byte {
	b := make([]byte, 9)
	b[0] = prefix
	binary.BigEndian.PutUint64(b[1:], uint64(id))
	return b
}

type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Printf("[error] cache: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Printf("[warn] cache: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	log.Debugf("cache: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	log.Debugf("cache: "+format, args...)
}
