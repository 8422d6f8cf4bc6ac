package cache

import (
	"github.com/dgraph-io/badger"
	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/osmxml/cache/binary"
)

var errNotOpened = errors.New("cache not opened")

type entry struct {
	key   []byte
	value []byte
}

// putBatch writes all entries. Large batches are split into multiple
// transactions.
func (c *OSMCache) putBatch(entries []entry) error {
	txn := c.db.NewTransaction(true)
	defer func() { txn.Discard() }()
	for _, e := range entries {
		err := txn.Set(e.key, e.value)
		if err == badger.ErrTxnTooBig {
			if err := txn.Commit(); err != nil {
				return errors.Wrap(err, "committing cache batch")
			}
			txn = c.db.NewTransaction(true)
			err = txn.Set(e.key, e.value)
		}
		if err != nil {
			return errors.Wrap(err, "writing cache entry")
		}
	}
	return errors.Wrap(txn.Commit(), "committing cache batch")
}

func (c *OSMCache) get(key []byte) ([]byte, error) {
	if !c.opened {
		return nil, errNotOpened
	}
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return NotFound
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	return data, err
}

func (c *OSMCache) PutNodes(nodes []*osm.Node) error {
	if !c.opened {
		return errNotOpened
	}
	entries := make([]entry, len(nodes))
	for i, n := range nodes {
		entries[i] = entry{idToKeyBuf(nodePrefix, n.ID), binary.MarshalNode(n)}
		c.nodes.Remove(n.ID)
	}
	return c.putBatch(entries)
}

func (c *OSMCache) PutWays(ways []*osm.Way) error {
	if !c.opened {
		return errNotOpened
	}
	entries := make([]entry, len(ways))
	for i, w := range ways {
		entries[i] = entry{idToKeyBuf(wayPrefix, w.ID), binary.MarshalWay(w)}
		c.ways.Remove(w.ID)
	}
	return c.putBatch(entries)
}

func (c *OSMCache) PutRelations(rels []*osm.Relation) error {
	if !c.opened {
		return errNotOpened
	}
	entries := make([]entry, len(rels))
	for i, r := range rels {
		entries[i] = entry{idToKeyBuf(relationPrefix, r.ID), binary.MarshalRelation(r)}
		c.relations.Remove(r.ID)
	}
	return c.putBatch(entries)
}

// GetNode returns the cached node or NotFound. The returned node is
// shared with the read cache and must not be modified.
func (c *OSMCache) GetNode(id int64) (*osm.Node, error) {
	if !c.opened {
		return nil, errNotOpened
	}
	if n, ok := c.nodes.Get(id); ok {
		return n, nil
	}
	data, err := c.get(idToKeyBuf(nodePrefix, id))
	if err != nil {
		return nil, err
	}
	n, err := binary.UnmarshalNode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "node %d", id)
	}
	n.ID = id
	c.nodes.Add(id, n)
	return n, nil
}

func (c *OSMCache) GetWay(id int64) (*osm.Way, error) {
	if !c.opened {
		return nil, errNotOpened
	}
	if w, ok := c.ways.Get(id); ok {
		return w, nil
	}
	data, err := c.get(idToKeyBuf(wayPrefix, id))
	if err != nil {
		return nil, err
	}
	w, err := binary.UnmarshalWay(data)
	if err != nil {
		return nil, errors.Wrapf(err, "way %d", id)
	}
	w.ID = id
	c.ways.Add(id, w)
	return w, nil
}

func (c *OSMCache) GetRelation(id int64) (*osm.Relation, error) {
	if !c.opened {
		return nil, errNotOpened
	}
	if r, ok := c.relations.Get(id); ok {
		return r, nil
	}
	data, err := c.get(idToKeyBuf(relationPrefix, id))
	if err != nil {
		return nil, err
	}
	r, err := binary.UnmarshalRelation(data)
	if err != nil {
		return nil, errors.Wrapf(err, "relation %d", id)
	}
	r.ID = id
	c.relations.Add(id, r)
	return r, nil
}

// Counts returns the number of cached nodes, ways and relations.
func (c *OSMCache) Counts() (nodes, ways, relations int64, err error) {
	if !c.opened {
		return 0, 0, 0, errNotOpened
	}
	err = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			switch it.Item().Key()[0] {
			case nodePrefix:
				nodes++
			case wayPrefix:
				ways++
			case relationPrefix:
				relations++
			}
		}
		return nil
	})
	return nodes, ways, relations, err
}

// FirstMemberIsCached checks whether the first way or node member is cached.
// Also returns true if there are no members of type way or node.
func (c *OSMCache) FirstMemberIsCached(members []osm.Member) (bool, error) {
	for _, m := range members {
		var err error
		switch m.Type {
		case osm.WayMember:
			_, err = c.GetWay(m.ID)
		case osm.NodeMember:
			_, err = c.GetNode(m.ID)
		default:
			continue
		}
		if err == NotFound {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return true, nil
}
