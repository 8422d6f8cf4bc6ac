package query

import (
	"encoding/json"
	"io"
	"strconv"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/osmxml/cache"
)

// Request selects the elements to look up. With Full, ways include their
// nodes and relations include their member ways (with nodes), and
// relations are marked as incomplete if their first member is missing.
type Request struct {
	Nodes     []int64
	Ways      []int64
	Relations []int64
	Full      bool
}

// Elements that are not cached are included with a null value.
type Nodes map[string]*osm.Node
type Ways map[string]*Way
type Relations map[string]*Relation

type Way struct {
	osm.Way
	Nodes Nodes `json:"nodes,omitempty"`
}

type Relation struct {
	osm.Relation
	Ways Ways `json:"ways,omitempty"`
	// Incomplete is set for full queries if the first node or way
	// member is not cached.
	Incomplete bool `json:"incomplete,omitempty"`
}

type Result struct {
	Nodes     Nodes     `json:"nodes,omitempty"`
	Ways      Ways      `json:"ways,omitempty"`
	Relations Relations `json:"relations,omitempty"`
}

func Query(c *cache.OSMCache, req Request) (*Result, error) {
	result := &Result{}
	var err error
	if len(req.Relations) > 0 {
		if result.Relations, err = collectRelations(c, req.Relations, req.Full); err != nil {
			return nil, err
		}
	}
	if len(req.Ways) > 0 {
		if result.Ways, err = collectWays(c, req.Ways, req.Full); err != nil {
			return nil, err
		}
	}
	if len(req.Nodes) > 0 {
		if result.Nodes, err = collectNodes(c, req.Nodes); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func collectRelations(c *cache.OSMCache, ids []int64, recurse bool) (Relations, error) {
	rels := make(Relations)
	for _, id := range ids {
		sid := strconv.FormatInt(id, 10)
		rel, err := c.GetRelation(id)
		if err == cache.NotFound {
			rels[sid] = nil
			continue
		} else if err != nil {
			return nil, err
		}
		rels[sid] = &Relation{Relation: *rel}
		if !recurse {
			continue
		}
		cached, err := c.FirstMemberIsCached(rel.Members)
		if err != nil {
			return nil, errors.Wrapf(err, "members of relation %d", id)
		}
		rels[sid].Incomplete = !cached
		memberWayIDs := []int64{}
		for _, m := range rel.Members {
			if m.Type == osm.WayMember {
				memberWayIDs = append(memberWayIDs, m.ID)
			}
		}
		if rels[sid].Ways, err = collectWays(c, memberWayIDs, true); err != nil {
			return nil, err
		}
	}
	return rels, nil
}

func collectWays(c *cache.OSMCache, ids []int64, recurse bool) (Ways, error) {
	ws := make(Ways)
	for _, id := range ids {
		sid := strconv.FormatInt(id, 10)
		w, err := c.GetWay(id)
		if err == cache.NotFound {
			ws[sid] = nil
			continue
		} else if err != nil {
			return nil, err
		}
		ws[sid] = &Way{Way: *w}
		if recurse {
			if ws[sid].Nodes, err = collectNodes(c, w.Refs); err != nil {
				return nil, err
			}
		}
	}
	return ws, nil
}

func collectNodes(c *cache.OSMCache, ids []int64) (Nodes, error) {
	ns := make(Nodes)
	for _, id := range ids {
		sid := strconv.FormatInt(id, 10)
		n, err := c.GetNode(id)
		if err == cache.NotFound {
			ns[sid] = nil
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "node %d", id)
		}
		ns[sid] = n
	}
	return ns, nil
}

func WriteJSON(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
