package import_

import (
	"context"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/omniscale/osmxml/cache"
	"github.com/omniscale/osmxml/config"
	"github.com/omniscale/osmxml/element"
	"github.com/omniscale/osmxml/log"
	"github.com/omniscale/osmxml/stats"
)

const cacheBatchSize = 4096

type cacheBatch struct {
	nodes     []*osm.Node
	ways      []*osm.Way
	relations []*osm.Relation
}

func (b *cacheBatch) len() int {
	return len(b.nodes) + len(b.ways) + len(b.relations)
}

func (b *cacheBatch) add(obj element.OSMObj) {
	switch {
	case obj.Node != nil:
		b.nodes = append(b.nodes, obj.Node.ToOSM())
	case obj.Way != nil:
		b.ways = append(b.ways, obj.Way.ToOSM())
	case obj.Rel != nil:
		b.relations = append(b.relations, obj.Rel.ToOSM())
	}
}

func writeBatch(c *cache.OSMCache, b *cacheBatch) error {
	if len(b.nodes) > 0 {
		if err := c.PutNodes(b.nodes); err != nil {
			return err
		}
	}
	if len(b.ways) > 0 {
		if err := c.PutWays(b.ways); err != nil {
			return err
		}
	}
	if len(b.relations) > 0 {
		if err := c.PutRelations(b.relations); err != nil {
			return err
		}
	}
	return nil
}

// Cache stores all elements of o.Input in the cache in o.CacheDir.
// Parsing and writing run concurrently.
func Cache(ctx context.Context, o *config.Options) (stats.ElementCounts, error) {
	osmCache := cache.NewOSMCache(o.CacheDir)
	if osmCache.Exists() {
		if !o.Overwritecache {
			return stats.ElementCounts{}, errors.Errorf(
				"cache already exists in %s, use -overwritecache", o.CacheDir)
		}
		log.Printf("[info] removing existing cache %s", o.CacheDir)
		if err := osmCache.Remove(); err != nil {
			return stats.ElementCounts{}, errors.Wrap(err, "removing existing cache")
		}
	}
	if err := osmCache.Open(); err != nil {
		return stats.ElementCounts{}, err
	}
	defer osmCache.Close()

	step := log.Step("Reading OSM data into cache")
	defer step()

	st := newStats(o)
	batches := make(chan *cacheBatch, 4)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(batches)
		b := &cacheBatch{}
		err := ReadElements(ctx, o, st, func(obj element.OSMObj) error {
			b.add(obj)
			if b.len() < cacheBatchSize {
				return nil
			}
			select {
			case batches <- b:
			case <-ctx.Done():
				return ctx.Err()
			}
			b = &cacheBatch{}
			return nil
		})
		if err != nil {
			return err
		}
		select {
		case batches <- b:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	g.Go(func() error {
		for b := range batches {
			if err := writeBatch(osmCache, b); err != nil {
				return errors.Wrap(err, "writing cache")
			}
		}
		return nil
	})

	err := g.Wait()
	return st.Stop(), err
}
