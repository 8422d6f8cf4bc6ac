package import_

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/omniscale/osmxml/config"
	"github.com/omniscale/osmxml/database"
	_ "github.com/omniscale/osmxml/database/postgres"
	"github.com/omniscale/osmxml/element"
	"github.com/omniscale/osmxml/log"
	"github.com/omniscale/osmxml/stats"
)

// Import writes all elements of o.Input into the database.
func Import(ctx context.Context, o *config.Options) (stats.ElementCounts, error) {
	db, err := database.Open(database.Config{
		ConnectionParams: o.Connection,
		ImportSchema:     o.Schema,
	})
	if err != nil {
		return stats.ElementCounts{}, err
	}
	defer db.Close()

	if err := db.Init(); err != nil {
		return stats.ElementCounts{}, err
	}
	if err := db.Begin(); err != nil {
		return stats.ElementCounts{}, err
	}

	st := newStats(o)
	step := log.Step("Importing OSM data")
	err = importElements(ctx, o, st, db)
	step()
	counts := st.Stop()
	if err != nil {
		db.Abort()
		return counts, err
	}
	if err := db.End(); err != nil {
		return counts, err
	}
	if finisher, ok := db.(database.Finisher); ok {
		if err := finisher.Finish(); err != nil {
			return counts, err
		}
	}
	return counts, nil
}

// importElements parses in one goroutine and inserts in a second one.
func importElements(ctx context.Context, o *config.Options, st *stats.Statistics, db database.Inserter) error {
	elems := make(chan element.OSMObj, 256)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(elems)
		return ReadElements(ctx, o, st, func(obj element.OSMObj) error {
			select {
			case elems <- obj:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	g.Go(func() error {
		for obj := range elems {
			if err := insert(db, obj); err != nil {
				return err
			}
		}
		return nil
	})

	return g.Wait()
}

func insert(db database.Inserter, obj element.OSMObj) error {
	switch {
	case obj.Node != nil:
		return db.InsertNode(obj.Node)
	case obj.Way != nil:
		return db.InsertWay(obj.Way)
	case obj.Rel != nil:
		return db.InsertRelation(obj.Rel)
	}
	return nil
}
