/*
Package import_ implements the count, cache and import sub commands.
*/
package import_

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/omniscale/osmxml/config"
	"github.com/omniscale/osmxml/element"
	"github.com/omniscale/osmxml/log"
	"github.com/omniscale/osmxml/parser/osmxml"
	"github.com/omniscale/osmxml/stats"
)

// statsFlush is the number of elements after which local counts are
// passed to the stats reporter.
const statsFlush = 8192

type localCounts struct {
	nodes, ways, relations int
	st                     *stats.Statistics
}

func (c *localCounts) add(typ element.Type) {
	switch typ {
	case element.NODE:
		c.nodes++
	case element.WAY:
		c.ways++
	case element.RELATION:
		c.relations++
	}
	if c.nodes+c.ways+c.relations >= statsFlush {
		c.flush()
	}
}

func (c *localCounts) flush() {
	if c.nodes > 0 {
		c.st.AddNodes(c.nodes)
	}
	if c.ways > 0 {
		c.st.AddWays(c.ways)
	}
	if c.relations > 0 {
		c.st.AddRelations(c.relations)
	}
	c.nodes, c.ways, c.relations = 0, 0, 0
}

func newStats(o *config.Options) *stats.Statistics {
	if o.Quiet {
		return stats.NewQuietStatsReporter()
	}
	return stats.NewStatsReporter()
}

// ReadElements calls fn for each element of o.Input. Elements that could
// not be parsed are logged and counted, structure and syntax errors and
// errors from fn stop reading.
func ReadElements(ctx context.Context, o *config.Options, st *stats.Statistics, fn func(element.OSMObj) error) error {
	p, err := osmxml.Open(o.Input, osmxml.WithFilter(o.Filter))
	if err != nil {
		return err
	}
	defer p.Close()

	next := p.Next
	if o.Background {
		s := p.InBackground(ctx)
		defer s.Close()
		next = s.Next
	}

	counts := &localCounts{st: st}
	defer counts.flush()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		obj, err := next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if !osmxml.IsRecoverable(err) {
				return errors.Wrapf(err, "reading %s", o.Input)
			}
			if rerr, ok := errors.Cause(err).(*osmxml.ReadError); ok {
				st.AddError(rerr.Kind.String())
			}
			log.Warnf("skipping element: %s", err)
			continue
		}
		counts.add(obj.Type())
		if err := fn(obj); err != nil {
			return err
		}
	}
}

// Count counts all elements of o.Input.
func Count(ctx context.Context, o *config.Options) (stats.ElementCounts, error) {
	st := newStats(o)
	err := ReadElements(ctx, o, st, func(element.OSMObj) error { return nil })
	return st.Stop(), err
}
