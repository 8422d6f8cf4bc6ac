package stats

import (
	"time"

	"github.com/omniscale/osmxml/log"
)

type counter struct {
	nodes         int64
	ways          int64
	relations     int64
	errors        int64
	lastReport    time.Time
	lastNodes     int64
	lastWays      int64
	lastRelations int64
}

// ElementCounts contains the number of processed elements.
type ElementCounts struct {
	Nodes     int64
	Ways      int64
	Relations int64
	Errors    int64
}

// Statistics counts processed elements and regularly logs the progress.
// All methods are safe for concurrent use.
type Statistics struct {
	nodes     chan int
	ways      chan int
	relations chan int
	errors    chan int
	done      chan chan ElementCounts
	quiet     bool
}

func (s *Statistics) AddNodes(n int) {
	s.nodes <- n
	elementsTotal.WithLabelValues("node").Add(float64(n))
}

func (s *Statistics) AddWays(n int) {
	s.ways <- n
	elementsTotal.WithLabelValues("way").Add(float64(n))
}

func (s *Statistics) AddRelations(n int) {
	s.relations <- n
	elementsTotal.WithLabelValues("relation").Add(float64(n))
}

// AddError counts an element that could not be parsed. kind is used as
// metric label.
func (s *Statistics) AddError(kind string) {
	s.errors <- 1
	errorsTotal.WithLabelValues(kind).Inc()
}

// Stop stops the reporter and returns the final counts.
func (s *Statistics) Stop() ElementCounts {
	result := make(chan ElementCounts)
	s.done <- result
	return <-result
}

// NewStatsReporter starts a reporter that logs the progress every second.
func NewStatsReporter() *Statistics {
	return newStatsReporter(time.Second, false)
}

// NewQuietStatsReporter only counts, it does not log the progress.
func NewQuietStatsReporter() *Statistics {
	return newStatsReporter(time.Second, true)
}

func newStatsReporter(interval time.Duration, quiet bool) *Statistics {
	c := counter{lastReport: time.Now()}
	s := Statistics{
		nodes:     make(chan int),
		ways:      make(chan int),
		relations: make(chan int),
		errors:    make(chan int),
		done:      make(chan chan ElementCounts),
		quiet:     quiet,
	}

	go func() {
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case n := <-s.nodes:
				c.nodes += int64(n)
			case n := <-s.ways:
				c.ways += int64(n)
			case n := <-s.relations:
				c.relations += int64(n)
			case n := <-s.errors:
				c.errors += int64(n)
			case result := <-s.done:
				if !s.quiet {
					c.print()
				}
				result <- c.counts()
				return
			case <-tick.C:
				if !s.quiet {
					c.print()
				}
			}
		}
	}()
	return &s
}

func (c *counter) counts() ElementCounts {
	return ElementCounts{
		Nodes:     c.nodes,
		Ways:      c.ways,
		Relations: c.relations,
		Errors:    c.errors,
	}
}

func (c *counter) print() {
	dur := time.Since(c.lastReport)
	nodesPS := int32(float64(c.nodes-c.lastNodes)/dur.Seconds()/100) * 100
	waysPS := int32(float64(c.ways-c.lastWays)/dur.Seconds()/100) * 100
	relationsPS := int32(float64(c.relations-c.lastRelations)/dur.Seconds()/10) * 10

	log.Printf("[progress] Nodes: %7d/s (%9d) Ways: %7d/s (%8d) Relations: %6d/s (%7d) Errors: %d",
		nodesPS,
		c.nodes,
		waysPS,
		c.ways,
		relationsPS,
		c.relations,
		c.errors,
	)
	c.lastNodes = c.nodes
	c.lastWays = c.ways
	c.lastRelations = c.relations
	c.lastReport = time.Now()
}
