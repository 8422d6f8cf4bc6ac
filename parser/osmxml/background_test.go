package osmxml

import (
	"context"
	"io"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/omniscale/osmxml/element"
)

const mixedDoc = `<osm>
 <node id="1" lat="1" lon="2"><tag k="a" v="b"/></node>
 <node id="2"/>
 <way id="3"><nd ref="1"/><nd ref="1"/></way>
 <way id="4" version="x"/>
 <relation id="5"><member type="way" ref="3" role="outer"/></relation>
 <relation id="6"><member type="way" ref="3"/></relation>
 <node id="7" lat="3" lon="4"/>
</osm>`

type result struct {
	obj element.OSMObj
	err string
}

func collect(t *testing.T, next func() (element.OSMObj, error)) []result {
	t.Helper()
	var results []result
	for i := 0; i < 10000; i++ {
		obj, err := next()
		if err == io.EOF {
			return results
		}
		r := result{obj: obj}
		if err != nil {
			r.err = err.Error()
		}
		results = append(results, r)
	}
	t.Fatal("sequence did not terminate")
	return nil
}

func nodeEvents(n int) []event {
	events := []event{start("osm")}
	for i := 1; i <= n; i++ {
		events = append(events, empty("node", "id", strconv.Itoa(i), "lat", "1", "lon", "1"))
	}
	return append(events, end("osm"))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timeout")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBackgroundSameAsForeground(t *testing.T) {
	fg := collect(t, New(strings.NewReader(mixedDoc)).Next)

	s := New(strings.NewReader(mixedDoc)).InBackground(context.Background())
	defer s.Close()
	bg := collect(t, s.Next)

	if len(fg) != 7 {
		t.Fatal(len(fg), fg)
	}
	if !reflect.DeepEqual(fg, bg) {
		t.Errorf("background differs:\n%v\n%v", fg, bg)
	}
}

func TestBackgroundFile(t *testing.T) {
	p, err := Open("testdata/test.osm.bz2")
	if err != nil {
		t.Fatal(err)
	}
	s := p.InBackground(context.Background())
	n := 0
	for item := range s.Items() {
		if item.Err != nil {
			t.Fatal(item.Err)
		}
		n++
	}
	if n != 7 {
		t.Error(n)
	}
	if err := s.Close(); err != nil {
		t.Error(err)
	}
}

func TestBackgroundTerminalError(t *testing.T) {
	s := New(strings.NewReader(`<osm><node id="1" lat="1" lon="1"/><tag k="a" v="b"/><node id="2" lat="1" lon="1"/></osm>`)).InBackground(context.Background())
	defer s.Close()
	results := collect(t, s.Next)
	if len(results) != 2 {
		t.Fatal(results)
	}
	if !strings.Contains(results[1].err, "outside of node/way/relation") {
		t.Error(results[1])
	}
}

func TestBackgroundBoundedQueue(t *testing.T) {
	tok := &eventTokenizer{events: nodeEvents(100)}
	s := newParser(tok).InBackground(context.Background())
	defer s.Close()

	waitFor(t, func() bool { return len(s.items) == BackgroundQueueSize })
	time.Sleep(20 * time.Millisecond)

	// queue is full, the producer holds at most one more element
	if n := len(s.items); n > BackgroundQueueSize {
		t.Fatal("queue exceeds capacity", n)
	}
	// osm start event, queued nodes, node waiting to be sent
	if read := tok.read(); read > BackgroundQueueSize+2 {
		t.Fatal("producer ahead of consumer", read)
	}

	for i := 1; i <= 100; i++ {
		obj, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		if obj.Node.ID != int64(i) {
			t.Fatal("unexpected order", i, obj)
		}
		if n := len(s.items); n > BackgroundQueueSize {
			t.Fatal("queue exceeds capacity", n)
		}
	}
	if _, err := s.Next(); err != io.EOF {
		t.Fatal(err)
	}
}

func TestBackgroundClose(t *testing.T) {
	tok := &eventTokenizer{events: nodeEvents(1000)}
	s := newParser(tok).InBackground(context.Background())

	if _, err := s.Next(); err != nil {
		t.Fatal(err)
	}
	s.Close()

	select {
	case <-s.done:
	default:
		t.Fatal("producer still running after Close")
	}
	read := tok.read()
	if read >= 1000 {
		t.Error("producer consumed all input", read)
	}
	time.Sleep(10 * time.Millisecond)
	if tok.read() != read {
		t.Error("producer still reading after Close")
	}
	// second close does not block
	s.Close()
}

func TestBackgroundContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tok := &eventTokenizer{events: nodeEvents(1000)}
	s := newParser(tok).InBackground(ctx)
	defer s.Close()

	waitFor(t, func() bool { return len(s.items) == BackgroundQueueSize })
	cancel()
	<-s.done

	var err error
	for i := 0; i < 2*BackgroundQueueSize; i++ {
		if _, err = s.Next(); err != nil {
			break
		}
	}
	if err != context.Canceled {
		t.Fatal("expected context.Canceled, got", err)
	}
}

func TestMapAllInBackground(t *testing.T) {
	p, err := Open("testdata/test.osm.gz")
	if err != nil {
		t.Fatal(err)
	}
	var nodes, rels int
	err = p.MapAllInBackground(context.Background(), Handlers{
		Node:     func(*element.Node) error { nodes++; return nil },
		Relation: func(*element.Relation) error { rels++; return nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	if nodes != 4 || rels != 1 {
		t.Error(nodes, rels)
	}
}

func TestMapAllInBackgroundError(t *testing.T) {
	tok := &eventTokenizer{events: nodeEvents(1000)}
	p := newParser(tok)
	stop := io.ErrUnexpectedEOF
	err := p.MapAllInBackground(context.Background(), Handlers{
		Node: func(n *element.Node) error {
			if n.ID == 3 {
				return stop
			}
			return nil
		},
	})
	if err == nil || !strings.Contains(err.Error(), "handling node 3") {
		t.Fatal(err)
	}
	if tok.read() >= 1000 {
		t.Error("background parser not stopped")
	}
}
