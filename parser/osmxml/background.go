package osmxml

import (
	"context"
	"io"

	"github.com/omniscale/osmxml/element"
	"github.com/omniscale/osmxml/log"
)

// BackgroundQueueSize is the number of parsed elements that are queued
// between the background parser and the consumer.
const BackgroundQueueSize = 5

type Item struct {
	Obj element.OSMObj
	Err error
}

// Stream returns elements parsed in a background goroutine.
// Close must be called if the stream is not consumed until io.EOF.
type Stream struct {
	items  chan Item
	cancel context.CancelFunc
	done   chan struct{}
	err    error // set by producer before items is closed
}

// InBackground starts parsing in a new goroutine. The parser must not be
// used by the caller afterwards. The goroutine terminates at the end of
// the input, after a non-recoverable error, when ctx is cancelled or
// when the stream is closed.
func (p *Parser) InBackground(ctx context.Context) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		items:  make(chan Item, BackgroundQueueSize),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.produce(ctx, p)
	return s
}

func (s *Stream) produce(ctx context.Context, p *Parser) {
	defer close(s.done)
	defer close(s.items)
	defer p.Close()

	for {
		if err := ctx.Err(); err != nil {
			s.err = err
			return
		}
		obj, err := p.Next()
		if err == io.EOF {
			return
		}
		select {
		case s.items <- Item{Obj: obj, Err: err}:
		case <-ctx.Done():
			log.Debugf("background parser stopped at offset %d", p.Offset())
			s.err = ctx.Err()
			return
		}
	}
}

// Next returns the next element or error in document order. Returns
// io.EOF at the end, or the context error if the stream was cancelled.
func (s *Stream) Next() (element.OSMObj, error) {
	item, ok := <-s.items
	if !ok {
		if s.err != nil {
			return element.OSMObj{}, s.err
		}
		return element.OSMObj{}, io.EOF
	}
	return item.Obj, item.Err
}

// Items returns the underlying channel. It is closed after the last item.
func (s *Stream) Items() <-chan Item {
	return s.items
}

// Close stops the background parser and waits till it has terminated.
// Close is safe to call multiple times and after the stream is consumed.
func (s *Stream) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// MapAll dispatches all remaining elements to the handlers. It stops at
// the first error and closes the stream.
func (s *Stream) MapAll(h Handlers) error {
	defer s.Close()
	for {
		obj, err := s.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := h.call(obj); err != nil {
			return err
		}
	}
}

// MapAllInBackground is MapAll with parsing in a background goroutine.
func (p *Parser) MapAllInBackground(ctx context.Context, h Handlers) error {
	p.SetFilter(h.Filter())
	return p.InBackground(ctx).MapAll(h)
}
