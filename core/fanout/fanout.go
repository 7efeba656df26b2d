// Package fanout broadcasts a single stream of ai.StreamEvent values to
// N independent sinks (a renderer, a thread-log writer, a metrics
// collector) over bounded channels. A sink that can't keep up is a
// fatal bug, not a dropped event: overflow panics rather than silently
// discarding state the thread log or UI would otherwise desync from.
package fanout

import (
	"sync"

	"github.com/tallesborges/zdx/providers/ai"
)

// defaultBufferSize bounds each sink's channel. It is generous enough
// to absorb a burst of text deltas between a sink's read cycles without
// masking a truly stuck consumer.
const defaultBufferSize = 256

// Sink receives every event published to a Fanout.
type Sink struct {
	name string
	ch   chan ai.StreamEvent
}

// C returns the channel callers should range over to consume events.
func (s *Sink) C() <-chan ai.StreamEvent { return s.ch }

// Name identifies the sink for error messages.
func (s *Sink) Name() string { return s.name }

// Fanout publishes events to a fixed, ordered list of sinks.
type Fanout struct {
	sinks []*Sink
}

// New builds a Fanout with the given named sinks, each independently
// buffered.
func New(names ...string) *Fanout {
	f := &Fanout{}
	for _, name := range names {
		f.sinks = append(f.sinks, &Sink{name: name, ch: make(chan ai.StreamEvent, defaultBufferSize)})
	}
	return f
}

// Sinks returns the sinks in the order they were created, for callers
// to range over.
func (f *Fanout) Sinks() []*Sink { return f.sinks }

// Publish sends event to every sink in order. It panics if a sink's
// buffer is full, since a full buffer means that sink has fallen
// irrecoverably behind the event it's supposed to be rendering or
// persisting.
func (f *Fanout) Publish(event ai.StreamEvent) {
	for _, sink := range f.sinks {
		select {
		case sink.ch <- event:
		default:
			panic("fanout: sink " + sink.name + " overflowed its event buffer")
		}
	}
}

// Close closes every sink's channel. Call this once the producer is
// done publishing so range loops over Sink.C() terminate.
func (f *Fanout) Close() {
	for _, sink := range f.sinks {
		close(sink.ch)
	}
}

// Drain is a convenience helper for tests and simple consumers: it
// forwards each sink's channel to fn, running every sink concurrently,
// and returns once all sinks have been drained.
func Drain(f *Fanout, fn func(sinkName string, event ai.StreamEvent)) {
	var wg sync.WaitGroup
	for _, sink := range f.sinks {
		wg.Add(1)
		go func(s *Sink) {
			defer wg.Done()
			for event := range s.C() {
				fn(s.Name(), event)
			}
		}(sink)
	}
	wg.Wait()
}
