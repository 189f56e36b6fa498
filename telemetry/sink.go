// SPDX-License-Identifier: EPL-2.0

package telemetry

import (
	"sync"
	"sync/atomic"

	"github.com/ik5/beatmix/session"
)

// MultiSink fans every event out to each sink in order.
type MultiSink []session.EventSink

func (m MultiSink) Emit(ev session.Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ev)
		}
	}
}

// ChanSink forwards events to a channel, dropping them when it is full.
type ChanSink struct {
	ch      chan<- session.Event
	dropped atomic.Uint64
}

func NewChanSink(ch chan<- session.Event) *ChanSink {
	return &ChanSink{ch: ch}
}

func (c *ChanSink) Emit(ev session.Event) {
	select {
	case c.ch <- ev:
	default:
		c.dropped.Add(1)
	}
}

// Dropped is the number of events lost to a full channel.
func (c *ChanSink) Dropped() uint64 { return c.dropped.Load() }

// AsyncSink hands events to a wrapped sink from its own goroutine, so slow
// sinks never run on the caller. Events are dropped when the queue is full.
type AsyncSink struct {
	sink    session.EventSink
	events  chan session.Event
	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAsyncSink(sink session.EventSink, buffer int) *AsyncSink {
	a := &AsyncSink{
		sink:   sink,
		events: make(chan session.Event, max(1, buffer)),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncSink) Emit(ev session.Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.dropped.Add(1)
		return
	}

	select {
	case a.events <- ev:
	default:
		a.dropped.Add(1)
	}
}

// Dropped is the number of events the wrapped sink never saw.
func (a *AsyncSink) Dropped() uint64 { return a.dropped.Load() }

// Close delivers what is queued and waits for it. Later events are dropped.
func (a *AsyncSink) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()

	<-a.done
}

func (a *AsyncSink) run() {
	defer close(a.done)

	for ev := range a.events {
		a.sink.Emit(ev)
	}
}
