// Package media provides the playback resource binding: the contract for the
// single audio output a player owns, and its event feed.
package media

import (
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

var (
	ErrAlreadyBound = errors.New("output is already bound")
	ErrClosed       = errors.New("output is closed")
)

// EventType represents an output event type.
type EventType int

const (
	EventPositionChanged EventType = iota // Playback position moved
	EventDurationKnown                    // Duration of the loaded source resolved
	EventVolumeChanged                    // Volume changed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventPositionChanged:
		return "position_changed"
	case EventDurationKnown:
		return "duration_known"
	case EventVolumeChanged:
		return "volume_changed"
	default:
		return "unknown"
	}
}

// Event is pushed by an output. Value is seconds for position and duration
// events and a level in [0, 1] for volume events.
type Event struct {
	Type  EventType
	Value float64
}

// Output is one platform audio-output handle.
//
// Transport calls are best-effort. Bind subscribes the single owner of the
// output; the handler is invoked from the output's own goroutine, one event at
// a time, and never from inside a transport call.
type Output interface {
	Bind(handler func(Event)) (release func(), err error)
	Load(source string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(level float64) error
	Clear() error
}

// Dispatcher delivers output events to the bound handler from a dedicated
// goroutine. Outputs embed it to implement Bind.
type Dispatcher struct {
	mu      sync.Mutex
	handler func(Event)
	gen     uint64
	closed  bool
	queue   chan Event
	done    chan struct{}
}

// NewDispatcher creates a dispatcher with the given queue size and starts its
// delivery goroutine.
func NewDispatcher(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	d := &Dispatcher{
		queue: make(chan Event, buffer),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

// Bind registers the handler. Only one handler may be bound at a time.
func (d *Dispatcher) Bind(handler func(Event)) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if d.handler != nil {
		return nil, ErrAlreadyBound
	}

	d.gen++
	gen := d.gen
	d.handler = handler

	var once sync.Once
	release := func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			if d.gen == gen {
				d.handler = nil
			}
		})
	}
	return release, nil
}

// Bound reports whether a handler is currently bound.
func (d *Dispatcher) Bound() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handler != nil
}

// Emit queues an event without blocking. Events are dropped when the queue is
// full or the dispatcher is closed.
func (d *Dispatcher) Emit(e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	select {
	case d.queue <- e:
	default:
		zlog.Debug().Msgf("media: event queue full, dropping event: type=%s value=%.3f", e.Type, e.Value)
	}
}

// Close stops delivery. Queued events are discarded.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.handler = nil
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		d.mu.Lock()
		h := d.handler
		d.mu.Unlock()
		if h != nil {
			h(e)
		}
	}
}

// clamp limits v to [lo, hi]. hi <= 0 means no upper bound.
func clamp(v, lo, hi float64) float64 {
	if v < lo || v != v {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
