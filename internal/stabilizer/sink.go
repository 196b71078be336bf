package stabilizer

import (
	"errors"
	"sync"
)

// Sink receives events from a Session. Implementations must not block for
// long: Send is called from the frame loop.
type Sink interface {
	// Connected reports whether anyone is listening. The session emits
	// nothing while this is false.
	Connected() bool
	Send(ev Event) error
}

// MultiSink fans events out to several sinks.
type MultiSink []Sink

// Connected is true when at least one sink is connected.
func (m MultiSink) Connected() bool {
	for _, s := range m {
		if s.Connected() {
			return true
		}
	}
	return false
}

// Send delivers ev to every connected sink and joins their errors.
func (m MultiSink) Send(ev Event) error {
	var errs []error
	for _, s := range m {
		if !s.Connected() {
			continue
		}
		if err := s.Send(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder is a Sink that keeps every event in memory.
type Recorder struct {
	mu        sync.Mutex
	connected bool
	events    []Event
}

// NewRecorder creates a Recorder in the given connection state.
func NewRecorder(connected bool) *Recorder {
	return &Recorder{connected: connected}
}

func (r *Recorder) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

// SetConnected changes the reported connection state.
func (r *Recorder) SetConnected(connected bool) {
	r.mu.Lock()
	r.connected = connected
	r.mu.Unlock()
}

func (r *Recorder) Send(ev Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Clear drops recorded events.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
