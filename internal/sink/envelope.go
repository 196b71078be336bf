// Package sink delivers stabilizer events to remote consumers: browsers on
// the local websocket hub, an upstream socket server and an MQTT broker.
package sink

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/stabilizer"
)

// ErrNotConnected is returned by Send when nobody is listening.
var ErrNotConnected = errors.New("sink not connected")

// Envelope is the wire form of an event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Encode wraps ev in an Envelope and marshals it.
func Encode(ev stabilizer.Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", ev.EventName(), err)
	}
	return json.Marshal(Envelope{Event: ev.EventName(), Data: data})
}

// Decode parses an envelope back into a typed event.
func Decode(raw []byte) (stabilizer.Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}

	switch env.Event {
	case stabilizer.EventGesture:
		var ev stabilizer.GestureEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("parse gesture event: %w", err)
		}
		if ev.Gesture == "" {
			return nil, fmt.Errorf("gesture event without gesture")
		}
		return ev, nil
	case stabilizer.EventCursor:
		var ev stabilizer.CursorEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("parse cursor event: %w", err)
		}
		if (ev.X == nil) != (ev.Y == nil) {
			return nil, fmt.Errorf("cursor event needs both x and y or neither")
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
}
