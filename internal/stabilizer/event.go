package stabilizer

import "github.com/ayusman/mudra/internal/gesture"

// Event names used on the wire.
const (
	EventGesture = "gesture"
	EventCursor  = "cursor"
)

// Event is something the session hands to a Sink.
type Event interface {
	EventName() string
}

// GestureEvent announces a stable gesture.
type GestureEvent struct {
	Gesture gesture.Gesture `json:"gesture"`
}

func (GestureEvent) EventName() string { return EventGesture }

// CursorEvent carries the pointer position in normalized image space. Both
// coordinates are nil when the cursor should be cleared.
type CursorEvent struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (CursorEvent) EventName() string { return EventCursor }

// NewCursor returns a CursorEvent at (x, y).
func NewCursor(x, y float64) CursorEvent {
	return CursorEvent{X: &x, Y: &y}
}

// ClearCursor returns the event telling clients no hand is visible.
func ClearCursor() CursorEvent {
	return CursorEvent{}
}

// Cleared reports whether c is a clear event.
func (c CursorEvent) Cleared() bool {
	return c.X == nil || c.Y == nil
}
