// Package stabilizer debounces per-frame gesture labels and turns them into
// events for a Sink.
package stabilizer

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Config controls debouncing and pointer output.
type Config struct {
	// StableThreshold is the number of consecutive identical labels needed
	// before a gesture event is emitted.
	StableThreshold int `json:"stable_threshold" yaml:"stable_threshold" mapstructure:"stable_threshold"`
	// PointerGesture is the label that drives the cursor.
	PointerGesture gesture.Gesture `json:"pointer_gesture" yaml:"pointer_gesture" mapstructure:"pointer_gesture"`
	// PointerLandmark is the landmark index reported as the cursor position.
	PointerLandmark int `json:"pointer_landmark" yaml:"pointer_landmark" mapstructure:"pointer_landmark"`
	// MaxSlots is how many hands are tracked at once.
	MaxSlots int `json:"max_slots" yaml:"max_slots" mapstructure:"max_slots"`
	// MaxSlotDistance is the largest centroid jump between frames for a hand
	// to keep its slot. Zero disables the limit.
	MaxSlotDistance float64 `json:"max_slot_distance" yaml:"max_slot_distance" mapstructure:"max_slot_distance"`
}

// DefaultConfig returns a single-hand session pointing with the index tip.
func DefaultConfig() Config {
	return Config{
		StableThreshold: 7,
		PointerGesture:  gesture.IndexPoint,
		PointerLandmark: detector.IndexTip,
		MaxSlots:        1,
	}
}

// Validate checks the config for values Process cannot work with.
func (c Config) Validate() error {
	if c.StableThreshold < 1 {
		return fmt.Errorf("stable_threshold must be at least 1, got %d", c.StableThreshold)
	}
	if c.PointerGesture == "" || c.PointerGesture == gesture.Unknown {
		return fmt.Errorf("pointer_gesture must name a gesture, got %q", c.PointerGesture)
	}
	if c.PointerLandmark < 0 || c.PointerLandmark >= detector.NumLandmarks {
		return fmt.Errorf("pointer_landmark must be in 0..%d, got %d", detector.NumLandmarks-1, c.PointerLandmark)
	}
	if c.MaxSlots < 1 {
		return fmt.Errorf("max_slots must be at least 1, got %d", c.MaxSlots)
	}
	if c.MaxSlotDistance < 0 {
		return fmt.Errorf("max_slot_distance must not be negative, got %g", c.MaxSlotDistance)
	}
	return nil
}

// Classifier labels a single hand.
type Classifier interface {
	Classify(h *detector.HandLandmarks) gesture.Gesture
}

// SlotReport describes one slot after a frame.
type SlotReport struct {
	Slot     int             `json:"slot"`
	Tracking bool            `json:"tracking"`
	Gesture  gesture.Gesture `json:"gesture,omitempty"`
	Count    int             `json:"count"`
	Stable   bool            `json:"stable"`
}

// FrameResult is what a single Process call did.
type FrameResult struct {
	Slots  []SlotReport
	Events []Event
}

// StableGestures returns the gestures that were stable this frame.
func (r FrameResult) StableGestures() []gesture.Gesture {
	var out []gesture.Gesture
	for _, s := range r.Slots {
		if s.Stable && s.Gesture != gesture.Unknown {
			out = append(out, s.Gesture)
		}
	}
	return out
}

// Session owns the debounce state of one detection session. It is not safe
// for concurrent use; a single frame loop drives it.
type Session struct {
	cfg        Config
	classifier Classifier
	sink       Sink
	log        *logrus.Entry
	slots      []Slot
}

// NewSession creates a Session. A nil log uses the standard logger.
func NewSession(cfg Config, classifier Classifier, sink Sink, log *logrus.Entry) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stability config: %w", err)
	}
	if classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Session{
		cfg:        cfg,
		classifier: classifier,
		sink:       sink,
		log:        log,
		slots:      make([]Slot, cfg.MaxSlots),
	}, nil
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Slots returns a copy of the slot states.
func (s *Session) Slots() []Slot {
	return append([]Slot(nil), s.slots...)
}

// Reset forgets every tracked hand.
func (s *Session) Reset() {
	for i := range s.slots {
		s.slots[i].Reset()
	}
}

// Process advances the session by one frame. Hands that break the landmark
// contract reject the whole frame and leave the state as it was.
func (s *Session) Process(hands []detector.HandLandmarks) (FrameResult, error) {
	for i := range hands {
		if err := hands[i].Validate(); err != nil {
			return FrameResult{}, fmt.Errorf("hand %d: %w", i, err)
		}
	}

	connected := s.sink.Connected()
	var res FrameResult

	if len(hands) == 0 {
		s.Reset()
		if connected {
			s.emit(&res, ClearCursor())
		}
		res.Slots = s.reports()
		return res, nil
	}

	for i, hi := range s.assign(hands) {
		slot := &s.slots[i]
		if hi < 0 {
			continue
		}
		h := &hands[hi]
		g := s.classifier.Classify(h)
		slot.Observe(g, h.Centroid())

		if !connected {
			continue
		}
		if g != gesture.Unknown && slot.Stable(s.cfg.StableThreshold) {
			s.emit(&res, GestureEvent{Gesture: g})
		}
		if g == s.cfg.PointerGesture {
			p := h.Points[s.cfg.PointerLandmark]
			s.emit(&res, NewCursor(p.X, p.Y))
		}
	}

	res.Slots = s.reports()
	return res, nil
}

// assign maps each slot to a hand index, or -1 when the slot stays empty.
// Tracked slots keep their nearest hand, closest pairs first. Unclaimed
// tracked slots are reset and the remaining hands fill free slots in
// detector order.
func (s *Session) assign(hands []detector.HandLandmarks) []int {
	centroids := make([]detector.Point3D, len(hands))
	for i := range hands {
		centroids[i] = hands[i].Centroid()
	}

	assigned := make([]int, len(s.slots))
	for i := range assigned {
		assigned[i] = -1
	}
	claimed := make([]bool, len(hands))

	for {
		slot, hand, bestDist := -1, -1, math.Inf(1)
		for i := range s.slots {
			if !s.slots[i].Tracking || assigned[i] >= 0 {
				continue
			}
			for j := range hands {
				if claimed[j] {
					continue
				}
				d := gesture.Distance(s.slots[i].Centroid, centroids[j])
				if s.cfg.MaxSlotDistance > 0 && d > s.cfg.MaxSlotDistance {
					continue
				}
				if d < bestDist {
					slot, hand, bestDist = i, j, d
				}
			}
		}
		if slot < 0 {
			break
		}
		assigned[slot] = hand
		claimed[hand] = true
	}

	next := 0
	for i := range s.slots {
		if assigned[i] >= 0 {
			continue
		}
		s.slots[i].Reset()
		for next < len(hands) && claimed[next] {
			next++
		}
		if next < len(hands) {
			assigned[i] = next
			claimed[next] = true
		}
	}

	return assigned
}

func (s *Session) emit(res *FrameResult, ev Event) {
	res.Events = append(res.Events, ev)
	if err := s.sink.Send(ev); err != nil {
		s.log.WithError(err).WithField("event", ev.EventName()).Warn("Failed to deliver event")
	}
}

func (s *Session) reports() []SlotReport {
	out := make([]SlotReport, len(s.slots))
	for i, slot := range s.slots {
		out[i] = SlotReport{
			Slot:     i,
			Tracking: slot.Tracking,
			Gesture:  slot.Gesture,
			Count:    slot.Count,
			Stable:   slot.Stable(s.cfg.StableThreshold),
		}
	}
	return out
}
