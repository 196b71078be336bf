package stabilizer

import (
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Slot is the debounce state of one tracked hand. The zero value is an
// absent hand.
type Slot struct {
	Gesture  gesture.Gesture  `json:"gesture"`
	Count    int              `json:"count"`
	Tracking bool             `json:"tracking"`
	Centroid detector.Point3D `json:"-"`
}

// Observe records this frame's label. A repeated label extends the streak,
// anything else starts a new one.
func (s *Slot) Observe(g gesture.Gesture, centroid detector.Point3D) {
	if s.Tracking && s.Gesture == g {
		s.Count++
	} else {
		s.Gesture = g
		s.Count = 1
		s.Tracking = true
	}
	s.Centroid = centroid
}

// Reset returns the slot to absent.
func (s *Slot) Reset() {
	*s = Slot{}
}

// Stable reports whether the streak has reached threshold.
func (s *Slot) Stable(threshold int) bool {
	return s.Tracking && s.Count >= threshold
}
