package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// Distance is the Euclidean distance between two landmarks in the image
// plane. Depth is ignored.
func Distance(a, b detector.Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// FingerOpen reports whether the fingertip is above its PIP joint.
// Image Y grows downward, so "above" means a smaller Y.
func FingerOpen(h *detector.HandLandmarks, tip, pip int) bool {
	return h.Points[tip].Y < h.Points[pip].Y
}

// Measurements are the derived quantities every rule reads. They are
// computed once per hand.
type Measurements struct {
	Hand *detector.HandLandmarks

	IndexOpen  bool
	MiddleOpen bool
	RingOpen   bool
	PinkyOpen  bool

	// ThumbExtended is true when the thumb is splayed away from both its own
	// MCP joint and the wrist, as opposed to tucked across the palm.
	ThumbExtended bool

	ThumbIndex float64 // thumb tip to index tip
	ThumbWrist float64 // thumb tip to wrist
	// ThumbRise is how far the thumb tip sits above the wrist. Negative when
	// the thumb points down.
	ThumbRise float64
}

// Measure computes the Measurements of h.
func Measure(h *detector.HandLandmarks, th Thresholds) Measurements {
	p := &h.Points
	thumbWrist := Distance(p[detector.ThumbTip], p[detector.Wrist])

	return Measurements{
		Hand:       h,
		IndexOpen:  FingerOpen(h, detector.IndexTip, detector.IndexPIP),
		MiddleOpen: FingerOpen(h, detector.MiddleTip, detector.MiddlePIP),
		RingOpen:   FingerOpen(h, detector.RingTip, detector.RingPIP),
		PinkyOpen:  FingerOpen(h, detector.PinkyTip, detector.PinkyPIP),
		ThumbExtended: Distance(p[detector.ThumbTip], p[detector.ThumbMCP]) > th.ThumbMCPExtension &&
			thumbWrist > th.ThumbWristExtension,
		ThumbIndex: Distance(p[detector.ThumbTip], p[detector.IndexTip]),
		ThumbWrist: thumbWrist,
		ThumbRise:  p[detector.Wrist].Y - p[detector.ThumbTip].Y,
	}
}

// FingersClosed reports whether all four fingers are curled.
func (m *Measurements) FingersClosed() bool {
	return !m.IndexOpen && !m.MiddleOpen && !m.RingOpen && !m.PinkyOpen
}

// FingersOpen reports whether all four fingers are extended.
func (m *Measurements) FingersOpen() bool {
	return m.IndexOpen && m.MiddleOpen && m.RingOpen && m.PinkyOpen
}

// OthersOpen reports whether middle, ring and pinky are all extended.
func (m *Measurements) OthersOpen() bool {
	return m.MiddleOpen && m.RingOpen && m.PinkyOpen
}

// OthersClosed reports whether middle, ring and pinky are all curled.
func (m *Measurements) OthersClosed() bool {
	return !m.MiddleOpen && !m.RingOpen && !m.PinkyOpen
}
