// Package detector provides hand detection interfaces and the landmark types
// every other package consumes.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrInvalidHand is returned when a detector hands over a landmark set that
// violates the 21-point contract.
var ErrInvalidHand = errors.New("invalid hand landmarks")

// Point3D is a landmark in normalized image space: X and Y are fractions of
// the frame width and height, Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// NewHand builds a HandLandmarks from a variable-length point list, as
// decoded from JSON. Anything other than exactly NumLandmarks finite points
// is rejected with ErrInvalidHand.
func NewHand(points []Point3D, handedness string, score float64) (HandLandmarks, error) {
	h := HandLandmarks{Handedness: handedness, Score: score}
	if len(points) != NumLandmarks {
		return h, fmt.Errorf("%w: got %d points, want %d", ErrInvalidHand, len(points), NumLandmarks)
	}
	copy(h.Points[:], points)
	if err := h.Validate(); err != nil {
		return h, err
	}
	return h, nil
}

// Validate reports whether every coordinate is a finite number.
func (h *HandLandmarks) Validate() error {
	if h == nil {
		return fmt.Errorf("%w: nil hand", ErrInvalidHand)
	}
	for i, p := range h.Points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return fmt.Errorf("%w: landmark %d is not finite", ErrInvalidHand, i)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Centroid returns the mean X/Y position of all landmarks.
func (h *HandLandmarks) Centroid() Point3D {
	var c Point3D
	for _, p := range h.Points {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= NumLandmarks
	c.Y /= NumLandmarks
	return c
}

// Mirror returns a copy of the hand flipped horizontally (x -> 1-x), the
// same transform a mirrored camera preview applies.
func (h HandLandmarks) Mirror() HandLandmarks {
	m := h
	for i := range m.Points {
		m.Points[i].X = 1 - m.Points[i].X
	}
	switch h.Handedness {
	case "Left":
		m.Handedness = "Right"
	case "Right":
		m.Handedness = "Left"
	}
	return m
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Normalize normalizes the hand landmarks relative to wrist position and hand size.
// The normalized landmarks have the wrist at origin (0,0,0) and are scaled
// so that the distance from wrist to middle finger MCP is 1.0.
// Custom pose templates are stored in this space.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	normalized := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	scale := distance3D(Point3D{}, normalized.Points[MiddleMCP])
	if scale < 1e-10 {
		return normalized
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}
