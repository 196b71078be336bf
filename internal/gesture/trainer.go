package gesture

import (
	"encoding/json"
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

// Trainer averages recorded samples of a custom pose into a template.
type Trainer struct{}

// NewTrainer creates a new Trainer instance.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// Sample is one recorded hand pose as posted by the capture UI.
type Sample struct {
	Landmarks  []detector.Point3D `json:"landmarks"`
	Handedness string             `json:"handedness,omitempty"`
	Timestamp  int64              `json:"timestamp,omitempty"`
}

// ParseSample decodes and validates a raw sample.
func ParseSample(raw json.RawMessage) (detector.HandLandmarks, error) {
	var s Sample
	if err := json.Unmarshal(raw, &s); err != nil {
		return detector.HandLandmarks{}, fmt.Errorf("parse sample: %w", err)
	}
	return detector.NewHand(s.Landmarks, s.Handedness, 1)
}

// Train normalizes every sample and averages them landmark by landmark.
// The result is ready to be used as Template.Landmarks.
func (t *Trainer) Train(samples []json.RawMessage) ([]detector.Point3D, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	hands := make([]*detector.HandLandmarks, 0, len(samples))
	for i, raw := range samples {
		hand, err := ParseSample(raw)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		hands = append(hands, hand.Normalize())
	}

	averaged := make([]detector.Point3D, detector.NumLandmarks)
	n := float64(len(hands))

	for i := 0; i < detector.NumLandmarks; i++ {
		var sumX, sumY, sumZ float64
		for _, h := range hands {
			sumX += h.Points[i].X
			sumY += h.Points[i].Y
			sumZ += h.Points[i].Z
		}
		averaged[i] = detector.Point3D{
			X: sumX / n,
			Y: sumY / n,
			Z: sumZ / n,
		}
	}

	return averaged, nil
}
