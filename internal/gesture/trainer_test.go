package gesture

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func sampleJSON(t *testing.T, h detector.HandLandmarks) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(Sample{Landmarks: h.Points[:], Handedness: h.Handedness})
	if err != nil {
		t.Fatalf("marshal sample: %v", err)
	}
	return raw
}

func TestTrainer_Train(t *testing.T) {
	trainer := NewTrainer()

	// The same pose shifted across the frame normalizes to the same shape.
	a := detector.IndexPointLandmarks()
	b := detector.IndexPointLandmarks()
	for i := range b.Points {
		b.Points[i].X -= 0.2
		b.Points[i].Y -= 0.1
	}

	result, err := trainer.Train([]json.RawMessage{sampleJSON(t, a), sampleJSON(t, b)})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if len(result) != detector.NumLandmarks {
		t.Fatalf("expected %d landmarks, got %d", detector.NumLandmarks, len(result))
	}

	want := a.Normalize()
	for i, p := range result {
		if !floatEqual(p.X, want.Points[i].X) || !floatEqual(p.Y, want.Points[i].Y) {
			t.Errorf("landmark %d: got (%f, %f), want (%f, %f)", i, p.X, p.Y, want.Points[i].X, want.Points[i].Y)
		}
	}

	if !floatEqual(result[detector.Wrist].X, 0) || !floatEqual(result[detector.Wrist].Y, 0) {
		t.Errorf("expected wrist at origin, got %+v", result[detector.Wrist])
	}
}

func TestTrainer_Train_AveragesDifferentPoses(t *testing.T) {
	trainer := NewTrainer()

	fist := detector.FistLandmarks()
	point := detector.IndexPointLandmarks()

	result, err := trainer.Train([]json.RawMessage{sampleJSON(t, fist), sampleJSON(t, point)})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	nf, np := fist.Normalize(), point.Normalize()
	want := (nf.Points[detector.IndexTip].Y + np.Points[detector.IndexTip].Y) / 2
	if !floatEqual(result[detector.IndexTip].Y, want) {
		t.Errorf("index tip Y = %f, want %f", result[detector.IndexTip].Y, want)
	}
}

func TestTrainer_Train_EmptySamples(t *testing.T) {
	trainer := NewTrainer()

	_, err := trainer.Train([]json.RawMessage{})
	if err == nil {
		t.Error("expected error for empty samples")
	}
}

func TestTrainer_Train_InvalidJSON(t *testing.T) {
	trainer := NewTrainer()

	_, err := trainer.Train([]json.RawMessage{json.RawMessage(`{invalid json}`)})
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestTrainer_Train_WrongLandmarkCount(t *testing.T) {
	trainer := NewTrainer()

	samples := []json.RawMessage{
		json.RawMessage(`{"landmarks": [{"x": 0.5, "y": 0.5, "z": 0}]}`),
	}

	_, err := trainer.Train(samples)
	if !errors.Is(err, detector.ErrInvalidHand) {
		t.Errorf("expected ErrInvalidHand, got %v", err)
	}
}

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
