package gesture

import (
	"errors"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func fistTemplate(tolerance float64) Template {
	fist := detector.FistLandmarks()
	return Template{
		Name:      "grab",
		Landmarks: fist.Normalize().Points[:],
		Tolerance: tolerance,
	}
}

func TestTemplate_Distance(t *testing.T) {
	tmpl := fistTemplate(0.5)

	fist := detector.FistLandmarks()
	if d := tmpl.Distance(&fist); d > 1e-9 {
		t.Errorf("expected zero distance for the recorded pose, got %f", d)
	}

	// Translation does not matter after normalization.
	moved := detector.FistLandmarks()
	for i := range moved.Points {
		moved.Points[i].X += 0.1
	}
	if d := tmpl.Distance(&moved); d > 1e-9 {
		t.Errorf("expected zero distance for a translated pose, got %f", d)
	}

	palm := detector.OpenPalmLandmarks()
	if d := tmpl.Distance(&palm); d < 1 {
		t.Errorf("expected large distance for a different pose, got %f", d)
	}
}

func TestClassifier_WithTemplates(t *testing.T) {
	base := NewDefault(DefaultThresholds())

	c, err := base.WithTemplates([]Template{fistTemplate(0.5)})
	if err != nil {
		t.Fatalf("WithTemplates() error = %v", err)
	}

	fist := detector.FistLandmarks()
	if got := c.Classify(&fist); got != "grab" {
		t.Errorf("Classify(fist) = %s, want grab", got)
	}
	if got := base.Classify(&fist); got != Unknown {
		t.Errorf("base classifier changed: Classify(fist) = %s", got)
	}

	// Built-in poses keep priority over templates.
	point := detector.IndexPointLandmarks()
	if got := c.Classify(&point); got != IndexPoint {
		t.Errorf("Classify(point) = %s, want %s", got, IndexPoint)
	}
}

func TestTemplate_Validate(t *testing.T) {
	tests := []struct {
		name string
		tmpl Template
	}{
		{"missing name", Template{Landmarks: make([]detector.Point3D, 21), Tolerance: 0.1}},
		{"builtin name", Template{Name: Pinch, Landmarks: make([]detector.Point3D, 21), Tolerance: 0.1}},
		{"short landmarks", Template{Name: "grab", Landmarks: make([]detector.Point3D, 5), Tolerance: 0.1}},
		{"zero tolerance", Template{Name: "grab", Landmarks: make([]detector.Point3D, 21)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tmpl.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	_, err := NewDefault(DefaultThresholds()).WithTemplates([]Template{{Name: "grab", Tolerance: 0.1}})
	if !errors.Is(err, detector.ErrInvalidHand) {
		t.Errorf("expected ErrInvalidHand from WithTemplates, got %v", err)
	}
}

func TestEuclideanDistance(t *testing.T) {
	a := []detector.Point3D{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 1}}
	if d := euclideanDistance(a, a); d != 0 {
		t.Errorf("expected distance 0 for identical points, got %f", d)
	}

	c := []detector.Point3D{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	d := []detector.Point3D{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}}
	if dist := euclideanDistance(c, d); dist != 1.0 {
		t.Errorf("expected distance 1.0, got %f", dist)
	}

	if dist := euclideanDistance(nil, nil); dist != 0 {
		t.Errorf("expected distance 0 for empty slices, got %f", dist)
	}
}
