package gesture

import (
	"fmt"
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

// DefaultTolerance is the template distance accepted when a custom pose
// does not set its own.
const DefaultTolerance = 0.15

// Template is a user-recorded pose. Landmarks are stored in the wrist-origin,
// hand-size-scaled space produced by HandLandmarks.Normalize, so a template
// matches regardless of where the hand sits in the frame.
type Template struct {
	Name      Gesture
	Landmarks []detector.Point3D
	Tolerance float64
}

// Validate checks that the template can be matched.
func (t Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if t.Name.IsBuiltin() {
		return fmt.Errorf("template name %q collides with a built-in gesture", t.Name)
	}
	if len(t.Landmarks) != detector.NumLandmarks {
		return fmt.Errorf("%w: template %q has %d landmarks", detector.ErrInvalidHand, t.Name, len(t.Landmarks))
	}
	if t.Tolerance <= 0 {
		return fmt.Errorf("template %q tolerance must be positive", t.Name)
	}
	return nil
}

// Distance sums the per-landmark Euclidean distances between the normalized
// hand and the template.
func (t Template) Distance(h *detector.HandLandmarks) float64 {
	normalized := h.Normalize()
	if normalized == nil || len(t.Landmarks) == 0 {
		return math.Inf(1)
	}
	return euclideanDistance(normalized.Points[:], t.Landmarks)
}

// Rule turns the template into a cascade entry.
func (t Template) Rule() Rule {
	return Rule{
		Gesture: t.Name,
		Match: func(m *Measurements) bool {
			return t.Distance(m.Hand) <= t.Tolerance
		},
	}
}

// WithTemplates returns a copy of c where templates are tried after every
// built-in pose but before falling back to Unknown.
func (c *Classifier) WithTemplates(templates []Template) (*Classifier, error) {
	rules := make([]Rule, 0, len(templates))
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		rules = append(rules, t.Rule())
	}
	return c.WithRules(rules...), nil
}

// euclideanDistance calculates the total Euclidean distance between two sets of 3D points.
func euclideanDistance(a, b []detector.Point3D) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	n := min(len(a), len(b))

	var total float64
	for i := 0; i < n; i++ {
		dx := a[i].X - b[i].X
		dy := a[i].Y - b[i].Y
		dz := a[i].Z - b[i].Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}

	return total
}
