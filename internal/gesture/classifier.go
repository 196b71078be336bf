package gesture

import "github.com/ayusman/mudra/internal/detector"

// Classifier maps a hand to a gesture. It holds no per-frame state and is
// safe for concurrent use; the With* methods return modified copies.
type Classifier struct {
	thresholds Thresholds
	rules      []Rule
}

// New creates a Classifier that evaluates rules in order.
func New(th Thresholds, rules []Rule) *Classifier {
	return &Classifier{
		thresholds: th,
		rules:      append([]Rule(nil), rules...),
	}
}

// NewDefault creates a Classifier running DefaultRules.
func NewDefault(th Thresholds) *Classifier {
	return New(th, DefaultRules(th))
}

// Classify returns the gesture of the first matching rule, or Unknown.
func (c *Classifier) Classify(h *detector.HandLandmarks) Gesture {
	if h == nil {
		return Unknown
	}
	m := Measure(h, c.thresholds)
	for _, r := range c.rules {
		if r.Match(&m) {
			return r.Gesture
		}
	}
	return Unknown
}

// Matches returns every gesture whose rule matches h, in priority order.
// Classify always returns the first element (or Unknown when empty).
func (c *Classifier) Matches(h *detector.HandLandmarks) []Gesture {
	if h == nil {
		return nil
	}
	m := Measure(h, c.thresholds)
	var out []Gesture
	for _, r := range c.rules {
		if r.Match(&m) {
			out = append(out, r.Gesture)
		}
	}
	return out
}

// Thresholds returns the thresholds measurements are taken with.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Rules returns a copy of the cascade.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Gestures lists the labels the cascade can produce, in priority order,
// followed by Unknown.
func (c *Classifier) Gestures() []Gesture {
	seen := make(map[Gesture]bool, len(c.rules))
	out := make([]Gesture, 0, len(c.rules)+1)
	for _, r := range c.rules {
		if !seen[r.Gesture] {
			seen[r.Gesture] = true
			out = append(out, r.Gesture)
		}
	}
	return append(out, Unknown)
}

// WithRules returns a copy of c with rules appended at the lowest priority.
func (c *Classifier) WithRules(rules ...Rule) *Classifier {
	next := New(c.thresholds, c.rules)
	next.rules = append(next.rules, rules...)
	return next
}

// InsertBefore returns a copy of c with rules placed ahead of the first rule
// producing target. If target is absent they are appended.
func (c *Classifier) InsertBefore(target Gesture, rules ...Rule) *Classifier {
	for i, r := range c.rules {
		if r.Gesture != target {
			continue
		}
		out := make([]Rule, 0, len(c.rules)+len(rules))
		out = append(out, c.rules[:i]...)
		out = append(out, rules...)
		out = append(out, c.rules[i:]...)
		return New(c.thresholds, out)
	}
	return c.WithRules(rules...)
}
