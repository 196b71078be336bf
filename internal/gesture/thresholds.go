package gesture

import (
	"encoding/json"
	"fmt"
)

// Thresholds holds the calibration constants of the rule cascade. All
// values are distances in normalized image units (fractions of the frame).
type Thresholds struct {
	// ThumbMCPExtension is the minimum thumb tip to thumb MCP distance for
	// the thumb to count as extended.
	ThumbMCPExtension float64 `json:"thumb_mcp_extension" yaml:"thumb_mcp_extension" mapstructure:"thumb_mcp_extension"`
	// ThumbWristExtension is the minimum thumb tip to wrist distance for the
	// thumb to count as extended; also the reach a thumbs up/down needs.
	ThumbWristExtension float64 `json:"thumb_wrist_extension" yaml:"thumb_wrist_extension" mapstructure:"thumb_wrist_extension"`
	// ThumbVerticalMargin is how far above (thumbs up) or below (thumbs down)
	// the wrist the thumb tip must be.
	ThumbVerticalMargin float64 `json:"thumb_vertical_margin" yaml:"thumb_vertical_margin" mapstructure:"thumb_vertical_margin"`
	// ClickDistance is the thumb-index gap under which an OK sign clicks.
	ClickDistance float64 `json:"click_distance" yaml:"click_distance" mapstructure:"click_distance"`
	// PinchDistance is the thumb-index gap under which a pinch is detected.
	PinchDistance float64 `json:"pinch_distance" yaml:"pinch_distance" mapstructure:"pinch_distance"`
	// ZoomDistance is the thumb-index spread above which an L shape zooms.
	ZoomDistance float64 `json:"zoom_distance" yaml:"zoom_distance" mapstructure:"zoom_distance"`
	// ThumbTuckedDistance is the thumb tip to wrist distance under which the
	// thumb is folded in, required for index_point.
	ThumbTuckedDistance float64 `json:"thumb_tucked_distance" yaml:"thumb_tucked_distance" mapstructure:"thumb_tucked_distance"`
	// OpenPalmThumbDistance is the minimum thumb tip to wrist distance for an
	// open palm to count as cursor_move.
	OpenPalmThumbDistance float64 `json:"open_palm_thumb_distance" yaml:"open_palm_thumb_distance" mapstructure:"open_palm_thumb_distance"`
	// LegacyPinchDistance is the pinch gap of the legacy vocabulary.
	LegacyPinchDistance float64 `json:"legacy_pinch_distance" yaml:"legacy_pinch_distance" mapstructure:"legacy_pinch_distance"`
	// FistDistance is the fingertip to wrist distance under which all four
	// fingers count as a fist in the legacy vocabulary.
	FistDistance float64 `json:"fist_distance" yaml:"fist_distance" mapstructure:"fist_distance"`
}

// DefaultThresholds returns the empirically tuned constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ThumbMCPExtension:     0.07,
		ThumbWristExtension:   0.12,
		ThumbVerticalMargin:   0.08,
		ClickDistance:         0.05,
		PinchDistance:         0.04,
		ZoomDistance:          0.13,
		ThumbTuckedDistance:   0.10,
		OpenPalmThumbDistance: 0.08,
		LegacyPinchDistance:   0.05,
		FistDistance:          0.10,
	}
}

// Validate checks that every threshold is usable and that the pairs the
// cascade relies on keep their order.
func (t Thresholds) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"thumb_mcp_extension", t.ThumbMCPExtension},
		{"thumb_wrist_extension", t.ThumbWristExtension},
		{"thumb_vertical_margin", t.ThumbVerticalMargin},
		{"click_distance", t.ClickDistance},
		{"pinch_distance", t.PinchDistance},
		{"zoom_distance", t.ZoomDistance},
		{"thumb_tucked_distance", t.ThumbTuckedDistance},
		{"open_palm_thumb_distance", t.OpenPalmThumbDistance},
		{"legacy_pinch_distance", t.LegacyPinchDistance},
		{"fist_distance", t.FistDistance},
	}
	for _, f := range fields {
		if f.value <= 0 || f.value > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %g", f.name, f.value)
		}
	}

	if t.PinchDistance > t.ClickDistance {
		return fmt.Errorf("pinch_distance (%g) must not exceed click_distance (%g)", t.PinchDistance, t.ClickDistance)
	}
	if t.ThumbWristExtension <= t.ThumbMCPExtension {
		return fmt.Errorf("thumb_wrist_extension (%g) must exceed thumb_mcp_extension (%g)", t.ThumbWristExtension, t.ThumbMCPExtension)
	}
	if t.ZoomDistance <= t.ClickDistance {
		return fmt.Errorf("zoom_distance (%g) must exceed click_distance (%g)", t.ZoomDistance, t.ClickDistance)
	}
	return nil
}

// Apply overlays a partial JSON document onto t and validates the result.
// Fields absent from data keep their current value.
func (t Thresholds) Apply(data []byte) (Thresholds, error) {
	next := t
	if err := json.Unmarshal(data, &next); err != nil {
		return t, fmt.Errorf("parse thresholds: %w", err)
	}
	if err := next.Validate(); err != nil {
		return t, err
	}
	return next, nil
}
