package gesture

import "github.com/ayusman/mudra/internal/detector"

// Rule pairs a predicate with the gesture it produces. A classifier walks
// its rules in order and stops at the first match.
type Rule struct {
	Gesture Gesture
	Match   func(m *Measurements) bool
}

// DefaultRules returns the cascade ordered from most to least specific.
// Click and pinch share the small thumb-index gap and thumbs up shares the
// curled fingers of a fist, so the order is part of the contract.
func DefaultRules(th Thresholds) []Rule {
	twoFingers := func(m *Measurements) bool {
		return m.IndexOpen && m.MiddleOpen && !m.RingOpen && !m.PinkyOpen
	}
	indexTipX := func(m *Measurements) float64 { return m.Hand.Points[detector.IndexTip].X }
	wristX := func(m *Measurements) float64 { return m.Hand.Points[detector.Wrist].X }

	return []Rule{
		{Click, func(m *Measurements) bool {
			return m.ThumbIndex < th.ClickDistance && m.OthersOpen()
		}},
		{ThumbsUp, func(m *Measurements) bool {
			return m.ThumbExtended && m.FingersClosed() &&
				m.ThumbRise > th.ThumbVerticalMargin && m.ThumbWrist > th.ThumbWristExtension
		}},
		{ThumbsDown, func(m *Measurements) bool {
			return m.ThumbExtended && m.FingersClosed() &&
				-m.ThumbRise > th.ThumbVerticalMargin && m.ThumbWrist > th.ThumbWristExtension
		}},
		{Pinch, func(m *Measurements) bool {
			return m.ThumbIndex < th.PinchDistance && m.OthersClosed()
		}},
		{Zoom, func(m *Measurements) bool {
			return m.ThumbExtended && m.IndexOpen && m.OthersClosed() && m.ThumbIndex > th.ZoomDistance
		}},
		{IndexPoint, func(m *Measurements) bool {
			return m.IndexOpen && m.OthersClosed() && !m.ThumbExtended && m.ThumbWrist < th.ThumbTuckedDistance
		}},
		{CursorMove, func(m *Measurements) bool {
			return m.FingersOpen() && m.ThumbWrist >= th.OpenPalmThumbDistance
		}},
		{RotateLeft, func(m *Measurements) bool {
			return twoFingers(m) && indexTipX(m) < wristX(m)
		}},
		{RotateRight, func(m *Measurements) bool {
			return twoFingers(m) && indexTipX(m) >= wristX(m)
		}},
	}
}

// LegacyRules returns the four-gesture cascade of the first controller.
func LegacyRules(th Thresholds) []Rule {
	tips := []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

	return []Rule{
		{Pinch, func(m *Measurements) bool {
			return m.ThumbIndex < th.LegacyPinchDistance
		}},
		{OpenPalm, func(m *Measurements) bool {
			return m.FingersOpen()
		}},
		{Fist, func(m *Measurements) bool {
			wrist := m.Hand.Points[detector.Wrist]
			for _, tip := range tips {
				if Distance(m.Hand.Points[tip], wrist) >= th.FistDistance {
					return false
				}
			}
			return true
		}},
		{Pointing, func(m *Measurements) bool {
			return m.IndexOpen && m.OthersClosed()
		}},
	}
}
