package detector

// Preset poses shared by tests across packages. Coordinates are normalized
// image space with the wrist near the bottom of the frame (Y grows downward).

// ThumbsUpLandmarks returns a preset HandLandmarks representing a thumbs up gesture.
// The thumb is extended upward while other fingers are curled.
func ThumbsUpLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended upward (pointing up, Y decreases going up)
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.58, Y: 0.65, Z: 0.0}
	landmarks.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.50, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	landmarks.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	landmarks.Points[IndexDIP] = Point3D{X: 0.52, Y: 0.70, Z: -0.04}
	landmarks.Points[IndexTip] = Point3D{X: 0.50, Y: 0.72, Z: -0.02}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.47, Y: 0.68, Z: -0.04}
	landmarks.Points[MiddleTip] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	landmarks.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.70, Z: -0.04}
	landmarks.Points[RingTip] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.37, Y: 0.72, Z: -0.04}
	landmarks.Points[PinkyTip] = Point3D{X: 0.35, Y: 0.74, Z: -0.02}

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	h := baseHand()
	extendThumbSideways(&h)
	extendIndex(&h)
	extendMiddle(&h)
	extendRing(&h)
	extendPinky(&h)
	return h
}

// FistLandmarks returns a closed fist with the thumb folded over the fingers.
func FistLandmarks() HandLandmarks {
	return baseHand()
}

// IndexPointLandmarks returns a hand with only the index finger raised and
// the thumb tucked against the palm.
func IndexPointLandmarks() HandLandmarks {
	h := baseHand()
	extendIndex(&h)
	return h
}

// PinchLandmarks returns a hand whose thumb and index tips touch while the
// other three fingers are curled.
func PinchLandmarks() HandLandmarks {
	h := baseHand()
	pinchThumbIndex(&h)
	return h
}

// ClickLandmarks returns the "OK" sign: thumb and index tips touching with
// the middle, ring and pinky fingers extended.
func ClickLandmarks() HandLandmarks {
	h := baseHand()
	pinchThumbIndex(&h)
	extendMiddle(&h)
	extendRing(&h)
	extendPinky(&h)
	return h
}

// ZoomLandmarks returns an "L" shape: thumb out to the side, index up.
func ZoomLandmarks() HandLandmarks {
	h := baseHand()
	extendThumbSideways(&h)
	extendIndex(&h)
	return h
}

// VictoryLandmarks returns index and middle raised with the thumb tucked.
// The index tip sits to the right of the wrist.
func VictoryLandmarks() HandLandmarks {
	h := baseHand()
	extendIndex(&h)
	extendMiddle(&h)
	return h
}

// ThumbsDownLandmarks returns a fist held upside down with the thumb
// pointing toward the bottom of the frame.
func ThumbsDownLandmarks() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.30}

	h.Points[ThumbCMC] = Point3D{X: 0.53, Y: 0.35}
	h.Points[ThumbMCP] = Point3D{X: 0.55, Y: 0.42}
	h.Points[ThumbIP] = Point3D{X: 0.56, Y: 0.55}
	h.Points[ThumbTip] = Point3D{X: 0.56, Y: 0.68}

	h.Points[IndexMCP] = Point3D{X: 0.52, Y: 0.40}
	h.Points[IndexPIP] = Point3D{X: 0.50, Y: 0.44}
	h.Points[IndexDIP] = Point3D{X: 0.48, Y: 0.46}
	h.Points[IndexTip] = Point3D{X: 0.49, Y: 0.47}

	h.Points[MiddleMCP] = Point3D{X: 0.48, Y: 0.38}
	h.Points[MiddlePIP] = Point3D{X: 0.46, Y: 0.42}
	h.Points[MiddleDIP] = Point3D{X: 0.45, Y: 0.44}
	h.Points[MiddleTip] = Point3D{X: 0.46, Y: 0.45}

	h.Points[RingMCP] = Point3D{X: 0.45, Y: 0.37}
	h.Points[RingPIP] = Point3D{X: 0.43, Y: 0.40}
	h.Points[RingDIP] = Point3D{X: 0.42, Y: 0.42}
	h.Points[RingTip] = Point3D{X: 0.43, Y: 0.43}

	h.Points[PinkyMCP] = Point3D{X: 0.42, Y: 0.35}
	h.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.38}
	h.Points[PinkyDIP] = Point3D{X: 0.40, Y: 0.40}
	h.Points[PinkyTip] = Point3D{X: 0.41, Y: 0.41}

	return h
}

// baseHand is a right-hand fist: every finger curled with its tip close to
// the wrist, thumb folded in.
func baseHand() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.77}
	h.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.74}
	h.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.74}
	h.Points[ThumbTip] = Point3D{X: 0.58, Y: 0.76}

	h.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: -0.02}
	h.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.68, Z: -0.05}
	h.Points[IndexDIP] = Point3D{X: 0.53, Y: 0.71, Z: -0.04}
	h.Points[IndexTip] = Point3D{X: 0.52, Y: 0.74, Z: -0.02}

	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.68, Z: -0.02}
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	h.Points[MiddleDIP] = Point3D{X: 0.48, Y: 0.70, Z: -0.04}
	h.Points[MiddleTip] = Point3D{X: 0.48, Y: 0.73, Z: -0.02}

	h.Points[RingMCP] = Point3D{X: 0.45, Y: 0.70, Z: -0.02}
	h.Points[RingPIP] = Point3D{X: 0.45, Y: 0.68, Z: -0.05}
	h.Points[RingDIP] = Point3D{X: 0.44, Y: 0.71, Z: -0.04}
	h.Points[RingTip] = Point3D{X: 0.44, Y: 0.75, Z: -0.02}

	h.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.72, Z: -0.02}
	h.Points[PinkyPIP] = Point3D{X: 0.40, Y: 0.70, Z: -0.05}
	h.Points[PinkyDIP] = Point3D{X: 0.41, Y: 0.73, Z: -0.04}
	h.Points[PinkyTip] = Point3D{X: 0.42, Y: 0.77, Z: -0.02}

	return h
}

func extendThumbSideways(h *HandLandmarks) {
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.77}
	h.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.72}
	h.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.68}
	h.Points[ThumbTip] = Point3D{X: 0.74, Y: 0.64}
}

// pinchThumbIndex bends the index toward a raised thumb so the two tips meet.
func pinchThumbIndex(h *HandLandmarks) {
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.77}
	h.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.72}
	h.Points[ThumbIP] = Point3D{X: 0.63, Y: 0.65}
	h.Points[ThumbTip] = Point3D{X: 0.63, Y: 0.59}

	h.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	h.Points[IndexPIP] = Point3D{X: 0.58, Y: 0.60}
	h.Points[IndexDIP] = Point3D{X: 0.60, Y: 0.56}
	h.Points[IndexTip] = Point3D{X: 0.61, Y: 0.57}
}

func extendIndex(h *HandLandmarks) {
	h.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	h.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	h.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	h.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}
}

func extendMiddle(h *HandLandmarks) {
	h.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	h.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	h.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	h.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}
}

func extendRing(h *HandLandmarks) {
	h.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	h.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55}
	h.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45}
	h.Points[RingTip] = Point3D{X: 0.42, Y: 0.35}
}

func extendPinky(h *HandLandmarks) {
	h.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70}
	h.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60}
	h.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50}
	h.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42}
}
