package detector

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect.
	MaxHands int `mapstructure:"max_hands" yaml:"max_hands"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `mapstructure:"min_tracking_confidence" yaml:"min_tracking_confidence"`

	// Script overrides the location of mediapipe_service.py.
	Script string `mapstructure:"script" yaml:"script"`

	// Python overrides the interpreter used to run Script.
	Python string `mapstructure:"python" yaml:"python"`
}

// DefaultConfig returns the confidence levels the gesture controller was
// tuned with.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.7,
		MinTrackingConf: 0.7,
	}
}

// Validate checks the detection limits.
func (c Config) Validate() error {
	if c.MaxHands < 1 {
		return fmt.Errorf("max_hands must be at least 1, got %d", c.MaxHands)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0, 1], got %g", c.MinConfidence)
	}
	if c.MinTrackingConf < 0 || c.MinTrackingConf > 1 {
		return fmt.Errorf("min_tracking_confidence must be in [0, 1], got %g", c.MinTrackingConf)
	}
	return nil
}
