package gesture

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b detector.Point3D
		want float64
	}{
		{"same point", detector.Point3D{X: 0.3, Y: 0.3}, detector.Point3D{X: 0.3, Y: 0.3}, 0},
		{"3-4-5", detector.Point3D{X: 0, Y: 0}, detector.Point3D{X: 0.3, Y: 0.4}, 0.5},
		{"depth ignored", detector.Point3D{X: 0.1, Y: 0.1, Z: -5}, detector.Point3D{X: 0.1, Y: 0.1, Z: 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Distance() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		a := detector.Point3D{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
		b := detector.Point3D{X: rng.Float64(), Y: rng.Float64(), Z: rng.Float64()}
		if Distance(a, b) != Distance(b, a) {
			t.Fatalf("Distance(%v, %v) != Distance(%v, %v)", a, b, b, a)
		}
	}

	// Every landmark pair of a real pose.
	h := detector.ZoomLandmarks()
	for i := range h.Points {
		for j := range h.Points {
			if Distance(h.Points[i], h.Points[j]) != Distance(h.Points[j], h.Points[i]) {
				t.Fatalf("asymmetric distance between landmarks %d and %d", i, j)
			}
		}
	}
}

func TestMeasure(t *testing.T) {
	th := DefaultThresholds()

	t.Run("open palm", func(t *testing.T) {
		h := detector.OpenPalmLandmarks()
		m := Measure(&h, th)

		if !m.FingersOpen() {
			t.Errorf("expected all fingers open: %+v", m)
		}
		if m.FingersClosed() || m.OthersClosed() {
			t.Error("open palm reported closed fingers")
		}
		if !m.ThumbExtended {
			t.Error("expected thumb splayed sideways to count as extended")
		}
	})

	t.Run("fist", func(t *testing.T) {
		h := detector.FistLandmarks()
		m := Measure(&h, th)

		if !m.FingersClosed() {
			t.Errorf("expected all fingers closed: %+v", m)
		}
		if m.ThumbExtended {
			t.Error("tucked thumb reported as extended")
		}
		if m.ThumbWrist >= th.ThumbTuckedDistance {
			t.Errorf("expected tucked thumb within %f of wrist, got %f", th.ThumbTuckedDistance, m.ThumbWrist)
		}
	})

	t.Run("thumb rise sign", func(t *testing.T) {
		up := detector.ThumbsUpLandmarks()
		down := detector.ThumbsDownLandmarks()

		if m := Measure(&up, th); m.ThumbRise <= 0 {
			t.Errorf("thumbs up should rise above the wrist, got %f", m.ThumbRise)
		}
		if m := Measure(&down, th); m.ThumbRise >= 0 {
			t.Errorf("thumbs down should fall below the wrist, got %f", m.ThumbRise)
		}
	})

	t.Run("thumb extension needs both distances", func(t *testing.T) {
		// Thumb tip far from its MCP but still close to the wrist.
		h := detector.FistLandmarks()
		h.Points[detector.ThumbMCP] = detector.Point3D{X: 0.45, Y: 0.80}
		h.Points[detector.ThumbTip] = detector.Point3D{X: 0.55, Y: 0.78}

		m := Measure(&h, th)
		if Distance(h.Points[detector.ThumbTip], h.Points[detector.ThumbMCP]) <= th.ThumbMCPExtension {
			t.Fatal("fixture broken: thumb tip should be far from its MCP")
		}
		if m.ThumbExtended {
			t.Error("thumb close to the wrist must not count as extended")
		}
	})
}

func TestFingerOpen(t *testing.T) {
	h := detector.VictoryLandmarks()

	if !FingerOpen(&h, detector.IndexTip, detector.IndexPIP) {
		t.Error("index should be open")
	}
	if !FingerOpen(&h, detector.MiddleTip, detector.MiddlePIP) {
		t.Error("middle should be open")
	}
	if FingerOpen(&h, detector.RingTip, detector.RingPIP) {
		t.Error("ring should be closed")
	}
	if FingerOpen(&h, detector.PinkyTip, detector.PinkyPIP) {
		t.Error("pinky should be closed")
	}
}
