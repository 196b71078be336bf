package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ayusman/mudra/internal/gesture"
)

type fakeCalibrator struct {
	th gesture.Thresholds
}

func (c *fakeCalibrator) Thresholds() gesture.Thresholds {
	return c.th
}

func (c *fakeCalibrator) UpdateThresholds(partial []byte) (gesture.Thresholds, error) {
	next, err := c.th.Apply(partial)
	if err != nil {
		return c.th, err
	}
	c.th = next
	return next, nil
}

func TestThresholdsHandler_Get(t *testing.T) {
	handler := NewThresholdsHandler(&fakeCalibrator{th: gesture.DefaultThresholds()})

	rec := doRequest(handler, http.MethodGet, "/api/thresholds", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var th gesture.Thresholds
	if err := json.NewDecoder(rec.Body).Decode(&th); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if th != gesture.DefaultThresholds() {
		t.Errorf("unexpected thresholds %+v", th)
	}
}

func TestThresholdsHandler_Put(t *testing.T) {
	cal := &fakeCalibrator{th: gesture.DefaultThresholds()}
	handler := NewThresholdsHandler(cal)

	rec := doRequest(handler, http.MethodPut, "/api/thresholds", `{"zoom_distance": 0.2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if cal.th.ZoomDistance != 0.2 {
		t.Errorf("ZoomDistance = %f, want 0.2", cal.th.ZoomDistance)
	}

	rec = doRequest(handler, http.MethodPut, "/api/thresholds", `{"zoom_distance": -1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if cal.th.ZoomDistance != 0.2 {
		t.Error("rejected update must not change thresholds")
	}

	rec = doRequest(handler, http.MethodDelete, "/api/thresholds", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
