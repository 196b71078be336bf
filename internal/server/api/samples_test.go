package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

func sampleOf(h detector.HandLandmarks) json.RawMessage {
	data, _ := json.Marshal(gesture.Sample{Landmarks: h.Points[:], Handedness: h.Handedness})
	return data
}

func TestSamplesHandler_CreateTrainsPose(t *testing.T) {
	s := newTestStore(t)
	reloader := &countingReloader{}
	handler := NewSamplesHandler(s, reloader, nil)
	s.Poses().Create(&store.Pose{ID: "pose-1", Name: "grab", Tolerance: 0.15})

	fist := detector.FistLandmarks()
	body := createSamplesRequest{Samples: []json.RawMessage{sampleOf(fist), sampleOf(fist)}}

	rec := doRequest(handler, http.MethodPost, "/api/poses/pose-1/samples", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var response createSamplesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Samples != 2 || !response.Trained {
		t.Errorf("unexpected response %+v", response)
	}

	p, err := s.Poses().GetByID("pose-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !p.Trained() || p.Samples != 2 {
		t.Fatalf("pose not trained: samples=%d landmarks=%d", p.Samples, len(p.Landmarks))
	}

	tmpl := gesture.Template{Name: "grab", Landmarks: p.Landmarks, Tolerance: p.Tolerance}
	if d := tmpl.Distance(&fist); d > 1e-9 {
		t.Errorf("template should match the recorded pose, distance %f", d)
	}
	if reloader.calls != 1 {
		t.Errorf("expected 1 reload, got %d", reloader.calls)
	}

	// A second batch continues the count.
	rec = doRequest(handler, http.MethodPost, "/api/poses/pose-1/samples", createSamplesRequest{Samples: []json.RawMessage{sampleOf(fist)}})
	json.NewDecoder(rec.Body).Decode(&response)
	if response.Samples != 3 {
		t.Errorf("expected 3 samples, got %d", response.Samples)
	}
}

func TestSamplesHandler_Create_Rejected(t *testing.T) {
	s := newTestStore(t)
	handler := NewSamplesHandler(s, nil, nil)
	s.Poses().Create(&store.Pose{ID: "pose-1", Name: "grab", Tolerance: 0.15})

	short, _ := json.Marshal(gesture.Sample{Landmarks: make([]detector.Point3D, 5)})

	tests := []struct {
		name     string
		target   string
		body     interface{}
		wantCode int
	}{
		{"unknown pose", "/api/poses/missing/samples", createSamplesRequest{Samples: []json.RawMessage{sampleOf(detector.FistLandmarks())}}, http.StatusNotFound},
		{"invalid json", "/api/poses/pose-1/samples", "nope", http.StatusBadRequest},
		{"no samples", "/api/poses/pose-1/samples", createSamplesRequest{}, http.StatusBadRequest},
		{"short sample", "/api/poses/pose-1/samples", createSamplesRequest{Samples: []json.RawMessage{short}}, http.StatusBadRequest},
		{"bad path", "/api/poses/pose-1/other", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(handler, http.MethodPost, tt.target, tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}

	samples, _ := s.Samples().GetByPoseID("pose-1")
	if len(samples) != 0 {
		t.Errorf("rejected requests must not store samples, got %d", len(samples))
	}
}

func TestSamplesHandler_ListAndClear(t *testing.T) {
	s := newTestStore(t)
	handler := NewSamplesHandler(s, nil, nil)
	s.Poses().Create(&store.Pose{ID: "pose-1", Name: "grab", Tolerance: 0.15})

	fist := detector.FistLandmarks()
	doRequest(handler, http.MethodPost, "/api/poses/pose-1/samples", createSamplesRequest{Samples: []json.RawMessage{sampleOf(fist)}})

	rec := doRequest(handler, http.MethodGet, "/api/poses/pose-1/samples", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var list listSamplesResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list.Samples) != 1 || list.Samples[0].PoseID != "pose-1" {
		t.Fatalf("unexpected samples %+v", list.Samples)
	}

	rec = doRequest(handler, http.MethodDelete, "/api/poses/pose-1/samples", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	p, _ := s.Poses().GetByID("pose-1")
	if p.Trained() || p.Samples != 0 {
		t.Errorf("pose should be reset, got samples=%d", p.Samples)
	}
}
