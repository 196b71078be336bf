package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// SamplesHandler records pose samples and retrains the pose template.
type SamplesHandler struct {
	store    *store.Store
	trainer  *gesture.Trainer
	reloader Reloader
	log      *logrus.Entry
}

// NewSamplesHandler creates a new SamplesHandler. reloader may be nil.
func NewSamplesHandler(s *store.Store, reloader Reloader, log *logrus.Entry) *SamplesHandler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &SamplesHandler{
		store:    s,
		trainer:  gesture.NewTrainer(),
		reloader: reloader,
		log:      log,
	}
}

// ServeHTTP implements the http.Handler interface.
// Expected paths: /api/poses/{id}/samples
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/poses/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[0] == "" || parts[1] != "samples" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	poseID := parts[0]

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, poseID)
	case http.MethodPost:
		h.create(w, r, poseID)
	case http.MethodDelete:
		h.clear(w, r, poseID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createSamplesRequest struct {
	Samples []json.RawMessage `json:"samples"`
}

type createSamplesResponse struct {
	Samples int  `json:"samples"`
	Trained bool `json:"trained"`
}

type sampleResponse struct {
	ID          int64           `json:"id"`
	PoseID      string          `json:"pose_id"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   string          `json:"created_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
}

// list handles GET /api/poses/{id}/samples
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request, poseID string) {
	if !h.poseExists(w, poseID) {
		return
	}

	samples, err := h.store.Samples().GetByPoseID(poseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	response := listSamplesResponse{Samples: make([]sampleResponse, 0, len(samples))}
	for _, s := range samples {
		response.Samples = append(response.Samples, sampleResponse{
			ID:          s.ID,
			PoseID:      s.PoseID,
			SampleIndex: s.SampleIndex,
			Data:        s.Data,
			CreatedAt:   formatTime(s.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/poses/{id}/samples. Every sample recorded so far
// is averaged into the pose template.
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request, poseID string) {
	if !h.poseExists(w, poseID) {
		return
	}

	var req createSamplesRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sample is required")
		return
	}
	for i, raw := range req.Samples {
		if _, err := gesture.ParseSample(raw); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Sample %d: %v", i, err))
			return
		}
	}

	total, err := h.store.Samples().Append(poseID, req.Samples)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save samples")
		return
	}

	if err := h.retrain(poseID, total); err != nil {
		h.log.WithError(err).WithField("pose", poseID).Error("Failed to train pose")
		writeError(w, http.StatusInternalServerError, "Failed to train pose")
		return
	}

	writeJSON(w, http.StatusCreated, createSamplesResponse{Samples: total, Trained: true})
}

// clear handles DELETE /api/poses/{id}/samples and forgets the template.
func (h *SamplesHandler) clear(w http.ResponseWriter, r *http.Request, poseID string) {
	if !h.poseExists(w, poseID) {
		return
	}
	if err := h.store.Samples().DeleteByPoseID(poseID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}
	if err := h.store.Poses().SetTemplate(poseID, nil, 0); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset pose")
		return
	}
	h.reload()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SamplesHandler) retrain(poseID string, total int) error {
	samples, err := h.store.Samples().GetByPoseID(poseID)
	if err != nil {
		return err
	}
	raw := make([]json.RawMessage, len(samples))
	for i, s := range samples {
		raw[i] = s.Data
	}

	template, err := h.trainer.Train(raw)
	if err != nil {
		return err
	}
	if err := h.store.Poses().SetTemplate(poseID, template, total); err != nil {
		return err
	}

	h.log.WithFields(logrus.Fields{"pose": poseID, "samples": total}).Info("Pose trained")
	h.reload()
	return nil
}

func (h *SamplesHandler) poseExists(w http.ResponseWriter, poseID string) bool {
	_, err := h.store.Poses().GetByID(poseID)
	if err == nil {
		return true
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Pose not found")
		return false
	}
	writeError(w, http.StatusInternalServerError, "Failed to verify pose")
	return false
}

func (h *SamplesHandler) reload() {
	if h.reloader == nil {
		return
	}
	if err := h.reloader.ReloadPoses(); err != nil {
		h.log.WithError(err).Warn("Failed to reload poses")
	}
}
