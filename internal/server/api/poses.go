package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// PoseHandler handles HTTP requests for custom pose resources.
type PoseHandler struct {
	store    *store.Store
	reloader Reloader
	log      *logrus.Entry
}

// NewPoseHandler creates a new PoseHandler. reloader may be nil.
func NewPoseHandler(s *store.Store, reloader Reloader, log *logrus.Entry) *PoseHandler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &PoseHandler{store: s, reloader: reloader, log: log}
}

// ServeHTTP routes /api/poses and /api/poses/{id}.
func (h *PoseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/poses")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type poseRequest struct {
	Name      string  `json:"name"`
	Tolerance float64 `json:"tolerance"`
}

type poseResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Tolerance float64 `json:"tolerance"`
	Samples   int     `json:"samples"`
	Trained   bool    `json:"trained"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type listPosesResponse struct {
	Poses []poseResponse `json:"poses"`
}

func toResponse(p *store.Pose) poseResponse {
	return poseResponse{
		ID:        p.ID,
		Name:      p.Name,
		Tolerance: p.Tolerance,
		Samples:   p.Samples,
		Trained:   p.Trained(),
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

// validateName rejects names that cannot become a gesture label.
func validateName(name string) string {
	switch {
	case name == "":
		return "Name is required"
	case gesture.Gesture(name).IsBuiltin():
		return "Name collides with a built-in gesture"
	case strings.ContainsAny(name, "/ "):
		return "Name must not contain spaces or slashes"
	}
	return ""
}

func (h *PoseHandler) list(w http.ResponseWriter, r *http.Request) {
	poses, err := h.store.Poses().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list poses")
		return
	}

	response := listPosesResponse{Poses: make([]poseResponse, 0, len(poses))}
	for _, p := range poses {
		response.Poses = append(response.Poses, toResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *PoseHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Poses().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pose not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get pose")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *PoseHandler) create(w http.ResponseWriter, r *http.Request) {
	var req poseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if msg := validateName(req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Tolerance < 0 {
		writeError(w, http.StatusBadRequest, "Tolerance must be positive")
		return
	}
	if _, err := h.store.Poses().GetByName(req.Name); err == nil {
		writeError(w, http.StatusConflict, "Pose name already exists")
		return
	}

	tolerance := req.Tolerance
	if tolerance == 0 {
		tolerance = gesture.DefaultTolerance
	}

	p := &store.Pose{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Tolerance: tolerance,
	}
	if err := h.store.Poses().Create(p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create pose")
		return
	}

	h.log.WithFields(logrus.Fields{"id": p.ID, "name": p.Name}).Info("Pose created")
	writeJSON(w, http.StatusCreated, toResponse(p))
}

func (h *PoseHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Poses().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pose not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get pose")
		return
	}

	var req poseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != "" && req.Name != p.Name {
		if msg := validateName(req.Name); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		if _, err := h.store.Poses().GetByName(req.Name); err == nil {
			writeError(w, http.StatusConflict, "Pose name already exists")
			return
		}
		p.Name = req.Name
	}
	if req.Tolerance < 0 {
		writeError(w, http.StatusBadRequest, "Tolerance must be positive")
		return
	}
	if req.Tolerance != 0 {
		p.Tolerance = req.Tolerance
	}

	if err := h.store.Poses().Update(p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update pose")
		return
	}

	h.reload()
	writeJSON(w, http.StatusOK, toResponse(p))
}

func (h *PoseHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Poses().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Pose not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete pose")
		return
	}

	h.reload()
	w.WriteHeader(http.StatusNoContent)
}

func (h *PoseHandler) reload() {
	if h.reloader == nil {
		return
	}
	if err := h.reloader.ReloadPoses(); err != nil {
		h.log.WithError(err).Warn("Failed to reload poses")
	}
}
