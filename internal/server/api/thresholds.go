package api

import (
	"io"
	"net/http"
)

// ThresholdsHandler serves GET and PUT /api/thresholds.
type ThresholdsHandler struct {
	calibrator Calibrator
}

// NewThresholdsHandler creates a handler backed by c.
func NewThresholdsHandler(c Calibrator) *ThresholdsHandler {
	return &ThresholdsHandler{calibrator: c}
}

// ServeHTTP implements the http.Handler interface. PUT accepts a partial
// object; fields left out keep their current value.
func (h *ThresholdsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.calibrator.Thresholds())
	case http.MethodPut:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read body")
			return
		}
		next, err := h.calibrator.UpdateThresholds(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, next)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
