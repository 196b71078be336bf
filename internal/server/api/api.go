// Package api provides the HTTP API handlers for custom poses and runtime
// calibration.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// maxBodySize bounds request bodies; a sample batch of a few hundred hands
// fits comfortably.
const maxBodySize = 4 << 20

// Reloader rebuilds the live classifier after poses change.
type Reloader interface {
	ReloadPoses() error
}

// Calibrator exposes the live gesture thresholds.
type Calibrator interface {
	Thresholds() gesture.Thresholds
	UpdateThresholds(partial []byte) (gesture.Thresholds, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
