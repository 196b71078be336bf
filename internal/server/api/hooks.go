package api

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hook"
)

// HookDirectory lists installed hooks and rescans them.
type HookDirectory interface {
	List() []*hook.Hook
	Discover() error
}

// HooksHandler serves GET /api/hooks and POST /api/hooks/reload.
type HooksHandler struct {
	hooks HookDirectory
	log   *logrus.Entry
}

// NewHooksHandler creates a handler backed by d.
func NewHooksHandler(d HookDirectory, log *logrus.Entry) *HooksHandler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &HooksHandler{hooks: d, log: log}
}

type hookResponse struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Gestures    []gesture.Gesture `json:"gestures"`
	CooldownMs  int64             `json:"cooldown_ms"`
}

type listHooksResponse struct {
	Hooks []hookResponse `json:"hooks"`
}

func (h *HooksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/hooks")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.list(w)
	case path == "reload" && r.Method == http.MethodPost:
		if err := h.hooks.Discover(); err != nil {
			h.log.WithError(err).Error("Failed to rescan hooks")
			writeError(w, http.StatusInternalServerError, "Failed to rescan hooks")
			return
		}
		h.list(w)
	case path == "" || path == "reload":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func (h *HooksHandler) list(w http.ResponseWriter) {
	resp := listHooksResponse{Hooks: []hookResponse{}}
	for _, hk := range h.hooks.List() {
		gestures := hk.Manifest.Gestures
		if gestures == nil {
			gestures = []gesture.Gesture{}
		}
		resp.Hooks = append(resp.Hooks, hookResponse{
			Name:        hk.Manifest.Name,
			Description: hk.Manifest.Description,
			Gestures:    gestures,
			CooldownMs:  hk.Manifest.Cooldown().Milliseconds(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
