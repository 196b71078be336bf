// Package hook runs local executables when a stable gesture is seen.
//
// Each hook lives in its own directory under the hooks dir with a hook.json
// manifest. The executable gets a Request as JSON on stdin and answers with
// a Response on stdout.
package hook

import (
	"slices"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// ManifestFile is the manifest name looked up in every hook directory.
const ManifestFile = "hook.json"

// DefaultCooldown applies when a manifest leaves cooldown_ms unset.
const DefaultCooldown = time.Second

// Manifest describes a hook and the gestures it reacts to.
type Manifest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
	// Gestures the hook subscribes to. Empty means every gesture.
	Gestures []gesture.Gesture `json:"gestures"`
	// CooldownMs is the minimum gap between two runs for the same gesture.
	CooldownMs int `json:"cooldown_ms"`
}

// Wants reports whether the hook subscribes to g.
func (m Manifest) Wants(g gesture.Gesture) bool {
	if g == gesture.Unknown {
		return false
	}
	return len(m.Gestures) == 0 || slices.Contains(m.Gestures, g)
}

// Cooldown returns the configured cooldown or DefaultCooldown.
func (m Manifest) Cooldown() time.Duration {
	if m.CooldownMs <= 0 {
		return DefaultCooldown
	}
	return time.Duration(m.CooldownMs) * time.Millisecond
}

// Request is written to the hook's stdin.
type Request struct {
	Gesture gesture.Gesture `json:"gesture"`
	Time    string          `json:"time"`
}

// Response is read from the hook's stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Hook is a discovered hook with its resolved location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}
