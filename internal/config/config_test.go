package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/gesture"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 7, cfg.Stability.StableThreshold)
	assert.Equal(t, gesture.IndexPoint, cfg.Stability.PointerGesture)
	assert.True(t, cfg.Camera.Mirror)
	assert.True(t, cfg.Sinks.Hub)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9000"
stability:
  stable_threshold: 4
  pointer_gesture: cursor_move
  pointer_landmark: 12
gesture:
  vocabulary: legacy
  thresholds:
    pinch_distance: 0.03
sinks:
  relay_url: ws://localhost:3001/socket
  mqtt:
    broker: localhost:1883
    topic_prefix: home/desk
  hooks:
    dir: /opt/mudra/hooks
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 4, cfg.Stability.StableThreshold)
	assert.Equal(t, gesture.CursorMove, cfg.Stability.PointerGesture)
	assert.Equal(t, 12, cfg.Stability.PointerLandmark)
	assert.Equal(t, gesture.VocabularyLegacy, cfg.Gesture.Vocabulary)
	assert.Equal(t, 0.03, cfg.Gesture.Thresholds.PinchDistance)
	assert.Equal(t, "ws://localhost:3001/socket", cfg.Sinks.RelayURL)
	assert.Equal(t, "home/desk", cfg.Sinks.MQTT.TopicPrefix)
	assert.Equal(t, "/opt/mudra/hooks", cfg.Sinks.Hooks.Dir)

	// Untouched keys keep their defaults.
	assert.Equal(t, gesture.DefaultThresholds().ClickDistance, cfg.Gesture.Thresholds.ClickDistance)
	assert.Equal(t, 1, cfg.Stability.MaxSlots)
	assert.Equal(t, "mudra", cfg.Sinks.MQTT.ClientID)
	assert.Equal(t, 5000, cfg.Sinks.Hooks.TimeoutMs)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MUDRA_SERVER_ADDR", ":9191")
	t.Setenv("MUDRA_STABILITY_STABLE_THRESHOLD", "3")
	t.Setenv("MUDRA_GESTURE_THRESHOLDS_ZOOM_DISTANCE", "0.2")
	t.Setenv("MUDRA_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9191", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Stability.StableThreshold)
	assert.Equal(t, 0.2, cfg.Gesture.Thresholds.ZoomDistance)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad vocabulary", "gesture:\n  vocabulary: klingon\n", "vocabulary"},
		{"bad threshold", "gesture:\n  thresholds:\n    click_distance: -1\n", "click_distance"},
		{"bad slots", "stability:\n  max_slots: 0\n", "max_slots"},
		{"bad landmark", "stability:\n  pointer_landmark: 30\n", "pointer_landmark"},
		{"bad relay", "sinks:\n  relay_url: http://example.com\n", "relay_url"},
		{"bad log", "log:\n  format: xml\n", "log format"},
		{"bad hook timeout", "sinks:\n  hooks:\n    timeout_ms: -5\n", "timeout_ms"},
		{"bad qos", "sinks:\n  mqtt:\n    broker: localhost:1883\n    qos: 3\n", "qos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Gesture.Thresholds.PinchDistance = 0.035

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(out), "pinch_distance: 0.035"))

	path := writeConfig(t, string(out))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	var generic map[string]any
	require.NoError(t, yaml.Unmarshal(out, &generic))
	assert.Contains(t, generic, "stability")
}

func TestConfig_DBPath(t *testing.T) {
	cfg := Config{DataDir: "/tmp/mudra"}
	assert.Equal(t, filepath.Join("/tmp/mudra", "mudra.db"), cfg.DBPath())
}
