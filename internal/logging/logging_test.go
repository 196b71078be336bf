package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %s, want debug", log.GetLevel())
	}

	Component(log, "pipeline").Info("Detection pipeline started")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if line["component"] != "pipeline" {
		t.Errorf("component = %v, want pipeline", line["component"])
	}
	if line["msg"] != "Detection pipeline started" {
		t.Errorf("msg = %v", line["msg"])
	}
}

func TestNew_TextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn line missing")
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if err := (Config{Level: "loud", Format: "text"}).Validate(); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := (Config{Level: "info", Format: "xml"}).Validate(); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := New(Config{Level: "info", Format: "xml"}, nil); err == nil {
		t.Error("New should reject invalid config")
	}
}
