// Package config loads mudra's settings from defaults, an optional YAML file
// and MUDRA_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/sink"
	"github.com/ayusman/mudra/internal/stabilizer"
)

// EnvPrefix is the prefix of environment overrides, e.g. MUDRA_SERVER_ADDR.
const EnvPrefix = "MUDRA"

// Server configures the HTTP listener.
type Server struct {
	Addr      string `json:"addr" yaml:"addr" mapstructure:"addr"`
	StaticDir string `json:"static_dir" yaml:"static_dir" mapstructure:"static_dir"`
	Tray      bool   `json:"tray" yaml:"tray" mapstructure:"tray"`
}

// Gesture selects the rule set and its calibration.
type Gesture struct {
	Vocabulary gesture.Vocabulary `json:"vocabulary" yaml:"vocabulary" mapstructure:"vocabulary"`
	Thresholds gesture.Thresholds `json:"thresholds" yaml:"thresholds" mapstructure:"thresholds"`
}

// Sinks configures where events go.
type Sinks struct {
	// Hub serves /api/events to browsers.
	Hub bool `json:"hub" yaml:"hub" mapstructure:"hub"`
	// RelayURL is an upstream websocket server to push events to.
	RelayURL string          `json:"relay_url" yaml:"relay_url" mapstructure:"relay_url"`
	MQTT     sink.MQTTConfig `json:"mqtt" yaml:"mqtt" mapstructure:"mqtt"`
	// Hooks runs local executables on stable gestures.
	Hooks hook.Config `json:"hooks" yaml:"hooks" mapstructure:"hooks"`
}

// Config is the full application configuration.
type Config struct {
	DataDir   string            `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Server    Server            `json:"server" yaml:"server" mapstructure:"server"`
	Camera    capture.Config    `json:"camera" yaml:"camera" mapstructure:"camera"`
	Detector  detector.Config   `json:"detector" yaml:"detector" mapstructure:"detector"`
	Stability stabilizer.Config `json:"stability" yaml:"stability" mapstructure:"stability"`
	Gesture   Gesture           `json:"gesture" yaml:"gesture" mapstructure:"gesture"`
	Sinks     Sinks             `json:"sinks" yaml:"sinks" mapstructure:"sinks"`
	Log       logging.Config    `json:"log" yaml:"log" mapstructure:"log"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		DataDir: defaultDataDir(),
		Server: Server{
			Addr: ":8080",
		},
		Camera:    capture.DefaultConfig(),
		Detector:  detector.DefaultConfig(),
		Stability: stabilizer.DefaultConfig(),
		Gesture: Gesture{
			Vocabulary: gesture.VocabularyDefault,
			Thresholds: gesture.DefaultThresholds(),
		},
		Sinks: Sinks{
			Hub: true,
			MQTT: sink.MQTTConfig{
				TopicPrefix: "mudra",
				ClientID:    "mudra",
			},
			Hooks: hook.Config{
				TimeoutMs: int(hook.DefaultTimeout.Milliseconds()),
			},
		},
		Log: logging.DefaultConfig(),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

// DefaultFile returns ~/.mudra/config.yaml if it exists, or "".
func DefaultFile() string {
	path := filepath.Join(defaultDataDir(), "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Load reads path (optional) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	defaults, err := yaml.Marshal(Default())
	if err != nil {
		return Config{}, fmt.Errorf("encode defaults: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if err := c.Camera.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Detector.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Stability.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := gesture.RulesFor(c.Gesture.Vocabulary, c.Gesture.Thresholds); err != nil {
		errs = append(errs, err)
	}
	if err := c.Gesture.Thresholds.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Sinks.RelayURL != "" {
		u, err := url.Parse(c.Sinks.RelayURL)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			errs = append(errs, fmt.Errorf("sinks.relay_url must be a ws:// or wss:// URL, got %q", c.Sinks.RelayURL))
		}
	}
	if c.Sinks.MQTT.Broker != "" {
		if c.Sinks.MQTT.TopicPrefix == "" {
			errs = append(errs, errors.New("sinks.mqtt.topic_prefix is required with a broker"))
		}
		if c.Sinks.MQTT.QoS > 2 {
			errs = append(errs, fmt.Errorf("sinks.mqtt.qos must be 0, 1 or 2, got %d", c.Sinks.MQTT.QoS))
		}
	}
	if c.Sinks.Hooks.TimeoutMs < 0 {
		errs = append(errs, fmt.Errorf("sinks.hooks.timeout_ms must not be negative, got %d", c.Sinks.Hooks.TimeoutMs))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// YAML renders the configuration as a config file.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// DBPath is the SQLite database location inside DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}
