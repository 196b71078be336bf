package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/sink"
	"github.com/ayusman/mudra/internal/stabilizer"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr     string
		withTray bool
		disabled bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the detection pipeline and HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("tray") {
				cfg.Server.Tray = withTray
			}
			return serve(cmd.Context(), cfg, !disabled)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&withTray, "tray", false, "show the system tray menu (overrides server.tray)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "start with detection paused")
	return cmd
}

func serve(parent context.Context, cfg config.Config, enabled bool) error {
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	log := logging.Component(logger, "main")
	log.Info("Mudra - Hand Gesture Recognition")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.New(cfg.DBPath(), logging.Component(logger, "store"))
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	sinks := buildSinks(ctx, cfg, logger)
	defer sinks.close()

	a, err := app.New(app.Config{
		Store:      st,
		Sink:       sinks.all,
		Camera:     cfg.Camera,
		Detector:   cfg.Detector,
		Stability:  cfg.Stability,
		Vocabulary: cfg.Gesture.Vocabulary,
		Thresholds: cfg.Gesture.Thresholds,
		Log:        logging.Component(logger, "pipeline"),
	})
	if err != nil {
		return err
	}
	a.SetEnabled(enabled)
	if err := a.Start(); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}
	defer a.Stop()

	webDir := cfg.Server.StaticDir
	if webDir == "" {
		webDir = findWebDir(cfg.DataDir)
	}
	if webDir != "" {
		log.WithField("dir", webDir).Info("Serving static files")
	}

	// Nil pointers must not become non-nil interfaces.
	var events http.Handler
	if sinks.hub != nil {
		events = sinks.hub
	}
	var hooks api.HookDirectory
	if sinks.hooks != nil {
		hooks = sinks.hooks
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Pipeline:  a,
		Events:    events,
		Hooks:     hooks,
		Log:       logging.Component(logger, "server"),
	})

	if !cfg.Server.Tray {
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	}

	// The tray owns the main thread until it quits.
	t := tray.New(a.IsEnabled())
	t.OnToggle(a.SetEnabled)
	t.OnSettings(func() {
		log.WithField("url", settingsURL(cfg.Server.Addr)).Info("Open settings in a browser")
	})
	t.OnQuit(stop)
	a.OnFrame(func(res stabilizer.FrameResult) {
		t.Observe(res)
		t.SetConnected(sinks.all.Connected())
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.Server.Addr)
		t.Quit()
	}()
	t.Run()
	stop()
	return <-errCh
}

// sinkSet is every configured event sink plus the pieces the server
// exposes.
type sinkSet struct {
	all   stabilizer.MultiSink
	hub   *sink.Hub
	hooks *hook.Manager
	close func()
}

// buildSinks creates every configured event sink.
func buildSinks(ctx context.Context, cfg config.Config, logger *logrus.Logger) sinkSet {
	var (
		set     sinkSet
		closers []func()
	)

	if cfg.Sinks.Hub {
		set.hub = sink.NewHub(logging.Component(logger, "hub"))
		set.all = append(set.all, set.hub)
		closers = append(closers, set.hub.Close)
	}

	if cfg.Sinks.RelayURL != "" {
		relay := sink.NewRelay(cfg.Sinks.RelayURL, logging.Component(logger, "relay"))
		go relay.Run(ctx)
		set.all = append(set.all, relay)
	}

	if cfg.Sinks.MQTT.Broker != "" {
		m := sink.NewMQTT(cfg.Sinks.MQTT, logging.Component(logger, "mqtt"))
		if err := m.Connect(ctx); err != nil {
			logger.WithError(err).Warn("MQTT broker not reachable yet, retrying in background")
		}
		set.all = append(set.all, m)
		closers = append(closers, m.Disconnect)
	}

	if cfg.Sinks.Hooks.Dir != "" {
		log := logging.Component(logger, "hooks")
		set.hooks = hook.NewManager(cfg.Sinks.Hooks.Dir, log)
		if err := set.hooks.Discover(); err != nil {
			log.WithError(err).Warn("Failed to scan hooks")
		}
		timeout := time.Duration(cfg.Sinks.Hooks.TimeoutMs) * time.Millisecond
		hs := hook.NewSink(set.hooks, hook.NewExecutor(timeout), log)
		set.all = append(set.all, hs)
		closers = append(closers, hs.Close)
	}

	if len(set.all) == 0 {
		logger.Warn("No event sinks configured, gestures will not be delivered")
	}

	set.close = func() {
		for _, c := range closers {
			c()
		}
	}
	return set
}

func settingsURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}
