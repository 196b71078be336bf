// Package app wires the camera, hand detector, gesture classifier and
// stability session into the running detection pipeline.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/stabilizer"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds configuration options for the application.
type Config struct {
	// Store persists custom poses and threshold overrides. Optional.
	Store *store.Store
	// Sink receives the session's events.
	Sink       stabilizer.Sink
	Camera     capture.Config
	Detector   detector.Config
	Stability  stabilizer.Config
	Vocabulary gesture.Vocabulary
	Thresholds gesture.Thresholds
	Log        *logrus.Entry
}

const previewQuality = 80

// FrameCallback is called after every processed frame.
type FrameCallback func(stabilizer.FrameResult)

// App is the main application that turns camera frames into gesture events.
type App struct {
	config   Config
	log      *logrus.Entry
	camera   capture.Camera
	detector detector.Detector

	classifier atomic.Pointer[gesture.Classifier]

	previewers atomic.Int32
	preview    atomic.Pointer[[]byte]

	// sessionMu serializes Process and Reset between the pipeline and
	// the enable toggle.
	sessionMu sync.Mutex
	session   *stabilizer.Session

	mu        sync.RWMutex
	enabled   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	callbacks []FrameCallback
	last      stabilizer.FrameResult
	lastShown gesture.Gesture
	frames    uint64
}

// New creates a new App instance with the given configuration. Threshold
// overrides and trained poses are loaded from the store when one is set.
func New(config Config) (*App, error) {
	if config.Sink == nil {
		return nil, errors.New("app: sink is required")
	}
	if config.Log == nil {
		config.Log = logrus.NewEntry(logrus.StandardLogger())
	}

	a := &App{
		config: config,
		log:    config.Log,
		camera: capture.NewCamera(config.Camera),
	}

	th, err := a.loadThresholds()
	if err != nil {
		return nil, err
	}
	c, err := a.buildClassifier(th)
	if err != nil {
		return nil, err
	}
	a.classifier.Store(c)

	session, err := stabilizer.NewSession(config.Stability, a, config.Sink, config.Log)
	if err != nil {
		return nil, err
	}
	a.session = session

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector, config.Log); err == nil {
		a.detector = mp
		a.log.Info("Using MediaPipe hand detection")
	} else {
		a.log.WithError(err).Warn("MediaPipe not available, using mock detector")
		a.detector = detector.NewMockDetector()
	}

	return a, nil
}

// Classify implements stabilizer.Classifier with the current classifier.
func (a *App) Classify(h *detector.HandLandmarks) gesture.Gesture {
	return a.classifier.Load().Classify(h)
}

// Classifier returns the classifier used for the next frame.
func (a *App) Classifier() *gesture.Classifier {
	return a.classifier.Load()
}

// Thresholds returns the calibration currently in effect.
func (a *App) Thresholds() gesture.Thresholds {
	return a.classifier.Load().Thresholds()
}

// UpdateThresholds merges a partial JSON object into the current thresholds,
// persists the result and swaps the classifier in before the next frame.
func (a *App) UpdateThresholds(partial []byte) (gesture.Thresholds, error) {
	current := a.Thresholds()
	next, err := current.Apply(partial)
	if err != nil {
		return current, err
	}

	c, err := a.buildClassifier(next)
	if err != nil {
		return current, err
	}

	if s := a.config.Store; s != nil {
		data, err := json.Marshal(next)
		if err != nil {
			return current, err
		}
		if err := s.Settings().Set(store.KeyThresholds, string(data)); err != nil {
			return current, fmt.Errorf("persist thresholds: %w", err)
		}
	}

	a.classifier.Store(c)
	a.log.WithField("thresholds", next).Info("Thresholds updated")
	return next, nil
}

// ReloadPoses rebuilds the classifier from the trained poses in the store.
func (a *App) ReloadPoses() error {
	c, err := a.buildClassifier(a.Thresholds())
	if err != nil {
		return err
	}
	a.classifier.Store(c)
	return nil
}

// loadThresholds returns the configured thresholds with any persisted
// override applied on top.
func (a *App) loadThresholds() (gesture.Thresholds, error) {
	th := a.config.Thresholds
	if a.config.Store == nil {
		return th, nil
	}

	raw, err := a.config.Store.Settings().Get(store.KeyThresholds)
	if errors.Is(err, store.ErrNotFound) {
		return th, nil
	}
	if err != nil {
		return th, fmt.Errorf("load thresholds: %w", err)
	}

	next, err := th.Apply([]byte(raw))
	if err != nil {
		a.log.WithError(err).Warn("Ignoring stored thresholds")
		return th, nil
	}
	a.log.Info("Loaded thresholds from database")
	return next, nil
}

func (a *App) buildClassifier(th gesture.Thresholds) (*gesture.Classifier, error) {
	rules, err := gesture.RulesFor(a.config.Vocabulary, th)
	if err != nil {
		return nil, err
	}
	c := gesture.New(th, rules)

	if a.config.Store == nil {
		return c, nil
	}

	poses, err := a.config.Store.Poses().List()
	if err != nil {
		return nil, fmt.Errorf("load poses: %w", err)
	}

	templates := make([]gesture.Template, 0, len(poses))
	for _, p := range poses {
		if !p.Trained() {
			continue
		}
		t := gesture.Template{
			Name:      gesture.Gesture(p.Name),
			Landmarks: p.Landmarks,
			Tolerance: p.Tolerance,
		}
		if err := t.Validate(); err != nil {
			a.log.WithError(err).WithField("pose", p.Name).Warn("Skipping pose")
			continue
		}
		templates = append(templates, t)
	}

	a.log.WithField("count", len(templates)).Debug("Loaded poses from database")
	return c.WithTemplates(templates)
}

// SetEnabled enables or disables gesture detection. Either way the session
// starts over.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if changed {
		a.sessionMu.Lock()
		a.session.Reset()
		a.sessionMu.Unlock()
		a.log.WithField("enabled", enabled).Info("Detection toggled")
	}
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// OnFrame registers fn to be called after every processed frame.
func (a *App) OnFrame(fn FrameCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, fn)
}

// ProcessFrame runs detection on frame and advances the session.
func (a *App) ProcessFrame(frame *gocv.Mat) (stabilizer.FrameResult, error) {
	d := a.Detector()
	hands, err := d.Detect(frame)
	if err != nil {
		return stabilizer.FrameResult{}, fmt.Errorf("detect hands: %w", err)
	}
	return a.ProcessHands(hands)
}

// ProcessHands advances the session with already detected hands.
func (a *App) ProcessHands(hands []detector.HandLandmarks) (stabilizer.FrameResult, error) {
	a.sessionMu.Lock()
	res, err := a.session.Process(hands)
	a.sessionMu.Unlock()
	if err != nil {
		return res, err
	}

	a.mu.Lock()
	a.frames++
	a.last = res
	if stable := res.StableGestures(); len(stable) > 0 {
		a.lastShown = stable[0]
	}
	callbacks := append([]FrameCallback(nil), a.callbacks...)
	a.mu.Unlock()

	for _, fn := range callbacks {
		fn(res)
	}
	return res, nil
}

// AcquirePreview asks the pipeline to keep a JPEG of the latest frame until
// release is called.
func (a *App) AcquirePreview() (release func()) {
	a.previewers.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			if a.previewers.Add(-1) == 0 {
				a.preview.Store(nil)
			}
		})
	}
}

// LatestJPEG returns the most recent preview frame, or nil.
func (a *App) LatestJPEG() []byte {
	if p := a.preview.Load(); p != nil {
		return *p
	}
	return nil
}

func (a *App) keepPreview(frame *gocv.Mat) {
	if a.previewers.Load() == 0 {
		return
	}
	data, err := capture.EncodeJPEG(frame, previewQuality)
	if err != nil {
		a.log.WithError(err).Debug("Failed to encode preview")
		return
	}
	a.preview.Store(&data)
	if a.previewers.Load() == 0 {
		a.preview.Store(nil)
	}
}

// Status is a snapshot of the pipeline for the status endpoint and tray.
type Status struct {
	Enabled     bool                    `json:"enabled"`
	Running     bool                    `json:"running"`
	Connected   bool                    `json:"connected"`
	Vocabulary  gesture.Vocabulary      `json:"vocabulary"`
	Frames      uint64                  `json:"frames"`
	LastGesture gesture.Gesture         `json:"last_gesture,omitempty"`
	Gestures    []gesture.Gesture       `json:"gestures"`
	Slots       []stabilizer.SlotReport `json:"slots"`
}

// Status returns the current pipeline state.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	vocab := a.config.Vocabulary
	if vocab == "" {
		vocab = gesture.VocabularyDefault
	}

	return Status{
		Enabled:     a.enabled,
		Running:     a.stopCh != nil,
		Connected:   a.config.Sink.Connected(),
		Vocabulary:  vocab,
		Frames:      a.frames,
		LastGesture: a.lastShown,
		Gestures:    a.classifier.Load().Gestures(),
		Slots:       append([]stabilizer.SlotReport(nil), a.last.Slots...),
	}
}

// Start opens the camera and begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	a.log.WithField("fps", a.camera.FPS()).Info("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := a.camera.Close(); err != nil {
		a.log.WithError(err).Warn("Error closing camera")
	}

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			a.log.WithError(err).Warn("Error closing detector")
		}
	}

	a.sessionMu.Lock()
	a.session.Reset()
	a.sessionMu.Unlock()

	a.log.Info("Detection pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Store returns the backing store, or nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
