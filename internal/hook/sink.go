package hook

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/stabilizer"
)

const queueSize = 16

var (
	// ErrQueueFull is returned by Send when hooks cannot keep up.
	ErrQueueFull = errors.New("hook queue full")
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("hook sink closed")
)

// Config configures the hook sink.
type Config struct {
	// Dir holds one subdirectory per hook. Empty disables hooks.
	Dir       string `json:"dir" yaml:"dir" mapstructure:"dir"`
	TimeoutMs int    `json:"timeout_ms" yaml:"timeout_ms" mapstructure:"timeout_ms"`
}

type job struct {
	hook *Hook
	req  Request
}

// Sink runs subscribed hooks for gesture events. Gesture events repeat on
// every stable frame, so each hook runs at most once per gesture within its
// cooldown. Cursor events are ignored.
type Sink struct {
	manager  *Manager
	executor *Executor
	log      *logrus.Entry
	now      func() time.Time

	mu     sync.Mutex
	last   map[string]time.Time
	closed bool

	queue chan job
	done  chan struct{}
	ctx   context.Context
	stop  context.CancelFunc
}

// NewSink starts the worker that runs hooks. Close stops it.
func NewSink(manager *Manager, executor *Executor, log *logrus.Entry) *Sink {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	ctx, stop := context.WithCancel(context.Background())
	s := &Sink{
		manager:  manager,
		executor: executor,
		log:      log,
		now:      time.Now,
		last:     make(map[string]time.Time),
		queue:    make(chan job, queueSize),
		done:     make(chan struct{}),
		ctx:      ctx,
		stop:     stop,
	}
	go s.run()
	return s
}

// Connected is true while at least one hook is installed.
func (s *Sink) Connected() bool {
	return len(s.manager.List()) > 0
}

// Send queues every due hook subscribed to the event's gesture.
func (s *Sink) Send(ev stabilizer.Event) error {
	ge, ok := ev.(stabilizer.GestureEvent)
	if !ok {
		return nil
	}

	now := s.now()
	for _, h := range s.manager.List() {
		if !h.Manifest.Wants(ge.Gesture) || !s.due(h, ge.Gesture, now) {
			continue
		}
		if err := s.enqueue(job{hook: h, req: Request{Gesture: ge.Gesture, Time: now.UTC().Format(time.RFC3339)}}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) due(h *Hook, g gesture.Gesture, now time.Time) bool {
	key := h.Manifest.Name + "/" + string(g)

	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.last[key]; ok && now.Sub(last) < h.Manifest.Cooldown() {
		return false
	}
	s.last[key] = now
	return true
}

func (s *Sink) enqueue(j job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	select {
	case s.queue <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *Sink) run() {
	defer close(s.done)

	for j := range s.queue {
		if s.ctx.Err() != nil {
			continue
		}
		log := s.log.WithFields(logrus.Fields{"hook": j.hook.Manifest.Name, "gesture": j.req.Gesture})
		if _, err := s.executor.Execute(s.ctx, j.hook, j.req); err != nil {
			log.WithError(err).Warn("Hook failed")
			continue
		}
		log.Debug("Hook ran")
	}
}

// Close stops accepting events, cancels a running hook and waits for the
// worker to exit.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.stop()
	<-s.done
}
