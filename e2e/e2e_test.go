package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/sink"
	"github.com/ayusman/mudra/internal/stabilizer"
	"github.com/ayusman/mudra/internal/store"
)

type stack struct {
	store *store.Store
	hub   *sink.Hub
	app   *app.App
	mock  *detector.MockDetector
	ts    *httptest.Server
}

func newStack(t *testing.T) *stack {
	t.Helper()

	logger, _ := logtest.NewNullLogger()
	log := logrus.NewEntry(logger)

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	hub := sink.NewHub(log)
	t.Cleanup(hub.Close)

	a, err := app.New(app.Config{
		Store:      s,
		Sink:       stabilizer.MultiSink{hub},
		Stability:  stabilizer.DefaultConfig(),
		Vocabulary: gesture.VocabularyDefault,
		Thresholds: gesture.DefaultThresholds(),
		Log:        log,
	})
	require.NoError(t, err)

	mock := detector.NewMockDetector()
	a.SetDetector(mock)
	cam := capture.NewBlankCamera()
	cam.SetFPS(100)
	a.SetCamera(cam)

	ts := httptest.NewServer(server.New(server.Config{
		Store:    s,
		Pipeline: a,
		Events:   hub,
		Log:      log,
	}))
	t.Cleanup(ts.Close)

	return &stack{store: s, hub: hub, app: a, mock: mock, ts: ts}
}

func (s *stack) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	before := s.hub.Clients()
	url := "ws" + strings.TrimPrefix(s.ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return s.hub.Clients() > before
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

// waitFor reads events until match returns true.
func waitFor(t *testing.T, conn *websocket.Conn, match func(stabilizer.Event) bool) stabilizer.Event {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err, "no matching event before deadline")

		ev, err := sink.Decode(msg)
		require.NoError(t, err)
		if match(ev) {
			return ev
		}
	}
}

func isGesture(g gesture.Gesture) func(stabilizer.Event) bool {
	return func(ev stabilizer.Event) bool {
		ge, ok := ev.(stabilizer.GestureEvent)
		return ok && ge.Gesture == g
	}
}

func TestE2E_LiveEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st := newStack(t)
	conn := st.dial(t)

	st.mock.SetHands([]detector.HandLandmarks{detector.ThumbsUpLandmarks()})
	st.app.SetEnabled(true)
	require.NoError(t, st.app.Start())
	defer st.app.Stop()

	t.Run("StableGesture", func(t *testing.T) {
		waitFor(t, conn, isGesture(gesture.ThumbsUp))
	})

	t.Run("Cursor", func(t *testing.T) {
		point := detector.IndexPointLandmarks()
		st.mock.SetHands([]detector.HandLandmarks{point})

		ev := waitFor(t, conn, func(ev stabilizer.Event) bool {
			c, ok := ev.(stabilizer.CursorEvent)
			return ok && !c.Cleared()
		})
		c := ev.(stabilizer.CursorEvent)
		tip := point.Points[detector.IndexTip]
		assert.InDelta(t, tip.X, *c.X, 1e-9)
		assert.InDelta(t, tip.Y, *c.Y, 1e-9)
	})

	t.Run("HandLost", func(t *testing.T) {
		st.mock.SetHands(nil)
		waitFor(t, conn, func(ev stabilizer.Event) bool {
			c, ok := ev.(stabilizer.CursorEvent)
			return ok && c.Cleared()
		})
	})

	t.Run("Status", func(t *testing.T) {
		resp, err := st.ts.Client().Get(st.ts.URL + "/api/status")
		require.NoError(t, err)
		defer resp.Body.Close()

		var status app.Status
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
		assert.True(t, status.Enabled)
		assert.True(t, status.Running)
		assert.True(t, status.Connected)
		assert.NotZero(t, status.Frames)
	})
}

func TestE2E_ClientRelay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st := newStack(t)
	listener := st.dial(t)
	publisher := st.dial(t)

	msg, err := sink.Encode(stabilizer.GestureEvent{Gesture: gesture.Zoom})
	require.NoError(t, err)
	require.NoError(t, publisher.WriteMessage(websocket.TextMessage, msg))

	waitFor(t, listener, isGesture(gesture.Zoom))
}

func TestE2E_RecordPoseAndMatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st := newStack(t)
	client := st.ts.Client()

	resp, err := client.Post(st.ts.URL+"/api/poses", "application/json", strings.NewReader(`{"name": "grab", "tolerance": 0.5}`))
	require.NoError(t, err)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	fist := detector.FistLandmarks()
	sample, err := json.Marshal(gesture.Sample{Landmarks: fist.Points[:]})
	require.NoError(t, err)
	resp, err = client.Post(
		st.ts.URL+"/api/poses/"+created.ID+"/samples",
		"application/json",
		strings.NewReader(fmt.Sprintf(`{"samples": [%s]}`, sample)),
	)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	conn := st.dial(t)
	st.mock.SetHands([]detector.HandLandmarks{fist})
	st.app.SetEnabled(true)
	require.NoError(t, st.app.Start())
	defer st.app.Stop()

	waitFor(t, conn, isGesture("grab"))

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, err := client.Get(st.ts.URL + "/api/health")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
