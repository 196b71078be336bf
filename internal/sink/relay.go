package sink

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/stabilizer"
)

const (
	relayWriteTimeout = 2 * time.Second
	relayRetryDelay   = 2 * time.Second
)

// Relay pushes events to an upstream websocket server, which forwards them
// to its own clients. It is connected once the handshake completes and
// redials after the connection drops.
type Relay struct {
	url    string
	dialer *websocket.Dialer
	retry  time.Duration
	log    *logrus.Entry

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewRelay creates a Relay for the ws:// or wss:// url. Call Run to connect.
func NewRelay(url string, log *logrus.Entry) *Relay {
	return &Relay{
		url:    url,
		dialer: websocket.DefaultDialer,
		retry:  relayRetryDelay,
		log:    log.WithField("url", url),
	}
}

// Run keeps the relay connected until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	for {
		conn, _, err := r.dialer.DialContext(ctx, r.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.log.WithError(err).Debug("Relay dial failed")
		} else {
			r.log.Info("Relay connected")
			r.serve(ctx, conn)
			r.log.Warn("Relay disconnected")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(r.retry):
		}
	}
}

// serve holds conn until the server closes it or ctx ends.
func (r *Relay) serve(ctx context.Context, conn *websocket.Conn) {
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	r.mu.Lock()
	if r.conn == conn {
		r.conn = nil
	}
	r.mu.Unlock()
	conn.Close()
}

// Connected reports whether the upstream handshake has completed.
func (r *Relay) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn != nil
}

// Send writes ev upstream.
func (r *Relay) Send(ev stabilizer.Event) error {
	msg, err := Encode(ev)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return ErrNotConnected
	}

	r.conn.SetWriteDeadline(time.Now().Add(relayWriteTimeout))
	if err := r.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		r.conn.Close()
		r.conn = nil
		return fmt.Errorf("relay write: %w", err)
	}
	return nil
}
