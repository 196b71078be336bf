// Package tray provides a system tray menu to toggle detection and show the
// last stable gesture.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/stabilizer"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()
	enabled    bool
	last       gesture.Gesture
	connected  bool
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
	menuConnection  *systray.MenuItem
}

// New creates a new Tray showing the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
	}
}

// OnToggle is called with the new state after the toggle item is clicked.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	t.onToggle = fn
	t.mu.Unlock()
}

// OnSettings is called when "Open Settings..." is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	t.onSettings = fn
	t.mu.Unlock()
}

// OnQuit is called before the tray quits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	t.onQuit = fn
	t.mu.Unlock()
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra Gesture Recognition")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture recognition")
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem(lastGestureTitle(t.last), "Last stable gesture")
	t.menuLastGesture.Disable()
	t.menuConnection = systray.AddMenuItem(connectionTitle(t.connected), "Whether any client receives events")
	t.menuConnection.Disable()
	systray.AddSeparator()
	t.mu.Unlock()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func lastGestureTitle(g gesture.Gesture) string {
	if g == "" {
		return "Last: none"
	}
	return "Last: " + string(g)
}

func connectionTitle(connected bool) string {
	if connected {
		return "Clients: connected"
	}
	return "Clients: none"
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled, cb := t.enabled, t.onToggle
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	t.mu.Unlock()

	// The callback may call back into IsEnabled.
	if cb != nil {
		cb(enabled)
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	cb := t.onSettings
	t.mu.RUnlock()

	fire(cb)
}

// handleQuit runs the quit callback, then tears the tray down.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	cb := t.onQuit
	t.mu.RUnlock()

	fire(cb)
	systray.Quit()
}

func fire(cb func()) {
	if cb != nil {
		cb()
	}
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(g gesture.Gesture) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if g == t.last {
		return
	}
	t.last = g
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(lastGestureTitle(g))
	}
}

// SetConnected updates the client connection display.
func (t *Tray) SetConnected(connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if connected == t.connected {
		return
	}
	t.connected = connected
	if t.menuConnection != nil {
		t.menuConnection.SetTitle(connectionTitle(connected))
	}
}

// Observe updates the menu from a processed frame. It fits app.OnFrame.
func (t *Tray) Observe(res stabilizer.FrameResult) {
	if stable := res.StableGestures(); len(stable) > 0 {
		t.SetLastGesture(stable[0])
	}
}

// LastGesture returns the gesture shown in the menu.
func (t *Tray) LastGesture() gesture.Gesture {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
