package app

import (
	"errors"
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// runPipeline is the main detection loop. Every tick it reads one frame,
// detects hands and advances the session, so the stability threshold is
// counted in camera frames.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	fps := a.camera.FPS()
	if fps <= 0 {
		fps = 15
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			enabled := a.IsEnabled()
			if !enabled && a.previewers.Load() == 0 {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.log.WithError(err).Debug("Error reading frame")
				continue
			}
			a.keepPreview(frame)

			// Preview only while detection is disabled
			if !enabled {
				frame.Close()
				continue
			}

			_, err = a.ProcessFrame(frame)
			frame.Close()

			switch {
			case errors.Is(err, detector.ErrInvalidHand):
				a.log.WithError(err).Warn("Rejected frame")
			case err != nil:
				a.log.WithError(err).Debug("Error processing frame")
			}
		}
	}
}
