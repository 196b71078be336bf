package server

import (
	"fmt"
	"net/http"
	"time"
)

// streamInterval paces the preview at roughly 15 FPS.
const streamInterval = 66 * time.Millisecond

// PreviewSource hands out the latest camera frame as JPEG.
type PreviewSource interface {
	AcquirePreview() (release func())
	LatestJPEG() []byte
}

// StreamHandler serves MJPEG frames from the detection pipeline.
type StreamHandler struct {
	source PreviewSource
}

// NewStreamHandler creates a new StreamHandler with the given source.
func NewStreamHandler(source PreviewSource) *StreamHandler {
	return &StreamHandler{source: source}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	release := h.source.AcquirePreview()
	defer release()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var last []byte
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		// Skip until the pipeline produced a new frame
		buf := h.source.LatestJPEG()
		if len(buf) == 0 || (len(last) > 0 && &buf[0] == &last[0]) {
			continue
		}
		last = buf

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(buf))
		if _, err := w.Write(buf); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
