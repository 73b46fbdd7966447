// Package web provides the HTTP control surface for the door-sentry daemon:
// live session lifecycle, ROI and calibration control, video upload, the two
// multipart MJPEG feeds and the status page.
package web

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/sweeney/door-sentry/internal/session"
	"github.com/sweeney/door-sentry/internal/status"
	"github.com/sweeney/door-sentry/internal/stream"
)

// Server serves the control API and the frame feeds.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	live       *session.Live
	jobs       *session.JobSlot
	notify     stream.Notify
	uploadDir  string
}

// New creates a Server over the given session owners. The notify callback is
// attached to the live feed's stream; the playback feed carries no notify
// because offline analysis must not drive the indicator or MQTT.
func New(addr string, tracker *status.Tracker, live *session.Live, jobs *session.JobSlot, notify stream.Notify, uploadDir string) *Server {
	s := &Server{
		tracker:   tracker,
		live:      live,
		jobs:      jobs,
		notify:    notify,
		uploadDir: uploadDir,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)

	mux.HandleFunc("/live/start", s.handleLiveStart)
	mux.HandleFunc("/live/stop", s.handleLiveStop)
	mux.HandleFunc("/live/feed", s.handleLiveFeed)
	mux.HandleFunc("/live/frame", s.handleLiveFrame)
	mux.HandleFunc("/live/roi", s.handleLiveROI)
	mux.HandleFunc("/live/calibrate", s.handleLiveCalibrate)
	mux.HandleFunc("/live/sensitivity", s.handleLiveSensitivity)

	mux.HandleFunc("/video/upload", s.handleVideoUpload)
	mux.HandleFunc("/video/roi", s.handleVideoROI)
	mux.HandleFunc("/video/calibrate", s.handleVideoCalibrate)
	mux.HandleFunc("/video/feed", s.handleVideoFeed)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
		// No WriteTimeout: the feeds are long-lived streams.
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}
