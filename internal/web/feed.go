package web

import (
	"fmt"
	"net/http"

	"github.com/sweeney/door-sentry/internal/stream"
)

// boundary delimits frames in the multipart feeds.
const boundary = "frame"

func (s *Server) handleLiveFeed(w http.ResponseWriter, r *http.Request) {
	src := stream.NewLive(s.live, s.notify)
	writeMultipart(w, r, src)
}

func (s *Server) handleVideoFeed(w http.ResponseWriter, r *http.Request) {
	v, det, err := s.jobs.OpenPlayback()
	if err != nil {
		fail(w, "No video uploaded")
		return
	}
	src := stream.NewPlayback(v, det, nil)
	defer src.Close()
	writeMultipart(w, r, src)
}

// writeMultipart pulls encoded frames from the stream one at a time and
// writes them as a multipart/x-mixed-replace body until the stream
// terminates or the client goes away.
func writeMultipart(w http.ResponseWriter, r *http.Request, src stream.Source) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	flusher, _ := w.(http.Flusher)
	ctx := r.Context()

	for {
		frame, ok := src.Next()
		if !ok {
			return
		}
		if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\n\r\n", boundary); err != nil {
			return
		}
		if _, err := w.Write(frame); err != nil {
			return
		}
		if _, err := fmt.Fprint(w, "\r\n"); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
