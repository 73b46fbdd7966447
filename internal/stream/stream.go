// Package stream produces the JPEG frame sequences behind the multipart
// feeds. A stream is lazy, single-pass and non-restartable: each Next call
// reads one source frame, classifies and annotates it, and yields the
// encoded result. Next returning false is the clean termination signal (end
// of stream, stopped session, or a read failure); it is never an error.
package stream

import (
	"fmt"
	"image"
	"image/color"

	"github.com/sweeney/door-sentry/internal/detect"
	"github.com/sweeney/door-sentry/internal/overlay"
	"github.com/sweeney/door-sentry/internal/session"
	"github.com/sweeney/door-sentry/internal/vision"
)

// Source is the pull interface consumed by the transport layer.
type Source interface {
	// Next yields the next encoded frame, or false when the stream is done.
	// Once false is returned the stream stays terminated.
	Next() ([]byte, bool)
}

// Notify receives every classification result so the caller can forward
// transitions and status updates without the stream knowing about
// transports.
type Notify func(detect.Result)

// Live streams annotated frames from the live session until the session is
// stopped or the camera fails. Infinite otherwise.
type Live struct {
	sess   *session.Live
	notify Notify
	done   bool
}

// NewLive creates a live stream over the given session.
func NewLive(sess *session.Live, notify Notify) *Live {
	return &Live{sess: sess, notify: notify}
}

// Next reads, classifies and annotates one camera frame. The session's
// active flag is observed on every iteration via ReadFrame, so a concurrent
// Stop terminates the stream cleanly instead of touching a released handle.
func (s *Live) Next() ([]byte, bool) {
	if s.done {
		return nil, false
	}
	frame, err := s.sess.ReadFrame()
	if err != nil {
		s.done = true
		return nil, false
	}
	det := s.sess.Detector()
	if det == nil {
		s.done = true
		return nil, false
	}

	display := overlay.Clone(frame)
	if roi, ok := det.ROI(); ok {
		overlay.Rect(display, roi, overlay.Yellow, 2)
		overlay.Label(display, "DOOR FRAME", roi.Min.X, roi.Min.Y-4, overlay.Yellow)
	}

	// ErrNotCalibrated just means the status box shows UNCALIBRATED; the
	// raw frame still streams so the operator can pick an ROI.
	res, _ := det.Classify(frame)
	if s.notify != nil {
		s.notify(res)
	}

	overlay.FillRect(display, image.Rect(5, 5, 300, 60), overlay.Black)
	overlay.Label(display, "Door: "+string(res.Status), 10, 40, statusColor(res.Status))
	overlay.Label(display, fmt.Sprintf("Sensitivity: %.1f%%", det.Threshold()), 10, 80, overlay.White)

	buf, err := vision.EncodeJPEG(display)
	if err != nil {
		s.done = true
		return nil, false
	}
	return buf, true
}

// Playback streams an uploaded video with the detection overlay, bounded by
// the file's frame count. The video handle is owned by the stream and closed
// at exhaustion or via Close.
type Playback struct {
	src    vision.Video
	det    *detect.Detector
	notify Notify
	index  int
	done   bool
}

// NewPlayback creates a playback stream over an opened video handle.
func NewPlayback(src vision.Video, det *detect.Detector, notify Notify) *Playback {
	return &Playback{src: src, det: det, notify: notify}
}

// Next reads, classifies and annotates one video frame.
func (s *Playback) Next() ([]byte, bool) {
	if s.done {
		return nil, false
	}
	frame, ok := s.src.Read()
	if !ok {
		s.Close()
		return nil, false
	}

	display := overlay.Clone(frame)
	if roi, ok := s.det.ROI(); ok {
		overlay.Rect(display, roi, overlay.Yellow, 3)
	}

	res, _ := s.det.Classify(frame)
	if s.notify != nil {
		s.notify(res)
	}

	// Semi-transparent banner with status, frame index, elapsed time and
	// change percentage.
	width := display.Bounds().Dx()
	overlay.Banner(display, image.Rect(0, 0, width, 100), 0.7)
	overlay.Label(display, "Door: "+string(res.Status), 20, 50, statusColor(res.Status))
	info := fmt.Sprintf("Frame: %d | Time: %s | Change: %.1f%%",
		s.index, elapsed(s.index, s.src.FPS()), res.ChangePct)
	overlay.Label(display, info, 20, 85, overlay.White)

	s.index++

	buf, err := vision.EncodeJPEG(display)
	if err != nil {
		s.Close()
		return nil, false
	}
	return buf, true
}

// Close terminates the stream and releases the video handle. Safe to call
// more than once; the transport layer defers it for early consumer aborts.
func (s *Playback) Close() {
	if s.done {
		return
	}
	s.done = true
	s.src.Close()
}

func statusColor(st detect.Status) color.RGBA {
	if st == detect.StatusClosed {
		return overlay.Green
	}
	return overlay.Red
}

// elapsed formats the playback position as mm:ss.
func elapsed(frame int, fps float64) string {
	if fps <= 0 {
		return "00:00"
	}
	secs := int(float64(frame) / fps)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
