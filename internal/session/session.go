// Package session owns the live-camera session and the single video-job
// slot. One mutex per owner guards all lifecycle transitions so concurrent
// HTTP requests cannot double-open a camera or orphan a handle.
package session

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/sweeney/door-sentry/internal/detect"
	"github.com/sweeney/door-sentry/internal/vision"
)

// Fixed live capture resolution.
const (
	CaptureWidth  = 640
	CaptureHeight = 480
)

var (
	// ErrAlreadyActive is returned by Start when a live session is running.
	ErrAlreadyActive = errors.New("live session already active")

	// ErrNotActive is returned when no live session is running or the
	// source yields no frame.
	ErrNotActive = errors.New("no active live session")

	// ErrNotReady is returned by detector operations before Start.
	ErrNotReady = errors.New("detector not initialized")
)

// Live is the process-wide live detection session. Created once at startup;
// Start and Stop toggle the underlying camera and detector.
type Live struct {
	mu     sync.Mutex
	open   vision.CameraOpener
	now    func() time.Time
	device int

	cam    vision.Camera
	det    *detect.Detector
	active bool
}

// NewLive creates an inactive session that acquires cameras through the
// given opener.
func NewLive(open vision.CameraOpener, device int, now func() time.Time) *Live {
	if now == nil {
		now = time.Now
	}
	return &Live{open: open, now: now, device: device}
}

// Start acquires the camera at the fixed capture resolution and creates a
// fresh detector. Fails with ErrAlreadyActive if a session is running, or
// with the opener's error when the camera cannot be opened.
func (s *Live) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrAlreadyActive
	}
	cam, err := s.open(s.device, CaptureWidth, CaptureHeight)
	if err != nil {
		return err
	}
	s.cam = cam
	s.det = detect.NewDetector(s.now)
	s.active = true
	return nil
}

// Stop releases the camera and discards the detector after harvesting its
// history. Stopping an inactive session is not an error; it returns an empty
// history.
func (s *Live) Stop() []detect.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	if s.cam != nil {
		s.cam.Close()
		s.cam = nil
	}
	var history []detect.HistoryEntry
	if s.det != nil {
		history = s.det.History()
		s.det = nil
	}
	return history
}

// Active reports whether a live session is running.
func (s *Live) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ReadFrame returns the next camera frame. The camera read itself happens
// outside the lock so a slow capture never blocks Stop; a Stop that races
// the read closes the handle, which surfaces here as ErrNotActive.
func (s *Live) ReadFrame() (image.Image, error) {
	s.mu.Lock()
	if !s.active || s.cam == nil {
		s.mu.Unlock()
		return nil, ErrNotActive
	}
	cam := s.cam
	s.mu.Unlock()

	frame, ok := cam.Read()
	if !ok {
		return nil, ErrNotActive
	}
	return frame, nil
}

// Detector returns the active detector, or nil when the session is stopped.
func (s *Live) Detector() *detect.Detector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.det
}

// SetROI delegates to the active detector.
func (s *Live) SetROI(r image.Rectangle) error {
	det := s.Detector()
	if det == nil {
		return ErrNotReady
	}
	return det.SetROI(r)
}

// Calibrate captures the current camera frame as the closed-door reference.
func (s *Live) Calibrate() error {
	det := s.Detector()
	if det == nil {
		return ErrNotReady
	}
	frame, err := s.ReadFrame()
	if err != nil {
		return err
	}
	return det.CalibrateClosed(frame)
}

// AdjustSensitivity delegates to the active detector and returns the new
// threshold.
func (s *Live) AdjustSensitivity(dir detect.Direction) (float64, error) {
	det := s.Detector()
	if det == nil {
		return 0, ErrNotReady
	}
	return det.AdjustSensitivity(dir), nil
}

// StillFrame returns the current camera frame as a JPEG, for ROI selection.
func (s *Live) StillFrame() ([]byte, error) {
	frame, err := s.ReadFrame()
	if err != nil {
		return nil, err
	}
	return vision.EncodeJPEG(frame)
}
