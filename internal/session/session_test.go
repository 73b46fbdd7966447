package session

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/sweeney/door-sentry/internal/detect"
	"github.com/sweeney/door-sentry/internal/vision"
)

func grayFrame(v uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestLiveStartStop(t *testing.T) {
	cam := vision.NewFakeCamera(grayFrame(100))
	s := NewLive(cam.Opener(), 0, fixedClock())

	if s.Active() {
		t.Error("new session should be inactive")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.Active() {
		t.Error("session should be active after Start")
	}
	if cam.Width != CaptureWidth || cam.Height != CaptureHeight {
		t.Errorf("expected capture at %dx%d, got %dx%d", CaptureWidth, CaptureHeight, cam.Width, cam.Height)
	}
	if s.Detector() == nil {
		t.Error("active session should have a detector")
	}

	history := s.Stop()
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d entries", len(history))
	}
	if s.Active() {
		t.Error("session should be inactive after Stop")
	}
	if !cam.Closed {
		t.Error("camera should be released on Stop")
	}
	if s.Detector() != nil {
		t.Error("detector should be discarded on Stop")
	}
}

func TestLiveStartTwice(t *testing.T) {
	cam := vision.NewFakeCamera(grayFrame(100))
	s := NewLive(cam.Opener(), 0, nil)

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("expected ErrAlreadyActive, got %v", err)
	}
}

func TestLiveStartCameraUnavailable(t *testing.T) {
	open := func(device, width, height int) (vision.Camera, error) {
		return nil, fmt.Errorf("device %d: %w", device, vision.ErrCameraUnavailable)
	}
	s := NewLive(open, 0, nil)

	err := s.Start()
	if !errors.Is(err, vision.ErrCameraUnavailable) {
		t.Fatalf("expected ErrCameraUnavailable, got %v", err)
	}
	if s.Active() {
		t.Error("failed Start must leave the session inactive")
	}

	// A later Start with a working camera still succeeds.
	cam := vision.NewFakeCamera(grayFrame(100))
	s = NewLive(cam.Opener(), 0, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func TestLiveStopInactive(t *testing.T) {
	s := NewLive(vision.NewFakeCamera(grayFrame(100)).Opener(), 0, nil)
	if history := s.Stop(); len(history) != 0 {
		t.Errorf("stopping an inactive session should return empty history, got %d", len(history))
	}
}

func TestLiveRestartGetsFreshDetector(t *testing.T) {
	cam := vision.NewFakeCamera(grayFrame(100))
	s := NewLive(cam.Opener(), 0, fixedClock())

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.SetROI(image.Rect(10, 10, 90, 90)); err != nil {
		t.Fatalf("SetROI failed: %v", err)
	}
	if err := s.Calibrate(); err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}
	s.Stop()

	cam.Reset()
	if err := s.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if s.Detector().Calibrated() {
		t.Error("restart should install a fresh, uncalibrated detector")
	}
}

func TestLiveReadFrame(t *testing.T) {
	cam := vision.NewFakeCamera(grayFrame(100))
	s := NewLive(cam.Opener(), 0, nil)

	if _, err := s.ReadFrame(); !errors.Is(err, ErrNotActive) {
		t.Errorf("expected ErrNotActive before Start, got %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	frame, err := s.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	if frame == nil {
		t.Fatal("expected a frame")
	}

	// A failing camera surfaces as ErrNotActive so streams terminate.
	cam.Fail = true
	if _, err := s.ReadFrame(); !errors.Is(err, ErrNotActive) {
		t.Errorf("expected ErrNotActive on camera failure, got %v", err)
	}
}

func TestLiveDetectorOpsBeforeStart(t *testing.T) {
	s := NewLive(vision.NewFakeCamera(grayFrame(100)).Opener(), 0, nil)

	if err := s.SetROI(image.Rect(0, 0, 10, 10)); !errors.Is(err, ErrNotReady) {
		t.Errorf("SetROI: expected ErrNotReady, got %v", err)
	}
	if err := s.Calibrate(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Calibrate: expected ErrNotReady, got %v", err)
	}
	if _, err := s.AdjustSensitivity(detect.Increase); !errors.Is(err, ErrNotReady) {
		t.Errorf("AdjustSensitivity: expected ErrNotReady, got %v", err)
	}
}

func TestLiveCalibrateRequiresROI(t *testing.T) {
	s := NewLive(vision.NewFakeCamera(grayFrame(100)).Opener(), 0, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Calibrate(); !errors.Is(err, detect.ErrNoROI) {
		t.Errorf("expected ErrNoROI, got %v", err)
	}
}

func TestLiveDetectionFlow(t *testing.T) {
	// Camera shows a closed door, then the scene changes.
	closed := grayFrame(60)
	open := grayFrame(220)
	cam := vision.NewFakeCamera(closed, closed, open)
	s := NewLive(cam.Opener(), 0, fixedClock())

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.SetROI(image.Rect(10, 10, 90, 90)); err != nil {
		t.Fatalf("SetROI failed: %v", err)
	}
	if err := s.Calibrate(); err != nil {
		t.Fatalf("Calibrate failed: %v", err)
	}

	det := s.Detector()
	frame, err := s.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	res, err := det.Classify(frame)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if res.Status != detect.StatusClosed {
		t.Errorf("expected CLOSED on the calibration scene, got %s", res.Status)
	}

	frame, err = s.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame failed: %v", err)
	}
	res, err = det.Classify(frame)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if res.Status != detect.StatusOpen {
		t.Errorf("expected OPEN on the changed scene, got %s", res.Status)
	}

	history := s.Stop()
	if len(history) != 2 {
		t.Fatalf("expected 2 transitions harvested on Stop, got %d", len(history))
	}
	if history[0].Status != detect.StatusClosed || history[1].Status != detect.StatusOpen {
		t.Errorf("unexpected transition order: %v", history)
	}
}

func TestLiveStillFrame(t *testing.T) {
	cam := vision.NewFakeCamera(grayFrame(100))
	s := NewLive(cam.Opener(), 0, nil)

	if _, err := s.StillFrame(); !errors.Is(err, ErrNotActive) {
		t.Errorf("expected ErrNotActive before Start, got %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	data, err := s.StillFrame()
	if err != nil {
		t.Fatalf("StillFrame failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Error("expected JPEG-encoded frame")
	}
}
