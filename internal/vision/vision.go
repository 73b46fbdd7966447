// Package vision abstracts camera, video-file and image-codec access.
// The real implementations wrap OpenCV via gocv and are only compiled with
// the "opencv" build tag; the fake implementations allow testing without
// hardware or codecs.
package vision

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
)

// Camera reads frames from a live source. Read returns false at end of
// stream or on a hardware failure; that is a normal termination signal, not
// an error.
type Camera interface {
	// Read returns the next frame, or false when the source is dry.
	Read() (image.Image, bool)

	// Close releases the underlying handle.
	Close() error
}

// Video reads frames from a decoded video file and exposes its metadata.
type Video interface {
	Camera

	// FrameCount returns the total number of frames in the file.
	FrameCount() int

	// FPS returns the file's frame rate.
	FPS() float64
}

// CameraOpener acquires a camera handle configured for the given capture
// resolution. Injected so sessions can be tested against fakes.
type CameraOpener func(device, width, height int) (Camera, error)

// VideoOpener opens a video file for decoding.
type VideoOpener func(path string) (Video, error)

var (
	// ErrCameraUnavailable is returned when the camera handle cannot be
	// opened.
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrUnreadableVideo is returned when a video file cannot be opened or
	// its first frame cannot be decoded.
	ErrUnreadableVideo = errors.New("unreadable video")
)

// EncodeJPEG compresses a frame for transport.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
