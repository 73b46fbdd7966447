//go:build opencv

package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// RealCamera captures frames from a physical camera via OpenCV.
type RealCamera struct {
	cap *gocv.VideoCapture
	mat gocv.Mat
}

// OpenCamera opens the given capture device and configures the capture
// resolution.
func OpenCamera(device, width, height int) (Camera, error) {
	cap, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrCameraUnavailable, device, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("%w: device %d", ErrCameraUnavailable, device)
	}
	cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(height))
	return &RealCamera{cap: cap, mat: gocv.NewMat()}, nil
}

// Read returns the next camera frame, or false on end of stream or a
// hardware error.
func (c *RealCamera) Read() (image.Image, bool) {
	if ok := c.cap.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, false
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, false
	}
	return img, true
}

// Close releases the capture handle.
func (c *RealCamera) Close() error {
	c.mat.Close()
	return c.cap.Close()
}

// RealVideo decodes frames from a video file via OpenCV.
type RealVideo struct {
	cap    *gocv.VideoCapture
	mat    gocv.Mat
	frames int
	fps    float64
}

// OpenVideo opens a video file for decoding.
func OpenVideo(path string) (Video, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableVideo, path, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnreadableVideo, path)
	}
	return &RealVideo{
		cap:    cap,
		mat:    gocv.NewMat(),
		frames: int(cap.Get(gocv.VideoCaptureFrameCount)),
		fps:    cap.Get(gocv.VideoCaptureFPS),
	}, nil
}

// Read returns the next decoded frame, or false at end of file.
func (v *RealVideo) Read() (image.Image, bool) {
	if ok := v.cap.Read(&v.mat); !ok || v.mat.Empty() {
		return nil, false
	}
	img, err := v.mat.ToImage()
	if err != nil {
		return nil, false
	}
	return img, true
}

// FrameCount returns the total number of frames in the file.
func (v *RealVideo) FrameCount() int { return v.frames }

// FPS returns the file's frame rate.
func (v *RealVideo) FPS() float64 { return v.fps }

// Close releases the decode handle.
func (v *RealVideo) Close() error {
	v.mat.Close()
	return v.cap.Close()
}
