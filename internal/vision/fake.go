package vision

import "image"

// FakeCamera is a test double that returns scripted frames.
type FakeCamera struct {
	// Frames contains the frames to return, in order. Once the last frame
	// is reached it is returned repeatedly, like a live camera pointed at a
	// still scene.
	Frames []image.Image

	// Closed tracks if Close was called. A closed camera reads false.
	Closed bool

	// Fail, if set, makes every Read return false.
	Fail bool

	// Width and Height record the capture resolution requested by the
	// opener, for test assertions.
	Width, Height int

	index int
}

// NewFakeCamera creates a FakeCamera with the given frames.
func NewFakeCamera(frames ...image.Image) *FakeCamera {
	return &FakeCamera{Frames: frames}
}

// Opener returns a CameraOpener that hands out this fake and records the
// requested resolution.
func (f *FakeCamera) Opener() CameraOpener {
	return func(device, width, height int) (Camera, error) {
		f.Width, f.Height = width, height
		return f, nil
	}
}

// Read returns the next scripted frame, repeating the last one once the
// script is exhausted.
func (f *FakeCamera) Read() (image.Image, bool) {
	if f.Closed || f.Fail || len(f.Frames) == 0 {
		return nil, false
	}
	frame := f.Frames[f.index]
	if f.index < len(f.Frames)-1 {
		f.index++
	}
	return frame, true
}

// Close marks the camera as closed.
func (f *FakeCamera) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the script and reopens the camera.
func (f *FakeCamera) Reset() {
	f.index = 0
	f.Closed = false
	f.Fail = false
}

// FakeVideo is a test double for a decoded video file. Unlike FakeCamera it
// is finite: reads past the last frame report end of stream.
type FakeVideo struct {
	Frames []image.Image
	Rate   float64

	// Closed tracks if Close was called.
	Closed bool

	index int
}

// NewFakeVideo creates a FakeVideo with the given frame rate and frames.
func NewFakeVideo(fps float64, frames ...image.Image) *FakeVideo {
	return &FakeVideo{Frames: frames, Rate: fps}
}

// Opener returns a VideoOpener that hands out a fresh copy of this fake, so
// repeated opens (upload, calibrate, playback) each start at frame zero.
func (f *FakeVideo) Opener() VideoOpener {
	return func(path string) (Video, error) {
		return &FakeVideo{Frames: f.Frames, Rate: f.Rate}, nil
	}
}

// Read returns the next frame, or false once the file is exhausted.
func (f *FakeVideo) Read() (image.Image, bool) {
	if f.Closed || f.index >= len(f.Frames) {
		return nil, false
	}
	frame := f.Frames[f.index]
	f.index++
	return frame, true
}

// FrameCount returns the number of scripted frames.
func (f *FakeVideo) FrameCount() int { return len(f.Frames) }

// FPS returns the configured frame rate.
func (f *FakeVideo) FPS() float64 { return f.Rate }

// Close marks the video as closed.
func (f *FakeVideo) Close() error {
	f.Closed = true
	return nil
}
