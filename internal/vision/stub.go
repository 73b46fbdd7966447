//go:build !opencv

package vision

import "fmt"

// OpenCamera is not available without the opencv build tag.
func OpenCamera(device, width, height int) (Camera, error) {
	return nil, fmt.Errorf("%w: built without opencv support", ErrCameraUnavailable)
}

// OpenVideo is not available without the opencv build tag.
func OpenVideo(path string) (Video, error) {
	return nil, fmt.Errorf("%w: built without opencv support", ErrUnreadableVideo)
}
