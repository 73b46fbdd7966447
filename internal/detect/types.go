// Package detect contains the frame-differencing logic for door state
// classification. It has no camera or transport dependencies: frames come in
// as stdlib images and time is always injectable via a clock function.
package detect

import (
	"errors"
	"time"
)

// Status represents the classified state of the door.
type Status string

const (
	StatusUncalibrated Status = "UNCALIBRATED"
	StatusOpen         Status = "OPEN"
	StatusClosed       Status = "CLOSED"
)

// Direction selects which way a sensitivity adjustment moves.
// Increasing sensitivity lowers the numeric threshold: a smaller change is
// then enough to flag the door as OPEN.
type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

// Detection thresholds and preprocessing constants.
const (
	// DefaultThreshold is the initial change-percentage boundary.
	DefaultThreshold = 5.0
	// MinThreshold and MaxThreshold bound the adjustable range.
	MinThreshold = 1.0
	MaxThreshold = 15.0
	// SensitivityStep is how far one adjustment moves the threshold.
	SensitivityStep = 0.5

	// diffCutoff is the per-pixel intensity cutoff for the binary mask.
	diffCutoff = 30
	// blurSigma matches the original 15x15 Gaussian kernel (kernel ~ 6*sigma).
	blurSigma = 2.5
)

// Errors reported by detector operations. All operations are total: a failed
// calibration or classification leaves the detector's state untouched.
var (
	// ErrNoROI is returned when calibration is attempted before an ROI is set.
	ErrNoROI = errors.New("no roi set")

	// ErrNotCalibrated is returned by Classify when the ROI or the reference
	// image is missing.
	ErrNotCalibrated = errors.New("not calibrated")

	// ErrShapeMismatch is returned when two images to be scored differ in
	// dimensions.
	ErrShapeMismatch = errors.New("image shape mismatch")

	// ErrBadROI is returned for a degenerate rectangle, or one that does not
	// overlap the frame at calibration/classification time.
	ErrBadROI = errors.New("roi outside frame bounds")
)

// HistoryEntry records one door-status transition.
type HistoryEntry struct {
	Timestamp time.Time
	Status    Status
}

// Counts tracks the number of recorded transitions since the detector was
// created.
type Counts struct {
	Opened int
	Closed int
}
