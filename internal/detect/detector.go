package detect

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sweeney/door-sentry/internal/overlay"
)

// Detector classifies a door as OPEN or CLOSED by comparing live frames
// against a calibrated closed-door reference. A detector is created fresh for
// each live session or video job and discarded with it; there is no stop
// operation. Safe for concurrent use: HTTP control handlers and a frame
// stream may share one instance.
type Detector struct {
	mu        sync.Mutex
	roi       image.Rectangle
	hasROI    bool
	reference *image.Gray
	status    Status
	threshold float64
	history   []HistoryEntry
	counts    Counts
	now       func() time.Time
}

// Result is the outcome of a single classification.
type Result struct {
	Status    Status
	ChangePct float64
	// Vis is nil when classification failed.
	Vis *Visualization
	// Transition is non-nil when this classification was recorded in the
	// history, so callers can forward the event without knowing about
	// transports.
	Transition *HistoryEntry
}

// Visualization is the diagnostic rendering built on every successful
// classification.
type Visualization struct {
	// ROI is the cropped door region annotated with the change percentage
	// and status label.
	ROI *image.RGBA
	// DiffMap is the false-colored absolute difference image.
	DiffMap *image.RGBA
	// Mask is the raw binary difference mask.
	Mask *image.Gray
}

// NewDetector creates an uncalibrated detector with the default threshold.
// The now function supplies history timestamps.
func NewDetector(now func() time.Time) *Detector {
	if now == nil {
		now = time.Now
	}
	return &Detector{
		status:    StatusUncalibrated,
		threshold: DefaultThreshold,
		now:       now,
	}
}

// SetROI replaces the door region unconditionally. Setting an ROI does not
// invalidate an existing reference; a subsequent classification with a
// different-sized ROI fails with ErrShapeMismatch until recalibrated.
func (d *Detector) SetROI(r image.Rectangle) error {
	r = r.Canon()
	if r.Dx() <= 0 || r.Dy() <= 0 {
		return ErrBadROI
	}
	d.mu.Lock()
	d.roi = r
	d.hasROI = true
	d.mu.Unlock()
	return nil
}

// ROI returns the configured door region, if any.
func (d *Detector) ROI() (image.Rectangle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.roi, d.hasROI
}

// CalibrateClosed captures what the door looks like when closed. The frame is
// cropped to the ROI, grayscaled and blurred, and stored wholesale as the new
// reference; the last call wins.
func (d *Detector) CalibrateClosed(frame image.Image) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasROI {
		return ErrNoROI
	}
	ref, err := cropGrayBlur(frame, d.roi)
	if err != nil {
		return err
	}
	d.reference = ref
	return nil
}

// Calibrated reports whether both an ROI and a reference are set.
func (d *Detector) Calibrated() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasROI && d.reference != nil
}

// Classify scores a frame against the reference and updates the detector
// status. A transition (any status differing from the last recorded entry,
// including the very first classification) is appended to the history with
// the current wall-clock timestamp. When the detector is not calibrated it
// returns StatusUncalibrated with ErrNotCalibrated and no side effects; a
// preprocessing or scoring failure likewise leaves status and history
// untouched.
func (d *Detector) Classify(frame image.Image) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.hasROI || d.reference == nil {
		return Result{Status: StatusUncalibrated}, ErrNotCalibrated
	}

	cur, err := cropGrayBlur(frame, d.roi)
	if err != nil {
		return Result{Status: StatusUncalibrated}, err
	}
	pct, mask, err := Score(d.reference, cur)
	if err != nil {
		return Result{Status: StatusUncalibrated}, err
	}

	status := d.statusFor(pct)
	d.status = status

	res := Result{Status: status, ChangePct: pct}
	if n := len(d.history); n == 0 || d.history[n-1].Status != status {
		entry := HistoryEntry{Timestamp: d.now(), Status: status}
		d.history = append(d.history, entry)
		if status == StatusOpen {
			d.counts.Opened++
		} else {
			d.counts.Closed++
		}
		res.Transition = &entry
	}

	res.Vis = d.visualize(frame, pct, status, cur, mask)
	return res, nil
}

// statusFor applies the threshold rule: a change percentage strictly above
// the threshold means OPEN, the boundary value itself is CLOSED.
func (d *Detector) statusFor(pct float64) Status {
	if pct > d.threshold {
		return StatusOpen
	}
	return StatusClosed
}

// visualize builds the annotated ROI crop and the false-colored diff map.
// Called with the lock held.
func (d *Detector) visualize(frame image.Image, pct float64, status Status, cur *image.Gray, mask *image.Gray) *Visualization {
	vis := cropRGBA(frame, d.roi)
	c := overlay.Red
	if status == StatusClosed {
		c = overlay.Green
	}
	overlay.Label(vis, fmt.Sprintf("Change: %.1f%%", pct), 10, 30, c)
	overlay.Label(vis, string(status), 10, 60, c)
	return &Visualization{
		ROI:     vis,
		DiffMap: overlay.Colormap(absDiff(d.reference, cur)),
		Mask:    mask,
	}
}

// SetThreshold sets the change-percentage boundary, clamped to the
// adjustable range.
func (d *Detector) SetThreshold(v float64) {
	d.mu.Lock()
	d.threshold = clampThreshold(v)
	d.mu.Unlock()
}

// AdjustSensitivity moves the threshold one step and returns the new value.
// Increasing sensitivity lowers the threshold and vice versa; both directions
// clamp at the range bounds.
func (d *Detector) AdjustSensitivity(dir Direction) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch dir {
	case Increase:
		d.threshold = clampThreshold(d.threshold - SensitivityStep)
	case Decrease:
		d.threshold = clampThreshold(d.threshold + SensitivityStep)
	}
	return d.threshold
}

// Threshold returns the current change-percentage boundary.
func (d *Detector) Threshold() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.threshold
}

// Status returns the result of the most recent classification.
func (d *Detector) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// History returns a snapshot copy of the recorded transitions.
func (d *Detector) History() []HistoryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]HistoryEntry, len(d.history))
	copy(out, d.history)
	return out
}

// CountsSnapshot returns the transition counts so far.
func (d *Detector) CountsSnapshot() Counts {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts
}

func clampThreshold(v float64) float64 {
	if v < MinThreshold {
		return MinThreshold
	}
	if v > MaxThreshold {
		return MaxThreshold
	}
	return v
}
