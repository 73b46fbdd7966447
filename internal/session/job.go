package session

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/sweeney/door-sentry/internal/detect"
	"github.com/sweeney/door-sentry/internal/vision"
)

// ErrNoJob is returned by job operations before any video has been uploaded.
var ErrNoJob = errors.New("no video uploaded")

// UploadInfo is returned to the caller after a successful upload, carrying
// what the front-end needs for ROI selection.
type UploadInfo struct {
	FirstFrame  image.Image
	TotalFrames int
	FPS         float64
}

// job holds one uploaded video and its detector for offline analysis.
type job struct {
	path        string
	totalFrames int
	fps         float64
	det         *detect.Detector
}

// JobSlot tracks at most one video job at a time; a new upload replaces the
// previous job wholesale. All operations are serialized by the slot's mutex
// even though each request owner is usually the only caller, because the
// surrounding HTTP layer may dispatch concurrently.
type JobSlot struct {
	mu   sync.Mutex
	open vision.VideoOpener
	now  func() time.Time
	job  *job
}

// NewJobSlot creates an empty slot that opens videos through the given
// opener.
func NewJobSlot(open vision.VideoOpener, now func() time.Time) *JobSlot {
	if now == nil {
		now = time.Now
	}
	return &JobSlot{open: open, now: now}
}

// Upload opens the video at path, reads its metadata and first frame, and
// installs a fresh detector for it. Fails with ErrUnreadableVideo (wrapped by
// the opener) when the file cannot be opened or its first frame cannot be
// decoded.
func (s *JobSlot) Upload(path string) (UploadInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.open(path)
	if err != nil {
		return UploadInfo{}, err
	}
	defer v.Close()

	first, ok := v.Read()
	if !ok {
		return UploadInfo{}, vision.ErrUnreadableVideo
	}

	s.job = &job{
		path:        path,
		totalFrames: v.FrameCount(),
		fps:         v.FPS(),
		det:         detect.NewDetector(s.now),
	}
	return UploadInfo{FirstFrame: first, TotalFrames: s.job.totalFrames, FPS: s.job.fps}, nil
}

// SetROI delegates to the current job's detector.
func (s *JobSlot) SetROI(r image.Rectangle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return ErrNoJob
	}
	return s.job.det.SetROI(r)
}

// Calibrate re-opens the video and calibrates the job's detector against its
// first frame.
func (s *JobSlot) Calibrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return ErrNoJob
	}

	v, err := s.open(s.job.path)
	if err != nil {
		return err
	}
	defer v.Close()

	frame, ok := v.Read()
	if !ok {
		return vision.ErrUnreadableVideo
	}
	return s.job.det.CalibrateClosed(frame)
}

// OpenPlayback re-opens the video for a playback stream and returns the
// handle together with the job's detector. The caller owns the handle and
// must close it when the stream ends.
func (s *JobSlot) OpenPlayback() (vision.Video, *detect.Detector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return nil, nil, ErrNoJob
	}
	v, err := s.open(s.job.path)
	if err != nil {
		return nil, nil, err
	}
	return v, s.job.det, nil
}

// History returns the current job's transition history.
func (s *JobSlot) History() ([]detect.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return nil, ErrNoJob
	}
	return s.job.det.History(), nil
}
