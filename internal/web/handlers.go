package web

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sweeney/door-sentry/internal/detect"
	"github.com/sweeney/door-sentry/internal/session"
	"github.com/sweeney/door-sentry/internal/vision"
)

// maxUploadBytes bounds in-memory parsing of video uploads.
const maxUploadBytes = 256 << 20

func (s *Server) handleLiveStart(w http.ResponseWriter, r *http.Request) {
	if !post(w, r) {
		return
	}
	if err := s.live.Start(); err != nil {
		switch {
		case errors.Is(err, session.ErrAlreadyActive):
			fail(w, "Already running")
		case errors.Is(err, vision.ErrCameraUnavailable):
			fail(w, "Camera not available")
		default:
			fail(w, err.Error())
		}
		return
	}
	s.tracker.SetLiveActive(true)
	log.Printf("live session started")
	writeJSON(w, BasicResponse{Success: true, Message: "Live detection started"})
}

func (s *Server) handleLiveStop(w http.ResponseWriter, r *http.Request) {
	if !post(w, r) {
		return
	}
	history := s.live.Stop()
	s.tracker.SetLiveActive(false)
	log.Printf("live session stopped, %d transitions recorded", len(history))
	writeJSON(w, StopResponse{Success: true, History: historyJSON(history)})
}

func (s *Server) handleLiveFrame(w http.ResponseWriter, r *http.Request) {
	buf, err := s.live.StillFrame()
	if err != nil {
		fail(w, "No frame available")
		return
	}
	writeJSON(w, FrameResponse{Success: true, Frame: base64.StdEncoding.EncodeToString(buf)})
}

func (s *Server) handleLiveROI(w http.ResponseWriter, r *http.Request) {
	if !post(w, r) {
		return
	}
	rect, ok := decodeROI(w, r)
	if !ok {
		return
	}
	if err := s.live.SetROI(rect); err != nil {
		failROI(w, err)
		return
	}
	succeed(w)
}

func (s *Server) handleLiveCalibrate(w http.ResponseWriter, r *http.Request) {
	if !post(w, r) {
		return
	}
	if err := s.live.Calibrate(); err != nil {
		switch {
		case errors.Is(err, session.ErrNotReady), errors.Is(err, session.ErrNotActive):
			fail(w, "Not ready")
		case errors.Is(err, detect.ErrNoROI):
			fail(w, "No ROI set")
		default:
			fail(w, err.Error())
		}
		return
	}
	log.Printf("live detector calibrated")
	succeed(w)
}

func (s *Server) handleLiveSensitivity(w http.ResponseWriter, r *http.Request) {
	if !post(w, r) {
		return
	}
	var req SensitivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, "Bad request")
		return
	}
	dir := detect.Direction(req.Action)
	if dir != detect.Increase && dir != detect.Decrease {
		fail(w, "Unknown action")
		return
	}
	value, err := s.live.AdjustSensitivity(dir)
	if err != nil {
		fail(w, "Not ready")
		return
	}
	writeJSON(w, SensitivityResponse{Success: true, Value: value})
}

func (s *Server) handleVideoUpload(w http.ResponseWriter, r *http.Request) {
	if !post(w, r) {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		fail(w, "Bad upload")
		return
	}
	file, header, err := r.FormFile("video")
	if err != nil {
		fail(w, "No video file")
		return
	}
	defer file.Close()

	path, err := s.saveUpload(file, header.Filename)
	if err != nil {
		log.Printf("save upload: %v", err)
		fail(w, "Could not save video")
		return
	}

	info, err := s.jobs.Upload(path)
	if err != nil {
		fail(w, "Could not read video")
		return
	}

	first, err := vision.EncodeJPEG(info.FirstFrame)
	if err != nil {
		fail(w, "Could not encode first frame")
		return
	}

	log.Printf("video uploaded: %s (%d frames, %.1f fps)", filepath.Base(path), info.TotalFrames, info.FPS)
	writeJSON(w, UploadResponse{
		Success:     true,
		FirstFrame:  base64.StdEncoding.EncodeToString(first),
		TotalFrames: info.TotalFrames,
		FPS:         info.FPS,
		Filename:    filepath.Base(path),
	})
}

func (s *Server) handleVideoROI(w http.ResponseWriter, r *http.Request) {
	if !post(w, r) {
		return
	}
	rect, ok := decodeROI(w, r)
	if !ok {
		return
	}
	if err := s.jobs.SetROI(rect); err != nil {
		failROI(w, err)
		return
	}
	succeed(w)
}

func (s *Server) handleVideoCalibrate(w http.ResponseWriter, r *http.Request) {
	if !post(w, r) {
		return
	}
	if err := s.jobs.Calibrate(); err != nil {
		switch {
		case errors.Is(err, session.ErrNoJob):
			fail(w, "Not ready")
		case errors.Is(err, vision.ErrUnreadableVideo):
			fail(w, "Could not read video")
		case errors.Is(err, detect.ErrNoROI):
			fail(w, "No ROI set")
		default:
			fail(w, err.Error())
		}
		return
	}
	log.Printf("video detector calibrated")
	succeed(w)
}

// saveUpload writes the uploaded video under the uploads dir, using only the
// base name of the client-supplied filename.
func (s *Server) saveUpload(src io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		name = "upload.bin"
	}
	path := filepath.Join(s.uploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}

func decodeROI(w http.ResponseWriter, r *http.Request) (image.Rectangle, bool) {
	var req ROIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, "Bad request")
		return image.Rectangle{}, false
	}
	return image.Rect(req.X, req.Y, req.X+req.Width, req.Y+req.Height), true
}

func failROI(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotReady), errors.Is(err, session.ErrNoJob):
		fail(w, "Detector not initialized")
	case errors.Is(err, detect.ErrBadROI):
		fail(w, "Invalid ROI")
	default:
		fail(w, err.Error())
	}
}

func post(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
