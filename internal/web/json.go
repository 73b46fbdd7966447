package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sweeney/door-sentry/internal/detect"
)

// BasicResponse is the JSON envelope for control operations.
type BasicResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// StopResponse carries the harvested history when a live session stops.
type StopResponse struct {
	Success bool          `json:"success"`
	History []HistoryJSON `json:"history"`
}

// SensitivityResponse carries the threshold after an adjustment.
type SensitivityResponse struct {
	Success bool    `json:"success"`
	Value   float64 `json:"value"`
}

// FrameResponse carries a single base64-encoded JPEG still.
type FrameResponse struct {
	Success bool   `json:"success"`
	Frame   string `json:"frame"`
}

// UploadResponse carries the uploaded video's metadata and first frame.
type UploadResponse struct {
	Success     bool    `json:"success"`
	FirstFrame  string  `json:"first_frame"`
	TotalFrames int     `json:"total_frames"`
	FPS         float64 `json:"fps"`
	Filename    string  `json:"filename"`
}

// HistoryJSON is the JSON representation of one status transition.
type HistoryJSON struct {
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

// ROIRequest is the rectangle payload for the ROI endpoints, in pixel
// coordinates.
type ROIRequest struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SensitivityRequest selects an adjustment direction.
type SensitivityRequest struct {
	Action string `json:"action"` // "increase" or "decrease"
}

func historyJSON(entries []detect.HistoryEntry) []HistoryJSON {
	out := make([]HistoryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryJSON{
			Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
			Status:    string(e.Status),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// fail reports a control-operation failure as a structured result, never as
// an HTTP error status: all operations are total.
func fail(w http.ResponseWriter, message string) {
	writeJSON(w, BasicResponse{Success: false, Message: message})
}

func succeed(w http.ResponseWriter) {
	writeJSON(w, BasicResponse{Success: true})
}
