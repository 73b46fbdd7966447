package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event           string     `json:"event,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	Door            string     `json:"door"`
	ChangePct       float64    `json:"change_pct"`
	Threshold       float64    `json:"threshold"`
	LiveActive      bool       `json:"live_active"`
	FramesProcessed int64      `json:"frames_processed"`
	UptimeSeconds   int64      `json:"uptime_seconds"`
	StartTime       string     `json:"start_time"`
	Timestamp       string     `json:"timestamp"`
	MQTT            MQTTStatus `json:"mqtt"`
	Counts          CountsJSON `json:"transition_counts"`
	Config          ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of transition counts.
type CountsJSON struct {
	Opened int `json:"opened"`
	Closed int `json:"closed"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Device       int    `json:"device"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
	UploadDir    string `json:"upload_dir"`
	IndicatorPin int    `json:"indicator_pin"`
}

func buildInner(snap Snapshot) StatusInner {
	door := string(snap.Door)
	if door == "" {
		door = "UNCALIBRATED"
	}

	return StatusInner{
		Door:            door,
		ChangePct:       snap.ChangePct,
		Threshold:       snap.Threshold,
		LiveActive:      snap.LiveActive,
		FramesProcessed: snap.FramesProcessed,
		UptimeSeconds:   int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:       snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:       snap.Now.UTC().Format(time.RFC3339),
		MQTT:            MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Opened: snap.Counts.Opened,
			Closed: snap.Counts.Closed,
		},
		Config: ConfigJSON{
			Device:       snap.Config.Device,
			Width:        snap.Config.Width,
			Height:       snap.Config.Height,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			UploadDir:    snap.Config.UploadDir,
			IndicatorPin: snap.Config.IndicatorPin,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
