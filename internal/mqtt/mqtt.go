// Package mqtt publishes door-status events with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/door-sentry/internal/detect"
)

// Topic is the MQTT topic for door transition events.
const Topic = "home/door/sensor/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/door/sensor/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a door transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(entry detect.HistoryEntry) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Door DoorPayload `json:"door"`
}

// DoorPayload contains the door transition details.
type DoorPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	State     string `json:"state"`
}

// FormatPayload creates the JSON payload for a door transition.
func FormatPayload(entry detect.HistoryEntry) ([]byte, error) {
	payload := Payload{
		Door: DoorPayload{
			Timestamp: entry.Timestamp.UTC().Format(time.RFC3339),
			Event:     eventName(entry.Status),
			State:     string(entry.Status),
		},
	}
	return json.Marshal(payload)
}

func eventName(st detect.Status) string {
	switch st {
	case detect.StatusOpen:
		return "DOOR_OPENED"
	case detect.StatusClosed:
		return "DOOR_CLOSED"
	}
	return "DOOR_UNKNOWN"
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status
// snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
