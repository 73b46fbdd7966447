package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/door-sentry/internal/detect"
)

func TestFormatPayload(t *testing.T) {
	entry := detect.HistoryEntry{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Status:    detect.StatusOpen,
	}

	payload, err := FormatPayload(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Door.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Door.Timestamp)
	}
	if parsed.Door.Event != "DOOR_OPENED" {
		t.Errorf("unexpected event: %s", parsed.Door.Event)
	}
	if parsed.Door.State != "OPEN" {
		t.Errorf("unexpected state: %s", parsed.Door.State)
	}
}

func TestFormatPayloadAllStatuses(t *testing.T) {
	tests := []struct {
		status    detect.Status
		wantEvent string
		wantState string
	}{
		{detect.StatusOpen, "DOOR_OPENED", "OPEN"},
		{detect.StatusClosed, "DOOR_CLOSED", "CLOSED"},
		{detect.StatusUncalibrated, "DOOR_UNKNOWN", "UNCALIBRATED"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			payload, err := FormatPayload(detect.HistoryEntry{
				Timestamp: time.Now(),
				Status:    tt.status,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			if parsed.Door.Event != tt.wantEvent {
				t.Errorf("event: got %s, want %s", parsed.Door.Event, tt.wantEvent)
			}
			if parsed.Door.State != tt.wantState {
				t.Errorf("state: got %s, want %s", parsed.Door.State, tt.wantState)
			}
		})
	}
}

func TestFormatPayloadTimestampUTC(t *testing.T) {
	// Non-UTC timestamps are normalized to UTC in the payload.
	loc := time.FixedZone("CET", 3600)
	entry := detect.HistoryEntry{
		Timestamp: time.Date(2026, 2, 2, 23, 18, 12, 0, loc),
		Status:    detect.StatusClosed,
	}

	payload, err := FormatPayload(entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Door.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Door.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed SystemPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.System.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.System.Timestamp)
	}
	if parsed.System.Event != "SHUTDOWN" {
		t.Errorf("unexpected event: %s", parsed.System.Event)
	}
	if parsed.System.Reason != "SIGTERM" {
		t.Errorf("unexpected reason: %s", parsed.System.Reason)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "STARTUP",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, present := raw["system"]["reason"]; present {
		t.Error("empty reason should be omitted from the payload")
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{"door":"CLOSED"}}`)
	payload, err := FormatSystemPayload(SystemEvent{RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload should pass through unchanged, got %s", payload)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	pub := NewFakePublisher()

	entry := detect.HistoryEntry{
		Timestamp: time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC),
		Status:    detect.StatusOpen,
	}
	if err := pub.Publish(entry); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(pub.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(pub.Entries))
	}
	if pub.Entries[0].Status != detect.StatusOpen {
		t.Errorf("unexpected recorded status: %s", pub.Entries[0].Status)
	}
	if len(pub.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(pub.Payloads))
	}

	if err := pub.PublishSystem(SystemEvent{Event: "STARTUP"}); err != nil {
		t.Fatalf("PublishSystem failed: %v", err)
	}
	if len(pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(pub.SystemEvents))
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !pub.Closed {
		t.Error("Closed flag not set")
	}

	pub.Reset()
	if len(pub.Entries) != 0 || len(pub.SystemEvents) != 0 || pub.Closed {
		t.Error("Reset should clear all recorded state")
	}
}

func TestFakePublisherErrors(t *testing.T) {
	pub := NewFakePublisher()
	wantErr := errors.New("broker down")
	pub.PublishError = wantErr

	err := pub.Publish(detect.HistoryEntry{Status: detect.StatusOpen})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected injected error, got %v", err)
	}
	if len(pub.Entries) != 0 {
		t.Error("failed publish should not record the entry")
	}
}
