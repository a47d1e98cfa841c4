package models

import (
	"encoding/json"
	"time"
)

// Live channel message types.
const (
	EventStepPulse = "step-pulse"
	EventUpdateUI  = "update-ui"
	EventError     = "error"
)

// Envelope is the JSON frame exchanged on the live channel.
type Envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Pulse is the reading shape produced by the piezo gateway.
type Pulse struct {
	DeviceID     string    `json:"device_id"`
	Timestamp    time.Time `json:"timestamp"`
	Voltage      float64   `json:"voltage"`
	StepDetected bool      `json:"step_detected"`
}
