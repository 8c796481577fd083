package events

import (
	"time"

	"github.com/spec-kit/careteam-transfer/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRunStarted         EventType = "run_started"
	EventRunSkipped         EventType = "run_skipped"
	EventPatientTransferred EventType = "patient_transferred"
	EventTransferFailed     EventType = "transfer_failed"
	EventRunCompleted       EventType = "run_completed"
	EventRunFailed          EventType = "run_failed"
)

// Event represents a run-lifecycle event emitted by the transfer service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RunID     string      `json:"run_id"`
	Scope     string      `json:"scope"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RunStartedPayload payload.
type RunStartedPayload struct {
	NetworkID string    `json:"network_id"`
	Acronym   string    `json:"acronym"`
	FireTime  time.Time `json:"fire_time"`
}

// RunSkippedPayload payload.
type RunSkippedPayload struct {
	FireTime time.Time `json:"fire_time"`
	Reason   string    `json:"reason"`
}

// PatientTransferredPayload payload.
type PatientTransferredPayload struct {
	PatientID  string `json:"patient_id"`
	ExternalID string `json:"external_id"`
	FromTeamID string `json:"from_team_id"`
	ToTeamID   string `json:"to_team_id"`
	Age        int    `json:"age"`
}

// TransferFailedPayload payload.
type TransferFailedPayload struct {
	PatientID  string             `json:"patient_id"`
	FromTeamID string             `json:"from_team_id"`
	ToTeamID   string             `json:"to_team_id,omitempty"`
	Kind       domain.FailureKind `json:"kind"`
	Message    string             `json:"message"`
}

// RunFailedPayload payload.
type RunFailedPayload struct {
	FireTime time.Time `json:"fire_time"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
}

// RunCompletedPayload payload.
type RunCompletedPayload struct {
	Scanned      int `json:"scanned"`
	Transferred  int `json:"transferred"`
	SkippedByAge int `json:"skipped_by_age"`
	Failed       int `json:"failed"`
}
