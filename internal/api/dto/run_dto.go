package dto

import (
	"time"

	"github.com/spec-kit/careteam-transfer/internal/domain"
)

// TriggerRequest is the invocation record a scheduler posts to fire a run.
type TriggerRequest struct {
	FireTime *time.Time `json:"fire_time"`
	Scope    string     `json:"scope"`
}

// TransferFailureResponse describes one patient-level failure.
type TransferFailureResponse struct {
	PatientID  string `json:"patient_id"`
	FromTeamID string `json:"from_team_id"`
	ToTeamID   string `json:"to_team_id,omitempty"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
}

// RunSummaryResponse is the outcome of one invocation.
type RunSummaryResponse struct {
	RunID        string                    `json:"run_id"`
	Outcome      string                    `json:"outcome"`
	Scope        string                    `json:"scope"`
	NetworkID    string                    `json:"network_id,omitempty"`
	FireTime     time.Time                 `json:"fire_time"`
	StartedAt    time.Time                 `json:"started_at"`
	FinishedAt   time.Time                 `json:"finished_at"`
	Scanned      int                       `json:"scanned"`
	Transferred  int                       `json:"transferred"`
	SkippedByAge int                       `json:"skipped_by_age"`
	Failures     []TransferFailureResponse `json:"failures,omitempty"`
}

// FromRunSummary maps the domain summary to its response shape.
func FromRunSummary(summary *domain.RunSummary) RunSummaryResponse {
	resp := RunSummaryResponse{
		RunID:        summary.RunID,
		Outcome:      string(summary.Outcome),
		Scope:        summary.Scope,
		NetworkID:    summary.NetworkID,
		FireTime:     summary.FireTime,
		StartedAt:    summary.StartedAt,
		FinishedAt:   summary.FinishedAt,
		Scanned:      summary.Scanned,
		Transferred:  summary.Transferred,
		SkippedByAge: summary.SkippedByAge,
	}
	for _, failure := range summary.Failures {
		resp.Failures = append(resp.Failures, TransferFailureResponse{
			PatientID:  failure.PatientID,
			FromTeamID: failure.FromTeamID,
			ToTeamID:   failure.ToTeamID,
			Kind:       string(failure.Kind),
			Message:    failure.Message,
		})
	}
	return resp
}
