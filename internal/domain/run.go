package domain

import "time"

// RunOutcome is the terminal state of a single job invocation.
type RunOutcome string

const (
	RunSkipped   RunOutcome = "SKIPPED"
	RunCompleted RunOutcome = "COMPLETED"
	RunFailed    RunOutcome = "FAILED"
)

// FailureKind identifies why a single patient could not be transferred.
type FailureKind string

const (
	FailureResolution FailureKind = "RESOLUTION_ERROR"
	FailureConflict   FailureKind = "TRANSFER_CONFLICT"
	FailureStore      FailureKind = "STORE_ERROR"
)

// TransferFailure records one patient-level failure with enough detail to
// diagnose later. Failures never abort the remainder of the run.
type TransferFailure struct {
	PatientID  string
	FromTeamID string
	ToTeamID   string
	Kind       FailureKind
	Message    string
}

// RunSummary is the externally observable result of one invocation.
type RunSummary struct {
	RunID        string
	Outcome      RunOutcome
	Scope        string
	NetworkID    string
	FireTime     time.Time
	StartedAt    time.Time
	FinishedAt   time.Time
	Scanned      int
	Transferred  int
	SkippedByAge int
	Failures     []TransferFailure
}
