package domain

import "time"

// Patient is owned by upstream clinical systems; this service only ever
// reads it. The sole thing it mutates is the patient's team membership.
type Patient struct {
	ID          string
	ExternalID  string
	DateOfBirth time.Time
	NetworkID   string
}

// TransferCandidate is one row of the eligibility scan: a patient currently
// assigned to a pediatric candidate team, plus the team they sit on.
type TransferCandidate struct {
	PatientID       string
	ExternalID      string
	DateOfBirth     time.Time
	PediatricTeamID string
}
