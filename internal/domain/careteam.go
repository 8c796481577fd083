package domain

// AgeCategory classifies a care team by the age band it serves.
type AgeCategory string

const (
	AgeCategoryPediatric AgeCategory = "Pediatric"
	AgeCategoryAdult     AgeCategory = "Adult"
)

// CareTeam represents a clinical team within a facility. Candidate teams
// are the only valid sources and targets for the age-transfer process.
type CareTeam struct {
	ID              string
	FacilityID      string
	NetworkID       string
	Name            string
	IsCandidateTeam bool
	AgeCategory     AgeCategory
	DiseaseType     string
}
