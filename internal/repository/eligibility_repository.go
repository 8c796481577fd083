package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/careteam-transfer/internal/domain"
)

// EligibilityRepository finds patients currently sitting on pediatric
// candidate teams within a network scope.
type EligibilityRepository interface {
	FindCandidates(ctx context.Context, networkID string) ([]domain.TransferCandidate, error)
}

type eligibilityRepository struct {
	pool *pgxpool.Pool
}

// NewEligibilityRepository constructs repository.
func NewEligibilityRepository(pool *pgxpool.Pool) EligibilityRepository {
	return &eligibilityRepository{pool: pool}
}

// FindCandidates returns one row per patient on a pediatric candidate team
// in the given network. Ordered by patient id so re-runs scan in the same
// order. An empty scope yields an empty slice, not an error.
func (r *eligibilityRepository) FindCandidates(ctx context.Context, networkID string) ([]domain.TransferCandidate, error) {
	const query = `
        SELECT p.id, p.external_id, p.date_of_birth, ct.id
        FROM patients p
        JOIN careteam_patients cp ON cp.patient_id = p.id
        JOIN careteams ct ON ct.id = cp.careteam_id
        WHERE ct.is_candidate_team
          AND ct.age_category = 'Pediatric'
          AND p.network_id = $1
        ORDER BY p.id`
	rows, err := r.pool.Query(ctx, query, networkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TransferCandidate
	for rows.Next() {
		var c domain.TransferCandidate
		if err := rows.Scan(&c.PatientID, &c.ExternalID, &c.DateOfBirth, &c.PediatricTeamID); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
