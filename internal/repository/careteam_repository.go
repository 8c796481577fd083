package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAmbiguousAdultTeam is returned when more than one adult candidate
// team matches a pediatric team's facility and program; picking one
// arbitrarily would hide a data-integrity violation.
var ErrAmbiguousAdultTeam = errors.New("multiple adult candidate teams match")

// CareTeamRepository manages care team lookups.
type CareTeamRepository interface {
	ResolveAdultTeam(ctx context.Context, pediatricTeamID, diseaseType string) (string, error)
}

type careTeamRepository struct {
	pool *pgxpool.Pool
}

// NewCareTeamRepository constructs repository.
func NewCareTeamRepository(pool *pgxpool.Pool) CareTeamRepository {
	return &careTeamRepository{pool: pool}
}

// ResolveAdultTeam finds the adult candidate team in the same facility as
// the given pediatric team, for the given program. Returns pgx.ErrNoRows
// when none exists and ErrAmbiguousAdultTeam when the uniqueness invariant
// is violated.
func (r *careTeamRepository) ResolveAdultTeam(ctx context.Context, pediatricTeamID, diseaseType string) (string, error) {
	const query = `
        SELECT ct.id
        FROM careteams ct
        WHERE ct.is_candidate_team
          AND ct.age_category = 'Adult'
          AND ct.disease_type = $2
          AND ct.facility_id = (SELECT facility_id FROM careteams WHERE id = $1)`
	rows, err := r.pool.Query(ctx, query, pediatricTeamID, diseaseType)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", pgx.ErrNoRows
	case 1:
		return ids[0], nil
	default:
		return "", ErrAmbiguousAdultTeam
	}
}
