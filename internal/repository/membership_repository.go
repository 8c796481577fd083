package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrMembershipChanged is returned when the patient's membership no longer
// points at the expected source team. Callers treat this as "already
// handled", not as a hard failure.
var ErrMembershipChanged = errors.New("membership no longer on expected team")

// MembershipRepository performs the one write this service owns: moving a
// patient's team membership.
type MembershipRepository interface {
	Transfer(ctx context.Context, patientID, fromTeamID, toTeamID string) error
}

type membershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository constructs repository.
func NewMembershipRepository(pool *pgxpool.Pool) MembershipRepository {
	return &membershipRepository{pool: pool}
}

// Transfer replaces the membership row in place, conditioned on it still
// pointing at fromTeamID. A single UPDATE inside a transaction: there is
// never a window where the patient belongs to zero or two teams.
func (r *membershipRepository) Transfer(ctx context.Context, patientID, fromTeamID, toTeamID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE careteam_patients
        SET careteam_id=$1, assigned_at=NOW()
        WHERE careteam_id=$2 AND patient_id=$3`
	cmd, err := tx.Exec(ctx, query, toTeamID, fromTeamID, patientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMembershipChanged
	}

	return tx.Commit(ctx)
}
