package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/careteam-transfer/internal/domain"
)

// NetworkRepository resolves network scopes for transfer runs.
type NetworkRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Network, error)
}

type networkRepository struct {
	pool *pgxpool.Pool
}

// NewNetworkRepository constructs repository.
func NewNetworkRepository(pool *pgxpool.Pool) NetworkRepository {
	return &networkRepository{pool: pool}
}

func (r *networkRepository) GetByName(ctx context.Context, name string) (*domain.Network, error) {
	const query = `
        SELECT id, name, acronym
        FROM networks WHERE name=$1`
	var network domain.Network
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&network.ID,
		&network.Name,
		&network.Acronym,
	); err != nil {
		return nil, err
	}
	return &network, nil
}
