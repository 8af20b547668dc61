package postgresql

import (
	"context"

	"github.com/deskware/hr-backend-go/internal/pkg/authz"
	"github.com/deskware/hr-backend-go/internal/pkg/database"
)

type capabilityRepositoryImpl struct {
	db *database.DB
}

func NewCapabilityRepository(db *database.DB) authz.CapabilityRepository {
	return &capabilityRepositoryImpl{db: db}
}

// HasCapability implements authz.CapabilityRepository.
func (r *capabilityRepositoryImpl) HasCapability(ctx context.Context, actorID string, action authz.Action, resource authz.Resource) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM capabilities
			WHERE actor_id = $1 AND action = $2 AND resource = $3
		)
	`

	var ok bool
	if err := q.QueryRow(ctx, query, actorID, action, resource).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
