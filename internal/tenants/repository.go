package tenants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/scorecast/scorecast/internal/db"
	"github.com/scorecast/scorecast/internal/models"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	GetTenantByPublicKey(ctx context.Context, publicKey string) (db.Tenant, error)
	GetTenant(ctx context.Context, id uuid.UUID) (db.Tenant, error)
	CreateTenant(ctx context.Context, arg db.CreateTenantParams) (db.Tenant, error)
}

// Repository implements tenant data access operations
type Repository struct {
	queries Querier
}

// NewRepository creates a new tenants repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// GetByPublicKey retrieves a tenant by its public channel key. Returns
// (nil, nil) when no tenant matches; absence is an expected condition.
func (r *Repository) GetByPublicKey(ctx context.Context, publicKey string) (*models.Tenant, error) {
	dbTenant, err := r.queries.GetTenantByPublicKey(ctx, publicKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant by public key: %w", err)
	}
	return r.dbTenantToModel(dbTenant), nil
}

// Get retrieves a tenant by id, (nil, nil) on miss.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	dbTenant, err := r.queries.GetTenant(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return r.dbTenantToModel(dbTenant), nil
}

// Create provisions a new tenant with the given identifiers.
func (r *Repository) Create(ctx context.Context, publicKey, accessToken string) (*models.Tenant, error) {
	dbTenant, err := r.queries.CreateTenant(ctx, db.CreateTenantParams{
		ID:          uuid.New(),
		PublicKey:   publicKey,
		AccessToken: accessToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	return r.dbTenantToModel(dbTenant), nil
}

// dbTenantToModel converts a database tenant to domain model
func (r *Repository) dbTenantToModel(t db.Tenant) *models.Tenant {
	return &models.Tenant{
		ID:          t.ID,
		PublicKey:   t.PublicKey,
		AccessToken: t.AccessToken,
		Active:      t.Active,
		Blocked:     t.Blocked,
		CreatedAt:   t.CreatedAt,
	}
}
