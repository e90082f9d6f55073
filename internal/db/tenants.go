package db

import (
	"context"

	"github.com/google/uuid"
)

const getTenantByPublicKey = `
SELECT id, public_key, access_token, active, blocked, created_at
FROM tenants
WHERE public_key = $1
`

// GetTenantByPublicKey looks a tenant up by its public channel key.
func (q *Queries) GetTenantByPublicKey(ctx context.Context, publicKey string) (Tenant, error) {
	row := q.db.QueryRowContext(ctx, getTenantByPublicKey, publicKey)
	var t Tenant
	err := row.Scan(&t.ID, &t.PublicKey, &t.AccessToken, &t.Active, &t.Blocked, &t.CreatedAt)
	return t, err
}

const getTenant = `
SELECT id, public_key, access_token, active, blocked, created_at
FROM tenants
WHERE id = $1
`

// GetTenant looks a tenant up by id.
func (q *Queries) GetTenant(ctx context.Context, id uuid.UUID) (Tenant, error) {
	row := q.db.QueryRowContext(ctx, getTenant, id)
	var t Tenant
	err := row.Scan(&t.ID, &t.PublicKey, &t.AccessToken, &t.Active, &t.Blocked, &t.CreatedAt)
	return t, err
}

const createTenant = `
INSERT INTO tenants (id, public_key, access_token, active, blocked)
VALUES ($1, $2, $3, true, false)
RETURNING id, public_key, access_token, active, blocked, created_at
`

type CreateTenantParams struct {
	ID          uuid.UUID
	PublicKey   string
	AccessToken string
}

// CreateTenant provisions a tenant. The unique constraints on public_key and
// access_token guarantee the identifiers never collide across tenants.
func (q *Queries) CreateTenant(ctx context.Context, arg CreateTenantParams) (Tenant, error) {
	row := q.db.QueryRowContext(ctx, createTenant, arg.ID, arg.PublicKey, arg.AccessToken)
	var t Tenant
	err := row.Scan(&t.ID, &t.PublicKey, &t.AccessToken, &t.Active, &t.Blocked, &t.CreatedAt)
	return t, err
}
