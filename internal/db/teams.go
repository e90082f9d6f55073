package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const getTeam = `
SELECT id, tenant_id, name, shirt_color, number_color, logo_url, created_at
FROM teams
WHERE id = $1
`

// GetTeam returns a single team row.
func (q *Queries) GetTeam(ctx context.Context, id uuid.UUID) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeam, id)
	var t Team
	err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.ShirtColor, &t.NumberColor, &t.LogoURL, &t.CreatedAt)
	return t, err
}

const createTeam = `
INSERT INTO teams (id, tenant_id, name, shirt_color, number_color, logo_url)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, tenant_id, name, shirt_color, number_color, logo_url, created_at
`

type CreateTeamParams struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Name        string
	ShirtColor  string
	NumberColor string
	LogoURL     sql.NullString
}

// CreateTeam inserts a team row.
func (q *Queries) CreateTeam(ctx context.Context, arg CreateTeamParams) (Team, error) {
	row := q.db.QueryRowContext(ctx, createTeam,
		arg.ID, arg.TenantID, arg.Name, arg.ShirtColor, arg.NumberColor, arg.LogoURL)
	var t Team
	err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.ShirtColor, &t.NumberColor, &t.LogoURL, &t.CreatedAt)
	return t, err
}

const updateTeam = `
UPDATE teams SET name = $2, shirt_color = $3, number_color = $4, logo_url = $5
WHERE id = $1
RETURNING id, tenant_id, name, shirt_color, number_color, logo_url, created_at
`

type UpdateTeamParams struct {
	ID          uuid.UUID
	Name        string
	ShirtColor  string
	NumberColor string
	LogoURL     sql.NullString
}

// UpdateTeam persists the appearance fields of a team.
func (q *Queries) UpdateTeam(ctx context.Context, arg UpdateTeamParams) (Team, error) {
	row := q.db.QueryRowContext(ctx, updateTeam,
		arg.ID, arg.Name, arg.ShirtColor, arg.NumberColor, arg.LogoURL)
	var t Team
	err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.ShirtColor, &t.NumberColor, &t.LogoURL, &t.CreatedAt)
	return t, err
}
