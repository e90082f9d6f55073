package tenants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/scorecast/scorecast/internal/models"
)

// ErrUnauthorized is returned for every failed access check. Callers must not
// learn whether the key was unknown, the tenant blocked or deactivated, or the
// token wrong.
var ErrUnauthorized = errors.New("tenant not found or unauthorized")

// TenantRepository defines what the app layer needs from the repository
type TenantRepository interface {
	GetByPublicKey(ctx context.Context, publicKey string) (*models.Tenant, error)
	Create(ctx context.Context, publicKey, accessToken string) (*models.Tenant, error)
}

// App implements tenant access validation. Checks run on every request, so a
// tenant that becomes blocked loses access on its next poll or mutation with
// no connection-level callbacks.
type App struct {
	repo TenantRepository
}

// NewApp creates a new tenants App
func NewApp(repo TenantRepository) *App {
	return &App{repo: repo}
}

// ResolveViewer resolves a tenant for the read/subscribe surface. The token
// is optional: absent means access by public key alone (viewer deep links),
// present means it must match.
func (a *App) ResolveViewer(ctx context.Context, publicKey, token string) (uuid.UUID, error) {
	return a.resolve(ctx, publicKey, token, false)
}

// ResolveController resolves a tenant for the mutation surface. The private
// access token is required.
func (a *App) ResolveController(ctx context.Context, publicKey, token string) (uuid.UUID, error) {
	return a.resolve(ctx, publicKey, token, true)
}

func (a *App) resolve(ctx context.Context, publicKey, token string, tokenRequired bool) (uuid.UUID, error) {
	tenant, err := a.repo.GetByPublicKey(ctx, publicKey)
	if err != nil {
		log.Error().Err(err).Msg("tenant lookup failed")
		return uuid.Nil, ErrUnauthorized
	}
	if tenant == nil || !tenant.Active || tenant.Blocked {
		return uuid.Nil, ErrUnauthorized
	}
	if tokenRequired && token == "" {
		return uuid.Nil, ErrUnauthorized
	}
	if token != "" && token != tenant.AccessToken {
		return uuid.Nil, ErrUnauthorized
	}
	return tenant.ID, nil
}

// Provision creates a tenant with the given public key and access token.
func (a *App) Provision(ctx context.Context, publicKey, accessToken string) (uuid.UUID, error) {
	tenant, err := a.repo.Create(ctx, publicKey, accessToken)
	if err != nil {
		return uuid.Nil, err
	}
	log.Info().Str("tenant_id", tenant.ID.String()).Msg("tenant provisioned")
	return tenant.ID, nil
}
