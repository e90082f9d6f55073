package tenants

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/scorecast/scorecast/internal/models"
)

type fakeTenantRepo struct {
	tenants map[string]*models.Tenant
	err     error
}

func (f *fakeTenantRepo) GetByPublicKey(ctx context.Context, publicKey string) (*models.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tenants[publicKey], nil
}

func (f *fakeTenantRepo) Create(ctx context.Context, publicKey, accessToken string) (*models.Tenant, error) {
	tenant := &models.Tenant{ID: uuid.New(), PublicKey: publicKey, AccessToken: accessToken, Active: true}
	f.tenants[publicKey] = tenant
	return tenant, nil
}

func TestResolveViewer(t *testing.T) {
	tenantID := uuid.New()
	repo := &fakeTenantRepo{tenants: map[string]*models.Tenant{
		"club-abc": {ID: tenantID, PublicKey: "club-abc", AccessToken: "secret", Active: true},
		"inactive": {ID: uuid.New(), PublicKey: "inactive", AccessToken: "secret", Active: false},
		"blocked":  {ID: uuid.New(), PublicKey: "blocked", AccessToken: "secret", Active: true, Blocked: true},
	}}
	app := NewApp(repo)

	tests := []struct {
		name      string
		publicKey string
		token     string
		wantErr   bool
	}{
		{name: "key alone is enough", publicKey: "club-abc", wantErr: false},
		{name: "matching token accepted", publicKey: "club-abc", token: "secret", wantErr: false},
		{name: "wrong token rejected even for viewers", publicKey: "club-abc", token: "nope", wantErr: true},
		{name: "unknown key", publicKey: "missing", wantErr: true},
		{name: "inactive tenant", publicKey: "inactive", wantErr: true},
		{name: "blocked tenant", publicKey: "blocked", token: "secret", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := app.ResolveViewer(context.Background(), tt.publicKey, tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrUnauthorized) {
					t.Fatalf("err = %v, want ErrUnauthorized", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tenantID {
				t.Fatalf("tenant ID = %s, want %s", got, tenantID)
			}
		})
	}
}

func TestResolveControllerRequiresToken(t *testing.T) {
	tenantID := uuid.New()
	repo := &fakeTenantRepo{tenants: map[string]*models.Tenant{
		"club-abc": {ID: tenantID, PublicKey: "club-abc", AccessToken: "secret", Active: true},
	}}
	app := NewApp(repo)

	if _, err := app.ResolveController(context.Background(), "club-abc", ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("missing token: err = %v, want ErrUnauthorized", err)
	}
	if _, err := app.ResolveController(context.Background(), "club-abc", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong token: err = %v, want ErrUnauthorized", err)
	}
	got, err := app.ResolveController(context.Background(), "club-abc", "secret")
	if err != nil {
		t.Fatalf("valid token: %v", err)
	}
	if got != tenantID {
		t.Fatalf("tenant ID = %s, want %s", got, tenantID)
	}
}

// Storage failures must look exactly like a bad key to the caller.
func TestResolveCollapsesRepoErrors(t *testing.T) {
	repo := &fakeTenantRepo{tenants: map[string]*models.Tenant{}, err: errors.New("db down")}
	app := NewApp(repo)

	if _, err := app.ResolveViewer(context.Background(), "club-abc", ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
