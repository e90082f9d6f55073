package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an isolated owner of at most one active game. PublicKey is safe
// to embed in viewer URLs; AccessToken proves owner access and must never be
// sent to viewers.
type Tenant struct {
	ID          uuid.UUID `json:"id"`
	PublicKey   string    `json:"public_key"`
	AccessToken string    `json:"-"`
	Active      bool      `json:"active"`
	Blocked     bool      `json:"blocked"`
	CreatedAt   time.Time `json:"created_at"`
}
