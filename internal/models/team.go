package models

import (
	"time"

	"github.com/google/uuid"
)

// Team is the cosmetic identity record referenced by a game's home/away
// slots. It is mutable independently of any specific game.
type Team struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	ShirtColor  string    `json:"shirt_color"`
	NumberColor string    `json:"number_color"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
