package tenants

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Service exposes tenant provisioning on an operator-only route. The shared
// admin token is deployment config, not tenant data.
type Service struct {
	app        *App
	adminToken string
}

// NewService creates a new tenants Service. An empty admin token disables
// the provisioning route entirely.
func NewService(app *App, adminToken string) *Service {
	return &Service{
		app:        app,
		adminToken: adminToken,
	}
}

type provisionRequest struct {
	PublicKey   string `json:"public_key"`
	AccessToken string `json:"access_token"`
}

// RegisterRoutes registers the admin provisioning route.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/admin/tenants", s.handleProvision)
}

func (s *Service) handleProvision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var body provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.PublicKey == "" || body.AccessToken == "" {
		http.Error(w, "public_key and access_token are required", http.StatusBadRequest)
		return
	}

	tenantID, err := s.app.Provision(r.Context(), body.PublicKey, body.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("tenant provisioning failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(map[string]string{"tenant_id": tenantID.String()}); err != nil {
		log.Error().Err(err).Msg("failed to encode provision response")
	}
}

func (s *Service) authorized(r *http.Request) bool {
	if s.adminToken == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) == 1
}
