package teams

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/scorecast/scorecast/internal/tenants"
)

// Service exposes the team appearance mutation over HTTP.
type Service struct {
	app     *App
	tenants *tenants.App
}

// NewService creates a new teams Service.
func NewService(app *App, tenantsApp *tenants.App) *Service {
	return &Service{
		app:     app,
		tenants: tenantsApp,
	}
}

type updateTeamBody struct {
	Key  string            `json:"key"`
	Team UpdateTeamRequest `json:"team"`
}

// RegisterRoutes registers the team mutation route.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/control/team", s.handleUpdateTeam)
}

func (s *Service) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body updateTeamBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	tenantID, err := s.tenants.ResolveController(r.Context(), body.Key, token)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	team, err := s.app.UpdateTeam(r.Context(), tenantID, body.Team)
	if err != nil {
		log.Error().Err(err).Msg("team update failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if team == nil {
		w.Write([]byte(`{"ok":true,"updated":false}`))
		return
	}
	if err := json.NewEncoder(w).Encode(team); err != nil {
		log.Error().Err(err).Msg("failed to encode team response")
	}
}
