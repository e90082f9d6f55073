package scoreboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/scorecast/scorecast/internal/models"
	"github.com/scorecast/scorecast/internal/tenants"
)

// Service exposes the mutation surface as JSON-over-HTTP handlers. Every
// request carries the tenant's public key in the body and the private access
// token as a bearer credential; both must check out before any write.
type Service struct {
	app     *App
	tenants *tenants.App
}

// NewService creates a new scoreboard Service.
func NewService(app *App, tenantsApp *tenants.App) *Service {
	return &Service{
		app:     app,
		tenants: tenantsApp,
	}
}

type controlRequest struct {
	Key               string `json:"key"`
	Seconds           *int   `json:"seconds,omitempty"`
	CountDown         *bool  `json:"count_down,omitempty"`
	IsHome            *bool  `json:"is_home,omitempty"`
	IsYellow          *bool  `json:"is_yellow,omitempty"`
	Value             *int   `json:"value,omitempty"`
	Status            string `json:"status,omitempty"`
	Period            string `json:"period,omitempty"`
	HalfLengthSec     *int   `json:"half_length_sec,omitempty"`
	OvertimeLengthSec *int   `json:"overtime_length_sec,omitempty"`
	Result            string `json:"result,omitempty"`

	Game *CreateGameRequest `json:"game,omitempty"`
}

// RegisterRoutes registers the controller mutation routes.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/control/timer/start", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		return s.app.StartTimer(req.Context(), id)
	}))
	mux.HandleFunc("/api/control/timer/stop", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		return s.app.StopTimer(req.Context(), id)
	}))
	mux.HandleFunc("/api/control/timer/reset", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		return s.app.ResetTimer(req.Context(), id)
	}))
	mux.HandleFunc("/api/control/timer/set", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		if r.Seconds == nil {
			return errBadRequest
		}
		return s.app.SetTimer(req.Context(), id, *r.Seconds)
	}))
	mux.HandleFunc("/api/control/timer/mode", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		if r.CountDown == nil {
			return errBadRequest
		}
		return s.app.SetTimerMode(req.Context(), id, *r.CountDown)
	}))
	mux.HandleFunc("/api/control/score", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		if r.IsHome == nil || r.Value == nil {
			return errBadRequest
		}
		return s.app.UpdateScore(req.Context(), id, *r.IsHome, *r.Value)
	}))
	mux.HandleFunc("/api/control/cards", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		if r.IsHome == nil || r.IsYellow == nil || r.Value == nil {
			return errBadRequest
		}
		return s.app.UpdateCards(req.Context(), id, *r.IsHome, *r.IsYellow, *r.Value)
	}))
	mux.HandleFunc("/api/control/status", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		return s.app.SetStatus(req.Context(), id, models.GameStatus(r.Status))
	}))
	mux.HandleFunc("/api/control/period", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		return s.app.SetPeriod(req.Context(), id, r.Period, r.HalfLengthSec, r.OvertimeLengthSec)
	}))
	mux.HandleFunc("/api/control/penalty", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		if r.IsHome == nil {
			return errBadRequest
		}
		return s.app.RecordPenaltyKick(req.Context(), id, *r.IsHome, models.KickResult(r.Result))
	}))
	mux.HandleFunc("/api/control/penalty/undo", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		if r.IsHome == nil {
			return errBadRequest
		}
		return s.app.UndoPenaltyKick(req.Context(), id, *r.IsHome)
	}))
	mux.HandleFunc("/api/control/game/reset", s.command(func(r *controlRequest, id uuid.UUID, req *http.Request) error {
		return s.app.ResetGame(req.Context(), id)
	}))
	mux.HandleFunc("/api/control/game/new", s.handleCreateGame)
	log.Info().Msg("controller routes registered")
}

var errBadRequest = errors.New("bad request")

// command wraps the shared decode/authenticate/respond plumbing around one
// mutation.
func (s *Service) command(fn func(r *controlRequest, tenantID uuid.UUID, req *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, tenantID, ok := s.authenticate(w, req)
		if !ok {
			return
		}
		if err := fn(body, tenantID, req); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// handleCreateGame opens a new game, closing out any previous one.
func (s *Service) handleCreateGame(w http.ResponseWriter, req *http.Request) {
	body, tenantID, ok := s.authenticate(w, req)
	if !ok {
		return
	}

	var createReq CreateGameRequest
	if body.Game != nil {
		createReq = *body.Game
	}
	game, err := s.app.CreateGame(req.Context(), tenantID, createReq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// authenticate decodes the request body and resolves the tenant from the
// public key plus the bearer token. Failures get a generic 404 with no hint
// of which check failed.
func (s *Service) authenticate(w http.ResponseWriter, req *http.Request) (*controlRequest, uuid.UUID, bool) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return nil, uuid.Nil, false
	}

	var body controlRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil, uuid.Nil, false
	}

	token := bearerToken(req)
	tenantID, err := s.tenants.ResolveController(req.Context(), body.Key, token)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil, uuid.Nil, false
	}
	return &body, tenantID, true
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBadRequest):
		http.Error(w, "bad request", http.StatusBadRequest)
	case errors.Is(err, ErrActiveGameConflict):
		http.Error(w, "active game conflict, retry", http.StatusConflict)
	default:
		log.Error().Err(err).Msg("mutation failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func bearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
