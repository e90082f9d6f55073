package overlay

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/scorecast/scorecast/internal/tenants"
)

// Handler handles viewer-facing HTTP routes: the WebSocket upgrade and the
// one-shot state read.
type Handler struct {
	connectionManager *ConnectionManager
	broadcaster       *Broadcaster
	tenants           *tenants.App
}

// NewHandler creates a new overlay handler.
func NewHandler(cm *ConnectionManager, broadcaster *Broadcaster, tenantsApp *tenants.App) *Handler {
	return &Handler{
		connectionManager: cm,
		broadcaster:       broadcaster,
		tenants:           tenantsApp,
	}
}

// HandleOverlayConnection upgrades a viewer to a WebSocket subscription.
// The public channel key rides in the URL; the private token is optional and,
// when present, must match. All access failures are a generic 404.
func (h *Handler) HandleOverlayConnection(w http.ResponseWriter, r *http.Request) {
	publicKey := r.URL.Query().Get("key")
	if publicKey == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}
	token := r.URL.Query().Get("token")

	tenantID, err := h.tenants.ResolveViewer(r.Context(), publicKey, token)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	conn, err := h.connectionManager.Upgrade(w, r, tenantID, publicKey, token, h.handleClientMessage)
	if err != nil {
		log.Error().
			Err(err).
			Str("tenant_id", tenantID.String()).
			Msg("failed to upgrade overlay connection")
		return
	}

	// Fresh join: full state plus assets, exactly once.
	h.broadcaster.Join(r.Context(), conn)
}

// handleClientMessage processes a message received from a subscriber. Polls
// revalidate access on every round, so blocking a tenant cuts its viewers
// off at their next poll.
func (h *Handler) handleClientMessage(conn *Connection, raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Debug().Str("connection_id", conn.ID).Msg("ignoring malformed client message")
		return
	}

	switch msg.Action {
	case "poll":
		// The request context died with the upgrade; pumps own the
		// connection lifetime now.
		ctx := context.Background()
		if _, err := h.tenants.ResolveViewer(ctx, conn.PublicKey, conn.Token); err != nil {
			log.Info().
				Str("connection_id", conn.ID).
				Str("tenant_id", conn.TenantID.String()).
				Msg("access revoked, closing overlay connection")
			conn.Close()
			return
		}
		h.broadcaster.Poll(ctx, conn, msg.LastVersion)
	case "leave":
		conn.Close()
	default:
		log.Debug().
			Str("connection_id", conn.ID).
			Str("action", msg.Action).
			Msg("ignoring unknown client action")
	}
}

// HandleState serves the one-shot snapshot read used by overlays before the
// socket is up.
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	publicKey := r.URL.Query().Get("key")
	if publicKey == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}

	tenantID, err := h.tenants.ResolveViewer(r.Context(), publicKey, r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	snapshot, version, ok := h.broadcaster.CurrentState(r.Context(), tenantID)
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.Write([]byte(`{"active":false}`))
		return
	}

	response := struct {
		Active   bool        `json:"active"`
		Version  int64       `json:"version"`
		Snapshot interface{} `json:"snapshot"`
	}{Active: true, Version: version, Snapshot: snapshot}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("failed to encode state response")
	}
}

// HandleStats reports connection counters.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to encode stats response")
	}
}

// RegisterRoutes registers the viewer routes with an HTTP mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/overlay", h.HandleOverlayConnection)
	mux.HandleFunc("/ws/stats", h.HandleStats)
	mux.HandleFunc("/api/overlay/state", h.HandleState)
}
