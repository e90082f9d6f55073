package overlay

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/scorecast/scorecast/internal/statecache"
	"github.com/scorecast/scorecast/internal/tenants"
)

// Service bundles the overlay gateway: the connection manager that owns the
// websocket pools, the broadcaster that versions and fans out snapshots, the
// HTTP handler, and the optional cross-process event consumer.
type Service struct {
	connectionManager *ConnectionManager
	broadcaster       *Broadcaster
	handler           *Handler
	consumer          *EventConsumer
}

// NewService wires the overlay gateway together. The returned Service
// satisfies scoreboard.StatePublisher, so the controller side can broadcast
// through it without importing this package's internals.
func NewService(source SnapshotSource, cache *statecache.Cache, tenantApp *tenants.App, clock clockwork.Clock) *Service {
	cm := NewConnectionManager(DefaultConnectionConfig())
	broadcaster := NewBroadcaster(cm, cache, source, clock)
	handler := NewHandler(cm, broadcaster, tenantApp)
	return &Service{
		connectionManager: cm,
		broadcaster:       broadcaster,
		handler:           handler,
	}
}

// EnableEventConsumer attaches a JetStream consumer so broadcasts triggered
// in other processes reach this gateway's subscribers too.
func (s *Service) EnableEventConsumer(config JetStreamConsumerConfig) error {
	consumer, err := NewEventConsumer(s.broadcaster, config)
	if err != nil {
		return err
	}
	s.consumer = consumer
	return nil
}

// Start runs the broadcast drain loop and, when configured, the event
// consumer. Both stop when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.connectionManager.Start(ctx)
	if s.consumer != nil {
		go func() {
			if err := s.consumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("event consumer stopped")
			}
		}()
	}
}

// Stop closes external connections held by the gateway.
func (s *Service) Stop() {
	if s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop event consumer")
		}
	}
}

// BroadcastState implements scoreboard.StatePublisher.
func (s *Service) BroadcastState(ctx context.Context, tenantID uuid.UUID) {
	s.broadcaster.BroadcastState(ctx, tenantID)
}

// BroadcastAssets implements scoreboard.StatePublisher.
func (s *Service) BroadcastAssets(ctx context.Context, tenantID uuid.UUID) {
	s.broadcaster.BroadcastAssets(ctx, tenantID)
}

// RegisterRoutes registers the websocket and overlay HTTP routes.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	s.handler.RegisterRoutes(mux)
}
