package overlay

import (
	"encoding/json"
	"time"

	"github.com/scorecast/scorecast/internal/models"
)

// MessageType discriminates push payloads on the overlay channel.
type MessageType string

const (
	// MessageTypeState carries the versioned snapshot. High frequency,
	// small: sent after every mutation and on stale polls.
	MessageTypeState MessageType = "state"
	// MessageTypeAssets carries team logos and names. Low frequency: sent
	// on join, on a cold poll and after appearance changes, never on
	// routine state broadcasts.
	MessageTypeAssets MessageType = "assets"
)

// Message is the envelope pushed to overlay subscribers.
type Message struct {
	Type       MessageType     `json:"type"`
	Version    int64           `json:"version,omitempty"`
	ServerTime time.Time       `json:"server_time"`
	Data       json.RawMessage `json:"data"`
}

// newStateMessage wraps a snapshot and its cache version.
func newStateMessage(snapshot *models.Snapshot, version int64, now time.Time) (*Message, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:       MessageTypeState,
		Version:    version,
		ServerTime: now,
		Data:       data,
	}, nil
}

// newAssetsMessage wraps an asset bundle.
func newAssetsMessage(assets *models.AssetBundle, now time.Time) (*Message, error) {
	data, err := json.Marshal(assets)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:       MessageTypeAssets,
		ServerTime: now,
		Data:       data,
	}, nil
}

// clientMessage is what a subscriber sends upstream. Polls carry the last
// version the client has applied; the server answers only when the client is
// stale.
type clientMessage struct {
	Action      string `json:"action"`
	LastVersion int64  `json:"last_version"`
}
