package streaming

import (
	"encoding/json"

	"github.com/windward-sim/windward/pkg/core"
)

// Message type constants for the live feed protocol.
const (
	TypeStartVoyage = "start_voyage"
	TypeEndVoyage   = "end_voyage"
	TypeAddBoat     = "add_boat"
	TypeRemoveBoat  = "remove_boat"
	TypeTrackPoint  = "track_point"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// StartVoyagePayload carries voyage metadata at the start of a feed.
type StartVoyagePayload struct {
	Voyage *core.Voyage `json:"voyage"`
}

// EndVoyagePayload carries the final tick count.
type EndVoyagePayload struct {
	EndTick uint64 `json:"endTick"`
}

// BoatPayload carries a boat joining or leaving the fleet.
type BoatPayload struct {
	Boat core.BoatRecord `json:"boat"`
}

// RemoveBoatPayload identifies a boat leaving the fleet.
type RemoveBoatPayload struct {
	BoatID uint16 `json:"boatId"`
}

// NewEnvelope marshals a payload into an Envelope of the given type.
func NewEnvelope(msgType string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: msgType, Payload: raw}, nil
}
