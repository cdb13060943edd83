package observerproto

import "kitchencraft.ai/internal/protocol"

// Version is the observer protocol version (separate from the player WS protocol).
const Version = "1.0"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeTick      = "TICK"
)

// Client -> Server. First message on the observer WS connection.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// IncludeEvents adds every simulation event of the tick, including
	// player-addressed ones, to TICK frames.
	IncludeEvents bool `json:"include_events,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string                 `json:"protocol_version"`
	KitchenID       string                 `json:"kitchen_id"`
	Tick            uint64                 `json:"tick"`
	KitchenParams   protocol.KitchenParams `json:"kitchen_params"`
	ItemPalette     []string               `json:"item_palette"`
	Walls           []WallInfo             `json:"walls"`
	Counters        []CounterInfo          `json:"counters"`
}

type WallInfo struct {
	ID   string     `json:"id"`
	Pos  [2]float64 `json:"pos"`
	Size [3]float64 `json:"size"`
}

type CounterInfo struct {
	ID   string     `json:"id"`
	Kind string     `json:"kind"`
	Pos  [2]float64 `json:"pos"`
	Size [3]float64 `json:"size"`
	Item string     `json:"item,omitempty"`
}

// Server -> Client. Sent every tick.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Digest          string `json:"digest"`

	Players  []PlayerState           `json:"players"`
	Counters []protocol.CounterState `json:"counters"`
	Score    protocol.ScoreState     `json:"score"`

	Joins  []JoinInfo       `json:"joins,omitempty"`
	Leaves []string         `json:"leaves,omitempty"`
	Inputs []RecordedInput  `json:"inputs,omitempty"`
	Audits []AuditEntry     `json:"audits,omitempty"`
	Events []protocol.Event `json:"events,omitempty"`
}

type JoinInfo struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type RecordedInput struct {
	PlayerID string            `json:"player_id"`
	Input    protocol.InputMsg `json:"input"`
}

type AuditEntry struct {
	Tick    uint64 `json:"tick"`
	Actor   string `json:"actor"`
	Action  string `json:"action"`
	Counter string `json:"counter,omitempty"`
	Item    string `json:"item,omitempty"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type PlayerState struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`

	Pos      [3]float64            `json:"pos"`
	Yaw      float64               `json:"yaw"`
	Moving   bool                  `json:"moving"`
	Selected string                `json:"selected,omitempty"`
	Holding  *protocol.ObjectState `json:"holding,omitempty"`
}
