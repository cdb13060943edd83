package protocol

// STATE (server -> client), one per player per tick.
type StateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	PlayerID        string `json:"player_id"`
	// LastSeq is the last INPUT seq the world applied for this player.
	LastSeq uint64 `json:"last_seq"`

	Self     SelfState      `json:"self"`
	Players  []PeerState    `json:"players"`
	Counters []CounterState `json:"counters"`
	Events   []Event        `json:"events"`
	Score    ScoreState     `json:"score"`
}

type SelfState struct {
	Pos      [3]float64   `json:"pos"`
	Yaw      float64      `json:"yaw"`
	Moving   bool         `json:"moving"`
	Selected string       `json:"selected,omitempty"`
	Holding  *ObjectState `json:"holding,omitempty"`
}

type PeerState struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Pos     [3]float64   `json:"pos"`
	Yaw     float64      `json:"yaw"`
	Moving  bool         `json:"moving"`
	Holding *ObjectState `json:"holding,omitempty"`
}

type CounterState struct {
	ID       string       `json:"id"`
	Kind     string       `json:"kind"`
	Pos      [2]float64   `json:"pos"`
	Holding  *ObjectState `json:"holding,omitempty"`
	Progress *BarState    `json:"progress,omitempty"`
	Stock    int          `json:"stock,omitempty"`
}

type BarState struct {
	Fill    float64 `json:"fill"`
	Visible bool    `json:"visible"`
}

type ObjectState struct {
	ID          string   `json:"id"`
	Item        string   `json:"item"`
	Ingredients []string `json:"ingredients,omitempty"`
}

type ScoreState struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}
