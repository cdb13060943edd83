package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type              string   `json:"type"`
	ProtocolVersion   string   `json:"protocol_version"`
	SupportedVersions []string `json:"supported_versions,omitempty"`
	PlayerName        string   `json:"player_name"`
	ResumeToken       string   `json:"resume_token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id,omitempty"`
	PlayerID        string         `json:"player_id"`
	ResumeToken     string         `json:"resume_token"`
	KitchenParams   KitchenParams  `json:"kitchen_params"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type KitchenParams struct {
	KitchenID        string     `json:"kitchen_id"`
	TickRateHz       int        `json:"tick_rate_hz"`
	Min              [2]float64 `json:"min"`
	Max              [2]float64 `json:"max"`
	MoveSpeed        float64    `json:"move_speed"`
	PlayerRadius     float64    `json:"player_radius"`
	InteractDistance float64    `json:"interact_distance"`
}

type CatalogDigests struct {
	ItemPalette   DigestRef `json:"item_palette"`
	CuttingDigest string    `json:"cutting_digest"`
	MenuDigest    string    `json:"menu_digest"`
	TuningDigest  string    `json:"tuning_digest,omitempty"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// INPUT (client -> server). Move is the normalized movement vector; it stays
// latched until the next INPUT. Interact triggers fire once.
type InputMsg struct {
	Type              string     `json:"type"`
	ProtocolVersion   string     `json:"protocol_version"`
	Seq               uint64     `json:"seq"`
	Move              [2]float64 `json:"move"`
	Interact          bool       `json:"interact,omitempty"`
	InteractAlternate bool       `json:"interact_alternate,omitempty"`
}

type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          uint64 `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	ServerTick      uint64 `json:"server_tick,omitempty"`
}
