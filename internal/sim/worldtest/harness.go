package worldtest

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"testing"

	"kitchencraft.ai/internal/persistence/snapshot"
	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/layout"
	"kitchencraft.ai/internal/sim/tuning"
	"kitchencraft.ai/internal/sim/world"
)

// Config loads catalogs, tuning and layout from configDir.
func Config(t testing.TB, configDir string) (world.KitchenConfig, *catalogs.Catalogs) {
	t.Helper()
	cats, err := catalogs.Load(configDir)
	if err != nil {
		t.Fatalf("catalogs: %v", err)
	}
	tu, err := tuning.Load(filepath.Join(configDir, "tuning.yaml"))
	if err != nil {
		t.Fatalf("tuning: %v", err)
	}
	k, err := layout.Load(filepath.Join(configDir, "kitchen.yaml"))
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	return world.ConfigFrom(tu, k), cats
}

// Kitchen builds a fresh kitchen from configDir.
func Kitchen(t testing.TB, configDir string) *world.World {
	t.Helper()
	cfg, cats := Config(t, configDir)
	w, err := world.New(cfg, cats, nil)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return w
}

// Harness drives a kitchen through its exported API only:
//   - Join issues a JoinRequest via StepOnce
//   - Input/Step issue INPUT via StepOnce with per-player seqs
//   - per-player Out channels carry STATE JSON; the last one is kept
type Harness struct {
	T *testing.T
	W *world.World

	DefaultPlayerID string

	sessions map[string]*session
}

type session struct {
	PlayerID  string
	Out       chan []byte
	seq       uint64
	lastState protocol.StateMsg
	events    []protocol.Event
}

func NewHarness(t *testing.T, configDir, playerName string) *Harness {
	t.Helper()
	return NewHarnessWithWorld(t, Kitchen(t, configDir), playerName)
}

// NewHarnessWithWorld uses an already-constructed kitchen, e.g. one restored
// from a snapshot. An empty playerName joins nobody.
func NewHarnessWithWorld(t *testing.T, w *world.World, playerName string) *Harness {
	t.Helper()
	if w == nil {
		t.Fatalf("NewHarnessWithWorld: nil world")
	}
	h := &Harness{T: t, W: w, sessions: map[string]*session{}}
	if playerName != "" {
		h.DefaultPlayerID = h.Join(playerName)
	}
	return h
}

func (h *Harness) Join(name string) string {
	h.T.Helper()
	out := make(chan []byte, 16)
	resp := make(chan world.JoinResponse, 1)
	h.W.StepOnce([]world.JoinRequest{{Name: name, Out: out, Resp: resp}}, nil, nil)
	jr := <-resp
	if jr.Code != "" || jr.Welcome.PlayerID == "" {
		h.T.Fatalf("join refused: %s %s", jr.Code, jr.Message)
	}
	s := &session{PlayerID: jr.Welcome.PlayerID, Out: out}
	h.sessions[s.PlayerID] = s
	h.drainAll()
	return s.PlayerID
}

func (h *Harness) session(id string) *session {
	h.T.Helper()
	s := h.sessions[id]
	if s == nil {
		h.T.Fatalf("unknown player id: %q", id)
	}
	return s
}

// Input is one tick of input for a player.
type Input struct {
	Move              [2]float64
	Interact          bool
	InteractAlternate bool
}

// Envelope stamps in with the player's next seq.
func (h *Harness) Envelope(playerID string, in Input) world.InputEnvelope {
	s := h.session(playerID)
	s.seq++
	return world.InputEnvelope{PlayerID: playerID, Input: protocol.InputMsg{
		Type:              protocol.TypeInput,
		ProtocolVersion:   protocol.Version,
		Seq:               s.seq,
		Move:              in.Move,
		Interact:          in.Interact,
		InteractAlternate: in.InteractAlternate,
	}}
}

func (h *Harness) Step(in Input) protocol.StateMsg {
	return h.StepFor(h.DefaultPlayerID, in)
}

func (h *Harness) StepFor(playerID string, in Input) protocol.StateMsg {
	h.T.Helper()
	h.StepMulti([]world.InputEnvelope{h.Envelope(playerID, in)})
	return h.LastStateFor(playerID)
}

func (h *Harness) StepMulti(inputs []world.InputEnvelope) {
	h.T.Helper()
	h.W.StepOnce(nil, nil, inputs)
	h.drainAll()
}

func (h *Harness) StepNoop() protocol.StateMsg {
	h.T.Helper()
	h.W.StepOnce(nil, nil, nil)
	h.drainAll()
	return h.LastState()
}

// StepUntil steps without input until cond holds for the default player or n
// ticks have passed. It reports whether cond held.
func (h *Harness) StepUntil(n int, cond func(protocol.StateMsg) bool) bool {
	h.T.Helper()
	for i := 0; i < n; i++ {
		if cond(h.StepNoop()) {
			return true
		}
	}
	return false
}

func (h *Harness) LastState() protocol.StateMsg { return h.LastStateFor(h.DefaultPlayerID) }

func (h *Harness) LastStateFor(playerID string) protocol.StateMsg {
	h.T.Helper()
	return h.session(playerID).lastState
}

// Events returns and clears every event the player has seen since the last call.
func (h *Harness) Events(playerID string) []protocol.Event {
	s := h.session(playerID)
	out := s.events
	s.events = nil
	return out
}

// Snapshot exports at the last completed tick so an import resumes at the
// current tick.
func (h *Harness) Snapshot() snapshot.SnapshotV1 {
	h.T.Helper()
	cur := h.W.CurrentTick()
	if cur == 0 {
		return h.W.ExportSnapshot(0)
	}
	return h.W.ExportSnapshot(cur - 1)
}

// Counter returns the named counter from the last STATE the default player saw.
func (h *Harness) Counter(id string) (protocol.CounterState, bool) {
	for _, c := range h.LastState().Counters {
		if c.ID == id {
			return c, true
		}
	}
	return protocol.CounterState{}, false
}

func (h *Harness) drainAll() {
	h.T.Helper()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		h.drainOne(h.sessions[id])
	}
}

func (h *Harness) drainOne(s *session) {
	h.T.Helper()
	for {
		var b []byte
		select {
		case b = <-s.Out:
		default:
			return
		}
		base, err := protocol.DecodeBase(b)
		if err != nil || base.Type != protocol.TypeState {
			continue
		}
		var st protocol.StateMsg
		if err := json.Unmarshal(b, &st); err != nil {
			h.T.Fatalf("unmarshal STATE: %v", err)
		}
		s.lastState = st
		s.events = append(s.events, st.Events...)
	}
}

// HasEvent reports whether events contains one of type typ whose fields
// include every key/value in match.
func HasEvent(events []protocol.Event, typ string, match map[string]any) bool {
	for _, e := range events {
		if e.Type() != typ {
			continue
		}
		ok := true
		for k, v := range match {
			if e[k] != v {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
