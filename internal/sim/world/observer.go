package world

import (
	"encoding/json"

	"kitchencraft.ai/internal/observerproto"
	"kitchencraft.ai/internal/protocol"
)

// ObserverJoinRequest registers a read-only observer session that receives a
// TICK frame every tick on TickOut.
//
// All observer state is maintained by the world loop goroutine.
type ObserverJoinRequest struct {
	SessionID     string
	TickOut       chan []byte
	IncludeEvents bool
}

type observerClient struct {
	id            string
	tickOut       chan []byte
	includeEvents bool
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if w == nil || req.SessionID == "" || req.TickOut == nil {
		return
	}
	// Replace existing session id if any.
	if old := w.observers[req.SessionID]; old != nil {
		close(old.tickOut)
	}
	w.observers[req.SessionID] = &observerClient{
		id:            req.SessionID,
		tickOut:       req.TickOut,
		includeEvents: req.IncludeEvents,
	}
}

func (w *World) handleObserverLeave(sessionID string) {
	if sessionID == "" {
		return
	}
	c := w.observers[sessionID]
	if c == nil {
		return
	}
	delete(w.observers, sessionID)
	close(c.tickOut)
}

// Bootstrap describes the static kitchen for observers.
func (w *World) Bootstrap() observerproto.BootstrapResponse {
	k := w.cfg.Layout
	out := observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		KitchenID:       w.cfg.ID,
		Tick:            w.CurrentTick(),
		ItemPalette:     w.ItemPalette(),
		KitchenParams: protocol.KitchenParams{
			KitchenID:        w.cfg.ID,
			TickRateHz:       w.cfg.TickRateHz,
			Min:              k.Min,
			Max:              k.Max,
			MoveSpeed:        w.cfg.Tuning.Player.MoveSpeed,
			PlayerRadius:     w.cfg.Tuning.Player.Radius,
			InteractDistance: w.cfg.Tuning.Targeting.Distance,
		},
	}
	for _, wall := range k.Walls {
		out.Walls = append(out.Walls, observerproto.WallInfo{ID: wall.ID, Pos: wall.Pos, Size: wall.Size})
	}
	for _, c := range k.Counters {
		out.Counters = append(out.Counters, observerproto.CounterInfo{ID: c.ID, Kind: c.Kind, Pos: c.Pos, Size: c.Size, Item: c.Item})
	}
	return out
}

func (w *World) stepObservers(nowTick uint64, joins []RecordedJoin, leaves []string, inputs []RecordedInput, digest string) {
	if w == nil || len(w.observers) == 0 {
		return
	}

	players := make([]observerproto.PlayerState, 0, len(w.order))
	for _, id := range w.order {
		e := w.players[id]
		ps := w.peerState(e)
		players = append(players, observerproto.PlayerState{
			ID:        ps.ID,
			Name:      ps.Name,
			Connected: w.clients[id] != nil,
			Pos:       ps.Pos,
			Yaw:       ps.Yaw,
			Moving:    ps.Moving,
			Selected:  e.selectedID,
			Holding:   ps.Holding,
		})
	}

	joinsOut := make([]observerproto.JoinInfo, 0, len(joins))
	for _, j := range joins {
		joinsOut = append(joinsOut, observerproto.JoinInfo{PlayerID: j.PlayerID, Name: j.Name})
	}
	inputsOut := make([]observerproto.RecordedInput, 0, len(inputs))
	for _, in := range inputs {
		inputsOut = append(inputsOut, observerproto.RecordedInput{PlayerID: in.PlayerID, Input: in.Input})
	}
	auditsOut := make([]observerproto.AuditEntry, 0, len(w.audits))
	for _, e := range w.audits {
		auditsOut = append(auditsOut, observerproto.AuditEntry{
			Tick:    e.Tick,
			Actor:   e.Actor,
			Action:  e.Action,
			Counter: e.Counter,
			Item:    e.Item,
			Code:    e.Code,
			Reason:  e.Reason,
		})
	}

	msg := observerproto.TickMsg{
		Type:            observerproto.TypeTick,
		ProtocolVersion: observerproto.Version,
		Tick:            nowTick,
		Digest:          digest,
		Players:         players,
		Counters:        w.counterStates(),
		Score:           protocol.ScoreState{Delivered: w.delivered, Failed: w.failed},
		Joins:           joinsOut,
		Leaves:          leaves,
		Inputs:          inputsOut,
		Audits:          auditsOut,
	}
	plain, err := json.Marshal(msg)
	if err != nil {
		return
	}
	var withEvents []byte
	for _, c := range w.observers {
		if !c.includeEvents {
			sendLatest(c.tickOut, plain)
			continue
		}
		if withEvents == nil {
			msg.Events = w.events
			if withEvents, err = json.Marshal(msg); err != nil {
				continue
			}
		}
		sendLatest(c.tickOut, withEvents)
	}
}
