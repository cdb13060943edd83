package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/world/feature/counters"
	"kitchencraft.ai/internal/sim/world/feature/entities/objects"
	"kitchencraft.ai/internal/sim/world/logic/mathx"
)

const wirePlaces = 4

func wirePos(v mgl64.Vec3) [3]float64 {
	return [3]float64{mathx.Round(v.X(), wirePlaces), mathx.Round(v.Y(), wirePlaces), mathx.Round(v.Z(), wirePlaces)}
}

func objectState(o *objects.Object) *protocol.ObjectState {
	if o == nil {
		return nil
	}
	st := &protocol.ObjectState{ID: o.ID, Item: o.Item}
	if o.IsPlate() {
		for _, k := range o.Plate.Ingredients() {
			st.Ingredients = append(st.Ingredients, string(k))
		}
	}
	return st
}

func (w *World) peerState(e *playerEntry) protocol.PeerState {
	m := e.Motion()
	return protocol.PeerState{
		ID:      e.ID(),
		Name:    e.Name(),
		Pos:     wirePos(m.Position()),
		Yaw:     mathx.Round(mathx.YawDegrees(m.Facing()), 2),
		Moving:  m.IsMoving(),
		Holding: objectState(e.KitchenObject()),
	}
}

func (w *World) counterStates() []protocol.CounterState {
	out := make([]protocol.CounterState, 0, len(w.counters))
	for _, c := range w.counters {
		def := c.Def()
		st := protocol.CounterState{
			ID:      def.ID,
			Kind:    def.Kind,
			Pos:     def.Pos,
			Holding: objectState(c.KitchenObject()),
		}
		if bar := w.bars[def.ID]; bar != nil && !bar.Disabled() {
			st.Progress = &protocol.BarState{Fill: mathx.Round(bar.Fill(), wirePlaces), Visible: bar.Visible()}
		}
		if p, ok := c.(*counters.Plates); ok {
			st.Stock = p.Stock()
		}
		out = append(out, st)
	}
	return out
}

// eventsFor filters this tick's events down to those addressed to playerID or to everyone.
func (w *World) eventsFor(playerID string) []protocol.Event {
	out := make([]protocol.Event, 0, len(w.events))
	for _, e := range w.events {
		if to, ok := e["to"].(string); ok && to != playerID {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (w *World) buildState(e *playerEntry, nowTick uint64) protocol.StateMsg {
	self := w.peerState(e)
	st := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		PlayerID:        e.ID(),
		LastSeq:         e.Input.LastSeq(),
		Self: protocol.SelfState{
			Pos:      self.Pos,
			Yaw:      self.Yaw,
			Moving:   self.Moving,
			Selected: e.selectedID,
			Holding:  self.Holding,
		},
		Counters: w.counterStates(),
		Events:   w.eventsFor(e.ID()),
		Score:    protocol.ScoreState{Delivered: w.delivered, Failed: w.failed},
	}
	st.Players = make([]protocol.PeerState, 0, len(w.order))
	for _, id := range w.order {
		if id == e.ID() {
			continue
		}
		st.Players = append(st.Players, w.peerState(w.players[id]))
	}
	return st
}
