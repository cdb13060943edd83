package world

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/world/feature/counters"
)

func (w *World) stepInternal(joins []JoinRequest, leaves []string, inputs []InputEnvelope) {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	dt := w.cfg.DT()

	w.events = w.events[:0]
	w.audits = w.audits[:0]

	// Apply leaves and joins deterministically at tick boundary.
	leaves = append(leaves, w.expiredDetached(nowTick)...)
	recordedLeaves := make([]string, 0, len(leaves))
	for _, id := range leaves {
		if _, ok := w.players[id]; ok {
			w.handleLeave(id)
			recordedLeaves = append(recordedLeaves, id)
		}
	}
	recordedJoins := make([]RecordedJoin, 0, len(joins))
	for _, req := range joins {
		resp := w.joinPlayer(req.Name, req.Out)
		if req.Resp != nil {
			req.Resp <- resp
		}
		if resp.Code == "" {
			recordedJoins = append(recordedJoins, RecordedJoin{PlayerID: resp.Welcome.PlayerID, Name: req.Name})
		}
	}

	// Latch inputs in server receive order (the inbox order).
	recorded := make([]RecordedInput, 0, len(inputs))
	for _, env := range inputs {
		e := w.players[env.PlayerID]
		if e == nil {
			continue
		}
		in := env.Input
		if ok, cd := e.inputs.Allow(nowTick, uint64(w.cfg.InputWindowTicks), w.cfg.InputMax); !ok {
			w.ack(env.PlayerID, in.Seq, protocol.ErrRateLimit, fmt.Sprintf("too many inputs; retry in %d ticks", cd), nowTick)
			continue
		}
		if !e.Input.Push(in.Seq, mgl64.Vec2(in.Move), in.Interact, in.InteractAlternate) {
			w.ack(env.PlayerID, in.Seq, protocol.ErrStale, "input older than last applied", nowTick)
			continue
		}
		recorded = append(recorded, RecordedInput{PlayerID: env.PlayerID, Input: in})
	}

	// Players: interact triggers -> movement -> targeting, in id order.
	for _, id := range w.order {
		e := w.players[id]
		sel := e.Selected()
		f, _ := e.Step(dt)
		if sel == nil {
			continue
		}
		if f.Interact {
			w.audit(AuditEntry{Actor: id, Action: "INTERACT", Counter: sel.ID()})
		}
		if f.InteractAlternate {
			w.audit(AuditEntry{Actor: id, Action: "INTERACT_ALTERNATE", Counter: sel.ID()})
		}
	}

	// Counters with timers, in layout order.
	for _, c := range w.counters {
		if t, ok := c.(counters.Ticker); ok {
			t.Tick(dt)
		}
	}

	// Build + send STATE for each connected player.
	for _, id := range w.order {
		cl := w.clients[id]
		if cl == nil {
			continue
		}
		st := w.buildState(w.players[id], nowTick)
		b, err := json.Marshal(st)
		if err != nil {
			continue
		}
		sendLatest(cl.Out, b)
	}

	digest := w.stateDigest(nowTick)

	// Observer stream (read-only).
	w.stepObservers(nowTick, recordedJoins, recordedLeaves, recorded, digest)

	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{Tick: nowTick, Joins: recordedJoins, Leaves: recordedLeaves, Inputs: recorded, Digest: digest})
	}

	// Snapshot every N ticks, starting after tick 0.
	if w.snapshotSink != nil && nowTick != 0 && w.cfg.SnapshotEveryTicks > 0 {
		if nowTick%uint64(w.cfg.SnapshotEveryTicks) == 0 {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop snapshot if sink is backed up.
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)
	w.metrics.Store(KitchenMetrics{
		Tick:      nextTick,
		Players:   len(w.players),
		Clients:   len(w.clients),
		Observers: len(w.observers),
		Objects:   w.objects.Len(),
		Delivered: w.delivered,
		Failed:    w.failed,
		QueueDepths: QueueDepths{
			Inbox:  len(w.inbox),
			Join:   len(w.join),
			Leave:  len(w.leave),
			Attach: len(w.attach),
		},
		StepMS: stepMS,
	})
}

// ack tells a connected player why one of its inputs was dropped.
func (w *World) ack(playerID string, seq uint64, code, msg string, tick uint64) {
	cl := w.clients[playerID]
	if cl == nil {
		return
	}
	b, err := json.Marshal(protocol.AckMsg{
		Type:            protocol.TypeAck,
		ProtocolVersion: protocol.Version,
		AckFor:          seq,
		Accepted:        false,
		Code:            code,
		Message:         msg,
		ServerTick:      tick,
	})
	if err != nil {
		return
	}
	select {
	case cl.Out <- b:
	default:
	}
}
