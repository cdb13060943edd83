package world

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/world/feature/movement"
	"kitchencraft.ai/internal/sim/world/feature/player"
	"kitchencraft.ai/internal/sim/world/feature/targeting"
	"kitchencraft.ai/internal/sim/world/logic/ids"
	"kitchencraft.ai/internal/sim/world/logic/rates"
)

type playerEntry struct {
	*player.Player

	resumeToken string
	// selectedID is the last selection announced on the wire.
	selectedID string
	unsub      func()

	inputs rates.Window
}

func newResumeToken() string {
	return "resume_" + uuid.NewString()
}

func (w *World) playerParams() player.Params {
	return player.Params{
		Movement:  movement.ParamsFromTuning(w.cfg.Tuning.Player),
		Targeting: targeting.ParamsFromTuning(w.cfg.Tuning.Targeting),
	}
}

// addPlayer registers a player and subscribes to its selection changes.
func (w *World) addPlayer(id, name string, pos, facing mgl64.Vec3) *playerEntry {
	p := player.New(id, name, w.playerParams(), w.space, pos, facing)
	e := &playerEntry{Player: p}
	e.unsub = p.Targeter().OnSelectedChanged(func(c targeting.Changed) {
		sel := ""
		if c.Selected != nil {
			sel = c.Selected.ID()
		}
		if sel == e.selectedID {
			return
		}
		e.selectedID = sel
		ev := protocol.Event{"type": protocol.EventSelectedCounterChanged, "to": id, "player": id}
		if sel != "" {
			ev["counter"] = sel
		}
		w.addEvent(ev)
	})
	w.players[id] = e
	w.order = append(w.order, id)
	w.sortPlayers()
	return e
}

func (w *World) joinPlayer(name string, out chan []byte) JoinResponse {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "cook"
	}
	if len(w.players) >= w.cfg.MaxPlayers {
		return JoinResponse{Code: protocol.ErrKitchenFull, Message: "kitchen is full"}
	}

	n := w.nextPlayer
	w.nextPlayer++
	id := ids.PlayerID(n)
	e := w.addPlayer(id, name, w.spawnPoint(n), mgl64.Vec3{0, 0, 1})
	e.resumeToken = newResumeToken()
	if out != nil {
		w.clients[id] = &clientState{Out: out}
	}
	w.addEvent(protocol.Event{"type": protocol.EventPlayerJoined, "player": id, "name": name})
	return JoinResponse{Welcome: w.welcome(e)}
}

func (w *World) handleAttach(req AttachRequest) {
	token := strings.TrimSpace(req.ResumeToken)
	var e *playerEntry
	if token != "" && req.Out != nil {
		// Find player deterministically by iterating sorted ids.
		for _, id := range w.order {
			if p := w.players[id]; p != nil && p.resumeToken == token {
				e = p
				break
			}
		}
	}
	if e == nil {
		if req.Resp != nil {
			req.Resp <- JoinResponse{Code: protocol.ErrBadRequest, Message: "unknown resume token"}
		}
		return
	}

	// Attach client (does not affect simulation determinism).
	w.clients[e.ID()] = &clientState{Out: req.Out}
	delete(w.detached, e.ID())

	// Rotate token on successful resume.
	e.resumeToken = newResumeToken()
	if req.Resp != nil {
		req.Resp <- JoinResponse{Welcome: w.welcome(e)}
	}
}

// handleDetach drops the connection but keeps the player resumable for
// ResumeGraceTicks.
func (w *World) handleDetach(req DetachRequest) {
	id := req.PlayerID
	if _, ok := w.players[id]; !ok {
		return
	}
	if c := w.clients[id]; c != nil && req.Out != nil && c.Out != req.Out {
		return
	}
	delete(w.clients, id)
	w.detached[id] = w.tick.Load()
}

// expiredDetached lists, in id order, detached players whose grace ran out.
func (w *World) expiredDetached(nowTick uint64) []string {
	if len(w.detached) == 0 {
		return nil
	}
	grace := uint64(w.cfg.ResumeGraceTicks)
	var out []string
	for _, id := range w.order {
		at, ok := w.detached[id]
		if ok && nowTick >= at+grace {
			out = append(out, id)
		}
	}
	return out
}

// handleLeave removes a player; whatever it carried is thrown away.
func (w *World) handleLeave(id string) {
	e := w.players[id]
	if e == nil {
		return
	}
	if o := e.KitchenObject(); o != nil {
		w.objects.Destroy(o)
	}
	if e.unsub != nil {
		e.unsub()
	}
	delete(w.players, id)
	delete(w.clients, id)
	delete(w.detached, id)
	for i, pid := range w.order {
		if pid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.addEvent(protocol.Event{"type": protocol.EventPlayerLeft, "player": id})
}

func (w *World) tuningDigest() string {
	raw, err := yaml.Marshal(w.cfg.Tuning)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (w *World) welcome(e *playerEntry) protocol.WelcomeMsg {
	k := w.cfg.Layout
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        e.ID(),
		ResumeToken:     e.resumeToken,
		KitchenParams: protocol.KitchenParams{
			KitchenID:        w.cfg.ID,
			TickRateHz:       w.cfg.TickRateHz,
			Min:              k.Min,
			Max:              k.Max,
			MoveSpeed:        w.cfg.Tuning.Player.MoveSpeed,
			PlayerRadius:     w.cfg.Tuning.Player.Radius,
			InteractDistance: w.cfg.Tuning.Targeting.Distance,
		},
		Catalogs: protocol.CatalogDigests{
			ItemPalette:   protocol.DigestRef{Digest: w.catalogs.Items.PaletteDigest, Count: len(w.catalogs.Items.Palette)},
			CuttingDigest: w.catalogs.Cutting.Digest,
			MenuDigest:    w.catalogs.Menu.Digest,
			TuningDigest:  w.tuningDigest(),
		},
	}
}
