package world

import (
	"crypto/sha256"
	"encoding/hex"

	"kitchencraft.ai/internal/sim/world/feature/counters"
	"kitchencraft.ai/internal/sim/world/feature/entities/objects"
	"kitchencraft.ai/internal/sim/world/io/digestcodec"
)

func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	d := digestcodec.NewWriter(h)

	d.String(w.cfg.ID)
	d.U64(nowTick)
	d.U64(w.nextPlayer)
	d.U64(w.objects.NextID())
	d.I64(int64(w.delivered))
	d.I64(int64(w.failed))

	w.digestPlayers(d)
	w.digestCounters(d)
	w.digestObjects(d)

	return hex.EncodeToString(h.Sum(nil))
}

func heldID(p objects.Parent) string {
	if o := p.KitchenObject(); o != nil {
		return o.ID
	}
	return ""
}

func (w *World) digestPlayers(d *digestcodec.Writer) {
	d.U64(uint64(len(w.order)))
	for _, id := range w.order {
		e := w.players[id]
		m := e.Motion()
		d.String(id)
		d.Vec3(m.Position())
		d.Vec3(m.Facing())
		d.Vec3(e.Targeter().LastDir())
		mv := e.Input.MovementVectorNormalized()
		d.F64(mv.X())
		d.F64(mv.Y())
		d.U64(e.Input.LastSeq())
		sel := ""
		if s := e.Selected(); s != nil {
			sel = s.ID()
		}
		d.String(sel)
		d.String(heldID(e))
	}
}

func (w *World) digestCounters(d *digestcodec.Writer) {
	d.U64(uint64(len(w.counters)))
	for _, c := range w.counters {
		d.String(c.ID())
		d.String(heldID(c))
		switch cc := c.(type) {
		case *counters.Cutting:
			d.I64(int64(cc.Cuts()))
			d.F64(cc.Progress())
		case *counters.Plates:
			d.I64(int64(cc.Stock()))
			d.F64(cc.Timer())
		}
	}
}

func (w *World) digestObjects(d *digestcodec.Writer) {
	all := w.objects.All()
	d.U64(uint64(len(all)))
	for _, o := range all {
		d.String(o.ID)
		d.String(o.Item)
		pid := ""
		if p := o.Parent(); p != nil {
			pid = p.ID()
		}
		d.String(pid)
		if o.IsPlate() {
			ks := o.Plate.Ingredients()
			ss := make([]string, len(ks))
			for i, k := range ks {
				ss[i] = string(k)
			}
			d.Strings(ss)
		}
	}
}
