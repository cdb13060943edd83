package world

import (
	"kitchencraft.ai/internal/persistence/snapshot"
	"kitchencraft.ai/internal/sim/world/feature/counters"
)

func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	s := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version:   snapshot.Version,
			KitchenID: w.cfg.ID,
			Tick:      nowTick,
		},
		TickRate:           w.cfg.TickRateHz,
		SnapshotEveryTicks: w.cfg.SnapshotEveryTicks,
		ItemsDigest:        w.catalogs.Items.DefsDigest,
		CuttingDigest:      w.catalogs.Cutting.Digest,
		MenuDigest:         w.catalogs.Menu.Digest,
		Delivered:          w.delivered,
		Failed:             w.failed,
		IDs: snapshot.CountersV1{
			NextPlayer: w.nextPlayer,
			NextObject: w.objects.NextID(),
		},
	}

	for _, id := range w.order {
		e := w.players[id]
		m := e.Motion()
		ps := snapshot.PlayerV1{
			ID:          id,
			Name:        e.Name(),
			Pos:         m.Position(),
			Facing:      m.Facing(),
			LastDir:     e.Targeter().LastDir(),
			Move:        e.Input.MovementVectorNormalized(),
			LastSeq:     e.Input.LastSeq(),
			ResumeToken: e.resumeToken,
		}
		if sel := e.Selected(); sel != nil {
			ps.Selected = sel.ID()
		}
		s.Players = append(s.Players, ps)
	}

	for _, c := range w.counters {
		cs := snapshot.CounterV1{ID: c.ID()}
		switch cc := c.(type) {
		case *counters.Cutting:
			cs.Cuts = cc.Cuts()
		case *counters.Plates:
			cs.Stock = cc.Stock()
			cs.Timer = cc.Timer()
		}
		s.Counters = append(s.Counters, cs)
	}

	for _, o := range w.objects.All() {
		obj := snapshot.ObjectV1{ID: o.ID, Item: o.Item}
		if p := o.Parent(); p != nil {
			obj.Parent = p.ID()
		}
		if o.IsPlate() {
			for _, k := range o.Plate.Ingredients() {
				obj.Ingredients = append(obj.Ingredients, string(k))
			}
		}
		s.Objects = append(s.Objects, obj)
	}
	return s
}
