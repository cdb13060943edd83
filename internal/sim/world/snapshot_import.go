package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"kitchencraft.ai/internal/persistence/snapshot"
	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/world/feature/counters"
	"kitchencraft.ai/internal/sim/world/feature/entities/objects"
	"kitchencraft.ai/internal/sim/world/feature/targeting"
)

// ImportSnapshot restores s into a freshly built kitchen. Events raised while
// restoring are discarded.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version: %d", s.Header.Version)
	}
	if s.Header.KitchenID != w.cfg.ID {
		return fmt.Errorf("snapshot is for kitchen %q, not %q", s.Header.KitchenID, w.cfg.ID)
	}
	if len(w.players) != 0 {
		return fmt.Errorf("import into a kitchen with %d players", len(w.players))
	}
	if s.ItemsDigest != w.catalogs.Items.DefsDigest || s.CuttingDigest != w.catalogs.Cutting.Digest || s.MenuDigest != w.catalogs.Menu.Digest {
		w.logger.Printf("snapshot tick %d was taken with different catalogs", s.Header.Tick)
	}
	if s.TickRate > 0 && s.TickRate != w.cfg.TickRateHz {
		w.logger.Printf("snapshot tick rate %d differs from configured %d", s.TickRate, w.cfg.TickRateHz)
	}

	w.quiet = true
	defer func() { w.quiet = false }()

	// Drop the objects the kitchen was seeded with.
	for _, o := range w.objects.All() {
		w.objects.Destroy(o)
	}

	for _, ps := range s.Players {
		if ps.ID == "" || w.players[ps.ID] != nil {
			return fmt.Errorf("snapshot: bad or duplicate player id %q", ps.ID)
		}
		e := w.addPlayer(ps.ID, ps.Name, mgl64.Vec3(ps.Pos), mgl64.Vec3(ps.Facing))
		e.resumeToken = ps.ResumeToken
		e.Input.Restore(mgl64.Vec2(ps.Move), ps.LastSeq)
		var sel targeting.Interactable
		if c, ok := w.byID[ps.Selected]; ok {
			sel = c
			e.selectedID = c.ID()
		}
		e.Targeter().Restore(mgl64.Vec3(ps.LastDir), sel)
	}

	for _, obj := range s.Objects {
		p := w.parentByID(obj.Parent)
		if p == nil {
			return fmt.Errorf("snapshot: object %s has unknown parent %q", obj.ID, obj.Parent)
		}
		ks := make([]catalogs.IngredientKind, len(obj.Ingredients))
		for i, k := range obj.Ingredients {
			ks[i] = catalogs.IngredientKind(k)
		}
		if _, err := w.objects.Restore(obj.ID, obj.Item, ks, p); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}

	for _, cs := range s.Counters {
		c, ok := w.byID[cs.ID]
		if !ok {
			return fmt.Errorf("snapshot: unknown counter %q", cs.ID)
		}
		switch cc := c.(type) {
		case *counters.Cutting:
			cc.Restore(cs.Cuts)
		case *counters.Plates:
			cc.Restore(cs.Stock, cs.Timer)
		}
	}

	w.delivered = s.Delivered
	w.failed = s.Failed
	if s.IDs.NextPlayer > 0 {
		w.nextPlayer = s.IDs.NextPlayer
	}
	w.objects.SetNextID(s.IDs.NextObject)
	w.tick.Store(s.Header.Tick + 1)
	return nil
}

func (w *World) parentByID(id string) objects.Parent {
	if c, ok := w.byID[id]; ok {
		return c
	}
	if e, ok := w.players[id]; ok {
		return e.Player
	}
	return nil
}
