package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/layout"
	"kitchencraft.ai/internal/sim/world/feature/counters"
	"kitchencraft.ai/internal/sim/world/feature/progress"
	"kitchencraft.ai/internal/sim/world/logic/physics"
)

// buildKitchen lays out walls and counters in the physics space, wires
// progress bars and seeds CLEAR counters with their initial objects.
func (w *World) buildKitchen() error {
	k := w.cfg.Layout
	space, err := physics.NewSpace(mgl64.Vec2{k.Min[0], k.Min[1]}, mgl64.Vec2{k.Max[0], k.Max[1]})
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}
	w.space = space

	for _, wall := range k.Walls {
		b := &physics.Body{
			ID:    wall.ID,
			Box:   physics.BoxOnFloor(mgl64.Vec3{wall.Pos[0], 0, wall.Pos[1]}, mgl64.Vec3(wall.Size)),
			Layer: physics.LayerDefault,
		}
		if err := space.Add(b); err != nil {
			return fmt.Errorf("world: wall %s: %w", wall.ID, err)
		}
	}

	for _, def := range k.Counters {
		c, err := counters.New(def, w)
		if err != nil {
			return fmt.Errorf("world: %w", err)
		}
		b := &physics.Body{
			ID:    def.ID,
			Box:   physics.BoxOnFloor(mgl64.Vec3{def.Pos[0], 0, def.Pos[1]}, mgl64.Vec3(def.Size)),
			Layer: physics.LayerCounters,
			Owner: c,
		}
		if err := space.Add(b); err != nil {
			return fmt.Errorf("world: counter %s: %w", def.ID, err)
		}
		w.counters = append(w.counters, c)
		w.byID[def.ID] = c

		if def.Kind == layout.CounterCutting || def.ProgressBar {
			w.bars[def.ID] = progress.NewBar(c, w.logger)
		}
		if src, ok := c.(progress.Source); ok {
			id := def.ID
			src.OnProgressChanged(func(ch progress.Changed) {
				w.addEvent(protocol.Event{
					"type":     protocol.EventProgressChanged,
					"counter":  id,
					"progress": ch.Normalized,
				})
			})
		}

		if def.Kind == layout.CounterClear && def.Item != "" {
			if _, err := w.objects.Spawn(def.Item, c); err != nil {
				return fmt.Errorf("world: counter %s: %w", def.ID, err)
			}
		}
	}
	return nil
}

// spawnPoint returns the floor position for the n-th player (1-based).
func (w *World) spawnPoint(n uint64) mgl64.Vec3 {
	spawns := w.cfg.Layout.Spawns
	if len(spawns) == 0 {
		return mgl64.Vec3{}
	}
	s := spawns[int((n-1)%uint64(len(spawns)))]
	return mgl64.Vec3{s[0], 0, s[1]}
}
