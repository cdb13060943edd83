// Package targeting selects the interactable counter in front of a player.
package targeting

import (
	"github.com/go-gl/mathgl/mgl64"

	"kitchencraft.ai/internal/sim/tuning"
	"kitchencraft.ai/internal/sim/world/logic/events"
	"kitchencraft.ai/internal/sim/world/logic/mathx"
	"kitchencraft.ai/internal/sim/world/logic/physics"
)

// Actor is whoever triggers an interaction. Counters type-assert it to the
// capabilities they need.
type Actor interface {
	ID() string
}

// Interactable is a counter a player can select and use.
type Interactable interface {
	ID() string
	Interact(a Actor)
	InteractAlternate(a Actor)
}

// RayCaster finds the first body on mask hit by a ray of at most maxDist.
type RayCaster interface {
	Raycast(origin, dir mgl64.Vec3, maxDist float64, mask physics.Layer) (physics.Hit, bool)
}

// Params configures how far and against what the selection ray is cast.
type Params struct {
	Distance float64
	Mask     physics.Layer
	// SuppressRedundantClear skips the clear notification when nothing was selected.
	SuppressRedundantClear bool
}

func DefaultParams() Params {
	return ParamsFromTuning(tuning.Defaults().Targeting)
}

func ParamsFromTuning(t tuning.Targeting) Params {
	return Params{
		Distance:               t.Distance,
		Mask:                   physics.LayerCounters,
		SuppressRedundantClear: t.SuppressRedundantClear,
	}
}

// Changed carries the new selection; Selected is nil when cleared.
type Changed struct {
	Selected Interactable
}

// Targeter tracks one player's selected counter.
type Targeter struct {
	params Params
	caster RayCaster

	lastDir  mgl64.Vec3
	selected Interactable

	changed events.Feed[Changed]
}

func New(p Params, c RayCaster) *Targeter {
	return &Targeter{params: p, caster: c}
}

func (t *Targeter) Selected() Interactable { return t.selected }

// LastDir is the last non-zero movement direction seen (zero before any).
func (t *Targeter) LastDir() mgl64.Vec3 { return t.lastDir }

// Restore sets the tracked direction and selection without notifying.
func (t *Targeter) Restore(lastDir mgl64.Vec3, selected Interactable) {
	t.lastDir = lastDir
	t.selected = selected
}

func (t *Targeter) OnSelectedChanged(fn func(Changed)) (unsubscribe func()) {
	return t.changed.Subscribe(fn)
}

// Tick casts from origin along the last faced direction and updates the selection.
func (t *Targeter) Tick(origin, moveDir mgl64.Vec3) {
	if !mathx.IsZero3(moveDir) {
		t.lastDir = moveDir
	}
	if mathx.IsZero3(t.lastDir) || t.caster == nil {
		t.clear()
		return
	}
	hit, ok := t.caster.Raycast(origin, t.lastDir, t.params.Distance, t.params.Mask)
	if !ok || hit.Body == nil {
		t.clear()
		return
	}
	target, ok := hit.Body.Owner.(Interactable)
	if !ok || target == nil {
		t.clear()
		return
	}
	if target != t.selected {
		t.set(target)
	}
}

func (t *Targeter) clear() {
	if t.selected == nil && t.params.SuppressRedundantClear {
		return
	}
	t.set(nil)
}

func (t *Targeter) set(target Interactable) {
	t.selected = target
	t.changed.Emit(Changed{Selected: target})
}
