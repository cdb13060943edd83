// Package counters implements the kitchen counters players interact with.
package counters

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/layout"
	"kitchencraft.ai/internal/sim/world/feature/entities/objects"
	"kitchencraft.ai/internal/sim/world/feature/targeting"
)

// Env is what counters need from the world.
type Env interface {
	Catalogs() *catalogs.Catalogs
	Objects() *objects.Registry
	Reject(actorID, counterID, code, message string)
	Delivered(actorID, counterID string, recipe catalogs.MenuRecipe, matched bool, ingredients []catalogs.IngredientKind)
}

type Counter interface {
	targeting.Interactable
	objects.Parent
	Kind() string
	Def() layout.Counter
}

// Ticker is implemented by counters with time-based behavior.
type Ticker interface {
	Tick(dt float64)
}

type base struct {
	objects.Slot
	def layout.Counter
	env Env
}

func (b *base) ID() string          { return b.def.ID }
func (b *base) Kind() string        { return b.def.Kind }
func (b *base) Def() layout.Counter { return b.def }
func (b *base) Pos() mgl64.Vec2     { return mgl64.Vec2{b.def.Pos[0], b.def.Pos[1]} }

// InteractAlternate does nothing unless a counter overrides it.
func (b *base) InteractAlternate(targeting.Actor) {}

func (b *base) reject(a targeting.Actor, code, msg string) {
	b.env.Reject(a.ID(), b.def.ID, code, msg)
}

// holder resolves the actor's hands; actors that cannot carry are rejected.
func (b *base) holder(a targeting.Actor) (objects.Parent, bool) {
	p, ok := a.(objects.Parent)
	if !ok {
		b.reject(a, protocol.ErrBadRequest, "actor cannot carry objects")
	}
	return p, ok
}

func (b *base) spawn(a targeting.Actor, item string, p objects.Parent) bool {
	if _, err := b.env.Objects().Spawn(item, p); err != nil {
		b.reject(a, protocol.ErrInternal, err.Error())
		return false
	}
	return true
}

// exchange is the shared place / pick up / plate-stacking rule. accept
// filters what may be put down on an empty counter.
func (b *base) exchange(a targeting.Actor, self objects.Parent, accept func(*objects.Object) bool) {
	p, ok := b.holder(a)
	if !ok {
		return
	}
	reg := b.env.Objects()
	held := p.KitchenObject()
	here := self.KitchenObject()

	switch {
	case here == nil && held == nil:
		b.reject(a, protocol.ErrNoResource, "nothing to place")
	case here == nil:
		if accept != nil && !accept(held) {
			b.reject(a, protocol.ErrInvalidTarget, fmt.Sprintf("%s cannot go on %s", held.Item, b.def.Kind))
			return
		}
		reg.MoveTo(held, self)
	case held == nil:
		reg.MoveTo(here, p)
	case held.IsPlate():
		if !held.Plate.TryAdd(here.Ingredient()) {
			b.reject(a, protocol.ErrConflict, fmt.Sprintf("plate cannot take %s", here.Item))
			return
		}
		reg.Destroy(here)
	case here.IsPlate():
		if !here.Plate.TryAdd(held.Ingredient()) {
			b.reject(a, protocol.ErrConflict, fmt.Sprintf("plate cannot take %s", held.Item))
			return
		}
		reg.Destroy(held)
	default:
		b.reject(a, protocol.ErrBlocked, "counter occupied")
	}
}

func New(def layout.Counter, env Env) (Counter, error) {
	if env == nil {
		return nil, fmt.Errorf("counters: nil env")
	}
	b := base{def: def, env: env}
	cat := env.Catalogs()
	switch def.Kind {
	case layout.CounterClear:
		return &Clear{base: b}, nil
	case layout.CounterCutting:
		return &Cutting{base: b}, nil
	case layout.CounterContainer:
		if _, ok := cat.Item(def.Item); !ok {
			return nil, fmt.Errorf("counters: %s dispenses unknown item %s", def.ID, def.Item)
		}
		return &Container{base: b}, nil
	case layout.CounterPlates:
		if d, ok := cat.Item(def.Item); !ok || d.Kind != catalogs.KindPlate {
			return nil, fmt.Errorf("counters: %s dispenses %s, not a plate", def.ID, def.Item)
		}
		return &Plates{base: b}, nil
	case layout.CounterTrash:
		return &Trash{base: b}, nil
	case layout.CounterDelivery:
		return &Delivery{base: b}, nil
	default:
		return nil, fmt.Errorf("counters: unknown kind %q", def.Kind)
	}
}
