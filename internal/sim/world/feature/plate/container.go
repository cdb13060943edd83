// Package plate holds the ingredients stacked on a plate.
//
// A Container accepts each allowed ingredient at most once and keeps them in
// the order they were added. IngredientAdded handlers run synchronously inside
// TryAdd; a handler must not call TryAdd on the same container (that re-emits
// on the same feed and panics with events.ErrReentrant).
package plate

import (
	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/world/logic/events"
)

type IngredientAdded struct {
	Kind catalogs.IngredientKind
}

type Container struct {
	allow map[catalogs.IngredientKind]bool
	held  []catalogs.IngredientKind

	added events.Feed[IngredientAdded]
}

func NewContainer(allow []catalogs.IngredientKind) *Container {
	c := &Container{allow: make(map[catalogs.IngredientKind]bool, len(allow))}
	for _, k := range allow {
		c.allow[k] = true
	}
	return c
}

func (c *Container) Allowed(k catalogs.IngredientKind) bool { return c.allow[k] }

func (c *Container) Has(k catalogs.IngredientKind) bool {
	for _, h := range c.held {
		if h == k {
			return true
		}
	}
	return false
}

// TryAdd appends k when it is allowed and not yet held.
func (c *Container) TryAdd(k catalogs.IngredientKind) bool {
	if !c.allow[k] || c.Has(k) {
		return false
	}
	c.held = append(c.held, k)
	c.added.Emit(IngredientAdded{Kind: k})
	return true
}

// Ingredients returns the held kinds in insertion order.
func (c *Container) Ingredients() []catalogs.IngredientKind {
	return append([]catalogs.IngredientKind(nil), c.held...)
}

func (c *Container) Len() int { return len(c.held) }

func (c *Container) OnIngredientAdded(fn func(IngredientAdded)) (unsubscribe func()) {
	return c.added.Subscribe(fn)
}
