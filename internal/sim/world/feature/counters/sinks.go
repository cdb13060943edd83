package counters

import (
	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/world/feature/targeting"
)

// Trash destroys whatever the player carries.
type Trash struct {
	base
}

func (c *Trash) Interact(a targeting.Actor) {
	p, ok := c.holder(a)
	if !ok {
		return
	}
	o := p.KitchenObject()
	if o == nil {
		c.reject(a, protocol.ErrNoResource, "nothing to throw away")
		return
	}
	c.env.Objects().Destroy(o)
}

// Delivery accepts plates and scores them against the menu.
type Delivery struct {
	base
}

func (c *Delivery) Interact(a targeting.Actor) {
	p, ok := c.holder(a)
	if !ok {
		return
	}
	o := p.KitchenObject()
	if o == nil || !o.IsPlate() {
		c.reject(a, protocol.ErrInvalidTarget, "only plates can be delivered")
		return
	}
	held := o.Plate.Ingredients()
	recipe, matched := c.env.Catalogs().MatchMenu(held)
	c.env.Objects().Destroy(o)
	c.env.Delivered(a.ID(), c.def.ID, recipe, matched, held)
}
