package counters

import (
	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/world/feature/entities/objects"
	"kitchencraft.ai/internal/sim/world/feature/progress"
	"kitchencraft.ai/internal/sim/world/feature/targeting"
)

// Cutting accepts cuttable ingredients; each alternate interaction is one cut.
type Cutting struct {
	base
	progress.Tracker

	cuts int
}

func (c *Cutting) Cuts() int { return c.cuts }

// Restore sets the cut count and republishes the matching progress.
func (c *Cutting) Restore(cuts int) {
	c.cuts = cuts
	if o := c.KitchenObject(); o != nil && cuts > 0 {
		if r, ok := c.env.Catalogs().CuttingFor(o.Item); ok {
			c.Step(cuts, r.Cuts)
			return
		}
	}
	c.Reset()
}

func (c *Cutting) cuttable(o *objects.Object) bool {
	_, ok := c.env.Catalogs().CuttingFor(o.Item)
	return ok
}

func (c *Cutting) Interact(a targeting.Actor) {
	before := c.KitchenObject()
	c.exchange(a, c, c.cuttable)
	after := c.KitchenObject()
	if before == after {
		return
	}
	// Something was placed or taken away.
	c.cuts = 0
	c.Reset()
}

func (c *Cutting) InteractAlternate(a targeting.Actor) {
	o := c.KitchenObject()
	if o == nil {
		c.reject(a, protocol.ErrNoResource, "nothing to cut")
		return
	}
	r, ok := c.env.Catalogs().CuttingFor(o.Item)
	if !ok {
		c.reject(a, protocol.ErrInvalidTarget, o.Item+" cannot be cut")
		return
	}
	c.cuts++
	c.Step(c.cuts, r.Cuts)
	if c.cuts < r.Cuts {
		return
	}
	c.cuts = 0
	c.env.Objects().Destroy(o)
	c.spawn(a, r.Output, c)
}
