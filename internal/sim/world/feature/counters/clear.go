package counters

import "kitchencraft.ai/internal/sim/world/feature/targeting"

// Clear holds one object; plates on either side pick up ingredients.
type Clear struct {
	base
}

func (c *Clear) Interact(a targeting.Actor) { c.exchange(a, c, nil) }
