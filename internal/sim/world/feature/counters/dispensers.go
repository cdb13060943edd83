package counters

import (
	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/world/feature/targeting"
)

// Container hands out a fresh item to empty-handed players.
type Container struct {
	base
}

func (c *Container) Interact(a targeting.Actor) {
	p, ok := c.holder(a)
	if !ok {
		return
	}
	if p.HasKitchenObject() {
		c.reject(a, protocol.ErrBlocked, "hands full")
		return
	}
	c.spawn(a, c.def.Item, p)
}

const (
	PlateSpawnSeconds = 4.0
	PlateStockMax     = 4
)

// Plates restocks a plate every PlateSpawnSeconds up to PlateStockMax.
type Plates struct {
	base

	stock int
	timer float64
}

func (c *Plates) Stock() int     { return c.stock }
func (c *Plates) Timer() float64 { return c.timer }

func (c *Plates) Restore(stock int, timer float64) {
	c.stock, c.timer = stock, timer
}

func (c *Plates) Tick(dt float64) {
	c.timer += dt
	if c.timer < PlateSpawnSeconds {
		return
	}
	c.timer = 0
	if c.stock < PlateStockMax {
		c.stock++
	}
}

func (c *Plates) Interact(a targeting.Actor) {
	p, ok := c.holder(a)
	if !ok {
		return
	}
	if p.HasKitchenObject() {
		c.reject(a, protocol.ErrBlocked, "hands full")
		return
	}
	if c.stock == 0 {
		c.reject(a, protocol.ErrNoResource, "no plates")
		return
	}
	if c.spawn(a, c.def.Item, p) {
		c.stock--
	}
}
