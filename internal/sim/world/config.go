package world

import (
	"kitchencraft.ai/internal/sim/layout"
	"kitchencraft.ai/internal/sim/tuning"
)

type KitchenConfig struct {
	ID         string
	TickRateHz int

	// MaxPlayers caps concurrent players; joins beyond it are refused.
	MaxPlayers int

	// InputWindowTicks and InputMax bound how many INPUT frames one player may
	// have applied per window.
	InputWindowTicks int
	InputMax         int

	// ResumeGraceTicks is how long a disconnected player stays in the kitchen
	// waiting for a resume before it is removed.
	ResumeGraceTicks int

	// Operational parameters. These are included in snapshots for deterministic replay/resume.
	SnapshotEveryTicks int

	Tuning tuning.Tuning
	Layout layout.Kitchen
}

// ConfigFrom builds a kitchen config from loaded tuning and layout files.
func ConfigFrom(t tuning.Tuning, k layout.Kitchen) KitchenConfig {
	return KitchenConfig{
		ID:                 k.ID,
		TickRateHz:         t.TickRateHz,
		SnapshotEveryTicks: t.SnapshotEveryTicks,
		Tuning:             t,
		Layout:             k,
	}
}

func (c *KitchenConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = c.Layout.ID
	}
	if c.ID == "" {
		c.ID = "KITCHEN"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = c.Tuning.TickRateHz
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = tuning.Defaults().TickRateHz
	}
	c.Tuning.TickRateHz = c.TickRateHz
	if c.SnapshotEveryTicks <= 0 {
		c.SnapshotEveryTicks = c.Tuning.SnapshotEveryTicks
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = 4
	}
	if c.InputWindowTicks <= 0 {
		c.InputWindowTicks = c.TickRateHz
	}
	if c.InputMax <= 0 {
		c.InputMax = 2 * c.TickRateHz
	}
	if c.ResumeGraceTicks <= 0 {
		c.ResumeGraceTicks = 30 * c.TickRateHz
	}
	if c.Tuning.Player.MoveSpeed <= 0 || c.Tuning.Player.Radius <= 0 || c.Tuning.Targeting.Distance <= 0 {
		d := tuning.Defaults()
		if c.Tuning.Player.MoveSpeed <= 0 {
			c.Tuning.Player.MoveSpeed = d.Player.MoveSpeed
		}
		if c.Tuning.Player.Radius <= 0 {
			c.Tuning.Player.Radius = d.Player.Radius
		}
		if c.Tuning.Targeting.Distance <= 0 {
			c.Tuning.Targeting.Distance = d.Targeting.Distance
		}
	}
}

// DT is the fixed simulation step in seconds.
func (c KitchenConfig) DT() float64 {
	if c.TickRateHz <= 0 {
		return 0
	}
	return 1 / float64(c.TickRateHz)
}
