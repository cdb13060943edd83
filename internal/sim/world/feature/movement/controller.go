// Package movement resolves per-tick player motion against static obstacles
// by sliding along the X or Z axis when the full direction is blocked.
package movement

import (
	"github.com/go-gl/mathgl/mgl64"

	"kitchencraft.ai/internal/sim/world/logic/mathx"
)

// Sweeper reports whether a vertical capsule moving dist along dir is obstructed.
type Sweeper interface {
	CapsuleCast(bottom, top mgl64.Vec3, radius float64, dir mgl64.Vec3, dist float64) bool
}

// Result describes what one Tick resolved.
type Result struct {
	// Dir is the resolved (unscaled) direction: the attempted direction, or the
	// axis it slid along. It stays the attempted direction when every probe is blocked.
	Dir mgl64.Vec3
	// Moved is the committed displacement this tick.
	Moved  mgl64.Vec3
	Moving bool
}

// Controller owns a player's position and facing on the kitchen floor.
type Controller struct {
	params  Params
	sweeper Sweeper

	pos    mgl64.Vec3
	facing mgl64.Vec3
	moving bool
}

// NewController places a controller at pos. facing is stored bit for bit so a
// restored player digests the same as before export; zero means +Z.
func NewController(p Params, s Sweeper, pos, facing mgl64.Vec3) *Controller {
	if mathx.IsZero3(facing) {
		facing = mgl64.Vec3{0, 0, 1}
	}
	return &Controller{params: p, sweeper: s, pos: pos, facing: facing}
}

// Position is the capsule's bottom center.
func (c *Controller) Position() mgl64.Vec3 { return c.pos }
func (c *Controller) Facing() mgl64.Vec3   { return c.facing }
func (c *Controller) IsMoving() bool       { return c.moving }
func (c *Controller) Params() Params       { return c.params }

// Place sets position and facing directly (spawn, snapshot import). A zero
// facing keeps the current one.
func (c *Controller) Place(pos, facing mgl64.Vec3) {
	c.pos = pos
	if !mathx.IsZero3(facing) {
		c.facing = facing
	}
	c.moving = false
}

func (c *Controller) blocked(dir mgl64.Vec3, dist float64) bool {
	if c.sweeper == nil {
		return false
	}
	top := c.pos.Add(mathx.Up.Mul(c.params.Height))
	return c.sweeper.CapsuleCast(c.pos, top, c.params.Radius, dir, dist)
}

// Tick advances one step with a normalized input vector. X recovery is always
// tried before Z recovery regardless of which component is larger.
func (c *Controller) Tick(input mgl64.Vec2, dt float64) Result {
	dir := mathx.Flat(input)
	if mathx.IsZero3(dir) || dt <= 0 {
		c.moving = false
		return Result{}
	}

	dist := c.params.MoveSpeed * dt
	moveDir := dir
	canMove := !c.blocked(dir, dist)
	if !canMove {
		dirX := mathx.Normalize3(mgl64.Vec3{dir.X(), 0, 0})
		canMove = dir.X() != 0 && !c.blocked(dirX, dist)
		if canMove {
			moveDir = dirX
		} else if dir.Z() != 0 {
			dirZ := mathx.Normalize3(mgl64.Vec3{0, 0, dir.Z()})
			canMove = !c.blocked(dirZ, dist)
			if canMove {
				moveDir = dirZ
			}
		}
	}

	var res Result
	res.Dir = moveDir
	if canMove {
		res.Moved = moveDir.Mul(dist)
		c.pos = c.pos.Add(res.Moved)
	}
	res.Moving = !mathx.IsZero3(moveDir)
	c.moving = res.Moving
	c.facing = mathx.SlerpYaw(c.facing, moveDir, dt*c.params.RotateSpeed)
	return res
}
