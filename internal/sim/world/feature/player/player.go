// Package player wires one player's input, motion, targeting and hands.
package player

import (
	"github.com/go-gl/mathgl/mgl64"

	"kitchencraft.ai/internal/sim/input"
	"kitchencraft.ai/internal/sim/world/feature/entities/objects"
	"kitchencraft.ai/internal/sim/world/feature/movement"
	"kitchencraft.ai/internal/sim/world/feature/targeting"
	"kitchencraft.ai/internal/sim/world/logic/mathx"
)

// Space answers the physics queries a player needs.
type Space interface {
	movement.Sweeper
	targeting.RayCaster
}

type Params struct {
	Movement  movement.Params
	Targeting targeting.Params
}

type Player struct {
	objects.Slot

	id   string
	name string

	Input  input.Latch
	motion *movement.Controller
	target *targeting.Targeter
}

func New(id, name string, p Params, space Space, pos, facing mgl64.Vec3) *Player {
	return &Player{
		id:     id,
		name:   name,
		motion: movement.NewController(p.Movement, space, pos, facing),
		target: targeting.New(p.Targeting, space),
	}
}

func (p *Player) ID() string   { return p.id }
func (p *Player) Name() string { return p.name }

func (p *Player) Motion() *movement.Controller  { return p.motion }
func (p *Player) Targeter() *targeting.Targeter { return p.target }

func (p *Player) Position() mgl64.Vec3             { return p.motion.Position() }
func (p *Player) Selected() targeting.Interactable { return p.target.Selected() }

// Step runs one tick: triggers go to the counter selected last tick, then the
// player moves, then targeting looks along the raw input direction.
func (p *Player) Step(dt float64) (input.Frame, movement.Result) {
	f := p.Input.Take()
	if sel := p.target.Selected(); sel != nil {
		if f.Interact {
			sel.Interact(p)
		}
		if f.InteractAlternate {
			sel.InteractAlternate(p)
		}
	}
	res := p.motion.Tick(f.Move, dt)
	p.target.Tick(p.motion.Position(), mathx.Flat(f.Move))
	return f, res
}
