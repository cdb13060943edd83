// Package input turns raw player input into per-tick frames.
package input

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"kitchencraft.ai/internal/sim/world/logic/mathx"
)

// Source is polled once per tick for the normalized movement vector.
type Source interface {
	MovementVectorNormalized() mgl64.Vec2
}

// Frame is the input applied to one player in one tick.
type Frame struct {
	Move              mgl64.Vec2
	Interact          bool
	InteractAlternate bool
}

// Normalize returns v scaled to unit length, or zero when v is zero or not finite.
func Normalize(v mgl64.Vec2) mgl64.Vec2 {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return mgl64.Vec2{}
		}
	}
	return mathx.Normalize2(v)
}

// Latch keeps the last movement vector until replaced and fires each trigger once.
type Latch struct {
	move              mgl64.Vec2
	interact          bool
	interactAlternate bool
	lastSeq           uint64
}

// Push records a new raw input. Older sequence numbers are ignored; seq 0 is always applied.
func (l *Latch) Push(seq uint64, move mgl64.Vec2, interact, alt bool) bool {
	if seq != 0 && seq <= l.lastSeq {
		return false
	}
	if seq != 0 {
		l.lastSeq = seq
	}
	l.move = Normalize(move)
	l.interact = l.interact || interact
	l.interactAlternate = l.interactAlternate || alt
	return true
}

// Take returns the frame for this tick and clears the triggers.
func (l *Latch) Take() Frame {
	f := Frame{Move: l.move, Interact: l.interact, InteractAlternate: l.interactAlternate}
	l.interact = false
	l.interactAlternate = false
	return f
}

func (l *Latch) MovementVectorNormalized() mgl64.Vec2 { return l.move }
func (l *Latch) LastSeq() uint64                      { return l.lastSeq }

// Restore sets the latched movement and last sequence (snapshot import). move
// was normalized when it was latched and is kept as is.
func (l *Latch) Restore(move mgl64.Vec2, lastSeq uint64) {
	l.move = move
	l.lastSeq = lastSeq
	l.interact, l.interactAlternate = false, false
}
