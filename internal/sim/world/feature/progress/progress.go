// Package progress tracks normalized progress values and maps them to bar state.
package progress

import (
	"io"
	"log"

	"kitchencraft.ai/internal/sim/world/logic/events"
	"kitchencraft.ai/internal/sim/world/logic/mathx"
)

type Changed struct {
	Normalized float64
}

// Source is anything exposing a normalized progress value and change notifications.
type Source interface {
	Progress() float64
	OnProgressChanged(fn func(Changed)) (unsubscribe func())
}

// Tracker is the Source used by counters that take several steps to finish.
type Tracker struct {
	value   float64
	changed events.Feed[Changed]
}

func (t *Tracker) Progress() float64 { return t.value }

func (t *Tracker) OnProgressChanged(fn func(Changed)) (unsubscribe func()) {
	return t.changed.Subscribe(fn)
}

// Set clamps v to [0,1] and notifies subscribers.
func (t *Tracker) Set(v float64) {
	t.value = mathx.Clamp01(v)
	t.changed.Emit(Changed{Normalized: t.value})
}

// Step reports done/total; total <= 0 counts as complete.
func (t *Tracker) Step(done, total int) {
	if total <= 0 {
		t.Set(1)
		return
	}
	t.Set(float64(done) / float64(total))
}

func (t *Tracker) Reset() { t.Set(0) }

// Bar mirrors a Source as fill level and visibility. It is hidden at exactly
// 0 and 1 and shown strictly in between.
type Bar struct {
	fill     float64
	visible  bool
	disabled bool
	updates  int

	unsub func()
}

// NewBar binds to bound when it implements Source. Otherwise the error is
// logged and the bar stays disabled.
func NewBar(bound any, logger *log.Logger) *Bar {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	b := &Bar{}
	src, ok := bound.(Source)
	if !ok || src == nil {
		logger.Printf("progress bar: %T does not provide progress", bound)
		b.disabled = true
		return b
	}
	b.unsub = src.OnProgressChanged(b.update)
	return b
}

func (b *Bar) update(c Changed) {
	b.updates++
	b.fill = c.Normalized
	b.visible = !(c.Normalized == 0 || c.Normalized == 1)
}

func (b *Bar) Fill() float64  { return b.fill }
func (b *Bar) Visible() bool  { return b.visible }
func (b *Bar) Disabled() bool { return b.disabled }
func (b *Bar) Updates() int   { return b.updates }

// Close stops listening to the source.
func (b *Bar) Close() {
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
	}
}
