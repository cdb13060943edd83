// Package events provides synchronous, in-process notification feeds.
//
// Handlers run on the emitting goroutine, in subscription order, before Emit
// returns. A handler may change other state (which can emit on other feeds),
// but it must not cause the same feed to emit again while it is running:
// such re-entrant emission panics with ErrReentrant.
package events

import "errors"

var ErrReentrant = errors.New("events: re-entrant emit")

type Feed[T any] struct {
	subs     []subscription[T]
	nextID   uint64
	emitting bool
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (f *Feed[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	f.nextID++
	id := f.nextID
	f.subs = append(f.subs, subscription[T]{id: id, fn: fn})
	return func() {
		for i, s := range f.subs {
			if s.id == id {
				f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
				return
			}
		}
	}
}

func (f *Feed[T]) Len() int { return len(f.subs) }

func (f *Feed[T]) Emit(v T) {
	if f.emitting {
		panic(ErrReentrant)
	}
	if len(f.subs) == 0 {
		return
	}
	f.emitting = true
	defer func() { f.emitting = false }()

	// Snapshot so handlers may unsubscribe while being notified.
	subs := append([]subscription[T](nil), f.subs...)
	for _, s := range subs {
		s.fn(v)
	}
}
