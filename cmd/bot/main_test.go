package main

import (
	"testing"

	"kitchencraft.ai/internal/protocol"
)

func TestBot_WalksTowardCounterThenInteracts(t *testing.T) {
	b := &bot{}
	st := &protocol.StateMsg{
		Tick: 3,
		Self: protocol.SelfState{Pos: [3]float64{0, 0, 0}},
		Counters: []protocol.CounterState{
			{ID: "CLEAR_1", Kind: "CLEAR", Pos: [2]float64{5, 0}},
			{ID: "C_BREAD", Kind: "CONTAINER", Pos: [2]float64{0, 4}},
		},
	}
	in, ok := b.next(st)
	if !ok || in.Seq != 1 || in.Move != [2]float64{0, 1} {
		t.Fatalf("first input=%+v ok=%v", in, ok)
	}
	if _, ok := b.next(st); ok {
		t.Fatalf("unchanged movement should not be resent")
	}

	st.Tick = 40
	st.Self.Selected = "C_BREAD"
	in, ok = b.next(st)
	if !ok || in.Seq != 2 || in.Move != [2]float64{} || !in.Interact {
		t.Fatalf("interact input=%+v ok=%v", in, ok)
	}
}
