package snapshot

import (
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "120.snap.zst")
	in := SnapshotV1{
		Header:   Header{Version: Version, KitchenID: "K1", Tick: 120},
		TickRate: 20,
		Players: []PlayerV1{{
			ID: "P1", Name: "alice", Pos: [3]float64{1.5, 0, -2}, Facing: [3]float64{0, 0, 1}, Move: [2]float64{1, 0}, LastSeq: 9,
		}},
		Counters: []CounterV1{{ID: "CUT_1", Cuts: 2}, {ID: "PLATES_1", Stock: 3, Timer: 1.25}},
		Objects: []ObjectV1{
			{ID: "O3", Item: "PLATE", Parent: "P1", Ingredients: []string{"BREAD", "CHEESE_SLICES"}},
		},
		Delivered: 4,
		IDs:       CountersV1{NextPlayer: 2, NextObject: 4},
	}
	if err := WriteSnapshot(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	h, err := ReadHeader(path)
	if err != nil || h.Tick != 120 || h.KitchenID != "K1" {
		t.Fatalf("header=%+v err=%v", h, err)
	}
	out, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out.Players) != 1 || out.Players[0].Pos != in.Players[0].Pos || out.Players[0].LastSeq != 9 {
		t.Fatalf("players=%+v", out.Players)
	}
	if len(out.Objects) != 1 || len(out.Objects[0].Ingredients) != 2 || out.Objects[0].Ingredients[1] != "CHEESE_SLICES" {
		t.Fatalf("objects=%+v", out.Objects)
	}
	if out.Counters[1].Timer != 1.25 || out.IDs.NextObject != 4 || out.Delivered != 4 {
		t.Fatalf("snapshot=%+v", out)
	}
}

func TestReadSnapshot_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.snap.zst")
	if err := WriteSnapshot(path, SnapshotV1{Header: Header{Version: 99}}); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatalf("expected version error")
	}
}
