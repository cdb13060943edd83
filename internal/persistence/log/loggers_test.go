package log

import (
	"path/filepath"
	"testing"
	"time"

	"kitchencraft.ai/internal/sim/world"
)

func TestTickLogger_RoundTripAcrossHours(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)
	clock := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	l.w.now = func() time.Time { return clock }

	for tick := uint64(0); tick < 6; tick++ {
		if tick == 3 {
			clock = clock.Add(2 * time.Minute)
		}
		e := world.TickLogEntry{Tick: tick, Digest: "d"}
		if tick == 1 {
			e.Joins = []world.RecordedJoin{{PlayerID: "P1", Name: "alice"}}
		}
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("write %d: %v", tick, err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListFiles(filepath.Join(dir, TicksDir), TicksPrefix)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("files=%v, want one per hour", files)
	}

	var got []uint64
	err = ReadTicks(filepath.Join(dir, TicksDir), func(e world.TickLogEntry) error {
		got = append(got, e.Tick)
		if e.Tick == 1 && (len(e.Joins) != 1 || e.Joins[0].PlayerID != "P1") {
			t.Fatalf("joins lost: %+v", e)
		}
		if e.Tick == 4 {
			return ErrStop
		}
		return nil
	})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 5 || got[0] != 0 || got[4] != 4 {
		t.Fatalf("ticks=%v", got)
	}
}

func TestAuditLogger_Writes(t *testing.T) {
	dir := t.TempDir()
	l := NewAuditLogger(dir)
	if err := l.WriteAudit(world.AuditEntry{Tick: 7, Actor: "P1", Action: "INTERACT", Counter: "CUT_1"}); err != nil {
		t.Fatal(err)
	}
	if l.w.Lines() != 1 {
		t.Fatalf("lines=%d", l.w.Lines())
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	files, err := ListFiles(filepath.Join(dir, AuditDir), AuditPrefix)
	if err != nil || len(files) != 1 {
		t.Fatalf("files=%v err=%v", files, err)
	}
	n := 0
	if err := ReadLines(files[0], func([]byte) error { n++; return nil }); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("lines read=%d", n)
	}
}
