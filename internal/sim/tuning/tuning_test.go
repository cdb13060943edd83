package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_RepoConfig(t *testing.T) {
	tu, err := Load("../../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tu.TickRateHz <= 0 || tu.Player.MoveSpeed != 7 || tu.Targeting.Distance != 2 {
		t.Fatalf("unexpected tuning: %+v", tu)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	tu, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tu != Defaults() {
		t.Fatalf("got %+v want defaults", tu)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("player:\n  move_speed: 4\ntargeting:\n  suppress_redundant_clear: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tu, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tu.Player.MoveSpeed != 4 || tu.Player.Radius != 0.7 || !tu.Targeting.SuppressRedundantClear {
		t.Fatalf("unexpected: %+v", tu)
	}
}

func TestLoad_RejectsShortCapsule(t *testing.T) {
	p := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(p, []byte("player:\n  radius: 2\n  height: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected validation error")
	}
}
