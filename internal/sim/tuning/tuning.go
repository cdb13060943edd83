package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz         int `yaml:"tick_rate_hz"`
	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`

	Player    Player    `yaml:"player"`
	Targeting Targeting `yaml:"targeting"`
}

type Player struct {
	MoveSpeed   float64 `yaml:"move_speed"`
	Radius      float64 `yaml:"radius"`
	Height      float64 `yaml:"height"`
	RotateSpeed float64 `yaml:"rotate_speed"`
}

type Targeting struct {
	Distance               float64 `yaml:"distance"`
	SuppressRedundantClear bool    `yaml:"suppress_redundant_clear"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickRateHz:         20,
		SnapshotEveryTicks: 1200,
		Player: Player{
			MoveSpeed:   7,
			Radius:      0.7,
			Height:      2,
			RotateSpeed: 10,
		},
		Targeting: Targeting{Distance: 2},
	}
}

// Load reads path over Defaults. A missing file yields the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t *Tuning) applyDefaults() {
	d := Defaults()
	if t.ProtocolVersion == "" {
		t.ProtocolVersion = d.ProtocolVersion
	}
	if t.TickRateHz == 0 {
		t.TickRateHz = d.TickRateHz
	}
	if t.SnapshotEveryTicks == 0 {
		t.SnapshotEveryTicks = d.SnapshotEveryTicks
	}
	if t.Player.MoveSpeed == 0 {
		t.Player.MoveSpeed = d.Player.MoveSpeed
	}
	if t.Player.Radius == 0 {
		t.Player.Radius = d.Player.Radius
	}
	if t.Player.Height == 0 {
		t.Player.Height = d.Player.Height
	}
	if t.Player.RotateSpeed == 0 {
		t.Player.RotateSpeed = d.Player.RotateSpeed
	}
	if t.Targeting.Distance == 0 {
		t.Targeting.Distance = d.Targeting.Distance
	}
}

func (t Tuning) Validate() error {
	switch {
	case t.TickRateHz < 1 || t.TickRateHz > 240:
		return fmt.Errorf("tick_rate_hz out of range: %d", t.TickRateHz)
	case t.SnapshotEveryTicks < 0:
		return fmt.Errorf("snapshot_every_ticks must be >= 0")
	case t.Player.MoveSpeed < 0 || t.Player.RotateSpeed < 0:
		return fmt.Errorf("player speeds must be >= 0")
	case t.Player.Radius <= 0:
		return fmt.Errorf("player radius must be > 0")
	case t.Player.Height < 2*t.Player.Radius:
		return fmt.Errorf("player height %.2f shorter than its diameter", t.Player.Height)
	case t.Targeting.Distance <= 0:
		return fmt.Errorf("targeting distance must be > 0")
	}
	return nil
}
