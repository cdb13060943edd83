package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Counter kinds.
const (
	CounterClear     = "CLEAR"
	CounterCutting   = "CUTTING"
	CounterContainer = "CONTAINER"
	CounterTrash     = "TRASH"
	CounterDelivery  = "DELIVERY"
	CounterPlates    = "PLATES"
)

// Kitchen is the static floor plan: bounds, walls, counters and spawn points.
// Positions are [x, z] on the floor in meters; sizes are [x, y, z].
type Kitchen struct {
	ID     string       `yaml:"id"`
	Min    [2]float64   `yaml:"min"`
	Max    [2]float64   `yaml:"max"`
	Spawns [][2]float64 `yaml:"spawns"`
	Walls  []Wall       `yaml:"walls"`

	Counters []Counter `yaml:"counters"`
}

type Wall struct {
	ID   string     `yaml:"id"`
	Pos  [2]float64 `yaml:"pos"`
	Size [3]float64 `yaml:"size"`
}

type Counter struct {
	ID   string     `yaml:"id"`
	Kind string     `yaml:"kind"`
	Pos  [2]float64 `yaml:"pos"`
	Size [3]float64 `yaml:"size"`
	// Item is the dispensed item for CONTAINER and PLATES counters, or the
	// initial object for CLEAR counters.
	Item string `yaml:"item,omitempty"`
	// ProgressBar attaches a progress bar. CUTTING counters always get one.
	ProgressBar bool `yaml:"progress_bar,omitempty"`
}

func Load(path string) (Kitchen, error) {
	var k Kitchen
	raw, err := os.ReadFile(path)
	if err != nil {
		return k, err
	}
	if err := yaml.Unmarshal(raw, &k); err != nil {
		return k, fmt.Errorf("kitchen.yaml: %w", err)
	}
	k.applyDefaults()
	if err := k.Validate(); err != nil {
		return k, fmt.Errorf("kitchen.yaml: %w", err)
	}
	return k, nil
}

var defaultCounterSize = [3]float64{1.5, 1, 1.5}

func (k *Kitchen) applyDefaults() {
	if k.ID == "" {
		k.ID = "KITCHEN"
	}
	for i := range k.Counters {
		if k.Counters[i].Size == ([3]float64{}) {
			k.Counters[i].Size = defaultCounterSize
		}
	}
	if len(k.Spawns) == 0 {
		k.Spawns = [][2]float64{{(k.Min[0] + k.Max[0]) / 2, (k.Min[1] + k.Max[1]) / 2}}
	}
}

func (k Kitchen) Validate() error {
	if k.Max[0] <= k.Min[0] || k.Max[1] <= k.Min[1] {
		return fmt.Errorf("empty bounds")
	}
	seen := map[string]bool{}
	for _, w := range k.Walls {
		if w.ID == "" || seen[w.ID] {
			return fmt.Errorf("wall id %q missing or duplicate", w.ID)
		}
		seen[w.ID] = true
	}
	for _, c := range k.Counters {
		if c.ID == "" || seen[c.ID] {
			return fmt.Errorf("counter id %q missing or duplicate", c.ID)
		}
		seen[c.ID] = true
		switch c.Kind {
		case CounterClear, CounterCutting, CounterTrash, CounterDelivery:
		case CounterContainer, CounterPlates:
			if c.Item == "" {
				return fmt.Errorf("counter %s: %s needs an item", c.ID, c.Kind)
			}
		default:
			return fmt.Errorf("counter %s: unknown kind %q", c.ID, c.Kind)
		}
	}
	for i, s := range k.Spawns {
		if s[0] < k.Min[0] || s[0] > k.Max[0] || s[1] < k.Min[1] || s[1] > k.Max[1] {
			return fmt.Errorf("spawn %d outside bounds", i)
		}
	}
	return nil
}
