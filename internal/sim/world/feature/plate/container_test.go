package plate

import (
	"errors"
	"testing"

	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/world/logic/events"
)

func TestTryAdd_Scenario(t *testing.T) {
	c := NewContainer([]catalogs.IngredientKind{"BUN", "LETTUCE"})
	var added []catalogs.IngredientKind
	c.OnIngredientAdded(func(e IngredientAdded) { added = append(added, e.Kind) })

	steps := []struct {
		kind catalogs.IngredientKind
		want bool
	}{
		{"BUN", true},
		{"BUN", false},
		{"LETTUCE", true},
		{"CHEESE", false},
	}
	for _, s := range steps {
		if got := c.TryAdd(s.kind); got != s.want {
			t.Fatalf("TryAdd(%s)=%v want %v", s.kind, got, s.want)
		}
	}
	got := c.Ingredients()
	if len(got) != 2 || got[0] != "BUN" || got[1] != "LETTUCE" {
		t.Fatalf("ingredients=%v", got)
	}
	if len(added) != 2 || added[0] != "BUN" || added[1] != "LETTUCE" {
		t.Fatalf("notifications=%v", added)
	}
}

func TestTryAdd_DisallowedNeverMutates(t *testing.T) {
	c := NewContainer([]catalogs.IngredientKind{"BUN"})
	notified := 0
	c.OnIngredientAdded(func(IngredientAdded) { notified++ })
	for i := 0; i < 3; i++ {
		if c.TryAdd("CHEESE") {
			t.Fatalf("disallowed kind accepted")
		}
	}
	c.TryAdd("BUN")
	if c.TryAdd("CHEESE") {
		t.Fatalf("disallowed kind accepted after a valid add")
	}
	if c.Len() != 1 || notified != 1 {
		t.Fatalf("len=%d notified=%d", c.Len(), notified)
	}
}

func TestIngredients_ReturnsCopy(t *testing.T) {
	c := NewContainer([]catalogs.IngredientKind{"BUN"})
	c.TryAdd("BUN")
	got := c.Ingredients()
	got[0] = "X"
	if c.Ingredients()[0] != "BUN" {
		t.Fatalf("caller mutated container state")
	}
}

func TestTryAdd_ReentrantHandlerPanics(t *testing.T) {
	c := NewContainer([]catalogs.IngredientKind{"BUN", "LETTUCE"})
	c.OnIngredientAdded(func(e IngredientAdded) {
		if e.Kind == "BUN" {
			c.TryAdd("LETTUCE")
		}
	})
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, events.ErrReentrant) {
			t.Fatalf("recover=%v want ErrReentrant", r)
		}
	}()
	c.TryAdd("BUN")
	t.Fatalf("expected panic")
}
