package objects

import (
	"testing"

	"kitchencraft.ai/internal/sim/catalogs"
)

type holder struct {
	Slot
	id string
}

func (h *holder) ID() string { return h.id }

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	cat, err := catalogs.Load("../../../../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return NewRegistry(cat)
}

func TestSpawnMoveDestroy(t *testing.T) {
	r := testRegistry(t)
	var kinds []ChangeKind
	r.OnChange(func(c Change) { kinds = append(kinds, c.Kind) })

	a, b := &holder{id: "A"}, &holder{id: "B"}
	o, err := r.Spawn("TOMATO", a)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if o.ID != "O1" || a.KitchenObject() != o || o.Parent() != a {
		t.Fatalf("spawned object not parented: %+v", o)
	}
	if _, err := r.Spawn("BREAD", a); err == nil {
		t.Fatalf("expected occupied parent error")
	}
	if !r.MoveTo(o, b) || a.HasKitchenObject() || b.KitchenObject() != o {
		t.Fatalf("move failed")
	}
	if r.MoveTo(o, b) {
		t.Fatalf("move onto an occupied parent must fail")
	}
	r.Destroy(o)
	r.Destroy(o)
	if b.HasKitchenObject() || r.Len() != 0 {
		t.Fatalf("destroy left state behind")
	}
	want := []ChangeKind{Spawned, Moved, Destroyed}
	if len(kinds) != len(want) {
		t.Fatalf("changes=%v want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("changes=%v want %v", kinds, want)
		}
	}
}

func TestPlateForwardsIngredientAdded(t *testing.T) {
	r := testRegistry(t)
	h := &holder{id: "COUNTER"}
	p, err := r.Spawn("PLATE", h)
	if err != nil {
		t.Fatalf("spawn plate: %v", err)
	}
	if !p.IsPlate() {
		t.Fatalf("plate has no container")
	}
	var got []Change
	r.OnChange(func(c Change) { got = append(got, c) })
	if !p.Plate.TryAdd("BREAD") {
		t.Fatalf("bread rejected")
	}
	if p.Plate.TryAdd("TOMATO") {
		t.Fatalf("whole tomato accepted on a plate")
	}
	if len(got) != 1 || got[0].Kind != IngredientAdded || got[0].Ingredient != "BREAD" || got[0].ParentID != "COUNTER" {
		t.Fatalf("changes=%+v", got)
	}
}

func TestRestoreKeepsIDsAndIsSilent(t *testing.T) {
	r := testRegistry(t)
	calls := 0
	r.OnChange(func(Change) { calls++ })
	h := &holder{id: "H"}
	o, err := r.Restore("O7", "PLATE", []catalogs.IngredientKind{"BREAD", "CHEESE_SLICES"}, h)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if calls != 0 {
		t.Fatalf("restore emitted %d changes", calls)
	}
	if got := o.Plate.Ingredients(); len(got) != 2 || got[1] != "CHEESE_SLICES" {
		t.Fatalf("ingredients=%v", got)
	}
	if r.NextID() != 8 {
		t.Fatalf("next id=%d want 8", r.NextID())
	}
	if _, err := r.Restore("O8", "TOMATO", []catalogs.IngredientKind{"BREAD"}, &holder{id: "X"}); err == nil {
		t.Fatalf("expected error restoring ingredients onto a non-plate")
	}
	if all := r.All(); len(all) != 1 || all[0].ID != "O7" {
		t.Fatalf("all=%v", all)
	}
}
