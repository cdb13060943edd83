package counters

import (
	"testing"

	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/layout"
	"kitchencraft.ai/internal/sim/world/feature/entities/objects"
	"kitchencraft.ai/internal/sim/world/feature/progress"
)

type rejection struct {
	actor, counter, code string
}

type delivery struct {
	recipe  string
	matched bool
}

type testEnv struct {
	cat        *catalogs.Catalogs
	reg        *objects.Registry
	rejections []rejection
	deliveries []delivery
}

func (e *testEnv) Catalogs() *catalogs.Catalogs { return e.cat }
func (e *testEnv) Objects() *objects.Registry   { return e.reg }
func (e *testEnv) Reject(actorID, counterID, code, message string) {
	e.rejections = append(e.rejections, rejection{actorID, counterID, code})
}
func (e *testEnv) Delivered(actorID, counterID string, r catalogs.MenuRecipe, matched bool, _ []catalogs.IngredientKind) {
	e.deliveries = append(e.deliveries, delivery{r.ID, matched})
}

type player struct {
	objects.Slot
}

func (p *player) ID() string { return "P1" }

// ghost can be targeted but cannot carry anything.
type ghost struct{}

func (ghost) ID() string { return "G1" }

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	cat, err := catalogs.Load("../../../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return &testEnv{cat: cat, reg: objects.NewRegistry(cat)}
}

func mustCounter(t *testing.T, env *testEnv, kind, item string) Counter {
	t.Helper()
	c, err := New(layout.Counter{ID: kind + "_1", Kind: kind, Item: item}, env)
	if err != nil {
		t.Fatalf("new %s: %v", kind, err)
	}
	return c
}

func holding(p objects.Parent) string {
	if o := p.KitchenObject(); o != nil {
		return o.Item
	}
	return ""
}

func TestClear_PlaceAndPickUp(t *testing.T) {
	env := newEnv(t)
	c := mustCounter(t, env, layout.CounterClear, "")
	p := &player{}

	c.Interact(p)
	if len(env.rejections) != 1 || env.rejections[0].code != protocol.ErrNoResource {
		t.Fatalf("empty interact: %+v", env.rejections)
	}
	if _, err := env.reg.Spawn("BREAD", p); err != nil {
		t.Fatal(err)
	}
	c.Interact(p)
	if holding(c) != "BREAD" || p.HasKitchenObject() {
		t.Fatalf("place failed: counter=%q player=%q", holding(c), holding(p))
	}
	c.Interact(p)
	if holding(p) != "BREAD" || c.HasKitchenObject() {
		t.Fatalf("pick up failed")
	}
}

func TestClear_PlateStackingBothWays(t *testing.T) {
	env := newEnv(t)
	c := mustCounter(t, env, layout.CounterClear, "")
	p := &player{}

	// Player plate takes the counter's ingredient.
	env.reg.Spawn("BREAD", c)
	plate, _ := env.reg.Spawn("PLATE", p)
	c.Interact(p)
	if c.HasKitchenObject() || plate.Plate.Len() != 1 {
		t.Fatalf("plate in hand did not take bread")
	}

	// Counter plate takes the player's ingredient.
	c.Interact(p) // put the plate down
	env.reg.Spawn("CHEESE_SLICES", p)
	c.Interact(p)
	if p.HasKitchenObject() {
		t.Fatalf("cheese should have moved onto the plate")
	}
	got := plate.Plate.Ingredients()
	if len(got) != 2 || got[0] != "BREAD" || got[1] != "CHEESE_SLICES" {
		t.Fatalf("plate=%v", got)
	}

	// Duplicate is rejected and the player keeps it.
	env.reg.Spawn("BREAD", p)
	c.Interact(p)
	if holding(p) != "BREAD" || env.rejections[len(env.rejections)-1].code != protocol.ErrConflict {
		t.Fatalf("duplicate bread: player=%q rejections=%+v", holding(p), env.rejections)
	}
}

func TestClear_TwoIngredientsBlocked(t *testing.T) {
	env := newEnv(t)
	c := mustCounter(t, env, layout.CounterClear, "")
	p := &player{}
	env.reg.Spawn("BREAD", c)
	env.reg.Spawn("TOMATO", p)
	c.Interact(p)
	if holding(c) != "BREAD" || holding(p) != "TOMATO" {
		t.Fatalf("objects swapped")
	}
	if env.rejections[0].code != protocol.ErrBlocked {
		t.Fatalf("rejections=%+v", env.rejections)
	}
}

func TestCutting_CutsUntilDone(t *testing.T) {
	env := newEnv(t)
	c := mustCounter(t, env, layout.CounterCutting, "")
	cut := c.(*Cutting)
	bar := progress.NewBar(c, nil)
	p := &player{}

	env.reg.Spawn("BREAD", p)
	c.Interact(p)
	if holding(p) != "BREAD" || env.rejections[0].code != protocol.ErrInvalidTarget {
		t.Fatalf("uncuttable item was accepted")
	}
	env.reg.Destroy(p.KitchenObject())

	env.reg.Spawn("TOMATO", p)
	c.Interact(p)
	if holding(c) != "TOMATO" {
		t.Fatalf("tomato not placed")
	}
	r, _ := env.cat.CuttingFor("TOMATO")
	for i := 1; i < r.Cuts; i++ {
		c.InteractAlternate(p)
		if !bar.Visible() || cut.Cuts() != i {
			t.Fatalf("cut %d: visible=%v cuts=%d", i, bar.Visible(), cut.Cuts())
		}
	}
	c.InteractAlternate(p)
	if holding(c) != r.Output {
		t.Fatalf("counter holds %q want %q", holding(c), r.Output)
	}
	if bar.Visible() || bar.Fill() != 1 {
		t.Fatalf("finished bar: visible=%v fill=%v", bar.Visible(), bar.Fill())
	}
	c.InteractAlternate(p)
	if last := env.rejections[len(env.rejections)-1]; last.code != protocol.ErrInvalidTarget {
		t.Fatalf("cutting slices: %+v", last)
	}
}

func TestCutting_PickUpResetsProgress(t *testing.T) {
	env := newEnv(t)
	c := mustCounter(t, env, layout.CounterCutting, "")
	bar := progress.NewBar(c, nil)
	p := &player{}
	env.reg.Spawn("CABBAGE", p)
	c.Interact(p)
	c.InteractAlternate(p)
	if !bar.Visible() {
		t.Fatalf("bar hidden mid-cut")
	}
	c.Interact(p)
	if holding(p) != "CABBAGE" || bar.Visible() || c.(*Cutting).Cuts() != 0 {
		t.Fatalf("pick up: player=%q visible=%v", holding(p), bar.Visible())
	}
}

func TestContainerAndTrash(t *testing.T) {
	env := newEnv(t)
	box := mustCounter(t, env, layout.CounterContainer, "TOMATO")
	trash := mustCounter(t, env, layout.CounterTrash, "")
	p := &player{}

	box.Interact(p)
	if holding(p) != "TOMATO" {
		t.Fatalf("container did not dispense")
	}
	box.Interact(p)
	if env.rejections[0].code != protocol.ErrBlocked {
		t.Fatalf("full hands: %+v", env.rejections)
	}
	trash.Interact(p)
	if p.HasKitchenObject() || env.reg.Len() != 0 {
		t.Fatalf("trash kept the object")
	}
	box.Interact(ghost{})
	if last := env.rejections[len(env.rejections)-1]; last.code != protocol.ErrBadRequest || last.actor != "G1" {
		t.Fatalf("ghost interact: %+v", last)
	}
}

func TestPlates_RestockAndDispense(t *testing.T) {
	env := newEnv(t)
	c := mustCounter(t, env, layout.CounterPlates, "PLATE")
	pl := c.(*Plates)
	p := &player{}

	c.Interact(p)
	if env.rejections[0].code != protocol.ErrNoResource {
		t.Fatalf("empty stock: %+v", env.rejections)
	}
	for i := 0; i < 100; i++ {
		pl.Tick(1)
	}
	if pl.Stock() != PlateStockMax {
		t.Fatalf("stock=%d want %d", pl.Stock(), PlateStockMax)
	}
	c.Interact(p)
	if holding(p) != "PLATE" || pl.Stock() != PlateStockMax-1 {
		t.Fatalf("dispense: player=%q stock=%d", holding(p), pl.Stock())
	}
}

func TestDelivery_MatchesMenu(t *testing.T) {
	env := newEnv(t)
	d := mustCounter(t, env, layout.CounterDelivery, "")
	p := &player{}

	env.reg.Spawn("BREAD", p)
	d.Interact(p)
	if holding(p) != "BREAD" || len(env.deliveries) != 0 {
		t.Fatalf("non-plate delivered")
	}
	env.reg.Destroy(p.KitchenObject())

	plate, _ := env.reg.Spawn("PLATE", p)
	plate.Plate.TryAdd("MEAT_PATTY_COOKED")
	plate.Plate.TryAdd("BREAD")
	d.Interact(p)
	if p.HasKitchenObject() || len(env.deliveries) != 1 || !env.deliveries[0].matched || env.deliveries[0].recipe != "BURGER" {
		t.Fatalf("deliveries=%+v", env.deliveries)
	}

	env.reg.Spawn("PLATE", p)
	d.Interact(p)
	if len(env.deliveries) != 2 || env.deliveries[1].matched {
		t.Fatalf("empty plate should fail: %+v", env.deliveries)
	}
}

func TestNew_RejectsBadDefs(t *testing.T) {
	env := newEnv(t)
	bad := []layout.Counter{
		{ID: "a", Kind: "STOVE"},
		{ID: "b", Kind: layout.CounterContainer, Item: "GHOST"},
		{ID: "c", Kind: layout.CounterPlates, Item: "BREAD"},
	}
	for _, def := range bad {
		if _, err := New(def, env); err == nil {
			t.Fatalf("expected error for %+v", def)
		}
	}
}
