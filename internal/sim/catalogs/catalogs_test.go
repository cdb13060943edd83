package catalogs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_DefaultConfigs(t *testing.T) {
	c, err := Load("../../../configs")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Items.Palette) == 0 || c.Items.PaletteDigest == "" || c.Items.DefsDigest == "" {
		t.Fatalf("items not indexed: %+v", c.Items)
	}
	if !c.IsIngredient("BREAD") {
		t.Fatalf("BREAD should be an ingredient")
	}
	if c.IsIngredient("PLATE") {
		t.Fatalf("PLATE is not an ingredient")
	}
	allow := c.PlateAllowList("PLATE")
	if len(allow) == 0 {
		t.Fatalf("plate allow list empty")
	}
	allow[0] = "MUTATED"
	if c.PlateAllowList("PLATE")[0] == "MUTATED" {
		t.Fatalf("allow list must be a copy")
	}
	r, ok := c.CuttingFor("TOMATO")
	if !ok || r.Output != "TOMATO_SLICES" || r.Cuts <= 0 {
		t.Fatalf("tomato cutting recipe: %+v ok=%v", r, ok)
	}
}

func TestMatchMenu_IgnoresOrder(t *testing.T) {
	c, err := Load("../../../configs")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m, ok := c.MatchMenu([]IngredientKind{"MEAT_PATTY_COOKED", "BREAD"})
	if !ok || m.ID != "BURGER" {
		t.Fatalf("match=%+v ok=%v", m, ok)
	}
	if _, ok := c.MatchMenu([]IngredientKind{"BREAD"}); ok {
		t.Fatalf("bread alone should not match")
	}
	if _, ok := c.MatchMenu(nil); ok {
		t.Fatalf("empty plate should not match")
	}
}

func writeConfigs(t *testing.T, items, cutting, menu string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"items.json":           items,
		"cutting_recipes.json": cutting,
		"menu_recipes.json":    menu,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoad_SchemaRejectsUnknownKind(t *testing.T) {
	dir := writeConfigs(t,
		`[{"id":"BREAD","kind":"SOUP"}]`,
		`[]`,
		`[]`,
	)
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "items.json") {
		t.Fatalf("expected items.json schema error, got %v", err)
	}
}

func TestLoad_CrossCheckUnknownIngredient(t *testing.T) {
	dir := writeConfigs(t,
		`[{"id":"BREAD","kind":"INGREDIENT"},{"id":"PLATE","kind":"PLATE","valid_ingredients":["BREAD","GHOST"]}]`,
		`[]`,
		`[]`,
	)
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), "GHOST") {
		t.Fatalf("expected unknown ingredient error, got %v", err)
	}
}

func TestLoad_MenuUnknownIngredient(t *testing.T) {
	dir := writeConfigs(t,
		`[{"id":"BREAD","kind":"INGREDIENT"}]`,
		`[]`,
		`[{"id":"TOAST","ingredients":["BREAD","BUTTER"]}]`,
	)
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected menu cross-check error")
	}
}
