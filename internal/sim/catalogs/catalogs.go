package catalogs

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBaseURL = "https://kitchencraft.ai/schemas/"

// IngredientKind identifies an ingredient by its item id.
type IngredientKind string

const (
	KindIngredient = "INGREDIENT"
	KindPlate      = "PLATE"
)

type Catalogs struct {
	Items   ItemCatalog
	Cutting CuttingCatalog
	Menu    MenuCatalog
}

type ItemCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]ItemDef
	PaletteDigest string
	DefsDigest    string
}

type ItemDef struct {
	ID               string           `json:"id"`
	Name             string           `json:"name,omitempty"`
	Kind             string           `json:"kind"` // "INGREDIENT","PLATE"
	ValidIngredients []IngredientKind `json:"valid_ingredients,omitempty"`
}

type CuttingCatalog struct {
	ByInput map[string]CuttingRecipe
	Digest  string
}

type CuttingRecipe struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Cuts   int    `json:"cuts"`
}

type MenuCatalog struct {
	Recipes []MenuRecipe
	ByID    map[string]MenuRecipe
	Digest  string
}

type MenuRecipe struct {
	ID          string           `json:"id"`
	Name        string           `json:"name,omitempty"`
	Ingredients []IngredientKind `json:"ingredients"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := loadCutting(filepath.Join(configDir, "cutting_recipes.json"), &c.Cutting); err != nil {
		return nil, err
	}
	if err := loadMenu(filepath.Join(configDir, "menu_recipes.json"), &c.Menu); err != nil {
		return nil, err
	}
	if err := c.crossCheck(); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// readValidated reads a catalog file and checks it against its embedded schema.
func readValidated(path, schemaName string) ([]byte, error) {
	name := filepath.Base(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sch, err := compileSchema(schemaName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return raw, nil
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	b, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, err
	}
	url := schemaBaseURL + name
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := readValidated(path, "items.schema.json")
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("items.json: duplicate id %s", d.ID)
		}
		if d.Kind != KindPlate && len(d.ValidIngredients) > 0 {
			return fmt.Errorf("items.json: %s: valid_ingredients only apply to plates", d.ID)
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadCutting(path string, out *CuttingCatalog) error {
	raw, err := readValidated(path, "cutting_recipes.schema.json")
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []CuttingRecipe
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("cutting_recipes.json: %w", err)
	}
	out.ByInput = map[string]CuttingRecipe{}
	for _, r := range defs {
		if _, dup := out.ByInput[r.Input]; dup {
			return fmt.Errorf("cutting_recipes.json: duplicate input %s", r.Input)
		}
		out.ByInput[r.Input] = r
	}
	return nil
}

func loadMenu(path string, out *MenuCatalog) error {
	raw, err := readValidated(path, "menu_recipes.schema.json")
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	if err := json.Unmarshal(raw, &out.Recipes); err != nil {
		return fmt.Errorf("menu_recipes.json: %w", err)
	}
	out.ByID = make(map[string]MenuRecipe, len(out.Recipes))
	for _, r := range out.Recipes {
		if _, dup := out.ByID[r.ID]; dup {
			return fmt.Errorf("menu_recipes.json: duplicate id %s", r.ID)
		}
		out.ByID[r.ID] = r
	}
	return nil
}

func (c *Catalogs) crossCheck() error {
	for _, id := range c.Items.Palette {
		d := c.Items.Defs[id]
		for _, k := range d.ValidIngredients {
			if !c.IsIngredient(k) {
				return fmt.Errorf("items.json: %s allows unknown ingredient %s", id, k)
			}
		}
	}
	for in, r := range c.Cutting.ByInput {
		if !c.IsIngredient(IngredientKind(in)) {
			return fmt.Errorf("cutting_recipes.json: unknown input %s", in)
		}
		if _, ok := c.Items.Defs[r.Output]; !ok {
			return fmt.Errorf("cutting_recipes.json: unknown output %s", r.Output)
		}
	}
	for _, r := range c.Menu.Recipes {
		for _, k := range r.Ingredients {
			if !c.IsIngredient(k) {
				return fmt.Errorf("menu_recipes.json: %s uses unknown ingredient %s", r.ID, k)
			}
		}
	}
	return nil
}

func (c *Catalogs) Item(id string) (ItemDef, bool) {
	d, ok := c.Items.Defs[id]
	return d, ok
}

func (c *Catalogs) IsIngredient(k IngredientKind) bool {
	d, ok := c.Items.Defs[string(k)]
	return ok && d.Kind == KindIngredient
}

// PlateAllowList returns a copy of the ingredients a plate item accepts.
func (c *Catalogs) PlateAllowList(plateID string) []IngredientKind {
	d, ok := c.Items.Defs[plateID]
	if !ok || d.Kind != KindPlate {
		return nil
	}
	return append([]IngredientKind(nil), d.ValidIngredients...)
}

func (c *Catalogs) CuttingFor(input string) (CuttingRecipe, bool) {
	r, ok := c.Cutting.ByInput[input]
	return r, ok
}

// MatchMenu finds the first menu recipe whose ingredient set equals held.
// Order does not matter; sizes must match.
func (c *Catalogs) MatchMenu(held []IngredientKind) (MenuRecipe, bool) {
	for _, r := range c.Menu.Recipes {
		if len(r.Ingredients) != len(held) {
			continue
		}
		want := make(map[IngredientKind]bool, len(r.Ingredients))
		for _, k := range r.Ingredients {
			want[k] = true
		}
		ok := true
		for _, k := range held {
			if !want[k] {
				ok = false
				break
			}
		}
		if ok {
			return r, true
		}
	}
	return MenuRecipe{}, false
}
