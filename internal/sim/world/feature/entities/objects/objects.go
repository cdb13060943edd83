// Package objects models kitchen objects (ingredients and plates) and the
// parents that hold them. Every object has exactly one parent; every parent
// holds at most one object.
package objects

import (
	"fmt"
	"sort"

	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/world/feature/plate"
	"kitchencraft.ai/internal/sim/world/logic/events"
	"kitchencraft.ai/internal/sim/world/logic/ids"
)

type Object struct {
	ID   string
	Item string
	// Plate is set for PLATE items.
	Plate *plate.Container

	parent Parent
}

func (o *Object) Parent() Parent { return o.parent }
func (o *Object) IsPlate() bool  { return o.Plate != nil }

func (o *Object) Ingredient() catalogs.IngredientKind { return catalogs.IngredientKind(o.Item) }

// Parent is a player or counter that can hold one object.
type Parent interface {
	ID() string
	KitchenObject() *Object
	SetKitchenObject(o *Object)
	ClearKitchenObject()
	HasKitchenObject() bool
}

// Slot implements the holding half of Parent for embedding.
type Slot struct {
	obj *Object
}

func (s *Slot) KitchenObject() *Object     { return s.obj }
func (s *Slot) SetKitchenObject(o *Object) { s.obj = o }
func (s *Slot) ClearKitchenObject()        { s.obj = nil }
func (s *Slot) HasKitchenObject() bool     { return s.obj != nil }

type ChangeKind int

const (
	Spawned ChangeKind = iota + 1
	Destroyed
	Moved
	IngredientAdded
)

type Change struct {
	Kind       ChangeKind
	Object     *Object
	ParentID   string
	Ingredient catalogs.IngredientKind
}

// Registry owns every live object.
type Registry struct {
	cat    *catalogs.Catalogs
	byID   map[string]*Object
	nextID uint64

	changes events.Feed[Change]
}

func NewRegistry(cat *catalogs.Catalogs) *Registry {
	return &Registry{cat: cat, byID: map[string]*Object{}, nextID: 1}
}

func (r *Registry) OnChange(fn func(Change)) (unsubscribe func()) {
	return r.changes.Subscribe(fn)
}

func (r *Registry) Get(id string) *Object { return r.byID[id] }
func (r *Registry) Len() int              { return len(r.byID) }
func (r *Registry) NextID() uint64        { return r.nextID }

// SetNextID sets the next object number; values below 1 are ignored.
func (r *Registry) SetNextID(n uint64) {
	if n >= 1 {
		r.nextID = n
	}
}

// All returns live objects ordered by id.
func (r *Registry) All() []*Object {
	out := make([]*Object, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := ids.ParseUintAfterPrefix(ids.ObjectPrefix, out[i].ID)
		b, _ := ids.ParseUintAfterPrefix(ids.ObjectPrefix, out[j].ID)
		return a < b
	})
	return out
}

// Spawn creates item on parent p, which must be empty.
func (r *Registry) Spawn(item string, p Parent) (*Object, error) {
	id := ids.ObjectID(r.nextID)
	o, err := r.create(id, item, p, nil)
	if err != nil {
		return nil, err
	}
	r.nextID++
	r.changes.Emit(Change{Kind: Spawned, Object: o, ParentID: p.ID()})
	return o, nil
}

// Restore recreates an object from saved state without emitting changes.
func (r *Registry) Restore(id, item string, ingredients []catalogs.IngredientKind, p Parent) (*Object, error) {
	if _, dup := r.byID[id]; dup {
		return nil, fmt.Errorf("objects: duplicate id %s", id)
	}
	o, err := r.create(id, item, p, ingredients)
	if err != nil {
		return nil, err
	}
	r.nextID = ids.MaxU64(r.nextID, ids.NextAfter(ids.ObjectPrefix, []string{id}, 1))
	return o, nil
}

func (r *Registry) create(id, item string, p Parent, ingredients []catalogs.IngredientKind) (*Object, error) {
	def, ok := r.cat.Item(item)
	if !ok {
		return nil, fmt.Errorf("objects: unknown item %s", item)
	}
	if p == nil {
		return nil, fmt.Errorf("objects: %s needs a parent", item)
	}
	if p.HasKitchenObject() {
		return nil, fmt.Errorf("objects: %s already holds an object", p.ID())
	}
	o := &Object{ID: id, Item: item, parent: p}
	if def.Kind == catalogs.KindPlate {
		o.Plate = plate.NewContainer(r.cat.PlateAllowList(item))
		for _, k := range ingredients {
			if !o.Plate.TryAdd(k) {
				return nil, fmt.Errorf("objects: %s cannot hold %s", id, k)
			}
		}
		r.watchPlate(o)
	} else if len(ingredients) > 0 {
		return nil, fmt.Errorf("objects: %s is not a plate", item)
	}
	p.SetKitchenObject(o)
	r.byID[id] = o
	return o, nil
}

func (r *Registry) watchPlate(o *Object) {
	o.Plate.OnIngredientAdded(func(e plate.IngredientAdded) {
		pid := ""
		if o.parent != nil {
			pid = o.parent.ID()
		}
		r.changes.Emit(Change{Kind: IngredientAdded, Object: o, ParentID: pid, Ingredient: e.Kind})
	})
}

// MoveTo reparents o onto p. It reports false when p already holds something.
func (r *Registry) MoveTo(o *Object, p Parent) bool {
	if o == nil || p == nil || p.HasKitchenObject() {
		return false
	}
	if o.parent != nil {
		o.parent.ClearKitchenObject()
	}
	o.parent = p
	p.SetKitchenObject(o)
	r.changes.Emit(Change{Kind: Moved, Object: o, ParentID: p.ID()})
	return true
}

// Destroy detaches o from its parent and forgets it.
func (r *Registry) Destroy(o *Object) {
	if o == nil {
		return
	}
	if _, ok := r.byID[o.ID]; !ok {
		return
	}
	pid := ""
	if o.parent != nil {
		pid = o.parent.ID()
		o.parent.ClearKitchenObject()
		o.parent = nil
	}
	delete(r.byID, o.ID)
	r.changes.Emit(Change{Kind: Destroyed, Object: o, ParentID: pid})
}
