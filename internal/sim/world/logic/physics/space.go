package physics

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"

	"kitchencraft.ai/internal/sim/world/logic/mathx"
)

const (
	// Broadphase works in centimeters on a grid of one-meter cells.
	unitsPerMeter = 100.0
	cellUnits     = 100

	tagBody  = "body"
	tagProbe = "probe"
)

// Space answers sweep and ray queries against static bodies on the floor plane.
// The resolv grid is the broadphase; exact tests run on the returned candidates.
type Space struct {
	min, max mgl64.Vec2 // XZ bounds

	grid  *resolv.Space
	probe *resolv.Object

	bodies  map[string]*Body
	nextSeq int
}

func NewSpace(min, max mgl64.Vec2) (*Space, error) {
	if max.X() <= min.X() || max.Y() <= min.Y() {
		return nil, fmt.Errorf("physics: empty bounds %v..%v", min, max)
	}
	w := int(math.Ceil((max.X()-min.X())*unitsPerMeter)) + cellUnits
	h := int(math.Ceil((max.Y()-min.Y())*unitsPerMeter)) + cellUnits
	s := &Space{
		min:    min,
		max:    max,
		grid:   resolv.NewSpace(w, h, cellUnits, cellUnits),
		probe:  resolv.NewObject(0, 0, 1, 1, tagProbe),
		bodies: map[string]*Body{},
	}
	s.grid.Add(s.probe)
	return s, nil
}

func (s *Space) Bounds() (mgl64.Vec2, mgl64.Vec2) { return s.min, s.max }

func (s *Space) Add(b *Body) error {
	if b == nil || b.ID == "" {
		return fmt.Errorf("physics: body needs an id")
	}
	if _, dup := s.bodies[b.ID]; dup {
		return fmt.Errorf("physics: duplicate body %q", b.ID)
	}
	if b.Box.Min.X() < s.min.X() || b.Box.Min.Z() < s.min.Y() || b.Box.Max.X() > s.max.X() || b.Box.Max.Z() > s.max.Y() {
		return fmt.Errorf("physics: body %q outside bounds", b.ID)
	}
	x, y := s.toGrid(b.Box.Min.X(), b.Box.Min.Z())
	b.obj = resolv.NewObject(x, y, (b.Box.Max.X()-b.Box.Min.X())*unitsPerMeter, (b.Box.Max.Z()-b.Box.Min.Z())*unitsPerMeter, tagBody)
	b.obj.Data = b
	b.seq = s.nextSeq
	s.nextSeq++
	s.grid.Add(b.obj)
	s.bodies[b.ID] = b
	return nil
}

func (s *Space) Remove(id string) {
	b, ok := s.bodies[id]
	if !ok {
		return
	}
	s.grid.Remove(b.obj)
	delete(s.bodies, id)
}

func (s *Space) Body(id string) *Body { return s.bodies[id] }

// Bodies returns all bodies in insertion order.
func (s *Space) Bodies() []*Body {
	out := make([]*Body, 0, len(s.bodies))
	for _, b := range s.bodies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (s *Space) toGrid(x, z float64) (float64, float64) {
	return (x - s.min.X()) * unitsPerMeter, (z - s.min.Y()) * unitsPerMeter
}

// candidates returns bodies whose grid cells touch the XZ rectangle, padded by a cell.
func (s *Space) candidates(lo, hi mgl64.Vec2) []*Body {
	x, y := s.toGrid(lo.X(), lo.Y())
	s.probe.X = x - cellUnits
	s.probe.Y = y - cellUnits
	s.probe.W = (hi.X()-lo.X())*unitsPerMeter + 2*cellUnits
	s.probe.H = (hi.Y()-lo.Y())*unitsPerMeter + 2*cellUnits
	s.probe.Update()

	col := s.probe.Check(0, 0, tagBody)
	if col == nil {
		return nil
	}
	out := make([]*Body, 0, len(col.Objects))
	for _, o := range col.Objects {
		if b, ok := o.Data.(*Body); ok {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// CapsuleCast reports whether a vertical capsule with sphere centers bottom and
// top, moving dist along the horizontal part of dir, would hit any body.
func (s *Space) CapsuleCast(bottom, top mgl64.Vec3, radius float64, dir mgl64.Vec3, dist float64) bool {
	_, ok := s.CapsuleCastMask(bottom, top, radius, dir, dist, LayerAll)
	return ok
}

func (s *Space) CapsuleCastMask(bottom, top mgl64.Vec3, radius float64, dir mgl64.Vec3, dist float64, mask Layer) (Hit, bool) {
	d2 := mgl64.Vec2{dir.X(), dir.Z()}
	if mathx.IsZero2(d2) || dist <= 0 {
		return Hit{}, false
	}
	d2 = d2.Normalize()
	c := mgl64.Vec2{bottom.X(), bottom.Z()}
	end := c.Add(d2.Mul(dist))
	lo := mgl64.Vec2{math.Min(c.X(), end.X()) - radius, math.Min(c.Y(), end.Y()) - radius}
	hi := mgl64.Vec2{math.Max(c.X(), end.X()) + radius, math.Max(c.Y(), end.Y()) + radius}

	var best Hit
	found := false
	for _, b := range s.candidates(lo, hi) {
		if !b.Layer.In(mask) {
			continue
		}
		t, ok := capsuleSweep(bottom, top, radius, d2, dist, b.Box)
		if !ok {
			continue
		}
		if !found || t < best.Distance {
			p := c.Add(d2.Mul(t))
			best = Hit{Body: b, Distance: t, Point: mgl64.Vec3{p.X(), bottom.Y(), p.Y()}}
			found = true
		}
	}
	return best, found
}

// Raycast returns the nearest body on mask hit by the ray within maxDist.
func (s *Space) Raycast(origin, dir mgl64.Vec3, maxDist float64, mask Layer) (Hit, bool) {
	if mathx.IsZero3(dir) || maxDist <= 0 {
		return Hit{}, false
	}
	d := dir.Normalize()
	end := origin.Add(d.Mul(maxDist))
	lo := mgl64.Vec2{math.Min(origin.X(), end.X()), math.Min(origin.Z(), end.Z())}
	hi := mgl64.Vec2{math.Max(origin.X(), end.X()), math.Max(origin.Z(), end.Z())}

	var best Hit
	found := false
	for _, b := range s.candidates(lo, hi) {
		if !b.Layer.In(mask) {
			continue
		}
		t, ok := rayBox(origin, d, maxDist, b.Box)
		if !ok {
			continue
		}
		if !found || t < best.Distance {
			best = Hit{Body: b, Distance: t, Point: origin.Add(d.Mul(t))}
			found = true
		}
	}
	return best, found
}
