package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
)

// Layer is a bitmask used to filter queries, like engine collision layers.
type Layer uint32

const (
	LayerDefault Layer = 1 << iota
	LayerCounters

	LayerAll Layer = ^Layer(0)
)

func (l Layer) In(mask Layer) bool { return l&mask != 0 }

// AABB is an axis-aligned box in world meters; Y is up.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// BoxOnFloor builds a box whose bottom face is centered on base.
func BoxOnFloor(base, size mgl64.Vec3) AABB {
	hx, hz := size.X()/2, size.Z()/2
	return AABB{
		Min: mgl64.Vec3{base.X() - hx, base.Y(), base.Z() - hz},
		Max: mgl64.Vec3{base.X() + hx, base.Y() + size.Y(), base.Z() + hz},
	}
}

func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Contains(p mgl64.Vec3) bool {
	return p.X() > b.Min.X() && p.X() < b.Max.X() &&
		p.Y() > b.Min.Y() && p.Y() < b.Max.Y() &&
		p.Z() > b.Min.Z() && p.Z() < b.Max.Z()
}

// Body is a static collider. Owner carries whatever game object the collider
// belongs to (a counter, a wall) so query hits can be resolved to it.
type Body struct {
	ID    string
	Box   AABB
	Layer Layer
	Owner any

	seq int
	obj *resolv.Object
}

type Hit struct {
	Body     *Body
	Distance float64
	Point    mgl64.Vec3
}
