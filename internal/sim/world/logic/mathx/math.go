package mathx

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// zeroEps2 matches the squared-magnitude tolerance engines use for vector equality.
const zeroEps2 = 1e-10

var Up = mgl64.Vec3{0, 1, 0}

// Flat lifts a 2-D input vector onto the floor plane: (x, 0, y).
func Flat(in mgl64.Vec2) mgl64.Vec3 {
	return mgl64.Vec3{in.X(), 0, in.Y()}
}

func IsZero3(v mgl64.Vec3) bool {
	return v.Dot(v) < zeroEps2
}

func IsZero2(v mgl64.Vec2) bool {
	return v.Dot(v) < zeroEps2
}

// Normalize3 returns the unit vector of v, or the zero vector when v has no length.
func Normalize3(v mgl64.Vec3) mgl64.Vec3 {
	if IsZero3(v) {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}

func Normalize2(v mgl64.Vec2) mgl64.Vec2 {
	if IsZero2(v) {
		return mgl64.Vec2{}
	}
	return v.Normalize()
}

func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// SlerpYaw rotates the horizontal direction from toward to by fraction t of the
// angle between them, around the vertical axis. The result keeps the length of from.
func SlerpYaw(from, to mgl64.Vec3, t float64) mgl64.Vec3 {
	t = Clamp01(t)
	f := mgl64.Vec3{from.X(), 0, from.Z()}
	g := mgl64.Vec3{to.X(), 0, to.Z()}
	if IsZero3(g) {
		return from
	}
	if IsZero3(f) {
		return Normalize3(g)
	}
	angle := math.Atan2(f.Cross(g).Y(), f.Dot(g))
	if angle == 0 || t == 0 {
		return f
	}
	return mgl64.QuatRotate(angle*t, Up).Rotate(f)
}

// YawDegrees reports the heading of a floor-plane direction, 0 along +Z, clockwise positive.
func YawDegrees(v mgl64.Vec3) float64 {
	if IsZero3(v) {
		return 0
	}
	return mgl64.RadToDeg(math.Atan2(v.X(), v.Z()))
}

func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
