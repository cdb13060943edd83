package mathx

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func near(a, b mgl64.Vec3) bool {
	return a.Sub(b).Len() < 1e-9
}

func TestSlerpYaw(t *testing.T) {
	fwd := mgl64.Vec3{0, 0, 1}
	right := mgl64.Vec3{1, 0, 0}
	if got := SlerpYaw(fwd, right, 1); !near(got, right) {
		t.Fatalf("full step: got %v", got)
	}
	half := SlerpYaw(fwd, right, 0.5)
	want := mgl64.Vec3{math.Sqrt2 / 2, 0, math.Sqrt2 / 2}
	if !near(half, want) {
		t.Fatalf("half step: got %v want %v", half, want)
	}
	if got := SlerpYaw(fwd, right, 3); !near(got, right) {
		t.Fatalf("t must clamp to 1: got %v", got)
	}
	if got := SlerpYaw(fwd, mgl64.Vec3{}, 0.5); !near(got, fwd) {
		t.Fatalf("zero target must keep facing: got %v", got)
	}
	back := SlerpYaw(fwd, mgl64.Vec3{0, 0, -1}, 0.5)
	if math.Abs(back.Y()) > 1e-9 || math.Abs(back.Len()-1) > 1e-9 {
		t.Fatalf("opposite turn must stay on the floor plane: %v", back)
	}
}

func TestNormalizeZero(t *testing.T) {
	if got := Normalize3(mgl64.Vec3{}); got != (mgl64.Vec3{}) {
		t.Fatalf("got %v", got)
	}
	if got := Normalize2(mgl64.Vec2{3, 4}); !got.ApproxEqual(mgl64.Vec2{0.6, 0.8}) {
		t.Fatalf("got %v", got)
	}
}

func TestYawDegrees(t *testing.T) {
	if got := YawDegrees(mgl64.Vec3{1, 0, 0}); math.Abs(got-90) > 1e-9 {
		t.Fatalf("yaw(+x)=%v", got)
	}
	if got := YawDegrees(mgl64.Vec3{0, 0, 1}); got != 0 {
		t.Fatalf("yaw(+z)=%v", got)
	}
}
