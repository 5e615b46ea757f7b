package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestCamera() Camera {
	return NewCamera(
		WithFov(mgl32.DegToRad(90)),
		WithAspect(2),
		WithNear(1),
		WithFar(100),
		WithController(NewStaticController(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, 0})),
	)
}

func TestForwardFollowsController(t *testing.T) {
	c := newTestCamera()
	if !c.Forward().ApproxEqual(mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("forward = %v, want (0,0,-1)", c.Forward())
	}
	if !c.Position().ApproxEqual(mgl32.Vec3{0, 0, 10}) {
		t.Fatalf("position = %v", c.Position())
	}
}

func TestFrustumCornersSlice(t *testing.T) {
	c := newTestCamera()
	corners := c.FrustumCorners(2, 4)

	// fov 90 => half height equals distance; aspect 2 doubles the half width.
	wantNear := [4]mgl32.Vec3{{-4, -2, 8}, {4, -2, 8}, {4, 2, 8}, {-4, 2, 8}}
	wantFar := [4]mgl32.Vec3{{-8, -4, 6}, {8, -4, 6}, {8, 4, 6}, {-8, 4, 6}}
	for i := 0; i < 4; i++ {
		if !corners[i].ApproxEqualThreshold(wantNear[i], 1e-4) {
			t.Errorf("near corner %d = %v, want %v", i, corners[i], wantNear[i])
		}
		if !corners[i+4].ApproxEqualThreshold(wantFar[i], 1e-4) {
			t.Errorf("far corner %d = %v, want %v", i, corners[i+4], wantFar[i])
		}
	}
}

func TestPerspectiveZODepthRange(t *testing.T) {
	p := PerspectiveZO(mgl32.DegToRad(60), 1, 1, 100)

	ndcZ := func(d float32) float32 {
		v := p.Mul4x1(mgl32.Vec4{0, 0, -d, 1})
		return v[2] / v[3]
	}
	if z := ndcZ(1); math.Abs(float64(z)) > 1e-5 {
		t.Errorf("near maps to %v, want 0", z)
	}
	if z := ndcZ(100); math.Abs(float64(z-1)) > 1e-5 {
		t.Errorf("far maps to %v, want 1", z)
	}
}

func TestOrthoZODepthRange(t *testing.T) {
	o := OrthoZO(-1, 1, -1, 1, 0, 10)
	if z := o.Mul4x1(mgl32.Vec4{0, 0, 0, 1})[2]; math.Abs(float64(z)) > 1e-6 {
		t.Errorf("near face maps to %v, want 0", z)
	}
	if z := o.Mul4x1(mgl32.Vec4{0, 0, -10, 1})[2]; math.Abs(float64(z-1)) > 1e-6 {
		t.Errorf("far face maps to %v, want 1", z)
	}
}

func TestFrustumContainsTarget(t *testing.T) {
	c := newTestCamera()
	f := c.Frustum()
	if !f.IntersectsSphere(mgl32.Vec3{0, 0, 0}, 0.1) {
		t.Error("target should be inside the frustum")
	}
	if f.IntersectsSphere(mgl32.Vec3{0, 0, 20}, 1) {
		t.Error("point behind the eye should be culled")
	}
}

func TestOrbitControllerClampsElevation(t *testing.T) {
	o := NewOrbitController(mgl32.Vec3{}, 10, 0, 0)
	o.Orbit(0, 10)
	p := o.Position()
	if p[1] >= 10 || p[1] < 9.9 {
		t.Errorf("elevation not clamped near the pole: y = %v", p[1])
	}
	o.Zoom(100)
	if o.Radius() != 1 {
		t.Errorf("radius = %v, want clamped to 1", o.Radius())
	}
}
