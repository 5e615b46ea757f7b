package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// unitBoxZO maps x,y in [-1, 1] and z in [-10, 0] to WebGPU clip space.
func unitBoxZO() mgl32.Mat4 {
	m := mgl32.Ident4()
	m[10] = -0.1
	return m
}

func TestSphereFromPositions(t *testing.T) {
	s := SphereFromPositions([]float32{-1, 0, 0, 1, 0, 0, 0, 2, 0})
	if !s.Center.ApproxEqual(mgl32.Vec3{0, 1, 0}) {
		t.Errorf("center = %v", s.Center)
	}
	if math.Abs(float64(s.Radius)-math.Sqrt2) > 1e-5 {
		t.Errorf("radius = %v, want sqrt(2)", s.Radius)
	}
	if (SphereFromPositions(nil) != BoundingSphere{}) {
		t.Error("empty input should give a zero sphere")
	}
}

func TestSphereTransformScalesRadius(t *testing.T) {
	s := BoundingSphere{Center: mgl32.Vec3{1, 0, 0}, Radius: 2}
	m := mgl32.Translate3D(0, 5, 0).Mul4(mgl32.Scale3D(1, 3, 1))
	got := s.Transform(m)
	if !got.Center.ApproxEqual(mgl32.Vec3{1, 5, 0}) || got.Radius != 6 {
		t.Errorf("transformed = %+v", got)
	}
}

func TestSphereUnion(t *testing.T) {
	a := BoundingSphere{Center: mgl32.Vec3{0, 0, 0}, Radius: 1}
	b := BoundingSphere{Center: mgl32.Vec3{4, 0, 0}, Radius: 1}
	u := a.Union(b)
	if !u.Center.ApproxEqual(mgl32.Vec3{2, 0, 0}) || math.Abs(float64(u.Radius-3)) > 1e-5 {
		t.Errorf("union = %+v", u)
	}
	inner := BoundingSphere{Center: mgl32.Vec3{0.5, 0, 0}, Radius: 0.25}
	if a.Union(inner) != a {
		t.Error("contained sphere should not grow the union")
	}
	if (BoundingSphere{}).Union(b) != b {
		t.Error("zero sphere should be ignored")
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	f := ExtractFrustumFromMatrix(unitBoxZO())
	tests := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		want   bool
	}{
		{"inside", mgl32.Vec3{0, 0, -5}, 0.1, true},
		{"straddles left", mgl32.Vec3{-1.2, 0, -5}, 0.5, true},
		{"past right", mgl32.Vec3{3, 0, -5}, 0.5, false},
		{"behind near", mgl32.Vec3{0, 0, 2}, 1, false},
		{"beyond far", mgl32.Vec3{0, 0, -12}, 1, false},
		{"touching far", mgl32.Vec3{0, 0, -10.5}, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IntersectsSphere(tt.center, tt.radius); got != tt.want {
				t.Errorf("IntersectsSphere = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrustumIntersectsAABB(t *testing.T) {
	f := ExtractFrustumFromMatrix(unitBoxZO())
	if !f.IntersectsAABB(mgl32.Vec3{0.5, 0.5, -3}, mgl32.Vec3{2, 2, -1}) {
		t.Error("overlapping box rejected")
	}
	if f.IntersectsAABB(mgl32.Vec3{2, 2, -3}, mgl32.Vec3{3, 3, -1}) {
		t.Error("outside box accepted")
	}
}

func TestTextureStagingLayers(t *testing.T) {
	s := TextureStagingData{Width: 2, Height: 1, Layers: 3, BytesPerTexel: 4, Pixels: make([]byte, 24)}
	s.Pixels[8] = 7
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	if s.LayerSize() != 8 {
		t.Errorf("layer size = %d", s.LayerSize())
	}
	if l := s.Layer(1); len(l) != 8 || l[0] != 7 {
		t.Errorf("layer 1 = %v", l)
	}
	if s.Layer(3) != nil || s.Layer(-1) != nil {
		t.Error("out of range layers should be nil")
	}

	s.Pixels = s.Pixels[:20]
	if err := s.Validate(); err == nil {
		t.Error("expected size mismatch")
	}
	if err := (TextureStagingData{}).Validate(); err == nil {
		t.Error("expected zero extent error")
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce[uint32](0, 0, 4, 8); got != 4 {
		t.Errorf("Coalesce = %d, want 4", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Errorf("Coalesce = %q, want empty", got)
	}
}

func TestSliceToBytesViewsMemory(t *testing.T) {
	data := []float32{1.5, -2}
	b := SliceToBytes(data)
	if len(b) != 8 {
		t.Fatalf("len = %d", len(b))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[4:])); got != -2 {
		t.Errorf("second value = %v", got)
	}
	if SliceToBytes[float32](nil) != nil {
		t.Error("empty slice should give nil")
	}
}
