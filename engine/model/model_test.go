package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func triangle() MeshData {
	return MeshData{
		Name:      "tri",
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 2},
	}
}

func TestNewModelCounts(t *testing.T) {
	m := NewModel(triangle())
	if m.VertexCount() != 3 || m.IndexCount() != 3 {
		t.Fatalf("counts = %d/%d", m.VertexCount(), m.IndexCount())
	}
	if m.InstanceCount() != 1 {
		t.Errorf("implicit instance count = %d, want 1", m.InstanceCount())
	}
	if len(m.VertexData()) != 3*VertexStride {
		t.Errorf("vertex data len = %d", len(m.VertexData()))
	}
	if m.MeshProvider().IndexCount() != 3 {
		t.Errorf("provider index count = %d", m.MeshProvider().IndexCount())
	}
}

func TestSetInstancesZero(t *testing.T) {
	m := NewModel(triangle())
	m.SetInstances(nil)
	if m.InstanceCount() != 0 || len(m.InstanceData()) != 0 {
		t.Errorf("expected no instances, got %d", m.InstanceCount())
	}
}

func TestMarshalInstancesColumnMajor(t *testing.T) {
	buf := MarshalInstances([]mgl32.Mat4{mgl32.Translate3D(1, 2, 3)})
	if len(buf) != InstanceStride {
		t.Fatalf("len = %d", len(buf))
	}
	tx := math.Float32frombits(binary.LittleEndian.Uint32(buf[48:]))
	if tx != 1 {
		t.Errorf("translation x at offset 48 = %v, want 1", tx)
	}
}

func TestBoundsCoverInstances(t *testing.T) {
	d := triangle()
	d.Instances = []mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(100, 0, 0)}
	b := d.Bounds()
	for _, p := range []mgl32.Vec3{{0, 0, 0}, {101, 0, 0}} {
		if p.Sub(b.Center).Len() > b.Radius+1e-3 {
			t.Errorf("point %v outside bounds %+v", p, b)
		}
	}
}

func TestMergeRebasesIndices(t *testing.T) {
	a := triangle()
	a.Merge(triangle())
	if a.VertexCount() != 6 {
		t.Fatalf("vertex count = %d", a.VertexCount())
	}
	want := []uint32{0, 1, 2, 3, 4, 5}
	for i, v := range want {
		if a.Indices[i] != v {
			t.Fatalf("indices = %v, want %v", a.Indices, want)
		}
	}

	b := MeshData{Positions: []float32{0, 0, 0, 1, 1, 1, 2, 2, 2}}
	b.Merge(triangle())
	if len(b.Indices) != 6 || b.Indices[3] != 3 {
		t.Errorf("non-indexed merge indices = %v", b.Indices)
	}
}

func TestSetInstancesRecomputesBounds(t *testing.T) {
	m := NewModel(triangle())
	m.SetInstances([]mgl32.Mat4{mgl32.Translate3D(100, 0, 0)})

	b := m.Bounds()
	if b.Center.X() < 99 {
		t.Errorf("bounds center = %v, want near x=100", b.Center)
	}

	m.SetInstances(nil)
	if m.Bounds().Radius != 0 {
		t.Errorf("zero-instance radius = %v", m.Bounds().Radius)
	}
}
