package model

import (
	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshData is the CPU-side form of a depth-only mesh: positions, triangle
// indices and optional per-instance transforms.
type MeshData struct {
	// Name is the mesh identifier.
	Name string

	// Positions are tightly packed xyz triples in model space.
	Positions []float32

	// Indices are the triangle indices. Empty for non-indexed meshes.
	Indices []uint32

	// Instances are per-instance transforms relative to the owner's world matrix.
	// Empty means one implicit identity instance.
	Instances []mgl32.Mat4
}

// VertexCount returns the number of vertices.
//
// Returns:
//   - int: vertex count
func (m *MeshData) VertexCount() int {
	return len(m.Positions) / 3
}

// InstanceCount returns the number of instances the mesh draws.
//
// Returns:
//   - int: the explicit instance count, or 1 when no instances are listed
func (m *MeshData) InstanceCount() int {
	if len(m.Instances) == 0 {
		return 1
	}
	return len(m.Instances)
}

// Bounds returns a bounding sphere of every instance of the mesh in owner space.
//
// Returns:
//   - common.BoundingSphere: the enclosing sphere
func (m *MeshData) Bounds() common.BoundingSphere {
	local := common.SphereFromPositions(m.Positions)
	if len(m.Instances) == 0 {
		return local
	}
	var out common.BoundingSphere
	for _, inst := range m.Instances {
		out = out.Union(local.Transform(inst))
	}
	return out
}

// Merge appends another mesh, rebasing its indices onto the current vertex count.
// Instances are not merged.
//
// Parameters:
//   - o: the mesh to append
func (m *MeshData) Merge(o MeshData) {
	base := uint32(m.VertexCount())
	if len(m.Indices) == 0 && len(m.Positions) > 0 && len(o.Indices) > 0 {
		m.Indices = sequentialIndices(0, m.VertexCount())
	}
	m.Positions = append(m.Positions, o.Positions...)
	switch {
	case len(o.Indices) > 0:
		for _, idx := range o.Indices {
			m.Indices = append(m.Indices, idx+base)
		}
	case len(m.Indices) > 0:
		m.Indices = append(m.Indices, sequentialIndices(base, o.VertexCount())...)
	}
}

func sequentialIndices(base uint32, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = base + uint32(i)
	}
	return out
}
