package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/bind_group_provider"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	mu *sync.Mutex

	name         string
	meshProvider bind_group_provider.BindGroupProvider

	vertexData   []byte
	indexData    []byte
	instanceData []byte
	vertexCount  int
	indexCount   int

	instanceCount int
	local         common.BoundingSphere // single-instance sphere
	bounds        common.BoundingSphere
}

// Model is a drawable mesh handle: GPU vertex, index and instance buffers held
// by a BindGroupProvider, plus the counts a draw call needs.
// It is produced from MeshData and initialized with Renderer.InitMesh.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// MeshProvider retrieves the BindGroupProvider holding GPU mesh resources.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider

	// VertexData returns the marshaled vertex buffer contents.
	//
	// Returns:
	//   - []byte: position-only vertex data
	VertexData() []byte

	// IndexData returns the marshaled index buffer contents, or nil for non-indexed meshes.
	//
	// Returns:
	//   - []byte: uint32 index data
	IndexData() []byte

	// InstanceData returns the marshaled instance transforms.
	//
	// Returns:
	//   - []byte: 64 bytes per instance
	InstanceData() []byte

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: vertex count
	VertexCount() int

	// IndexCount returns the number of indices, 0 for non-indexed meshes.
	//
	// Returns:
	//   - int: index count
	IndexCount() int

	// InstanceCount returns the number of instances to draw.
	//
	// Returns:
	//   - int: instance count
	InstanceCount() int

	// SetInstances replaces the instance transforms and recomputes Bounds. The GPU copy
	// is refreshed by Renderer.UpdateInstances.
	//
	// Parameters:
	//   - instances: per-instance transforms
	SetInstances(instances []mgl32.Mat4)

	// Bounds returns the bounding sphere of all instances in owner space.
	//
	// Returns:
	//   - common.BoundingSphere: the sphere
	Bounds() common.BoundingSphere
}

var _ Model = &model{}

// NewModel creates a Model from CPU mesh data.
//
// Parameters:
//   - data: the mesh data
//   - options: functional options to configure the model
//
// Returns:
//   - Model: the new model
func NewModel(data MeshData, options ...ModelBuilderOption) Model {
	m := &model{
		mu:   &sync.Mutex{},
		name: data.Name,
	}
	m.vertexData = MarshalPositions(data.Positions)
	m.vertexCount = data.VertexCount()
	if len(data.Indices) > 0 {
		m.indexData = MarshalIndices(data.Indices)
		m.indexCount = len(data.Indices)
	}
	instances := data.Instances
	if len(instances) == 0 {
		instances = []mgl32.Mat4{mgl32.Ident4()}
	}
	m.instanceData = MarshalInstances(instances)
	m.instanceCount = len(instances)
	m.local = common.SphereFromPositions(data.Positions)
	m.bounds = data.Bounds()

	for _, option := range options {
		option(m)
	}
	if m.meshProvider == nil {
		m.meshProvider = bind_group_provider.NewBindGroupProvider(m.name,
			bind_group_provider.WithIndexCount(m.indexCount),
		)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.meshProvider
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) IndexData() []byte {
	return m.indexData
}

func (m *model) InstanceData() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instanceData
}

func (m *model) VertexCount() int {
	return m.vertexCount
}

func (m *model) IndexCount() int {
	return m.indexCount
}

func (m *model) InstanceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instanceCount
}

func (m *model) SetInstances(instances []mgl32.Mat4) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instanceData = MarshalInstances(instances)
	m.instanceCount = len(instances)

	var bounds common.BoundingSphere
	for _, inst := range instances {
		bounds = bounds.Union(m.local.Transform(inst))
	}
	m.bounds = bounds
}

func (m *model) Bounds() common.BoundingSphere {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bounds
}
