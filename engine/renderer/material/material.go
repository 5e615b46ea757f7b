package material

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrUnknownUniform is returned when a material has no uniform with the given name.
	ErrUnknownUniform = errors.New("material: unknown uniform")
	// ErrUniformType is returned when a value does not match the uniform's declared type.
	ErrUniformType = errors.New("material: uniform type mismatch")
)

// Kind identifies one of the depth-only programs.
type Kind int

const (
	KindBuilding Kind = iota
	KindHugging
	KindInstance
	KindTree
	KindAircraft
)

func (k Kind) String() string {
	switch k {
	case KindBuilding:
		return "building"
	case KindHugging:
		return "hugging"
	case KindInstance:
		return "instance"
	case KindTree:
		return "tree"
	case KindAircraft:
		return "aircraft"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// material is the implementation of the DepthMaterial interface.
type material struct {
	mu *sync.Mutex

	name        string
	kind        Kind
	pipelineKey string
	source      string
	instanced   bool
	cullMode    wgpu.CullMode

	uniforms  []Uniform
	byName    map[string]int
	blockSize [groupCount]uint64

	// staging holds the bytes last flushed per group; pending holds writes not yet flushed.
	staging   [groupCount][]byte
	pending   [groupCount]map[string]any
	committed map[string]any

	providers [groupCount]bind_group_provider.BindGroupProvider
}

// DepthMaterial is a depth-only shader program with a fixed uniform contract.
//
// Writes are staged with Set and become visible to the GPU only when their group
// is flushed: Flush returns the BufferWrites to hand to Renderer.WriteBuffers and
// moves texture bindings onto the group's BindGroupProvider.
type DepthMaterial interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Kind returns which depth program this material is.
	//
	// Returns:
	//   - Kind: the program kind
	Kind() Kind

	// PipelineKey retrieves the key identifying the depth pipeline this material uses.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// ShaderSource returns the WGSL source of the vertex program.
	//
	// Returns:
	//   - string: WGSL source with entry point vs_main
	ShaderSource() string

	// Instanced reports whether the program reads per-instance transforms.
	//
	// Returns:
	//   - bool: true for the instanced programs
	Instanced() bool

	// CullMode returns the rasterizer cull mode for the program.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// Uniforms returns the uniform contract in declaration order.
	//
	// Returns:
	//   - []Uniform: the uniform slots
	Uniforms() []Uniform

	// BlockSize returns the byte size of a group's uniform struct, 0 if the group has no struct members.
	//
	// Parameters:
	//   - group: the uniform group
	//
	// Returns:
	//   - uint64: struct size in bytes
	BlockSize(group UniformGroup) uint64

	// Set stages a value for a uniform. Accepted Go types are mgl32.Mat4, float32,
	// int32, mgl32.Vec2 and *wgpu.TextureView.
	//
	// Parameters:
	//   - name: the uniform name
	//   - value: the value to stage
	//
	// Returns:
	//   - error: ErrUnknownUniform or ErrUniformType
	Set(name string, value any) error

	// Flush makes every staged write in a group visible.
	//
	// Parameters:
	//   - group: the uniform group
	//
	// Returns:
	//   - []bind_group_provider.BufferWrite: buffer writes for the group, nil if nothing was staged
	Flush(group UniformGroup) []bind_group_provider.BufferWrite

	// Committed returns the last flushed value of a uniform.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - any: the flushed value
	//   - bool: false if the uniform was never flushed
	Committed(name string) (any, bool)

	// Pending reports whether a group has staged writes.
	//
	// Parameters:
	//   - group: the uniform group
	//
	// Returns:
	//   - bool: true if Flush would produce writes
	Pending(group UniformGroup) bool

	// Provider returns the bind group provider for a group, or nil if the group is empty.
	//
	// Parameters:
	//   - group: the uniform group
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider or nil
	Provider(group UniformGroup) bind_group_provider.BindGroupProvider

	// BindGroups returns the providers in bind group index order, trimmed after the
	// highest used group. Unused groups below it are nil.
	//
	// Returns:
	//   - []bind_group_provider.BindGroupProvider: providers indexed by group
	BindGroups() []bind_group_provider.BindGroupProvider

	// Release frees the GPU resources of every group.
	Release()
}

var _ DepthMaterial = &material{}

func newMaterial(kind Kind, source string, decls []uniformDecl, options ...MaterialBuilderOption) *material {
	m := &material{
		mu:          &sync.Mutex{},
		name:        kind.String(),
		kind:        kind,
		pipelineKey: "depth_" + kind.String(),
		source:      source,
		cullMode:    wgpu.CullModeBack,
		byName:      make(map[string]int),
		committed:   make(map[string]any),
	}
	m.uniforms, m.blockSize = layoutUniforms(decls)
	for i, u := range m.uniforms {
		m.byName[u.Name] = i
	}
	for _, opt := range options {
		opt(m)
	}

	var used [groupCount]bool
	for _, u := range m.uniforms {
		used[u.Group] = true
	}
	for g := UniformGroup(0); g < groupCount; g++ {
		m.pending[g] = make(map[string]any)
		if !used[g] {
			continue
		}
		var opts []bind_group_provider.BindGroupProviderOption
		if m.blockSize[g] > 0 {
			m.staging[g] = make([]byte, m.blockSize[g])
			opts = append(opts, bind_group_provider.WithUniformBuffer(0, m.blockSize[g]))
		}
		m.providers[g] = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s_%s", m.name, g), opts...)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Kind() Kind {
	return m.kind
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) ShaderSource() string {
	return m.source
}

func (m *material) Instanced() bool {
	return m.instanced
}

func (m *material) CullMode() wgpu.CullMode {
	return m.cullMode
}

func (m *material) Uniforms() []Uniform {
	out := make([]Uniform, len(m.uniforms))
	copy(out, m.uniforms)
	return out
}

func (m *material) BlockSize(group UniformGroup) uint64 {
	if group < 0 || group >= groupCount {
		return 0
	}
	return m.blockSize[group]
}

func (m *material) Set(name string, value any) error {
	i, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s has no %q", ErrUnknownUniform, m.name, name)
	}
	u := m.uniforms[i]
	t, ok := typeOf(value)
	if !ok || t != u.Type {
		return fmt.Errorf("%w: %s.%s is %s, got %T", ErrUniformType, m.name, name, u.Type, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[u.Group][name] = value
	return nil
}

func (m *material) Flush(group UniformGroup) []bind_group_provider.BufferWrite {
	if group < 0 || group >= groupCount {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := m.pending[group]
	if len(pending) == 0 {
		return nil
	}
	provider := m.providers[group]
	structDirty := false
	for name, value := range pending {
		u := m.uniforms[m.byName[name]]
		if u.Type == UniformTexture {
			provider.SetTextureView(u.Binding, value.(*wgpu.TextureView))
		} else {
			encodeUniform(m.staging[group], u, value)
			structDirty = true
		}
		m.committed[name] = value
		delete(pending, name)
	}
	if !structDirty {
		return nil
	}
	data := make([]byte, len(m.staging[group]))
	copy(data, m.staging[group])
	return []bind_group_provider.BufferWrite{{
		Provider: provider,
		Binding:  0,
		Offset:   0,
		Data:     data,
	}}
}

func (m *material) Committed(name string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.committed[name]
	return v, ok
}

func (m *material) Pending(group UniformGroup) bool {
	if group < 0 || group >= groupCount {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending[group]) > 0
}

func (m *material) Provider(group UniformGroup) bind_group_provider.BindGroupProvider {
	if group < 0 || group >= groupCount {
		return nil
	}
	return m.providers[group]
}

func (m *material) BindGroups() []bind_group_provider.BindGroupProvider {
	n := 0
	for g, p := range m.providers {
		if p != nil {
			n = g + 1
		}
	}
	out := make([]bind_group_provider.BindGroupProvider, n)
	copy(out, m.providers[:n])
	return out
}

func (m *material) Release() {
	for _, p := range m.providers {
		if p != nil {
			p.Release()
		}
	}
}

// ModelView is a convenience for the per-draw transform every program consumes.
//
// Parameters:
//   - viewInverse: the world-to-camera matrix
//   - world: the item's world transform
//
// Returns:
//   - mgl32.Mat4: viewInverse * world
func ModelView(viewInverse, world mgl32.Mat4) mgl32.Mat4 {
	return viewInverse.Mul4(world)
}
