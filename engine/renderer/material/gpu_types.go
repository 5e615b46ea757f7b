package material

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// UniformGroup partitions a material's uniforms by update frequency. Each group
// maps to one bind group; values written to a group become visible to the GPU
// only when the group is flushed.
type UniformGroup int

const (
	// GroupPerMaterial holds values written once per cascade (projection, textures).
	GroupPerMaterial UniformGroup = iota
	// GroupPerMesh holds values written before every draw (model-view and extras).
	GroupPerMesh
	// GroupMainBlock holds engine-wide values shared by every draw.
	GroupMainBlock

	groupCount
)

func (g UniformGroup) String() string {
	switch g {
	case GroupPerMaterial:
		return "PerMaterial"
	case GroupPerMesh:
		return "PerMesh"
	case GroupMainBlock:
		return "MainBlock"
	default:
		return fmt.Sprintf("UniformGroup(%d)", int(g))
	}
}

// UniformType is the WGSL type of a uniform slot.
type UniformType int

const (
	UniformMat4 UniformType = iota
	UniformFloat
	UniformInt
	UniformVec2
	// UniformTexture is a texture_2d_array binding rather than a struct member.
	UniformTexture
)

// size and align follow WGSL uniform address space rules.
func (t UniformType) size() uint64 {
	switch t {
	case UniformMat4:
		return 64
	case UniformVec2:
		return 8
	case UniformTexture:
		return 0
	default:
		return 4
	}
}

func (t UniformType) align() uint64 {
	switch t {
	case UniformMat4:
		return 16
	case UniformVec2:
		return 8
	default:
		return 4
	}
}

func (t UniformType) String() string {
	switch t {
	case UniformMat4:
		return "mat4x4<f32>"
	case UniformFloat:
		return "f32"
	case UniformInt:
		return "i32"
	case UniformVec2:
		return "vec2<f32>"
	case UniformTexture:
		return "texture_2d_array<f32>"
	default:
		return fmt.Sprintf("UniformType(%d)", int(t))
	}
}

// Uniform is one named slot in a material's uniform contract.
// Struct members live at Binding 0 of their group's bind group at Offset;
// textures take their own Binding.
type Uniform struct {
	Name    string
	Group   UniformGroup
	Type    UniformType
	Binding int
	Offset  uint64
}

// uniformDecl is the declaration form used by the material constructors.
type uniformDecl struct {
	name  string
	group UniformGroup
	typ   UniformType
}

// layoutUniforms assigns offsets and bindings in declaration order and returns the
// per-group struct sizes rounded up to 16 bytes.
func layoutUniforms(decls []uniformDecl) ([]Uniform, [groupCount]uint64) {
	var sizes [groupCount]uint64
	var nextBinding [groupCount]int
	for g := range nextBinding {
		nextBinding[g] = 1
	}

	out := make([]Uniform, 0, len(decls))
	for _, d := range decls {
		u := Uniform{Name: d.name, Group: d.group, Type: d.typ}
		if d.typ == UniformTexture {
			u.Binding = nextBinding[d.group]
			nextBinding[d.group]++
		} else {
			a := d.typ.align()
			off := (sizes[d.group] + a - 1) / a * a
			u.Offset = off
			sizes[d.group] = off + d.typ.size()
		}
		out = append(out, u)
	}
	for g := range sizes {
		sizes[g] = (sizes[g] + 15) / 16 * 16
	}
	return out, sizes
}

// encodeUniform writes a value of the slot's type into dst at the slot's offset.
func encodeUniform(dst []byte, u Uniform, value any) {
	switch u.Type {
	case UniformMat4:
		m := value.(mgl32.Mat4)
		for i := 0; i < 16; i++ {
			binary.LittleEndian.PutUint32(dst[u.Offset+uint64(i*4):], math.Float32bits(m[i]))
		}
	case UniformFloat:
		binary.LittleEndian.PutUint32(dst[u.Offset:], math.Float32bits(value.(float32)))
	case UniformInt:
		binary.LittleEndian.PutUint32(dst[u.Offset:], uint32(value.(int32)))
	case UniformVec2:
		v := value.(mgl32.Vec2)
		binary.LittleEndian.PutUint32(dst[u.Offset:], math.Float32bits(v[0]))
		binary.LittleEndian.PutUint32(dst[u.Offset+4:], math.Float32bits(v[1]))
	}
}

// typeOf maps a Go value to the uniform type it can be written to.
func typeOf(value any) (UniformType, bool) {
	switch value.(type) {
	case mgl32.Mat4:
		return UniformMat4, true
	case float32:
		return UniformFloat, true
	case int32:
		return UniformInt, true
	case mgl32.Vec2:
		return UniformVec2, true
	case *wgpu.TextureView:
		return UniformTexture, true
	default:
		return 0, false
	}
}
