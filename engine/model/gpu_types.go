package model

import (
	"bytes"
	_ "embed"
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUVertexSource is the canonical WGSL definition of the depth-only vertex and
// instance inputs.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// VertexStride is the byte stride of one position-only vertex.
const VertexStride = 12

// InstanceStride is the byte stride of one instance transform (mat4x4<f32>).
const InstanceStride = 64

// MarshalPositions packs xyz positions for a position-only vertex buffer.
//
// Parameters:
//   - positions: tightly packed xyz triples
//
// Returns:
//   - []byte: little-endian float32 data
func MarshalPositions(positions []float32) []byte {
	return bytes.Clone(common.SliceToBytes(positions))
}

// MarshalIndices packs uint32 indices, padded to a 4-byte multiple for buffer copies.
//
// Parameters:
//   - indices: triangle indices
//
// Returns:
//   - []byte: little-endian uint32 data
func MarshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, v := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// MarshalInstances packs column-major instance transforms.
//
// Parameters:
//   - instances: per-instance transforms
//
// Returns:
//   - []byte: 64 bytes per instance
func MarshalInstances(instances []mgl32.Mat4) []byte {
	return bytes.Clone(common.SliceToBytes(instances))
}
