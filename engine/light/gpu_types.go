package light

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUCascadeShadowDataSource is the canonical WGSL definition of the CascadeShadowData struct.
// Matches GPUCascadeShadowData layout exactly (288 bytes, std140 aligned).
//
//go:embed assets/cascade_shadow_data.wgsl
var GPUCascadeShadowDataSource string

// GPUCascadeShadowDataSize is the marshaled size of GPUCascadeShadowData in bytes.
const GPUCascadeShadowDataSize = MaxCascades*64 + 16 + 16

// GPUCascadeShadowData is the GPU-aligned block later lighting passes read to
// sample the cascaded shadow maps.
//
// Layout:
//
//	array<mat4x4<f32>, 4> light_vp      (256 bytes, offset 0)
//	vec4<f32>             splits        ( 16 bytes, offset 256)
//	f32                   texel_size    (  4 bytes, offset 272)
//	f32                   bias          (  4 bytes, offset 276)
//	f32                   normal_bias   (  4 bytes, offset 280)
//	u32                   cascade_count (  4 bytes, offset 284)
type GPUCascadeShadowData struct {
	LightVP      [MaxCascades]mgl32.Mat4 // projection * viewInverse per cascade
	Splits       [MaxCascades]float32    // far view distance of each cascade
	TexelSize    float32                 // 1.0 / resolution
	Bias         float32
	NormalBias   float32
	CascadeCount uint32
}

// Size returns the size of the GPUCascadeShadowData struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (288)
func (s *GPUCascadeShadowData) Size() int {
	return GPUCascadeShadowDataSize
}

// ComputeNormalBias derives the world-space normal-offset bias from the texel
// footprint of the widest cascade and stores it in NormalBias.
//
// Parameters:
//   - widestExtent: full width in world units of the largest cascade box
//   - scale: multiplier on the per-texel world size
//   - resolution: shadow map resolution in texels
func (s *GPUCascadeShadowData) ComputeNormalBias(widestExtent, scale float32, resolution int) {
	if resolution <= 0 {
		s.NormalBias = 0
		return
	}
	s.NormalBias = widestExtent / float32(resolution) * scale
}

// Marshal serializes the GPUCascadeShadowData struct into a byte buffer suitable for
// GPU uniform upload.
//
// Returns:
//   - []byte: 288-byte buffer ready for GPU upload
func (s *GPUCascadeShadowData) Marshal() []byte {
	buf := make([]byte, GPUCascadeShadowDataSize)
	off := 0
	for c := 0; c < MaxCascades; c++ {
		for i := 0; i < 16; i++ {
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(s.LightVP[c][i]))
			off += 4
		}
	}
	for c := 0; c < MaxCascades; c++ {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(s.Splits[c]))
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[272:276], math.Float32bits(s.TexelSize))
	binary.LittleEndian.PutUint32(buf[276:280], math.Float32bits(s.Bias))
	binary.LittleEndian.PutUint32(buf[280:284], math.Float32bits(s.NormalBias))
	binary.LittleEndian.PutUint32(buf[284:288], s.CascadeCount)
	return buf
}
