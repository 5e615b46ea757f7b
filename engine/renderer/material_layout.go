package renderer

import (
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// materialLayoutDescriptor derives the bind group layout of one uniform group from a
// material's uniform contract: the uniform struct at binding 0 when the group has struct
// members, and one unfilterable texture_2d_array per texture uniform. The uniform struct
// takes a dynamic offset so each draw reads its own slot of the group's uniform ring.
//
// Parameters:
//   - mat: the depth material
//   - group: the uniform group
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout, with no entries for an unused group
func materialLayoutDescriptor(mat material.DepthMaterial, group material.UniformGroup) wgpu.BindGroupLayoutDescriptor {
	desc := wgpu.BindGroupLayoutDescriptor{
		Label: mat.Name() + " " + group.String() + " Layout",
	}

	if size := mat.BlockSize(group); size > 0 {
		desc.Entries = append(desc.Entries, wgpu.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   size,
			},
		})
	}

	for _, u := range mat.Uniforms() {
		if u.Group != group || u.Type != material.UniformTexture {
			continue
		}
		desc.Entries = append(desc.Entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(u.Binding),
			Visibility: wgpu.ShaderStageVertex,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
				ViewDimension: wgpu.TextureViewDimension2DArray,
			},
		})
	}

	return desc
}
