package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-csm/engine/rendergraph"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuAttachment is a GPU texture array allocated for a render graph resource.
type wgpuAttachment struct {
	desc    rendergraph.TextureDescriptor
	texture *wgpu.Texture
	full    *wgpu.TextureView
	slices  []*wgpu.TextureView
}

var _ rendergraph.PhysicalAttachment = &wgpuAttachment{}

func (a *wgpuAttachment) Descriptor() rendergraph.TextureDescriptor {
	return a.desc
}

func (a *wgpuAttachment) Layers() int {
	return len(a.slices)
}

func (a *wgpuAttachment) DepthSlice(i int) *wgpu.TextureView {
	if i < 0 || i >= len(a.slices) {
		panic(fmt.Sprintf("renderer: depth slice %d out of range for %q with %d layers", i, a.desc.Name, len(a.slices)))
	}
	return a.slices[i]
}

func (a *wgpuAttachment) ColorTexture(i int) *wgpu.TextureView {
	if i != 0 {
		panic(fmt.Sprintf("renderer: color texture %d out of range for %q", i, a.desc.Name))
	}
	return a.full
}

func (a *wgpuAttachment) Release() {
	for i, v := range a.slices {
		if v != nil {
			v.Release()
			a.slices[i] = nil
		}
	}
	a.slices = nil
	if a.full != nil {
		a.full.Release()
		a.full = nil
	}
	if a.texture != nil {
		a.texture.Release()
		a.texture = nil
	}
}

// bytesPerTexel returns the uncompressed texel size of the formats the engine uploads from the CPU.
func bytesPerTexel(format wgpu.TextureFormat) (int, error) {
	switch format {
	case wgpu.TextureFormatR8Unorm:
		return 1, nil
	case wgpu.TextureFormatR16Float:
		return 2, nil
	case wgpu.TextureFormatR32Float, wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb:
		return 4, nil
	case wgpu.TextureFormatRG32Float:
		return 8, nil
	case wgpu.TextureFormatRGBA32Float:
		return 16, nil
	default:
		return 0, fmt.Errorf("renderer: uploads to %v textures are not supported", format)
	}
}
