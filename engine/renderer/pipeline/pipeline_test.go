package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("depth_building", "// wgsl")

	if p.EntryPoint() != "vs_main" {
		t.Errorf("entry point = %q", p.EntryPoint())
	}
	if p.DepthFormat() != wgpu.TextureFormatDepth32Float {
		t.Errorf("depth format = %v", p.DepthFormat())
	}
	if p.CullMode() != wgpu.CullModeBack {
		t.Errorf("cull mode = %v", p.CullMode())
	}
	if p.Pipeline() != nil {
		t.Error("pipeline should be nil before registration")
	}
}

func TestVertexLayoutsPlain(t *testing.T) {
	layouts := NewPipeline("k", "").VertexLayouts()
	if len(layouts) != 1 {
		t.Fatalf("expected 1 layout, got %d", len(layouts))
	}
	if layouts[0].ArrayStride != model.VertexStride {
		t.Errorf("stride = %d, want %d", layouts[0].ArrayStride, model.VertexStride)
	}
}

func TestVertexLayoutsInstanced(t *testing.T) {
	p := NewPipeline("k", "", WithInstanced(true), WithDepthBias(2, 2.0), WithCullMode(wgpu.CullModeNone))

	layouts := p.VertexLayouts()
	if len(layouts) != 2 {
		t.Fatalf("expected 2 layouts, got %d", len(layouts))
	}
	inst := layouts[1]
	if inst.StepMode != wgpu.VertexStepModeInstance || inst.ArrayStride != model.InstanceStride {
		t.Fatalf("instance layout = %+v", inst)
	}
	for i, a := range inst.Attributes {
		if a.ShaderLocation != uint32(i+1) || a.Offset != uint64(i*16) {
			t.Errorf("attribute %d = %+v", i, a)
		}
	}
	if p.DepthBias() != 2 || p.DepthBiasSlopeScale() != 2.0 {
		t.Errorf("depth bias = %d/%v", p.DepthBias(), p.DepthBiasSlopeScale())
	}
	if p.CullMode() != wgpu.CullModeNone {
		t.Errorf("cull mode = %v", p.CullMode())
	}
}
