package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestHuggingLayoutDescriptor(t *testing.T) {
	m := material.NewHuggingMaterial()

	perMaterial := materialLayoutDescriptor(m, material.GroupPerMaterial)
	if len(perMaterial.Entries) != 2 {
		t.Fatalf("per-material entries = %d, want 2", len(perMaterial.Entries))
	}
	buf := perMaterial.Entries[0]
	if buf.Binding != 0 || buf.Buffer.Type != wgpu.BufferBindingTypeUniform || buf.Buffer.MinBindingSize != 64 {
		t.Errorf("uniform entry = %+v", buf)
	}
	if !buf.Buffer.HasDynamicOffset {
		t.Error("uniform entry must take a dynamic offset")
	}
	tex := perMaterial.Entries[1]
	if tex.Binding != 1 || tex.Texture.ViewDimension != wgpu.TextureViewDimension2DArray {
		t.Errorf("texture entry = %+v", tex)
	}
	if tex.Texture.SampleType != wgpu.TextureSampleTypeUnfilterableFloat {
		t.Errorf("texture sample type = %v", tex.Texture.SampleType)
	}

	perMesh := materialLayoutDescriptor(m, material.GroupPerMesh)
	if len(perMesh.Entries) != 1 || perMesh.Entries[0].Buffer.MinBindingSize != 96 || !perMesh.Entries[0].Buffer.HasDynamicOffset {
		t.Errorf("per-mesh layout = %+v", perMesh.Entries)
	}
}

func TestUnusedGroupHasNoEntries(t *testing.T) {
	m := material.NewTreeMaterial()
	if desc := materialLayoutDescriptor(m, material.GroupMainBlock); len(desc.Entries) != 0 {
		t.Errorf("main block entries = %d, want 0", len(desc.Entries))
	}
}

func TestBytesPerTexel(t *testing.T) {
	cases := []struct {
		format wgpu.TextureFormat
		want   int
	}{
		{wgpu.TextureFormatR32Float, 4},
		{wgpu.TextureFormatR8Unorm, 1},
		{wgpu.TextureFormatRGBA32Float, 16},
	}
	for _, c := range cases {
		got, err := bytesPerTexel(c.format)
		if err != nil || got != c.want {
			t.Errorf("bytesPerTexel(%v) = %d, %v; want %d", c.format, got, err, c.want)
		}
	}
	if _, err := bytesPerTexel(wgpu.TextureFormatDepth32Float); err == nil {
		t.Error("expected an error for depth uploads")
	}
}
