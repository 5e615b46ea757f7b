package rendergraph

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

type recordingPass struct {
	name    string
	inputs  []string
	outputs []string
	log     *[]string
	sizes   [][2]int
}

func (p *recordingPass) Name() string      { return p.name }
func (p *recordingPass) Inputs() []string  { return p.inputs }
func (p *recordingPass) Outputs() []string { return p.outputs }
func (p *recordingPass) Render()           { *p.log = append(*p.log, p.name) }
func (p *recordingPass) SetSize(w, h int)  { p.sizes = append(p.sizes, [2]int{w, h}) }

func depthArray(name string, res, layers uint32) TextureDescriptor {
	return TextureDescriptor{
		Name:   name,
		Width:  res,
		Height: res,
		Depth:  layers,
		Format: wgpu.TextureFormatDepth32Float,
	}
}

func TestSharedResourceDeclaresOnce(t *testing.T) {
	g := NewGraph()
	a := g.SharedResource("ShadowMaps")
	b := g.SharedResource("ShadowMaps")
	if a != b {
		t.Fatalf("handles differ: %d vs %d", a, b)
	}
	r, err := g.Resource(a)
	if err != nil {
		t.Fatal(err)
	}
	if r.Name() != "ShadowMaps" || !r.Descriptor().Empty() {
		t.Errorf("unexpected resource %q %+v", r.Name(), r.Descriptor())
	}
}

func TestResourceUnknownHandle(t *testing.T) {
	g := NewGraph()
	if _, err := g.Resource(ResourceHandle(7)); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("err = %v, want ErrUnknownResource", err)
	}
	if _, err := g.PhysicalResource(InvalidHandle); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("err = %v, want ErrUnknownResource", err)
	}
}

func TestRedescribeAdvancesGeneration(t *testing.T) {
	g := NewGraph()
	h := g.DeclareTexture(depthArray("ShadowMaps", 1024, 3))
	r, _ := g.Resource(h)

	r.Redescribe(depthArray("ignored", 1024, 3))
	if r.Generation() != 0 {
		t.Errorf("identical descriptor advanced generation to %d", r.Generation())
	}
	if r.Name() != "ShadowMaps" {
		t.Errorf("name changed to %q", r.Name())
	}

	r.Redescribe(depthArray("ShadowMaps", 2048, 1))
	if r.Generation() != 1 {
		t.Errorf("generation = %d, want 1", r.Generation())
	}
}

func TestPhysicalResourceReallocatesOnChange(t *testing.T) {
	alloc := NewMemoryAllocator()
	g := NewGraph(WithAllocator(alloc))
	h := g.DeclareTexture(depthArray("ShadowMaps", 2048, 3))

	first, err := g.PhysicalResource(h)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := g.PhysicalResource(h)
	if first != again || alloc.Allocations() != 1 {
		t.Fatalf("unchanged resource was reallocated (%d allocations)", alloc.Allocations())
	}
	if first.Layers() != 3 {
		t.Errorf("layers = %d, want 3", first.Layers())
	}

	r, _ := g.Resource(h)
	r.Redescribe(depthArray("ShadowMaps", 2048, 1))
	second, err := g.PhysicalResource(h)
	if err != nil {
		t.Fatal(err)
	}
	if second == first || second.Layers() != 1 {
		t.Errorf("expected a new single-layer attachment, got %d layers", second.Layers())
	}
	if alloc.Live() != 1 {
		t.Errorf("live = %d, want old attachment released", alloc.Live())
	}

	g.Release()
	if alloc.Live() != 0 {
		t.Errorf("live = %d after Release", alloc.Live())
	}
}

func TestPhysicalResourceErrors(t *testing.T) {
	g := NewGraph()
	empty := g.SharedResource("Empty")
	if _, err := g.PhysicalResource(empty); !errors.Is(err, ErrEmptyResource) {
		t.Errorf("err = %v, want ErrEmptyResource", err)
	}
	h := g.DeclareTexture(depthArray("ShadowMaps", 16, 1))
	if _, err := g.PhysicalResource(h); !errors.Is(err, ErrNoAllocator) {
		t.Errorf("err = %v, want ErrNoAllocator", err)
	}
}

func TestDepthSliceOutOfRangePanics(t *testing.T) {
	att, err := NewMemoryAllocator().AllocateTexture(depthArray("ShadowMaps", 16, 2))
	if err != nil {
		t.Fatal(err)
	}
	if att.DepthSlice(0) == att.DepthSlice(1) {
		t.Error("slices should be distinct views")
	}
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	att.DepthSlice(2)
}

func TestPassesRunInOrder(t *testing.T) {
	var order []string
	g := NewGraph(WithSize(800, 600))
	shadow := &recordingPass{name: "shadow", inputs: []string{"TerrainRingHeight"}, outputs: []string{"ShadowMaps"}, log: &order}
	lighting := &recordingPass{name: "lighting", inputs: []string{"ShadowMaps"}, log: &order}

	if err := g.AddPass(shadow); err != nil {
		t.Fatal(err)
	}
	if err := g.AddPass(lighting); err != nil {
		t.Fatal(err)
	}
	if err := g.AddPass(&recordingPass{name: "shadow", log: &order}); !errors.Is(err, ErrDuplicatePass) {
		t.Errorf("err = %v, want ErrDuplicatePass", err)
	}

	g.Render()
	if len(order) != 2 || order[0] != "shadow" || order[1] != "lighting" {
		t.Errorf("render order = %v", order)
	}

	if len(shadow.sizes) != 1 || shadow.sizes[0] != [2]int{800, 600} {
		t.Errorf("initial size not forwarded: %v", shadow.sizes)
	}
	g.Resize(1024, 768)
	if got := lighting.sizes[len(lighting.sizes)-1]; got != [2]int{1024, 768} {
		t.Errorf("resize not forwarded: %v", got)
	}

	if h := g.SharedResource("TerrainRingHeight"); h == InvalidHandle {
		t.Error("pass input was not declared")
	}
}
