package shadow

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-csm/engine/csm"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-csm/engine/rendergraph"
	"github.com/Carmen-Shannon/oxy-csm/engine/scene"
	"github.com/Carmen-Shannon/oxy-csm/engine/settings"
	"github.com/cogentcore/webgpu/wgpu"
)

// ShadowMapsResource is the shared graph name of the cascade depth array.
const ShadowMapsResource = "ShadowMaps"

// instancedCascadeLimit is the first cascade index that skips instance groups and aircraft.
const instancedCascadeLimit = 2

// GeometrySource is the read-only scene view the shadow pass draws from.
type GeometrySource interface {
	CSM() csm.CSM
	Terrain() scene.Terrain
	Tiles() []scene.Tile
	InstanceGroups() []scene.InstancedItem
	Aircraft() []scene.InstancedItem
}

// DepthRenderer is the subset of the renderer the shadow pass records work through.
type DepthRenderer interface {
	BeginShadowFrame() error
	BeginShadowPass(depthView *wgpu.TextureView)
	EndShadowPass()
	EndShadowFrame()
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	ShadowDrawCall(pipelineKey string, mesh model.Model, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
}

// StatsSink receives per-frame counters, usually a *profiler.Profiler.
type StatsSink interface {
	Count(name string, n int)
}

// FrameStats counts what the last Render did.
type FrameStats struct {
	Cascades int
	Draws    int
	Culled   int
	Binds    int
	Failed   int
}

type shadowPass struct {
	name string

	graph    rendergraph.Graph
	source   GeometrySource
	renderer DepthRenderer

	output     rendergraph.ResourceHandle
	ringHeight rendergraph.ResourceHandle

	renderers [categoryCount]categoryRenderer

	subscription settings.Subscription
	stats        FrameStats
	sink         StatsSink
	ringWarned   bool
}

// ShadowPass renders every shadow-casting category into one slice of the ShadowMaps
// depth array per cascade. Cascade count, resolution and distance follow the
// "shadows" quality setting.
type ShadowPass interface {
	rendergraph.Pass

	// ApplyQualityTier switches the cascade layout. Unknown tiers fall back to high.
	// Cascade cameras are rebuilt before the output is redescribed, so the output depth
	// always matches the camera count.
	//
	// Parameters:
	//   - tier: "low", "medium" or "high"
	ApplyQualityTier(tier string)

	// Stats returns the counters of the last Render.
	//
	// Returns:
	//   - FrameStats: the counters
	Stats() FrameStats

	// Close unsubscribes from settings changes.
	Close()
}

var _ ShadowPass = &shadowPass{}

// NewShadowMappingPass creates the cascaded shadow pass and applies the current quality
// setting immediately.
//
// Parameters:
//   - graph: the render graph owning ShadowMaps and TerrainRingHeight
//   - source: the scene to draw
//   - r: the renderer recording depth passes
//   - store: the settings store providing the "shadows" key
//   - mats: the five depth materials, already registered with the renderer
//   - options: functional options to configure the pass
//
// Returns:
//   - ShadowPass: the pass
func NewShadowMappingPass(
	graph rendergraph.Graph,
	source GeometrySource,
	r DepthRenderer,
	store settings.Settings,
	mats material.DepthMaterialSet,
	options ...ShadowPassBuilderOption,
) ShadowPass {
	if graph == nil || source == nil || r == nil || store == nil {
		panic("shadow: graph, source, renderer and settings must not be nil")
	}
	for _, m := range mats.All() {
		if m == nil {
			panic("shadow: every depth material must be set")
		}
	}

	p := &shadowPass{
		name:       "ShadowMappingPass",
		graph:      graph,
		source:     source,
		renderer:   r,
		output:     graph.SharedResource(ShadowMapsResource),
		ringHeight: graph.SharedResource(scene.RingHeightResource),
	}
	p.renderers = newCategoryRenderers(mats, source.Terrain)

	for _, option := range options {
		option(p)
	}

	p.subscription = store.OnChange(settings.KeyShadows, func(_, value string) {
		p.ApplyQualityTier(value)
	}, true)
	return p
}

func (p *shadowPass) Name() string {
	return p.name
}

func (p *shadowPass) Inputs() []string {
	return []string{scene.RingHeightResource}
}

func (p *shadowPass) Outputs() []string {
	return []string{ShadowMapsResource}
}

// SetSize is a no-op: the output size follows the cascade configuration.
func (p *shadowPass) SetSize(width, height int) {}

func (p *shadowPass) ApplyQualityTier(value string) {
	tier := csm.ParseQualityTier(value)
	switch tier {
	case csm.TierLow, csm.TierMedium, csm.TierHigh:
	default:
		log.Printf("[Shadow] unknown quality tier %q, using %s", value, csm.TierHigh)
	}
	cfg := csm.ConfigForTier(tier)

	c := p.source.CSM()
	if err := c.Apply(cfg); err != nil {
		log.Printf("[Shadow] %v", fmt.Errorf("apply tier %s: %w", tier, err))
		return
	}
	c.UpdateCascades()

	res, err := p.graph.Resource(p.output)
	if err != nil {
		log.Printf("[Shadow] %v", err)
		return
	}
	res.Redescribe(rendergraph.TextureDescriptor{
		Name:   ShadowMapsResource,
		Width:  uint32(cfg.Resolution),
		Height: uint32(cfg.Resolution),
		Depth:  uint32(cfg.CascadeCount),
		Format: wgpu.TextureFormatDepth32Float,
		Usage:  wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	log.Printf("[Shadow] quality %s: %d cascades, %dpx, far %.0f", tier, cfg.CascadeCount, cfg.Resolution, cfg.FarDistance)
}

func (p *shadowPass) Stats() FrameStats {
	return p.stats
}

func (p *shadowPass) Close() {
	if p.subscription != nil {
		p.subscription.Unsubscribe()
		p.subscription = nil
	}
}

func (p *shadowPass) Render() {
	p.stats = FrameStats{}
	defer p.report()

	c := p.source.CSM()
	count := c.Cascades()
	cameras := c.CascadeCameras()
	if len(cameras) != count {
		panic(fmt.Sprintf("shadow: %d cascade cameras for %d cascades", len(cameras), count))
	}
	att, err := p.graph.PhysicalResource(p.output)
	if err != nil {
		log.Printf("[Shadow] %v", fmt.Errorf("shadow maps: %w", err))
		return
	}
	if att.Layers() != count {
		panic(fmt.Sprintf("shadow: %s has %d layers for %d cascades", ShadowMapsResource, att.Layers(), count))
	}

	if err := p.renderer.BeginShadowFrame(); err != nil {
		log.Printf("[Shadow] %v", fmt.Errorf("begin frame: %w", err))
		return
	}
	defer p.renderer.EndShadowFrame()

	ringHeight := p.ringHeightView()
	for i, cam := range cameras {
		cc := &cascadeContext{index: i, camera: cam, ringHeight: ringHeight}
		p.renderer.BeginShadowPass(att.DepthSlice(i))
		p.renderCascade(cc)
		p.renderer.EndShadowPass()
		p.stats.Cascades++
	}
}

func (p *shadowPass) ringHeightView() *wgpu.TextureView {
	att, err := p.graph.PhysicalResource(p.ringHeight)
	if err != nil {
		if !p.ringWarned {
			log.Printf("[Shadow] %v", fmt.Errorf("%s unavailable, hugging meshes will not draw: %w", scene.RingHeightResource, err))
			p.ringWarned = true
		}
		return nil
	}
	p.ringWarned = false
	return att.ColorTexture(0)
}

func (p *shadowPass) renderCascade(cc *cascadeContext) {
	tiles := p.source.Tiles()

	p.bind(cc, CategoryBuilding)
	for _, t := range tiles {
		p.draw(cc, CategoryBuilding, t.Building(), t, 1)
	}

	p.bind(cc, CategoryHugging)
	for _, t := range tiles {
		p.draw(cc, CategoryHugging, t.Hugging(), t, 1)
	}

	if cc.index >= instancedCascadeLimit {
		return
	}

	for _, g := range p.source.InstanceGroups() {
		p.drawInstanced(cc, categoryForGroup(g.Name()), g)
	}
	for _, a := range p.source.Aircraft() {
		p.drawInstanced(cc, CategoryAircraft, a)
	}
}

// bind writes the cascade-invariant uniforms of a category once per cascade.
func (p *shadowPass) bind(cc *cascadeContext, c Category) {
	if cc.bound[c] {
		return
	}
	cc.bound[c] = true

	r := p.renderers[c]
	if err := r.bindMaterial(cc); err != nil {
		log.Printf("[Shadow] cascade %d %s: bind: %v", cc.index, c, err)
		cc.unbound[c] = true
		return
	}
	p.renderer.WriteBuffers(r.depthMaterial().Flush(material.GroupPerMaterial))
	p.stats.Binds++
}

// drawInstanced binds lazily so empty groups never touch their material.
func (p *shadowPass) drawInstanced(cc *cascadeContext, c Category, item scene.InstancedItem) {
	if item.Drawable() == nil || item.InstanceCount() == 0 {
		return
	}
	p.bind(cc, c)
	p.draw(cc, c, item, nil, uint32(item.InstanceCount()))
}

func (p *shadowPass) draw(cc *cascadeContext, c Category, item scene.GeometryItem, tile scene.Tile, instances uint32) {
	mesh := item.Drawable()
	if mesh == nil {
		return
	}
	if !item.Intersects(cc.camera) {
		p.stats.Culled++
		return
	}
	if cc.unbound[c] {
		p.stats.Failed++
		return
	}

	r := p.renderers[c]
	mat := r.depthMaterial()
	if err := r.bindItem(cc, item, tile); err != nil {
		log.Printf("[Shadow] cascade %d %s %s: %v", cc.index, c, mesh.Name(), err)
		p.stats.Failed++
		return
	}
	p.renderer.WriteBuffers(mat.Flush(material.GroupPerMesh))

	if err := p.renderer.ShadowDrawCall(mat.PipelineKey(), mesh, instances, mat.BindGroups()); err != nil {
		log.Printf("[Shadow] cascade %d %s %s: %v", cc.index, c, mesh.Name(), err)
		p.stats.Failed++
		return
	}
	p.stats.Draws++
}

func (p *shadowPass) report() {
	if p.sink == nil {
		return
	}
	p.sink.Count("shadow.draws", p.stats.Draws)
	p.sink.Count("shadow.culled", p.stats.Culled)
	p.sink.Count("shadow.binds", p.stats.Binds)
	p.sink.Count("shadow.failed", p.stats.Failed)
}
