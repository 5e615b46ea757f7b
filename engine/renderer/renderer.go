package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/engine/light"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-csm/engine/rendergraph"
	"github.com/Carmen-Shannon/oxy-csm/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	// descriptors remembers the layout each material provider was created with so
	// stale bind groups can be rebuilt at draw time.
	descriptors map[bind_group_provider.BindGroupProvider]wgpu.BindGroupLayoutDescriptor

	backendType RendererBackendType
	backend     RendererBackend

	depthBias           int32
	depthBiasSlopeScale float32

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API over the GPU backend for depth-only shadow rendering. The Renderer
// caches depth pipelines by key, creates GPU resources for materials and meshes, and implements
// rendergraph.Allocator so the render graph can allocate its texture arrays on the device.
type Renderer interface {
	rendergraph.Allocator

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// Headless reports whether the renderer was created without a window surface.
	//
	// Returns:
	//   - bool: true when there is no surface to present to
	Headless() bool

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required after
	// changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// InitMaterial creates the bind group layouts and uniform buffers of every uniform group
	// a material uses, and the bind groups whose textures are already bound. Groups waiting
	// on a texture get their bind group at the first draw after the texture is set.
	//
	// Parameters:
	//   - mat: the depth material
	//
	// Returns:
	//   - error: an error if GPU resource creation fails
	InitMaterial(mat material.DepthMaterial) error

	// RegisterDepthPipeline initializes a material and creates its depth-only pipeline,
	// caching it under the material's PipelineKey. Already registered keys are skipped.
	//
	// Parameters:
	//   - mat: the depth material
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterDepthPipeline(mat material.DepthMaterial) error

	// InitMesh uploads a model's vertex, index and instance data into GPU buffers held by its mesh provider.
	//
	// Parameters:
	//   - m: the model to upload
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMesh(m model.Model) error

	// UpdateInstances re-uploads a model's per-instance transforms after SetInstances.
	//
	// Parameters:
	//   - m: the model whose instances changed
	//
	// Returns:
	//   - error: an error if the instance buffer could not be grown
	UpdateInstances(m model.Model) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// WriteTextureLayer uploads texel data into one layer of an attachment this renderer allocated.
	//
	// Parameters:
	//   - att: the physical attachment
	//   - layer: the array layer
	//   - data: tightly packed texels for the full layer
	//
	// Returns:
	//   - error: an error if the attachment, layer or data size is invalid
	WriteTextureLayer(att rendergraph.PhysicalAttachment, layer int, data []byte) error

	// BeginFrame acquires the swapchain texture and begins a clear pass on it.
	//
	// Returns:
	//   - error: an error if there is no surface or the texture could not be acquired
	BeginFrame() error

	// EndFrame ends the surface pass and submits it. Call Present afterwards.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// BeginShadowFrame creates a command encoder for batching shadow depth passes.
	// Must be paired with EndShadowFrame.
	//
	// Returns:
	//   - error: an error if the command encoder could not be created
	BeginShadowFrame() error

	// BeginShadowPass starts a depth-only render pass targeting the given depth view.
	//
	// Parameters:
	//   - depthView: the cascade slice view to render into
	BeginShadowPass(depthView *wgpu.TextureView)

	// ShadowDrawCall encodes a single instanced draw command within the current shadow pass.
	// Bind groups that are missing or stale are rebuilt first.
	//
	// Parameters:
	//   - pipelineKey: the unique identifier for the cached depth Pipeline
	//   - mesh: the model holding vertex, index and instance buffers
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: bind group providers indexed by group, nil entries are skipped
	//
	// Returns:
	//   - error: an error if the pipeline is not found or a bind group cannot be built
	ShadowDrawCall(pipelineKey string, mesh model.Model, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndShadowPass ends the current shadow depth render pass.
	EndShadowPass()

	// EndShadowFrame finishes the shadow command encoder and submits to the GPU queue.
	EndShadowFrame()

	// Release releases every cached pipeline and the device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type.
// When win is nil the renderer is headless: it renders shadow maps but cannot present.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window supplying the surface descriptor, or nil
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:                  &sync.Mutex{},
		pipelineCache:       make(map[string]pipeline.Pipeline),
		descriptors:         make(map[bind_group_provider.BindGroupProvider]wgpu.BindGroupLayoutDescriptor),
		backendType:         backendType,
		depthBias:           light.DefaultDepthBias,
		depthBiasSlopeScale: light.DefaultDepthBiasSlopeScale,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var surfaceDescriptor *wgpu.SurfaceDescriptor
	if win != nil {
		surfaceDescriptor = win.SurfaceDescriptor()
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(surfaceDescriptor, r.forceFallbackAdapter)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	if win != nil {
		r.backend.ConfigureSurface(win.Width(), win.Height())
	}
	return r
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, v := range r.pipelineCache {
		out[k] = v
	}
	return out
}

func (r *renderer) Headless() bool {
	return r.backend.Headless()
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) InitMaterial(mat material.DepthMaterial) error {
	for _, g := range []material.UniformGroup{material.GroupPerMaterial, material.GroupPerMesh, material.GroupMainBlock} {
		provider := mat.Provider(g)
		if provider == nil {
			continue
		}
		desc := materialLayoutDescriptor(mat, g)

		r.mu.Lock()
		r.descriptors[provider] = desc
		r.mu.Unlock()

		if err := r.backend.InitBindGroup(provider, desc); err != nil && !errors.Is(err, ErrMissingTextureView) {
			return fmt.Errorf("material %s group %s: %w", mat.Name(), g, err)
		}
	}
	return nil
}

func (r *renderer) RegisterDepthPipeline(mat material.DepthMaterial) error {
	key := mat.PipelineKey()

	r.mu.Lock()
	_, exists := r.pipelineCache[key]
	r.mu.Unlock()
	if exists {
		return nil
	}

	if err := r.InitMaterial(mat); err != nil {
		return err
	}

	groups := mat.BindGroups()
	layouts := make([]*wgpu.BindGroupLayout, len(groups))
	for i, provider := range groups {
		if provider != nil && provider.BindGroupLayout() != nil {
			layouts[i] = provider.BindGroupLayout()
			continue
		}
		empty, err := r.backend.CreateEmptyBindGroupLayout()
		if err != nil {
			return fmt.Errorf("depth pipeline %q: %w", key, err)
		}
		layouts[i] = empty
	}

	p := pipeline.NewPipeline(key, mat.ShaderSource(),
		pipeline.WithInstanced(mat.Instanced()),
		pipeline.WithCullMode(mat.CullMode()),
		pipeline.WithDepthBias(r.depthBias, r.depthBiasSlopeScale),
	)
	if err := r.backend.RegisterDepthPipeline(p, layouts); err != nil {
		return err
	}

	r.mu.Lock()
	r.pipelineCache[key] = p
	r.mu.Unlock()
	return nil
}

func (r *renderer) InitMesh(m model.Model) error {
	return r.backend.InitMeshBuffers(m.MeshProvider(), m.VertexData(), m.IndexData(), m.InstanceData(), m.IndexCount())
}

func (r *renderer) UpdateInstances(m model.Model) error {
	return r.backend.WriteInstanceBuffer(m.MeshProvider(), m.InstanceData())
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	if len(writes) == 0 {
		return
	}
	r.backend.WriteBuffers(writes)
}

func (r *renderer) AllocateTexture(desc rendergraph.TextureDescriptor) (rendergraph.PhysicalAttachment, error) {
	return r.backend.CreateTextureArray(desc)
}

func (r *renderer) WriteTextureLayer(att rendergraph.PhysicalAttachment, layer int, data []byte) error {
	return r.backend.WriteTextureLayer(att, layer, data)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) BeginShadowFrame() error {
	return r.backend.BeginShadowFrame()
}

func (r *renderer) BeginShadowPass(depthView *wgpu.TextureView) {
	r.backend.BeginShadowPass(depthView)
}

func (r *renderer) ShadowDrawCall(pipelineKey string, mesh model.Model, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("shadow pipeline %q not found in cache", pipelineKey)
	}
	if mesh == nil || mesh.MeshProvider().VertexBuffer() == nil {
		return fmt.Errorf("shadow pipeline %q: mesh has no GPU buffers", pipelineKey)
	}

	for _, bg := range bindGroups {
		if bg == nil || (bg.BindGroup() != nil && !bg.Stale()) {
			continue
		}
		r.mu.Lock()
		desc, known := r.descriptors[bg]
		r.mu.Unlock()
		if !known {
			return fmt.Errorf("bind group %q was never initialized", bg.Label())
		}
		if err := r.backend.InitBindGroup(bg, desc); err != nil {
			return err
		}
	}

	r.backend.ShadowDrawCall(p, mesh.MeshProvider(), uint32(mesh.VertexCount()), instanceCount, bindGroups)
	return nil
}

func (r *renderer) EndShadowPass() {
	r.backend.EndShadowPass()
}

func (r *renderer) EndShadowFrame() {
	r.backend.EndShadowFrame()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.descriptors = make(map[bind_group_provider.BindGroupProvider]wgpu.BindGroupLayoutDescriptor)
	r.mu.Unlock()

	r.backend.Release()
}
