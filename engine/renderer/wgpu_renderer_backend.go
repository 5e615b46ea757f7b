package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-csm/engine/rendergraph"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrMissingTextureView is returned when a bind group references a texture binding that has no view yet.
var ErrMissingTextureView = errors.New("renderer: texture binding has no texture view")

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface // nil for headless renderers

	surfaceFormat        *wgpu.TextureFormat
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)

	// Frame state for the presented surface frame
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Shadow pass state for rendering depth-only passes from a light's perspective.
	// Shadow passes use their own command encoder, a Depth32Float target (no color)
	// and sample count 1.
	shadowFrameEncoder *wgpu.CommandEncoder
	shadowPass         *wgpu.RenderPassEncoder
	shadowDepthView    *wgpu.TextureView

	// uniformRings holds the ring of every dynamic-offset uniform buffer.
	// ringBindings lists a provider's rings by binding, the order SetBindGroup expects offsets in.
	uniformRings map[*wgpu.Buffer]*uniformRing
	ringBindings map[bind_group_provider.BindGroupProvider][]*uniformRing
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Headless() bool

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	// No-op for headless backends.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// RegisterDepthPipeline creates a depth-only render pipeline: vertex stage only, sample count 1,
	// depth attachment in the pipeline's depth format with its configured bias.
	//
	// Parameters:
	//   - p: the pipeline object containing the source code and configuration for the pipeline
	//   - layouts: bind group layouts indexed by group number
	//
	// Returns:
	//   - error: an error if the pipeline could not be created, otherwise nil
	RegisterDepthPipeline(p pipeline.Pipeline, layouts []*wgpu.BindGroupLayout) error

	// CreateEmptyBindGroupLayout creates a layout with no entries, used to fill unused group slots.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout
	//   - error: an error if layout creation fails
	CreateEmptyBindGroupLayout() (*wgpu.BindGroupLayout, error)

	// InitMeshBuffers creates vertex, index and instance buffers from raw byte data and stores them on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes, may be empty
	//   - instanceData: the raw per-instance transforms, may be empty
	//   - indexCount: the number of indices represented in indexData
	//
	// Returns:
	//   - error: an error if the buffers could not be created, otherwise nil
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData, instanceData []byte, indexCount int) error

	// WriteInstanceBuffer uploads per-instance transforms, growing the buffer when needed.
	//
	// Parameters:
	//   - provider: the mesh provider owning the instance buffer
	//   - instanceData: the raw per-instance transforms
	//
	// Returns:
	//   - error: an error if a larger buffer could not be created
	WriteInstanceBuffer(provider bind_group_provider.BindGroupProvider, instanceData []byte) error

	// InitBindGroup creates the layout and uniform buffers for a provider when missing, then creates
	// a bind group from them. Returns ErrMissingTextureView, with layout and buffers in place, when a
	// texture binding has no view yet.
	//
	// Parameters:
	//   - provider: the BindGroupProvider describing the layout entries and storage for the bind group
	//   - descriptor: the BindGroupLayoutDescriptor describing the layout of the bind group
	//
	// Returns:
	//   - error: an error if the bind group could not be initialized, otherwise nil
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers writes staged uniform data to the GPU queue.
	//
	// Parameters:
	//   - writes: the buffer writes to apply
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// CreateTextureArray creates a 2D texture array with a full array view and one 2D view per layer.
	//
	// Parameters:
	//   - desc: the render graph descriptor
	//
	// Returns:
	//   - rendergraph.PhysicalAttachment: the attachment owning the texture and views
	//   - error: an error if texture or view creation fails
	CreateTextureArray(desc rendergraph.TextureDescriptor) (rendergraph.PhysicalAttachment, error)

	// WriteTextureLayer uploads tightly packed texel data into one layer of a texture array.
	//
	// Parameters:
	//   - att: an attachment created by CreateTextureArray
	//   - layer: the array layer to write
	//   - data: the texel data
	//
	// Returns:
	//   - error: an error if the attachment or data size is invalid
	WriteTextureLayer(att rendergraph.PhysicalAttachment, layer int, data []byte) error

	BeginFrame() error
	EndFrame()
	Present()

	BeginShadowFrame() error
	BeginShadowPass(depthView *wgpu.TextureView)
	ShadowDrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, vertexCount, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)
	EndShadowPass()
	EndShadowFrame()

	Release()
}

var _ wgpuRendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:           &sync.Mutex{},
		instance:     wgpu.CreateInstance(nil),
		presentMode:  wgpu.PresentModeImmediate,
		uniformRings: make(map[*wgpu.Buffer]*uniformRing),
		ringBindings: make(map[bind_group_provider.BindGroupProvider][]*uniformRing),
	}
	if surfaceDescriptor != nil {
		w.surface = w.instance.CreateSurface(surfaceDescriptor)
	}

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to request adapter: %v", err))
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("renderer: failed to request device: %v", err))
	}
	w.device = d
	w.queue = d.GetQueue()

	return w
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Headless() bool {
	return b.surface == nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil || width <= 0 || height <= 0 {
		return
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	// View is set per-frame to the swapchain view.
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0.1, G: 0.1, B: 0.1, A: 1.0,
				},
			},
		},
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) RegisterDepthPipeline(p pipeline.Pipeline, layouts []*wgpu.BindGroupLayout) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: p.PipelineKey(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: p.Source(),
		},
	})
	if err != nil {
		return fmt.Errorf("depth pipeline %q: shader module: %w", p.PipelineKey(), err)
	}
	defer vs.Release()

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return fmt.Errorf("depth pipeline %q: layout: %w", p.PipelineKey(), err)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Depth Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: p.EntryPoint(),
			Buffers:    p.VertexLayouts(),
		},
		// No fragment shader: depth-only pass
		Fragment: nil,
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              p.DepthFormat(),
			DepthWriteEnabled:   true,
			DepthCompare:        p.DepthCompare(),
			DepthBias:           p.DepthBias(),
			DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("depth pipeline %q: %w", p.PipelineKey(), err)
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateEmptyBindGroupLayout() (*wgpu.BindGroupLayout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Empty Bind Group Layout",
	})
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData, instanceData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.createBuffer(provider.Label()+" Vertex Buffer", vertexData, wgpu.BufferUsageVertex)
		if err != nil {
			return err
		}
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.createBuffer(provider.Label()+" Index Buffer", indexData, wgpu.BufferUsageIndex)
		if err != nil {
			return err
		}
		provider.SetIndexBuffer(buf)
	}

	if len(instanceData) > 0 {
		buf, err := b.createBuffer(provider.Label()+" Instance Buffer", instanceData, wgpu.BufferUsageVertex)
		if err != nil {
			return err
		}
		provider.SetInstanceBuffer(buf)
	}

	provider.SetIndexCount(indexCount)

	return nil
}

func (b *wgpuRendererBackendImpl) WriteInstanceBuffer(provider bind_group_provider.BindGroupProvider, instanceData []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(instanceData) == 0 {
		return nil
	}

	buf := provider.InstanceBuffer()
	if buf != nil && buf.GetSize() >= uint64(len(instanceData)) {
		b.queue.WriteBuffer(buf, 0, instanceData)
		return nil
	}

	grown, err := b.createBuffer(provider.Label()+" Instance Buffer", instanceData, wgpu.BufferUsageVertex)
	if err != nil {
		return err
	}
	if buf != nil {
		buf.Release()
	}
	provider.SetInstanceBuffer(grown)
	return nil
}

// createBuffer creates a CopyDst buffer of the given usage and uploads data into it.
// Callers must hold b.mu.
func (b *wgpuRendererBackendImpl) createBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(data)),
		Usage:            usage | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	sizes := provider.BufferSizes()
	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	var rings []*uniformRing
	var missing error
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		if entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined {
			tv := provider.TextureView(binding)
			if tv == nil {
				missing = fmt.Errorf("%s binding %d: %w", provider.Label(), binding, ErrMissingTextureView)
				continue
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: tv,
			}
			continue
		}

		size := entry.Buffer.MinBindingSize
		if s, ok := sizes[binding]; ok {
			size = s
		}

		buf := provider.Buffer(binding)
		var ring *uniformRing
		if entry.Buffer.HasDynamicOffset {
			ring = b.uniformRings[buf]
			if ring == nil {
				ring = newUniformRing(size, uniformRingSlots)
			}
			rings = append(rings, ring)
		}
		if buf == nil {
			bufSize := size
			if ring != nil {
				bufSize = ring.bufferSize()
			}
			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: provider.Label() + " Uniform Buffer",
				Size:  bufSize,
				Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				return err
			}
			provider.SetBuffer(binding, buf)
			if ring != nil {
				b.uniformRings[buf] = ring
			}
		}

		bindSize := wgpu.WholeSize
		if ring != nil {
			bindSize = ring.blockSize
		}
		bindGroupEntries[i] = wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Offset:  0,
			Size:    bindSize,
		}
	}
	if missing != nil {
		return missing
	}
	if len(rings) > 0 {
		b.ringBindings[provider] = rings
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		ring, ok := b.uniformRings[buf]
		if !ok {
			b.queue.WriteBuffer(buf, w.Offset, w.Data)
			continue
		}
		if !ring.stage(w.Offset, w.Data) {
			b.splitShadowSubmitLocked()
			ring.stage(w.Offset, w.Data)
		}
		b.queue.WriteBuffer(buf, ring.offset(), ring.block())
	}
}

func (b *wgpuRendererBackendImpl) CreateTextureArray(desc rendergraph.TextureDescriptor) (rendergraph.PhysicalAttachment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	layers := desc.Depth
	if layers == 0 {
		layers = 1
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Name,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: layers,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", desc.Name, err)
	}

	att := &wgpuAttachment{desc: desc, texture: tex}

	att.full, err = tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           desc.Name + " Array View",
		Format:          desc.Format,
		Dimension:       wgpu.TextureViewDimension2DArray,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: layers,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		att.Release()
		return nil, fmt.Errorf("failed to create array view for %q: %w", desc.Name, err)
	}

	att.slices = make([]*wgpu.TextureView, layers)
	for i := uint32(0); i < layers; i++ {
		view, viewErr := tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           fmt.Sprintf("%s Layer %d", desc.Name, i),
			Format:          desc.Format,
			Dimension:       wgpu.TextureViewDimension2D,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  i,
			ArrayLayerCount: 1,
			Aspect:          wgpu.TextureAspectAll,
		})
		if viewErr != nil {
			att.Release()
			return nil, fmt.Errorf("failed to create layer %d view for %q: %w", i, desc.Name, viewErr)
		}
		att.slices[i] = view
	}

	return att, nil
}

func (b *wgpuRendererBackendImpl) WriteTextureLayer(att rendergraph.PhysicalAttachment, layer int, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	wa, ok := att.(*wgpuAttachment)
	if !ok || wa.texture == nil {
		return errors.New("renderer: attachment was not created by this renderer")
	}
	if layer < 0 || layer >= wa.Layers() {
		return fmt.Errorf("renderer: layer %d out of range [0, %d)", layer, wa.Layers())
	}
	bpt, err := bytesPerTexel(wa.desc.Format)
	if err != nil {
		return err
	}
	want := int(wa.desc.Width) * int(wa.desc.Height) * bpt
	if len(data) != want {
		return fmt.Errorf("renderer: layer data is %d bytes, want %d", len(data), want)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  wa.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{Z: uint32(layer)},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  wa.desc.Width * uint32(bpt),
			RowsPerImage: wa.desc.Height,
		},
		&wgpu.Extent3D{
			Width:              wa.desc.Width,
			Height:             wa.desc.Height,
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil || b.renderPassDescriptor == nil {
		return errors.New("renderer: no configured surface")
	}
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return
	}

	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) BeginShadowFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	b.shadowFrameEncoder = encoder
	return nil
}

// splitShadowSubmitLocked submits the shadow work recorded so far and resumes recording
// on a fresh encoder, so a full uniform ring can start over. An open pass is reopened on
// the same view without clearing depth.
func (b *wgpuRendererBackendImpl) splitShadowSubmitLocked() {
	if b.shadowFrameEncoder == nil {
		b.resetUniformRingsLocked()
		return
	}
	reopen := b.shadowPass != nil
	if reopen {
		b.shadowPass.End()
		b.shadowPass = nil
	}

	b.submitShadowEncoderLocked()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return
	}
	b.shadowFrameEncoder = encoder
	if reopen {
		b.beginShadowPassLocked(b.shadowDepthView, wgpu.LoadOpLoad)
	}
}

// submitShadowEncoderLocked submits the recorded shadow work. Every ring slot it read has
// been consumed afterwards, so the rings rewind.
func (b *wgpuRendererBackendImpl) submitShadowEncoderLocked() {
	commandBuffer, err := b.shadowFrameEncoder.Finish(nil)
	if err == nil {
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
	}
	b.shadowFrameEncoder.Release()
	b.shadowFrameEncoder = nil
	b.resetUniformRingsLocked()
}

// resetUniformRingsLocked rewinds every ring and copies its current block to slot 0,
// where the next draw reads it unless it is written again first.
func (b *wgpuRendererBackendImpl) resetUniformRingsLocked() {
	for buf, ring := range b.uniformRings {
		if ring.offset() != 0 {
			b.queue.WriteBuffer(buf, 0, ring.block())
		}
		ring.reset()
	}
}

func (b *wgpuRendererBackendImpl) beginShadowPassLocked(depthView *wgpu.TextureView, load wgpu.LoadOp) {
	b.shadowDepthView = depthView
	b.shadowPass = b.shadowFrameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: nil,
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView,
			DepthLoadOp:     load,
			DepthStoreOp:    wgpu.StoreOpStore, // later passes sample the cascade
			DepthClearValue: 1.0,
		},
	})
}

func (b *wgpuRendererBackendImpl) BeginShadowPass(depthView *wgpu.TextureView) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shadowFrameEncoder == nil {
		return
	}
	b.beginShadowPassLocked(depthView, wgpu.LoadOpClear)
}

func (b *wgpuRendererBackendImpl) ShadowDrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	vertexCount, instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shadowPass == nil {
		return
	}

	b.shadowPass.SetPipeline(p.Pipeline())

	for i, bg := range bindGroups {
		if bg == nil || bg.BindGroup() == nil {
			continue
		}
		rings := b.ringBindings[bg]
		var offsets []uint32
		for _, ring := range rings {
			offsets = append(offsets, ring.dynamicOffset())
			ring.markUsed()
		}
		b.shadowPass.SetBindGroup(uint32(i), bg.BindGroup(), offsets)
	}

	b.shadowPass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	if p.Instanced() {
		b.shadowPass.SetVertexBuffer(1, meshProvider.InstanceBuffer(), 0, wgpu.WholeSize)
	}

	if meshProvider.IndexBuffer() != nil {
		b.shadowPass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.shadowPass.DrawIndexed(uint32(meshProvider.IndexCount()), instanceCount, 0, 0, 0)
		return
	}
	b.shadowPass.Draw(vertexCount, instanceCount, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndShadowPass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shadowPass == nil {
		return
	}

	b.shadowPass.End()
	b.shadowPass = nil
}

func (b *wgpuRendererBackendImpl) EndShadowFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shadowFrameEncoder == nil {
		return
	}
	b.submitShadowEncoderLocked()
	b.shadowDepthView = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.uniformRings)
	clear(b.ringBindings)
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
