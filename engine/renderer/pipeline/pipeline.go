package pipeline

import (
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the depth-only render pipeline object and the state required to create it.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// source is the WGSL vertex program; depth pipelines have no fragment stage
	source     string
	entryPoint string
	instanced  bool

	// renderPipeline is nil until the Renderer registers the pipeline
	renderPipeline *wgpu.RenderPipeline

	// The following properties are used to configure the pipeline during creation and can be toggled/set with the builder options.

	depthFormat         wgpu.TextureFormat
	depthCompare        wgpu.CompareFunction
	depthBias           int32
	depthBiasSlopeScale float32
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
}

// Pipeline defines the interface for a depth-only GPU render pipeline used by shadow passes.
// It holds all configuration state required for pipeline creation including depth bias,
// cull mode and the vertex buffer layout.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Source returns the WGSL source of the vertex program.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// EntryPoint returns the vertex entry point name.
	//
	// Returns:
	//   - string: the entry point, "vs_main" by default
	EntryPoint() string

	// Instanced reports whether the pipeline reads a per-instance transform buffer at slot 1.
	//
	// Returns:
	//   - bool: true if the pipeline is instanced
	Instanced() bool

	// VertexLayouts returns the vertex buffer layouts: positions at slot 0 and, when
	// instanced, a column-major mat4 per instance at slot 1 (locations 1 through 4).
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// Pipeline returns the underlying render pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the render pipeline
	Pipeline() *wgpu.RenderPipeline

	// DepthFormat returns the depth attachment format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the depth format, Depth32Float by default
	DepthFormat() wgpu.TextureFormat

	// DepthCompare returns the depth comparison function.
	//
	// Returns:
	//   - wgpu.CompareFunction: the comparison function, Less by default
	DepthCompare() wgpu.CompareFunction

	// DepthBias returns the constant depth bias configured for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline (e.g., wgpu.CullModeNone, wgpu.CullModeFront, wgpu.CullModeBack)
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// SetRenderPipeline sets the render pipeline
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// Release releases the underlying render pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new depth-only Pipeline.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - source: the WGSL vertex program
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey, source string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		source:       source,
		entryPoint:   "vs_main",
		depthFormat:  wgpu.TextureFormatDepth32Float,
		depthCompare: wgpu.CompareFunctionLess,
		cullMode:     wgpu.CullModeBack,
		topology:     wgpu.PrimitiveTopologyTriangleList,
		frontFace:    wgpu.FrontFaceCCW,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Source() string {
	return p.source
}

func (p *pipeline) EntryPoint() string {
	return p.entryPoint
}

func (p *pipeline) Instanced() bool {
	return p.instanced
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	layouts := []wgpu.VertexBufferLayout{
		{
			ArrayStride: model.VertexStride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			},
		},
	}
	if !p.instanced {
		return layouts
	}

	attrs := make([]wgpu.VertexAttribute, 4)
	for col := range attrs {
		attrs[col] = wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x4,
			Offset:         uint64(col * 16),
			ShaderLocation: uint32(col + 1),
		}
	}
	return append(layouts, wgpu.VertexBufferLayout{
		ArrayStride: model.InstanceStride,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes:  attrs,
	})
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthFormat() wgpu.TextureFormat {
	return p.depthFormat
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}
