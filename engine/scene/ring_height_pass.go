package scene

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/rendergraph"
	"github.com/cogentcore/webgpu/wgpu"
)

// RingHeightResource is the shared graph name of the terrain ring heightfield array.
const RingHeightResource = "TerrainRingHeight"

// TextureWriter uploads CPU data into one layer of a graph attachment.
type TextureWriter interface {
	WriteTextureLayer(att rendergraph.PhysicalAttachment, layer int, data []byte) error
}

// RingHeightPass keeps the TerrainRingHeight texture array in sync with the scene terrain.
// It re-uploads every level when the terrain changes or the attachment is reallocated.
type RingHeightPass struct {
	graph   rendergraph.Graph
	terrain Terrain
	writer  TextureWriter
	handle  rendergraph.ResourceHandle

	uploadedVersion uint64
	uploadedTo      rendergraph.PhysicalAttachment
}

var _ rendergraph.Pass = &RingHeightPass{}

// NewRingHeightPass creates the pass and declares its output.
//
// Parameters:
//   - graph: the render graph
//   - terrain: the terrain to upload
//   - writer: the texture uploader, usually the Renderer
//
// Returns:
//   - *RingHeightPass: the pass
func NewRingHeightPass(graph rendergraph.Graph, terrain Terrain, writer TextureWriter) *RingHeightPass {
	if graph == nil || terrain == nil || writer == nil {
		panic("scene: ring height pass needs a graph, terrain and writer")
	}
	return &RingHeightPass{
		graph:   graph,
		terrain: terrain,
		writer:  writer,
		handle:  graph.SharedResource(RingHeightResource),
	}
}

func (p *RingHeightPass) Name() string {
	return "RingHeightPass"
}

func (p *RingHeightPass) Inputs() []string {
	return nil
}

func (p *RingHeightPass) Outputs() []string {
	return []string{RingHeightResource}
}

func (p *RingHeightPass) SetSize(width, height int) {}

func (p *RingHeightPass) Render() {
	res, err := p.graph.Resource(p.handle)
	if err != nil {
		log.Printf("[RingHeight] %v", err)
		return
	}

	size := uint32(p.terrain.Resolution())
	levels := p.terrain.Levels()
	res.Redescribe(rendergraph.TextureDescriptor{
		Name:   RingHeightResource,
		Width:  size,
		Height: size,
		Depth:  uint32(levels),
		Format: wgpu.TextureFormatR32Float,
		Usage:  wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})

	att, err := p.graph.PhysicalResource(p.handle)
	if err != nil {
		log.Printf("[RingHeight] %v", err)
		return
	}

	version := p.terrain.Version()
	if version == p.uploadedVersion && att == p.uploadedTo {
		return
	}

	staging := common.TextureStagingData{Width: size, Height: size, Layers: uint32(levels), BytesPerTexel: 4}
	for level := 0; level < levels; level++ {
		staging.Pixels = append(staging.Pixels, encodeHeights(p.terrain.RingHeights(level))...)
	}
	if err := staging.Validate(); err != nil {
		log.Printf("[RingHeight] %v", err)
		return
	}
	for level := 0; level < levels; level++ {
		if err := p.writer.WriteTextureLayer(att, level, staging.Layer(level)); err != nil {
			log.Printf("[RingHeight] %v", fmt.Errorf("upload level %d: %w", level, err))
			return
		}
	}
	p.uploadedVersion = version
	p.uploadedTo = att
}

func encodeHeights(heights []float32) []byte {
	buf := make([]byte, 4*len(heights))
	for i, h := range heights {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(h))
	}
	return buf
}
