package rendergraph

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// ResourceHandle identifies a graph resource. Handles are stable for the life of the graph.
type ResourceHandle int

// InvalidHandle is never returned for a declared resource.
const InvalidHandle ResourceHandle = -1

// TextureDescriptor describes the size and format of a graph texture.
// Depth is the array layer count for 2D array textures.
type TextureDescriptor struct {
	Name   string
	Width  uint32
	Height uint32
	Depth  uint32
	Format wgpu.TextureFormat
	Usage  wgpu.TextureUsage
}

// Empty reports whether the descriptor has no allocatable extent.
//
// Returns:
//   - bool: true if any dimension is zero
func (d TextureDescriptor) Empty() bool {
	return d.Width == 0 || d.Height == 0 || d.Depth == 0
}

// Resource is the logical side of a graph texture: a name, a descriptor and a
// generation counter that advances every time the descriptor is replaced.
type Resource interface {
	// Handle returns the resource's handle.
	//
	// Returns:
	//   - ResourceHandle: the handle
	Handle() ResourceHandle

	// Name returns the shared name the resource was declared with.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Descriptor returns the current descriptor.
	//
	// Returns:
	//   - TextureDescriptor: the descriptor
	Descriptor() TextureDescriptor

	// Redescribe replaces the descriptor. The physical texture is reallocated the next
	// time it is requested. Replacing with an identical descriptor is a no-op.
	// The name is always kept.
	//
	// Parameters:
	//   - desc: the new descriptor
	Redescribe(desc TextureDescriptor)

	// Generation returns how many times the descriptor has been replaced.
	//
	// Returns:
	//   - uint64: the generation counter
	Generation() uint64
}

type resourceImpl struct {
	mu *sync.Mutex

	handle     ResourceHandle
	desc       TextureDescriptor
	generation uint64
}

var _ Resource = &resourceImpl{}

func newResource(handle ResourceHandle, desc TextureDescriptor) *resourceImpl {
	return &resourceImpl{
		mu:     &sync.Mutex{},
		handle: handle,
		desc:   desc,
	}
}

func (r *resourceImpl) Handle() ResourceHandle {
	return r.handle
}

func (r *resourceImpl) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.desc.Name
}

func (r *resourceImpl) Descriptor() TextureDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.desc
}

func (r *resourceImpl) Redescribe(desc TextureDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	desc.Name = r.desc.Name
	if desc == r.desc {
		return
	}
	r.desc = desc
	r.generation++
}

func (r *resourceImpl) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generation
}

// PhysicalAttachment is the GPU side of a graph texture.
type PhysicalAttachment interface {
	// Descriptor returns the descriptor the attachment was allocated from.
	//
	// Returns:
	//   - TextureDescriptor: the descriptor
	Descriptor() TextureDescriptor

	// Layers returns the number of array layers.
	//
	// Returns:
	//   - int: the layer count
	Layers() int

	// DepthSlice returns a 2D view of one array layer, usable as a depth attachment.
	// Panics if i is out of range.
	//
	// Parameters:
	//   - i: the layer index
	//
	// Returns:
	//   - *wgpu.TextureView: the single-layer view
	DepthSlice(i int) *wgpu.TextureView

	// ColorTexture returns the i-th sampled view of the texture. Index 0 is the
	// full array view. Panics if i is out of range.
	//
	// Parameters:
	//   - i: the view index
	//
	// Returns:
	//   - *wgpu.TextureView: the view
	ColorTexture(i int) *wgpu.TextureView

	// Release frees the GPU texture and all of its views.
	Release()
}

// Allocator creates physical attachments for graph resources.
type Allocator interface {
	// AllocateTexture creates the GPU texture and views for a descriptor.
	//
	// Parameters:
	//   - desc: the descriptor to allocate
	//
	// Returns:
	//   - PhysicalAttachment: the allocated attachment
	//   - error: an allocation error
	AllocateTexture(desc TextureDescriptor) (PhysicalAttachment, error)
}
