package rendergraph

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// MemoryAllocator is an Allocator that hands out placeholder views without
// touching a GPU device. Headless tools and tests use it to drive passes.
type MemoryAllocator interface {
	Allocator

	// Allocations returns how many textures have been allocated.
	//
	// Returns:
	//   - int: the allocation count
	Allocations() int

	// Live returns how many allocated textures have not been released.
	//
	// Returns:
	//   - int: the live count
	Live() int
}

type memoryAllocator struct {
	mu *sync.Mutex

	allocations int
	live        int
}

var _ MemoryAllocator = &memoryAllocator{}

// NewMemoryAllocator creates an allocator backed by placeholder views.
//
// Returns:
//   - MemoryAllocator: the allocator
func NewMemoryAllocator() MemoryAllocator {
	return &memoryAllocator{mu: &sync.Mutex{}}
}

func (a *memoryAllocator) AllocateTexture(desc TextureDescriptor) (PhysicalAttachment, error) {
	if desc.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResource, desc.Name)
	}
	a.mu.Lock()
	a.allocations++
	a.live++
	a.mu.Unlock()

	slices := make([]*wgpu.TextureView, desc.Depth)
	for i := range slices {
		slices[i] = &wgpu.TextureView{}
	}
	return &memoryAttachment{
		owner:  a,
		desc:   desc,
		full:   &wgpu.TextureView{},
		slices: slices,
	}, nil
}

func (a *memoryAllocator) Allocations() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocations
}

func (a *memoryAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

type memoryAttachment struct {
	owner    *memoryAllocator
	desc     TextureDescriptor
	full     *wgpu.TextureView
	slices   []*wgpu.TextureView
	released bool
}

var _ PhysicalAttachment = &memoryAttachment{}

func (m *memoryAttachment) Descriptor() TextureDescriptor {
	return m.desc
}

func (m *memoryAttachment) Layers() int {
	return len(m.slices)
}

func (m *memoryAttachment) DepthSlice(i int) *wgpu.TextureView {
	if i < 0 || i >= len(m.slices) {
		panic(fmt.Sprintf("rendergraph: depth slice %d out of range for %s (%d layers)", i, m.desc.Name, len(m.slices)))
	}
	return m.slices[i]
}

func (m *memoryAttachment) ColorTexture(i int) *wgpu.TextureView {
	if i != 0 {
		panic(fmt.Sprintf("rendergraph: color texture %d out of range for %s", i, m.desc.Name))
	}
	return m.full
}

func (m *memoryAttachment) Release() {
	if m.released {
		return
	}
	m.released = true
	m.owner.mu.Lock()
	m.owner.live--
	m.owner.mu.Unlock()
}
