package rendergraph

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

var (
	// ErrUnknownResource is returned for handles the graph never issued.
	ErrUnknownResource = errors.New("rendergraph: unknown resource")
	// ErrDuplicatePass is returned when a pass name is registered twice.
	ErrDuplicatePass = errors.New("rendergraph: duplicate pass")
	// ErrNoAllocator is returned when a physical resource is requested without an allocator.
	ErrNoAllocator = errors.New("rendergraph: no allocator")
	// ErrEmptyResource is returned when a physical resource is requested for a zero-sized descriptor.
	ErrEmptyResource = errors.New("rendergraph: resource has no extent")
)

type physicalEntry struct {
	attachment PhysicalAttachment
	generation uint64
}

type graphImpl struct {
	mu *sync.Mutex

	allocator Allocator

	resources []*resourceImpl
	byName    map[string]ResourceHandle
	physical  map[ResourceHandle]physicalEntry

	passes    []Pass
	passNames map[string]struct{}

	width, height int
}

// Graph is a minimal render graph: a registry of named textures with lazily
// allocated physical backing, and an ordered list of passes.
//
// Passes run in registration order. Resources are shared by name; the first
// reference to a name declares it.
type Graph interface {
	// DeclareTexture registers a texture under desc.Name. Declaring a name that already
	// exists replaces its descriptor and returns the existing handle.
	//
	// Parameters:
	//   - desc: the descriptor, including its name
	//
	// Returns:
	//   - ResourceHandle: the resource handle
	DeclareTexture(desc TextureDescriptor) ResourceHandle

	// SharedResource returns the handle for a name, declaring an empty texture if needed.
	//
	// Parameters:
	//   - name: the shared resource name
	//
	// Returns:
	//   - ResourceHandle: the resource handle
	SharedResource(name string) ResourceHandle

	// Resource returns the logical resource for a handle.
	//
	// Parameters:
	//   - handle: the handle
	//
	// Returns:
	//   - Resource: the logical resource
	//   - error: ErrUnknownResource for unknown handles
	Resource(handle ResourceHandle) (Resource, error)

	// PhysicalResource returns the GPU attachment for a handle, allocating or
	// reallocating it if the descriptor changed since the last allocation.
	//
	// Parameters:
	//   - handle: the handle
	//
	// Returns:
	//   - PhysicalAttachment: the attachment
	//   - error: lookup or allocation errors
	PhysicalResource(handle ResourceHandle) (PhysicalAttachment, error)

	// AddPass appends a pass and declares its inputs and outputs.
	//
	// Parameters:
	//   - p: the pass
	//
	// Returns:
	//   - error: ErrDuplicatePass if the name is taken
	AddPass(p Pass) error

	// Passes returns the registered passes in execution order.
	//
	// Returns:
	//   - []Pass: the passes
	Passes() []Pass

	// Render runs every pass in order.
	Render()

	// Resize forwards a surface size change to every pass.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	Resize(width, height int)

	// Release frees every physical attachment.
	Release()
}

var _ Graph = &graphImpl{}

// NewGraph creates an empty render graph.
//
// Parameters:
//   - options: functional options to configure the graph
//
// Returns:
//   - Graph: the newly created graph
func NewGraph(options ...GraphBuilderOption) Graph {
	g := &graphImpl{
		mu:        &sync.Mutex{},
		byName:    make(map[string]ResourceHandle),
		physical:  make(map[ResourceHandle]physicalEntry),
		passNames: make(map[string]struct{}),
	}
	for _, option := range options {
		option(g)
	}
	return g
}

func (g *graphImpl) DeclareTexture(desc TextureDescriptor) ResourceHandle {
	g.mu.Lock()
	defer g.mu.Unlock()
	if h, ok := g.byName[desc.Name]; ok {
		g.resources[h].Redescribe(desc)
		return h
	}
	return g.declareLocked(desc)
}

func (g *graphImpl) SharedResource(name string) ResourceHandle {
	g.mu.Lock()
	defer g.mu.Unlock()
	if h, ok := g.byName[name]; ok {
		return h
	}
	return g.declareLocked(TextureDescriptor{Name: name})
}

func (g *graphImpl) declareLocked(desc TextureDescriptor) ResourceHandle {
	h := ResourceHandle(len(g.resources))
	g.resources = append(g.resources, newResource(h, desc))
	g.byName[desc.Name] = h
	return h
}

func (g *graphImpl) Resource(handle ResourceHandle) (Resource, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, err := g.lookupLocked(handle)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (g *graphImpl) lookupLocked(handle ResourceHandle) (*resourceImpl, error) {
	if handle < 0 || int(handle) >= len(g.resources) {
		return nil, fmt.Errorf("%w: handle %d", ErrUnknownResource, handle)
	}
	return g.resources[handle], nil
}

func (g *graphImpl) PhysicalResource(handle ResourceHandle) (PhysicalAttachment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, err := g.lookupLocked(handle)
	if err != nil {
		return nil, err
	}
	gen := r.Generation()
	if entry, ok := g.physical[handle]; ok && entry.generation == gen {
		return entry.attachment, nil
	}

	desc := r.Descriptor()
	if desc.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResource, desc.Name)
	}
	if g.allocator == nil {
		return nil, ErrNoAllocator
	}
	att, err := g.allocator.AllocateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("rendergraph: allocate %s: %w", desc.Name, err)
	}
	if old, ok := g.physical[handle]; ok && old.attachment != nil {
		old.attachment.Release()
	}
	g.physical[handle] = physicalEntry{attachment: att, generation: gen}
	log.Printf("[Graph] allocated %s %dx%dx%d (generation %d)", desc.Name, desc.Width, desc.Height, desc.Depth, gen)
	return att, nil
}

func (g *graphImpl) AddPass(p Pass) error {
	g.mu.Lock()
	if _, ok := g.passNames[p.Name()]; ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicatePass, p.Name())
	}
	g.passNames[p.Name()] = struct{}{}
	g.passes = append(g.passes, p)
	names := make([]string, 0, len(p.Inputs())+len(p.Outputs()))
	names = append(names, p.Inputs()...)
	names = append(names, p.Outputs()...)
	for _, name := range names {
		if _, ok := g.byName[name]; !ok {
			g.declareLocked(TextureDescriptor{Name: name})
		}
	}
	width, height := g.width, g.height
	g.mu.Unlock()

	if width > 0 && height > 0 {
		p.SetSize(width, height)
	}
	return nil
}

func (g *graphImpl) Passes() []Pass {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Pass, len(g.passes))
	copy(out, g.passes)
	return out
}

func (g *graphImpl) Render() {
	// Passes call back into the graph, so run them without holding the lock.
	for _, p := range g.Passes() {
		p.Render()
	}
}

func (g *graphImpl) Resize(width, height int) {
	g.mu.Lock()
	g.width, g.height = width, height
	g.mu.Unlock()
	for _, p := range g.Passes() {
		p.SetSize(width, height)
	}
}

func (g *graphImpl) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for h, entry := range g.physical {
		if entry.attachment != nil {
			entry.attachment.Release()
		}
		delete(g.physical, h)
	}
}
