package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/csm"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// GeometryItem is a read-only view of one drawable piece of scene geometry.
// Items are owned by the scene; passes hold them only for the duration of a frame.
type GeometryItem interface {
	// WorldMatrix returns the item's world transform.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major world matrix
	WorldMatrix() mgl32.Mat4

	// Drawable returns the mesh handle, or nil when the item has no geometry.
	//
	// Returns:
	//   - model.Model: the mesh or nil
	Drawable() model.Model

	// WorldBounds returns the world-space bounding sphere computed by the last Scene.PrepareFrame.
	//
	// Returns:
	//   - common.BoundingSphere: the sphere
	WorldBounds() common.BoundingSphere

	// Intersects reports whether the item's world bounds touch a cascade frustum.
	// Items without a drawable never intersect.
	//
	// Parameters:
	//   - cam: the cascade camera
	//
	// Returns:
	//   - bool: true if the item may cast into the cascade
	Intersects(cam csm.CascadeCamera) bool
}

// InstancedItem is a GeometryItem drawn with per-instance transforms: instance groups and aircraft.
type InstancedItem interface {
	GeometryItem

	// Name returns the registry key of the item.
	//
	// Returns:
	//   - string: the name
	Name() string

	// InstanceCount returns the number of instances to draw, 0 when the item has no drawable.
	//
	// Returns:
	//   - int: the instance count
	InstanceCount() int

	// SetInstances replaces the instance transforms. The GPU copy is refreshed by the next Scene.PrepareFrame.
	//
	// Parameters:
	//   - transforms: per-instance world transforms
	SetInstances(transforms []mgl32.Mat4)
}

// boundsRefresher is implemented by items whose world bounds are cached.
type boundsRefresher interface {
	refreshBounds()
}

// instanceUploadable is implemented by items whose instance data changed since the last upload.
// takeDirty clears the flag; a failed upload restores it with markDirty.
type instanceUploadable interface {
	takeDirty() model.Model
	markDirty()
}

type geometryItem struct {
	mu *sync.RWMutex

	world    mgl32.Mat4
	drawable model.Model
	bounds   common.BoundingSphere
}

var _ GeometryItem = &geometryItem{}

func newGeometryItem(world mgl32.Mat4, drawable model.Model) *geometryItem {
	g := &geometryItem{
		mu:       &sync.RWMutex{},
		world:    world,
		drawable: drawable,
	}
	g.refreshBounds()
	return g
}

func (g *geometryItem) WorldMatrix() mgl32.Mat4 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.world
}

func (g *geometryItem) Drawable() model.Model {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.drawable
}

func (g *geometryItem) WorldBounds() common.BoundingSphere {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bounds
}

func (g *geometryItem) Intersects(cam csm.CascadeCamera) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.drawable == nil || cam == nil {
		return false
	}
	f := cam.Frustum()
	return f.IntersectsSphere(g.bounds.Center, g.bounds.Radius)
}

func (g *geometryItem) setWorldMatrix(world mgl32.Mat4) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.world = world
}

func (g *geometryItem) refreshBounds() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.drawable == nil {
		g.bounds = common.BoundingSphere{Center: g.world.Col(3).Vec3()}
		return
	}
	g.bounds = g.drawable.Bounds().Transform(g.world)
}

type instancedItem struct {
	*geometryItem

	name  string
	dirty bool
}

var _ InstancedItem = &instancedItem{}

func newInstancedItem(name string, drawable model.Model) *instancedItem {
	return &instancedItem{
		geometryItem: newGeometryItem(mgl32.Ident4(), drawable),
		name:         name,
	}
}

func (it *instancedItem) Name() string {
	return it.name
}

func (it *instancedItem) InstanceCount() int {
	d := it.Drawable()
	if d == nil {
		return 0
	}
	return d.InstanceCount()
}

func (it *instancedItem) SetInstances(transforms []mgl32.Mat4) {
	d := it.Drawable()
	if d == nil {
		return
	}
	d.SetInstances(transforms)

	it.mu.Lock()
	it.dirty = true
	it.mu.Unlock()
}

func (it *instancedItem) takeDirty() model.Model {
	it.mu.Lock()
	defer it.mu.Unlock()
	if !it.dirty {
		return nil
	}
	it.dirty = false
	return it.drawable
}

func (it *instancedItem) markDirty() {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.dirty = true
}
