package scene

import (
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Tile is one cell of the streamed world: an extruded building mesh and a
// terrain-hugging mesh sharing the tile's world transform. Either mesh may be absent.
type Tile interface {
	// ID returns the tile identifier used to look up terrain parameters.
	//
	// Returns:
	//   - int: the tile id
	ID() int

	// WorldMatrix returns the tile's world transform.
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	WorldMatrix() mgl32.Mat4

	// Building returns the building item. Its Drawable is nil when the tile has no buildings.
	//
	// Returns:
	//   - GeometryItem: the building item
	Building() GeometryItem

	// Hugging returns the terrain-hugging item. Its Drawable is nil when the tile has no hugging mesh.
	//
	// Returns:
	//   - GeometryItem: the hugging item
	Hugging() GeometryItem

	// SegmentCount returns the number of grid segments per side of the hugging mesh.
	//
	// Returns:
	//   - int32: the segment count
	SegmentCount() int32

	// SetWorldMatrix moves the tile. Bounds follow on the next Scene.PrepareFrame.
	//
	// Parameters:
	//   - world: the new world matrix
	SetWorldMatrix(world mgl32.Mat4)
}

type tile struct {
	id       int
	world    mgl32.Mat4
	segments int32

	buildingMesh model.Model
	huggingMesh  model.Model

	building *geometryItem
	hugging  *geometryItem
}

var _ Tile = &tile{}

// NewTile creates a tile. Without options it has an identity transform and no geometry.
//
// Parameters:
//   - id: the tile id
//   - options: functional options to configure the tile
//
// Returns:
//   - Tile: the new tile
func NewTile(id int, options ...TileBuilderOption) Tile {
	t := &tile{
		id:    id,
		world: mgl32.Ident4(),
	}
	for _, option := range options {
		option(t)
	}
	t.building = newGeometryItem(t.world, t.buildingMesh)
	t.hugging = newGeometryItem(t.world, t.huggingMesh)
	return t
}

func (t *tile) ID() int {
	return t.id
}

func (t *tile) WorldMatrix() mgl32.Mat4 {
	return t.building.WorldMatrix()
}

func (t *tile) Building() GeometryItem {
	return t.building
}

func (t *tile) Hugging() GeometryItem {
	return t.hugging
}

func (t *tile) SegmentCount() int32 {
	return t.segments
}

func (t *tile) SetWorldMatrix(world mgl32.Mat4) {
	t.building.setWorldMatrix(world)
	t.hugging.setWorldMatrix(world)
}

// TileBuilderOption is a functional option for configuring a Tile.
type TileBuilderOption func(t *tile)

// WithTileTransform sets the tile's world transform.
//
// Parameters:
//   - world: the world matrix
//
// Returns:
//   - TileBuilderOption: option function to apply
func WithTileTransform(world mgl32.Mat4) TileBuilderOption {
	return func(t *tile) {
		t.world = world
	}
}

// WithBuildingMesh sets the extruded building mesh.
//
// Parameters:
//   - m: the building mesh
//
// Returns:
//   - TileBuilderOption: option function to apply
func WithBuildingMesh(m model.Model) TileBuilderOption {
	return func(t *tile) {
		t.buildingMesh = m
	}
}

// WithHuggingMesh sets the terrain-hugging mesh and its grid segment count.
//
// Parameters:
//   - m: the hugging mesh, vertices in grid units
//   - segments: grid segments per side
//
// Returns:
//   - TileBuilderOption: option function to apply
func WithHuggingMesh(m model.Model, segments int32) TileBuilderOption {
	return func(t *tile) {
		t.huggingMesh = m
		t.segments = segments
	}
}
