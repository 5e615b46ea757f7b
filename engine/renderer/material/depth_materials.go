package material

import (
	_ "embed"

	"github.com/cogentcore/webgpu/wgpu"
)

// Uniform names shared by the depth programs.
const (
	UniformProjection  = "projection"
	UniformModelView   = "modelView"
	UniformRingHeight  = "ringHeight"
	UniformSize        = "size"
	UniformLevelID     = "levelId"
	UniformRing0Offset = "ring0Offset"
	UniformRing1Offset = "ring1Offset"
	UniformSegments    = "segmentCount"
)

//go:embed assets/building.wgsl
var buildingSource string

//go:embed assets/hugging.wgsl
var huggingSource string

//go:embed assets/instance.wgsl
var instanceSource string

//go:embed assets/tree.wgsl
var treeSource string

//go:embed assets/aircraft.wgsl
var aircraftSource string

func projectionAndModelView() []uniformDecl {
	return []uniformDecl{
		{UniformProjection, GroupPerMaterial, UniformMat4},
		{UniformModelView, GroupPerMesh, UniformMat4},
	}
}

// NewBuildingMaterial creates the depth program for extruded buildings.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - DepthMaterial: the building material
func NewBuildingMaterial(options ...MaterialBuilderOption) DepthMaterial {
	return newMaterial(KindBuilding, buildingSource, projectionAndModelView(), options...)
}

// NewHuggingMaterial creates the depth program for terrain-hugging meshes. Besides
// the projection it samples the ring-height texture array and reads per-tile ring metadata.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - DepthMaterial: the hugging-mesh material
func NewHuggingMaterial(options ...MaterialBuilderOption) DepthMaterial {
	return newMaterial(KindHugging, huggingSource, []uniformDecl{
		{UniformProjection, GroupPerMaterial, UniformMat4},
		{UniformRingHeight, GroupPerMaterial, UniformTexture},
		{UniformModelView, GroupPerMesh, UniformMat4},
		{UniformSize, GroupPerMesh, UniformFloat},
		{UniformLevelID, GroupPerMesh, UniformInt},
		{UniformRing0Offset, GroupPerMesh, UniformVec2},
		{UniformRing1Offset, GroupPerMesh, UniformVec2},
		{UniformSegments, GroupPerMesh, UniformInt},
	}, options...)
}

// NewInstanceMaterial creates the depth program for generic instanced props.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - DepthMaterial: the generic instance material
func NewInstanceMaterial(options ...MaterialBuilderOption) DepthMaterial {
	return newMaterial(KindInstance, instanceSource, projectionAndModelView(),
		append([]MaterialBuilderOption{withInstanced()}, options...)...)
}

// NewTreeMaterial creates the depth program for instanced trees. Faces are not culled.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - DepthMaterial: the tree material
func NewTreeMaterial(options ...MaterialBuilderOption) DepthMaterial {
	return newMaterial(KindTree, treeSource, projectionAndModelView(),
		append([]MaterialBuilderOption{withInstanced(), WithCullMode(wgpu.CullModeNone)}, options...)...)
}

// NewAircraftMaterial creates the depth program for instanced aircraft.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - DepthMaterial: the aircraft material
func NewAircraftMaterial(options ...MaterialBuilderOption) DepthMaterial {
	return newMaterial(KindAircraft, aircraftSource, projectionAndModelView(),
		append([]MaterialBuilderOption{withInstanced()}, options...)...)
}

// DepthMaterialSet holds one material per depth program.
type DepthMaterialSet struct {
	Building DepthMaterial
	Hugging  DepthMaterial
	Instance DepthMaterial
	Tree     DepthMaterial
	Aircraft DepthMaterial
}

// NewDepthMaterialSet creates all five depth programs.
//
// Returns:
//   - DepthMaterialSet: the material set
func NewDepthMaterialSet() DepthMaterialSet {
	return DepthMaterialSet{
		Building: NewBuildingMaterial(),
		Hugging:  NewHuggingMaterial(),
		Instance: NewInstanceMaterial(),
		Tree:     NewTreeMaterial(),
		Aircraft: NewAircraftMaterial(),
	}
}

// All returns the materials in category order.
//
// Returns:
//   - []DepthMaterial: building, hugging, instance, tree, aircraft
func (s DepthMaterialSet) All() []DepthMaterial {
	return []DepthMaterial{s.Building, s.Hugging, s.Instance, s.Tree, s.Aircraft}
}

// Release frees the GPU resources of every material.
func (s DepthMaterialSet) Release() {
	for _, m := range s.All() {
		if m != nil {
			m.Release()
		}
	}
}
