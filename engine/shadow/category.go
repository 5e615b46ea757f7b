package shadow

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-csm/engine/csm"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-csm/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// Category tags one of the five geometry kinds the shadow pass draws.
type Category int

const (
	CategoryBuilding Category = iota
	CategoryHugging
	CategoryInstance
	CategoryTree
	CategoryAircraft

	categoryCount
)

func (c Category) String() string {
	switch c {
	case CategoryBuilding:
		return "building"
	case CategoryHugging:
		return "hugging"
	case CategoryInstance:
		return "instance"
	case CategoryTree:
		return "tree"
	case CategoryAircraft:
		return "aircraft"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// TreeGroupName is the instance group name drawn with the tree material.
const TreeGroupName = "tree"

// categoryForGroup maps an instance group name to its category.
func categoryForGroup(name string) Category {
	if name == TreeGroupName {
		return CategoryTree
	}
	return CategoryInstance
}

// cascadeContext is the per-cascade state shared by every category renderer.
type cascadeContext struct {
	index      int
	camera     csm.CascadeCamera
	ringHeight *wgpu.TextureView
	bound      [categoryCount]bool
	// unbound marks categories whose material failed to bind; their items are not drawn.
	unbound [categoryCount]bool
}

// categoryRenderer writes the uniforms one category's depth program needs.
// PerMaterial values are written once per cascade, PerMesh values once per draw.
type categoryRenderer interface {
	depthMaterial() material.DepthMaterial
	bindMaterial(cc *cascadeContext) error
	bindItem(cc *cascadeContext, item scene.GeometryItem, tile scene.Tile) error
}

// standardRenderer serves every category whose program reads only projection and model-view.
type standardRenderer struct {
	mat material.DepthMaterial
}

func (r *standardRenderer) depthMaterial() material.DepthMaterial {
	return r.mat
}

func (r *standardRenderer) bindMaterial(cc *cascadeContext) error {
	return r.mat.Set(material.UniformProjection, cc.camera.ProjectionMatrix())
}

func (r *standardRenderer) bindItem(cc *cascadeContext, item scene.GeometryItem, _ scene.Tile) error {
	return r.mat.Set(material.UniformModelView, material.ModelView(cc.camera.ViewInverse(), item.WorldMatrix()))
}

// huggingRenderer adds the terrain ring data to the standard uniforms.
type huggingRenderer struct {
	standardRenderer
	terrain func() scene.Terrain
}

func (r *huggingRenderer) bindMaterial(cc *cascadeContext) error {
	if err := r.standardRenderer.bindMaterial(cc); err != nil {
		return err
	}
	if cc.ringHeight == nil {
		return nil
	}
	return r.mat.Set(material.UniformRingHeight, cc.ringHeight)
}

func (r *huggingRenderer) bindItem(cc *cascadeContext, item scene.GeometryItem, tile scene.Tile) error {
	if err := r.standardRenderer.bindItem(cc, item, tile); err != nil {
		return err
	}
	var params scene.TileParams
	var segments int32
	if tile != nil {
		params = r.terrain().TileParams(tile)
		segments = tile.SegmentCount()
	}
	return errors.Join(
		r.mat.Set(material.UniformSize, params.Ring0),
		r.mat.Set(material.UniformLevelID, params.LevelID),
		r.mat.Set(material.UniformRing0Offset, params.Ring0Offset),
		r.mat.Set(material.UniformRing1Offset, params.Ring1Offset),
		r.mat.Set(material.UniformSegments, 2*segments),
	)
}

func newCategoryRenderers(mats material.DepthMaterialSet, terrain func() scene.Terrain) [categoryCount]categoryRenderer {
	return [categoryCount]categoryRenderer{
		CategoryBuilding: &standardRenderer{mat: mats.Building},
		CategoryHugging:  &huggingRenderer{standardRenderer: standardRenderer{mat: mats.Hugging}, terrain: terrain},
		CategoryInstance: &standardRenderer{mat: mats.Instance},
		CategoryTree:     &standardRenderer{mat: mats.Tree},
		CategoryAircraft: &standardRenderer{mat: mats.Aircraft},
	}
}
