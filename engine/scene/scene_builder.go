package scene

import (
	"github.com/Carmen-Shannon/oxy-csm/engine/csm"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithCSM attaches an existing cascade set instead of creating one for the camera.
//
// Parameters:
//   - c: the cascade set
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCSM(c csm.CSM) SceneBuilderOption {
	return func(s *scene) {
		s.csm = c
	}
}

// WithTerrain sets the terrain ring data.
//
// Parameters:
//   - t: the terrain
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTerrain(t Terrain) SceneBuilderOption {
	return func(s *scene) {
		s.terrain = t
	}
}

// WithTiles adds initial tiles to the scene.
//
// Parameters:
//   - tiles: the tiles to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTiles(tiles ...Tile) SceneBuilderOption {
	return func(s *scene) {
		for _, t := range tiles {
			if t != nil {
				s.tiles = append(s.tiles, t)
			}
		}
	}
}

// WithPrepareWorkers sets how many pool workers refresh bounds in PrepareFrame.
// Defaults to one less than the CPU count, minimum 1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPrepareWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n > 0 {
			s.computeWorkers = n
		}
	}
}

// WithInstanceUploader sets the function that pushes changed instance transforms to the GPU,
// usually Renderer.UpdateInstances. Without it PrepareFrame only tracks CPU state.
//
// Parameters:
//   - u: the uploader
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithInstanceUploader(u InstanceUploader) SceneBuilderOption {
	return func(s *scene) {
		s.uploader = u
	}
}
