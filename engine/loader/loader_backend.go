package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-csm/engine/model"
)

// loaderBackend defines the generic interface for loading mesh data from files or streams.
// Concrete implementations (e.g., gltfLoaderBackendImpl) handle format-specific details.
type loaderBackend interface {
	// Load imports every mesh reachable from the file's default scene, flattened
	// into one MeshData in model space.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - model.MeshData: the merged mesh
	//   - error: error if loading fails
	Load(path string) (model.MeshData, error)

	// LoadReader imports mesh data from a self-contained stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//
	// Returns:
	//   - model.MeshData: the merged mesh
	//   - error: error if loading fails
	LoadReader(r io.Reader) (model.MeshData, error)
}
