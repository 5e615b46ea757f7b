package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	renderer renderer.Renderer

	modelCache map[string]model.Model

	backend loaderBackend
}

// Loader loads and caches depth-only meshes for the instanced prop, tree and
// aircraft groups. The file format is abstracted behind a backend.
type Loader interface {
	// Load imports a model file and caches the result by path.
	// When a Renderer is attached the model's GPU buffers are created before it is cached.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error if loading or GPU init fails
	Load(path string) (model.Model, error)

	// LoadReader imports a self-contained model stream and caches it by name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (model.Model, error)

	// LoadMeshData imports a model file without creating a Model or touching the cache.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.MeshData: the merged CPU mesh
	//   - error: error if loading fails
	LoadMeshData(path string) (model.MeshData, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by name
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the file format backend
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]model.Model),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	data, err := l.LoadMeshData(path)
	if err != nil {
		return nil, err
	}
	return l.store(path, data)
}

func (l *loader) LoadReader(name string, r io.Reader) (model.Model, error) {
	data, err := l.backend.LoadReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return l.store(name, data)
}

func (l *loader) LoadMeshData(path string) (model.MeshData, error) {
	backend, err := l.resolveBackend(path)
	if err != nil {
		return model.MeshData{}, err
	}
	data, err := backend.Load(path)
	if err != nil {
		return model.MeshData{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if data.Name == "" {
		data.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return data, nil
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		out[k] = v
	}
	return out
}

// store wraps mesh data in a Model, uploads it when a renderer is attached and caches it.
func (l *loader) store(key string, data model.MeshData) (model.Model, error) {
	if data.Name == "" {
		data.Name = key
	}
	m := model.NewModel(data)
	if l.renderer != nil {
		if err := l.renderer.InitMesh(m); err != nil {
			return nil, fmt.Errorf("failed to init mesh %s: %w", key, err)
		}
	}

	l.mu.Lock()
	l.modelCache[key] = m
	l.mu.Unlock()
	return m, nil
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported model format: %s", ext)
	}
}
