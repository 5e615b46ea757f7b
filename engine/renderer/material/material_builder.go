package material

import "github.com/cogentcore/webgpu/wgpu"

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithPipelineKey is an option builder that overrides the depth pipeline key.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - MaterialBuilderOption: a function that applies the key to a material
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithCullMode is an option builder that sets the rasterizer cull mode.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - MaterialBuilderOption: a function that applies the cull mode to a material
func WithCullMode(mode wgpu.CullMode) MaterialBuilderOption {
	return func(m *material) {
		m.cullMode = mode
	}
}

func withInstanced() MaterialBuilderOption {
	return func(m *material) {
		m.instanced = true
	}
}
