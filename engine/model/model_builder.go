package model

import (
	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/Carmen-Shannon/oxy-csm/engine/renderer/bind_group_provider"
)

// ModelBuilderOption is a functional option used to configure a Model during construction.
type ModelBuilderOption func(*model)

// WithName overrides the name taken from the mesh data.
//
// Parameters:
//   - name: the model name
//
// Returns:
//   - ModelBuilderOption: a function that sets the name
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMeshProvider sets a pre-built mesh provider instead of creating one.
//
// Parameters:
//   - provider: the mesh provider
//
// Returns:
//   - ModelBuilderOption: a function that sets the provider
func WithMeshProvider(provider bind_group_provider.BindGroupProvider) ModelBuilderOption {
	return func(m *model) {
		m.meshProvider = provider
	}
}

// WithBounds overrides the computed bounding sphere.
//
// Parameters:
//   - bounds: the sphere in owner space
//
// Returns:
//   - ModelBuilderOption: a function that sets the bounds
func WithBounds(bounds common.BoundingSphere) ModelBuilderOption {
	return func(m *model) {
		m.bounds = bounds
	}
}
