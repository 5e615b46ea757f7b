package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithUniformBuffer requests a uniform buffer of the given size at a binding.
// The Renderer creates the buffer when the provider is initialized.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - size: the buffer size in bytes
//
// Returns:
//   - BindGroupProviderOption: a function that records the buffer request
func WithUniformBuffer(binding int, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bufferSizes[binding] = size
	}
}

// WithIndexCount sets the index count used for draw calls.
//
// Parameters:
//   - count: the number of indices
//
// Returns:
//   - BindGroupProviderOption: a function that sets the index count
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.indexCount = count
	}
}
