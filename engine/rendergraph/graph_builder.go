package rendergraph

// GraphBuilderOption is a function that configures a Graph during construction.
type GraphBuilderOption func(*graphImpl)

// WithAllocator sets the allocator used to back resources with GPU textures.
//
// Parameters:
//   - a: the allocator
//
// Returns:
//   - GraphBuilderOption: a function that sets the allocator
func WithAllocator(a Allocator) GraphBuilderOption {
	return func(g *graphImpl) {
		g.allocator = a
	}
}

// WithSize sets the initial surface size forwarded to passes as they are added.
//
// Parameters:
//   - width, height: the size in pixels
//
// Returns:
//   - GraphBuilderOption: a function that sets the size
func WithSize(width, height int) GraphBuilderOption {
	return func(g *graphImpl) {
		g.width, g.height = width, height
	}
}
