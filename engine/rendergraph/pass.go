package rendergraph

// Pass is the lifecycle contract every pass in the graph implements.
type Pass interface {
	// Name returns a unique pass name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Inputs returns the shared resource names the pass reads.
	//
	// Returns:
	//   - []string: input names
	Inputs() []string

	// Outputs returns the shared resource names the pass writes.
	//
	// Returns:
	//   - []string: output names
	Outputs() []string

	// Render records the pass's GPU work for the current frame.
	Render()

	// SetSize is called when the output surface changes size.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	SetSize(width, height int)
}
