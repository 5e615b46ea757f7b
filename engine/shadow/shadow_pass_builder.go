package shadow

// ShadowPassBuilderOption is a functional option for configuring a ShadowPass.
type ShadowPassBuilderOption func(p *shadowPass)

// WithName overrides the pass name used by the render graph.
//
// Parameters:
//   - name: the pass name
//
// Returns:
//   - ShadowPassBuilderOption: option function to apply
func WithName(name string) ShadowPassBuilderOption {
	return func(p *shadowPass) {
		if name != "" {
			p.name = name
		}
	}
}

// WithStatsSink forwards per-frame draw, cull, bind and failure counts, usually to the profiler.
//
// Parameters:
//   - sink: the counter sink
//
// Returns:
//   - ShadowPassBuilderOption: option function to apply
func WithStatsSink(sink StatsSink) ShadowPassBuilderOption {
	return func(p *shadowPass) {
		p.sink = sink
	}
}
