package light

// MaxCascades is the largest cascade count the shadow data block can carry.
const MaxCascades = 4

// DefaultSplitLambda blends logarithmic and uniform cascade splits.
// 0 is fully uniform, 1 is fully logarithmic.
const DefaultSplitLambda float32 = 0.5

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.001

// DefaultShadowNormalBiasScale is the multiplier applied to the shadow map
// texel world-size to compute the normal-offset bias. Typical values are 2.0 to 4.0.
const DefaultShadowNormalBiasScale float32 = 3.0

// DefaultDepthBias and DefaultDepthBiasSlopeScale are the rasterizer bias values
// baked into the depth-only pipelines.
const (
	DefaultDepthBias           int32   = 2
	DefaultDepthBiasSlopeScale float32 = 2.0
)
