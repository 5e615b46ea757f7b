package csm

import (
	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/light"
)

// CSMBuilderOption is a function that configures a CSM during construction.
type CSMBuilderOption func(*csmImpl)

// WithConfig sets the initial cascade layout.
//
// Parameters:
//   - cfg: the layout
//
// Returns:
//   - CSMBuilderOption: a function that sets the layout
func WithConfig(cfg CascadeConfig) CSMBuilderOption {
	return func(c *csmImpl) {
		c.config = cfg
	}
}

// WithTier sets the initial cascade layout from a quality tier.
//
// Parameters:
//   - tier: the quality tier
//
// Returns:
//   - CSMBuilderOption: a function that sets the layout
func WithTier(tier QualityTier) CSMBuilderOption {
	return func(c *csmImpl) {
		c.config = ConfigForTier(tier)
	}
}

// WithCamera attaches the main camera the cascades are fitted to.
//
// Parameters:
//   - cam: the main camera
//
// Returns:
//   - CSMBuilderOption: a function that sets the camera
func WithCamera(cam camera.Camera) CSMBuilderOption {
	return func(c *csmImpl) {
		c.camera = cam
	}
}

// WithLight attaches the directional light that the cascades look along.
// Without a light the cascades look straight down.
//
// Parameters:
//   - l: the directional light
//
// Returns:
//   - CSMBuilderOption: a function that sets the light
func WithLight(l light.Light) CSMBuilderOption {
	return func(c *csmImpl) {
		c.light = l
	}
}

// WithSplitLambda sets the logarithmic/uniform split blend factor, clamped to [0, 1].
//
// Parameters:
//   - lambda: the blend factor
//
// Returns:
//   - CSMBuilderOption: a function that sets the blend factor
func WithSplitLambda(lambda float32) CSMBuilderOption {
	return func(c *csmImpl) {
		if lambda < 0 {
			lambda = 0
		}
		if lambda > 1 {
			lambda = 1
		}
		c.splitLambda = lambda
	}
}
