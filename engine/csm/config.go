package csm

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-csm/engine/light"
)

// QualityTier is the user-facing shadow quality setting.
type QualityTier string

const (
	TierLow    QualityTier = "low"
	TierMedium QualityTier = "medium"
	TierHigh   QualityTier = "high"
)

// ParseQualityTier normalizes a settings value into a QualityTier.
// Unknown values are returned as-is; ConfigForTier treats them as TierHigh.
//
// Parameters:
//   - value: the raw settings string
//
// Returns:
//   - QualityTier: the tier
func ParseQualityTier(value string) QualityTier {
	return QualityTier(strings.ToLower(strings.TrimSpace(value)))
}

// CascadeConfig is the triple that fully describes the cascade layout.
// The three fields always change together.
type CascadeConfig struct {
	CascadeCount int
	Resolution   int
	FarDistance  float32
}

// ConfigForTier returns the cascade layout for a quality tier.
//
//	low    -> 1 cascade,  2048 texels, 3000 units
//	medium -> 3 cascades, 2048 texels, 4000 units
//	high   -> 3 cascades, 4096 texels, 5000 units
//
// Any other tier falls through to the high configuration.
//
// Parameters:
//   - tier: the quality tier
//
// Returns:
//   - CascadeConfig: the resulting layout
func ConfigForTier(tier QualityTier) CascadeConfig {
	switch tier {
	case TierLow:
		return CascadeConfig{CascadeCount: 1, Resolution: 2048, FarDistance: 3000}
	case TierMedium:
		return CascadeConfig{CascadeCount: 3, Resolution: 2048, FarDistance: 4000}
	default:
		return CascadeConfig{CascadeCount: 3, Resolution: 4096, FarDistance: 5000}
	}
}

// Validate checks that the configuration can back a depth texture array.
//
// Returns:
//   - error: nil when every field is in range
func (c CascadeConfig) Validate() error {
	if c.CascadeCount < 1 || c.CascadeCount > light.MaxCascades {
		return fmt.Errorf("csm: cascade count %d out of range [1, %d]", c.CascadeCount, light.MaxCascades)
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("csm: resolution must be positive, got %d", c.Resolution)
	}
	if c.FarDistance <= 0 {
		return fmt.Errorf("csm: far distance must be positive, got %v", c.FarDistance)
	}
	return nil
}
