package csm

import (
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// CSM owns the cascade layout and the cascade camera set derived from the main
// camera and the sun direction.
//
// Layout changes (Apply or the individual setters) do not touch the camera set;
// callers rebuild it with UpdateCascades. The camera set is replaced in full on
// every rebuild and never mutated in place.
type CSM interface {
	// Cascades returns the number of cascades.
	//
	// Returns:
	//   - int: cascade count
	Cascades() int

	// Resolution returns the width and height in texels of each cascade slice.
	//
	// Returns:
	//   - int: resolution in texels
	Resolution() int

	// Far returns the view distance covered by the last cascade.
	//
	// Returns:
	//   - float32: shadow far distance
	Far() float32

	// Config returns the current layout triple.
	//
	// Returns:
	//   - CascadeConfig: the layout
	Config() CascadeConfig

	// SetCascades sets the cascade count. Panics outside [1, light.MaxCascades].
	//
	// Parameters:
	//   - n: the cascade count
	SetCascades(n int)

	// SetResolution sets the per-slice resolution. Panics when not positive.
	//
	// Parameters:
	//   - res: resolution in texels
	SetResolution(res int)

	// SetFar sets the shadow far distance. Panics when not positive.
	//
	// Parameters:
	//   - far: the distance in world units
	SetFar(far float32)

	// Apply replaces all three layout fields at once.
	//
	// Parameters:
	//   - cfg: the new layout
	//
	// Returns:
	//   - error: a validation error; the layout is unchanged on error
	Apply(cfg CascadeConfig) error

	// UpdateCascades rebuilds the cascade camera set from the current layout,
	// the main camera and the light direction.
	UpdateCascades()

	// CascadeCameras returns the cascade cameras built by the last UpdateCascades.
	//
	// Returns:
	//   - []CascadeCamera: cameras ordered by index
	CascadeCameras() []CascadeCamera

	// SplitDistances returns the far view distance of each cascade.
	//
	// Returns:
	//   - []float32: one distance per cascade, increasing
	SplitDistances() []float32

	// ShadowData packs the cascade matrices and splits for lighting passes.
	//
	// Returns:
	//   - light.GPUCascadeShadowData: the uniform block
	ShadowData() light.GPUCascadeShadowData
}

type csmImpl struct {
	mu *sync.Mutex

	config      CascadeConfig
	splitLambda float32

	camera camera.Camera
	light  light.Light

	cascades []CascadeCamera
	splits   []float32
	radii    []float32
}

var _ CSM = &csmImpl{}

// NewCSM creates a CSM with the high tier layout unless overridden.
// A camera must be attached before UpdateCascades is called.
//
// Parameters:
//   - options: functional options to configure the CSM
//
// Returns:
//   - CSM: the newly created CSM
func NewCSM(options ...CSMBuilderOption) CSM {
	c := &csmImpl{
		mu:          &sync.Mutex{},
		config:      ConfigForTier(TierHigh),
		splitLambda: light.DefaultSplitLambda,
	}
	for _, option := range options {
		option(c)
	}
	if err := c.config.Validate(); err != nil {
		panic(err.Error())
	}
	return c
}

func (c *csmImpl) Cascades() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.CascadeCount
}

func (c *csmImpl) Resolution() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.Resolution
}

func (c *csmImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.FarDistance
}

func (c *csmImpl) Config() CascadeConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

func (c *csmImpl) SetCascades(n int) {
	if n < 1 || n > light.MaxCascades {
		panic(fmt.Sprintf("csm: cascade count %d out of range [1, %d]", n, light.MaxCascades))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.CascadeCount = n
}

func (c *csmImpl) SetResolution(res int) {
	if res <= 0 {
		panic(fmt.Sprintf("csm: resolution must be positive, got %d", res))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Resolution = res
}

func (c *csmImpl) SetFar(far float32) {
	if far <= 0 {
		panic(fmt.Sprintf("csm: far distance must be positive, got %v", far))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.FarDistance = far
}

func (c *csmImpl) Apply(cfg CascadeConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
	return nil
}

func (c *csmImpl) UpdateCascades() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.camera == nil {
		panic("csm: UpdateCascades requires a camera")
	}
	dir := mgl32.Vec3{0, -1, 0}
	if c.light != nil {
		dir = c.light.Direction()
	}

	near := c.camera.Near()
	far := c.config.FarDistance
	if far <= near {
		far = near + 1
	}
	splits := PracticalSplits(near, far, c.config.CascadeCount, c.splitLambda)

	cascades := make([]CascadeCamera, len(splits))
	radii := make([]float32, len(splits))
	prev := near
	for i, split := range splits {
		corners := c.camera.FrustumCorners(prev, split)
		proj, view, radius := fitCascade(corners, dir, c.config.Resolution)
		cascades[i] = NewCascadeCamera(i, proj, view, prev, split)
		radii[i] = radius
		prev = split
	}

	c.cascades = cascades
	c.splits = splits
	c.radii = radii
}

func (c *csmImpl) CascadeCameras() []CascadeCamera {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CascadeCamera, len(c.cascades))
	copy(out, c.cascades)
	return out
}

func (c *csmImpl) SplitDistances() []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float32, len(c.splits))
	copy(out, c.splits)
	return out
}

func (c *csmImpl) ShadowData() light.GPUCascadeShadowData {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := light.GPUCascadeShadowData{
		TexelSize:    1.0 / float32(c.config.Resolution),
		Bias:         light.DefaultShadowBias,
		CascadeCount: uint32(len(c.cascades)),
	}
	var widest float32
	for i, cc := range c.cascades {
		if i >= light.MaxCascades {
			break
		}
		data.LightVP[i] = cc.ViewProjection()
		data.Splits[i] = c.splits[i]
		if d := 2 * c.radii[i]; d > widest {
			widest = d
		}
	}
	data.ComputeNormalBias(widest, light.DefaultShadowNormalBiasScale, c.config.Resolution)
	return data
}

// PracticalSplits computes cascade far distances by blending logarithmic and
// uniform partitions of [near, far]. The last split always equals far.
//
// Parameters:
//   - near: main camera near distance (> 0)
//   - far: shadow far distance (> near)
//   - count: number of cascades
//   - lambda: blend factor, 0 uniform to 1 logarithmic
//
// Returns:
//   - []float32: count increasing split distances
func PracticalSplits(near, far float32, count int, lambda float32) []float32 {
	splits := make([]float32, count)
	ratio := float64(far / near)
	for i := 1; i <= count; i++ {
		p := float64(i) / float64(count)
		logSplit := float64(near) * math.Pow(ratio, p)
		uniSplit := float64(near) + float64(far-near)*p
		splits[i-1] = float32(float64(lambda)*logSplit + float64(1-lambda)*uniSplit)
	}
	splits[count-1] = far
	return splits
}

// fitCascade builds a light-space orthographic box around the bounding sphere of
// a frustum slice. The box center is snapped to the shadow texel grid so the
// cascade does not shimmer while the camera translates.
func fitCascade(corners [8]mgl32.Vec3, dir mgl32.Vec3, resolution int) (mgl32.Mat4, mgl32.Mat4, float32) {
	var center mgl32.Vec3
	for _, p := range corners {
		center = center.Add(p)
	}
	center = center.Mul(1.0 / 8)

	var radius float32
	for _, p := range corners {
		if d := p.Sub(center).Len(); d > radius {
			radius = d
		}
	}
	// Quantize so the box size stays fixed under camera rotation.
	radius = float32(math.Ceil(float64(radius)*16) / 16)
	if radius <= 0 {
		radius = 1
	}

	up := mgl32.Vec3{0, 1, 0}
	if float32(math.Abs(float64(dir[1]))) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}

	rot := mgl32.LookAtV(mgl32.Vec3{}, dir, up)
	texel := 2 * radius / float32(resolution)
	ls := rot.Mul4x1(center.Vec4(1))
	ls[0] = float32(math.Floor(float64(ls[0]/texel))) * texel
	ls[1] = float32(math.Floor(float64(ls[1]/texel))) * texel
	center = rot.Inv().Mul4x1(ls).Vec3()

	// Pull the eye back past the slice so casters between the sun and the slice land in the map.
	backoff := 2 * radius
	eye := center.Sub(dir.Mul(backoff))
	view := mgl32.LookAtV(eye, center, up)
	proj := camera.OrthoZO(-radius, radius, -radius, radius, 0, backoff+radius)
	return proj, view, radius
}
