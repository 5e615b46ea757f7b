package light

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	direction    mgl32.Vec3
	color        mgl32.Vec3
	intensity    float32
	castsShadows bool
}

// Light defines the interface for the directional sun light that drives the
// cascaded shadow maps. A directional light has no position; every cascade
// looks along Direction.
type Light interface {
	// Direction returns the normalized direction the light travels
	// (from the light toward the scene).
	//
	// Returns:
	//   - mgl32.Vec3: normalized direction
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - mgl32.Vec3: color as (r, g, b)
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// CastsShadows reports whether the light renders shadow cascades.
	//
	// Returns:
	//   - bool: true if shadows are enabled for this light
	CastsShadows() bool

	// SetDirection sets the light direction. The value is normalized before storing;
	// a zero vector is ignored.
	//
	// Parameters:
	//   - dir: the new direction
	SetDirection(dir mgl32.Vec3)

	// SetCastsShadows enables or disables shadow casting.
	//
	// Parameters:
	//   - casts: true to cast shadows
	SetCastsShadows(casts bool)
}

var _ Light = &lightImpl{}

// NewLight creates a directional light pointing straight down with white color
// and unit intensity unless overridden by options.
//
// Parameters:
//   - options: functional options to configure the light
//
// Returns:
//   - Light: the newly created light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:           &sync.Mutex{},
		direction:    mgl32.Vec3{0, -1, 0},
		color:        mgl32.Vec3{1, 1, 1},
		intensity:    1,
		castsShadows: true,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) CastsShadows() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.castsShadows
}

func (l *lightImpl) SetDirection(dir mgl32.Vec3) {
	if dir.Len() == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.direction = dir.Normalize()
}

func (l *lightImpl) SetCastsShadows(casts bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.castsShadows = casts
}
