package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraController owns the positional state of a camera. The camera reads
// Position and Target on every Update and derives its matrices from them.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3
}

// OrbitController is a CameraController that circles a target using spherical
// coordinates (radius, azimuth, elevation).
type OrbitController interface {
	CameraController

	// SetTarget moves the pivot point and recomputes position.
	//
	// Parameters:
	//   - target: world-space pivot
	SetTarget(target mgl32.Vec3)

	// Orbit rotates around the pivot by the given angle deltas.
	// Elevation is clamped just short of the poles.
	//
	// Parameters:
	//   - dAzimuth: horizontal delta in radians
	//   - dElevation: vertical delta in radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom moves toward the pivot by delta, clamped to [minRadius, maxRadius].
	//
	// Parameters:
	//   - delta: positive values move closer
	Zoom(delta float32)

	// Radius returns the current distance from the pivot.
	//
	// Returns:
	//   - float32: orbit radius
	Radius() float32
}

type staticController struct {
	position mgl32.Vec3
	target   mgl32.Vec3
}

var _ CameraController = &staticController{}

// NewStaticController creates a controller with a fixed eye and target.
//
// Parameters:
//   - position: world-space eye position
//   - target: world-space look-at point
//
// Returns:
//   - CameraController: the fixed controller
func NewStaticController(position, target mgl32.Vec3) CameraController {
	return &staticController{position: position, target: target}
}

func (s *staticController) Position() mgl32.Vec3 { return s.position }
func (s *staticController) Target() mgl32.Vec3   { return s.target }

const maxElevation = math.Pi/2 - 0.01

type orbitController struct {
	mu *sync.Mutex

	target    mgl32.Vec3
	radius    float32
	minRadius float32
	maxRadius float32
	azimuth   float32
	elevation float32
}

var _ OrbitController = &orbitController{}

// NewOrbitController creates an orbit controller around target.
//
// Parameters:
//   - target: world-space pivot
//   - radius: initial distance from the pivot
//   - azimuth: initial horizontal angle in radians
//   - elevation: initial vertical angle in radians
//
// Returns:
//   - OrbitController: the orbit controller
func NewOrbitController(target mgl32.Vec3, radius, azimuth, elevation float32) OrbitController {
	o := &orbitController{
		mu:        &sync.Mutex{},
		target:    target,
		radius:    radius,
		minRadius: 1,
		maxRadius: 20000,
		azimuth:   azimuth,
	}
	o.elevation = mgl32.Clamp(elevation, -maxElevation, maxElevation)
	return o
}

func (o *orbitController) Position() mgl32.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	ce := float32(math.Cos(float64(o.elevation)))
	offset := mgl32.Vec3{
		o.radius * ce * float32(math.Sin(float64(o.azimuth))),
		o.radius * float32(math.Sin(float64(o.elevation))),
		o.radius * ce * float32(math.Cos(float64(o.azimuth))),
	}
	return o.target.Add(offset)
}

func (o *orbitController) Target() mgl32.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.target
}

func (o *orbitController) SetTarget(target mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.target = target
}

func (o *orbitController) Orbit(dAzimuth, dElevation float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.azimuth += dAzimuth
	o.elevation = mgl32.Clamp(o.elevation+dElevation, -maxElevation, maxElevation)
}

func (o *orbitController) Zoom(delta float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.radius = mgl32.Clamp(o.radius-delta, o.minRadius, o.maxRadius)
}

func (o *orbitController) Radius() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.radius
}
