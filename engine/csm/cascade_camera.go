package csm

import (
	"github.com/Carmen-Shannon/oxy-csm/common"
	"github.com/go-gl/mathgl/mgl32"
)

// CascadeCamera is the light-space camera for one shadow cascade.
// Instances are immutable; the CSM replaces the whole set when it rebuilds.
type CascadeCamera interface {
	// Index returns the cascade index, 0 being the nearest to the viewer.
	//
	// Returns:
	//   - int: the cascade index
	Index() int

	// ProjectionMatrix returns the orthographic projection (column-major, [0, 1] depth).
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewInverse returns the world-to-camera transform of the light view.
	//
	// Returns:
	//   - mgl32.Mat4: the world-to-camera matrix
	ViewInverse() mgl32.Mat4

	// ViewProjection returns ProjectionMatrix * ViewInverse.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjection() mgl32.Mat4

	// Frustum returns the culling planes of the cascade box.
	//
	// Returns:
	//   - common.Frustum: the six planes
	Frustum() common.Frustum

	// Near returns the view distance where this cascade starts.
	//
	// Returns:
	//   - float32: slice start along the main camera's view direction
	Near() float32

	// Far returns the view distance where this cascade ends.
	//
	// Returns:
	//   - float32: slice end along the main camera's view direction
	Far() float32
}

type cascadeCameraImpl struct {
	index       int
	projection  mgl32.Mat4
	viewInverse mgl32.Mat4
	viewProj    mgl32.Mat4
	frustum     common.Frustum
	near, far   float32
}

var _ CascadeCamera = &cascadeCameraImpl{}

// NewCascadeCamera builds a cascade camera from its matrices.
//
// Parameters:
//   - index: cascade index
//   - projection: orthographic projection
//   - viewInverse: world-to-camera transform
//   - near, far: view-distance range covered by the cascade
//
// Returns:
//   - CascadeCamera: the immutable camera
func NewCascadeCamera(index int, projection, viewInverse mgl32.Mat4, near, far float32) CascadeCamera {
	vp := projection.Mul4(viewInverse)
	return &cascadeCameraImpl{
		index:       index,
		projection:  projection,
		viewInverse: viewInverse,
		viewProj:    vp,
		frustum:     common.ExtractFrustumFromMatrix(vp),
		near:        near,
		far:         far,
	}
}

func (c *cascadeCameraImpl) Index() int                   { return c.index }
func (c *cascadeCameraImpl) ProjectionMatrix() mgl32.Mat4 { return c.projection }
func (c *cascadeCameraImpl) ViewInverse() mgl32.Mat4      { return c.viewInverse }
func (c *cascadeCameraImpl) ViewProjection() mgl32.Mat4   { return c.viewProj }
func (c *cascadeCameraImpl) Frustum() common.Frustum      { return c.frustum }
func (c *cascadeCameraImpl) Near() float32                { return c.near }
func (c *cascadeCameraImpl) Far() float32                 { return c.far }
