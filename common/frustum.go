package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the signed distance from the point to the plane.
// Positive values lie on the inside half-space.
//
// Parameters:
//   - p: the world-space point
//
// Returns:
//   - float32: the signed distance
func (pl Plane) SignedDistance(p mgl32.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix. Clip space depth is
// expected in the WebGPU [0, 1] range, so the near plane is row2 alone.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the column-major view-projection matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	row0 := viewProj.Row(0)
	row1 := viewProj.Row(1)
	row2 := viewProj.Row(2)
	row3 := viewProj.Row(3)

	f.Planes[FrustumLeft] = planeFromRow(row3.Add(row0))
	f.Planes[FrustumRight] = planeFromRow(row3.Sub(row0))
	f.Planes[FrustumBottom] = planeFromRow(row3.Add(row1))
	f.Planes[FrustumTop] = planeFromRow(row3.Sub(row1))
	f.Planes[FrustumNear] = planeFromRow(row2)
	f.Planes[FrustumFar] = planeFromRow(row3.Sub(row2))

	return f
}

// IntersectsSphere reports whether a bounding sphere is at least partially inside the frustum.
//
// Parameters:
//   - center: world-space sphere center
//   - radius: sphere radius
//
// Returns:
//   - bool: false only when the sphere lies fully outside one of the planes
func (f Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for i := range f.Planes {
		if f.Planes[i].SignedDistance(center) < -radius {
			return false
		}
	}
	return true
}

// IntersectsAABB reports whether an axis-aligned box is at least partially inside the frustum.
// Tests the positive vertex of the box against every plane.
//
// Parameters:
//   - minCorner, maxCorner: world-space box corners
//
// Returns:
//   - bool: false only when the box lies fully outside one of the planes
func (f Frustum) IntersectsAABB(minCorner, maxCorner mgl32.Vec3) bool {
	for i := range f.Planes {
		p := f.Planes[i]
		positive := maxCorner
		if p.Normal[0] < 0 {
			positive[0] = minCorner[0]
		}
		if p.Normal[1] < 0 {
			positive[1] = minCorner[1]
		}
		if p.Normal[2] < 0 {
			positive[2] = minCorner[2]
		}
		if p.SignedDistance(positive) < 0 {
			return false
		}
	}
	return true
}

// planeFromRow builds a normalized plane from a row combination of the clip matrix.
func planeFromRow(r mgl32.Vec4) Plane {
	p := Plane{
		Normal:   mgl32.Vec3{r[0], r[1], r[2]},
		Distance: r[3],
	}
	length := float32(math.Sqrt(float64(p.Normal.Dot(p.Normal))))
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
	return p
}
