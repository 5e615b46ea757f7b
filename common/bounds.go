package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BoundingSphere is a sphere enclosing a mesh or group of instances.
type BoundingSphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Transform returns the sphere moved into the space described by m.
// The radius is scaled by the largest axis scale of m so non-uniform scales stay conservative.
//
// Parameters:
//   - m: the column-major transform to apply
//
// Returns:
//   - BoundingSphere: the transformed sphere
func (s BoundingSphere) Transform(m mgl32.Mat4) BoundingSphere {
	center := m.Mul4x1(s.Center.Vec4(1)).Vec3()
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	scale := float32(math.Max(float64(sx), math.Max(float64(sy), float64(sz))))
	return BoundingSphere{Center: center, Radius: s.Radius * scale}
}

// Union returns the smallest sphere enclosing both s and o.
//
// Parameters:
//   - o: the other sphere
//
// Returns:
//   - BoundingSphere: the enclosing sphere
func (s BoundingSphere) Union(o BoundingSphere) BoundingSphere {
	if s.Radius <= 0 {
		return o
	}
	if o.Radius <= 0 {
		return s
	}
	d := o.Center.Sub(s.Center)
	dist := d.Len()
	if dist+o.Radius <= s.Radius {
		return s
	}
	if dist+s.Radius <= o.Radius {
		return o
	}
	radius := (dist + s.Radius + o.Radius) * 0.5
	center := s.Center
	if dist > 0 {
		center = s.Center.Add(d.Mul((radius - s.Radius) / dist))
	}
	return BoundingSphere{Center: center, Radius: radius}
}

// SphereFromPositions computes a bounding sphere for a flat xyz position slice.
// The center is the midpoint of the AABB; the radius is the farthest vertex distance from it.
//
// Parameters:
//   - positions: tightly packed xyz triples
//
// Returns:
//   - BoundingSphere: the enclosing sphere, zero-valued for empty input
func SphereFromPositions(positions []float32) BoundingSphere {
	if len(positions) < 3 {
		return BoundingSphere{}
	}
	minC := mgl32.Vec3{positions[0], positions[1], positions[2]}
	maxC := minC
	for i := 3; i+2 < len(positions); i += 3 {
		for a := 0; a < 3; a++ {
			v := positions[i+a]
			if v < minC[a] {
				minC[a] = v
			}
			if v > maxC[a] {
				maxC[a] = v
			}
		}
	}
	center := minC.Add(maxC).Mul(0.5)
	var r2 float32
	for i := 0; i+2 < len(positions); i += 3 {
		d := mgl32.Vec3{positions[i], positions[i+1], positions[i+2]}.Sub(center)
		if l := d.Dot(d); l > r2 {
			r2 = l
		}
	}
	return BoundingSphere{Center: center, Radius: float32(math.Sqrt(float64(r2)))}
}
