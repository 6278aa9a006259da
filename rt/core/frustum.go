package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis aligned box in world space.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABBFromSphere returns the box enclosing a sphere.
func NewAABBFromSphere(center mgl32.Vec3, radius float32) AABB {
	r := mgl32.Vec3{radius, radius, radius}
	return AABB{Min: center.Sub(r), Max: center.Add(r)}
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Union grows b to also enclose o.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{min(b.Min.X(), o.Min.X()), min(b.Min.Y(), o.Min.Y()), min(b.Min.Z(), o.Min.Z())},
		Max: mgl32.Vec3{max(b.Max.X(), o.Max.X()), max(b.Max.Y(), o.Max.Y()), max(b.Max.Z(), o.Max.Z())},
	}
}

// IntersectsSphere uses the closest point on the box to the sphere center.
func (b AABB) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	var d2 float32
	for i := 0; i < 3; i++ {
		c := center[i]
		if c < b.Min[i] {
			d := b.Min[i] - c
			d2 += d * d
		} else if c > b.Max[i] {
			d := c - b.Max[i]
			d2 += d * d
		}
	}
	return d2 <= radius*radius
}

// Frustum holds 6 planes in Ax+By+Cz+D=0 form with normals pointing inside.
// Order: Left, Right, Bottom, Top, Near, Far.
type Frustum [6]mgl32.Vec4

// ExtractFrustum extracts the planes of a view-projection matrix (Gribb/Hartmann).
func ExtractFrustum(vp mgl32.Mat4) Frustum {
	var planes Frustum

	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(r, 0), vp.At(r, 1), vp.At(r, 2), vp.At(r, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes[0] = r3.Add(r0) // left
	planes[1] = r3.Sub(r0) // right
	planes[2] = r3.Add(r1) // bottom
	planes[3] = r3.Sub(r1) // top
	planes[4] = r3.Add(r2) // near, GL style -1..1 depth
	planes[5] = r3.Sub(r2) // far

	for i := range planes {
		p := planes[i]
		length := float32(math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])))
		if length > 0 {
			planes[i] = p.Mul(1.0 / length)
		}
	}
	return planes
}

// ContainsAABB reports whether any part of the box is inside the frustum.
// For each plane the box corner furthest along the normal is tested; if even
// that corner is behind the plane the whole box is outside.
func (f Frustum) ContainsAABB(box AABB) bool {
	for i := 0; i < 6; i++ {
		plane := f[i]

		var p mgl32.Vec3
		for axis := 0; axis < 3; axis++ {
			if plane[axis] > 0 {
				p[axis] = box.Max[axis]
			} else {
				p[axis] = box.Min[axis]
			}
		}

		dist := plane[0]*p[0] + plane[1]*p[1] + plane[2]*p[2] + plane[3]
		if dist < 0 {
			return false
		}
	}
	return true
}

// InfiniteFrustum returns planes that accept every box. Useful for views
// without a projection such as tests or full-scene captures.
func InfiniteFrustum() Frustum {
	var f Frustum
	for i := range f {
		f[i] = mgl32.Vec4{0, 0, 0, 1}
	}
	return f
}
