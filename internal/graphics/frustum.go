package graphics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is a*x + b*y + c*z + d = 0 with a unit normal pointing inside.
type Plane struct {
	A, B, C, D float32
}

func (p Plane) Distance(v mgl32.Vec3) float32 {
	return p.A*v[0] + p.B*v[1] + p.C*v[2] + p.D
}

func (p Plane) normalize() Plane {
	l := math32.Sqrt(p.A*p.A + p.B*p.B + p.C*p.C)
	if l == 0 {
		return p
	}
	return Plane{p.A / l, p.B / l, p.C / l, p.D / l}
}

// Frustum holds the clip planes left, right, bottom, top, near, far.
type Frustum [6]Plane

// NewFrustum extracts the planes of a projection * view matrix. zeroToOne
// selects the near plane of a [0, 1] clip depth range.
func NewFrustum(vp mgl32.Mat4, zeroToOne bool) Frustum {
	row := func(i int) mgl32.Vec4 { return vp.Row(i) }
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	plane := func(v mgl32.Vec4) Plane { return Plane{v[0], v[1], v[2], v[3]}.normalize() }

	var f Frustum
	f[0] = plane(r3.Add(r0))
	f[1] = plane(r3.Sub(r0))
	f[2] = plane(r3.Add(r1))
	f[3] = plane(r3.Sub(r1))
	if zeroToOne {
		f[4] = plane(r2)
	} else {
		f[4] = plane(r3.Add(r2))
	}
	f[5] = plane(r3.Sub(r2))
	return f
}

func (f *Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for _, pl := range f {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB is conservative: boxes near a corner may pass although they
// are outside.
func (f *Frustum) IntersectsAABB(lo, hi mgl32.Vec3) bool {
	for _, pl := range f {
		// positive vertex along the plane normal
		p := hi
		if pl.A < 0 {
			p[0] = lo[0]
		}
		if pl.B < 0 {
			p[1] = lo[1]
		}
		if pl.C < 0 {
			p[2] = lo[2]
		}
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// Frustum returns the camera's clip volume in world space.
func (c *Camera) Frustum() Frustum {
	near, _ := c.delegate.DepthRange()
	return NewFrustum(c.VP(), near == 0)
}
