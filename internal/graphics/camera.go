package graphics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"ark-render/internal/core"
)

// CameraDelegate builds projection and view matrices for one handedness and
// clip depth range. The backend picks the delegate matching its coordinate
// system.
type CameraDelegate interface {
	Ortho(left, right, bottom, top, near, far float32) mgl32.Mat4
	Perspective(fov, aspect, near, far float32) mgl32.Mat4
	LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4
	// DepthRange is the NDC z range: (-1, 1) or (0, 1).
	DepthRange() (near, far float32)
}

// Camera holds view and projection matrices produced by its delegate.
type Camera struct {
	delegate   CameraDelegate
	cs         CoordinateSystem
	view       *core.Settable[mgl32.Mat4]
	projection *core.Settable[mgl32.Mat4]
}

func NewCamera(cs CoordinateSystem, delegate CameraDelegate) *Camera {
	return &Camera{
		delegate:   delegate,
		cs:         cs,
		view:       core.NewSettable(mgl32.Ident4()),
		projection: core.NewSettable(mgl32.Ident4()),
	}
}

// Ortho sets an orthographic projection. With LHS the y range is flipped so
// world +Y points down the screen, which suits pixel space layouts.
func (c *Camera) Ortho(left, right, bottom, top, near, far float32) {
	if c.cs == CoordinateSystemLHS {
		bottom, top = top, bottom
	}
	c.projection.Set(c.delegate.Ortho(left, right, bottom, top, near, far))
}

// Perspective sets a perspective projection; fov is in radians. Unlike
// Ortho it never flips y: world +Y stays up on the screen in both
// coordinate systems, only the forward axis follows the handedness.
func (c *Camera) Perspective(fov, aspect, near, far float32) {
	c.projection.Set(c.delegate.Perspective(fov, aspect, near, far))
}

func (c *Camera) LookAt(eye, center, up mgl32.Vec3) {
	c.view.Set(c.delegate.LookAt(eye, center, up))
}

func (c *Camera) View() core.Mat4       { return c.view }
func (c *Camera) Projection() core.Mat4 { return c.projection }

func (c *Camera) CoordinateSystem() CoordinateSystem {
	return c.cs
}

// VP returns projection * view.
func (c *Camera) VP() mgl32.Mat4 {
	return c.projection.Val().Mul4(c.view.Val())
}

func (c *Camera) Update(tick uint64) bool {
	return core.UpdateAll(tick, c.view, c.projection)
}

// Project maps a world position to NDC.
func (c *Camera) Project(world mgl32.Vec3) mgl32.Vec3 {
	clip := c.VP().Mul4x1(world.Vec4(1))
	if w := clip.W(); w != 0 && w != 1 {
		return clip.Vec3().Mul(1 / w)
	}
	return clip.Vec3()
}

// ToViewportPosition projects a world position to surface pixels in the
// camera's coordinate system.
func (c *Camera) ToViewportPosition(world mgl32.Vec3, surface mgl32.Vec2) mgl32.Vec2 {
	return ToViewportPosition(c.Project(world), surface, c.cs)
}

// ToWorldPosition unprojects a surface position at NDC depth z.
func (c *Camera) ToWorldPosition(pos, surface mgl32.Vec2, z float32) mgl32.Vec3 {
	ndc := FromViewportPosition(pos, surface, c.cs)
	v := c.VP().Inv().Mul4x1(mgl32.Vec4{ndc.X(), ndc.Y(), z, 1})
	if w := v.W(); w != 0 {
		return v.Vec3().Mul(1 / w)
	}
	return v.Vec3()
}

type cameraLHNO struct{}
type cameraRHNO struct{}
type cameraLHZO struct{}
type cameraRHZO struct{}

// Camera delegates for each handedness and depth range.
var (
	CameraDelegateLHNO CameraDelegate = cameraLHNO{}
	CameraDelegateRHNO CameraDelegate = cameraRHNO{}
	CameraDelegateLHZO CameraDelegate = cameraLHZO{}
	CameraDelegateRHZO CameraDelegate = cameraRHZO{}
)

// CameraDelegateFor picks the delegate for a coordinate system and depth range.
func CameraDelegateFor(cs CoordinateSystem, zeroToOne bool) CameraDelegate {
	switch {
	case cs == CoordinateSystemLHS && zeroToOne:
		return CameraDelegateLHZO
	case cs == CoordinateSystemLHS:
		return CameraDelegateLHNO
	case zeroToOne:
		return CameraDelegateRHZO
	}
	return CameraDelegateRHNO
}

func (cameraRHNO) Ortho(l, r, b, t, n, f float32) mgl32.Mat4 {
	return mgl32.Ortho(l, r, b, t, n, f)
}

func (cameraRHNO) Perspective(fov, aspect, n, f float32) mgl32.Mat4 {
	return mgl32.Perspective(fov, aspect, n, f)
}

func (cameraRHNO) LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(eye, center, up)
}

func (cameraRHNO) DepthRange() (float32, float32) { return -1, 1 }

func (cameraLHNO) Ortho(l, r, b, t, n, f float32) mgl32.Mat4 {
	m := mgl32.Ortho(l, r, b, t, n, f)
	m.Set(2, 2, 2/(f-n))
	return m
}

func (cameraLHNO) Perspective(fov, aspect, n, f float32) mgl32.Mat4 {
	m := perspectiveBase(fov, aspect)
	m.Set(2, 2, (f+n)/(f-n))
	m.Set(2, 3, -2*f*n/(f-n))
	m.Set(3, 2, 1)
	return m
}

func (cameraLHNO) LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	return lookAtLH(eye, center, up)
}

func (cameraLHNO) DepthRange() (float32, float32) { return -1, 1 }

func (cameraRHZO) Ortho(l, r, b, t, n, f float32) mgl32.Mat4 {
	m := mgl32.Ortho(l, r, b, t, n, f)
	m.Set(2, 2, -1/(f-n))
	m.Set(2, 3, -n/(f-n))
	return m
}

func (cameraRHZO) Perspective(fov, aspect, n, f float32) mgl32.Mat4 {
	m := perspectiveBase(fov, aspect)
	m.Set(2, 2, f/(n-f))
	m.Set(2, 3, -f*n/(f-n))
	m.Set(3, 2, -1)
	return m
}

func (cameraRHZO) LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(eye, center, up)
}

func (cameraRHZO) DepthRange() (float32, float32) { return 0, 1 }

func (cameraLHZO) Ortho(l, r, b, t, n, f float32) mgl32.Mat4 {
	m := mgl32.Ortho(l, r, b, t, n, f)
	m.Set(2, 2, 1/(f-n))
	m.Set(2, 3, -n/(f-n))
	return m
}

func (cameraLHZO) Perspective(fov, aspect, n, f float32) mgl32.Mat4 {
	m := perspectiveBase(fov, aspect)
	m.Set(2, 2, f/(f-n))
	m.Set(2, 3, -f*n/(f-n))
	m.Set(3, 2, 1)
	return m
}

func (cameraLHZO) LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	return lookAtLH(eye, center, up)
}

func (cameraLHZO) DepthRange() (float32, float32) { return 0, 1 }

func perspectiveBase(fov, aspect float32) mgl32.Mat4 {
	f := 1 / math32.Tan(fov/2)
	var m mgl32.Mat4
	m.Set(0, 0, f/aspect)
	m.Set(1, 1, f)
	return m
}

func lookAtLH(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	f := center.Sub(eye).Normalize()
	s := up.Cross(f).Normalize()
	u := f.Cross(s)
	m := mgl32.Ident4()
	m.SetRow(0, mgl32.Vec4{s.X(), s.Y(), s.Z(), -s.Dot(eye)})
	m.SetRow(1, mgl32.Vec4{u.X(), u.Y(), u.Z(), -u.Dot(eye)})
	m.SetRow(2, mgl32.Vec4{f.X(), f.Y(), f.Z(), -f.Dot(eye)})
	return m
}
