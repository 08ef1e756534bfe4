package graphics

import "github.com/go-gl/mathgl/mgl32"

// Viewport describes the backend's normalized device space: the x/y extents
// and the clip depth range. OpenGL uses (-1, 1, 1, -1, -1, 1), Vulkan
// (0, 0, 1, 1, 0, 1).
type Viewport struct {
	Left, Top, Right, Bottom float32
	ClipNear, ClipFar        float32
}

func NewViewport(left, top, right, bottom, clipNear, clipFar float32) Viewport {
	return Viewport{Left: left, Top: top, Right: right, Bottom: bottom, ClipNear: clipNear, ClipFar: clipFar}
}

func (v Viewport) Width() float32  { return v.Right - v.Left }
func (v Viewport) Height() float32 { return v.Bottom - v.Top }

// ZeroToOne reports whether the clip depth range is [0, 1].
func (v Viewport) ZeroToOne() bool {
	return v.ClipNear == 0
}

// ToViewportPosition maps a point in NDC to surface pixels. The result origin
// follows cs: bottom-left for RHS, top-left for LHS.
func ToViewportPosition(ndc mgl32.Vec3, surface mgl32.Vec2, cs CoordinateSystem) mgl32.Vec2 {
	x := (ndc.X() + 1) / 2 * surface.X()
	y := (ndc.Y() + 1) / 2
	if cs == CoordinateSystemLHS {
		y = 1 - y
	}
	return mgl32.Vec2{x, y * surface.Y()}
}

// FromViewportPosition is the inverse of ToViewportPosition for x/y.
func FromViewportPosition(pos, surface mgl32.Vec2, cs CoordinateSystem) mgl32.Vec2 {
	x := pos.X()/surface.X()*2 - 1
	y := pos.Y() / surface.Y()
	if cs == CoordinateSystemLHS {
		y = 1 - y
	}
	return mgl32.Vec2{x, y*2 - 1}
}

// Rect is an axis-aligned rectangle in surface pixels.
type Rect struct {
	Left, Top, Right, Bottom float32
}

func (r Rect) Width() float32  { return r.Right - r.Left }
func (r Rect) Height() float32 { return r.Bottom - r.Top }
