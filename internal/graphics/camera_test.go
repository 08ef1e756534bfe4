package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCoordinateSystemYAxisConsistency(t *testing.T) {
	surface := mgl32.Vec2{100, 100}
	world := mgl32.Vec3{10, 20, 0}

	rhs := NewCamera(CoordinateSystemRHS, CameraDelegateFor(CoordinateSystemRHS, false))
	rhs.Ortho(0, 100, 0, 100, -1, 1)
	lhs := NewCamera(CoordinateSystemLHS, CameraDelegateFor(CoordinateSystemLHS, true))
	lhs.Ortho(0, 100, 0, 100, -1, 1)

	// the projections disagree on the sign of NDC y...
	assert.Less(t, rhs.Project(world).Y(), float32(0))
	assert.Greater(t, lhs.Project(world).Y(), float32(0))

	// ...and each viewport conversion follows its own projection
	for _, cam := range []*Camera{rhs, lhs} {
		got := cam.ToViewportPosition(world, surface)
		assert.InDelta(t, 10, got.X(), 1e-4, cam.CoordinateSystem().String())
		assert.InDelta(t, 20, got.Y(), 1e-4, cam.CoordinateSystem().String())

		back := cam.ToWorldPosition(got, surface, 0)
		assert.InDelta(t, world.X(), back.X(), 1e-3)
		assert.InDelta(t, world.Y(), back.Y(), 1e-3)
	}
}

func TestPerspectiveKeepsYUpInBothSystems(t *testing.T) {
	fov := mgl32.DegToRad(60)
	rhs := NewCamera(CoordinateSystemRHS, CameraDelegateFor(CoordinateSystemRHS, false))
	rhs.Perspective(fov, 1, 0.1, 100)
	lhs := NewCamera(CoordinateSystemLHS, CameraDelegateFor(CoordinateSystemLHS, true))
	lhs.Perspective(fov, 1, 0.1, 100)

	// a point above the view axis lands in the upper half for both
	assert.Greater(t, rhs.Project(mgl32.Vec3{0, 1, -5}).Y(), float32(0))
	assert.Greater(t, lhs.Project(mgl32.Vec3{0, 1, 5}).Y(), float32(0))

	// while the LHS orthographic projection flips it
	lhs.Ortho(-1, 1, -1, 1, -1, 1)
	assert.Less(t, lhs.Project(mgl32.Vec3{0, 0.5, 0}).Y(), float32(0))
}

func TestPerspectiveDepthRanges(t *testing.T) {
	fov := mgl32.DegToRad(90)
	cases := []struct {
		delegate  CameraDelegate
		forward   float32
		near, far float32
	}{
		{CameraDelegateRHNO, -1, -1, 1},
		{CameraDelegateRHZO, -1, 0, 1},
		{CameraDelegateLHNO, 1, -1, 1},
		{CameraDelegateLHZO, 1, 0, 1},
	}
	for _, c := range cases {
		cam := NewCamera(CoordinateSystemRHS, c.delegate)
		cam.Perspective(fov, 1, 1, 10)
		n, f := c.delegate.DepthRange()
		assert.Equal(t, c.near, n)
		assert.Equal(t, c.far, f)
		assert.InDelta(t, c.near, cam.Project(mgl32.Vec3{0, 0, c.forward * 1}).Z(), 1e-5)
		assert.InDelta(t, c.far, cam.Project(mgl32.Vec3{0, 0, c.forward * 10}).Z(), 1e-5)
	}
}

func TestLookAtHandedness(t *testing.T) {
	up := mgl32.Vec3{0, 1, 0}
	rh := CameraDelegateRHNO.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, up)
	lh := CameraDelegateLHZO.LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, up)
	assert.True(t, rh.ApproxEqual(mgl32.Ident4()))
	assert.True(t, lh.ApproxEqual(mgl32.Ident4()))
}

func TestOrthoDepthRange(t *testing.T) {
	zo := NewCamera(CoordinateSystemRHS, CameraDelegateRHZO)
	zo.Ortho(-1, 1, -1, 1, 0, 10)
	assert.InDelta(t, 0, zo.Project(mgl32.Vec3{0, 0, 0}).Z(), 1e-5)
	assert.InDelta(t, 1, zo.Project(mgl32.Vec3{0, 0, -10}).Z(), 1e-5)

	lzo := NewCamera(CoordinateSystemLHS, CameraDelegateLHZO)
	lzo.Ortho(-1, 1, -1, 1, 0, 10)
	assert.InDelta(t, 1, lzo.Project(mgl32.Vec3{0, 0, 10}).Z(), 1e-5)
}

func TestCoordinateSystemText(t *testing.T) {
	var cs CoordinateSystem
	assert.NoError(t, cs.UnmarshalText([]byte("LHS")))
	assert.Equal(t, CoordinateSystemLHS, cs)
	assert.Equal(t, CoordinateSystemRHS, CoordinateSystemDefault.Resolve(CoordinateSystemRHS))
	assert.Error(t, cs.UnmarshalText([]byte("diagonal")))
	assert.Equal(t, float32(-1), CoordinateSystemLHS.UpDirection())
}
