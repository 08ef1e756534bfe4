package graphics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ark-render/internal/check"
	"ark-render/internal/core"
)

func assertVec3Near(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d of %v vs %v", i, want, got)
	}
}

func TestTransformTRSExample(t *testing.T) {
	tr := NewTransform3D(
		NewRotationZ(mgl32.DegToRad(45)),
		core.NewConst(mgl32.Vec3{2, 2, 2}),
		core.NewConst(mgl32.Vec3{1, 0, 0}),
	)
	require.Equal(t, TransformKindTRS, tr.Kind())

	s := tr.Snapshot()
	assertVec3Near(t, mgl32.Vec3{1, 0, 0}, s.Transform(mgl32.Vec3{0, 0, 0}))

	c := float32(2 * math.Cos(math.Pi/4))
	sn := float32(2 * math.Sin(math.Pi/4))
	want := mgl32.Vec3{1 + c, sn, 0}
	assertVec3Near(t, want, s.Transform(mgl32.Vec3{1, 0, 0}))

	// the matrix form agrees with the point form
	m := s.ToMatrix()
	assertVec3Near(t, want, m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3())
}

func TestTransform2DMatchesTransform3D(t *testing.T) {
	rot := NewRotationZ(mgl32.DegToRad(30))
	scale := core.NewConst(mgl32.Vec3{2, 3, 1})
	trans := core.NewConst(mgl32.Vec3{4, 5, 0})

	s2 := NewTransform2D(rot, scale, trans).Snapshot()
	s3 := NewTransform3D(rot, scale, trans).Snapshot()
	p := mgl32.Vec3{1, 2, 0}
	assertVec3Near(t, s3.Transform(p), s2.Transform(p))
	assertVec3Near(t, s3.ToMatrix().Mul4x1(p.Vec4(1)).Vec3(), s2.ToMatrix().Mul4x1(p.Vec4(1)).Vec3())
}

func TestTransformDelegateSelection(t *testing.T) {
	tr := NewTransform(TransformTypeLinear3D)
	assert.Equal(t, TransformKindNone, tr.Kind())

	tr.SetTranslation(core.NewConst(mgl32.Vec3{1, 2, 3}))
	assert.Equal(t, TransformKindTS, tr.Kind())
	s := tr.Snapshot()
	assertVec3Near(t, mgl32.Vec3{2, 3, 4}, s.Transform(mgl32.Vec3{1, 1, 1}))

	tr.SetRotation(NewRotationZ(0))
	assert.Equal(t, TransformKindTRS, tr.Kind())

	tr.Reset(core.NewConst(mgl32.Translate3D(0, 0, 7)))
	assert.Equal(t, TransformKindDelegated, tr.Kind())
	s = tr.Snapshot()
	assertVec3Near(t, mgl32.Vec3{1, 1, 8}, s.Transform(mgl32.Vec3{1, 1, 1}))

	tr.Reset(nil)
	assert.Equal(t, TransformTypeNone, tr.Type())
	assert.Equal(t, TransformKindNone, tr.Kind())
}

func TestTransformSnapshotZeroValueIsIdentity(t *testing.T) {
	var s TransformSnapshot
	assert.Equal(t, mgl32.Ident4(), s.ToMatrix())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, s.Transform(mgl32.Vec3{1, 2, 3}))
}

func TestTransformSnapshotTagMismatch(t *testing.T) {
	if !check.Debug {
		t.Skip("tag checks are compiled out in release builds")
	}
	ts := NewTransform3D(nil, core.NewConst(mgl32.Vec3{2, 2, 2}), nil).Snapshot()
	require.Panics(t, func() {
		transformTRS3D{}.transform(&ts, mgl32.Vec3{1, 0, 0})
	})
	require.NotPanics(t, func() {
		transformTS3D{}.transform(&ts, mgl32.Vec3{1, 0, 0})
	})
}

func TestTransformUpdateReportsComponentChanges(t *testing.T) {
	theta := core.NewSettable[float32](0)
	tr := NewTransform3D(NewRotation(theta, mgl32.Vec3{0, 0, 1}), nil, nil)
	assert.True(t, tr.Update(1))
	assert.False(t, tr.Update(2))

	theta.Set(1)
	assert.True(t, tr.Update(3))
	assert.False(t, tr.Update(2), "older tick must not report a change")
}

func TestAnimatedRotationIgnoresOlderTicks(t *testing.T) {
	theta := core.NewVariableFunc(func() float32 { return 0.5 })
	rotation := NewRotation(theta, mgl32.Vec3{0, 0, 1})
	assert.True(t, rotation.Update(10))
	assert.False(t, rotation.Update(5))

	tr := NewTransform3D(NewRotation(theta, mgl32.Vec3{0, 0, 1}), nil, nil)
	assert.True(t, tr.Update(10))
	assert.False(t, tr.Update(5))
	assert.True(t, tr.Update(11), "animated rotations change on every new tick")

	v := NewVaryings()
	v.Set("tint", core.NewVariableFunc(func() mgl32.Vec4 { return mgl32.Vec4{1, 1, 1, 1} }))
	assert.True(t, v.Update(10))
	assert.False(t, v.Update(5))
}

func TestTransformSnapshotIsFrozen(t *testing.T) {
	pos := core.NewSettable(mgl32.Vec3{1, 0, 0})
	tr := NewTransform3D(nil, nil, pos)
	s := tr.Snapshot()
	pos.Set(mgl32.Vec3{9, 9, 9})
	assertVec3Near(t, mgl32.Vec3{1, 0, 0}, s.Transform(mgl32.Vec3{}))
}

func BenchmarkTransformSnapshot(b *testing.B) {
	tr := NewTransform3D(NewRotationZ(1), core.NewConst(mgl32.Vec3{2, 2, 2}), core.NewConst(mgl32.Vec3{1, 0, 0}))
	p := mgl32.Vec3{1, 2, 3}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := tr.Snapshot()
		p = s.Transform(p)
	}
}
