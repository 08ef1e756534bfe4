package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTimestampFirstUpdateReportsChange(t *testing.T) {
	ts := NewTimestamp()
	assert.True(t, ts.Update(1))
	assert.False(t, ts.Update(2))
}

func TestTimestampSameTickAgrees(t *testing.T) {
	ts := NewTimestamp()
	assert.True(t, ts.Update(3))
	// a second reader in the same tick must see the same answer
	assert.True(t, ts.Update(3))
	assert.False(t, ts.Update(4))
}

func TestTimestampOlderTickNeverDirty(t *testing.T) {
	v := NewSettable(mgl32.Vec3{})
	assert.True(t, v.Update(10))

	v.Set(mgl32.Vec3{1, 2, 3})
	if v.Update(5) {
		t.Fatalf("update with an older tick must not report a change")
	}
	// the change is still delivered to the next forward tick
	assert.True(t, v.Update(11))
	assert.False(t, v.Update(12))

	fn := NewVariableFunc(func() float32 { return 1 })
	assert.True(t, fn.Update(10))
	assert.True(t, fn.Update(10), "same tick, same answer")
	assert.False(t, fn.Update(5))
	assert.True(t, fn.Update(11))

	sv := NewSafeVar[float32](NewVariableFunc(func() float32 { return 2 }), 0)
	assert.True(t, sv.Update(10))
	assert.False(t, sv.Update(5))
	assert.True(t, sv.Update(11))
}

func TestSafeVarDefaultAndReset(t *testing.T) {
	sv := NewSafeVar[float32](nil, 1)
	assert.False(t, sv.IsDefined())
	assert.Equal(t, float32(1), sv.Val())
	assert.True(t, sv.Update(1))
	assert.False(t, sv.Update(2))

	sv.Reset(NewConst[float32](4))
	assert.True(t, sv.IsDefined())
	assert.Equal(t, float32(4), sv.Val())
	assert.True(t, sv.Update(3))
	assert.False(t, sv.Update(4))
}

func TestSafeVarFollowsWrappedVariable(t *testing.T) {
	s := NewSettable[int32](0)
	sv := NewSafeVar[int32](s, -1)
	sv.Update(1)

	s.Set(7)
	assert.True(t, sv.Update(2))
	assert.Equal(t, int32(7), sv.Val())
}

func TestUpdateAllDoesNotShortCircuit(t *testing.T) {
	a := NewSettable(1)
	b := NewSettable(2)
	assert.True(t, UpdateAll(1, a, nil, b))
	// both were consumed in tick 1
	assert.False(t, a.Update(2))
	assert.False(t, b.Update(2))
}
