package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type glVersion struct{ major, minor int }

func TestTraitsByType(t *testing.T) {
	var tr Traits
	_, ok := GetTrait[*glVersion](&tr)
	assert.False(t, ok)

	PutTrait(&tr, &glVersion{4, 1})
	v, ok := GetTrait[*glVersion](&tr)
	assert.True(t, ok)
	assert.Equal(t, 4, v.major)

	calls := 0
	same := EnsureTrait(&tr, func() *glVersion { calls++; return &glVersion{} })
	assert.Same(t, v, same)
	assert.Zero(t, calls)

	RemoveTrait[*glVersion](&tr)
	assert.Equal(t, 0, tr.Len())
}

type counterRegistry struct{ n int }

func TestGlobalConstructsOnce(t *testing.T) {
	ResetGlobals()
	defer ResetGlobals()

	calls := 0
	mk := func() *counterRegistry { calls++; return &counterRegistry{} }
	a := Global(mk)
	b := Global(mk)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)

	SetGlobal(&counterRegistry{n: 9})
	assert.Equal(t, 9, Global(mk).n)
}
