package core

import "reflect"

// Traits is a map keyed by Go type. A GraphicsContext or render engine
// context uses it to carry backend-specific state without the generic code
// knowing the types.
type Traits struct {
	m map[reflect.Type]any
}

// PutTrait stores v under its static type T, replacing any previous value.
func PutTrait[T any](t *Traits, v T) {
	if t.m == nil {
		t.m = make(map[reflect.Type]any)
	}
	t.m[reflect.TypeFor[T]()] = v
}

// GetTrait returns the value stored under T.
func GetTrait[T any](t *Traits) (T, bool) {
	v, ok := t.m[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// EnsureTrait returns the value stored under T, creating it with mk first if
// absent.
func EnsureTrait[T any](t *Traits, mk func() T) T {
	if v, ok := GetTrait[T](t); ok {
		return v
	}
	v := mk()
	PutTrait(t, v)
	return v
}

// RemoveTrait deletes the value stored under T.
func RemoveTrait[T any](t *Traits) {
	delete(t.m, reflect.TypeFor[T]())
}

func (t *Traits) Len() int {
	return len(t.m)
}
