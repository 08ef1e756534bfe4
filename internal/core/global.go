package core

import (
	"reflect"
	"sync"
)

// Process-wide singletons live here rather than in package variables so
// there is one place that owns them and tests can reset them.
var globals = struct {
	sync.Mutex
	m map[reflect.Type]any
}{m: make(map[reflect.Type]any)}

// Global returns the singleton of type T, constructing it with mk on first
// access.
func Global[T any](mk func() T) T {
	key := reflect.TypeFor[T]()
	globals.Lock()
	defer globals.Unlock()
	if v, ok := globals.m[key]; ok {
		return v.(T)
	}
	v := mk()
	globals.m[key] = v
	return v
}

// SetGlobal replaces the singleton of type T.
func SetGlobal[T any](v T) {
	globals.Lock()
	globals.m[reflect.TypeFor[T]()] = v
	globals.Unlock()
}

// ResetGlobals drops every singleton.
func ResetGlobals() {
	globals.Lock()
	clear(globals.m)
	globals.Unlock()
}
