package graphics

import (
	"github.com/go-gl/mathgl/mgl32"

	"ark-render/internal/core"
)

// Varyings are named per-object shader inputs, for example a tint color.
type Varyings struct {
	names  []string
	values []core.Vec4
	ts     core.Timestamp
}

func NewVaryings() *Varyings {
	return &Varyings{ts: core.NewTimestamp()}
}

// Set binds name to v, keeping the original insertion position when the name
// already exists.
func (v *Varyings) Set(name string, value core.Vec4) {
	for i, n := range v.names {
		if n == name {
			v.values[i] = value
			v.ts.MarkDirty()
			return
		}
	}
	v.names = append(v.names, name)
	v.values = append(v.values, value)
	v.ts.MarkDirty()
}

func (v *Varyings) Update(tick uint64) bool {
	if tick < v.ts.Tick() {
		return false
	}
	dirty := v.ts.Update(tick)
	for _, val := range v.values {
		if val.Update(tick) {
			dirty = true
		}
	}
	return dirty
}

func (v *Varyings) Snapshot() VaryingsSnapshot {
	if v == nil || len(v.names) == 0 {
		return nil
	}
	s := make(VaryingsSnapshot, len(v.names))
	for i, n := range v.names {
		s[i] = VaryingValue{Name: n, Value: v.values[i].Val()}
	}
	return s
}

type VaryingValue struct {
	Name  string
	Value mgl32.Vec4
}

// VaryingsSnapshot is the frozen, ordered list of varying values.
type VaryingsSnapshot []VaryingValue

func (s VaryingsSnapshot) Lookup(name string) (mgl32.Vec4, bool) {
	for _, v := range s {
		if v.Name == name {
			return v.Value, true
		}
	}
	return mgl32.Vec4{}, false
}

// Apply returns s with every value from parent that s does not override
// appended after its own values.
func (s VaryingsSnapshot) Apply(parent VaryingsSnapshot) VaryingsSnapshot {
	if len(parent) == 0 {
		return s
	}
	out := make(VaryingsSnapshot, len(s), len(s)+len(parent))
	copy(out, s)
	for _, p := range parent {
		if _, ok := s.Lookup(p.Name); !ok {
			out = append(out, p)
		}
	}
	return out
}
