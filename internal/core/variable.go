package core

import "github.com/go-gl/mathgl/mgl32"

// Updatable is anything that can report a change for a tick.
type Updatable interface {
	Update(tick uint64) bool
}

// Variable is a value that may change between ticks.
type Variable[T any] interface {
	Updatable
	Val() T
}

type (
	Boolean = Variable[bool]
	Integer = Variable[int32]
	Numeric = Variable[float32]
	Vec3    = Variable[mgl32.Vec3]
	Vec4    = Variable[mgl32.Vec4]
	Quat    = Variable[mgl32.Quat]
	Mat4    = Variable[mgl32.Mat4]
)

// UpdateAll updates every non-nil updatable and reports whether any changed.
// It never short-circuits, so each one observes the tick.
func UpdateAll(tick uint64, us ...Updatable) bool {
	dirty := false
	for _, u := range us {
		if u != nil && u.Update(tick) {
			dirty = true
		}
	}
	return dirty
}

// Const is a Variable that never changes.
type Const[T any] struct {
	v T
}

func NewConst[T any](v T) *Const[T] {
	return &Const[T]{v: v}
}

func (c *Const[T]) Val() T             { return c.v }
func (c *Const[T]) Update(uint64) bool { return false }

// Settable is a Variable owned by one writer. Set marks it dirty for the next
// tick.
type Settable[T any] struct {
	v  T
	ts Timestamp
}

func NewSettable[T any](v T) *Settable[T] {
	return &Settable[T]{v: v, ts: NewTimestamp()}
}

func (s *Settable[T]) Val() T {
	return s.v
}

func (s *Settable[T]) Set(v T) {
	s.v = v
	s.ts.MarkDirty()
}

func (s *Settable[T]) Update(tick uint64) bool {
	return s.ts.Update(tick)
}

// VariableFunc adapts a function to a Variable that is considered changed on
// every new tick. Older ticks report no change.
type VariableFunc[T any] struct {
	fn   func() T
	tick uint64
}

func NewVariableFunc[T any](fn func() T) *VariableFunc[T] {
	return &VariableFunc[T]{fn: fn}
}

func (f *VariableFunc[T]) Val() T { return f.fn() }

func (f *VariableFunc[T]) Update(tick uint64) bool {
	if tick < f.tick {
		return false
	}
	f.tick = tick
	return true
}
