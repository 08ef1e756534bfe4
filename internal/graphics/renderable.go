package graphics

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"ark-render/internal/core"
)

// RenderableState is the per-frame state bit set of a renderable.
type RenderableState uint32

const (
	StateDirty RenderableState = 1 << iota
	StateVisible
	StateDisposed
	StateNew
)

func (s RenderableState) Has(bits RenderableState) bool {
	return s&bits == bits
}

// With sets or clears bits.
func (s RenderableState) With(bits RenderableState, on bool) RenderableState {
	if on {
		return s | bits
	}
	return s &^ bits
}

func (s RenderableState) String() string {
	var parts []string
	for _, b := range []struct {
		bit  RenderableState
		name string
	}{{StateDirty, "dirty"}, {StateVisible, "visible"}, {StateDisposed, "disposed"}, {StateNew, "new"}} {
		if s.Has(b.bit) {
			parts = append(parts, b.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Renderable is anything a layer can draw.
//
// The layer calls UpdateState once per tick, then Snapshot only when the
// returned state carries StateDirty; otherwise it reuses the previous
// snapshot. Snapshot must return the same record when called twice within
// one tick without intervening mutation.
type Renderable interface {
	UpdateState(req *RenderRequest) RenderableState
	Snapshot(req *RenderRequest, postTranslate mgl32.Vec3, state RenderableState) RenderableSnapshot
}

// RenderableSnapshot is the immutable record of one renderable for a frame.
type RenderableSnapshot struct {
	State     RenderableState
	Type      int32
	Position  mgl32.Vec3
	Size      mgl32.Vec3
	Transform TransformSnapshot
	Varyings  VaryingsSnapshot
}

// Model returns the full model matrix: translate to position, then apply the
// transform.
func (s *RenderableSnapshot) Model() mgl32.Mat4 {
	p := s.Position
	return mgl32.Translate3D(p[0], p[1], p[2]).Mul4(s.Transform.ToMatrix())
}

// RenderableWithUpdatable adds StateDirty whenever its updatable changes.
type RenderableWithUpdatable struct {
	Renderable
	updatable core.Updatable
}

func NewRenderableWithUpdatable(r Renderable, u core.Updatable) *RenderableWithUpdatable {
	return &RenderableWithUpdatable{Renderable: r, updatable: u}
}

func (r *RenderableWithUpdatable) UpdateState(req *RenderRequest) RenderableState {
	state := r.Renderable.UpdateState(req)
	if r.updatable.Update(req.Tick) {
		state |= StateDirty
	}
	return state
}

// RenderableWithDisposable reports StateDisposed as soon as its boolean
// turns true, without consulting the wrapped renderable.
type RenderableWithDisposable struct {
	Renderable
	disposed core.Boolean
}

func NewRenderableWithDisposable(r Renderable, disposed core.Boolean) *RenderableWithDisposable {
	return &RenderableWithDisposable{Renderable: r, disposed: disposed}
}

func (r *RenderableWithDisposable) UpdateState(req *RenderRequest) RenderableState {
	r.disposed.Update(req.Tick)
	if r.disposed.Val() {
		return StateDisposed
	}
	return r.Renderable.UpdateState(req)
}

// WrapOrder decides how LayerContext.Add nests the wrappers.
type WrapOrder uint8

const (
	// WrapDisposableOutside checks disposal before the updatable runs.
	WrapDisposableOutside WrapOrder = iota
	// WrapUpdatableOutside runs the updatable on every tick, including the
	// one that reports disposal.
	WrapUpdatableOutside
)

// Wrap nests r with the optional updatable and disposed boolean.
func (o WrapOrder) Wrap(r Renderable, updatable core.Updatable, disposed core.Boolean) Renderable {
	withU := func(r Renderable) Renderable {
		if updatable == nil {
			return r
		}
		return NewRenderableWithUpdatable(r, updatable)
	}
	withD := func(r Renderable) Renderable {
		if disposed == nil {
			return r
		}
		return NewRenderableWithDisposable(r, disposed)
	}
	if o == WrapUpdatableOutside {
		return withU(withD(r))
	}
	return withD(withU(r))
}
