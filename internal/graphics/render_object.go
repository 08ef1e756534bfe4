package graphics

import (
	"github.com/go-gl/mathgl/mgl32"

	"ark-render/internal/core"
)

// TypeDiscarded is the render object type that removes it from its layer.
const TypeDiscarded int32 = -1

// RenderObject is the standard Renderable: a model type placed at a
// position, with optional size, transform and varyings.
type RenderObject struct {
	typ       core.SafeVar[int32]
	position  core.SafeVar[mgl32.Vec3]
	size      core.SafeVar[mgl32.Vec3]
	visible   core.SafeVar[bool]
	disposed  core.SafeVar[bool]
	transform *Transform
	varyings  *Varyings
	ts        core.Timestamp
}

func NewRenderObject(typ int32, position core.Vec3, transform *Transform) *RenderObject {
	return &RenderObject{
		typ:       core.NewSafeVar[int32](core.NewConst(typ), 0),
		position:  core.NewSafeVar(position, mgl32.Vec3{}),
		size:      core.NewSafeVar[mgl32.Vec3](nil, mgl32.Vec3{}),
		visible:   core.NewSafeVar[bool](nil, true),
		disposed:  core.NewSafeVar[bool](nil, false),
		transform: transform,
		ts:        core.NewTimestamp(),
	}
}

func (o *RenderObject) Type() int32 {
	return o.typ.Val()
}

func (o *RenderObject) SetType(typ core.Integer) {
	o.typ.Reset(typ)
}

func (o *RenderObject) Position() mgl32.Vec3 {
	return o.position.Val()
}

func (o *RenderObject) SetPosition(position core.Vec3) {
	o.position.Reset(position)
}

func (o *RenderObject) Size() mgl32.Vec3 {
	return o.size.Val()
}

func (o *RenderObject) SetSize(size core.Vec3) {
	o.size.Reset(size)
}

func (o *RenderObject) Transform() *Transform {
	return o.transform
}

func (o *RenderObject) SetTransform(t *Transform) {
	o.transform = t
	o.ts.MarkDirty()
}

func (o *RenderObject) Varyings() *Varyings {
	return o.varyings
}

func (o *RenderObject) SetVaryings(v *Varyings) {
	o.varyings = v
	o.ts.MarkDirty()
}

func (o *RenderObject) IsVisible() bool {
	return o.visible.Val()
}

func (o *RenderObject) SetVisible(visible core.Boolean) {
	o.visible.Reset(visible)
}

func (o *RenderObject) Show() { o.visible.Reset(nil) }
func (o *RenderObject) Hide() { o.visible.Reset(core.NewConst(false)) }

func (o *RenderObject) IsDisposed() bool {
	return o.disposed.Val()
}

// SetDisposed binds disposal to a variable, for example an owner's lifetime.
func (o *RenderObject) SetDisposed(disposed core.Boolean) {
	o.disposed.Reset(disposed)
}

// Dispose removes the object from its layer on the next snapshot. GPU
// resources it references are not released.
func (o *RenderObject) Dispose() {
	o.disposed.Reset(core.NewConst(true))
}

func (o *RenderObject) UpdateState(req *RenderRequest) RenderableState {
	tick := req.Tick
	dirty := o.ts.Update(tick)
	dirty = o.disposed.Update(tick) || dirty
	if o.disposed.Val() {
		return StateDisposed
	}

	dirty = core.UpdateAll(tick, &o.visible, &o.typ, &o.position, &o.size) || dirty
	if o.transform != nil && o.transform.Update(tick) {
		dirty = true
	}
	if o.varyings != nil && o.varyings.Update(tick) {
		dirty = true
	}
	if o.typ.Val() == TypeDiscarded {
		return StateDisposed
	}

	var state RenderableState
	return state.With(StateDirty, dirty).With(StateVisible, o.visible.Val())
}

func (o *RenderObject) Snapshot(req *RenderRequest, postTranslate mgl32.Vec3, state RenderableState) RenderableSnapshot {
	s := RenderableSnapshot{
		State:    state,
		Type:     o.typ.Val(),
		Position: o.position.Val().Add(postTranslate),
		Size:     o.size.Val(),
		Varyings: o.varyings.Snapshot(),
	}
	if o.transform != nil {
		s.Transform = o.transform.Snapshot()
	}
	return s
}

// Components a RenderObject picks up in Wire.
type (
	Translation struct{ Position core.Vec3 }
	Visibility  struct{ Visible core.Boolean }
	Disposal    struct{ Disposed core.Boolean }
	Dimensions  struct{ Size core.Vec3 }
)

// Wire resolves the object's optional inputs from components collected in
// an earlier pass. Components that are absent leave the current value alone.
func (o *RenderObject) Wire(components *core.Traits) {
	if t, ok := core.GetTrait[Translation](components); ok {
		o.SetPosition(t.Position)
	}
	if d, ok := core.GetTrait[Dimensions](components); ok {
		o.SetSize(d.Size)
	}
	if v, ok := core.GetTrait[Visibility](components); ok {
		o.SetVisible(v.Visible)
	}
	if d, ok := core.GetTrait[Disposal](components); ok {
		o.SetDisposed(d.Disposed)
	}
	if t, ok := core.GetTrait[*Transform](components); ok {
		o.SetTransform(t)
	}
	if v, ok := core.GetTrait[*Varyings](components); ok {
		o.SetVaryings(v)
	}
}
