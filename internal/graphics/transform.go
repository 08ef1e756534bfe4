package graphics

import (
	"github.com/go-gl/mathgl/mgl32"

	"ark-render/internal/core"
)

// TransformType selects how a Transform interprets its components.
type TransformType uint8

const (
	TransformTypeNone TransformType = iota
	TransformTypeLinear2D
	TransformTypeLinear3D
	TransformTypeDelegated
)

// TransformKind is the delegate currently serving a Transform.
type TransformKind uint8

const (
	TransformKindNone TransformKind = iota
	// TransformKindTS translates and scales.
	TransformKindTS
	// TransformKindTRS also rotates.
	TransformKindTRS
	// TransformKindDelegated uses a caller supplied matrix.
	TransformKindDelegated
)

// Transform is the mutable, scene side transform of a renderable. Any
// change to its components swaps the delegate and marks it dirty; the render
// side only ever sees the frozen TransformSnapshot.
type Transform struct {
	typ         TransformType
	rotation    core.SafeVar[mgl32.Quat]
	scale       core.SafeVar[mgl32.Vec3]
	translation core.SafeVar[mgl32.Vec3]
	matrix      core.SafeVar[mgl32.Mat4]
	delegate    transformDelegate
	ts          core.Timestamp
}

func NewTransform(typ TransformType) *Transform {
	t := &Transform{
		typ:         typ,
		rotation:    core.NewSafeVar[mgl32.Quat](nil, mgl32.QuatIdent()),
		scale:       core.NewSafeVar[mgl32.Vec3](nil, mgl32.Vec3{1, 1, 1}),
		translation: core.NewSafeVar[mgl32.Vec3](nil, mgl32.Vec3{}),
		matrix:      core.NewSafeVar[mgl32.Mat4](nil, mgl32.Ident4()),
		ts:          core.NewTimestamp(),
	}
	t.updateDelegate()
	return t
}

// NewTransform3D builds a 3D transform; nil components fall back to their
// defaults.
func NewTransform3D(rotation core.Quat, scale, translation core.Vec3) *Transform {
	t := NewTransform(TransformTypeLinear3D)
	t.rotation.Reset(rotation)
	t.scale.Reset(scale)
	t.translation.Reset(translation)
	t.updateDelegate()
	return t
}

func NewTransform2D(rotation core.Quat, scale, translation core.Vec3) *Transform {
	t := NewTransform3D(rotation, scale, translation)
	t.typ = TransformTypeLinear2D
	t.updateDelegate()
	return t
}

// NewMatrixTransform wraps a matrix variable.
func NewMatrixTransform(matrix core.Mat4) *Transform {
	t := NewTransform(TransformTypeDelegated)
	t.Reset(matrix)
	return t
}

func (t *Transform) Type() TransformType {
	return t.typ
}

func (t *Transform) Kind() TransformKind {
	return t.delegate.kind()
}

func (t *Transform) SetRotation(rotation core.Quat) {
	t.rotation.Reset(rotation)
	t.updateDelegate()
}

func (t *Transform) SetScale(scale core.Vec3) {
	t.scale.Reset(scale)
	t.updateDelegate()
}

func (t *Transform) SetTranslation(translation core.Vec3) {
	t.translation.Reset(translation)
	t.updateDelegate()
}

// Reset switches the transform to a delegated matrix. A nil matrix restores
// TransformTypeNone.
func (t *Transform) Reset(matrix core.Mat4) {
	t.matrix.Reset(matrix)
	if matrix == nil {
		t.typ = TransformTypeNone
	} else {
		t.typ = TransformTypeDelegated
	}
	t.updateDelegate()
}

func (t *Transform) Rotation() mgl32.Quat    { return t.rotation.Val() }
func (t *Transform) Scale() mgl32.Vec3       { return t.scale.Val() }
func (t *Transform) Translation() mgl32.Vec3 { return t.translation.Val() }

// Update reports whether the transform or any component changed since the
// last tick.
func (t *Transform) Update(tick uint64) bool {
	return core.UpdateAll(tick, &t.ts, &t.rotation, &t.scale, &t.translation, &t.matrix)
}

// Snapshot freezes the current component values.
func (t *Transform) Snapshot() TransformSnapshot {
	s := TransformSnapshot{delegate: t.delegate, tag: t.delegate.tag()}
	t.delegate.snapshot(t, &s)
	return s
}

func (t *Transform) updateDelegate() {
	t.ts.MarkDirty()
	switch t.typ {
	case TransformTypeNone:
		t.delegate = transformNone{}
		return
	case TransformTypeDelegated:
		t.delegate = transformMatrix{}
		return
	}
	is2D := t.typ == TransformTypeLinear2D
	switch {
	case t.rotation.IsDefined():
		if is2D {
			t.delegate = transformTRS2D{}
		} else {
			t.delegate = transformTRS3D{}
		}
	case t.scale.IsDefined() || t.translation.IsDefined():
		if is2D {
			t.delegate = transformTS2D{}
		} else {
			t.delegate = transformTS3D{}
		}
	default:
		t.delegate = transformNone{}
	}
}

// Rotation is a quaternion variable defined by an angle around an axis.
type Rotation struct {
	theta core.SafeVar[float32]
	axis  mgl32.Vec3
	ts    core.Timestamp
}

func NewRotation(theta core.Numeric, axis mgl32.Vec3) *Rotation {
	return &Rotation{
		theta: core.NewSafeVar[float32](theta, 0),
		axis:  axis.Normalize(),
		ts:    core.NewTimestamp(),
	}
}

// NewRotationZ rotates by a constant angle in radians around +Z.
func NewRotationZ(theta float32) *Rotation {
	return NewRotation(core.NewConst(theta), mgl32.Vec3{0, 0, 1})
}

func (r *Rotation) Val() mgl32.Quat {
	return mgl32.QuatRotate(r.theta.Val(), r.axis)
}

func (r *Rotation) Update(tick uint64) bool {
	return core.UpdateAll(tick, &r.ts, &r.theta)
}

func (r *Rotation) SetTheta(theta core.Numeric) {
	r.theta.Reset(theta)
}

func (r *Rotation) SetAxis(axis mgl32.Vec3) {
	r.axis = axis.Normalize()
	r.ts.MarkDirty()
}
