package graphics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"ark-render/internal/check"
)

type snapshotTag uint8

const (
	tagNone snapshotTag = iota
	tagTS2D
	tagTS3D
	tagTRS2D
	tagTRS3D
	tagMatrix
)

var snapshotTagNames = [...]string{"none", "ts2d", "ts3d", "trs2d", "trs3d", "matrix"}

func (t snapshotTag) String() string {
	if int(t) < len(snapshotTagNames) {
		return snapshotTagNames[t]
	}
	return "invalid"
}

// TransformSnapshot is an immutable copy of a Transform for one frame. The
// payload is a fixed 64 bytes whose layout depends on the delegate that
// produced it; the tag records which one did. The zero value is the
// identity transform.
type TransformSnapshot struct {
	delegate transformDelegate
	tag      snapshotTag
	data     [16]float32
}

// ToMatrix returns the model matrix.
func (s *TransformSnapshot) ToMatrix() mgl32.Mat4 {
	if s.delegate == nil {
		return mgl32.Ident4()
	}
	return s.delegate.toMatrix(s)
}

// Transform applies the snapshot to a point.
func (s *TransformSnapshot) Transform(p mgl32.Vec3) mgl32.Vec3 {
	if s.delegate == nil {
		return p
	}
	return s.delegate.transform(s, p)
}

func (s *TransformSnapshot) Kind() TransformKind {
	if s.delegate == nil {
		return TransformKindNone
	}
	return s.delegate.kind()
}

// payload returns the raw data after checking it was written by tag.
func (s *TransformSnapshot) payload(tag snapshotTag) *[16]float32 {
	check.DCheck(s.tag == tag, "Transform magic mismatch, this snapshot was taken by a different transform delegate: %s != %s", s.tag, tag)
	return &s.data
}

type transformDelegate interface {
	kind() TransformKind
	tag() snapshotTag
	snapshot(t *Transform, s *TransformSnapshot)
	transform(s *TransformSnapshot, p mgl32.Vec3) mgl32.Vec3
	toMatrix(s *TransformSnapshot) mgl32.Mat4
}

type transformNone struct{}

func (transformNone) kind() TransformKind                     { return TransformKindNone }
func (transformNone) tag() snapshotTag                        { return tagNone }
func (transformNone) snapshot(*Transform, *TransformSnapshot) {}
func (transformNone) toMatrix(*TransformSnapshot) mgl32.Mat4  { return mgl32.Ident4() }

func (transformNone) transform(_ *TransformSnapshot, p mgl32.Vec3) mgl32.Vec3 {
	return p
}

// ts3d layout: scale xyz, translation xyz.
type transformTS3D struct{}

func (transformTS3D) kind() TransformKind { return TransformKindTS }
func (transformTS3D) tag() snapshotTag    { return tagTS3D }

func (transformTS3D) snapshot(t *Transform, s *TransformSnapshot) {
	d := s.payload(tagTS3D)
	sc, tr := t.scale.Val(), t.translation.Val()
	copy(d[0:3], sc[:])
	copy(d[3:6], tr[:])
}

func (transformTS3D) transform(s *TransformSnapshot, p mgl32.Vec3) mgl32.Vec3 {
	d := s.payload(tagTS3D)
	return mgl32.Vec3{p[0]*d[0] + d[3], p[1]*d[1] + d[4], p[2]*d[2] + d[5]}
}

func (transformTS3D) toMatrix(s *TransformSnapshot) mgl32.Mat4 {
	d := s.payload(tagTS3D)
	return mgl32.Translate3D(d[3], d[4], d[5]).Mul4(mgl32.Scale3D(d[0], d[1], d[2]))
}

// trs3d layout: quaternion w xyz, scale xyz, translation xyz.
type transformTRS3D struct{}

func (transformTRS3D) kind() TransformKind { return TransformKindTRS }
func (transformTRS3D) tag() snapshotTag    { return tagTRS3D }

func (transformTRS3D) snapshot(t *Transform, s *TransformSnapshot) {
	d := s.payload(tagTRS3D)
	q, sc, tr := t.rotation.Val(), t.scale.Val(), t.translation.Val()
	d[0] = q.W
	copy(d[1:4], q.V[:])
	copy(d[4:7], sc[:])
	copy(d[7:10], tr[:])
}

func (transformTRS3D) unpack(s *TransformSnapshot) (mgl32.Quat, mgl32.Vec3, mgl32.Vec3) {
	d := s.payload(tagTRS3D)
	return mgl32.Quat{W: d[0], V: mgl32.Vec3{d[1], d[2], d[3]}},
		mgl32.Vec3{d[4], d[5], d[6]},
		mgl32.Vec3{d[7], d[8], d[9]}
}

func (x transformTRS3D) transform(s *TransformSnapshot, p mgl32.Vec3) mgl32.Vec3 {
	q, sc, tr := x.unpack(s)
	scaled := mgl32.Vec3{p[0] * sc[0], p[1] * sc[1], p[2] * sc[2]}
	return q.Rotate(scaled).Add(tr)
}

func (x transformTRS3D) toMatrix(s *TransformSnapshot) mgl32.Mat4 {
	q, sc, tr := x.unpack(s)
	return mgl32.Translate3D(tr[0], tr[1], tr[2]).Mul4(q.Mat4()).Mul4(mgl32.Scale3D(sc[0], sc[1], sc[2]))
}

// ts2d layout: scale xy, translation xyz. Z passes through unscaled.
type transformTS2D struct{}

func (transformTS2D) kind() TransformKind { return TransformKindTS }
func (transformTS2D) tag() snapshotTag    { return tagTS2D }

func (transformTS2D) snapshot(t *Transform, s *TransformSnapshot) {
	d := s.payload(tagTS2D)
	sc, tr := t.scale.Val(), t.translation.Val()
	copy(d[0:2], sc[:2])
	copy(d[2:5], tr[:])
}

func (transformTS2D) transform(s *TransformSnapshot, p mgl32.Vec3) mgl32.Vec3 {
	d := s.payload(tagTS2D)
	return mgl32.Vec3{p[0]*d[0] + d[2], p[1]*d[1] + d[3], p[2] + d[4]}
}

func (transformTS2D) toMatrix(s *TransformSnapshot) mgl32.Mat4 {
	d := s.payload(tagTS2D)
	return mgl32.Translate3D(d[2], d[3], d[4]).Mul4(mgl32.Scale3D(d[0], d[1], 1))
}

// trs2d layout: cos, sin of the z rotation, scale xy, translation xyz.
type transformTRS2D struct{}

func (transformTRS2D) kind() TransformKind { return TransformKindTRS }
func (transformTRS2D) tag() snapshotTag    { return tagTRS2D }

func (transformTRS2D) snapshot(t *Transform, s *TransformSnapshot) {
	d := s.payload(tagTRS2D)
	q := t.rotation.Val()
	theta := 2 * math32.Atan2(q.V.Z(), q.W)
	d[0], d[1] = math32.Cos(theta), math32.Sin(theta)
	sc, tr := t.scale.Val(), t.translation.Val()
	copy(d[2:4], sc[:2])
	copy(d[4:7], tr[:])
}

func (transformTRS2D) transform(s *TransformSnapshot, p mgl32.Vec3) mgl32.Vec3 {
	d := s.payload(tagTRS2D)
	x, y := p[0]*d[2], p[1]*d[3]
	return mgl32.Vec3{x*d[0] - y*d[1] + d[4], x*d[1] + y*d[0] + d[5], p[2] + d[6]}
}

func (transformTRS2D) toMatrix(s *TransformSnapshot) mgl32.Mat4 {
	d := s.payload(tagTRS2D)
	return mgl32.Mat4{
		d[0] * d[2], d[1] * d[2], 0, 0,
		-d[1] * d[3], d[0] * d[3], 0, 0,
		0, 0, 1, 0,
		d[4], d[5], d[6], 1,
	}
}

// matrix layout: the 16 column-major entries.
type transformMatrix struct{}

func (transformMatrix) kind() TransformKind { return TransformKindDelegated }
func (transformMatrix) tag() snapshotTag    { return tagMatrix }

func (transformMatrix) snapshot(t *Transform, s *TransformSnapshot) {
	d := s.payload(tagMatrix)
	*d = [16]float32(t.matrix.Val())
}

func (transformMatrix) transform(s *TransformSnapshot, p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Mat4(*s.payload(tagMatrix)).Mul4x1(p.Vec4(1)).Vec3()
}

func (transformMatrix) toMatrix(s *TransformSnapshot) mgl32.Mat4 {
	return mgl32.Mat4(*s.payload(tagMatrix))
}
