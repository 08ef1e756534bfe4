package renderer

import (
	"encoding/binary"
	"math"
	"slices"

	"ark-render/internal/check"
	"ark-render/internal/core"
)

// Writable is the destination of an Uploader: a mapped GPU range or a CPU
// staging slice.
type Writable interface {
	// Write copies p at offset and returns the number of bytes written.
	Write(p []byte, offset int) int
}

// Uploader produces buffer content lazily. Size must not change between a
// Size call and the following Upload.
type Uploader interface {
	core.Updatable
	Size() int
	Upload(w Writable)
}

// ByteWritable writes into a fixed slice and refuses to grow it.
type ByteWritable []byte

func (b ByteWritable) Write(p []byte, offset int) int {
	check.Check(offset >= 0 && offset+len(p) <= len(b), "write overflow: offset %d + %d bytes > %d", offset, len(p), len(b))
	return copy(b[offset:], p)
}

// Flat materializes u into a new slice.
func Flat(u Uploader) []byte {
	buf := make([]byte, u.Size())
	u.Upload(ByteWritable(buf))
	return buf
}

// BytesUploader uploads an owned byte slice.
type BytesUploader struct {
	data []byte
	ts   core.Timestamp
}

func NewBytesUploader(data []byte) *BytesUploader {
	return &BytesUploader{data: data, ts: core.NewTimestamp()}
}

// NewFloat32Uploader encodes v little-endian.
func NewFloat32Uploader(v []float32) *BytesUploader {
	return NewBytesUploader(EncodeFloat32(v))
}

// NewUint16Uploader encodes indices little-endian.
func NewUint16Uploader(v []uint16) *BytesUploader {
	return NewBytesUploader(EncodeUint16(v))
}

func (u *BytesUploader) Size() int               { return len(u.data) }
func (u *BytesUploader) Upload(w Writable)       { w.Write(u.data, 0) }
func (u *BytesUploader) Update(tick uint64) bool { return u.ts.Update(tick) }

// Set replaces the content and marks the uploader changed.
func (u *BytesUploader) Set(data []byte) {
	u.data = data
	u.ts.MarkDirty()
}

func (u *BytesUploader) SetFloat32(v []float32) {
	u.Set(EncodeFloat32(v))
}

// UploaderFunc adapts a writer function of known size. It never reports a
// change on its own.
type UploaderFunc struct {
	size int
	fn   func(w Writable)
}

func NewUploaderFunc(size int, fn func(w Writable)) *UploaderFunc {
	return &UploaderFunc{size: size, fn: fn}
}

func (u *UploaderFunc) Size() int          { return u.size }
func (u *UploaderFunc) Upload(w Writable)  { u.fn(w) }
func (u *UploaderFunc) Update(uint64) bool { return false }

type strip struct {
	offset int
	data   []byte
}

// StripsUploader writes independent byte ranges at their offsets. Gaps are
// left untouched in the destination.
type StripsUploader struct {
	size   int
	strips []strip
}

func (u *StripsUploader) Size() int          { return u.size }
func (u *StripsUploader) Update(uint64) bool { return false }

func (u *StripsUploader) Upload(w Writable) {
	for _, s := range u.strips {
		w.Write(s.data, s.offset)
	}
}

func EncodeFloat32(v []float32) []byte {
	buf := make([]byte, 0, len(v)*4)
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func EncodeUint16(v []uint16) []byte {
	buf := make([]byte, 0, len(v)*2)
	for _, i := range v {
		buf = binary.LittleEndian.AppendUint16(buf, i)
	}
	return buf
}

func DecodeFloat32(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func DecodeUint16(b []byte) []uint16 {
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return out
}

func sortStrips(s []strip) {
	slices.SortFunc(s, func(a, b strip) int { return a.offset - b.offset })
}
