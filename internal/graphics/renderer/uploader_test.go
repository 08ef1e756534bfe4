package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat32RoundTrip(t *testing.T) {
	v := []float32{0, -1.5, 3.25, 1e6}
	assert.Equal(t, v, DecodeFloat32(EncodeFloat32(v)))
	assert.Equal(t, []byte{0x01, 0x00, 0xff, 0xff}, EncodeUint16([]uint16{1, 0xffff}))
}

func TestBytesUploaderTracksChanges(t *testing.T) {
	u := NewFloat32Uploader([]float32{1, 2, 3})
	assert.Equal(t, 12, u.Size())
	assert.True(t, u.Update(1))
	assert.False(t, u.Update(2))

	u.SetFloat32([]float32{4, 5})
	assert.True(t, u.Update(3))
	assert.Equal(t, []float32{4, 5}, DecodeFloat32(Flat(u)))
}

func TestByteWritableOverflow(t *testing.T) {
	w := make(ByteWritable, 4)
	assert.Equal(t, 2, w.Write([]byte{1, 2}, 2))
	require.Panics(t, func() { w.Write([]byte{1, 2}, 3) })
}

func TestConcatIndices(t *testing.T) {
	quad := []uint16{0, 1, 2, 2, 1, 3}
	got := ConcatIndices(quad, 4, 2)
	assert.Equal(t, []uint16{0, 1, 2, 2, 1, 3, 4, 5, 6, 6, 5, 7}, got)
	assert.Equal(t, got, DecodeUint16(Flat(NewConcatIndexUploader(quad, 4, 2))))
}

func TestConcatIndicesOverflow(t *testing.T) {
	require.Panics(t, func() { ConcatIndices([]uint16{0, 1, 2}, 3, 30000) })
}

func TestDegenerateIndices(t *testing.T) {
	strip := []uint16{0, 1, 2, 3}
	got := DegenerateIndices(strip, 4, 3)
	assert.Equal(t, []uint16{0, 1, 2, 3, 3, 4, 4, 5, 6, 7, 7, 8, 8, 9, 10, 11}, got)
	assert.Len(t, got, DegenerateIndexCount(len(strip), 3))
	assert.Equal(t, 0, DegenerateIndexCount(4, 0))
}

func TestNextPowerOfTwo(t *testing.T) {
	for n, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 17: 32, 64: 64} {
		assert.Equal(t, want, nextPowerOfTwo(n), "n=%d", n)
	}
}

// memBuffer is a BufferDelegate keeping content in memory, for tests that
// do not need a backend.
type memBuffer struct {
	BufferBase
	id      uint64
	content []byte
	uploads int
}

func (b *memBuffer) ID() uint64 { return b.id }

func (b *memBuffer) Upload(*GraphicsContext) {
	if b.id == 0 {
		b.id = 1
	}
	if data, ok := b.TakePending(); ok {
		b.content = data
		b.uploads++
	}
}

func (b *memBuffer) UploadBuffer(gc *GraphicsContext, u Uploader) {
	b.Stage(u)
	b.Upload(gc)
}

func (b *memBuffer) DownloadBuffer(_ *GraphicsContext, offset int, dst []byte) {
	copy(dst, b.content[offset:])
}

func (b *memBuffer) Recycle() ResourceRecycleFunc {
	if b.id == 0 {
		return NoopRecycle
	}
	b.id = 0
	b.Reset()
	return func(*GraphicsContext) {}
}

func TestPrimitiveIndexBufferGrows(t *testing.T) {
	mem := &memBuffer{BufferBase: NewBufferBase(UsageIndex | UsageDynamic)}
	p := NewPrimitiveIndexBuffer(NewBuffer(mem), []uint16{0, 1, 2}, 3, false)

	s := p.Snapshot(3)
	require.True(t, s.HasUploader())
	s.Upload(nil)
	assert.Equal(t, 4*3*2, mem.Size())

	s = p.Snapshot(4)
	assert.False(t, s.HasUploader(), "capacity 4 already covers 4 primitives")

	s = p.Snapshot(5)
	require.True(t, s.HasUploader())
	s.Upload(nil)
	assert.Equal(t, 8*3*2, mem.Size())
	assert.Equal(t, 2, mem.uploads)
	assert.Equal(t, 15, p.IndexCount(5))
}

func TestBufferFactoryStrips(t *testing.T) {
	mem := &memBuffer{BufferBase: NewBufferBase(UsageVertex | UsageDynamic)}
	f := NewBufferFactory()
	f.AddStrip(4, []byte{5, 6})
	f.AddStrip(0, []byte{1, 2, 3, 4})
	assert.Equal(t, 6, f.Size())

	s := f.Snapshot(NewBuffer(mem))
	assert.Equal(t, 6, s.Size())
	assert.Equal(t, 0, f.Size())
	s.Upload(nil)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, mem.content)
}

func TestStaticBufferBaseWriteOnce(t *testing.T) {
	b := NewBufferBase(UsageVertex)
	b.Stage(NewBytesUploader([]byte{1}))
	require.Panics(t, func() { b.Stage(NewBytesUploader([]byte{2})) })

	b.Reset()
	assert.NotPanics(t, func() { b.Stage(NewBytesUploader([]byte{3})) })
}

func TestBufferUsageString(t *testing.T) {
	assert.Equal(t, "vertex|dynamic", (UsageVertex | UsageDynamic).String())
	assert.Equal(t, "none", BufferUsage(0).String())
	assert.True(t, (UsageIndex | UsageDynamic).Has(UsageDynamic))
}
