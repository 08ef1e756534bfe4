package renderer

import "ark-render/internal/check"

// NewConcatIndexUploader repeats model count times, offsetting each copy by
// vertexCount.
func NewConcatIndexUploader(model []uint16, vertexCount, count int) *UploaderFunc {
	size := len(model) * count * 2
	return NewUploaderFunc(size, func(w Writable) {
		w.Write(EncodeUint16(ConcatIndices(model, vertexCount, count)), 0)
	})
}

// NewDegenerateIndexUploader joins count copies of a triangle strip with two
// degenerate indices between neighbours.
func NewDegenerateIndexUploader(model []uint16, vertexCount, count int) *UploaderFunc {
	n := DegenerateIndexCount(len(model), count)
	return NewUploaderFunc(n*2, func(w Writable) {
		w.Write(EncodeUint16(DegenerateIndices(model, vertexCount, count)), 0)
	})
}

func ConcatIndices(model []uint16, vertexCount, count int) []uint16 {
	check.Check((count-1)*vertexCount+int(maxIndex(model)) <= 0xffff, "index overflow: %d primitives of %d vertices", count, vertexCount)
	out := make([]uint16, 0, len(model)*count)
	for i := 0; i < count; i++ {
		base := uint16(i * vertexCount)
		for _, idx := range model {
			out = append(out, base+idx)
		}
	}
	return out
}

func DegenerateIndexCount(modelLen, count int) int {
	if count == 0 {
		return 0
	}
	return modelLen*count + 2*(count-1)
}

func DegenerateIndices(model []uint16, vertexCount, count int) []uint16 {
	out := make([]uint16, 0, DegenerateIndexCount(len(model), count))
	for i := 0; i < count; i++ {
		base := uint16(i * vertexCount)
		if i > 0 {
			out = append(out, out[len(out)-1], base+model[0])
		}
		for _, idx := range model {
			out = append(out, base+idx)
		}
	}
	return out
}

func maxIndex(model []uint16) uint16 {
	var m uint16
	for _, i := range model {
		m = max(m, i)
	}
	return m
}

// PrimitiveIndexBuffer is an index buffer shared by every draw of the same
// primitive model. It grows to the next power of two when a frame needs more
// primitives than it holds.
type PrimitiveIndexBuffer struct {
	model       []uint16
	vertexCount int
	degenerate  bool
	buffer      *Buffer
	capacity    int
}

func NewPrimitiveIndexBuffer(buffer *Buffer, model []uint16, vertexCount int, degenerate bool) *PrimitiveIndexBuffer {
	return &PrimitiveIndexBuffer{model: model, vertexCount: vertexCount, degenerate: degenerate, buffer: buffer}
}

// IndexCount is the number of indices drawn for count primitives.
func (p *PrimitiveIndexBuffer) IndexCount(count int) int {
	if p.degenerate {
		return DegenerateIndexCount(len(p.model), count)
	}
	return len(p.model) * count
}

// Snapshot returns a snapshot able to draw count primitives, carrying an
// uploader only when the buffer had to grow.
func (p *PrimitiveIndexBuffer) Snapshot(count int) BufferSnapshot {
	if count <= p.capacity {
		return p.buffer.Snapshot()
	}
	p.capacity = nextPowerOfTwo(count)
	var u Uploader
	if p.degenerate {
		u = NewDegenerateIndexUploader(p.model, p.vertexCount, p.capacity)
	} else {
		u = NewConcatIndexUploader(p.model, p.vertexCount, p.capacity)
	}
	return p.buffer.SnapshotWith(u)
}

func (p *PrimitiveIndexBuffer) Buffer() *Buffer {
	return p.buffer
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
