package opengl

import (
	"log/slog"

	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
)

type buffer struct {
	renderer.BufferBase
	id       uint32
	target   uint32
	capacity int
}

func newBuffer(usage renderer.BufferUsage) *buffer {
	return &buffer{BufferBase: renderer.NewBufferBase(usage), target: bufferTarget(usage)}
}

func (b *buffer) ID() uint64 { return uint64(b.id) }

func (b *buffer) Upload(gc *renderer.GraphicsContext) {
	if b.id == 0 {
		gl.GenBuffers(1, &b.id)
		b.capacity = 0
	}
	data, ok := b.TakePending()
	if !ok {
		return
	}
	gl.BindBuffer(b.target, b.id)
	switch {
	case len(data) == 0:
		gl.BufferData(b.target, 0, nil, bufferUsageHint(b.Usage()))
		b.capacity = 0
	case len(data) <= b.capacity:
		gl.BufferSubData(b.target, 0, len(data), gl.Ptr(data))
	default:
		gl.BufferData(b.target, len(data), gl.Ptr(data), bufferUsageHint(b.Usage()))
		b.capacity = len(data)
	}
	gl.BindBuffer(b.target, 0)
	glCheckError("upload buffer")
}

func (b *buffer) UploadBuffer(gc *renderer.GraphicsContext, u renderer.Uploader) {
	b.Stage(u)
	b.Upload(gc)
}

func (b *buffer) DownloadBuffer(gc *renderer.GraphicsContext, offset int, dst []byte) {
	check.Check(b.id != 0, "download from unallocated buffer")
	check.Check(offset+len(dst) <= b.Size(), "download [%d, %d) exceeds buffer size %d", offset, offset+len(dst), b.Size())
	if len(dst) == 0 {
		return
	}
	gl.BindBuffer(b.target, b.id)
	gl.GetBufferSubData(b.target, offset, len(dst), gl.Ptr(dst))
	gl.BindBuffer(b.target, 0)
	glCheckError("download buffer")
}

func (b *buffer) Recycle() renderer.ResourceRecycleFunc {
	id := b.id
	if id == 0 {
		return renderer.NoopRecycle
	}
	b.id = 0
	b.Reset()
	return func(*renderer.GraphicsContext) {
		slog.Debug("recycling buffer", "id", id)
		gl.DeleteBuffers(1, &id)
	}
}
