package headless

import (
	"log/slog"

	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"
)

type buffer struct {
	renderer.BufferBase
	device *Device
	id     uint64
}

func newBuffer(device *Device, usage renderer.BufferUsage) *buffer {
	return &buffer{BufferBase: renderer.NewBufferBase(usage), device: device}
}

func (b *buffer) ID() uint64 { return b.id }

func (b *buffer) Upload(gc *renderer.GraphicsContext) {
	if b.id == 0 {
		b.id = b.device.alloc("buffer")
	}
	if data, ok := b.TakePending(); ok {
		b.device.replace(b.id, data)
	}
}

func (b *buffer) UploadBuffer(gc *renderer.GraphicsContext, u renderer.Uploader) {
	b.Stage(u)
	b.Upload(gc)
}

func (b *buffer) DownloadBuffer(gc *renderer.GraphicsContext, offset int, dst []byte) {
	data, ok := b.device.Bytes(b.id)
	check.Check(ok, "download from unallocated buffer")
	check.Check(offset+len(dst) <= len(data), "download [%d, %d) exceeds buffer size %d", offset, offset+len(dst), len(data))
	copy(dst, data[offset:])
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
		b.device.release(id)
	}
}
