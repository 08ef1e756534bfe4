package vulkan

import (
	"log/slog"

	vk "github.com/vulkan-go/vulkan"

	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"
)

// buffer keeps dynamic and host-visible content in mapped memory and static
// content in device-local memory filled through a staging copy.
type buffer struct {
	renderer.BufferBase
	d        *device
	id       uint64
	buf      vk.Buffer
	mem      vk.DeviceMemory
	capacity int
}

func newBuffer(d *device, usage renderer.BufferUsage) *buffer {
	return &buffer{BufferBase: renderer.NewBufferBase(usage), d: d}
}

func (b *buffer) ID() uint64 { return b.id }

func (b *buffer) memoryProperties() vk.MemoryPropertyFlagBits {
	if hostVisible(b.Usage()) {
		return vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit
	}
	return vk.MemoryPropertyDeviceLocalBit
}

func (b *buffer) Upload(gc *renderer.GraphicsContext) {
	if b.id == 0 {
		b.id = nextHandle()
		b.capacity = 0
	}
	data, ok := b.TakePending()
	if !ok || len(data) == 0 {
		return
	}
	if len(data) > b.capacity {
		b.d.freeBuffer(b.buf, b.mem)
		b.buf, b.mem = b.d.allocBuffer(len(data), bufferUsageFlags(b.Usage()), b.memoryProperties())
		b.capacity = len(data)
	}
	if hostVisible(b.Usage()) {
		b.d.write(b.mem, data)
		return
	}
	b.d.staging(data, func(cmd vk.CommandBuffer, src vk.Buffer) {
		vk.CmdCopyBuffer(cmd, src, b.buf, 1, []vk.BufferCopy{{Size: vk.DeviceSize(len(data))}})
	})
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
	if hostVisible(b.Usage()) {
		b.d.read(b.mem, offset, dst)
		return
	}
	readback, mem := b.d.allocBuffer(len(dst), vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	defer b.d.freeBuffer(readback, mem)
	b.d.oneShot(func(cmd vk.CommandBuffer) {
		vk.CmdCopyBuffer(cmd, b.buf, readback, 1, []vk.BufferCopy{{SrcOffset: vk.DeviceSize(offset), Size: vk.DeviceSize(len(dst))}})
	})
	b.d.read(mem, 0, dst)
}

func (b *buffer) Recycle() renderer.ResourceRecycleFunc {
	if b.id == 0 {
		return renderer.NoopRecycle
	}
	id, d, buf, mem := b.id, b.d, b.buf, b.mem
	b.id, b.buf, b.mem, b.capacity = 0, vk.NullBuffer, vk.NullDeviceMemory, 0
	b.Reset()
	return func(*renderer.GraphicsContext) {
		slog.Debug("recycling buffer", "id", id)
		d.freeBuffer(buf, mem)
	}
}
