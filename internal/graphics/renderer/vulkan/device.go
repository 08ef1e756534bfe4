package vulkan

import (
	"sync/atomic"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/vulkan-go/asche"
	vk "github.com/vulkan-go/vulkan"

	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"
)

var handles atomic.Uint64

// nextHandle hands out the ids reported by Resource.ID. Vulkan handles are
// opaque pointers, so delegates number themselves.
func nextHandle() uint64 {
	return handles.Add(1)
}

const depthFormat = vk.FormatD24UnormS8Uint

// device owns the logical device, the swapchain framebuffers and the command
// buffer of the frame being recorded.
type device struct {
	platform asche.Platform
	ctx      asche.Context
	dev      vk.Device
	queue    vk.Queue
	memProps vk.PhysicalDeviceMemoryProperties
	pool     vk.CommandPool

	format        vk.Format
	width, height uint32
	clearPass     vk.RenderPass
	loadPass      vk.RenderPass
	depth         *texture
	framebuffers  []vk.Framebuffer

	// frame state, render thread only
	gc       *renderer.GraphicsContext
	pending  renderer.RenderCommand
	clear    mgl32.Vec4
	cmd      vk.CommandBuffer
	image    int
	passOpen bool
	passUsed bool
	target   *renderTarget
}

func (d *device) ready() bool { return d.dev != nil }

func (d *device) attach(ctx asche.Context) {
	d.ctx = ctx
	d.platform = ctx.Platform()
	d.dev = ctx.Device()
	d.queue = d.platform.GraphicsQueue()
	d.memProps = d.platform.MemoryProperties()
	d.memProps.Deref()

	var pool vk.CommandPool
	ret := vk.CreateCommandPool(d.dev, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.platform.GraphicsQueueFamilyIndex(),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
	}, nil, &pool)
	orFatal(ret, "create command pool")
	d.pool = pool
}

func (d *device) memoryType(typeBits uint32, props vk.MemoryPropertyFlagBits) uint32 {
	for i := uint32(0); i < d.memProps.MemoryTypeCount; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		d.memProps.MemoryTypes[i].Deref()
		flags := d.memProps.MemoryTypes[i].PropertyFlags
		if flags&vk.MemoryPropertyFlags(props) == vk.MemoryPropertyFlags(props) {
			return i
		}
	}
	check.Fatalf("no memory type with properties %#x among %#b", props, typeBits)
	return 0
}

func (d *device) allocBuffer(size int, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlagBits) (vk.Buffer, vk.DeviceMemory) {
	var buf vk.Buffer
	ret := vk.CreateBuffer(d.dev, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf)
	orFatal(ret, "create buffer")

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.dev, buf, &reqs)
	reqs.Deref()
	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(d.dev, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: d.memoryType(reqs.MemoryTypeBits, props),
	}, nil, &mem)
	orFatal(ret, "allocate buffer memory", func() { vk.DestroyBuffer(d.dev, buf, nil) })
	vk.BindBufferMemory(d.dev, buf, mem, 0)
	return buf, mem
}

func (d *device) freeBuffer(buf vk.Buffer, mem vk.DeviceMemory) {
	if buf != vk.NullBuffer {
		vk.DestroyBuffer(d.dev, buf, nil)
	}
	if mem != vk.NullDeviceMemory {
		vk.FreeMemory(d.dev, mem, nil)
	}
}

// write copies data into host-visible memory.
func (d *device) write(mem vk.DeviceMemory, data []byte) {
	var ptr unsafe.Pointer
	ret := vk.MapMemory(d.dev, mem, 0, vk.DeviceSize(len(data)), 0, &ptr)
	orFatal(ret, "map memory")
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(d.dev, mem)
}

func (d *device) read(mem vk.DeviceMemory, offset int, dst []byte) {
	var ptr unsafe.Pointer
	ret := vk.MapMemory(d.dev, mem, vk.DeviceSize(offset), vk.DeviceSize(len(dst)), 0, &ptr)
	orFatal(ret, "map memory")
	copy(dst, unsafe.Slice((*byte)(ptr), len(dst)))
	vk.UnmapMemory(d.dev, mem)
}

// staging uploads data into a transient host buffer, runs record with it
// and waits for the queue.
func (d *device) staging(data []byte, record func(cmd vk.CommandBuffer, src vk.Buffer)) {
	src, mem := d.allocBuffer(len(data), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	defer d.freeBuffer(src, mem)
	d.write(mem, data)
	d.oneShot(func(cmd vk.CommandBuffer) { record(cmd, src) })
}

// oneShot records and submits a transient command buffer outside the frame.
func (d *device) oneShot(record func(cmd vk.CommandBuffer)) {
	cmds := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(d.dev, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cmds)
	orFatal(ret, "allocate command buffer")
	defer vk.FreeCommandBuffers(d.dev, d.pool, 1, cmds)

	ret = vk.BeginCommandBuffer(cmds[0], &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	orFatal(ret, "begin command buffer")
	record(cmds[0])
	orFatal(vk.EndCommandBuffer(cmds[0]), "end command buffer")

	ret = vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    cmds,
	}}, vk.NullFence)
	orFatal(ret, "submit")
	orFatal(vk.QueueWaitIdle(d.queue), "wait for queue")
}

func (d *device) transition(cmd vk.CommandBuffer, img vk.Image, aspect vk.ImageAspectFlags, layers uint32, from, to vk.ImageLayout) {
	src, dst := vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	var srcAccess, dstAccess vk.AccessFlags
	switch {
	case from == vk.ImageLayoutUndefined && to == vk.ImageLayoutTransferDstOptimal:
		dstAccess = vk.AccessFlags(vk.AccessTransferWriteBit)
	case from == vk.ImageLayoutTransferDstOptimal && to == vk.ImageLayoutShaderReadOnlyOptimal:
		srcAccess = vk.AccessFlags(vk.AccessTransferWriteBit)
		dstAccess = vk.AccessFlags(vk.AccessShaderReadBit)
		src = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dst = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	default:
		src = vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
		dst = vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
		srcAccess = vk.AccessFlags(vk.AccessMemoryWriteBit)
		dstAccess = vk.AccessFlags(vk.AccessMemoryReadBit | vk.AccessMemoryWriteBit)
	}
	vk.CmdPipelineBarrier(cmd, src, dst, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: layers,
		},
	}})
}

// createRenderPass builds a single-subpass pass with one color attachment
// per format and an optional depth attachment.
func (d *device) createRenderPass(colors []vk.Format, depth bool, load vk.AttachmentLoadOp, initial, final vk.ImageLayout) vk.RenderPass {
	var attachments []vk.AttachmentDescription
	var refs []vk.AttachmentReference
	for i, f := range colors {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         f,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         load,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  initial,
			FinalLayout:    final,
		})
		refs = append(refs, vk.AttachmentReference{Attachment: uint32(i), Layout: vk.ImageLayoutColorAttachmentOptimal})
	}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(refs)),
		PColorAttachments:    refs,
	}
	if depth {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         depthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         load,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  load,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  initialDepthLayout(load),
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: uint32(len(colors)),
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}
	var pass vk.RenderPass
	ret := vk.CreateRenderPass(d.dev, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}, nil, &pass)
	orFatal(ret, "create render pass")
	return pass
}

func initialDepthLayout(load vk.AttachmentLoadOp) vk.ImageLayout {
	if load == vk.AttachmentLoadOpLoad {
		return vk.ImageLayoutDepthStencilAttachmentOptimal
	}
	return vk.ImageLayoutUndefined
}

func (d *device) createFramebuffer(pass vk.RenderPass, views []vk.ImageView, width, height uint32) vk.Framebuffer {
	var fb vk.Framebuffer
	ret := vk.CreateFramebuffer(d.dev, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           width,
		Height:          height,
		Layers:          1,
	}, nil, &fb)
	orFatal(ret, "create framebuffer")
	return fb
}

// prepareSwapchain runs after every swapchain (re)creation.
func (d *device) prepareSwapchain() error {
	dims := d.ctx.SwapchainDimensions()
	d.format, d.width, d.height = dims.Format, dims.Width, dims.Height
	d.clearPass = d.createRenderPass([]vk.Format{d.format}, true, vk.AttachmentLoadOpClear,
		vk.ImageLayoutUndefined, vk.ImageLayoutPresentSrc)
	d.loadPass = d.createRenderPass([]vk.Format{d.format}, true, vk.AttachmentLoadOpLoad,
		vk.ImageLayoutPresentSrc, vk.ImageLayoutPresentSrc)

	d.depth = newTexture(d, int(d.width), int(d.height), renderer.TextureParameters{
		Type:   renderer.TextureType2D,
		Format: renderer.FormatDepth24Stencil8,
		Usage:  renderer.TextureUsageDepthStencilAttachment,
	})
	d.depth.allocate()

	resources := d.ctx.SwapchainImageResources()
	d.framebuffers = make([]vk.Framebuffer, len(resources))
	for i, res := range resources {
		d.framebuffers[i] = d.createFramebuffer(d.clearPass, []vk.ImageView{res.View(), d.depth.view}, d.width, d.height)
	}
	return nil
}

func (d *device) cleanupSwapchain() error {
	vk.DeviceWaitIdle(d.dev)
	for _, fb := range d.framebuffers {
		vk.DestroyFramebuffer(d.dev, fb, nil)
	}
	d.framebuffers = nil
	if d.depth != nil {
		d.depth.Recycle()(nil)
		d.depth = nil
	}
	vk.DestroyRenderPass(d.dev, d.clearPass, nil)
	vk.DestroyRenderPass(d.dev, d.loadPass, nil)
	d.clearPass, d.loadPass = vk.NullRenderPass, vk.NullRenderPass
	return nil
}

// recordFrame fills the command buffer of swapchain image idx with the
// pending render command. asche submits it right after.
func (d *device) recordFrame(idx int) error {
	d.cmd = d.ctx.SwapchainImageResources()[idx].CommandBuffer()
	d.image = idx
	d.passOpen, d.passUsed = false, false

	ret := vk.BeginCommandBuffer(d.cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit),
	})
	if isError(ret) {
		return newError(ret)
	}
	if d.pending != nil {
		d.pending.Draw(d.gc)
	}
	if !d.passUsed {
		d.beginSwapchainPass()
	}
	d.endPass()
	ret = vk.EndCommandBuffer(d.cmd)
	d.cmd = nil
	return newError(ret)
}

// beginSwapchainPass opens the swapchain pass unless a pass is open. The
// first pass of a frame clears.
func (d *device) beginSwapchainPass() {
	if d.passOpen {
		return
	}
	pass := d.loadPass
	if !d.passUsed {
		pass = d.clearPass
	}
	c := d.clear
	vk.CmdBeginRenderPass(d.cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  pass,
		Framebuffer: d.framebuffers[d.image],
		RenderArea: vk.Rect2D{
			Extent: vk.Extent2D{Width: d.width, Height: d.height},
		},
		ClearValueCount: 2,
		PClearValues: []vk.ClearValue{
			vk.NewClearValue([]float32{c[0], c[1], c[2], c[3]}),
			vk.NewClearDepthStencil(1, 0),
		},
	}, vk.SubpassContentsInline)
	d.passOpen, d.passUsed = true, true
}

func (d *device) endPass() {
	if d.passOpen {
		vk.CmdEndRenderPass(d.cmd)
		d.passOpen = false
	}
}

// drawPass returns the command buffer with a pass open for drawing, along
// with the pass and its extent.
func (d *device) drawPass() (vk.CommandBuffer, vk.RenderPass, uint32, uint32) {
	check.Check(d.cmd != nil, "vulkan draw outside of a frame")
	if d.target != nil {
		return d.cmd, d.target.pass, uint32(d.target.cfg.Width), uint32(d.target.cfg.Height)
	}
	d.beginSwapchainPass()
	return d.cmd, d.loadPass, d.width, d.height
}

func (d *device) destroy() {
	if !d.ready() {
		return
	}
	vk.DeviceWaitIdle(d.dev)
	d.cleanupSwapchain()
	vk.DestroyCommandPool(d.dev, d.pool, nil)
	d.platform.Destroy()
	d.dev = nil
}
