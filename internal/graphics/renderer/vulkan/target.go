package vulkan

import (
	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"

	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"
)

// renderTarget is an offscreen pass whose color attachments end up ready
// for sampling.
type renderTarget struct {
	d      *device
	cfg    renderer.RenderTargetConfig
	id     uint64
	colors []*texture
	depth  *texture
	pass   vk.RenderPass
	fb     vk.Framebuffer
}

func (t *renderTarget) ID() uint64                          { return t.id }
func (t *renderTarget) Config() renderer.RenderTargetConfig { return t.cfg }

func (t *renderTarget) ColorAttachments() []renderer.TextureDelegate {
	out := make([]renderer.TextureDelegate, len(t.colors))
	for i, c := range t.colors {
		out[i] = c
	}
	return out
}

func (t *renderTarget) Upload(gc *renderer.GraphicsContext) {
	if t.id != 0 {
		return
	}
	var views []vk.ImageView
	var formats []vk.Format
	for _, f := range t.cfg.ColorFormats {
		c := newTexture(t.d, t.cfg.Width, t.cfg.Height, renderer.TextureParameters{
			Type:   renderer.TextureType2D,
			Format: f,
			Usage:  renderer.TextureUsageColorAttachment | renderer.TextureUsageSampled,
		})
		c.allocate()
		c.layout = vk.ImageLayoutShaderReadOnlyOptimal
		t.colors = append(t.colors, c)
		views = append(views, c.view)
		formats = append(formats, textureFormat(f))
	}
	if t.cfg.DepthStencil {
		t.depth = newTexture(t.d, t.cfg.Width, t.cfg.Height, renderer.TextureParameters{
			Type:   renderer.TextureType2D,
			Format: renderer.FormatDepth24Stencil8,
			Usage:  renderer.TextureUsageDepthStencilAttachment,
		})
		t.depth.allocate()
		views = append(views, t.depth.view)
	}
	t.pass = t.d.createRenderPass(formats, t.cfg.DepthStencil, vk.AttachmentLoadOpClear,
		vk.ImageLayoutUndefined, vk.ImageLayoutShaderReadOnlyOptimal)
	t.fb = t.d.createFramebuffer(t.pass, views, uint32(t.cfg.Width), uint32(t.cfg.Height))
	t.id = nextHandle()
}

// Begin suspends the swapchain pass; the next swapchain draw reopens it
// without clearing.
func (t *renderTarget) Begin(gc *renderer.GraphicsContext, clearColor mgl32.Vec4) {
	check.Check(t.d.target == nil, "render target begun inside another target")
	t.d.endPass()
	clears := make([]vk.ClearValue, 0, len(t.colors)+1)
	for range t.colors {
		clears = append(clears, vk.NewClearValue([]float32{clearColor[0], clearColor[1], clearColor[2], clearColor[3]}))
	}
	if t.depth != nil {
		clears = append(clears, vk.NewClearDepthStencil(1, 0))
	}
	vk.CmdBeginRenderPass(t.d.cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      t.pass,
		Framebuffer:     t.fb,
		RenderArea:      vk.Rect2D{Extent: vk.Extent2D{Width: uint32(t.cfg.Width), Height: uint32(t.cfg.Height)}},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}, vk.SubpassContentsInline)
	t.d.target = t
}

func (t *renderTarget) End(gc *renderer.GraphicsContext) {
	check.Check(t.d.target == t, "render target ended without Begin")
	vk.CmdEndRenderPass(t.d.cmd)
	t.d.target = nil
}

func (t *renderTarget) Recycle() renderer.ResourceRecycleFunc {
	if t.id == 0 {
		return renderer.NoopRecycle
	}
	var releases []renderer.ResourceRecycleFunc
	for _, c := range t.colors {
		releases = append(releases, c.Recycle())
	}
	if t.depth != nil {
		releases = append(releases, t.depth.Recycle())
	}
	d, pass, fb := t.d, t.pass, t.fb
	t.id, t.colors, t.depth = 0, nil, nil
	return func(gc *renderer.GraphicsContext) {
		vk.DestroyFramebuffer(d.dev, fb, nil)
		vk.DestroyRenderPass(d.dev, pass, nil)
		for _, r := range releases {
			r(gc)
		}
	}
}
