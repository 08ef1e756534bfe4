package headless

import (
	"ark-render/internal/graphics/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

type renderTarget struct {
	device *Device
	cfg    renderer.RenderTargetConfig
	id     uint64
	colors []renderer.TextureDelegate
	depth  renderer.TextureDelegate
}

func (t *renderTarget) ID() uint64                                   { return t.id }
func (t *renderTarget) Config() renderer.RenderTargetConfig          { return t.cfg }
func (t *renderTarget) ColorAttachments() []renderer.TextureDelegate { return t.colors }

func (t *renderTarget) Upload(gc *renderer.GraphicsContext) {
	if t.id != 0 {
		return
	}
	t.id = t.device.alloc("render_target")
	t.colors = t.colors[:0]
	for _, f := range t.cfg.ColorFormats {
		c := &texture{device: t.device, width: t.cfg.Width, height: t.cfg.Height, params: renderer.TextureParameters{
			Type: renderer.TextureType2D, Format: f, Usage: renderer.TextureUsageColorAttachment | renderer.TextureUsageSampled,
		}}
		c.Upload(gc)
		t.colors = append(t.colors, c)
	}
	if t.cfg.DepthStencil {
		d := &texture{device: t.device, width: t.cfg.Width, height: t.cfg.Height, params: renderer.TextureParameters{
			Type: renderer.TextureType2D, Format: renderer.FormatDepth24Stencil8, Usage: renderer.TextureUsageDepthStencilAttachment,
		}}
		d.Upload(gc)
		t.depth = d
	}
}

func (t *renderTarget) Begin(gc *renderer.GraphicsContext, clearColor mgl32.Vec4) {
	t.device.bindTarget(t.id)
	for _, c := range t.colors {
		c.Clear(gc)
	}
}

func (t *renderTarget) End(gc *renderer.GraphicsContext) {
	t.device.bindTarget(0)
}

func (t *renderTarget) Recycle() renderer.ResourceRecycleFunc {
	id := t.id
	if id == 0 {
		return renderer.NoopRecycle
	}
	t.id = 0
	attachments := append([]renderer.TextureDelegate(nil), t.colors...)
	if t.depth != nil {
		attachments = append(attachments, t.depth)
	}
	t.colors, t.depth = nil, nil
	release := make([]renderer.ResourceRecycleFunc, 0, len(attachments))
	for _, a := range attachments {
		release = append(release, a.Recycle())
	}
	return func(gc *renderer.GraphicsContext) {
		for _, r := range release {
			r(gc)
		}
		t.device.release(id)
	}
}
