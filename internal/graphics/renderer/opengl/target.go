package opengl

import (
	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type renderTarget struct {
	cfg          renderer.RenderTargetConfig
	fbo          uint32
	depthStencil uint32
	colors       []*texture
	prevViewport [4]int32
}

func (t *renderTarget) ID() uint64                          { return uint64(t.fbo) }
func (t *renderTarget) Config() renderer.RenderTargetConfig { return t.cfg }

func (t *renderTarget) ColorAttachments() []renderer.TextureDelegate {
	out := make([]renderer.TextureDelegate, len(t.colors))
	for i, c := range t.colors {
		out[i] = c
	}
	return out
}

func (t *renderTarget) Upload(gc *renderer.GraphicsContext) {
	if t.fbo != 0 {
		return
	}
	w, h := int32(t.cfg.Width), int32(t.cfg.Height)
	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	t.colors = t.colors[:0]
	drawBuffers := make([]uint32, 0, len(t.cfg.ColorFormats))
	for i, f := range t.cfg.ColorFormats {
		c := newTexture(t.cfg.Width, t.cfg.Height, renderer.TextureParameters{
			Type: renderer.TextureType2D, Format: f, Usage: renderer.TextureUsageColorAttachment | renderer.TextureUsageSampled,
		})
		c.Upload(gc)
		attachment := gl.COLOR_ATTACHMENT0 + uint32(i)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, c.id, 0)
		t.colors = append(t.colors, c)
		drawBuffers = append(drawBuffers, attachment)
	}
	if len(drawBuffers) > 0 {
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	}
	if t.cfg.DepthStencil {
		gl.GenRenderbuffers(1, &t.depthStencil)
		gl.BindRenderbuffer(gl.RENDERBUFFER, t.depthStencil)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, w, h)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, t.depthStencil)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	check.Check(status == gl.FRAMEBUFFER_COMPLETE, "framebuffer incomplete: 0x%x", status)
}

func (t *renderTarget) Begin(gc *renderer.GraphicsContext, clearColor mgl32.Vec4) {
	gl.GetIntegerv(gl.VIEWPORT, &t.prevViewport[0])
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.cfg.Width), int32(t.cfg.Height))
	gl.ClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3])
	mask := uint32(gl.COLOR_BUFFER_BIT)
	if t.cfg.DepthStencil {
		mask |= gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(mask)
}

func (t *renderTarget) End(gc *renderer.GraphicsContext) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	v := t.prevViewport
	gl.Viewport(v[0], v[1], v[2], v[3])
	glCheckError("render target")
}

func (t *renderTarget) Recycle() renderer.ResourceRecycleFunc {
	fbo, rb := t.fbo, t.depthStencil
	if fbo == 0 {
		return renderer.NoopRecycle
	}
	t.fbo, t.depthStencil = 0, 0
	release := make([]renderer.ResourceRecycleFunc, 0, len(t.colors))
	for _, c := range t.colors {
		release = append(release, c.Recycle())
	}
	t.colors = nil
	return func(gc *renderer.GraphicsContext) {
		for _, r := range release {
			r(gc)
		}
		if rb != 0 {
			gl.DeleteRenderbuffers(1, &rb)
		}
		gl.DeleteFramebuffers(1, &fbo)
	}
}
