package renderer

import "github.com/go-gl/mathgl/mgl32"

// RenderTargetConfig describes an offscreen framebuffer.
type RenderTargetConfig struct {
	Width, Height int
	ColorFormats  []TextureFormat
	DepthStencil  bool
}

// RenderTarget is an offscreen framebuffer. Upload allocates it and its
// attachments.
type RenderTarget interface {
	Resource
	Config() RenderTargetConfig
	ColorAttachments() []TextureDelegate
	// Begin binds the target and clears it. End restores the default target.
	Begin(gc *GraphicsContext, clearColor mgl32.Vec4)
	End(gc *GraphicsContext)
}

// RenderTargetCommand draws cmd into target.
func RenderTargetCommand(target RenderTarget, clearColor mgl32.Vec4, cmd RenderCommand) RenderCommand {
	return RenderCommandFunc(func(gc *GraphicsContext) {
		if target.ID() == 0 {
			target.Upload(gc)
		}
		target.Begin(gc, clearColor)
		cmd.Draw(gc)
		target.End(gc)
	})
}
