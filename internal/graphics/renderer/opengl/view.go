package opengl

import (
	"ark-render/internal/graphics/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// renderView draws into the default framebuffer and swaps through the
// platform hook.
type renderView struct {
	engine *renderer.RenderEngine
}

func (v *renderView) OnSurfaceCreated(gc *renderer.GraphicsContext) error {
	w, h := v.engine.SurfaceSize()
	gl.Viewport(0, 0, int32(w), int32(h))
	return nil
}

func (v *renderView) OnSurfaceChanged(gc *renderer.GraphicsContext, width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (v *renderView) OnRenderFrame(gc *renderer.GraphicsContext, clearColor mgl32.Vec4, cmd renderer.RenderCommand) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.ClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if cmd != nil {
		cmd.Draw(gc)
	}
	glCheckError("render frame")
	if swap := v.engine.Platform().SwapBuffers; swap != nil {
		swap()
	}
}
