package headless

import (
	"ark-render/internal/graphics/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

type renderView struct {
	device        *Device
	width, height int
}

func (v *renderView) OnSurfaceCreated(gc *renderer.GraphicsContext) error {
	return nil
}

func (v *renderView) OnSurfaceChanged(gc *renderer.GraphicsContext, width, height int) {
	v.width, v.height = width, height
}

func (v *renderView) OnRenderFrame(gc *renderer.GraphicsContext, clearColor mgl32.Vec4, cmd renderer.RenderCommand) {
	v.device.beginFrame(clearColor)
	if cmd != nil {
		cmd.Draw(gc)
	}
	v.device.endFrame()
}
