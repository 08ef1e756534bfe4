package vulkan

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"ark-render/internal/graphics/renderer"
)

// renderView hands each frame to asche: AcquireNextImage calls back into
// device.recordFrame, which replays the pending command.
type renderView struct {
	d *device
}

func (v *renderView) OnSurfaceCreated(gc *renderer.GraphicsContext) error {
	return nil
}

// OnSurfaceChanged is a no-op; asche recreates the swapchain when acquiring
// reports it out of date.
func (v *renderView) OnSurfaceChanged(gc *renderer.GraphicsContext, width, height int) {
	slog.Debug("vulkan surface changed", "width", width, "height", height)
}

func (v *renderView) OnRenderFrame(gc *renderer.GraphicsContext, clearColor mgl32.Vec4, cmd renderer.RenderCommand) {
	d := v.d
	d.gc, d.pending, d.clear = gc, cmd, clearColor
	defer func() { d.gc, d.pending = nil, nil }()

	idx, outdated, err := d.ctx.AcquireNextImage()
	if err == nil && outdated {
		idx, _, err = d.ctx.AcquireNextImage()
	}
	if err != nil {
		slog.Error("acquire swapchain image", "err", err)
		return
	}
	if _, err := d.ctx.PresentImage(idx); err != nil {
		slog.Error("present swapchain image", "err", err)
	}
}
