package renderer

import (
	"ark-render/internal/core"
)

// GraphicsContext is the render thread's per-surface token. Backends keep
// their device state in its traits.
type GraphicsContext struct {
	engine     *RenderEngine
	controller *RenderController
	tick       uint64
	traits     core.Traits
	destroyed  bool
}

func NewGraphicsContext(engine *RenderEngine, controller *RenderController) *GraphicsContext {
	return &GraphicsContext{engine: engine, controller: controller}
}

func (gc *GraphicsContext) RenderEngine() *RenderEngine {
	return gc.engine
}

func (gc *GraphicsContext) RenderController() *RenderController {
	return gc.controller
}

// Tick counts frames drawn with this context.
func (gc *GraphicsContext) Tick() uint64 {
	return gc.tick
}

func (gc *GraphicsContext) onDrawFrame() {
	gc.tick++
}

func (gc *GraphicsContext) Traits() *core.Traits {
	return &gc.traits
}

// Destroy marks the context unusable. Recycling against it afterwards is a
// contract violation.
func (gc *GraphicsContext) Destroy() {
	gc.destroyed = true
}

func (gc *GraphicsContext) IsDestroyed() bool {
	return gc.destroyed
}
