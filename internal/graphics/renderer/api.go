package renderer

import (
	"sync"

	"ark-render/internal/graphics"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderCommand is a unit of render thread work produced by the core
// thread. Uploads it needs happen inside Draw, before any bind.
type RenderCommand interface {
	Draw(gc *GraphicsContext)
}

type RenderCommandFunc func(gc *GraphicsContext)

func (f RenderCommandFunc) Draw(gc *GraphicsContext) { f(gc) }

// RenderCommandList draws its commands in order.
type RenderCommandList []RenderCommand

func (l RenderCommandList) Draw(gc *GraphicsContext) {
	for _, c := range l {
		if c != nil {
			c.Draw(gc)
		}
	}
}

// RenderView presents frames to the surface.
type RenderView interface {
	OnSurfaceCreated(gc *GraphicsContext) error
	OnSurfaceChanged(gc *GraphicsContext, width, height int)
	// OnRenderFrame clears to clearColor, draws cmd and presents.
	OnRenderFrame(gc *GraphicsContext, clearColor mgl32.Vec4, cmd RenderCommand)
}

// Composer turns scene state into render commands on the core thread.
type Composer interface {
	Init(rc *RenderController) error
	Compose(req *graphics.RenderRequest, camera *graphics.Camera) RenderCommand
	Dispose()
	SetViewport(width, height int)
}

// CommandPipeline hands the newest composed frame from the core thread to the
// render thread. Older untaken frames are dropped.
type CommandPipeline struct {
	mu      sync.Mutex
	pending RenderCommand
	tick    uint64
	dropped uint64
}

// Submit publishes cmd for tick, replacing an untaken frame.
func (p *CommandPipeline) Submit(tick uint64, cmd RenderCommand) {
	p.mu.Lock()
	if p.pending != nil {
		p.dropped++
	}
	p.pending, p.tick = cmd, tick
	p.mu.Unlock()
}

// Take returns the newest frame, or false when nothing new was submitted.
func (p *CommandPipeline) Take() (RenderCommand, uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cmd := p.pending
	p.pending = nil
	return cmd, p.tick, cmd != nil
}

// Dropped counts frames replaced before the render thread took them.
func (p *CommandPipeline) Dropped() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}
