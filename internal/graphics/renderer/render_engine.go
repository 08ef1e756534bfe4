package renderer

import (
	"fmt"
	"log/slog"

	"ark-render/internal/check"
	"ark-render/internal/config"
	"ark-render/internal/core"
	"ark-render/internal/graphics"

	"github.com/go-gl/mathgl/mgl32"
)

// RenderEngine drives one backend: it owns the factory and its context and
// maps between engine and renderer coordinates.
type RenderEngine struct {
	manifest       config.Renderer
	factory        RendererFactory
	platform       PlatformInfo
	ctx            *RenderEngineContext
	cs             graphics.CoordinateSystem
	width, height  int
	surfaceCreated bool
}

// NewRenderEngine resolves the coordinate system against the backend
// default and builds the engine context.
func NewRenderEngine(manifest config.Renderer, factory RendererFactory, platform PlatformInfo) (*RenderEngine, error) {
	var cs graphics.CoordinateSystem
	if err := cs.UnmarshalText([]byte(manifest.CoordinateSystem)); err != nil {
		return nil, fmt.Errorf("renderer manifest: %w", err)
	}
	e := &RenderEngine{
		manifest: manifest,
		factory:  factory,
		platform: platform,
		ctx:      factory.CreateRenderEngineContext(manifest),
		cs:       cs.Resolve(factory.Features().DefaultCoordinateSystem),
		width:    platform.Width,
		height:   platform.Height,
	}
	return e, nil
}

func (e *RenderEngine) RendererFactory() RendererFactory            { return e.factory }
func (e *RenderEngine) Context() *RenderEngineContext               { return e.ctx }
func (e *RenderEngine) Manifest() config.Renderer                   { return e.manifest }
func (e *RenderEngine) Platform() PlatformInfo                      { return e.platform }
func (e *RenderEngine) CoordinateSystem() graphics.CoordinateSystem { return e.cs }
func (e *RenderEngine) Viewport() graphics.Viewport                 { return e.ctx.Viewport() }
func (e *RenderEngine) Version() RendererVersion                    { return e.ctx.Version() }
func (e *RenderEngine) SurfaceSize() (int, int)                     { return e.width, e.height }

// IsYUp reports whether +Y points up the screen in engine coordinates.
func (e *RenderEngine) IsYUp() bool {
	return e.cs != graphics.CoordinateSystemLHS
}

// OnSurfaceCreated initializes the backend. It runs once, on the render
// thread.
func (e *RenderEngine) OnSurfaceCreated() error {
	core.CheckThread(core.ThreadRenderer)
	check.Check(!e.surfaceCreated, "render engine surface created twice")
	if err := e.factory.OnSurfaceCreated(e); err != nil {
		return fmt.Errorf("%s backend: %w", e.factory.Features().Backends, err)
	}
	e.surfaceCreated = true
	slog.Info("render engine ready",
		"backend", e.factory.Features().Backends,
		"version", e.Version(),
		"coordinate_system", e.cs)
	return nil
}

func (e *RenderEngine) OnSurfaceChanged(width, height int) {
	e.width, e.height = width, height
}

// CreateCamera returns a camera using the backend's depth convention. A
// default cs resolves to the engine's.
func (e *RenderEngine) CreateCamera(cs graphics.CoordinateSystem) *graphics.Camera {
	cs = cs.Resolve(e.cs)
	return graphics.NewCamera(cs, e.factory.CreateCamera(cs))
}

func (e *RenderEngine) CreateRenderView() RenderView {
	return e.factory.CreateRenderView(e)
}

// ToEnginePosition converts a window position, origin top-left, into engine
// surface coordinates.
func (e *RenderEngine) ToEnginePosition(p mgl32.Vec2) mgl32.Vec2 {
	if e.IsYUp() {
		return mgl32.Vec2{p.X(), float32(e.height) - p.Y()}
	}
	return p
}

// ToRendererRect converts a rect with a top-left origin into the backend's
// framebuffer space, flipping y for bottom-left origin backends.
func (e *RenderEngine) ToRendererRect(r graphics.Rect) graphics.Rect {
	if e.factory.Features().DefaultCoordinateSystem != graphics.CoordinateSystemRHS {
		return r
	}
	h := float32(e.height)
	return graphics.Rect{Left: r.Left, Top: h - r.Bottom, Right: r.Right, Bottom: h - r.Top}
}

// Destroy releases every recycled handle, then backend device state, then
// invalidates gc. It runs on the render thread.
func (e *RenderEngine) Destroy(gc *GraphicsContext, rc *RenderController) {
	core.CheckThread(core.ThreadRenderer)
	rc.Destroy(gc)
	if d, ok := e.factory.(Destroyer); ok {
		d.Destroy(gc)
	}
	gc.Destroy()
}
