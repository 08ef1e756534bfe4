// Package app runs the engine on three threads: main polls the window, core
// composes frames and renderer uploads, draws and presents them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"ark-render/internal/config"
	"ark-render/internal/core"
	"ark-render/internal/graphics"
	"ark-render/internal/graphics/renderer"
	"ark-render/internal/platform"
	"ark-render/internal/profiling"
)

const (
	slowFrame       = 16 * time.Millisecond
	defaultTickRate = 60
	pollInterval    = 10 * time.Millisecond
	queueCapacity   = 256
)

// SceneFunc builds the renderer on the core thread once the surface exists.
type SceneFunc func(rc *renderer.RenderController) (*renderer.Renderer, error)

type Option func(*App)

// WithManifestPath reloads the manifest at path while running.
func WithManifestPath(path string) Option {
	return func(a *App) { a.manifestPath = path }
}

// WithReloadHandler is called after a reloaded manifest was applied.
func WithReloadHandler(fn func(*config.Manifest)) Option {
	return func(a *App) { a.onReload = fn }
}

// WithMaxFrames stops the application after n presented frames.
func WithMaxFrames(n uint64) Option {
	return func(a *App) { a.maxFrames = n }
}

type App struct {
	surface      platform.Surface
	scene        SceneFunc
	manifestPath string
	onReload     func(*config.Manifest)
	maxFrames    uint64

	engine        *renderer.RenderEngine
	rc            *renderer.RenderController
	gc            *renderer.GraphicsContext
	width, height int

	mainLoop   *core.MessageLoop
	coreLoop   *core.MessageLoop
	renderLoop *core.MessageLoop
	pipeline   renderer.CommandPipeline
	submitted  chan struct{}
	ready      chan struct{}
	coreDone   chan struct{}
	cancel     context.CancelFunc

	// render thread only
	view    renderer.RenderView
	limiter *FPSLimiter

	// core thread only
	renderer *renderer.Renderer
	tick     uint64
	start    time.Time

	frames atomic.Uint64
}

// New applies m's runtime settings and creates the engine for m's backend
// on surface.
func New(m *config.Manifest, surface platform.Surface, scene SceneFunc, opts ...Option) (*App, error) {
	m.Apply()
	recycler := renderer.NewRecycler()
	factory, err := renderer.NewRendererFactory(m.Renderer.Backend, recycler)
	if err != nil {
		return nil, err
	}
	info := surface.Info()
	engine, err := renderer.NewRenderEngine(m.Renderer, factory, info)
	if err != nil {
		return nil, fmt.Errorf("create render engine: %w", err)
	}
	rc := renderer.NewRenderController(engine, recycler)
	a := &App{
		surface:    surface,
		scene:      scene,
		engine:     engine,
		rc:         rc,
		gc:         renderer.NewGraphicsContext(engine, rc),
		width:      info.Width,
		height:     info.Height,
		mainLoop:   core.NewMessageLoop(core.ThreadMain, queueCapacity),
		coreLoop:   core.NewMessageLoop(core.ThreadCore, queueCapacity),
		renderLoop: core.NewMessageLoop(core.ThreadRenderer, queueCapacity),
		submitted:  make(chan struct{}, 1),
		ready:      make(chan struct{}),
		coreDone:   make(chan struct{}),
		limiter:    NewFPSLimiter(),
	}
	for _, o := range opts {
		o(a)
	}
	return a, nil
}

func (a *App) Engine() *renderer.RenderEngine               { return a.engine }
func (a *App) RenderController() *renderer.RenderController { return a.rc }

// Frames is the number of frames presented so far.
func (a *App) Frames() uint64 { return a.frames.Load() }

func (a *App) RunAtMainThread(fn func())   { a.mainLoop.Post(fn) }
func (a *App) RunAtCoreThread(fn func())   { a.coreLoop.Post(fn) }
func (a *App) RunAtRenderThread(fn func()) { a.renderLoop.Post(fn) }

// Run drives the application until ctx ends, the surface is closed or the
// frame limit is reached. It must be called from the main OS thread and
// returns the first error of any thread.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.cancel = cancel
	a.surface.SetResizeCallback(a.onResize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.renderThread(gctx) })
	g.Go(func() error { return a.coreThread(gctx) })
	if a.manifestPath != "" {
		g.Go(func() error {
			if err := config.Watch(gctx, a.manifestPath, a.onReload); err != nil {
				slog.Warn("manifest hot reload disabled", "path", a.manifestPath, "err", err)
			}
			return nil
		})
	}
	a.mainThread(gctx)
	cancel()

	err := g.Wait()
	a.surface.SetResizeCallback(nil)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) mainThread(ctx context.Context) {
	core.BindThread(core.ThreadMain)
	defer core.UnbindThread(core.ThreadMain)
	for ctx.Err() == nil {
		a.surface.PollEvents(pollInterval)
		a.mainLoop.Drain()
		if a.surface.ShouldClose() {
			slog.Info("surface closed")
			return
		}
	}
	a.mainLoop.Drain()
}

// onResize runs on the main thread.
func (a *App) onResize(width, height int) {
	if !a.renderLoop.TryPost(func() {
		a.engine.OnSurfaceChanged(width, height)
		if a.view != nil {
			a.view.OnSurfaceChanged(a.gc, width, height)
		}
	}) {
		slog.Warn("render queue full, resize dropped", "width", width, "height", height)
	}
	a.coreLoop.TryPost(func() {
		a.width, a.height = width, height
		if a.renderer != nil {
			a.renderer.UpdateViewport(width, height)
		}
	})
}

func (a *App) renderThread(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	core.BindThread(core.ThreadRenderer)
	defer core.UnbindThread(core.ThreadRenderer)

	if err := a.engine.OnSurfaceCreated(); err != nil {
		return err
	}
	a.view = a.engine.CreateRenderView()
	if err := a.view.OnSurfaceCreated(a.gc); err != nil {
		return fmt.Errorf("create render view: %w", err)
	}
	a.rc.OnSurfaceReady(a.gc)
	close(a.ready)
	defer a.destroy()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.submitted:
		}
		if a.renderFrame() && a.maxFrames > 0 && a.frames.Load() >= a.maxFrames {
			a.cancel()
			return nil
		}
		a.limiter.Wait()
	}
}

// renderFrame releases and uploads resources, then presents the newest
// composed frame. It reports whether a frame was presented.
func (a *App) renderFrame() bool {
	profiling.ResetFrame()
	start := time.Now()
	a.renderLoop.Drain()
	a.rc.OnDrawFrame(a.gc)

	cmd, tick, ok := a.pipeline.Take()
	if !ok {
		return false
	}
	stop := profiling.Track("view.OnRenderFrame")
	a.view.OnRenderFrame(a.gc, mgl32.Vec4(config.GetClearColor()), cmd)
	stop()
	a.frames.Add(1)

	if d := time.Since(start); d > slowFrame {
		slog.Info("slow frame", "tick", tick, "duration", d, "top", profiling.TopN(5))
	}
	return true
}

// destroy waits for the core thread to drop its resources, then releases
// every handle and the device.
func (a *App) destroy() {
	<-a.coreDone
	a.renderLoop.Drain()
	a.engine.Destroy(a.gc, a.rc)
	slog.Debug("renderer stopped", "frames", a.frames.Load(), "dropped", a.pipeline.Dropped())
}

func (a *App) coreThread(ctx context.Context) error {
	defer close(a.coreDone)
	select {
	case <-ctx.Done():
		return nil
	case <-a.ready:
	}

	core.BindThread(core.ThreadCore)
	r, err := a.scene(a.rc)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	a.renderer = r
	defer r.Dispose()
	r.UpdateViewport(a.width, a.height)

	a.start = time.Now()
	interval := tickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	err = a.coreLoop.Run(ctx, ticker.C, func(time.Time) {
		a.compose()
		if next := tickInterval(); next != interval {
			interval = next
			ticker.Reset(interval)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) compose() {
	a.tick++
	cmd := a.renderer.Compose(graphics.NewRenderRequest(a.tick, time.Since(a.start)))
	a.pipeline.Submit(a.tick, cmd)
	select {
	case a.submitted <- struct{}{}:
	default:
	}
}

// tickInterval paces composing at the FPS limit, or 60 Hz when unlimited.
func tickInterval() time.Duration {
	limit := config.GetFPSLimit()
	if limit <= 0 {
		limit = defaultTickRate
	}
	return time.Second / time.Duration(limit)
}
