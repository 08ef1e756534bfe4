// Command ark-triangle renders spinning colored triangles on any registered
// backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"

	"ark-render/internal/app"
	"ark-render/internal/config"
	"ark-render/internal/core"
	"ark-render/internal/graphics"
	"ark-render/internal/graphics/renderer"
	_ "ark-render/internal/graphics/renderer/headless"
	_ "ark-render/internal/graphics/renderer/opengl"
	_ "ark-render/internal/graphics/renderer/vulkan"
	"ark-render/internal/logx"
	"ark-render/internal/platform"
	"ark-render/internal/profiling"
)

func init() {
	runtime.LockOSThread()
}

var (
	manifestPath = flag.String("manifest", "", "YAML or TOML manifest; reloaded on change")
	backend      = flag.String("backend", "", "renderer backend, overrides the manifest")
	frames       = flag.Uint64("frames", 0, "exit after this many frames")
	verbose      = flag.Bool("v", false, "log info messages")
	debug        = flag.Bool("vv", false, "log debug messages")
	quiet        = flag.Bool("q", false, "log errors only")
)

func main() {
	flag.Parse()

	m, err := loadManifest()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level := logx.ParseLevel(m.Logging.Level)
	if *verbose || *debug || *quiet {
		level = logx.LevelFromFlags(*debug, *verbose, *quiet)
	}
	logx.SetDefaultLogger(level)

	if err := run(m); err != nil {
		slog.Error("ark-triangle failed", "err", err)
		closer.Exit(1)
	}
	closer.Close()
}

func loadManifest() (*config.Manifest, error) {
	m := config.Default()
	if *manifestPath != "" {
		var err error
		if m, err = config.Load(*manifestPath); err != nil {
			return nil, err
		}
	}
	if *backend != "" {
		m.Renderer.Backend = *backend
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func run(m *config.Manifest) error {
	surface, err := openSurface(m)
	if err != nil {
		return err
	}
	defer func() {
		surface.Destroy()
		if _, ok := surface.(*platform.Window); ok {
			platform.Terminate()
		}
	}()

	if w, ok := surface.(*platform.Window); ok {
		w.SetActionCallback(platform.NewKeymap(), func(a platform.Action) { handleAction(w, a) })
	}

	var opts []app.Option
	if *manifestPath != "" {
		opts = append(opts, app.WithManifestPath(*manifestPath))
	}
	if *frames > 0 {
		opts = append(opts, app.WithMaxFrames(*frames))
	}
	a, err := app.New(m, surface, triangles, opts...)
	if err != nil {
		return err
	}

	// Signals stop the loops; the window is torn down on the main thread.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	closer.Bind(func() {
		cancel()
		<-done
	})
	defer close(done)
	return a.Run(ctx)
}

func handleAction(w *platform.Window, a platform.Action) {
	switch a {
	case platform.ActionQuit:
		w.SetShouldClose(true)
	case platform.ActionToggleVSync:
		config.SetVSync(!config.GetVSync())
		slog.Info("vsync toggled", "enabled", config.GetVSync())
	case platform.ActionLogProfile:
		slog.Info("profile", "top", profiling.TopN(5))
	}
}

func openSurface(m *config.Manifest) (platform.Surface, error) {
	if m.Renderer.Backend == "headless" {
		return platform.NewOffscreen(m.Application.Width, m.Application.Height), nil
	}
	if err := platform.Init(); err != nil {
		return nil, err
	}
	w, err := platform.Open(m.Application, m.Renderer)
	if err != nil {
		platform.Terminate()
		return nil, err
	}
	return w, nil
}

var triangle = renderer.Model{
	Vertices: []mgl32.Vec3{{-0.25, -0.2, 0}, {0.25, -0.2, 0}, {0, 0.25, 0}},
	Indices:  []uint16{0, 1, 2},
}

// triangles lays out three triangles, each spinning at its own rate.
func triangles(rc *renderer.RenderController) (*renderer.Renderer, error) {
	layer := graphics.NewRenderLayer()
	composer := renderer.NewDrawElementsComposer(layer)
	composer.SetModel(0, triangle)
	ctx := layer.MakeLayerContext()

	start := time.Now()
	colors := []mgl32.Vec4{{1, 0.2, 0.2, 1}, {0.2, 1, 0.2, 1}, {0.2, 0.4, 1, 1}}
	for i, color := range colors {
		speed := float32(i + 1)
		theta := core.NewVariableFunc(func() float32 {
			return speed * float32(time.Since(start).Seconds())
		})
		rotation := graphics.NewRotation(theta, mgl32.Vec3{0, 0, 1})
		transform := graphics.NewTransform3D(rotation, nil, nil)
		obj := graphics.NewRenderObject(0, core.NewConst(mgl32.Vec3{float32(i-1) * 0.6, 0, 0}), transform)
		v := graphics.NewVaryings()
		v.Set(renderer.ColorVarying, core.NewConst(color))
		obj.SetVaryings(v)
		ctx.Add(obj, nil, nil)
	}

	camera := rc.RenderEngine().CreateCamera(graphics.CoordinateSystemDefault)
	return renderer.NewRenderer(rc, camera, composer)
}
