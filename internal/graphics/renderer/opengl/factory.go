// Package opengl is the OpenGL 4.1 core backend.
package opengl

import (
	"fmt"
	"log/slog"

	"ark-render/internal/check"
	"ark-render/internal/config"
	"ark-render/internal/graphics"
	"ark-render/internal/graphics/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
)

func init() {
	renderer.RegisterBackend("opengl", func(r *renderer.Recycler) renderer.RendererFactory {
		return NewFactory(r)
	})
}

type Factory struct {
	recycler *renderer.Recycler
}

func NewFactory(recycler *renderer.Recycler) *Factory {
	return &Factory{recycler: recycler}
}

func (f *Factory) Features() renderer.Features {
	return renderer.Features{
		Backends:                  renderer.BackendOpenGL,
		DefaultCoordinateSystem:   graphics.CoordinateSystemRHS,
		CanDrawElementIncremental: true,
		AttributeAlignment:        1,
	}
}

func (f *Factory) CreateRenderEngineContext(r config.Renderer) *renderer.RenderEngineContext {
	v, err := renderer.ParseRendererVersion(r.Version)
	if err != nil {
		check.Fatalf("opengl backend: %v", err)
	}
	if v != renderer.VersionAuto && !v.IsOpenGL() {
		check.Fatalf("opengl backend cannot run renderer version %s", v)
	}
	debugChecks.Store(r.Debug)
	ctx := renderer.NewRenderEngineContext(v, graphics.NewViewport(-1, 1, 1, -1, -1, 1))
	ctx.Annotate("sampler_binding", "")
	ctx.Define("ARK_OPENGL", "1")
	return ctx
}

// OnSurfaceCreated loads GL functions on the calling thread, which must own
// the context, and resolves an automatic version from the driver.
func (f *Factory) OnSurfaceCreated(engine *renderer.RenderEngine) error {
	if mc := engine.Platform().MakeCurrent; mc != nil {
		mc()
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("load GL functions: %w", err)
	}
	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	detected := renderer.RendererVersion(major*10 + minor)

	ctx := engine.Context()
	if ctx.Version() == renderer.VersionAuto {
		ctx.SetVersion(min(detected, renderer.VersionOpenGL46))
	} else if detected < ctx.Version() {
		return fmt.Errorf("driver provides OpenGL %d.%d, manifest asks for %s", major, minor, ctx.Version())
	}
	slog.Info("OpenGL context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))
	return nil
}

func (f *Factory) CreateBuffer(usage renderer.BufferUsage) renderer.BufferDelegate {
	return newBuffer(usage)
}

func (f *Factory) CreateTexture(width, height int, params renderer.TextureParameters) renderer.TextureDelegate {
	return newTexture(width, height, params)
}

func (f *Factory) CreateRenderTarget(cfg renderer.RenderTargetConfig) renderer.RenderTarget {
	return &renderTarget{cfg: cfg}
}

func (f *Factory) CreateCamera(cs graphics.CoordinateSystem) graphics.CameraDelegate {
	return graphics.CameraDelegateFor(cs, false)
}

func (f *Factory) CreatePipelineFactory() renderer.PipelineFactory {
	return pipelineFactory{}
}

func (f *Factory) CreateRenderView(engine *renderer.RenderEngine) renderer.RenderView {
	return &renderView{engine: engine}
}
