package headless

import (
	"log/slog"

	"ark-render/internal/check"
	"ark-render/internal/config"
	"ark-render/internal/graphics"
	"ark-render/internal/graphics/renderer"
)

func init() {
	renderer.RegisterBackend("headless", func(r *renderer.Recycler) renderer.RendererFactory {
		return NewFactory(r)
	})
}

// Factory follows OpenGL conventions: RHS and a [-1, 1] clip depth range.
type Factory struct {
	recycler *renderer.Recycler
	device   *Device
}

func NewFactory(recycler *renderer.Recycler) *Factory {
	return &Factory{recycler: recycler, device: NewDevice()}
}

// Device exposes the in-memory state for inspection.
func (f *Factory) Device() *Device {
	return f.device
}

func (f *Factory) Features() renderer.Features {
	return renderer.Features{
		Backends:                  renderer.BackendHeadless,
		DefaultCoordinateSystem:   graphics.CoordinateSystemRHS,
		CanDrawElementIncremental: true,
		AttributeAlignment:        1,
	}
}

func (f *Factory) CreateRenderEngineContext(r config.Renderer) *renderer.RenderEngineContext {
	v, err := renderer.ParseRendererVersion(r.Version)
	if err != nil || !v.IsOpenGL() {
		if err == nil && v != renderer.VersionAuto {
			check.Warnf("headless backend emulates OpenGL, ignoring version %s", v)
		}
		v = renderer.VersionOpenGL41
	}
	ctx := renderer.NewRenderEngineContext(v, graphics.NewViewport(-1, 1, 1, -1, -1, 1))
	ctx.Define("ARK_HEADLESS", "1")
	return ctx
}

func (f *Factory) OnSurfaceCreated(engine *renderer.RenderEngine) error {
	slog.Debug("headless surface created", "version", engine.Version())
	return nil
}

func (f *Factory) CreateBuffer(usage renderer.BufferUsage) renderer.BufferDelegate {
	return newBuffer(f.device, usage)
}

func (f *Factory) CreateTexture(width, height int, params renderer.TextureParameters) renderer.TextureDelegate {
	return &texture{device: f.device, width: width, height: height, params: params}
}

func (f *Factory) CreateRenderTarget(cfg renderer.RenderTargetConfig) renderer.RenderTarget {
	return &renderTarget{device: f.device, cfg: cfg}
}

func (f *Factory) CreateCamera(cs graphics.CoordinateSystem) graphics.CameraDelegate {
	return graphics.CameraDelegateFor(cs, false)
}

func (f *Factory) CreatePipelineFactory() renderer.PipelineFactory {
	return &pipelineFactory{device: f.device}
}

func (f *Factory) CreateRenderView(engine *renderer.RenderEngine) renderer.RenderView {
	w, h := engine.SurfaceSize()
	return &renderView{device: f.device, width: w, height: h}
}
