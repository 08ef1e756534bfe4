// Package vulkan is the Vulkan 1.1+ backend. Shaders arrive as SPIR-V;
// pipelines without it are skipped.
package vulkan

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vulkan-go/asche"
	vk "github.com/vulkan-go/vulkan"

	"ark-render/internal/check"
	"ark-render/internal/config"
	"ark-render/internal/graphics"
	"ark-render/internal/graphics/renderer"
)

func init() {
	renderer.RegisterBackend("vulkan", func(r *renderer.Recycler) renderer.RendererFactory {
		return NewFactory(r)
	})
}

type Factory struct {
	recycler *renderer.Recycler
	dev      *device
}

func NewFactory(recycler *renderer.Recycler) *Factory {
	return &Factory{recycler: recycler, dev: &device{}}
}

func (f *Factory) Features() renderer.Features {
	return renderer.Features{
		Backends:                  renderer.BackendVulkan,
		DefaultCoordinateSystem:   graphics.CoordinateSystemLHS,
		CanDrawElementIncremental: true,
		AttributeAlignment:        4,
	}
}

func (f *Factory) CreateRenderEngineContext(r config.Renderer) *renderer.RenderEngineContext {
	v, err := renderer.ParseRendererVersion(r.Version)
	if err != nil {
		check.Fatalf("vulkan backend: %v", err)
	}
	switch {
	case v == renderer.VersionAuto:
		v = renderer.VersionVulkan12
	case !v.IsVulkan():
		check.Fatalf("vulkan backend cannot run renderer version %s", v)
	}
	ctx := renderer.NewRenderEngineContext(v, graphics.NewViewport(0, 0, 1, 1, 0, 1))
	ctx.Define("ARK_VULKAN", "1")
	ctx.Annotate("uniforms", "push_constant")
	return ctx
}

func (f *Factory) OnSurfaceCreated(engine *renderer.RenderEngine) error {
	p := engine.Platform()
	if p.VulkanProcAddr == nil {
		return errors.New("platform has no Vulkan loader")
	}
	vk.SetGetInstanceProcAddr(p.VulkanProcAddr)
	if err := vk.Init(); err != nil {
		return fmt.Errorf("init Vulkan loader: %w", err)
	}
	app := &surfaceApp{d: f.dev, engine: engine, version: engine.Context().Version(), name: "ark-render"}
	platform, err := asche.NewPlatform(app)
	if err != nil {
		return fmt.Errorf("create Vulkan platform: %w", err)
	}
	props := platform.PhysicalDeviceProperies()
	props.Deref()
	slog.Info("Vulkan device",
		"name", vk.ToString(props.DeviceName[:]),
		"api", engine.Context().Version().String())
	return nil
}

// Destroy waits for the device and releases swapchain and device state.
func (f *Factory) Destroy(gc *renderer.GraphicsContext) {
	f.dev.destroy()
}

func (f *Factory) CreateBuffer(usage renderer.BufferUsage) renderer.BufferDelegate {
	return newBuffer(f.dev, usage)
}

func (f *Factory) CreateTexture(width, height int, params renderer.TextureParameters) renderer.TextureDelegate {
	return newTexture(f.dev, width, height, params)
}

func (f *Factory) CreateRenderTarget(cfg renderer.RenderTargetConfig) renderer.RenderTarget {
	return &renderTarget{d: f.dev, cfg: cfg}
}

func (f *Factory) CreateCamera(cs graphics.CoordinateSystem) graphics.CameraDelegate {
	return graphics.CameraDelegateFor(cs, true)
}

func (f *Factory) CreatePipelineFactory() renderer.PipelineFactory {
	return pipelineFactory{d: f.dev}
}

func (f *Factory) CreateRenderView(engine *renderer.RenderEngine) renderer.RenderView {
	return &renderView{d: f.dev}
}
