package renderer

import (
	"strings"
	"unsafe"

	"ark-render/internal/config"
	"ark-render/internal/graphics"
)

// Backend is a bit set of graphics APIs.
type Backend uint32

const (
	BackendOpenGL Backend = 1 << iota
	BackendVulkan
	BackendBgfx
	BackendSDL3GPU
	BackendHeadless
)

func (b Backend) String() string {
	names := []string{"opengl", "vulkan", "bgfx", "sdl3-gpu", "headless"}
	var parts []string
	for i, n := range names {
		if b&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Features is fixed when a factory is built. Camera and viewport math read
// DefaultCoordinateSystem instead of assuming a convention.
type Features struct {
	Backends                Backend
	DefaultCoordinateSystem graphics.CoordinateSystem
	// CanDrawElementIncremental is set when a draw may start at a non-zero
	// index offset.
	CanDrawElementIncremental bool
	// AttributeAlignment is the byte alignment of vertex attributes.
	AttributeAlignment int
}

// RendererFactory is the capability surface of one backend. Exactly one is
// active per RenderEngine.
type RendererFactory interface {
	Features() Features
	// CreateRenderEngineContext resolves the manifest's version and viewport
	// conventions for this backend.
	CreateRenderEngineContext(r config.Renderer) *RenderEngineContext
	// OnSurfaceCreated initializes the device once a native surface exists.
	// It runs exactly once, on the render thread.
	OnSurfaceCreated(engine *RenderEngine) error
	CreateBuffer(usage BufferUsage) BufferDelegate
	CreateTexture(width, height int, params TextureParameters) TextureDelegate
	CreateRenderTarget(cfg RenderTargetConfig) RenderTarget
	CreateCamera(cs graphics.CoordinateSystem) graphics.CameraDelegate
	CreatePipelineFactory() PipelineFactory
	CreateRenderView(engine *RenderEngine) RenderView
}

// Destroyer is implemented by factories holding device state that must be
// released after every resource.
type Destroyer interface {
	Destroy(gc *GraphicsContext)
}

// PlatformInfo carries the native window glue into the backend. The
// launcher fills only what its backend needs.
type PlatformInfo struct {
	Window        any
	Width, Height int

	// MakeCurrent binds the GL context to the calling thread.
	MakeCurrent func()
	// SwapBuffers presents the GL back buffer.
	SwapBuffers func()

	VulkanProcAddr   unsafe.Pointer
	VulkanExtensions []string
	// CreateVulkanSurface returns a VkSurfaceKHR for instance.
	CreateVulkanSurface func(instance any) (uintptr, error)
}
