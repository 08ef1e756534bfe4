package vulkan

import (
	"log/slog"

	"github.com/vulkan-go/asche"
	vk "github.com/vulkan-go/vulkan"

	"ark-render/internal/graphics/renderer"
)

// surfaceApp describes the engine to asche, which owns instance, device and
// swapchain creation.
type surfaceApp struct {
	asche.BaseVulkanApp
	d       *device
	engine  *renderer.RenderEngine
	version renderer.RendererVersion
	name    string
}

func (a *surfaceApp) VulkanInit(ctx asche.Context) error {
	a.d.attach(ctx)
	ctx.SetOnPrepare(a.d.prepareSwapchain)
	ctx.SetOnCleanup(a.d.cleanupSwapchain)
	ctx.SetOnInvalidate(a.d.recordFrame)
	return nil
}

func (a *surfaceApp) VulkanAppName() string            { return a.name }
func (a *surfaceApp) VulkanAPIVersion() vk.Version     { return vk.Version(apiVersion(a.version)) }
func (a *surfaceApp) VulkanMode() asche.VulkanMode     { return asche.VulkanGraphics | asche.VulkanPresent }
func (a *surfaceApp) VulkanDebug() bool                { return a.engine.Manifest().Debug }
func (a *surfaceApp) VulkanDeviceExtensions() []string { return []string{"VK_KHR_swapchain"} }

func (a *surfaceApp) VulkanInstanceExtensions() []string {
	return a.engine.Platform().VulkanExtensions
}

func (a *surfaceApp) VulkanSurface(instance vk.Instance) vk.Surface {
	create := a.engine.Platform().CreateVulkanSurface
	if create == nil {
		slog.Error("platform cannot create a Vulkan surface")
		return vk.NullSurface
	}
	ptr, err := create(instance)
	if err != nil {
		slog.Error("create Vulkan surface", "err", err)
		return vk.NullSurface
	}
	return vk.SurfaceFromPointer(ptr)
}

func (a *surfaceApp) VulkanSwapchainDimensions() *asche.SwapchainDimensions {
	w, h := a.engine.SurfaceSize()
	return &asche.SwapchainDimensions{Width: uint32(w), Height: uint32(h), Format: vk.FormatB8g8r8a8Unorm}
}
