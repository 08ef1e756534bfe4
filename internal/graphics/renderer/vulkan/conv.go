package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"
)

func bufferUsageFlags(usage renderer.BufferUsage) vk.BufferUsageFlags {
	var bits vk.BufferUsageFlagBits
	if usage.Has(renderer.UsageVertex) {
		bits |= vk.BufferUsageVertexBufferBit
	}
	if usage.Has(renderer.UsageIndex) {
		bits |= vk.BufferUsageIndexBufferBit
	}
	if usage.Has(renderer.UsageStorage) {
		bits |= vk.BufferUsageStorageBufferBit
	}
	if usage.Has(renderer.UsageDrawIndirect) {
		bits |= vk.BufferUsageIndirectBufferBit
	}
	bits |= vk.BufferUsageTransferDstBit | vk.BufferUsageTransferSrcBit
	return vk.BufferUsageFlags(bits)
}

// hostVisible reports whether a buffer lives in mapped memory instead of
// behind a staging copy.
func hostVisible(usage renderer.BufferUsage) bool {
	return usage.Has(renderer.UsageHostVisible) || usage.Has(renderer.UsageDynamic)
}

func textureFormat(f renderer.TextureFormat) vk.Format {
	switch f {
	case renderer.FormatRGBA8:
		return vk.FormatR8g8b8a8Unorm
	case renderer.FormatRGB8:
		return vk.FormatR8g8b8Unorm
	case renderer.FormatRG8:
		return vk.FormatR8g8Unorm
	case renderer.FormatR8:
		return vk.FormatR8Unorm
	case renderer.FormatRGBA16F:
		return vk.FormatR16g16b16a16Sfloat
	case renderer.FormatRGBA32F:
		return vk.FormatR32g32b32a32Sfloat
	case renderer.FormatDepth24Stencil8:
		return vk.FormatD24UnormS8Uint
	}
	check.Fatalf("Unsupported texture format: %d", f)
	return vk.FormatUndefined
}

// imageLayers returns the array layer count and view type of a texture type.
func imageLayers(t renderer.TextureType) (uint32, vk.ImageViewType) {
	switch t {
	case renderer.TextureType2D:
		return 1, vk.ImageViewType2d
	case renderer.TextureTypeCubemap:
		return 6, vk.ImageViewTypeCube
	}
	check.Fatalf("Unsupported texture type: %d", t)
	return 0, 0
}

func imageUsage(params renderer.TextureParameters) vk.ImageUsageFlags {
	bits := vk.ImageUsageTransferDstBit
	if params.Usage&renderer.TextureUsageSampled != 0 {
		bits |= vk.ImageUsageSampledBit
	}
	if params.Usage&renderer.TextureUsageColorAttachment != 0 {
		bits |= vk.ImageUsageColorAttachmentBit
	}
	if params.Usage&renderer.TextureUsageDepthStencilAttachment != 0 || params.Format.IsDepth() {
		bits |= vk.ImageUsageDepthStencilAttachmentBit
	}
	return vk.ImageUsageFlags(bits)
}

func aspectMask(f renderer.TextureFormat) vk.ImageAspectFlags {
	if f.IsDepth() {
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

func filter(f renderer.TextureFilter) vk.Filter {
	if f == renderer.FilterNearest {
		return vk.FilterNearest
	}
	return vk.FilterLinear
}

func addressMode(w renderer.TextureWrap) vk.SamplerAddressMode {
	switch w {
	case renderer.WrapRepeat:
		return vk.SamplerAddressModeRepeat
	case renderer.WrapMirroredRepeat:
		return vk.SamplerAddressModeMirroredRepeat
	}
	return vk.SamplerAddressModeClampToEdge
}

func topology(m renderer.DrawMode) vk.PrimitiveTopology {
	switch m {
	case renderer.DrawTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case renderer.DrawLines:
		return vk.PrimitiveTopologyLineList
	case renderer.DrawPoints:
		return vk.PrimitiveTopologyPointList
	}
	return vk.PrimitiveTopologyTriangleList
}

// attributeFormat maps a float attribute width to its vertex format.
func attributeFormat(components int) vk.Format {
	switch components {
	case 1:
		return vk.FormatR32Sfloat
	case 2:
		return vk.FormatR32g32Sfloat
	case 3:
		return vk.FormatR32g32b32Sfloat
	case 4:
		return vk.FormatR32g32b32a32Sfloat
	}
	check.Fatalf("vertex attribute with %d components", components)
	return vk.FormatUndefined
}

// apiVersion encodes a renderer version for VkApplicationInfo.
func apiVersion(v renderer.RendererVersion) uint32 {
	check.Check(v.IsVulkan(), "renderer version %s is not a Vulkan version", v)
	return vk.MakeVersion(v.Major(), v.Minor(), 0)
}
