package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"
)

type texture struct {
	d             *device
	params        renderer.TextureParameters
	width, height int

	id      uint64
	image   vk.Image
	mem     vk.DeviceMemory
	view    vk.ImageView
	sampler vk.Sampler
	layout  vk.ImageLayout
}

func newTexture(d *device, width, height int, params renderer.TextureParameters) *texture {
	return &texture{d: d, width: width, height: height, params: params}
}

func (t *texture) ID() uint64                 { return t.id }
func (t *texture) Type() renderer.TextureType { return t.params.Type }
func (t *texture) Width() int                 { return t.width }
func (t *texture) Height() int                { return t.height }

func (t *texture) Upload(gc *renderer.GraphicsContext) {
	if t.id == 0 {
		t.allocate()
	}
}

// allocate creates the image, its view and, for sampled textures, a sampler.
func (t *texture) allocate() {
	layers, viewType := imageLayers(t.params.Type)
	format := textureFormat(t.params.Format)
	d := t.d

	var flags vk.ImageCreateFlags
	if t.params.Type == renderer.TextureTypeCubemap {
		flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
	}
	ret := vk.CreateImage(d.dev, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		Flags:         flags,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: uint32(t.width), Height: uint32(t.height), Depth: 1},
		MipLevels:     1,
		ArrayLayers:   layers,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         imageUsage(t.params),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &t.image)
	orFatal(ret, "create image")

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.dev, t.image, &reqs)
	reqs.Deref()
	ret = vk.AllocateMemory(d.dev, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: d.memoryType(reqs.MemoryTypeBits, vk.MemoryPropertyDeviceLocalBit),
	}, nil, &t.mem)
	orFatal(ret, "allocate image memory", func() { vk.DestroyImage(d.dev, t.image, nil) })
	vk.BindImageMemory(d.dev, t.image, t.mem, 0)

	ret = vk.CreateImageView(d.dev, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    t.image,
		ViewType: viewType,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspectMask(t.params.Format),
			LevelCount: 1,
			LayerCount: layers,
		},
	}, nil, &t.view)
	orFatal(ret, "create image view")

	if t.params.Usage&renderer.TextureUsageSampled != 0 {
		ret = vk.CreateSampler(d.dev, &vk.SamplerCreateInfo{
			SType:        vk.StructureTypeSamplerCreateInfo,
			MagFilter:    filter(t.params.MagFilter),
			MinFilter:    filter(t.params.MinFilter),
			MipmapMode:   vk.SamplerMipmapModeLinear,
			AddressModeU: addressMode(t.params.WrapS),
			AddressModeV: addressMode(t.params.WrapT),
			AddressModeW: addressMode(t.params.WrapR),
			MaxLod:       1,
			BorderColor:  vk.BorderColorFloatTransparentBlack,
		}, nil, &t.sampler)
		orFatal(ret, "create sampler")
	}
	t.layout = vk.ImageLayoutUndefined
	t.id = nextHandle()
}

// UploadBitmap copies every face through one staging buffer and leaves the
// image ready for sampling. Mipmaps are not generated on this backend.
func (t *texture) UploadBitmap(gc *renderer.GraphicsContext, bitmaps []*renderer.Bitmap) {
	layers, _ := imageLayers(t.params.Type)
	check.Check(len(bitmaps) == int(layers), "%s texture needs %d bitmaps, got %d", t.params.Type, layers, len(bitmaps))
	if t.id == 0 {
		t.allocate()
	}
	faceBytes := t.width * t.height * t.params.Format.BytesPerPixel()
	data := make([]byte, 0, faceBytes*len(bitmaps))
	for _, b := range bitmaps {
		check.Check(b.Width == t.width && b.Height == t.height, "bitmap %dx%d does not match texture %dx%d", b.Width, b.Height, t.width, t.height)
		check.Check(b.Format == t.params.Format, "bitmap format %d does not match texture format %d", b.Format, t.params.Format)
		data = append(data, b.Pix...)
	}
	aspect := aspectMask(t.params.Format)
	t.d.staging(data, func(cmd vk.CommandBuffer, src vk.Buffer) {
		t.d.transition(cmd, t.image, aspect, layers, t.layout, vk.ImageLayoutTransferDstOptimal)
		regions := make([]vk.BufferImageCopy, len(bitmaps))
		for i := range regions {
			regions[i] = vk.BufferImageCopy{
				BufferOffset: vk.DeviceSize(i * faceBytes),
				ImageSubresource: vk.ImageSubresourceLayers{
					AspectMask:     aspect,
					BaseArrayLayer: uint32(i),
					LayerCount:     1,
				},
				ImageExtent: vk.Extent3D{Width: uint32(t.width), Height: uint32(t.height), Depth: 1},
			}
		}
		vk.CmdCopyBufferToImage(cmd, src, t.image, vk.ImageLayoutTransferDstOptimal, uint32(len(regions)), regions)
		t.d.transition(cmd, t.image, aspect, layers, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
	t.layout = vk.ImageLayoutShaderReadOnlyOptimal
}

func (t *texture) Clear(gc *renderer.GraphicsContext) {
	if t.id == 0 || t.params.Format.IsDepth() {
		return
	}
	layers, _ := imageLayers(t.params.Type)
	zero := renderer.NewBitmap(t.width, t.height, t.params.Format)
	faces := make([]*renderer.Bitmap, layers)
	for i := range faces {
		faces[i] = zero
	}
	t.UploadBitmap(gc, faces)
}

func (t *texture) Recycle() renderer.ResourceRecycleFunc {
	if t.id == 0 {
		return renderer.NoopRecycle
	}
	d, image, mem, view, sampler := t.d, t.image, t.mem, t.view, t.sampler
	t.id = 0
	t.image, t.mem, t.view, t.sampler = vk.NullImage, vk.NullDeviceMemory, vk.NullImageView, vk.NullSampler
	return func(*renderer.GraphicsContext) {
		if sampler != vk.NullSampler {
			vk.DestroySampler(d.dev, sampler, nil)
		}
		vk.DestroyImageView(d.dev, view, nil)
		vk.DestroyImage(d.dev, image, nil)
		vk.FreeMemory(d.dev, mem, nil)
	}
}
