package renderer

import (
	"ark-render/internal/check"
)

type TextureType uint8

const (
	TextureType2D TextureType = iota
	TextureTypeCubemap
)

func (t TextureType) String() string {
	switch t {
	case TextureType2D:
		return "2d"
	case TextureTypeCubemap:
		return "cubemap"
	}
	return "unknown"
}

type TextureFormat uint8

const (
	FormatRGBA8 TextureFormat = iota
	FormatRGB8
	FormatRG8
	FormatR8
	FormatRGBA16F
	FormatRGBA32F
	FormatDepth24Stencil8
)

// BytesPerPixel of the format's CPU-side layout.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case FormatRGBA8, FormatDepth24Stencil8:
		return 4
	case FormatRGB8:
		return 3
	case FormatRG8:
		return 2
	case FormatR8:
		return 1
	case FormatRGBA16F:
		return 8
	case FormatRGBA32F:
		return 16
	}
	check.Fatalf("Unknown texture format: %d", f)
	return 0
}

func (f TextureFormat) IsDepth() bool {
	return f == FormatDepth24Stencil8
}

type TextureFilter uint8

const (
	FilterLinear TextureFilter = iota
	FilterNearest
)

type TextureWrap uint8

const (
	WrapClampToEdge TextureWrap = iota
	WrapRepeat
	WrapMirroredRepeat
)

type TextureUsage uint8

const (
	TextureUsageSampled TextureUsage = 1 << iota
	TextureUsageColorAttachment
	TextureUsageDepthStencilAttachment
)

// TextureParameters are fixed when the texture is created.
type TextureParameters struct {
	Type                TextureType
	Format              TextureFormat
	Usage               TextureUsage
	MinFilter           TextureFilter
	MagFilter           TextureFilter
	WrapS, WrapT, WrapR TextureWrap
	Mipmaps             bool
}

func DefaultTextureParameters() TextureParameters {
	return TextureParameters{Type: TextureType2D, Format: FormatRGBA8, Usage: TextureUsageSampled}
}

// TextureDelegate is a backend texture.
type TextureDelegate interface {
	Resource
	Type() TextureType
	Width() int
	Height() int
	// UploadBitmap writes one bitmap for a 2D texture or six faces, in
	// +X -X +Y -Y +Z -Z order, for a cubemap.
	UploadBitmap(gc *GraphicsContext, bitmaps []*Bitmap)
	// Clear fills the texture with zeroes.
	Clear(gc *GraphicsContext)
}

// TextureUploader fills a freshly allocated texture.
type TextureUploader interface {
	Initialize(gc *GraphicsContext, d TextureDelegate)
}

type bitmapUploader struct {
	bitmaps []*Bitmap
}

func (u *bitmapUploader) Initialize(gc *GraphicsContext, d TextureDelegate) {
	d.UploadBitmap(gc, u.bitmaps)
}

// NewBitmapUploader uploads a single bitmap to a 2D texture.
func NewBitmapUploader(b *Bitmap) TextureUploader {
	return &bitmapUploader{bitmaps: []*Bitmap{b}}
}

// NewCubemapUploader uploads six faces.
func NewCubemapUploader(faces ...*Bitmap) TextureUploader {
	check.Check(len(faces) == 6, "cubemap needs 6 faces, got %d", len(faces))
	return &bitmapUploader{bitmaps: faces}
}

// Texture is the user-facing handle around a TextureDelegate. It is a
// Resource whose Upload also runs its uploader.
type Texture struct {
	delegate TextureDelegate
	params   TextureParameters
	uploader TextureUploader
}

func NewTexture(d TextureDelegate, params TextureParameters, uploader TextureUploader) *Texture {
	return &Texture{delegate: d, params: params, uploader: uploader}
}

func (t *Texture) Delegate() TextureDelegate     { return t.delegate }
func (t *Texture) Parameters() TextureParameters { return t.params }
func (t *Texture) ID() uint64                    { return t.delegate.ID() }
func (t *Texture) Width() int                    { return t.delegate.Width() }
func (t *Texture) Height() int                   { return t.delegate.Height() }
func (t *Texture) Recycle() ResourceRecycleFunc  { return t.delegate.Recycle() }
func (t *Texture) SetUploader(u TextureUploader) { t.uploader = u }

func (t *Texture) Upload(gc *GraphicsContext) {
	t.delegate.Upload(gc)
	if t.uploader != nil {
		t.uploader.Initialize(gc, t.delegate)
	}
}
