package renderer

import (
	"image"

	"golang.org/x/image/draw"

	"ark-render/internal/check"
)

// Bitmap is tightly packed pixel data in a TextureFormat.
type Bitmap struct {
	Width, Height int
	Format        TextureFormat
	Pix           []byte
}

func NewBitmap(width, height int, format TextureFormat) *Bitmap {
	return &Bitmap{Width: width, Height: height, Format: format, Pix: make([]byte, width*height*format.BytesPerPixel())}
}

func (b *Bitmap) RowBytes() int {
	return b.Width * b.Format.BytesPerPixel()
}

// BitmapFromImage converts any image to RGBA8.
func BitmapFromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return &Bitmap{Width: bounds.Dx(), Height: bounds.Dy(), Format: FormatRGBA8, Pix: rgba.Pix}
}

// Image wraps an RGBA8 bitmap as an image without copying.
func (b *Bitmap) Image() *image.RGBA {
	check.Check(b.Format == FormatRGBA8, "only RGBA8 bitmaps convert to images, got format %d", b.Format)
	return &image.RGBA{Pix: b.Pix, Stride: b.RowBytes(), Rect: image.Rect(0, 0, b.Width, b.Height)}
}

// Scale resizes an RGBA8 bitmap with bilinear filtering.
func (b *Bitmap) Scale(width, height int) *Bitmap {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), b.Image(), b.Image().Bounds(), draw.Src, nil)
	return &Bitmap{Width: width, Height: height, Format: FormatRGBA8, Pix: dst.Pix}
}

// FlipY mirrors rows in place, for backends whose texture origin is the
// bottom-left corner.
func (b *Bitmap) FlipY() {
	row := b.RowBytes()
	tmp := make([]byte, row)
	for y := 0; y < b.Height/2; y++ {
		top := b.Pix[y*row : (y+1)*row]
		bottom := b.Pix[(b.Height-1-y)*row : (b.Height-y)*row]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}
