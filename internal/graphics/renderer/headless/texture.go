package headless

import (
	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"
)

type texture struct {
	device        *Device
	id            uint64
	params        renderer.TextureParameters
	width, height int
}

func (t *texture) ID() uint64                 { return t.id }
func (t *texture) Type() renderer.TextureType { return t.params.Type }
func (t *texture) Width() int                 { return t.width }
func (t *texture) Height() int                { return t.height }

func (t *texture) faces() int {
	switch t.params.Type {
	case renderer.TextureType2D:
		return 1
	case renderer.TextureTypeCubemap:
		return 6
	}
	check.Fatalf("Unsupported texture type: %d", t.params.Type)
	return 0
}

func (t *texture) faceBytes() int {
	return t.width * t.height * t.params.Format.BytesPerPixel()
}

func (t *texture) Upload(gc *renderer.GraphicsContext) {
	if t.id != 0 {
		return
	}
	t.id = t.device.alloc("texture")
	t.device.replace(t.id, make([]byte, t.faces()*t.faceBytes()))
}

func (t *texture) UploadBitmap(gc *renderer.GraphicsContext, bitmaps []*renderer.Bitmap) {
	n := t.faces()
	check.Check(len(bitmaps) == n, "%s texture needs %d bitmaps, got %d", t.params.Type, n, len(bitmaps))
	if t.id == 0 {
		t.Upload(gc)
	}
	size := t.faceBytes()
	for i, b := range bitmaps {
		check.Check(b.Width == t.width && b.Height == t.height, "bitmap %dx%d does not match texture %dx%d", b.Width, b.Height, t.width, t.height)
		check.Check(b.Format == t.params.Format, "bitmap format %d does not match texture format %d", b.Format, t.params.Format)
		t.device.write(t.id, i*size, b.Pix)
	}
}

func (t *texture) Clear(gc *renderer.GraphicsContext) {
	if t.id != 0 {
		t.device.replace(t.id, make([]byte, t.faces()*t.faceBytes()))
	}
}

func (t *texture) Recycle() renderer.ResourceRecycleFunc {
	id := t.id
	if id == 0 {
		return renderer.NoopRecycle
	}
	t.id = 0
	return func(*renderer.GraphicsContext) { t.device.release(id) }
}
