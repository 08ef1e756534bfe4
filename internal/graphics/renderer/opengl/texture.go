package opengl

import (
	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
)

type texture struct {
	id            uint32
	params        renderer.TextureParameters
	width, height int
}

func newTexture(width, height int, params renderer.TextureParameters) *texture {
	return &texture{width: width, height: height, params: params}
}

func (t *texture) ID() uint64                 { return uint64(t.id) }
func (t *texture) Type() renderer.TextureType { return t.params.Type }
func (t *texture) Width() int                 { return t.width }
func (t *texture) Height() int                { return t.height }

// faceTargets lists the image targets written by UploadBitmap.
func (t *texture) faceTargets() []uint32 {
	switch t.params.Type {
	case renderer.TextureType2D:
		return []uint32{gl.TEXTURE_2D}
	case renderer.TextureTypeCubemap:
		faces := make([]uint32, 6)
		for i := range faces {
			faces[i] = gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(i)
		}
		return faces
	}
	check.Fatalf("Unsupported texture type: %d", t.params.Type)
	return nil
}

// Upload allocates storage for every face, left undefined until
// UploadBitmap or Clear.
func (t *texture) Upload(gc *renderer.GraphicsContext) {
	if t.id != 0 {
		return
	}
	target := textureTarget(t.params.Type)
	internal, format, xtype := textureFormat(t.params.Format)

	gl.GenTextures(1, &t.id)
	gl.BindTexture(target, t.id)
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, minFilter(t.params.MinFilter, t.params.Mipmaps))
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, magFilter(t.params.MagFilter))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, wrapMode(t.params.WrapS))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, wrapMode(t.params.WrapT))
	if t.params.Type == renderer.TextureTypeCubemap {
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, wrapMode(t.params.WrapR))
	}
	for _, face := range t.faceTargets() {
		gl.TexImage2D(face, 0, internal, int32(t.width), int32(t.height), 0, format, xtype, nil)
	}
	gl.BindTexture(target, 0)
	glCheckError("allocate texture")
}

func (t *texture) UploadBitmap(gc *renderer.GraphicsContext, bitmaps []*renderer.Bitmap) {
	faces := t.faceTargets()
	check.Check(len(bitmaps) == len(faces), "%s texture needs %d bitmaps, got %d", t.params.Type, len(faces), len(bitmaps))
	if t.id == 0 {
		t.Upload(gc)
	}
	target := textureTarget(t.params.Type)
	_, format, xtype := textureFormat(t.params.Format)

	gl.BindTexture(target, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	for i, b := range bitmaps {
		check.Check(b.Width == t.width && b.Height == t.height, "bitmap %dx%d does not match texture %dx%d", b.Width, b.Height, t.width, t.height)
		gl.TexSubImage2D(faces[i], 0, 0, 0, int32(b.Width), int32(b.Height), format, xtype, gl.Ptr(b.Pix))
	}
	if t.params.Mipmaps {
		gl.GenerateMipmap(target)
	}
	gl.BindTexture(target, 0)
	glCheckError("upload bitmap")
}

// Clear writes zeroes; glClearTexImage is not available before 4.4.
func (t *texture) Clear(gc *renderer.GraphicsContext) {
	if t.id == 0 || t.params.Format.IsDepth() {
		return
	}
	zero := renderer.NewBitmap(t.width, t.height, t.params.Format)
	faces := make([]*renderer.Bitmap, len(t.faceTargets()))
	for i := range faces {
		faces[i] = zero
	}
	t.UploadBitmap(gc, faces)
}

func (t *texture) Recycle() renderer.ResourceRecycleFunc {
	id := t.id
	if id == 0 {
		return renderer.NoopRecycle
	}
	t.id = 0
	return func(*renderer.GraphicsContext) { gl.DeleteTextures(1, &id) }
}
