package opengl

import (
	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// bufferTarget picks the bind point of a buffer by its usage.
func bufferTarget(usage renderer.BufferUsage) uint32 {
	switch {
	case usage.Has(renderer.UsageIndex):
		return gl.ELEMENT_ARRAY_BUFFER
	case usage.Has(renderer.UsageDrawIndirect):
		return gl.DRAW_INDIRECT_BUFFER
	case usage.Has(renderer.UsageStorage):
		check.Unimplemented("storage buffers on OpenGL 4.1")
	case usage.Has(renderer.UsageTransferSrc):
		return gl.COPY_READ_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsageHint(usage renderer.BufferUsage) uint32 {
	switch {
	case usage.Has(renderer.UsageHostVisible):
		return gl.STREAM_DRAW
	case usage.Has(renderer.UsageDynamic):
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func textureTarget(t renderer.TextureType) uint32 {
	switch t {
	case renderer.TextureType2D:
		return gl.TEXTURE_2D
	case renderer.TextureTypeCubemap:
		return gl.TEXTURE_CUBE_MAP
	}
	check.Fatalf("Unsupported texture type: %d", t)
	return 0
}

// textureFormat returns the internal format, pixel format and pixel type.
func textureFormat(f renderer.TextureFormat) (int32, uint32, uint32) {
	switch f {
	case renderer.FormatRGBA8:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	case renderer.FormatRGB8:
		return gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE
	case renderer.FormatRG8:
		return gl.RG8, gl.RG, gl.UNSIGNED_BYTE
	case renderer.FormatR8:
		return gl.R8, gl.RED, gl.UNSIGNED_BYTE
	case renderer.FormatRGBA16F:
		return gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT
	case renderer.FormatRGBA32F:
		return gl.RGBA32F, gl.RGBA, gl.FLOAT
	case renderer.FormatDepth24Stencil8:
		return gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8
	}
	check.Fatalf("Unsupported texture format: %d", f)
	return 0, 0, 0
}

func minFilter(f renderer.TextureFilter, mipmaps bool) int32 {
	switch {
	case f == renderer.FilterNearest && mipmaps:
		return gl.NEAREST_MIPMAP_NEAREST
	case f == renderer.FilterNearest:
		return gl.NEAREST
	case mipmaps:
		return gl.LINEAR_MIPMAP_LINEAR
	}
	return gl.LINEAR
}

func magFilter(f renderer.TextureFilter) int32 {
	if f == renderer.FilterNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

func wrapMode(w renderer.TextureWrap) int32 {
	switch w {
	case renderer.WrapRepeat:
		return gl.REPEAT
	case renderer.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func drawMode(m renderer.DrawMode) uint32 {
	switch m {
	case renderer.DrawTriangleStrip:
		return gl.TRIANGLE_STRIP
	case renderer.DrawLines:
		return gl.LINES
	case renderer.DrawPoints:
		return gl.POINTS
	}
	return gl.TRIANGLES
}

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	}
	return "GL_UNKNOWN_ERROR"
}
