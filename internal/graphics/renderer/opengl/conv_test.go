package opengl

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ark-render/internal/config"
	"ark-render/internal/graphics"
	"ark-render/internal/graphics/renderer"
)

func TestBufferTarget(t *testing.T) {
	assert.Equal(t, uint32(gl.ARRAY_BUFFER), bufferTarget(renderer.UsageVertex))
	assert.Equal(t, uint32(gl.ELEMENT_ARRAY_BUFFER), bufferTarget(renderer.UsageIndex|renderer.UsageDynamic))
	assert.Equal(t, uint32(gl.DRAW_INDIRECT_BUFFER), bufferTarget(renderer.UsageDrawIndirect))
	require.Panics(t, func() { bufferTarget(renderer.UsageStorage) })
}

func TestBufferUsageHint(t *testing.T) {
	assert.Equal(t, uint32(gl.STATIC_DRAW), bufferUsageHint(renderer.UsageVertex))
	assert.Equal(t, uint32(gl.DYNAMIC_DRAW), bufferUsageHint(renderer.UsageVertex|renderer.UsageDynamic))
	assert.Equal(t, uint32(gl.STREAM_DRAW), bufferUsageHint(renderer.UsageVertex|renderer.UsageHostVisible))
}

func TestTextureTables(t *testing.T) {
	internal, format, xtype := textureFormat(renderer.FormatRGBA8)
	assert.Equal(t, int32(gl.RGBA8), internal)
	assert.Equal(t, uint32(gl.RGBA), format)
	assert.Equal(t, uint32(gl.UNSIGNED_BYTE), xtype)

	internal, format, _ = textureFormat(renderer.FormatDepth24Stencil8)
	assert.Equal(t, int32(gl.DEPTH24_STENCIL8), internal)
	assert.Equal(t, uint32(gl.DEPTH_STENCIL), format)

	assert.Equal(t, uint32(gl.TEXTURE_CUBE_MAP), textureTarget(renderer.TextureTypeCubemap))
	require.Panics(t, func() { textureTarget(renderer.TextureType(7)) })

	assert.Equal(t, int32(gl.LINEAR_MIPMAP_LINEAR), minFilter(renderer.FilterLinear, true))
	assert.Equal(t, int32(gl.NEAREST), minFilter(renderer.FilterNearest, false))
	assert.Equal(t, int32(gl.MIRRORED_REPEAT), wrapMode(renderer.WrapMirroredRepeat))
}

func TestFactoryConventions(t *testing.T) {
	f := NewFactory(renderer.NewRecycler())
	assert.Equal(t, graphics.CoordinateSystemRHS, f.Features().DefaultCoordinateSystem)

	ctx := f.CreateRenderEngineContext(config.Renderer{Version: "gl33"})
	assert.Equal(t, renderer.VersionOpenGL33, ctx.Version())
	assert.False(t, ctx.Viewport().ZeroToOne())

	near, far := f.CreateCamera(graphics.CoordinateSystemRHS).DepthRange()
	assert.Equal(t, float32(-1), near)
	assert.Equal(t, float32(1), far)

	require.Panics(t, func() { f.CreateRenderEngineContext(config.Renderer{Version: "vulkan12"}) })
}

func TestErrorName(t *testing.T) {
	assert.Equal(t, "GL_INVALID_OPERATION", errorName(gl.INVALID_OPERATION))
	assert.Equal(t, "GL_UNKNOWN_ERROR", errorName(0xdead))
}
