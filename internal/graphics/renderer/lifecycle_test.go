package renderer_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ark-render/internal/check"
	"ark-render/internal/config"
	"ark-render/internal/core"
	"ark-render/internal/graphics"
	"ark-render/internal/graphics/renderer"
	"ark-render/internal/graphics/renderer/headless"
)

type env struct {
	factory *headless.Factory
	device  *headless.Device
	engine  *renderer.RenderEngine
	rc      *renderer.RenderController
	gc      *renderer.GraphicsContext
}

func newEnv(t *testing.T) *env {
	t.Helper()
	recycler := renderer.NewRecycler()
	f := headless.NewFactory(recycler)
	m := config.Default().Renderer
	m.Backend = "headless"
	e, err := renderer.NewRenderEngine(m, f, renderer.PlatformInfo{Width: 640, Height: 480})
	require.NoError(t, err)
	require.NoError(t, e.OnSurfaceCreated())
	rc := renderer.NewRenderController(e, recycler)
	return &env{factory: f, device: f.Device(), engine: e, rc: rc, gc: renderer.NewGraphicsContext(e, rc)}
}

func triangle(offset float32) []float32 {
	return []float32{
		-0.5 + offset, -0.5, 0, 1,
		0.5 + offset, -0.5, 0, 1,
		0 + offset, 0.5, 0, 1,
	}
}

func TestDynamicTriangleBufferKeepsHandle(t *testing.T) {
	e := newEnv(t)
	b := e.rc.MakeBuffer(renderer.UsageVertex|renderer.UsageDynamic, nil, renderer.UploadOnce)

	first := triangle(0)
	b.Delegate().UploadBuffer(e.gc, renderer.NewFloat32Uploader(first))
	id := b.ID()
	require.NotZero(t, id)
	got, ok := e.device.Bytes(id)
	require.True(t, ok)
	assert.Equal(t, first, renderer.DecodeFloat32(got))

	second := triangle(0.25)
	b.Delegate().UploadBuffer(e.gc, renderer.NewFloat32Uploader(second))
	assert.Equal(t, id, b.ID(), "dynamic re-upload must keep the handle")
	assert.Equal(t, 2, e.device.Uploads(id))
	got, _ = e.device.Bytes(id)
	assert.Equal(t, second, renderer.DecodeFloat32(got))
	assert.Equal(t, 1, e.device.Live("buffer"))
}

func TestStaticBufferUploadedTwicePanics(t *testing.T) {
	e := newEnv(t)
	b := e.rc.MakeBuffer(renderer.UsageVertex, nil, renderer.UploadOnce)
	b.Delegate().UploadBuffer(e.gc, renderer.NewFloat32Uploader(triangle(0)))

	require.Panics(t, func() {
		b.Delegate().UploadBuffer(e.gc, renderer.NewFloat32Uploader(triangle(1)))
	})
}

func TestRecycleExactlyOnce(t *testing.T) {
	e := newEnv(t)
	b := e.rc.MakeBuffer(renderer.UsageVertex, renderer.NewFloat32Uploader(triangle(0)), renderer.UploadOnce)
	e.rc.OnDrawFrame(e.gc)
	id := b.ID()
	require.NotZero(t, id)

	release := b.Delegate().Recycle()
	assert.Zero(t, b.ID(), "handle is reset to the sentinel")
	second := b.Delegate().Recycle()
	second(e.gc)
	assert.Equal(t, 1, e.device.Live("buffer"), "second recycle is a no-op")

	e.rc.Recycler().Recycle(release)
	assert.Equal(t, 1, e.rc.Recycler().Len())
	e.rc.OnDrawFrame(e.gc)
	assert.Equal(t, 0, e.device.Live("buffer"))
	assert.Equal(t, []uint64{id}, e.device.Released())
	assert.Zero(t, e.rc.Recycler().Len())
	runtime.KeepAlive(b)
}

func TestReleaseIgnoresUnallocated(t *testing.T) {
	e := newEnv(t)
	b := e.rc.MakeBuffer(renderer.UsageVertex, nil, renderer.UploadOnce)
	e.rc.Release(b.Delegate())
	assert.Zero(t, e.rc.Recycler().Len())
	runtime.KeepAlive(b)
}

func TestRecycledStaticBufferReuploads(t *testing.T) {
	e := newEnv(t)
	data := triangle(0)
	b := e.rc.MakeBuffer(renderer.UsageVertex, renderer.NewFloat32Uploader(data), renderer.UploadOnce)
	e.rc.OnDrawFrame(e.gc)
	old := b.ID()

	e.rc.Upload(b.Delegate(), renderer.UploadReload)
	e.rc.OnDrawFrame(e.gc)
	require.NotZero(t, b.ID())
	assert.NotEqual(t, old, b.ID())
	got, _ := e.device.Bytes(b.ID())
	assert.Equal(t, data, renderer.DecodeFloat32(got), "reload pushes the CPU mirror again")
	assert.Equal(t, 1, e.device.Live("buffer"))
}

func TestRecyclingDestroyedContextPanics(t *testing.T) {
	e := newEnv(t)
	b := e.rc.MakeBuffer(renderer.UsageVertex, renderer.NewFloat32Uploader(triangle(0)), renderer.UploadOnce)
	e.rc.OnDrawFrame(e.gc)
	e.rc.Release(b.Delegate())
	e.gc.Destroy()
	require.Panics(t, func() { e.rc.Recycler().DoRecycling(e.gc) })
}

func TestEngineDestroyDrainsRecycler(t *testing.T) {
	e := newEnv(t)
	b := e.rc.MakeBuffer(renderer.UsageVertex, renderer.NewFloat32Uploader(triangle(0)), renderer.UploadOnce)
	e.rc.OnDrawFrame(e.gc)
	e.rc.Release(b.Delegate())

	e.engine.Destroy(e.gc, e.rc)
	assert.Equal(t, 0, e.device.Live(""))
	assert.True(t, e.gc.IsDestroyed())
}

func TestBufferSynchronize(t *testing.T) {
	e := newEnv(t)
	data := triangle(0)
	b := e.rc.MakeBuffer(renderer.UsageVertex|renderer.UsageDynamic, renderer.NewFloat32Uploader(data), renderer.UploadOnce)
	e.rc.OnDrawFrame(e.gc)

	dst := make([]byte, 8)
	f := b.Synchronize(e.rc, 16, dst)
	assert.False(t, f.IsDone())
	e.rc.OnDrawFrame(e.gc)
	assert.True(t, f.IsDone())
	assert.Equal(t, data[4:6], renderer.DecodeFloat32(dst))

	// The runnable is removed once done.
	e.rc.OnDrawFrame(e.gc)
}

func TestSynchronizeBeforeFirstFrame(t *testing.T) {
	e := newEnv(t)
	data := triangle(0)
	b := e.rc.MakeBuffer(renderer.UsageVertex|renderer.UsageDynamic, renderer.NewFloat32Uploader(data), renderer.UploadOnce)
	dst := make([]byte, 8)
	f := b.Synchronize(e.rc, 16, dst)

	require.NotPanics(t, func() { e.rc.OnDrawFrame(e.gc) }, "uploads run before pre-render work")
	assert.True(t, f.IsDone())
	assert.False(t, f.IsCancelled())
	assert.Equal(t, data[4:6], renderer.DecodeFloat32(dst))

	var order []string
	e.rc.Upload(&recordingResource{name: "upload", log: &order}, renderer.UploadOnEveryFrame)
	e.rc.AddPreRenderRunnable(func(*renderer.GraphicsContext) { order = append(order, "runnable") }, nil)
	e.rc.OnDrawFrame(e.gc)
	assert.Equal(t, []string{"upload", "upload", "runnable"}, order)
}

func TestPendingCommandKeepsBufferAlive(t *testing.T) {
	e := newEnv(t)
	pipe := e.factory.CreatePipelineFactory().BuildPipeline(renderer.DrawElementsDescriptor(e.engine.Context()))
	var p renderer.CommandPipeline
	func() {
		vb := e.rc.MakeBuffer(renderer.UsageVertex|renderer.UsageDynamic, nil, renderer.UploadOnce)
		dc := renderer.DrawingContext{
			Pipeline:  pipe,
			Vertices:  vb.SnapshotWith(renderer.NewFloat32Uploader(triangle(0))),
			DrawCount: 3,
		}
		p.Submit(1, dc.ToRenderCommand())
	}()

	for i := 0; i < 3; i++ {
		runtime.GC()
	}
	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, e.rc.Recycler().Len(), "the queued command still references the buffer")

	id := func() uint64 {
		cmd, _, ok := p.Take()
		require.True(t, ok)
		e.rc.OnDrawFrame(e.gc)
		cmd.Draw(e.gc)
		f, ok := e.device.LastFrame()
		require.True(t, ok)
		require.Len(t, f.Draws, 1)
		got, ok := e.device.Bytes(f.Draws[0].VertexBuffer)
		require.True(t, ok)
		assert.Equal(t, triangle(0), renderer.DecodeFloat32(got))
		return f.Draws[0].VertexBuffer
	}()
	require.NotZero(t, id)

	released := false
	for i := 0; i < 200 && !released; i++ {
		runtime.GC()
		e.rc.OnDrawFrame(e.gc)
		if released = e.device.Live("buffer") == 0; !released {
			time.Sleep(5 * time.Millisecond)
		}
	}
	require.True(t, released, "the buffer is released once no command holds it")
	assert.Contains(t, e.device.Released(), id)
}

func TestTextureUpload(t *testing.T) {
	e := newEnv(t)
	bm := renderer.NewBitmap(2, 2, renderer.FormatRGBA8)
	for i := range bm.Pix {
		bm.Pix[i] = byte(i)
	}
	tex := e.rc.CreateTexture2D(bm, renderer.DefaultTextureParameters(), renderer.UploadOnce)
	assert.Zero(t, tex.ID())
	e.rc.OnDrawFrame(e.gc)
	require.NotZero(t, tex.ID())
	got, _ := e.device.Bytes(tex.ID())
	assert.Equal(t, bm.Pix, got)
}

func TestCubemapUpload(t *testing.T) {
	e := newEnv(t)
	faces := make([]*renderer.Bitmap, 6)
	for i := range faces {
		faces[i] = renderer.NewBitmap(1, 1, renderer.FormatR8)
		faces[i].Pix[0] = byte(i + 1)
	}
	params := renderer.DefaultTextureParameters()
	params.Type = renderer.TextureTypeCubemap
	params.Format = renderer.FormatR8
	tex := e.rc.CreateTexture(1, 1, params, renderer.NewCubemapUploader(faces...), renderer.UploadOnce)
	e.rc.OnDrawFrame(e.gc)
	got, _ := e.device.Bytes(tex.ID())
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, got)

	require.Panics(t, func() { renderer.NewCubemapUploader(faces[:5]...) })
}

// violation runs f and returns the contract violation it raised, if any.
func violation(f func()) (v *check.Violation) {
	defer func() { v, _ = recover().(*check.Violation) }()
	f()
	return nil
}

func TestUnsupportedTextureTypeIsFatal(t *testing.T) {
	e := newEnv(t)
	params := renderer.DefaultTextureParameters()
	params.Type = renderer.TextureType(9)
	d := e.factory.CreateTexture(1, 1, params)

	v := violation(func() { d.Upload(e.gc) })
	require.NotNil(t, v)
	assert.Equal(t, "Unsupported texture type: 9", v.Msg)
}

func TestRenderTarget(t *testing.T) {
	e := newEnv(t)
	rt := e.factory.CreateRenderTarget(renderer.RenderTargetConfig{
		Width: 4, Height: 4, ColorFormats: []renderer.TextureFormat{renderer.FormatRGBA8}, DepthStencil: true,
	})
	cmd := renderer.RenderTargetCommand(rt, mgl32.Vec4{}, renderer.RenderCommandFunc(func(*renderer.GraphicsContext) {}))
	cmd.Draw(e.gc)
	require.NotZero(t, rt.ID())
	assert.Len(t, rt.ColorAttachments(), 1)
	assert.Equal(t, 1, e.device.Live("render_target"))
	assert.Equal(t, 2, e.device.Live("texture"))

	rt.Recycle()(e.gc)
	assert.Equal(t, 0, e.device.Live(""))
}

func TestEngineCoordinateSystem(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, graphics.CoordinateSystemRHS, e.engine.CoordinateSystem())
	assert.True(t, e.engine.IsYUp())
	assert.Equal(t, renderer.VersionOpenGL41, e.engine.Version())

	assert.Equal(t, mgl32.Vec2{10, 470}, e.engine.ToEnginePosition(mgl32.Vec2{10, 10}))
	r := e.engine.ToRendererRect(graphics.Rect{Left: 0, Top: 0, Right: 100, Bottom: 50})
	assert.Equal(t, graphics.Rect{Left: 0, Top: 430, Right: 100, Bottom: 480}, r)

	cam := e.engine.CreateCamera(graphics.CoordinateSystemDefault)
	assert.Equal(t, graphics.CoordinateSystemRHS, cam.CoordinateSystem())
}

func TestEngineManifestCoordinateSystemOverride(t *testing.T) {
	recycler := renderer.NewRecycler()
	m := config.Default().Renderer
	m.CoordinateSystem = "lhs"
	e, err := renderer.NewRenderEngine(m, headless.NewFactory(recycler), renderer.PlatformInfo{Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, graphics.CoordinateSystemLHS, e.CoordinateSystem())
	assert.Equal(t, mgl32.Vec2{1, 2}, e.ToEnginePosition(mgl32.Vec2{1, 2}))

	m.CoordinateSystem = "sideways"
	_, err = renderer.NewRenderEngine(m, headless.NewFactory(recycler), renderer.PlatformInfo{})
	assert.Error(t, err)
}

func TestSurfaceCreatedTwicePanics(t *testing.T) {
	e := newEnv(t)
	require.Panics(t, func() { _ = e.engine.OnSurfaceCreated() })
}

func TestRegistry(t *testing.T) {
	assert.Contains(t, renderer.Backends(), "headless")

	f, err := renderer.NewRendererFactory("headless", renderer.NewRecycler())
	require.NoError(t, err)
	assert.Equal(t, renderer.BackendHeadless, f.Features().Backends)

	_, err = renderer.NewRendererFactory("bgfx", renderer.NewRecycler())
	assert.ErrorContains(t, err, "not built")
	_, err = renderer.NewRendererFactory("metal", renderer.NewRecycler())
	assert.ErrorContains(t, err, "unknown")

	require.Panics(t, func() {
		renderer.RegisterBackend("headless", func(*renderer.Recycler) renderer.RendererFactory { return nil })
	})
}

func TestGraphicsContextTraits(t *testing.T) {
	e := newEnv(t)
	type boundProgram struct{ id uint64 }
	core.PutTrait(e.gc.Traits(), boundProgram{id: 3})
	v, ok := core.GetTrait[boundProgram](e.gc.Traits())
	require.True(t, ok)
	assert.Equal(t, uint64(3), v.id)
}
