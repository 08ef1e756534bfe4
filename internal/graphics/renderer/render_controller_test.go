package renderer_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ark-render/internal/core"
	"ark-render/internal/graphics"
	"ark-render/internal/graphics/renderer"
	"ark-render/internal/graphics/renderer/headless"
)

type recordingResource struct {
	name string
	id   uint64
	log  *[]string
}

func (r *recordingResource) ID() uint64 { return r.id }

func (r *recordingResource) Upload(*renderer.GraphicsContext) {
	r.id++
	*r.log = append(*r.log, r.name)
}

func (r *recordingResource) Recycle() renderer.ResourceRecycleFunc {
	if r.id == 0 {
		return renderer.NoopRecycle
	}
	r.id = 0
	return func(*renderer.GraphicsContext) { *r.log = append(*r.log, "recycle "+r.name) }
}

func TestUploadPriorityOrder(t *testing.T) {
	e := newEnv(t)
	var log []string
	res := func(name string) *recordingResource { return &recordingResource{name: name, log: &log} }

	e.rc.Upload(res("low"), renderer.UploadOnce, renderer.WithPriority(renderer.PriorityLow))
	e.rc.Upload(res("a"), renderer.UploadOnce)
	e.rc.Upload(res("high"), renderer.UploadOnce, renderer.WithPriority(renderer.PriorityHigh))
	e.rc.Upload(res("b"), renderer.UploadOnce)
	e.rc.OnDrawFrame(e.gc)

	assert.Equal(t, []string{"high", "a", "b", "low"}, log)
	e.rc.OnDrawFrame(e.gc)
	assert.Len(t, log, 4, "UploadOnce runs once")
}

func TestUploadCancelledFuture(t *testing.T) {
	e := newEnv(t)
	var log []string
	f := core.NewFuture()
	e.rc.Upload(&recordingResource{name: "x", log: &log}, renderer.UploadOnce, renderer.WithFuture(f))
	f.Cancel()
	e.rc.OnDrawFrame(e.gc)
	assert.Empty(t, log)
	assert.False(t, f.IsDone())
}

func TestUploadFutureDone(t *testing.T) {
	e := newEnv(t)
	var log []string
	f := core.NewFuture()
	e.rc.Upload(&recordingResource{name: "x", log: &log}, renderer.UploadOnce, renderer.WithFuture(f))
	e.rc.OnDrawFrame(e.gc)
	assert.True(t, f.IsDone())
}

func TestUploadReloadRecyclesFirst(t *testing.T) {
	e := newEnv(t)
	var log []string
	r := &recordingResource{name: "x", log: &log}
	e.rc.Upload(r, renderer.UploadOnce)
	e.rc.OnDrawFrame(e.gc)
	e.rc.Upload(r, renderer.UploadReload)
	e.rc.OnDrawFrame(e.gc)
	assert.Equal(t, []string{"x", "recycle x", "x"}, log)
}

func TestUploadOnEveryFrame(t *testing.T) {
	e := newEnv(t)
	var log []string
	f := core.NewFuture()
	e.rc.Upload(&recordingResource{name: "x", log: &log}, renderer.UploadOnEveryFrame, renderer.WithFuture(f))
	e.rc.OnDrawFrame(e.gc)
	e.rc.OnDrawFrame(e.gc)
	e.rc.OnDrawFrame(e.gc)
	// The first frame uploads from the queue and then from the every-frame list.
	assert.Len(t, log, 4)

	f.Cancel()
	e.rc.OnDrawFrame(e.gc)
	assert.Len(t, log, 4)
}

func TestUploadOnSurfaceReady(t *testing.T) {
	e := newEnv(t)
	var log []string
	e.rc.Upload(&recordingResource{name: "x", log: &log}, renderer.UploadOnSurfaceReady)
	e.rc.OnDrawFrame(e.gc)
	e.rc.OnDrawFrame(e.gc)
	assert.Equal(t, []string{"x"}, log)

	e.rc.OnSurfaceReady(e.gc)
	assert.Equal(t, []string{"x", "recycle x", "x"}, log)
}

func TestCancelledSurfaceReadyUploadsArePruned(t *testing.T) {
	e := newEnv(t)
	var log []string
	f := core.NewFuture()
	e.rc.Upload(&recordingResource{name: "x", log: &log}, renderer.UploadOnSurfaceReady, renderer.WithFuture(f))
	e.rc.OnDrawFrame(e.gc)
	require.Equal(t, 1, e.rc.SurfaceReadyCount())

	f.Cancel()
	for e.gc.Tick() < 299 {
		e.rc.OnDrawFrame(e.gc)
	}
	assert.Equal(t, 1, e.rc.SurfaceReadyCount(), "pruned periodically, not every frame")
	e.rc.OnDrawFrame(e.gc)
	assert.Equal(t, 0, e.rc.SurfaceReadyCount())
	assert.Equal(t, []string{"x"}, log)
}

func TestUploadStrategyString(t *testing.T) {
	assert.Equal(t, "on_surface_ready", renderer.UploadOnSurfaceReady.String())
	assert.Equal(t, "unknown", renderer.UploadStrategy(99).String())
}

func TestUploadOnChange(t *testing.T) {
	e := newEnv(t)
	u := renderer.NewFloat32Uploader(triangle(0))
	b := e.rc.MakeVertexBuffer(u, renderer.UploadOnChange)
	assert.True(t, b.Usage().Has(renderer.UsageDynamic))

	e.rc.OnDrawFrame(e.gc)
	assert.Zero(t, b.ID(), "on-change uploads are queued by PreComposeUpdate")

	e.rc.PreComposeUpdate(1)
	e.rc.OnDrawFrame(e.gc)
	id := b.ID()
	require.NotZero(t, id)
	assert.Equal(t, 1, e.device.Uploads(id))

	e.rc.PreComposeUpdate(2)
	e.rc.OnDrawFrame(e.gc)
	assert.Equal(t, 1, e.device.Uploads(id), "unchanged source is not uploaded")

	u.SetFloat32(triangle(1))
	e.rc.PreComposeUpdate(3)
	e.rc.OnDrawFrame(e.gc)
	assert.Equal(t, 2, e.device.Uploads(id))
	assert.Equal(t, id, b.ID())
	got, _ := e.device.Bytes(id)
	assert.Equal(t, triangle(1), renderer.DecodeFloat32(got))
}

func TestUploadOnChangeDroppedWithBuffer(t *testing.T) {
	e := newEnv(t)
	u := renderer.NewFloat32Uploader(triangle(0))
	id := func() uint64 {
		b := e.rc.MakeVertexBuffer(u, renderer.UploadOnChange)
		e.rc.PreComposeUpdate(1)
		e.rc.OnDrawFrame(e.gc)
		return b.ID()
	}()
	require.NotZero(t, id)

	tick := uint64(1)
	released := false
	for i := 0; i < 200 && !released; i++ {
		runtime.GC()
		tick++
		u.SetFloat32(triangle(float32(tick)))
		e.rc.PreComposeUpdate(tick)
		e.rc.OnDrawFrame(e.gc)
		if released = e.device.Live("buffer") == 0; !released {
			time.Sleep(5 * time.Millisecond)
		}
	}
	require.True(t, released, "a watched uploader must not keep its buffer alive")
	assert.Contains(t, e.device.Released(), id)

	tick++
	u.SetFloat32(triangle(0))
	e.rc.PreComposeUpdate(tick)
	e.rc.OnDrawFrame(e.gc)
	assert.Equal(t, 0, e.device.Live("buffer"), "a collected buffer is not uploaded again")
}

func TestUploadOnChangeNeedsUpdatable(t *testing.T) {
	e := newEnv(t)
	var log []string
	require.Panics(t, func() {
		e.rc.Upload(&recordingResource{name: "x", log: &log}, renderer.UploadOnChange)
	})
}

func TestSharedIndices(t *testing.T) {
	e := newEnv(t)
	quad := []uint16{0, 1, 2, 2, 1, 3}
	p := e.rc.SharedIndices("quad", quad, 4, false)
	assert.Same(t, p, e.rc.SharedIndices("quad", quad, 4, false))

	s := p.Snapshot(3)
	s.Upload(e.gc)
	got, _ := e.device.Bytes(s.ID())
	assert.Equal(t, renderer.ConcatIndices(quad, 4, 4), renderer.DecodeUint16(got))
}

func TestDrawingContextUploadsBeforeDraw(t *testing.T) {
	e := newEnv(t)
	pf := e.factory.CreatePipelineFactory()
	pipe := pf.BuildPipeline(renderer.DrawElementsDescriptor(e.engine.Context()))
	vb := e.rc.MakeBuffer(renderer.UsageVertex|renderer.UsageDynamic, nil, renderer.UploadOnce)

	dc := renderer.DrawingContext{
		Pipeline:  pipe,
		Vertices:  vb.SnapshotWith(renderer.NewFloat32Uploader(triangle(0))),
		DrawCount: 3,
	}
	dc.SetUniform("u_Alpha", float32(0.5))
	dc.SetUniform("u_Alpha", float32(1))
	dc.ToRenderCommand().Draw(e.gc)

	f, ok := e.device.LastFrame()
	require.True(t, ok)
	require.Len(t, f.Draws, 1)
	d := f.Draws[0]
	assert.Equal(t, "draw_elements", d.Pipeline)
	assert.Equal(t, vb.ID(), d.VertexBuffer)
	assert.Zero(t, d.IndexBuffer)
	assert.Equal(t, 3, d.Count)
	assert.Equal(t, float32(1), d.Uniforms["u_Alpha"])
}

func TestCommandPipelineKeepsNewest(t *testing.T) {
	var p renderer.CommandPipeline
	_, _, ok := p.Take()
	assert.False(t, ok)

	var drawn []int
	mk := func(n int) renderer.RenderCommand {
		return renderer.RenderCommandFunc(func(*renderer.GraphicsContext) { drawn = append(drawn, n) })
	}
	p.Submit(1, mk(1))
	p.Submit(2, mk(2))
	cmd, tick, ok := p.Take()
	require.True(t, ok)
	assert.Equal(t, uint64(2), tick)
	cmd.Draw(nil)
	assert.Equal(t, []int{2}, drawn)
	assert.Equal(t, uint64(1), p.Dropped())
}

func TestRendererComposeAndDispose(t *testing.T) {
	e := newEnv(t)
	layer := graphics.NewRenderLayer()
	ctx := layer.MakeLayerContext()

	composer := renderer.NewDrawElementsComposer(layer)
	composer.SetModel(0, renderer.Model{
		Vertices: []mgl32.Vec3{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0, 0.5, 0}},
		Indices:  []uint16{0, 1, 2},
	})
	r, err := renderer.NewRenderer(e.rc, e.engine.CreateCamera(graphics.CoordinateSystemDefault), composer)
	require.NoError(t, err)
	r.UpdateViewport(640, 480)

	obj := graphics.NewRenderObject(0, core.NewConst(mgl32.Vec3{1, 0, 0}), nil)
	v := graphics.NewVaryings()
	v.Set(renderer.ColorVarying, core.NewConst(mgl32.Vec4{1, 0, 0, 1}))
	obj.SetVaryings(v)
	ctx.Add(obj, nil, nil)

	view := e.engine.CreateRenderView()
	require.NoError(t, view.OnSurfaceCreated(e.gc))

	frame := func(tick uint64) {
		cmd := r.Compose(graphics.NewRenderRequest(tick, 0))
		e.rc.OnDrawFrame(e.gc)
		view.OnRenderFrame(e.gc, mgl32.Vec4{0, 0, 0, 1}, cmd)
	}

	frame(1)
	f, ok := e.device.LastFrame()
	require.True(t, ok)
	require.Len(t, f.Draws, 1)
	draw := f.Draws[0]
	assert.Equal(t, 3, draw.Count)
	assert.Contains(t, draw.Uniforms, "u_VP")

	vbytes, _ := e.device.Bytes(draw.VertexBuffer)
	verts := renderer.DecodeFloat32(vbytes)
	require.Len(t, verts, 21)
	assert.Equal(t, []float32{0.5, -0.5, 0, 1, 0, 0, 1}, verts[:7], "position is translated, color comes from the varying")

	uploads := e.device.Uploads(draw.VertexBuffer)
	frame(2)
	assert.Equal(t, uploads, e.device.Uploads(draw.VertexBuffer), "clean layer reuses the vertex buffer")

	obj.Hide()
	frame(3)
	f, _ = e.device.LastFrame()
	assert.Empty(t, f.Draws, "hidden element leaves nothing to draw")

	r.Dispose()
	e.rc.OnDrawFrame(e.gc)
	assert.Equal(t, 0, e.device.Live("buffer"))
	assert.Equal(t, 0, e.device.Live("pipeline"))
}

func TestComposedContentSurvivesDroppedFrames(t *testing.T) {
	e := newEnv(t)
	layer := graphics.NewRenderLayer()
	composer := renderer.NewDrawElementsComposer(layer)
	composer.SetModel(0, renderer.Model{
		Vertices: []mgl32.Vec3{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0, 0.5, 0}},
		Indices:  []uint16{0, 1, 2},
	})
	r, err := renderer.NewRenderer(e.rc, e.engine.CreateCamera(graphics.CoordinateSystemDefault), composer)
	require.NoError(t, err)
	r.UpdateViewport(640, 480)
	layer.MakeLayerContext().Add(graphics.NewRenderObject(0, core.NewConst(mgl32.Vec3{1, 0, 0}), nil), nil, nil)

	view := e.engine.CreateRenderView()
	require.NoError(t, view.OnSurfaceCreated(e.gc))

	var p renderer.CommandPipeline
	present := func() headless.DrawCall {
		cmd, _, ok := p.Take()
		require.True(t, ok)
		e.rc.OnDrawFrame(e.gc)
		view.OnRenderFrame(e.gc, mgl32.Vec4{}, cmd)
		f, ok := e.device.LastFrame()
		require.True(t, ok)
		require.Len(t, f.Draws, 1)
		return f.Draws[0]
	}

	// the render thread only sees the second, clean frame
	p.Submit(1, r.Compose(graphics.NewRenderRequest(1, 0)))
	p.Submit(2, r.Compose(graphics.NewRenderRequest(2, 0)))
	require.Equal(t, uint64(1), p.Dropped())

	draw := present()
	assert.Equal(t, 3, draw.Count)
	vbytes, ok := e.device.Bytes(draw.VertexBuffer)
	require.True(t, ok)
	verts := renderer.DecodeFloat32(vbytes)
	require.Len(t, verts, 21)
	assert.Equal(t, float32(0.5), verts[0])
	ibytes, ok := e.device.Bytes(draw.IndexBuffer)
	require.True(t, ok)
	assert.Equal(t, []uint16{0, 1, 2}, renderer.DecodeUint16(ibytes))

	// once drawn, later frames stop carrying the content
	uploads := e.device.Uploads(draw.VertexBuffer)
	p.Submit(3, r.Compose(graphics.NewRenderRequest(3, 0)))
	present()
	assert.Equal(t, uploads, e.device.Uploads(draw.VertexBuffer))

	r.Dispose()
}

func TestRendererVersion(t *testing.T) {
	v, err := renderer.ParseRendererVersion("GL33")
	require.NoError(t, err)
	assert.Equal(t, renderer.VersionOpenGL33, v)
	assert.Equal(t, "330 core", v.GLSLVersion())

	v, err = renderer.ParseRendererVersion("vulkan12")
	require.NoError(t, err)
	assert.True(t, v.IsVulkan())
	assert.Equal(t, 1, v.Major())
	assert.Equal(t, 2, v.Minor())

	v, err = renderer.ParseRendererVersion("")
	require.NoError(t, err)
	assert.Equal(t, renderer.VersionAuto, v)

	_, err = renderer.ParseRendererVersion("gl99")
	assert.Error(t, err)
}

func TestPreprocess(t *testing.T) {
	ctx := renderer.NewRenderEngineContext(renderer.VersionOpenGL41, graphics.NewViewport(-1, 1, 1, -1, -1, 1))
	ctx.Define("B", "2")
	ctx.Define("A", "1")
	assert.Equal(t, "#version 410 core\n#define A 1\n#define B 2\nvoid main() {}", ctx.Preprocess("void main() {}"))
	assert.Equal(t, "#version 330\n", ctx.Preprocess("#version 330\n"))
}

func TestDrawElementsCullsOutsideFrustum(t *testing.T) {
	e := newEnv(t)
	layer := graphics.NewRenderLayer()
	ctx := layer.MakeLayerContext()
	composer := renderer.NewDrawElementsComposer(layer)
	composer.SetModel(0, renderer.Model{
		Vertices: []mgl32.Vec3{{-0.1, -0.1, 0}, {0.1, -0.1, 0}, {0, 0.1, 0}},
		Indices:  []uint16{0, 1, 2},
	})
	composer.SetCulling(true)
	camera := e.engine.CreateCamera(graphics.CoordinateSystemDefault)
	r, err := renderer.NewRenderer(e.rc, camera, composer)
	require.NoError(t, err)
	r.SetProjection(func(c *graphics.Camera, w, h int) { c.Ortho(-1, 1, -1, 1, -1, 1) })
	r.UpdateViewport(640, 480)

	ctx.Add(graphics.NewRenderObject(0, core.NewConst(mgl32.Vec3{0, 0, 0}), nil), nil, nil)
	ctx.Add(graphics.NewRenderObject(0, core.NewConst(mgl32.Vec3{3, 0, 0}), nil), nil, nil)

	view := e.engine.CreateRenderView()
	require.NoError(t, view.OnSurfaceCreated(e.gc))
	frame := func(tick uint64) headless.Frame {
		cmd := r.Compose(graphics.NewRenderRequest(tick, 0))
		e.rc.OnDrawFrame(e.gc)
		view.OnRenderFrame(e.gc, mgl32.Vec4{}, cmd)
		f, ok := e.device.LastFrame()
		require.True(t, ok)
		require.Len(t, f.Draws, 1)
		return f
	}

	assert.Equal(t, 3, frame(1).Draws[0].Count, "off-screen element is culled")

	camera.LookAt(mgl32.Vec3{3, 0, 0}, mgl32.Vec3{3, 0, -1}, mgl32.Vec3{0, 1, 0})
	assert.Equal(t, 3, frame(2).Draws[0].Count, "camera move rebuilds the batch")
	vbytes, _ := e.device.Bytes(frame(3).Draws[0].VertexBuffer)
	assert.InDelta(t, 2.9, renderer.DecodeFloat32(vbytes)[0], 1e-5, "the element at x=3 is drawn now")

	r.Dispose()
}
