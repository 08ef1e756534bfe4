package renderer

import (
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"weak"

	"ark-render/internal/check"
	"ark-render/internal/core"
)

// UploadStrategy decides when a resource is (re)uploaded.
type UploadStrategy uint8

const (
	// UploadOnce uploads on the next frame.
	UploadOnce UploadStrategy = iota
	// UploadReload recycles an existing handle first.
	UploadReload
	// UploadOnSurfaceReady also uploads again whenever the surface is
	// recreated.
	UploadOnSurfaceReady
	// UploadOnEveryFrame uploads on every frame until cancelled.
	UploadOnEveryFrame
	// UploadOnChange uploads whenever its updatable reports a change.
	UploadOnChange
)

var uploadStrategyNames = [...]string{"once", "reload", "on_surface_ready", "on_every_frame", "on_change"}

func (s UploadStrategy) String() string {
	if int(s) >= len(uploadStrategyNames) {
		return "unknown"
	}
	return uploadStrategyNames[s]
}

type UploadPriority int8

const (
	PriorityLow     UploadPriority = -1
	PriorityDefault UploadPriority = 0
	PriorityHigh    UploadPriority = 1
)

type uploadItem struct {
	resource  Resource
	strategy  UploadStrategy
	updatable core.Updatable
	future    *core.Future
	priority  UploadPriority
	queued    bool
	// expired reports that the owner of resource is gone.
	expired func() bool
}

// discarded reports whether the item should be dropped without uploading.
func (it *uploadItem) discarded() bool {
	return it.future.IsCancelled() || (it.expired != nil && it.expired())
}

// UploadOption customizes RenderController.Upload.
type UploadOption func(*uploadItem)

// WithFuture lets the caller cancel the upload and learn when it ran.
func WithFuture(f *core.Future) UploadOption {
	return func(it *uploadItem) { it.future = f }
}

func WithPriority(p UploadPriority) UploadOption {
	return func(it *uploadItem) { it.priority = p }
}

// WithUpdatable sets the change source of UploadOnChange.
func WithUpdatable(u core.Updatable) UploadOption {
	return func(it *uploadItem) { it.updatable = u }
}

type preRenderRunnable struct {
	fn     func(gc *GraphicsContext)
	future *core.Future
	once   bool
}

// surfaceReadyPruneInterval is how often, in frames, cancelled
// UploadOnSurfaceReady items are dropped.
const surfaceReadyPruneInterval = 300

// RenderController schedules resource uploads and releases for the render
// thread and creates resources through the engine's factory.
type RenderController struct {
	engine   *RenderEngine
	recycler *Recycler

	mu        sync.Mutex
	queue     []uploadItem
	preRender []preRenderRunnable
	onChange  []*uploadItem

	// render thread only
	onSurfaceReady []uploadItem
	onEveryFrame   []uploadItem

	sharedIndices map[string]*PrimitiveIndexBuffer
}

func NewRenderController(engine *RenderEngine, recycler *Recycler) *RenderController {
	return &RenderController{engine: engine, recycler: recycler, sharedIndices: make(map[string]*PrimitiveIndexBuffer)}
}

func (rc *RenderController) RenderEngine() *RenderEngine { return rc.engine }
func (rc *RenderController) Recycler() *Recycler         { return rc.recycler }

// Upload schedules res with strategy. It is safe from any goroutine.
// UploadOnChange resources are first queued by the next PreComposeUpdate.
func (rc *RenderController) Upload(res Resource, strategy UploadStrategy, opts ...UploadOption) {
	it := uploadItem{resource: res, strategy: strategy}
	for _, o := range opts {
		o(&it)
	}
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if strategy == UploadOnChange {
		check.Check(it.updatable != nil, "UploadOnChange needs an updatable")
		rc.onChange = append(rc.onChange, &it)
		return
	}
	rc.queue = append(rc.queue, it)
}

// UploadBuffer schedules u to be written into b. UploadOnChange watches u
// unless another updatable is given. The upload is dropped once b is garbage,
// so the schedule does not keep b alive.
func (rc *RenderController) UploadBuffer(b *Buffer, u Uploader, strategy UploadStrategy, opts ...UploadOption) {
	if strategy == UploadOnChange {
		opts = append([]UploadOption{WithUpdatable(u)}, opts...)
	}
	owner := weak.Make(b)
	opts = append(opts, func(it *uploadItem) {
		it.expired = func() bool { return owner.Value() == nil }
	})
	rc.Upload(&bufferUpload{delegate: b.delegate, uploader: u}, strategy, opts...)
}

// Release queues the release of res's handle.
func (rc *RenderController) Release(res Resource) {
	rc.recycler.RecycleResource(res)
}

// AddPreRenderRunnable runs fn on the render thread before every frame until
// future is cancelled.
func (rc *RenderController) AddPreRenderRunnable(fn func(gc *GraphicsContext), future *core.Future) {
	rc.addPreRender(preRenderRunnable{fn: fn, future: future})
}

// RunBeforeNextFrame runs fn once on the render thread after the next frame's
// uploads, then marks future done. A cancelled future skips fn.
func (rc *RenderController) RunBeforeNextFrame(fn func(gc *GraphicsContext), future *core.Future) {
	rc.addPreRender(preRenderRunnable{fn: fn, future: future, once: true})
}

func (rc *RenderController) addPreRender(r preRenderRunnable) {
	rc.mu.Lock()
	rc.preRender = append(rc.preRender, r)
	rc.mu.Unlock()
}

// MakeBuffer creates a buffer and, when u is non-nil, schedules its content.
// The handle is released through the recycler once the buffer is garbage.
func (rc *RenderController) MakeBuffer(usage BufferUsage, u Uploader, strategy UploadStrategy, opts ...UploadOption) *Buffer {
	b := NewBuffer(rc.engine.RendererFactory().CreateBuffer(usage))
	releaseWhenUnreachable(rc, b, b.delegate)
	if u != nil {
		rc.UploadBuffer(b, u, strategy, opts...)
	}
	return b
}

func (rc *RenderController) MakeVertexBuffer(u Uploader, strategy UploadStrategy, opts ...UploadOption) *Buffer {
	usage := UsageVertex
	if strategy != UploadOnce {
		usage |= UsageDynamic
	}
	return rc.MakeBuffer(usage, u, strategy, opts...)
}

func (rc *RenderController) MakeIndexBuffer(u Uploader, strategy UploadStrategy, opts ...UploadOption) *Buffer {
	usage := UsageIndex
	if strategy != UploadOnce {
		usage |= UsageDynamic
	}
	return rc.MakeBuffer(usage, u, strategy, opts...)
}

// CreateTexture creates a texture and schedules its upload.
func (rc *RenderController) CreateTexture(width, height int, params TextureParameters, u TextureUploader, strategy UploadStrategy, opts ...UploadOption) *Texture {
	d := rc.engine.RendererFactory().CreateTexture(width, height, params)
	t := NewTexture(d, params, u)
	releaseWhenUnreachable(rc, t, d)
	rc.Upload(t, strategy, opts...)
	return t
}

// CreateTexture2D uploads a bitmap into a new 2D texture.
func (rc *RenderController) CreateTexture2D(b *Bitmap, params TextureParameters, strategy UploadStrategy, opts ...UploadOption) *Texture {
	params.Type = TextureType2D
	params.Format = b.Format
	return rc.CreateTexture(b.Width, b.Height, params, NewBitmapUploader(b), strategy, opts...)
}

// SharedIndices returns the primitive index buffer registered under name,
// creating it on first use.
func (rc *RenderController) SharedIndices(name string, model []uint16, vertexCount int, degenerate bool) *PrimitiveIndexBuffer {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if p, ok := rc.sharedIndices[name]; ok {
		return p
	}
	b := NewBuffer(rc.engine.RendererFactory().CreateBuffer(UsageIndex | UsageDynamic))
	p := NewPrimitiveIndexBuffer(b, model, vertexCount, degenerate)
	rc.sharedIndices[name] = p
	return p
}

// PreComposeUpdate runs on the core thread before frames are composed and
// queues UploadOnChange resources whose source changed.
func (rc *RenderController) PreComposeUpdate(tick uint64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.onChange = slices.DeleteFunc(rc.onChange, func(it *uploadItem) bool {
		if it.discarded() {
			return true
		}
		changed := it.updatable.Update(tick)
		if changed || (!it.queued && it.resource.ID() == 0) {
			rc.queue = append(rc.queue, *it)
			it.queued = true
		}
		return false
	})
}

// OnSurfaceReady uploads every surface-bound resource again into a fresh
// handle, for example after the GPU context was recreated.
func (rc *RenderController) OnSurfaceReady(gc *GraphicsContext) {
	core.CheckThread(core.ThreadRenderer)
	rc.onSurfaceReady = slices.DeleteFunc(rc.onSurfaceReady, func(it uploadItem) bool {
		if it.discarded() {
			return true
		}
		if it.resource.ID() != 0 {
			it.resource.Recycle()(gc)
		}
		it.resource.Upload(gc)
		return false
	})
}

// OnDrawFrame runs at the start of every render thread frame: releases
// recycled handles, performs queued and every-frame uploads, then runs
// pre-render work.
func (rc *RenderController) OnDrawFrame(gc *GraphicsContext) {
	core.CheckThread(core.ThreadRenderer)
	gc.onDrawFrame()
	rc.recycler.DoRecycling(gc)

	rc.mu.Lock()
	queue := rc.queue
	rc.queue = nil
	rc.mu.Unlock()
	rc.prepare(gc, queue)

	rc.onEveryFrame = slices.DeleteFunc(rc.onEveryFrame, func(it uploadItem) bool {
		if it.discarded() {
			return true
		}
		it.resource.Upload(gc)
		return false
	})
	if gc.Tick()%surfaceReadyPruneInterval == 0 {
		rc.onSurfaceReady = slices.DeleteFunc(rc.onSurfaceReady, func(it uploadItem) bool { return it.discarded() })
	}

	var runnables []preRenderRunnable
	rc.mu.Lock()
	rc.preRender = slices.DeleteFunc(rc.preRender, func(r preRenderRunnable) bool {
		if r.future.IsCancelled() {
			return true
		}
		runnables = append(runnables, r)
		return r.once
	})
	rc.mu.Unlock()

	for _, r := range runnables {
		r.fn(gc)
		if r.once {
			r.future.Done()
		}
	}
}

func (rc *RenderController) prepare(gc *GraphicsContext, queue []uploadItem) {
	slices.SortStableFunc(queue, func(a, b uploadItem) int { return int(b.priority) - int(a.priority) })
	for _, it := range queue {
		if it.discarded() {
			continue
		}
		if it.strategy == UploadReload && it.resource.ID() != 0 {
			it.resource.Recycle()(gc)
		}
		it.resource.Upload(gc)
		it.future.Done()

		switch it.strategy {
		case UploadOnSurfaceReady:
			rc.onSurfaceReady = append(rc.onSurfaceReady, it)
		case UploadOnEveryFrame:
			rc.onEveryFrame = insertByPriority(rc.onEveryFrame, it)
		}
	}
}

// Destroy releases every pending handle. It must run on the render thread
// before gc is destroyed.
func (rc *RenderController) Destroy(gc *GraphicsContext) {
	core.CheckThread(core.ThreadRenderer)
	n := rc.recycler.DoRecycling(gc)
	slog.Debug("render controller destroyed", "recycled", n)
}

func insertByPriority(items []uploadItem, it uploadItem) []uploadItem {
	i := slices.IndexFunc(items, func(x uploadItem) bool { return x.priority < it.priority })
	if i < 0 {
		return append(items, it)
	}
	return slices.Insert(items, i, it)
}

// releaseWhenUnreachable queues res's release once owner is garbage. res
// must not reference owner. The handle is read and reset on the render
// thread, never on the cleanup goroutine.
func releaseWhenUnreachable[T any](rc *RenderController, owner *T, res Resource) {
	runtime.AddCleanup(owner, func(res Resource) {
		rc.recycler.Recycle(func(gc *GraphicsContext) { res.Recycle()(gc) })
	}, res)
}

// bufferUpload is the Resource scheduled by UploadBuffer. It holds the
// delegate only, so a pending upload does not keep the Buffer alive.
type bufferUpload struct {
	delegate BufferDelegate
	uploader Uploader
}

func (u *bufferUpload) ID() uint64                   { return u.delegate.ID() }
func (u *bufferUpload) Recycle() ResourceRecycleFunc { return u.delegate.Recycle() }

func (u *bufferUpload) Upload(gc *GraphicsContext) {
	u.delegate.UploadBuffer(gc, u.uploader)
}
