package renderer

import (
	"strings"

	"ark-render/internal/check"
	"ark-render/internal/core"
)

// BufferUsage is the bit set describing how a buffer is bound and updated.
type BufferUsage uint32

const (
	UsageVertex BufferUsage = 1 << iota
	UsageIndex
	UsageDrawIndirect
	UsageStorage
	// UsageDynamic allows more than one upload per handle.
	UsageDynamic
	UsageHostVisible
	UsageTransferSrc
)

func (u BufferUsage) Has(bits BufferUsage) bool {
	return u&bits == bits
}

func (u BufferUsage) String() string {
	names := []string{"vertex", "index", "draw_indirect", "storage", "dynamic", "host_visible", "transfer_src"}
	var parts []string
	for i, n := range names {
		if u&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// BufferDelegate is a backend buffer.
type BufferDelegate interface {
	Resource
	Usage() BufferUsage
	// Size is the byte size of the last upload.
	Size() int
	// UploadBuffer replaces the content with u's bytes and uploads them.
	UploadBuffer(gc *GraphicsContext, u Uploader)
	// DownloadBuffer reads len(dst) bytes at offset back from the GPU.
	DownloadBuffer(gc *GraphicsContext, offset int, dst []byte)
}

// BufferBase is the bookkeeping shared by buffer delegates: the CPU mirror of
// pending content and the write-once rule for static buffers.
type BufferBase struct {
	usage   BufferUsage
	pending []byte
	size    int
	dirty   bool
	staged  bool
}

func NewBufferBase(usage BufferUsage) BufferBase {
	return BufferBase{usage: usage}
}

func (b *BufferBase) Usage() BufferUsage { return b.usage }
func (b *BufferBase) Size() int          { return b.size }

// Pending is the CPU mirror of the most recent content.
func (b *BufferBase) Pending() []byte {
	return b.pending
}

// Stage replaces the pending content with u's bytes. A static buffer accepts
// one Stage per handle lifetime.
func (b *BufferBase) Stage(u Uploader) {
	check.Check(b.usage.Has(UsageDynamic) || !b.staged, "static buffer (usage %s) uploaded twice", b.usage)
	b.pending = Flat(u)
	b.dirty = true
	b.staged = true
}

// TakePending returns content not pushed yet and marks it pushed.
func (b *BufferBase) TakePending() ([]byte, bool) {
	if !b.dirty {
		return nil, false
	}
	b.dirty = false
	b.size = len(b.pending)
	return b.pending, true
}

// Reset is called by Recycle: the next handle starts empty but the mirror is
// kept so a reload pushes the same bytes again.
func (b *BufferBase) Reset() {
	b.size = 0
	b.staged = false
	b.dirty = len(b.pending) > 0
}

// Buffer is the user-facing handle around a BufferDelegate.
type Buffer struct {
	delegate BufferDelegate
}

func NewBuffer(delegate BufferDelegate) *Buffer {
	return &Buffer{delegate: delegate}
}

func (b *Buffer) Delegate() BufferDelegate { return b.delegate }
func (b *Buffer) ID() uint64               { return b.delegate.ID() }
func (b *Buffer) Size() int                { return b.delegate.Size() }
func (b *Buffer) Usage() BufferUsage       { return b.delegate.Usage() }

// Snapshot references the current content without uploading anything.
func (b *Buffer) Snapshot() BufferSnapshot {
	return BufferSnapshot{buffer: b}
}

// SnapshotWith carries u to be uploaded on the render thread.
func (b *Buffer) SnapshotWith(u Uploader) BufferSnapshot {
	return BufferSnapshot{buffer: b, uploader: u}
}

// Synchronize schedules a read back of len(dst) bytes at offset on the render
// thread, after the next frame's uploads. The returned future is done once
// dst is filled; cancelling it first skips the read.
func (b *Buffer) Synchronize(rc *RenderController, offset int, dst []byte) *core.Future {
	f := core.NewFuture()
	rc.RunBeforeNextFrame(func(gc *GraphicsContext) {
		b.delegate.DownloadBuffer(gc, offset, dst)
	}, f)
	return f
}

// BufferSnapshot is the frozen reference to a buffer for one draw. It keeps
// the Buffer reachable, so the handle is not released while a command using
// it is still pending.
type BufferSnapshot struct {
	buffer   *Buffer
	uploader Uploader
}

func (s BufferSnapshot) Delegate() BufferDelegate {
	if s.buffer == nil {
		return nil
	}
	return s.buffer.delegate
}

// Size is the byte size the draw sees: the carried content, or else the size
// of the last upload. Without an uploader it must be read on the render
// thread.
func (s BufferSnapshot) Size() int {
	switch {
	case s.uploader != nil:
		return s.uploader.Size()
	case s.buffer != nil:
		return s.buffer.Size()
	}
	return 0
}

func (s BufferSnapshot) HasUploader() bool { return s.uploader != nil }

func (s BufferSnapshot) ID() uint64 {
	if s.buffer == nil {
		return 0
	}
	return s.buffer.ID()
}

// Upload runs on the render thread before the draw that uses the snapshot.
func (s BufferSnapshot) Upload(gc *GraphicsContext) {
	switch {
	case s.buffer == nil:
	case s.uploader != nil:
		s.buffer.delegate.UploadBuffer(gc, s.uploader)
	case s.buffer.ID() == 0:
		s.buffer.delegate.Upload(gc)
	}
}

// BufferFactory gathers byte strips at offsets and turns them into one
// snapshot.
type BufferFactory struct {
	strips []strip
	size   int
}

func NewBufferFactory() *BufferFactory {
	return &BufferFactory{}
}

func (f *BufferFactory) AddStrip(offset int, data []byte) {
	f.strips = append(f.strips, strip{offset: offset, data: data})
	f.size = max(f.size, offset+len(data))
}

func (f *BufferFactory) Size() int {
	return f.size
}

// Snapshot returns a snapshot of b uploading every strip, then resets f.
func (f *BufferFactory) Snapshot(b *Buffer) BufferSnapshot {
	sortStrips(f.strips)
	u := &StripsUploader{size: f.size, strips: f.strips}
	f.strips, f.size = nil, 0
	return b.SnapshotWith(u)
}
