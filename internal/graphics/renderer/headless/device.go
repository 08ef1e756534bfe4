// Package headless is an in-memory backend. It allocates handles, keeps
// uploaded bytes and records draw calls, so the resource lifecycle can be
// exercised without a GPU.
package headless

import (
	"maps"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// DrawCall is one recorded Pipeline.Draw.
type DrawCall struct {
	Pipeline     string
	VertexBuffer uint64
	IndexBuffer  uint64
	Count        int
	First        int
	Uniforms     map[string]any
	Target       uint64
}

// Frame is one presented frame.
type Frame struct {
	Clear mgl32.Vec4
	Draws []DrawCall
}

// Device holds every live handle. It is touched from the render thread, and
// read by tests from others, so it is locked.
type Device struct {
	mu       sync.Mutex
	nextID   uint64
	objects  map[uint64][]byte
	kinds    map[uint64]string
	uploads  map[uint64]int
	released []uint64
	frames   []Frame
	current  *Frame
	target   uint64
}

func NewDevice() *Device {
	return &Device{objects: make(map[uint64][]byte), kinds: make(map[uint64]string), uploads: make(map[uint64]int)}
}

func (d *Device) alloc(kind string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.objects[d.nextID] = nil
	d.kinds[d.nextID] = kind
	return d.nextID
}

func (d *Device) write(id uint64, offset int, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	buf := d.objects[id]
	if need := offset + len(data); need > len(buf) {
		buf = append(buf, make([]byte, need-len(buf))...)
	}
	copy(buf[offset:], data)
	d.objects[id] = buf
	d.uploads[id]++
}

// replace sets the full content of id.
func (d *Device) replace(id uint64, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects[id] = slices.Clone(data)
	d.uploads[id]++
}

func (d *Device) release(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.objects, id)
	delete(d.kinds, id)
	d.released = append(d.released, id)
}

// Bytes returns a copy of id's content.
func (d *Device) Bytes(id uint64) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.objects[id]
	return slices.Clone(b), ok
}

// Uploads counts content writes into id.
func (d *Device) Uploads(id uint64) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.uploads[id]
}

// Live returns the number of allocated handles of kind, or of every kind
// when kind is empty.
func (d *Device) Live(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if kind == "" {
		return len(d.objects)
	}
	n := 0
	for _, k := range d.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

// Released lists released handles in release order.
func (d *Device) Released() []uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.released)
}

func (d *Device) beginFrame(clear mgl32.Vec4) {
	d.mu.Lock()
	d.current = &Frame{Clear: clear}
	d.mu.Unlock()
}

func (d *Device) endFrame() {
	d.mu.Lock()
	d.frames = append(d.frames, *d.current)
	d.current = nil
	d.mu.Unlock()
}

func (d *Device) record(c DrawCall) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c.Target = d.target
	c.Uniforms = maps.Clone(c.Uniforms)
	if d.current == nil {
		// Draws outside a render view frame, for example from tests.
		d.frames = append(d.frames, Frame{})
		d.current = &d.frames[len(d.frames)-1]
		defer func() { d.current = nil }()
	}
	d.current.Draws = append(d.current.Draws, c)
}

func (d *Device) bindTarget(id uint64) {
	d.mu.Lock()
	d.target = id
	d.mu.Unlock()
}

// Frames returns every recorded frame.
func (d *Device) Frames() []Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.frames)
}

// LastFrame returns the most recent frame.
func (d *Device) LastFrame() (Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.frames) == 0 {
		return Frame{}, false
	}
	return d.frames[len(d.frames)-1], true
}
