package graphics

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"ark-render/internal/core"
)

// LayerContext is an ordered group of renderables sharing a position offset,
// visibility and default varyings. Insertion order is draw order.
//
// Add may be called from any goroutine; new renderables are adopted on the
// next snapshot. Everything else belongs to the core thread.
type LayerContext struct {
	position  core.SafeVar[mgl32.Vec3]
	visible   core.SafeVar[bool]
	disposed  core.SafeVar[bool]
	varyings  *Varyings
	wrapOrder WrapOrder
	ts        core.Timestamp

	mu      sync.Mutex
	created []Renderable
	cleared bool

	elements []layerElement
}

type layerElement struct {
	renderable Renderable
	snapshot   RenderableSnapshot
	isNew      bool
}

func NewLayerContext() *LayerContext {
	return &LayerContext{
		position: core.NewSafeVar[mgl32.Vec3](nil, mgl32.Vec3{}),
		visible:  core.NewSafeVar[bool](nil, true),
		disposed: core.NewSafeVar[bool](nil, false),
		ts:       core.NewTimestamp(),
	}
}

func (c *LayerContext) SetPosition(position core.Vec3)    { c.position.Reset(position) }
func (c *LayerContext) SetVisible(visible core.Boolean)   { c.visible.Reset(visible) }
func (c *LayerContext) SetDisposed(disposed core.Boolean) { c.disposed.Reset(disposed) }

func (c *LayerContext) SetVaryings(v *Varyings) {
	c.varyings = v
	c.ts.MarkDirty()
}

func (c *LayerContext) SetWrapOrder(o WrapOrder) {
	c.wrapOrder = o
}

// Add queues r for the next snapshot, wrapped with the optional updatable
// and disposed boolean.
func (c *LayerContext) Add(r Renderable, updatable core.Updatable, disposed core.Boolean) {
	r = c.wrapOrder.Wrap(r, updatable, disposed)
	c.mu.Lock()
	c.created = append(c.created, r)
	c.mu.Unlock()
}

// Clear drops every renderable, including ones not adopted yet.
func (c *LayerContext) Clear() {
	c.mu.Lock()
	c.created = nil
	c.cleared = true
	c.mu.Unlock()
}

// Len is the number of adopted renderables.
func (c *LayerContext) Len() int {
	return len(c.elements)
}

// LayerContextSnapshot is the frozen layer-level state for a frame.
type LayerContextSnapshot struct {
	Position mgl32.Vec3
	Visible  bool
	Disposed bool
	Varyings VaryingsSnapshot
	// Dirty is set when any layer-level input changed this tick.
	Dirty bool
}

func (c *LayerContext) Snapshot(req *RenderRequest) LayerContextSnapshot {
	dirty := core.UpdateAll(req.Tick, &c.ts, &c.position, &c.visible, &c.disposed)
	if c.varyings != nil && c.varyings.Update(req.Tick) {
		dirty = true
	}
	return LayerContextSnapshot{
		Position: c.position.Val(),
		Visible:  c.visible.Val(),
		Disposed: c.disposed.Val(),
		Varyings: c.varyings.Snapshot(),
		Dirty:    dirty,
	}
}

// processNewCreated adopts queued renderables and reports whether the
// element set changed.
func (c *LayerContext) processNewCreated() bool {
	c.mu.Lock()
	created, cleared := c.created, c.cleared
	c.created, c.cleared = nil, false
	c.mu.Unlock()

	changed := false
	if cleared && len(c.elements) > 0 {
		c.elements = c.elements[:0]
		changed = true
	}
	for _, r := range created {
		c.elements = append(c.elements, layerElement{renderable: r, isNew: true})
		changed = true
	}
	return changed
}
