package graphics

import (
	"ark-render/internal/core"
)

// RenderLayer owns the layer contexts drawn with one pipeline.
type RenderLayer struct {
	visible  core.SafeVar[bool]
	contexts []*LayerContext
	reload   bool
}

func NewRenderLayer() *RenderLayer {
	return &RenderLayer{visible: core.NewSafeVar[bool](nil, true)}
}

func (l *RenderLayer) SetVisible(visible core.Boolean) {
	l.visible.Reset(visible)
}

// MakeLayerContext creates a context owned by this layer.
func (l *RenderLayer) MakeLayerContext() *LayerContext {
	c := NewLayerContext()
	l.AddLayerContext(c)
	return c
}

func (l *RenderLayer) AddLayerContext(c *LayerContext) {
	l.contexts = append(l.contexts, c)
	l.reload = true
}

// Reload forces every element to be re-snapshotted on the next frame, for
// example after the GPU context was lost.
func (l *RenderLayer) Reload() {
	l.reload = true
}

// RenderLayerSnapshot is the frozen content of a layer for one frame.
// Disposed renderables are already dropped.
type RenderLayerSnapshot struct {
	Tick     uint64
	Visible  bool
	Elements []RenderableSnapshot
	// NeedsReload is set when elements were added or removed, so per-element
	// GPU data (index buffers, offsets) must be rebuilt.
	NeedsReload bool
}

// Dirty reports whether anything drawn from this snapshot changed.
func (s *RenderLayerSnapshot) Dirty() bool {
	if s.NeedsReload {
		return true
	}
	for i := range s.Elements {
		if s.Elements[i].State.Has(StateDirty) {
			return true
		}
	}
	return false
}

// VisibleElements returns the elements carrying StateVisible.
func (s *RenderLayerSnapshot) VisibleElements() []RenderableSnapshot {
	out := make([]RenderableSnapshot, 0, len(s.Elements))
	for _, e := range s.Elements {
		if e.State.Has(StateVisible) {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot updates every renderable for req and freezes the result. It runs
// on the core thread.
func (l *RenderLayer) Snapshot(req *RenderRequest) *RenderLayerSnapshot {
	core.CheckThread(core.ThreadCore)
	force := l.visible.Update(req.Tick) || l.reload
	s := &RenderLayerSnapshot{Tick: req.Tick, Visible: l.visible.Val(), NeedsReload: l.reload}
	for _, c := range l.contexts {
		addLayerContext(s, c, req, force)
	}
	l.reload = false
	return s
}

func addLayerContext(s *RenderLayerSnapshot, c *LayerContext, req *RenderRequest, force bool) {
	cs := c.Snapshot(req)
	if c.processNewCreated() {
		s.NeedsReload = true
	}
	if cs.Disposed {
		if len(c.elements) > 0 {
			c.elements = c.elements[:0]
			s.NeedsReload = true
		}
		return
	}

	visible := cs.Visible && s.Visible
	kept := c.elements[:0]
	for _, e := range c.elements {
		state := e.renderable.UpdateState(req)
		if state.Has(StateDisposed) {
			s.NeedsReload = true
			continue
		}
		if e.isNew {
			state |= StateNew | StateDirty
			e.isNew = false
		}
		if cs.Dirty || force {
			state |= StateDirty
		}
		if !visible {
			state &^= StateVisible
		}
		if state.Has(StateDirty) {
			e.snapshot = e.renderable.Snapshot(req, cs.Position, state)
			e.snapshot.Varyings = e.snapshot.Varyings.Apply(cs.Varyings)
		}
		e.snapshot.State = state
		kept = append(kept, e)
		s.Elements = append(s.Elements, e.snapshot)
	}
	clear(c.elements[len(kept):])
	c.elements = kept
}
