package renderer

import (
	"log/slog"
	"sync"

	"ark-render/internal/check"
	"ark-render/internal/core"
)

// Recycler collects ResourceRecycleFunc closures from any goroutine and runs
// them on the render thread.
type Recycler struct {
	mu      sync.Mutex
	pending []ResourceRecycleFunc
}

func NewRecycler() *Recycler {
	return &Recycler{}
}

// Recycle queues fn. It is safe to call from any goroutine.
func (r *Recycler) Recycle(fn ResourceRecycleFunc) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.pending = append(r.pending, fn)
	r.mu.Unlock()
}

// RecycleResource queues the release of res's current handle.
func (r *Recycler) RecycleResource(res Resource) {
	if res.ID() != 0 {
		r.Recycle(res.Recycle())
	}
}

// DoRecycling runs every queued closure against gc and returns how many ran.
// Closures queued while draining run on the next call.
func (r *Recycler) DoRecycling(gc *GraphicsContext) int {
	core.CheckThread(core.ThreadRenderer)
	r.mu.Lock()
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(pending) == 0 {
		return 0
	}
	check.Check(!gc.IsDestroyed(), "recycling %d resources against a destroyed graphics context", len(pending))
	for _, fn := range pending {
		fn(gc)
	}
	slog.Debug("recycled resources", "count", len(pending))
	return len(pending)
}

// Len is the number of closures waiting for the next drain.
func (r *Recycler) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
