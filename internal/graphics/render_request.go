package graphics

import "time"

// RenderRequest identifies the frame being built on the core thread.
type RenderRequest struct {
	// Tick is the monotonic frame counter every Update call is stamped with.
	Tick uint64
	// Elapsed is the wall time since the application started.
	Elapsed time.Duration
}

func NewRenderRequest(tick uint64, elapsed time.Duration) *RenderRequest {
	return &RenderRequest{Tick: tick, Elapsed: elapsed}
}
