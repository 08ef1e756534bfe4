package renderer

// SurfaceReadyCount is the number of uploads kept for the next surface.
func (rc *RenderController) SurfaceReadyCount() int { return len(rc.onSurfaceReady) }
