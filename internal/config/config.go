package config

import "sync"

// RenderSettings holds the runtime render knobs shared by the render loop and
// the manifest watcher.
type RenderSettings struct {
	mu         sync.RWMutex
	vsync      bool
	fpsLimit   int // 0 means unlimited
	clearColor [4]float32
}

var globalRenderSettings = &RenderSettings{
	vsync:      true,
	fpsLimit:   0,
	clearColor: [4]float32{0.1, 0.1, 0.12, 1},
}

// GetVSync returns whether buffer swaps wait for the display
func GetVSync() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.vsync
}

func SetVSync(enabled bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.vsync = enabled
}

// GetFPSLimit returns the frame cap, 0 when unlimited
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap. Non-positive values disable it.
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	// Clamp to reasonable values
	switch {
	case limit <= 0:
		limit = 0
	case limit < 15:
		limit = 15
	case limit > 1000:
		limit = 1000
	}

	globalRenderSettings.fpsLimit = limit
}

// GetClearColor returns the RGBA color the render view clears to
func GetClearColor() [4]float32 {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.clearColor
}

// SetClearColor sets the clear color, clamping each channel to [0, 1]
func SetClearColor(c [4]float32) {
	for i := range c {
		c[i] = min(max(c[i], 0), 1)
	}
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.clearColor = c
}

// ApplyRenderer copies the runtime-adjustable part of r into the global
// settings.
func ApplyRenderer(r Renderer) {
	SetVSync(r.VSync)
	SetFPSLimit(r.FPSLimit)
	SetClearColor(r.ClearColor)
}
