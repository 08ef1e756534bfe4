package platform

import (
	"sync"
	"sync/atomic"
	"time"

	"ark-render/internal/graphics/renderer"
)

// Offscreen is a window-less Surface for backends that need no native
// window, such as headless.
type Offscreen struct {
	closed atomic.Bool
	wake   chan struct{}

	mu            sync.Mutex
	width, height int
	resize        func(width, height int)
	pending       bool
}

func NewOffscreen(width, height int) *Offscreen {
	return &Offscreen{width: width, height: height, wake: make(chan struct{}, 1)}
}

func (o *Offscreen) Info() renderer.PlatformInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	return renderer.PlatformInfo{Width: o.width, Height: o.height}
}

// Resize changes the surface size. The resize callback runs on the next
// PollEvents.
func (o *Offscreen) Resize(width, height int) {
	o.mu.Lock()
	o.width, o.height = width, height
	o.pending = true
	o.mu.Unlock()
	o.notify()
}

func (o *Offscreen) PollEvents(timeout time.Duration) {
	o.mu.Lock()
	fn, pending := o.resize, o.pending
	width, height := o.width, o.height
	o.pending = false
	o.mu.Unlock()
	if pending && fn != nil {
		fn(width, height)
		return
	}
	if timeout <= 0 {
		return
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-o.wake:
	case <-t.C:
	}
}

func (o *Offscreen) ShouldClose() bool {
	return o.closed.Load()
}

func (o *Offscreen) SetShouldClose(v bool) {
	o.closed.Store(v)
	o.notify()
}

func (o *Offscreen) SetResizeCallback(fn func(width, height int)) {
	o.mu.Lock()
	o.resize = fn
	o.mu.Unlock()
}

func (o *Offscreen) Destroy() {}

func (o *Offscreen) notify() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}
