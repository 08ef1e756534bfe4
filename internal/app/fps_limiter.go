package app

import (
	"time"

	"ark-render/internal/config"
)

// spinWindow is how early the limiter stops sleeping and starts spinning.
const spinWindow = 200 * time.Microsecond

// FPSLimiter paces the render thread to the configured frame rate.
type FPSLimiter struct {
	next  time.Time
	limit func() int
}

// NewFPSLimiter follows config.GetFPSLimit, so reloaded manifests apply on
// the next frame.
func NewFPSLimiter() *FPSLimiter {
	return &FPSLimiter{limit: config.GetFPSLimit}
}

// Wait blocks until the next frame is due. A limit of 0 never blocks.
func (f *FPSLimiter) Wait() {
	limit := f.limit()
	if limit <= 0 {
		f.next = time.Time{}
		return
	}
	target := time.Second / time.Duration(limit)
	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > spinWindow {
			time.Sleep(remaining - spinWindow)
		}
	}

	// Resync after a hitch instead of racing to catch up.
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}
