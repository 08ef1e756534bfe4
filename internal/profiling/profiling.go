// Package profiling accumulates per-frame CPU time by section name.
//
// Usage: defer profiling.Track("renderer.Compose")()
package profiling

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// Profiler sums durations per name until Reset. The core and render loops
// share the default profiler, so it is locked.
type Profiler struct {
	mu     sync.Mutex
	totals map[string]time.Duration
	counts map[string]int
}

func New() *Profiler {
	return &Profiler{totals: make(map[string]time.Duration), counts: make(map[string]int)}
}

// Track returns a stop function that records the elapsed time under name.
func (p *Profiler) Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		p.mu.Lock()
		p.totals[name] += d
		p.counts[name]++
		p.mu.Unlock()
	}
}

// Reset clears the totals. Loops call it at the start of a frame.
func (p *Profiler) Reset() {
	p.mu.Lock()
	clear(p.totals)
	clear(p.counts)
	p.mu.Unlock()
}

func (p *Profiler) Snapshot() map[string]time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.totals)
}

// Count is how many times name was tracked since Reset.
func (p *Profiler) Count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[name]
}

// TopN formats the n largest totals, for example
// "renderer.Compose:4.2ms, controller.OnDrawFrame:2ms".
func (p *Profiler) TopN(n int) string {
	ss := p.Snapshot()
	names := slices.Collect(maps.Keys(ss))
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(ss[b], ss[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	names = names[:min(n, len(names))]
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ":" + formatMs(ss[name])
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing ".0".
func formatMs(d time.Duration) string {
	s := fmt.Sprintf("%.1f", float64(d.Microseconds())/1000)
	return strings.TrimSuffix(s, ".0") + "ms"
}

var std = New()

func Track(name string) func()           { return std.Track(name) }
func ResetFrame()                        { std.Reset() }
func Snapshot() map[string]time.Duration { return std.Snapshot() }
func TopN(n int) string                  { return std.TopN(n) }
