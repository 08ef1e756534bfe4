// Package core holds the small value types shared by the scene and the
// render backends: tick-stamped variables, futures, thread affinity and the
// process-wide registries.
package core

// Timestamp tracks whether its owner changed since the last observed tick.
//
// Update is monotonic: a tick older than the last observed one never reports
// a change, and every caller asking within the same tick gets the same answer.
type Timestamp struct {
	tick    uint64
	pending bool
	changed bool
}

// NewTimestamp returns a Timestamp that reports a change on its first Update.
func NewTimestamp() Timestamp {
	return Timestamp{pending: true}
}

// MarkDirty records a change to be reported by the next Update.
func (t *Timestamp) MarkDirty() {
	t.pending = true
}

// Dirty reports whether a change is waiting to be observed.
func (t *Timestamp) Dirty() bool {
	return t.pending
}

// Update reports whether the owner changed as of tick.
func (t *Timestamp) Update(tick uint64) bool {
	if tick < t.tick {
		return false
	}
	if tick == t.tick {
		t.changed = t.changed || t.pending
	} else {
		t.changed = t.pending
	}
	t.tick = tick
	t.pending = false
	return t.changed
}

// Tick returns the last tick passed to Update.
func (t *Timestamp) Tick() uint64 {
	return t.tick
}
