package core

// SafeVar wraps an optional Variable and falls back to a default value when
// none is set. Replacing the wrapped variable is reported as a change.
type SafeVar[T any] struct {
	v   Variable[T]
	def T
	ts  Timestamp
}

func NewSafeVar[T any](v Variable[T], def T) SafeVar[T] {
	return SafeVar[T]{v: v, def: def, ts: NewTimestamp()}
}

func (s *SafeVar[T]) Val() T {
	if s.v == nil {
		return s.def
	}
	return s.v.Val()
}

// Update never forwards a tick older than the last one it saw, so the wrapped
// variable cannot report a stale change.
func (s *SafeVar[T]) Update(tick uint64) bool {
	if tick < s.ts.Tick() {
		return false
	}
	changed := s.ts.Update(tick)
	if s.v != nil && s.v.Update(tick) {
		changed = true
	}
	return changed
}

// Reset replaces the wrapped variable. A nil v restores the default.
func (s *SafeVar[T]) Reset(v Variable[T]) {
	s.v = v
	s.ts.MarkDirty()
}

// IsDefined reports whether a variable is set.
func (s *SafeVar[T]) IsDefined() bool {
	return s.v != nil
}

// Get returns the wrapped variable, or nil.
func (s *SafeVar[T]) Get() Variable[T] {
	return s.v
}

func (s *SafeVar[T]) Default() T {
	return s.def
}
