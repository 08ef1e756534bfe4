package core

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"ark-render/internal/check"
)

// ThreadID names one of the engine's long-lived goroutines.
type ThreadID int

const (
	ThreadUnknown ThreadID = iota
	ThreadMain
	ThreadCore
	ThreadRenderer
	threadCount
)

func (id ThreadID) String() string {
	switch id {
	case ThreadMain:
		return "main"
	case ThreadCore:
		return "core"
	case ThreadRenderer:
		return "renderer"
	}
	return "unknown"
}

var boundThreads [threadCount]atomic.Int64

// BindThread marks the calling goroutine as thread id.
func BindThread(id ThreadID) {
	boundThreads[id].Store(goroutineID())
}

// UnbindThread forgets the goroutine bound to id.
func UnbindThread(id ThreadID) {
	boundThreads[id].Store(0)
}

// IsThread reports whether the caller runs on thread id.
func IsThread(id ThreadID) bool {
	return boundThreads[id].Load() == goroutineID()
}

// CheckThread asserts in debug builds that the caller runs on thread id.
// Unbound threads are not checked.
func CheckThread(id ThreadID) {
	if !check.Debug {
		return
	}
	g := boundThreads[id].Load()
	check.Check(g == 0 || g == goroutineID(), "must be called on the %s thread", id)
}

func goroutineID() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}

// MessageLoop runs closures posted from any goroutine on its owning thread.
type MessageLoop struct {
	id    ThreadID
	tasks chan func()
}

func NewMessageLoop(id ThreadID, capacity int) *MessageLoop {
	return &MessageLoop{id: id, tasks: make(chan func(), capacity)}
}

func (l *MessageLoop) ID() ThreadID {
	return l.id
}

// Post queues fn for the owning thread. It blocks while the queue is full.
func (l *MessageLoop) Post(fn func()) {
	l.tasks <- fn
}

// TryPost queues fn without blocking and reports whether it was accepted.
func (l *MessageLoop) TryPost(fn func()) bool {
	select {
	case l.tasks <- fn:
		return true
	default:
		return false
	}
}

// Drain runs every queued closure without blocking and returns how many ran.
// It is called by the owning thread once per frame.
func (l *MessageLoop) Drain() int {
	n := 0
	for {
		select {
		case fn := <-l.tasks:
			fn()
			n++
		default:
			return n
		}
	}
}

// Run binds the calling goroutine to the loop's thread and executes posted
// closures until ctx ends. When ticks is non-nil, onTick runs on every tick.
func (l *MessageLoop) Run(ctx context.Context, ticks <-chan time.Time, onTick func(time.Time)) error {
	BindThread(l.id)
	defer UnbindThread(l.id)
	for {
		select {
		case <-ctx.Done():
			l.Drain()
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		case now := <-ticks:
			if onTick != nil {
				onTick(now)
			}
		}
	}
}

func (l *MessageLoop) Pending() int {
	return len(l.tasks)
}
