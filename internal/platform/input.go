package platform

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action is a window command bound to one or more keys.
type Action int

const (
	ActionQuit Action = iota
	ActionToggleVSync
	ActionLogProfile
	ActionCount
)

// Keymap maps physical keys to actions. It is read from the glfw key
// callback and may be rebound from any goroutine.
type Keymap struct {
	mu   sync.RWMutex
	keys map[glfw.Key][]Action
}

// NewKeymap binds Escape to quit, V to vsync and P to the profiler log.
func NewKeymap() *Keymap {
	k := &Keymap{keys: make(map[glfw.Key][]Action)}
	k.Bind(glfw.KeyEscape, ActionQuit)
	k.Bind(glfw.KeyV, ActionToggleVSync)
	k.Bind(glfw.KeyP, ActionLogProfile)
	return k
}

func (k *Keymap) Bind(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	k.mu.Lock()
	k.keys[key] = append(k.keys[key], action)
	k.mu.Unlock()
}

func (k *Keymap) Unbind(key glfw.Key) {
	k.mu.Lock()
	delete(k.keys, key)
	k.mu.Unlock()
}

// Resolve returns the actions a key event triggers. Only presses trigger;
// repeats and releases do not.
func (k *Keymap) Resolve(key glfw.Key, action glfw.Action) []Action {
	if action != glfw.Press {
		return nil
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.keys[key]
}

// SetActionCallback routes key presses through km to fn on the main thread.
func (w *Window) SetActionCallback(km *Keymap, fn func(Action)) {
	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		for _, a := range km.Resolve(key, action) {
			fn(a)
		}
	})
}
