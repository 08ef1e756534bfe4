// Package platform opens the native surface a backend renders into.
package platform

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"ark-render/internal/config"
	"ark-render/internal/graphics/renderer"
)

// Surface is the window the application loop drives from the main thread.
type Surface interface {
	Info() renderer.PlatformInfo
	// PollEvents processes pending window events, waiting at most timeout.
	PollEvents(timeout time.Duration)
	ShouldClose() bool
	SetShouldClose(bool)
	// SetResizeCallback is called on the main thread with the new
	// framebuffer size.
	SetResizeCallback(fn func(width, height int))
	Destroy()
}

var ErrNoVulkan = errors.New("vulkan is not supported by the window system")

// Init initializes glfw. It must run on the main OS thread.
func Init() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	return nil
}

func Terminate() {
	glfw.Terminate()
}

// Window is a glfw window configured for the opengl or vulkan backend.
type Window struct {
	win     *glfw.Window
	backend string

	mu     sync.Mutex
	resize func(width, height int)

	// render thread only
	swapInterval int
}

// Open creates the window for r.Backend. GL windows get a core profile
// context matching r.Version, 4.1 when auto. The context is left detached so
// the render thread can make it current.
func Open(app config.Application, r config.Renderer) (*Window, error) {
	glfw.DefaultWindowHints()
	switch r.Backend {
	case "opengl":
		major, minor := 4, 1
		if v, err := renderer.ParseRendererVersion(r.Version); err == nil && v.IsOpenGL() {
			major, minor = v.Major(), v.Minor()
		}
		glfw.WindowHint(glfw.ContextVersionMajor, major)
		glfw.WindowHint(glfw.ContextVersionMinor, minor)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
		if r.Debug {
			glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
		}
	case "vulkan":
		if !glfw.VulkanSupported() {
			return nil, ErrNoVulkan
		}
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	default:
		return nil, fmt.Errorf("backend %q does not render into a window", r.Backend)
	}
	resizable := glfw.False
	if app.Resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	win, err := glfw.CreateWindow(app.Width, app.Height, app.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}
	if r.Backend == "opengl" {
		glfw.DetachCurrentContext()
	}

	w := &Window{win: win, backend: r.Backend, swapInterval: -1}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.mu.Lock()
		fn := w.resize
		w.mu.Unlock()
		if fn != nil && width > 0 && height > 0 {
			fn(width, height)
		}
	})
	return w, nil
}

// Info fills the hooks the window's backend needs.
func (w *Window) Info() renderer.PlatformInfo {
	width, height := w.win.GetFramebufferSize()
	info := renderer.PlatformInfo{Window: w.win, Width: width, Height: height}
	switch w.backend {
	case "opengl":
		info.MakeCurrent = func() {
			w.win.MakeContextCurrent()
			w.applySwapInterval()
		}
		info.SwapBuffers = func() {
			w.win.SwapBuffers()
			w.applySwapInterval()
		}
	case "vulkan":
		info.VulkanProcAddr = glfw.GetVulkanGetInstanceProcAddress()
		info.VulkanExtensions = w.win.GetRequiredInstanceExtensions()
		info.CreateVulkanSurface = func(instance any) (uintptr, error) {
			return w.win.CreateWindowSurface(instance, nil)
		}
	}
	return info
}

// applySwapInterval follows the vsync setting. It runs with the context
// current.
func (w *Window) applySwapInterval() {
	interval := 0
	if config.GetVSync() {
		interval = 1
	}
	if interval != w.swapInterval {
		glfw.SwapInterval(interval)
		w.swapInterval = interval
	}
}

func (w *Window) PollEvents(timeout time.Duration) {
	if timeout <= 0 {
		glfw.PollEvents()
		return
	}
	glfw.WaitEventsTimeout(timeout.Seconds())
}

func (w *Window) ShouldClose() bool     { return w.win.ShouldClose() }
func (w *Window) SetShouldClose(v bool) { w.win.SetShouldClose(v) }

func (w *Window) SetResizeCallback(fn func(width, height int)) {
	w.mu.Lock()
	w.resize = fn
	w.mu.Unlock()
}

func (w *Window) Destroy() {
	w.win.Destroy()
}
