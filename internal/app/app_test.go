package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ark-render/internal/config"
	"ark-render/internal/core"
	"ark-render/internal/graphics"
	"ark-render/internal/graphics/renderer"
	"ark-render/internal/graphics/renderer/headless"
	"ark-render/internal/platform"
)

func headlessManifest() *config.Manifest {
	m := config.Default()
	m.Renderer.Backend = "headless"
	m.Renderer.FPSLimit = 0
	return m
}

func triangleScene(rc *renderer.RenderController) (*renderer.Renderer, error) {
	layer := graphics.NewRenderLayer()
	composer := renderer.NewDrawElementsComposer(layer)
	composer.SetModel(0, renderer.Model{
		Vertices: []mgl32.Vec3{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0, 0.5, 0}},
		Indices:  []uint16{0, 1, 2},
	})
	layer.MakeLayerContext().Add(graphics.NewRenderObject(0, core.NewConst(mgl32.Vec3{}), nil), nil, nil)
	camera := rc.RenderEngine().CreateCamera(graphics.CoordinateSystemDefault)
	return renderer.NewRenderer(rc, camera, composer)
}

func runWithTimeout(t *testing.T, a *App) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.Run(ctx)
	require.NoError(t, ctx.Err(), "application did not stop by itself")
	return err
}

func TestRunPresentsFramesAndReleasesResources(t *testing.T) {
	a, err := New(headlessManifest(), platform.NewOffscreen(64, 64), triangleScene, WithMaxFrames(3))
	require.NoError(t, err)
	require.NoError(t, runWithTimeout(t, a))
	assert.GreaterOrEqual(t, a.Frames(), uint64(3))

	dev := a.Engine().RendererFactory().(*headless.Factory).Device()
	f, ok := dev.LastFrame()
	require.True(t, ok)
	require.Len(t, f.Draws, 1)
	assert.Equal(t, 3, f.Draws[0].Count)
	assert.Equal(t, 0, dev.Live("buffer"), "buffers are released on shutdown")
	assert.Equal(t, 0, dev.Live("pipeline"))
}

func TestRunStopsWhenSurfaceCloses(t *testing.T) {
	surface := platform.NewOffscreen(16, 16)
	a, err := New(headlessManifest(), surface, triangleScene)
	require.NoError(t, err)
	go func() {
		time.Sleep(50 * time.Millisecond)
		surface.SetShouldClose(true)
	}()
	require.NoError(t, runWithTimeout(t, a))
}

func TestRunReportsSceneError(t *testing.T) {
	boom := errors.New("boom")
	a, err := New(headlessManifest(), platform.NewOffscreen(16, 16), func(*renderer.RenderController) (*renderer.Renderer, error) {
		return nil, boom
	})
	require.NoError(t, err)
	err = runWithTimeout(t, a)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, a.Frames())
}

func TestResizeReachesRenderThread(t *testing.T) {
	surface := platform.NewOffscreen(16, 16)
	a, err := New(headlessManifest(), surface, triangleScene)
	require.NoError(t, err)

	sizes := make(chan [2]int, 1)
	go func() {
		time.Sleep(30 * time.Millisecond)
		surface.Resize(100, 50)
		time.Sleep(50 * time.Millisecond)
		a.RunAtRenderThread(func() {
			w, h := a.Engine().SurfaceSize()
			sizes <- [2]int{w, h}
			surface.SetShouldClose(true)
		})
	}()
	require.NoError(t, runWithTimeout(t, a))
	assert.Equal(t, [2]int{100, 50}, <-sizes)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	m := headlessManifest()
	m.Renderer.Backend = "software"
	_, err := New(m, platform.NewOffscreen(1, 1), triangleScene)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown renderer backend")
}
