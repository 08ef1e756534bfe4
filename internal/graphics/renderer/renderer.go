package renderer

import (
	"ark-render/internal/graphics"
	"ark-render/internal/profiling"
)

// ProjectionFunc sets the camera projection for a surface size.
type ProjectionFunc func(camera *graphics.Camera, width, height int)

// OrthoProjection keeps a [-1, 1] vertical extent and scales x by aspect.
func OrthoProjection(camera *graphics.Camera, width, height int) {
	aspect := float32(width) / float32(max(height, 1))
	camera.Ortho(-aspect, aspect, -1, 1, -1, 1)
}

// Renderer orchestrates composing via composers
type Renderer struct {
	rc         *RenderController
	composers  []Composer
	camera     *graphics.Camera
	projection ProjectionFunc
}

// NewRenderer initializes composers in order. If one fails, those already
// initialized are disposed.
func NewRenderer(rc *RenderController, camera *graphics.Camera, cs ...Composer) (*Renderer, error) {
	r := &Renderer{rc: rc, camera: camera, projection: OrthoProjection}
	for _, c := range cs {
		if err := c.Init(rc); err != nil {
			r.Dispose()
			return nil, err
		}
		r.composers = append(r.composers, c)
	}
	return r, nil
}

func (r *Renderer) SetProjection(fn ProjectionFunc) {
	r.projection = fn
}

// Compose runs on the core thread and returns the frame's command.
func (r *Renderer) Compose(req *graphics.RenderRequest) RenderCommand {
	defer profiling.Track("renderer.Compose")()
	r.rc.PreComposeUpdate(req.Tick)
	r.camera.Update(req.Tick)

	cmds := make(RenderCommandList, 0, len(r.composers))
	for _, c := range r.composers {
		if cmd := c.Compose(req, r.camera); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// Dispose cleans up all composers in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.composers) - 1; i >= 0; i-- {
		r.composers[i].Dispose()
	}
	r.composers = nil
}

func (r *Renderer) Camera() *graphics.Camera {
	return r.camera
}

// UpdateViewport reprojects the camera and notifies composers.
func (r *Renderer) UpdateViewport(width, height int) {
	if r.projection != nil {
		r.projection(r.camera, width, height)
	}
	for _, c := range r.composers {
		c.SetViewport(width, height)
	}
}
