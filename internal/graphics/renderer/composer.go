package renderer

import (
	"sync/atomic"

	"ark-render/internal/check"
	"ark-render/internal/graphics"
	"ark-render/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// Model is the geometry drawn for one renderable type.
type Model struct {
	Vertices []mgl32.Vec3
	Indices  []uint16
}

// ColorVarying is the varying name DrawElementsComposer reads vertex colors
// from.
const ColorVarying = "color"

// vertexFloats is position (3) + color (4).
const vertexFloats = 7

const drawElementsVertexShader = `
layout(location = 0) in vec3 a_Position;
layout(location = 1) in vec4 a_Color;
uniform mat4 u_VP;
out vec4 v_Color;
void main() {
	v_Color = a_Color;
	gl_Position = u_VP * vec4(a_Position, 1.0);
}
`

const drawElementsFragmentShader = `
in vec4 v_Color;
out vec4 FragColor;
void main() {
	FragColor = v_Color;
}
`

// DrawElementsDescriptor is the position+color pipeline used by
// DrawElementsComposer.
func DrawElementsDescriptor(ctx *RenderEngineContext) PipelineDescriptor {
	return PipelineDescriptor{
		Name:           "draw_elements",
		VertexSource:   ctx.Preprocess(drawElementsVertexShader),
		FragmentSource: ctx.Preprocess(drawElementsFragmentShader),
		Attributes: []VertexAttribute{
			{Name: "a_Position", Location: 0, Components: 3, Offset: 0},
			{Name: "a_Color", Location: 1, Components: 4, Offset: 12},
		},
		Stride:    vertexFloats * 4,
		DrawMode:  DrawTriangles,
		DepthTest: true,
	}
}

// DrawElementsComposer draws every visible element of a layer with the model
// registered for its type, batched into one vertex and one index buffer.
// Buffers are rebuilt only when the layer snapshot is dirty.
//
// Frames may be dropped between the core and the render thread, so the newest
// batch rides along with every command until one carrying it was drawn.
type DrawElementsComposer struct {
	layer    *graphics.RenderLayer
	models   map[int32]Model
	rc       *RenderController
	bindings *PipelineBindings
	vertices *Buffer
	indices  *Buffer

	dc         DrawingContext
	hasContent bool
	vertexData Uploader
	indexData  Uploader
	generation uint64
	drawnUpTo  atomic.Uint64

	culling bool
	lastVP  mgl32.Mat4
}

func NewDrawElementsComposer(layer *graphics.RenderLayer) *DrawElementsComposer {
	return &DrawElementsComposer{layer: layer, models: make(map[int32]Model)}
}

// SetModel registers the geometry for renderables of type typ.
func (c *DrawElementsComposer) SetModel(typ int32, m Model) {
	check.Check(typ >= 0, "model type %d is reserved", typ)
	c.models[typ] = m
	c.layer.Reload()
}

// SetCulling skips elements whose bounds fall outside the camera frustum.
// Batches are then also rebuilt whenever the camera moves.
func (c *DrawElementsComposer) SetCulling(enabled bool) {
	c.culling = enabled
	c.layer.Reload()
}

func (c *DrawElementsComposer) Init(rc *RenderController) error {
	c.rc = rc
	engine := rc.RenderEngine()
	factory := engine.RendererFactory()
	c.bindings = NewPipelineBindings(factory.CreatePipelineFactory(), DrawElementsDescriptor(engine.Context()))
	c.vertices = rc.MakeBuffer(UsageVertex|UsageDynamic, nil, UploadOnce)
	c.indices = rc.MakeBuffer(UsageIndex|UsageDynamic, nil, UploadOnce)
	return nil
}

// Compose snapshots the layer and returns its draw command. Once a batch was
// drawn, later commands draw the same buffers again without an upload.
func (c *DrawElementsComposer) Compose(req *graphics.RenderRequest, camera *graphics.Camera) RenderCommand {
	defer profiling.Track("composer.DrawElements")()
	snap := c.layer.Snapshot(req)
	vp := camera.VP()
	moved := c.culling && !vp.ApproxEqualThreshold(c.lastVP, 1e-6)

	if snap.Dirty() || !c.hasContent || moved {
		c.lastVP = vp
		var frustum *graphics.Frustum
		if c.culling {
			f := camera.Frustum()
			frustum = &f
		}
		vertices, indices := c.build(snap, frustum)
		c.generation++
		c.vertexData = NewFloat32Uploader(vertices)
		c.indexData = NewUint16Uploader(indices)
		c.dc = DrawingContext{
			Pipeline:  c.bindings.EnsurePipeline(),
			DrawCount: len(indices),
		}
		c.hasContent = true
	}
	if c.drawnUpTo.Load() < c.generation {
		c.dc.Vertices = c.vertices.SnapshotWith(c.vertexData)
		c.dc.Indices = c.indices.SnapshotWith(c.indexData)
	} else {
		c.dc.Vertices = c.vertices.Snapshot()
		c.dc.Indices = c.indices.Snapshot()
	}
	c.dc.Uniforms = nil
	c.dc.SetMat4("u_VP", vp)

	draw := c.dc.ToRenderCommand()
	generation := c.generation
	return RenderCommandFunc(func(gc *GraphicsContext) {
		draw.Draw(gc)
		c.markDrawn(generation)
	})
}

// markDrawn runs on the render thread once the batch of generation is in the
// buffers.
func (c *DrawElementsComposer) markDrawn(generation uint64) {
	for {
		cur := c.drawnUpTo.Load()
		if generation <= cur || c.drawnUpTo.CompareAndSwap(cur, generation) {
			return
		}
	}
}

func (c *DrawElementsComposer) build(snap *graphics.RenderLayerSnapshot, frustum *graphics.Frustum) ([]float32, []uint16) {
	var vertices []float32
	var indices []uint16
	var world []mgl32.Vec3
	for _, e := range snap.VisibleElements() {
		m, ok := c.models[e.Type]
		if !ok || len(m.Vertices) == 0 {
			continue
		}
		model := e.Model()
		world = world[:0]
		lo := model.Mul4x1(m.Vertices[0].Vec4(1)).Vec3()
		hi := lo
		for _, p := range m.Vertices {
			w := model.Mul4x1(p.Vec4(1)).Vec3()
			world = append(world, w)
			for i := range 3 {
				lo[i], hi[i] = min(lo[i], w[i]), max(hi[i], w[i])
			}
		}
		if frustum != nil && !frustum.IntersectsAABB(lo, hi) {
			continue
		}

		base := len(vertices) / vertexFloats
		check.Check(base+len(m.Vertices) <= 1<<16, "draw elements batch exceeds 16-bit indices")
		color := mgl32.Vec4{1, 1, 1, 1}
		if v, ok := e.Varyings.Lookup(ColorVarying); ok {
			color = v
		}
		for _, w := range world {
			vertices = append(vertices, w[0], w[1], w[2], color[0], color[1], color[2], color[3])
		}
		for _, i := range m.Indices {
			indices = append(indices, uint16(base)+i)
		}
	}
	return vertices, indices
}

func (c *DrawElementsComposer) Dispose() {
	if c.rc == nil {
		return
	}
	c.rc.Release(c.vertices.Delegate())
	c.rc.Release(c.indices.Delegate())
	if p := c.bindings.EnsurePipeline(); p != nil {
		c.rc.Release(p)
	}
	c.hasContent = false
}

func (c *DrawElementsComposer) SetViewport(width, height int) {}
