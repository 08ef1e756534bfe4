package renderer

import (
	"sync"

	"ark-render/internal/graphics"

	"github.com/go-gl/mathgl/mgl32"
)

// DrawMode is the primitive topology of a pipeline.
type DrawMode uint8

const (
	DrawTriangles DrawMode = iota
	DrawTriangleStrip
	DrawLines
	DrawPoints
)

// VertexAttribute is one float attribute inside an interleaved vertex.
type VertexAttribute struct {
	Name       string
	Location   uint32
	Components int
	// Offset is the byte offset inside the vertex.
	Offset int
}

// PipelineDescriptor describes a shader program and its fixed state.
// OpenGL consumes the GLSL sources, Vulkan the SPIR-V modules.
type PipelineDescriptor struct {
	Name           string
	VertexSource   string
	FragmentSource string
	VertexSPIRV    []byte
	FragmentSPIRV  []byte
	Attributes     []VertexAttribute
	Stride         int
	DrawMode       DrawMode
	DepthTest      bool
	Blend          bool
	CullBack       bool
}

// Pipeline is a compiled program. Upload compiles it on the render thread.
type Pipeline interface {
	Resource
	Descriptor() *PipelineDescriptor
	// Draw binds the program, the buffers and the uniforms of dc and issues
	// the draw call.
	Draw(gc *GraphicsContext, dc *DrawingContext)
}

type PipelineFactory interface {
	BuildPipeline(desc PipelineDescriptor) Pipeline
}

// PipelineBindings builds its pipeline on first use.
type PipelineBindings struct {
	desc     PipelineDescriptor
	factory  PipelineFactory
	once     sync.Once
	pipeline Pipeline
}

func NewPipelineBindings(factory PipelineFactory, desc PipelineDescriptor) *PipelineBindings {
	return &PipelineBindings{desc: desc, factory: factory}
}

func (b *PipelineBindings) EnsurePipeline() Pipeline {
	b.once.Do(func() { b.pipeline = b.factory.BuildPipeline(b.desc) })
	return b.pipeline
}

// Uniform is a named shader constant. Value is float32, int32, mgl32.Vec2,
// mgl32.Vec3, mgl32.Vec4 or mgl32.Mat4.
type Uniform struct {
	Name  string
	Value any
}

// DrawingContext gathers everything one draw call needs. It is built on the
// core thread and consumed on the render thread.
type DrawingContext struct {
	Pipeline  Pipeline
	Vertices  BufferSnapshot
	Indices   BufferSnapshot
	DrawCount int
	// FirstElement is honored only when the backend can draw elements
	// incrementally.
	FirstElement int
	Uniforms     []Uniform
	Textures     []*Texture
	Scissor      *graphics.Rect
}

func (dc *DrawingContext) SetUniform(name string, value any) {
	for i := range dc.Uniforms {
		if dc.Uniforms[i].Name == name {
			dc.Uniforms[i].Value = value
			return
		}
	}
	dc.Uniforms = append(dc.Uniforms, Uniform{Name: name, Value: value})
}

func (dc *DrawingContext) SetMat4(name string, m mgl32.Mat4) {
	dc.SetUniform(name, m)
}

// Indexed reports whether the draw uses an index buffer.
func (dc *DrawingContext) Indexed() bool {
	return dc.Indices.Delegate() != nil
}

// Upload pushes buffer content, textures and the program. It must precede
// Draw in the same command.
func (dc *DrawingContext) Upload(gc *GraphicsContext) {
	dc.Vertices.Upload(gc)
	dc.Indices.Upload(gc)
	for _, t := range dc.Textures {
		if t.ID() == 0 {
			t.Upload(gc)
		}
	}
	if dc.Pipeline.ID() == 0 {
		dc.Pipeline.Upload(gc)
	}
}

// ToRenderCommand returns a command that uploads, then draws.
func (dc *DrawingContext) ToRenderCommand() RenderCommand {
	d := *dc
	return RenderCommandFunc(func(gc *GraphicsContext) {
		if d.DrawCount == 0 {
			return
		}
		d.Upload(gc)
		d.Pipeline.Draw(gc, &d)
	})
}
