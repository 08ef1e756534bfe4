package headless

import (
	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"
)

type pipelineFactory struct {
	device *Device
}

func (f *pipelineFactory) BuildPipeline(desc renderer.PipelineDescriptor) renderer.Pipeline {
	return &pipeline{device: f.device, desc: desc}
}

type pipeline struct {
	device *Device
	desc   renderer.PipelineDescriptor
	id     uint64
}

func (p *pipeline) ID() uint64                               { return p.id }
func (p *pipeline) Descriptor() *renderer.PipelineDescriptor { return &p.desc }

func (p *pipeline) Upload(gc *renderer.GraphicsContext) {
	if p.id != 0 {
		return
	}
	check.Check(p.desc.VertexSource != "" || len(p.desc.VertexSPIRV) > 0, "pipeline %q has no vertex stage", p.desc.Name)
	p.id = p.device.alloc("pipeline")
}

func (p *pipeline) Draw(gc *renderer.GraphicsContext, dc *renderer.DrawingContext) {
	check.Check(p.id != 0, "pipeline %q bound before upload", p.desc.Name)
	check.Check(dc.Vertices.ID() != 0, "pipeline %q drawn before its vertex buffer was uploaded", p.desc.Name)
	c := DrawCall{
		Pipeline:     p.desc.Name,
		VertexBuffer: dc.Vertices.ID(),
		IndexBuffer:  dc.Indices.ID(),
		Count:        dc.DrawCount,
		Uniforms:     make(map[string]any, len(dc.Uniforms)),
	}
	if gc.RenderEngine() == nil || gc.RenderEngine().RendererFactory().Features().CanDrawElementIncremental {
		c.First = dc.FirstElement
	}
	for _, u := range dc.Uniforms {
		c.Uniforms[u.Name] = u.Value
	}
	p.device.record(c)
}

func (p *pipeline) Recycle() renderer.ResourceRecycleFunc {
	id := p.id
	if id == 0 {
		return renderer.NoopRecycle
	}
	p.id = 0
	return func(*renderer.GraphicsContext) { p.device.release(id) }
}
