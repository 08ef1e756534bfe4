package opengl

import (
	"fmt"
	"strings"

	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type pipelineFactory struct{}

func (pipelineFactory) BuildPipeline(desc renderer.PipelineDescriptor) renderer.Pipeline {
	return &program{desc: desc, uniforms: make(map[string]int32)}
}

// program is a linked GL program with its own vertex array object.
type program struct {
	desc     renderer.PipelineDescriptor
	id       uint32
	vao      uint32
	uniforms map[string]int32
}

func (p *program) ID() uint64                               { return uint64(p.id) }
func (p *program) Descriptor() *renderer.PipelineDescriptor { return &p.desc }

func (p *program) Upload(gc *renderer.GraphicsContext) {
	if p.id != 0 {
		return
	}
	id, err := compileProgram(p.desc.VertexSource, p.desc.FragmentSource)
	if err != nil {
		check.Fatalf("pipeline %q: %v", p.desc.Name, err)
	}
	p.id = id
	gl.GenVertexArrays(1, &p.vao)
	clear(p.uniforms)
}

func (p *program) uniformLocation(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.uniforms[name] = loc
	return loc
}

func (p *program) setUniform(u renderer.Uniform) {
	loc := p.uniformLocation(u.Name)
	if loc < 0 {
		return
	}
	switch v := u.Value.(type) {
	case float32:
		gl.Uniform1f(loc, v)
	case int32:
		gl.Uniform1i(loc, v)
	case mgl32.Vec2:
		gl.Uniform2fv(loc, 1, &v[0])
	case mgl32.Vec3:
		gl.Uniform3fv(loc, 1, &v[0])
	case mgl32.Vec4:
		gl.Uniform4fv(loc, 1, &v[0])
	case mgl32.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, &v[0])
	default:
		check.Fatalf("uniform %q: unsupported type %T", u.Name, u.Value)
	}
}

func setCapability(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func (p *program) Draw(gc *renderer.GraphicsContext, dc *renderer.DrawingContext) {
	check.Check(p.id != 0, "pipeline %q bound before upload", p.desc.Name)
	engine := gc.RenderEngine()

	gl.UseProgram(p.id)
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(dc.Vertices.ID()))
	for _, a := range p.desc.Attributes {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointer(a.Location, int32(a.Components), gl.FLOAT, false, int32(p.desc.Stride), gl.PtrOffset(a.Offset))
	}
	for _, u := range dc.Uniforms {
		p.setUniform(u)
	}
	for i, t := range dc.Textures {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(textureTarget(t.Delegate().Type()), uint32(t.ID()))
	}

	setCapability(gl.DEPTH_TEST, p.desc.DepthTest)
	setCapability(gl.BLEND, p.desc.Blend)
	if p.desc.Blend {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
	setCapability(gl.CULL_FACE, p.desc.CullBack)
	setCapability(gl.SCISSOR_TEST, dc.Scissor != nil)
	if dc.Scissor != nil {
		r := engine.ToRendererRect(*dc.Scissor)
		gl.Scissor(int32(r.Left), int32(r.Top), int32(r.Width()), int32(r.Height()))
	}

	mode := drawMode(p.desc.DrawMode)
	if dc.Indexed() {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(dc.Indices.ID()))
		gl.DrawElements(mode, int32(dc.DrawCount), gl.UNSIGNED_SHORT, gl.PtrOffset(dc.FirstElement*2))
	} else {
		gl.DrawArrays(mode, int32(dc.FirstElement), int32(dc.DrawCount))
	}
	gl.BindVertexArray(0)
	glCheckError("draw " + p.desc.Name)
}

func (p *program) Recycle() renderer.ResourceRecycleFunc {
	id, vao := p.id, p.vao
	if id == 0 {
		return renderer.NoopRecycle
	}
	p.id, p.vao = 0, 0
	return func(*renderer.GraphicsContext) {
		gl.DeleteVertexArrays(1, &vao)
		gl.DeleteProgram(id)
	}
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertexShader)
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragmentShader)

	id := gl.CreateProgram()
	gl.AttachShader(id, vertexShader)
	gl.AttachShader(id, fragmentShader)
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(id, logLength, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return 0, fmt.Errorf("link program: %v", strings.TrimRight(log, "\x00"))
	}
	return id, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile shader: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}
