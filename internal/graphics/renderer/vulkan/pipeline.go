package vulkan

import (
	"encoding/binary"
	"log/slog"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"

	"ark-render/internal/check"
	"ark-render/internal/graphics/renderer"
)

// maxPushConstants is the size every implementation guarantees.
const maxPushConstants = 128

type pipelineFactory struct {
	d *device
}

func (f pipelineFactory) BuildPipeline(desc renderer.PipelineDescriptor) renderer.Pipeline {
	return &pipeline{d: f.d, desc: desc, compiled: make(map[vk.RenderPass]vk.Pipeline)}
}

// pipeline binds uniforms as push constants, packed in the order the
// drawing context lists them.
type pipeline struct {
	d    *device
	desc renderer.PipelineDescriptor

	id       uint64
	vertex   vk.ShaderModule
	fragment vk.ShaderModule
	layout   vk.PipelineLayout
	compiled map[vk.RenderPass]vk.Pipeline
	warned   bool
}

func (p *pipeline) ID() uint64                               { return p.id }
func (p *pipeline) Descriptor() *renderer.PipelineDescriptor { return &p.desc }

// Upload creates the shader modules and the layout. The pipeline object
// itself is built per render pass on first draw.
func (p *pipeline) Upload(gc *renderer.GraphicsContext) {
	if p.id != 0 {
		return
	}
	if len(p.desc.VertexSPIRV) == 0 || len(p.desc.FragmentSPIRV) == 0 {
		if !p.warned {
			slog.Warn("vulkan pipeline has no SPIR-V, draws are skipped", "pipeline", p.desc.Name)
			p.warned = true
		}
		return
	}
	p.vertex = p.shaderModule(p.desc.VertexSPIRV)
	p.fragment = p.shaderModule(p.desc.FragmentSPIRV)

	ret := vk.CreatePipelineLayout(p.d.dev, &vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PushConstantRangeCount: 1,
		PPushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
			Size:       maxPushConstants,
		}},
	}, nil, &p.layout)
	orFatal(ret, "create pipeline layout")
	p.id = nextHandle()
}

func (p *pipeline) shaderModule(code []byte) vk.ShaderModule {
	check.Check(len(code)%4 == 0, "pipeline %q: SPIR-V size %d is not a multiple of 4", p.desc.Name, len(code))
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(p.d.dev, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    words,
	}, nil, &module)
	orFatal(ret, "create shader module "+p.desc.Name)
	return module
}

func (p *pipeline) build(pass vk.RenderPass) vk.Pipeline {
	if vp, ok := p.compiled[pass]; ok {
		return vp
	}
	attrs := make([]vk.VertexInputAttributeDescription, len(p.desc.Attributes))
	for i, a := range p.desc.Attributes {
		attrs[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Format:   attributeFormat(a.Components),
			Offset:   uint32(a.Offset),
		}
	}
	cull := vk.CullModeNone
	if p.desc.CullBack {
		cull = vk.CullModeBackBit
	}
	blend := vk.PipelineColorBlendAttachmentState{ColorWriteMask: 0xF}
	if p.desc.Blend {
		blend.BlendEnable = vk.True
		blend.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		blend.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		blend.ColorBlendOp = vk.BlendOpAdd
		blend.SrcAlphaBlendFactor = vk.BlendFactorOne
		blend.DstAlphaBlendFactor = vk.BlendFactorZero
		blend.AlphaBlendOp = vk.BlendOpAdd
	}
	depth := vk.False
	if p.desc.DepthTest {
		depth = vk.True
	}

	info := vk.GraphicsPipelineCreateInfo{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: 2,
		PStages: []vk.PipelineShaderStageCreateInfo{
			{SType: vk.StructureTypePipelineShaderStageCreateInfo, Stage: vk.ShaderStageVertexBit, Module: p.vertex, PName: "main\x00"},
			{SType: vk.StructureTypePipelineShaderStageCreateInfo, Stage: vk.ShaderStageFragmentBit, Module: p.fragment, PName: "main\x00"},
		},
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                         vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount: 1,
			PVertexBindingDescriptions: []vk.VertexInputBindingDescription{{
				Stride:    uint32(p.desc.Stride),
				InputRate: vk.VertexInputRateVertex,
			}},
			VertexAttributeDescriptionCount: uint32(len(attrs)),
			PVertexAttributeDescriptions:    attrs,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: topology(p.desc.DrawMode),
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(cull),
			FrontFace:   vk.FrontFaceClockwise,
			LineWidth:   1,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PDepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{
			SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:  depth,
			DepthWriteEnable: depth,
			DepthCompareOp:   vk.CompareOpLessOrEqual,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments:    []vk.PipelineColorBlendAttachmentState{blend},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates:    []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
		},
		Layout:     p.layout,
		RenderPass: pass,
	}
	out := make([]vk.Pipeline, 1)
	ret := vk.CreateGraphicsPipelines(p.d.dev, vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, out)
	orFatal(ret, "create graphics pipeline "+p.desc.Name)
	p.compiled[pass] = out[0]
	return out[0]
}

// pushConstants packs uniform values as std430 floats.
func pushConstants(uniforms []renderer.Uniform) []byte {
	var buf []byte
	put := func(fs ...float32) {
		for _, f := range fs {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	for _, u := range uniforms {
		switch v := u.Value.(type) {
		case float32:
			put(v)
		case int32:
			buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
		case mgl32.Vec2:
			put(v[:]...)
		case mgl32.Vec3:
			put(v[0], v[1], v[2], 0)
		case mgl32.Vec4:
			put(v[:]...)
		case mgl32.Mat4:
			put(v[:]...)
		default:
			check.Fatalf("uniform %q: unsupported type %T", u.Name, u.Value)
		}
	}
	check.Check(len(buf) <= maxPushConstants, "uniforms take %d bytes, push constants hold %d", len(buf), maxPushConstants)
	return buf
}

func (p *pipeline) Draw(gc *renderer.GraphicsContext, dc *renderer.DrawingContext) {
	if p.id == 0 {
		return
	}
	cmd, pass, width, height := p.d.drawPass()
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, p.build(pass))
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		Width:    float32(width),
		Height:   float32(height),
		MaxDepth: 1,
	}})
	scissor := vk.Rect2D{Extent: vk.Extent2D{Width: width, Height: height}}
	if dc.Scissor != nil {
		r := gc.RenderEngine().ToRendererRect(*dc.Scissor)
		scissor = vk.Rect2D{
			Offset: vk.Offset2D{X: int32(r.Left), Y: int32(r.Top)},
			Extent: vk.Extent2D{Width: uint32(r.Width()), Height: uint32(r.Height())},
		}
	}
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{scissor})
	if data := pushConstants(dc.Uniforms); len(data) > 0 {
		vk.CmdPushConstants(cmd, p.layout, vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit),
			0, uint32(len(data)), unsafe.Pointer(&data[0]))
	}
	// TODO: bind dc.Textures through a combined image sampler descriptor set.

	vb := dc.Vertices.Delegate().(*buffer)
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{vb.buf}, []vk.DeviceSize{0})
	if dc.Indexed() {
		ib := dc.Indices.Delegate().(*buffer)
		vk.CmdBindIndexBuffer(cmd, ib.buf, 0, vk.IndexTypeUint16)
		vk.CmdDrawIndexed(cmd, uint32(dc.DrawCount), 1, uint32(dc.FirstElement), 0, 0)
	} else {
		vk.CmdDraw(cmd, uint32(dc.DrawCount), 1, uint32(dc.FirstElement), 0)
	}
}

func (p *pipeline) Recycle() renderer.ResourceRecycleFunc {
	if p.id == 0 {
		return renderer.NoopRecycle
	}
	d, vertex, fragment, layout := p.d, p.vertex, p.fragment, p.layout
	compiled := p.compiled
	p.id = 0
	p.compiled = make(map[vk.RenderPass]vk.Pipeline)
	return func(*renderer.GraphicsContext) {
		for _, vp := range compiled {
			vk.DestroyPipeline(d.dev, vp, nil)
		}
		vk.DestroyPipelineLayout(d.dev, layout, nil)
		vk.DestroyShaderModule(d.dev, vertex, nil)
		vk.DestroyShaderModule(d.dev, fragment, nil)
	}
}
