package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// quadVertex matches the VertexInput struct of the quad_vertex snippet.
type quadVertex struct {
	Position [3]float32
	UV       [2]float32
}

// quadVertices is a full-viewport triangle strip: top-left, top-right, bottom-left, bottom-right.
var quadVertices = []quadVertex{
	{Position: [3]float32{-1, 1, 0}, UV: [2]float32{0, 0}},
	{Position: [3]float32{1, 1, 0}, UV: [2]float32{1, 0}},
	{Position: [3]float32{-1, -1, 0}, UV: [2]float32{0, 1}},
	{Position: [3]float32{1, -1, 0}, UV: [2]float32{1, 1}},
}

// errNoDevice is returned when compiling against a GPU that has no device.
var errNoDevice = errors.New("gpu has no device")

// uniformSize is the size of the ScaleParams uniform, one vec4f.
const uniformSize = 16

// requiredSlots are the roles the color transform binds every draw.
var requiredSlots = []shader.SlotRole{
	shader.SlotParams,
	shader.SlotFrame,
	shader.SlotSimulationLut,
	shader.SlotCorrectionLut,
	shader.SlotSampler,
}

// gpuProgram owns the GPU objects of a compiled color transform.
type gpuProgram struct {
	gpu GPU

	module         *wgpu.ShaderModule
	layouts        []*wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	renderPipeline *wgpu.RenderPipeline

	vertexBuffer  *wgpu.Buffer
	uniformBuffer *wgpu.Buffer
	sampler       *wgpu.Sampler
	placeholder   renderer.Texture

	// groups holds one provider per bind group index.
	groups []bind_group_provider.BindGroupProvider
	slots  map[shader.SlotRole]shader.Slot
}

var _ program = &gpuProgram{}

// resolveSlots looks up every required role in the shader.
func resolveSlots(s shader.Shader) (map[shader.SlotRole]shader.Slot, error) {
	slots := make(map[shader.SlotRole]shader.Slot, len(requiredSlots))
	for _, role := range requiredSlots {
		slot, ok := s.Slot(role)
		if !ok {
			return nil, fmt.Errorf("shader %s declares no %q slot", s.Key(), role)
		}
		slots[role] = slot
	}
	return slots, nil
}

// compileProgram creates the module, layouts, render pipeline and long-lived buffers for s.
func compileProgram(gpu GPU, s shader.Shader, writeMask wgpu.ColorWriteMask) (program, error) {
	slots, err := resolveSlots(s)
	if err != nil {
		return nil, err
	}
	if len(s.VertexLayouts()) == 0 {
		return nil, fmt.Errorf("shader %s declares no vertex input", s.Key())
	}

	device := gpu.Device()
	if device == nil {
		return nil, errNoDevice
	}
	p := &gpuProgram{gpu: gpu, slots: slots}

	p.module, err = device.CreateShaderModule(s.Module())
	if err != nil {
		return nil, err
	}

	descriptors := s.BindGroupLayoutDescriptors()
	maxGroup := -1
	for g := range descriptors {
		maxGroup = max(maxGroup, g)
	}
	p.layouts = make([]*wgpu.BindGroupLayout, maxGroup+1)
	p.groups = make([]bind_group_provider.BindGroupProvider, maxGroup+1)
	for g := 0; g <= maxGroup; g++ {
		desc := descriptors[g]
		desc.Label = fmt.Sprintf("%s Group %d", s.Key(), g)
		layout, layoutErr := device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			p.release()
			return nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		p.layouts[g] = layout
		p.groups[g] = bind_group_provider.NewBindGroupProvider(desc,
			bind_group_provider.WithLabel(desc.Label),
			bind_group_provider.WithBindGroupLayout(layout),
		)
	}

	p.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.Key(),
		BindGroupLayouts: p.layouts,
	})
	if err != nil {
		p.release()
		return nil, err
	}

	p.renderPipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  s.Key() + " Render Pipeline",
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     p.module,
			EntryPoint: s.VertexEntryPoint(),
			Buffers:    s.VertexLayouts()[:1],
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.module,
			EntryPoint: s.FragmentEntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    gpu.SurfaceFormat(),
					WriteMask: writeMask,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleStrip,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.release()
		return nil, err
	}

	if err := p.createResources(s.Key()); err != nil {
		p.release()
		return nil, err
	}
	return p, nil
}

// createResources allocates the quad, the scale uniform, the sampler and the black placeholder
// and binds the long-lived ones into their groups.
func (p *gpuProgram) createResources(key string) error {
	device := p.gpu.Device()
	queue := p.gpu.Queue()

	vertexData := common.SliceToBytes(quadVertices)
	var err error
	p.vertexBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            key + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return err
	}
	queue.WriteBuffer(p.vertexBuffer, 0, vertexData)

	p.uniformBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: key + " Scale Buffer",
		Size:  uniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	queue.WriteBuffer(p.uniformBuffer, 0, scaleUniform([2]float32{1, 1}))

	p.sampler, err = p.gpu.CreateSampler(key+" Sampler", common.SamplerStagingData{})
	if err != nil {
		return err
	}

	p.placeholder, err = p.gpu.CreateTexture2D(key+" Placeholder", common.TextureStagingData{
		Pixels: []byte{0, 0, 0, 255},
		Width:  1,
		Height: 1,
		Format: wgpu.TextureFormatBGRA8Unorm,
	})
	if err != nil {
		return err
	}

	params := p.slots[shader.SlotParams]
	p.groups[params.Group].SetBuffer(params.Binding, p.uniformBuffer)
	samp := p.slots[shader.SlotSampler]
	p.groups[samp.Group].SetSampler(samp.Binding, p.sampler)
	return nil
}

func (p *gpuProgram) setTexture(role shader.SlotRole, view *wgpu.TextureView) {
	slot := p.slots[role]
	p.groups[slot.Group].SetTextureView(slot.Binding, view)
}

func (p *gpuProgram) draw(params DrawParams, clear wgpu.Color) error {
	device := p.gpu.Device()
	queue := p.gpu.Queue()

	queue.WriteBuffer(p.uniformBuffer, 0, scaleUniform(params.Scale))

	frameView := p.placeholder.View()
	if params.Frame != nil && params.Frame.View() != nil {
		frameView = params.Frame.View()
	}
	p.setTexture(shader.SlotFrame, frameView)
	p.setTexture(shader.SlotSimulationLut, params.Simulation.View())
	p.setTexture(shader.SlotCorrectionLut, params.Correction.View())

	bindGroups := make([]*wgpu.BindGroup, len(p.groups))
	for i, g := range p.groups {
		if !g.Stale() {
			bindGroups[i] = g.BindGroup()
			continue
		}
		bg, err := g.Rebuild(device)
		if err != nil {
			return err
		}
		bindGroups[i] = bg
	}

	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       params.Target,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clear,
			},
		},
	})
	pass.SetPipeline(p.renderPipeline)
	for i, bg := range bindGroups {
		pass.SetBindGroup(uint32(i), bg, nil)
	}
	pass.SetVertexBuffer(0, p.vertexBuffer, 0, wgpu.WholeSize)
	pass.Draw(uint32(len(quadVertices)), 1, 0, 0)
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()
	queue.Submit(commandBuffer)
	return nil
}

func (p *gpuProgram) release() {
	for _, g := range p.groups {
		if g != nil {
			g.Release()
		}
	}
	p.groups = nil
	if p.placeholder != nil {
		p.placeholder.Release()
		p.placeholder = nil
	}
	if p.sampler != nil {
		p.sampler.Release()
		p.sampler = nil
	}
	if p.uniformBuffer != nil {
		p.uniformBuffer.Release()
		p.uniformBuffer = nil
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
		p.pipelineLayout = nil
	}
	for _, l := range p.layouts {
		if l != nil {
			l.Release()
		}
	}
	p.layouts = nil
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}
