package bind_group_provider

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// descriptor is the layout the bind group is assembled against.
	descriptor wgpu.BindGroupLayoutDescriptor

	// layout is the GPU layout created from descriptor, owned by the pipeline that created it.
	layout *wgpu.BindGroupLayout

	// bindGroup is the most recently built bind group, or nil.
	bindGroup *wgpu.BindGroup
	// dirty is set when a bound resource changes after the last Rebuild.
	dirty bool

	// buffers holds the buffers bound to this group, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textureViews holds the texture views bound to this group, keyed by binding index.
	textureViews map[int]*wgpu.TextureView
	// samplers holds the samplers bound to this group, keyed by binding index.
	samplers map[int]*wgpu.Sampler
}

// BindGroupProvider tracks the resources bound at each binding of one bind group and assembles
// the GPU bind group from them. The bind group only needs rebuilding when Stale reports that a
// bound resource changed, typically when a new frame texture arrives.
//
// Usage pattern:
//  1. The pipeline creates a provider per group from the shader's layout descriptor
//  2. Long-lived buffers and samplers are set once
//  3. Each frame the texture views are set and, if Stale, Rebuild produces the bind group for the draw
type BindGroupProvider interface {
	// Release releases the bind group. Bound resources are owned elsewhere and are not released.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Layout returns the bind group layout the provider builds against.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout, nil until set
	Layout() *wgpu.BindGroupLayout

	// Descriptor returns the layout descriptor.
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor
	Descriptor() wgpu.BindGroupLayoutDescriptor

	// BindGroup returns the most recently built bind group.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// Buffer returns the buffer at a binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// SetBuffer binds a buffer.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView binds a texture view.
	//
	// Parameters:
	//   - binding: the binding index
	//   - view: the texture view
	SetTextureView(binding int, view *wgpu.TextureView)

	// SetSampler binds a sampler.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSampler(binding int, s *wgpu.Sampler)

	// Entries assembles the bind group entries for every binding in the descriptor.
	//
	// Returns:
	//   - []wgpu.BindGroupEntry: one entry per descriptor entry, in descriptor order
	//   - error: an error naming the first binding that has no resource of the kind the layout expects
	Entries() ([]wgpu.BindGroupEntry, error)

	// Stale reports whether the bind group is missing or a bound resource changed since the last Rebuild.
	//
	// Returns:
	//   - bool: true if Rebuild must run before the bind group is used
	Stale() bool

	// Rebuild releases the previous bind group and creates a new one from the current resources.
	//
	// Parameters:
	//   - device: the device to create the bind group on
	//
	// Returns:
	//   - *wgpu.BindGroup: the new bind group
	//   - error: an error if a binding is unset or creation fails
	Rebuild(device *wgpu.Device) (*wgpu.BindGroup, error)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a provider for one bind group layout.
//
// Parameters:
//   - descriptor: the layout descriptor, usually reflected from the shader
//   - opts: functional options
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(descriptor wgpu.BindGroupLayoutDescriptor, opts ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		descriptor:   descriptor,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Layout() *wgpu.BindGroupLayout {
	return p.layout
}

func (p *bindGroupProvider) Descriptor() wgpu.BindGroupLayoutDescriptor {
	return p.descriptor
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if p.buffers[binding] != buf {
		p.buffers[binding] = buf
		p.dirty = true
	}
}

func (p *bindGroupProvider) SetTextureView(binding int, view *wgpu.TextureView) {
	if p.textureViews[binding] != view {
		p.textureViews[binding] = view
		p.dirty = true
	}
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	if p.samplers[binding] != s {
		p.samplers[binding] = s
		p.dirty = true
	}
}

func (p *bindGroupProvider) Stale() bool {
	return p.bindGroup == nil || p.dirty
}

func (p *bindGroupProvider) Entries() ([]wgpu.BindGroupEntry, error) {
	entries := make([]wgpu.BindGroupEntry, len(p.descriptor.Entries))
	for i, layoutEntry := range p.descriptor.Entries {
		binding := int(layoutEntry.Binding)
		switch {
		case layoutEntry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			view := p.textureViews[binding]
			if view == nil {
				return nil, fmt.Errorf("%s: texture binding %d has no view", p.label, binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: layoutEntry.Binding, TextureView: view}
		case layoutEntry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			s := p.samplers[binding]
			if s == nil {
				return nil, fmt.Errorf("%s: sampler binding %d has no sampler", p.label, binding)
			}
			entries[i] = wgpu.BindGroupEntry{Binding: layoutEntry.Binding, Sampler: s}
		default:
			buf := p.buffers[binding]
			if buf == nil {
				return nil, fmt.Errorf("%s: buffer binding %d has no buffer", p.label, binding)
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding: layoutEntry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}
	return entries, nil
}

func (p *bindGroupProvider) Rebuild(device *wgpu.Device) (*wgpu.BindGroup, error) {
	entries, err := p.Entries()
	if err != nil {
		return nil, err
	}
	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.label + " Bind Group",
		Layout:  p.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	p.Release()
	p.bindGroup = bindGroup
	p.dirty = false
	return bindGroup, nil
}
