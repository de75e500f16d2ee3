package bind_group_provider

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func transformLayout() wgpu.BindGroupLayoutDescriptor {
	var params, frame, sampler wgpu.BindGroupLayoutEntry
	params.Binding = 0
	params.Buffer.Type = wgpu.BufferBindingTypeUniform
	frame.Binding = 1
	frame.Texture.SampleType = wgpu.TextureSampleTypeFloat
	frame.Texture.ViewDimension = wgpu.TextureViewDimension2D
	sampler.Binding = 2
	sampler.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	return wgpu.BindGroupLayoutDescriptor{Entries: []wgpu.BindGroupLayoutEntry{params, frame, sampler}}
}

func TestEntriesReportsMissingResource(t *testing.T) {
	buf := &wgpu.Buffer{}
	p := NewBindGroupProvider(transformLayout(), WithLabel("color transform"), WithBuffer(0, buf))

	_, err := p.Entries()
	if err == nil {
		t.Fatalf("expected error for unbound texture")
	}
	if !strings.Contains(err.Error(), "texture binding 1") || !strings.Contains(err.Error(), "color transform") {
		t.Fatalf("error %q does not name the binding and label", err)
	}
}

func TestEntriesInDescriptorOrder(t *testing.T) {
	buf := &wgpu.Buffer{}
	view := &wgpu.TextureView{}
	samp := &wgpu.Sampler{}

	p := NewBindGroupProvider(transformLayout(), WithBuffer(0, buf), WithSampler(2, samp))
	p.SetTextureView(1, view)

	entries, err := p.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Buffer != buf || entries[0].Size != wgpu.WholeSize {
		t.Fatalf("entry 0 = %+v", entries[0])
	}
	if entries[1].TextureView != view || entries[1].Binding != 1 {
		t.Fatalf("entry 1 = %+v", entries[1])
	}
	if entries[2].Sampler != samp || entries[2].Binding != 2 {
		t.Fatalf("entry 2 = %+v", entries[2])
	}
	if p.Buffer(0) != buf {
		t.Fatalf("Buffer(0) did not return the bound buffer")
	}
}

func TestStaleTracksResourceChanges(t *testing.T) {
	view := &wgpu.TextureView{}
	p := NewBindGroupProvider(transformLayout(), WithBuffer(0, &wgpu.Buffer{})).(*bindGroupProvider)
	if !p.Stale() {
		t.Fatalf("provider without a bind group is not stale")
	}

	p.SetTextureView(1, view)
	p.bindGroup = &wgpu.BindGroup{}
	p.dirty = false

	p.SetTextureView(1, view)
	if p.Stale() {
		t.Fatalf("rebinding the same view marked the group stale")
	}
	p.SetTextureView(1, &wgpu.TextureView{})
	if !p.Stale() {
		t.Fatalf("a new view did not mark the group stale")
	}
}
