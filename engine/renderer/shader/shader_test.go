package shader

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

const transformSource = `//@cc:include quad_vertex
//@cc:slot 0 0 params
@group(0) @binding(0) var<uniform> params: ScaleParams;
//@cc:slot 0 1 frame
@group(0) @binding(1) var frameTexture: texture_2d<f32>;
//@cc:slot 0 2 simulation_lut
@group(0) @binding(2) var simulationLut: texture_3d<f32>;
//@cc:slot 0 4 sampler
@group(0) @binding(4) var linearSampler: sampler;
//@cc:slot 0 3 correction_lut
@group(0) @binding(3) var correctionLut: texture_3d<f32>;
//@cc:include lut_sample

struct VertexOutput {
    @builtin(position) position: vec4f,
    @location(0) uv: vec2f,
};

/* block /* nested */ comment with @vertex fn decoy() */
@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = vec4f(in.position.xy * params.scale.xy, in.position.z, 1.0);
    out.uv = in.uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4f {
    let color = textureSample(frameTexture, linearSampler, in.uv).rgb;
    let corrected = sampleLut(correctionLut, linearSampler, color);
    return vec4f(sampleLut(simulationLut, linearSampler, corrected), 1.0);
}
`

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantNil bool
		wantErr bool
		want    Annotation
	}{
		{name: "plain code", line: "let x = 1;", wantNil: true},
		{name: "plain comment", line: "// just a note", wantNil: true},
		{name: "include", line: "  //@cc:include lut_sample", want: Annotation{Type: annotationTypeInclude, Args: []string{"lut_sample"}}},
		{name: "slot", line: "// @cc:slot 1 3 frame", want: Annotation{Type: AnnotationTypeSlot, Args: []string{"frame"}}},
		{name: "empty", line: "//@cc:", wantErr: true},
		{name: "unknown type", line: "//@cc:bogus x", wantErr: true},
		{name: "include arity", line: "//@cc:include a b", wantErr: true},
		{name: "slot arity", line: "//@cc:slot 0 frame", wantErr: true},
		{name: "slot bad group", line: "//@cc:slot x 0 frame", wantErr: true},
		{name: "slot negative binding", line: "//@cc:slot 0 -1 frame", wantErr: true},
		{name: "slot unknown role", line: "//@cc:slot 0 0 depth", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnnotation(tt.line, 7)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", a)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if a != nil {
					t.Fatalf("expected nil, got %+v", a)
				}
				return
			}
			if a.Type != tt.want.Type || strings.Join(a.Args, ",") != strings.Join(tt.want.Args, ",") || a.Line != 7 {
				t.Fatalf("got %+v, want %+v", a, tt.want)
			}
		})
	}

	a, _ := parseAnnotation("//@cc:slot 1 3 frame", 1)
	if *a.Group != 1 || *a.Binding != 3 || a.Role() != SlotFrame {
		t.Fatalf("slot parsed as group=%d binding=%d role=%q", *a.Group, *a.Binding, a.Role())
	}
}

func TestPreProcessorExpandsIncludes(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process(transformSource)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if strings.Contains(out, "@cc:") {
		t.Fatalf("annotations left in output:\n%s", out)
	}
	if !strings.Contains(out, "fn sampleLut(") || !strings.Contains(out, "struct VertexInput") {
		t.Fatalf("includes not expanded:\n%s", out)
	}
	decls := pp.Declarations()
	if len(decls) != 5 {
		t.Fatalf("got %d declarations, want 5", len(decls))
	}
	if decls[0].Role() != SlotParams || decls[4].Role() != SlotCorrectionLut {
		t.Fatalf("declarations out of source order: %q ... %q", decls[0].Role(), decls[4].Role())
	}

	if _, err := pp.Process("//@cc:include quad_vertex\n"); err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if len(pp.Declarations()) != 0 {
		t.Fatalf("declarations not reset between calls")
	}
}

func TestPreProcessorErrors(t *testing.T) {
	tests := map[string]string{
		"unknown include": "//@cc:include nope\n",
		"duplicate slot":  "//@cc:slot 0 0 frame\n//@cc:slot 0 1 frame\n",
		"malformed":       "//@cc:slot 0\n",
	}
	for name, src := range tests {
		if _, err := NewPreProcessor().Process(src); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestNewShaderReflection(t *testing.T) {
	s, err := NewShader("transform", transformSource)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if s.VertexEntryPoint() != "vs_main" || s.FragmentEntryPoint() != "fs_main" {
		t.Fatalf("entry points = %q/%q", s.VertexEntryPoint(), s.FragmentEntryPoint())
	}

	layouts := s.VertexLayouts()
	if len(layouts) != 1 {
		t.Fatalf("got %d vertex layouts, want 1", len(layouts))
	}
	vl := layouts[0]
	if vl.ArrayStride != 20 || len(vl.Attributes) != 2 {
		t.Fatalf("vertex layout = %+v", vl)
	}
	if vl.Attributes[1].Format != wgpu.VertexFormatFloat32x2 || vl.Attributes[1].Offset != 12 || vl.Attributes[1].ShaderLocation != 1 {
		t.Fatalf("uv attribute = %+v", vl.Attributes[1])
	}

	groups := s.BindGroupLayoutDescriptors()
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	entries := groups[0].Entries
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}
	for i, e := range entries {
		if int(e.Binding) != i {
			t.Fatalf("entries not sorted by binding: %d at %d", e.Binding, i)
		}
		if e.Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
			t.Fatalf("binding %d visibility = %v", i, e.Visibility)
		}
	}
	if entries[0].Buffer.Type != wgpu.BufferBindingTypeUniform || entries[0].Buffer.MinBindingSize != 16 {
		t.Fatalf("params entry = %+v", entries[0].Buffer)
	}
	if entries[1].Texture.ViewDimension != wgpu.TextureViewDimension2D {
		t.Fatalf("frame entry = %+v", entries[1].Texture)
	}
	for _, b := range []int{2, 3} {
		if entries[b].Texture.ViewDimension != wgpu.TextureViewDimension3D || entries[b].Texture.SampleType != wgpu.TextureSampleTypeFloat {
			t.Fatalf("lut entry %d = %+v", b, entries[b].Texture)
		}
	}
	if entries[4].Sampler.Type != wgpu.SamplerBindingTypeFiltering {
		t.Fatalf("sampler entry = %+v", entries[4].Sampler)
	}

	slot, ok := s.Slot(SlotSimulationLut)
	if !ok || slot.Group != 0 || slot.Binding != 2 || slot.VarName != "simulationLut" {
		t.Fatalf("simulation slot = %+v, %v", slot, ok)
	}
	if s.Module().WGSLDescriptor.Code != s.Source() {
		t.Fatalf("module code differs from processed source")
	}
}

func TestNewShaderErrors(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"no fragment":    "@vertex fn vs_main() -> @builtin(position) vec4f { return vec4f(0.0); }",
		"dangling slot":  "//@cc:slot 0 9 frame\n@vertex fn v() {}\n@fragment fn f() {}\n",
		"bad annotation": "//@cc:slot 0 0 unknown\n@vertex fn v() {}\n@fragment fn f() {}\n",
	}
	for name, src := range tests {
		if _, err := NewShader(name, src); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestStripComments(t *testing.T) {
	in := "a // line\nb /* x /* y */ z */ c"
	got := stripComments(in)
	if got != "a \nb  c" {
		t.Fatalf("stripComments = %q", got)
	}
}
