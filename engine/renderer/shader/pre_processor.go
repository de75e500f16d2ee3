// pre_processor.go expands //@cc: annotations in WGSL source and collects the slot
// declarations the color transform uses to wire its bind group.
package shader

import (
	_ "embed"
	"fmt"
	"strings"
)

// lutSampleSource is the shared cube lookup helper.
//
//go:embed assets/lut_sample.wgsl
var lutSampleSource string

// quadVertexSource declares the quad vertex input and the scale uniform struct.
//
//go:embed assets/quad_vertex.wgsl
var quadVertexSource string

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// snippets maps include keys to WGSL source.
	snippets map[string]string

	// declarations accumulates slot annotations during a Process call.
	declarations []Annotation
}

// PreProcessor expands annotations in WGSL source and records slot declarations.
type PreProcessor interface {
	// Process replaces include annotations with their snippet and strips slot annotations,
	// recording them in source order. The declaration list is reset on every call.
	//
	// Parameters:
	//   - source: raw WGSL containing annotations
	//
	// Returns:
	//   - string: the expanded WGSL
	//   - error: an error if an annotation is malformed, names an unknown snippet or repeats a slot
	Process(source string) (string, error)

	// Declarations returns the slot annotations collected by the last Process call.
	//
	// Returns:
	//   - []Annotation: the declarations in source order
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the built-in snippets registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		snippets: map[string]string{
			"lut_sample":  lutSampleSource,
			"quad_vertex": quadVertexSource,
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[SlotRole]int)
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			snippet, ok := p.snippets[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown include %q", a.Line, a.Args[0])
			}
			out = append(out, strings.TrimRight(snippet, "\n"))
		case AnnotationTypeSlot:
			if prev, dup := seen[a.Role()]; dup {
				return "", fmt.Errorf("line %d: slot %q already declared on line %d", a.Line, a.Role(), prev)
			}
			seen[a.Role()] = a.Line
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
