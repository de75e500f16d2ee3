// annotations.go defines the //@cc: annotations understood by the WGSL pre-processor.
// Annotations are single-line comments. include injects a registered WGSL snippet,
// slot tags the hand-written resource declaration for a group/binding with the role
// the color transform binds to it.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks an annotation inside a // comment.
const annotationPrefix = "@cc:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered snippet at the annotation site.
	//
	// Syntax: //@cc:include <snippet>
	//
	// Example: //@cc:include lut_sample
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeSlot records the role of a group/binding pair. It emits no WGSL.
	//
	// Syntax: //@cc:slot <group> <binding> <role>
	//
	// Example: //@cc:slot 0 2 simulation_lut
	AnnotationTypeSlot AnnotationType = "slot"
)

// SlotRole names what the color transform binds at a slot.
type SlotRole string

const (
	// SlotParams is the uniform buffer holding the frame scale.
	SlotParams SlotRole = "params"

	// SlotFrame is the captured frame, a texture_2d<f32>.
	SlotFrame SlotRole = "frame"

	// SlotSimulationLut is the deficiency simulation cube, a texture_3d<f32>.
	SlotSimulationLut SlotRole = "simulation_lut"

	// SlotCorrectionLut is the correction cube, a texture_3d<f32>.
	SlotCorrectionLut SlotRole = "correction_lut"

	// SlotSampler is the shared filtering sampler.
	SlotSampler SlotRole = "sampler"
)

// knownSlotRoles lists the roles a slot annotation may name.
var knownSlotRoles = []SlotRole{SlotParams, SlotFrame, SlotSimulationLut, SlotCorrectionLut, SlotSampler}

// Annotation is one parsed //@cc: line.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the trailing arguments: the snippet key for include, the role for slot.
	Args []string

	// Line is the 1-based source line, for error reporting.
	Line int

	// Group is the @group index for slot annotations. Nil for include.
	Group *int

	// Binding is the @binding index for slot annotations. Nil for include.
	Binding *int
}

// Role returns the slot role of a slot annotation.
func (a Annotation) Role() SlotRole {
	if a.Type != AnnotationTypeSlot || len(a.Args) == 0 {
		return ""
	}
	return SlotRole(a.Args[0])
}

// parseAnnotation parses one source line. It returns nil, nil for lines that are
// not annotations.
func parseAnnotation(line string, lineNumber int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	body, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	body, ok = strings.CutPrefix(strings.TrimSpace(body), annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty %s annotation", lineNumber, annotationPrefix)
	}

	a := &Annotation{Type: AnnotationType(fields[0]), Line: lineNumber}
	args := fields[1:]
	switch a.Type {
	case annotationTypeInclude:
		if len(args) != 1 {
			return nil, fmt.Errorf("line %d: include takes 1 argument, got %d", lineNumber, len(args))
		}
		a.Args = args
	case AnnotationTypeSlot:
		if len(args) != 3 {
			return nil, fmt.Errorf("line %d: slot takes <group> <binding> <role>, got %d arguments", lineNumber, len(args))
		}
		group, err := strconv.Atoi(args[0])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group %q", lineNumber, args[0])
		}
		binding, err := strconv.Atoi(args[1])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding %q", lineNumber, args[1])
		}
		if !slices.Contains(knownSlotRoles, SlotRole(args[2])) {
			return nil, fmt.Errorf("line %d: unknown slot role %q", lineNumber, args[2])
		}
		a.Group = &group
		a.Binding = &binding
		a.Args = args[2:]
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNumber, a.Type)
	}
	return a, nil
}
