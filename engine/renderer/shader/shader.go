package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Slot is a resolved group/binding pair for a role.
type Slot struct {
	Group   int
	Binding int
	VarName string
}

// shader is the implementation of the Shader interface.
// It holds the pre-processed source and the reflection data needed for pipeline creation.
type shader struct {
	key                        string
	source                     string
	vertexEntryPoint           string
	fragmentEntryPoint         string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	vertexLayouts              []wgpu.VertexBufferLayout
	slots                      map[SlotRole]Slot
	module                     *wgpu.ShaderModuleDescriptor

	pp PreProcessor
}

// Shader is a parsed WGSL module carrying both the vertex and fragment stage.
// It exposes the reflection data a render pipeline needs: entry points, bind group layouts,
// vertex buffer layouts and the group/binding resolved for each annotated slot role.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the module label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// VertexEntryPoint returns the name of the @vertex function.
	//
	// Returns:
	//   - string: the entry point name
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	//
	// Returns:
	//   - string: the entry point name
	FragmentEntryPoint() string

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// VertexLayouts retrieves the vertex buffer layouts in declaration order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: one layout per vertex input struct
	VertexLayouts() []wgpu.VertexBufferLayout

	// Slot resolves the group and binding annotated with role.
	//
	// Parameters:
	//   - role: the slot role
	//
	// Returns:
	//   - Slot: the resolved group/binding and variable name
	//   - bool: false if the shader does not declare the role
	Slot(role SlotRole) (Slot, bool)

	// Module returns the shader module descriptor built from the source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the slot annotations parsed from the source.
	//
	// Returns:
	//   - []Annotation: slot annotations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes and reflects a combined vertex/fragment WGSL source.
// Every resource declaration is visible to both stages.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: the raw WGSL source with //@cc: annotations
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if pre-processing fails, an entry point is missing, or a slot has no matching declaration
func NewShader(key, source string) (Shader, error) {
	if source == "" {
		return nil, errors.New("shader: empty source")
	}
	s := &shader{
		key:   key,
		slots: make(map[SlotRole]Slot),
		pp:    NewPreProcessor(),
	}

	var err error
	s.source, err = s.pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s.vertexEntryPoint = parseEntryPoint(s.source, vertexEntryRegex)
	s.fragmentEntryPoint = parseEntryPoint(s.source, fragmentEntryRegex)
	if s.vertexEntryPoint == "" || s.fragmentEntryPoint == "" {
		return nil, fmt.Errorf("shader %s: both @vertex and @fragment entry points are required", key)
	}

	s.vertexLayouts = parseVertexLayouts(s.source)

	var decls []bindingDecl
	s.bindGroupLayoutDescriptors, decls = parseBindGroupLayouts(s.source, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)
	for _, a := range s.pp.Declarations() {
		slot, ok := findDecl(decls, *a.Group, *a.Binding)
		if !ok {
			return nil, fmt.Errorf("shader %s: line %d: slot %q has no @group(%d) @binding(%d) declaration", key, a.Line, a.Role(), *a.Group, *a.Binding)
		}
		s.slots[a.Role()] = slot
	}

	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	return s, nil
}

func findDecl(decls []bindingDecl, group, binding int) (Slot, bool) {
	for _, d := range decls {
		if d.group == group && d.binding == binding {
			return Slot{Group: d.group, Binding: d.binding, VarName: d.varName}, true
		}
	}
	return Slot{}, false
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Slot(role SlotRole) (Slot, bool) {
	slot, ok := s.slots[role]
	return slot, ok
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}
