package shader

import (
	"strconv"
	"strings"
)

// wgslPrimitiveLayoutMap holds size and alignment of the host-shareable primitives.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]typeLayout{
	"f32":         {4, 4},
	"i32":         {4, 4},
	"u32":         {4, 4},
	"vec2<f32>":   {8, 8},
	"vec2f":       {8, 8},
	"vec3<f32>":   {12, 16},
	"vec3f":       {12, 16},
	"vec4<f32>":   {16, 16},
	"vec4f":       {16, 16},
	"vec4<u32>":   {16, 16},
	"vec4u":       {16, 16},
	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

// roundUpAlign rounds value up to a multiple of the power-of-two alignment.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves primitives, known structs and fixed-size arrays.
func resolveTypeLayout(typeName string, known map[string]typeLayout) (typeLayout, bool) {
	if l, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}
	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return typeLayout{}, false
	}
	elemName, countText, fixed := strings.Cut(strings.TrimSuffix(inner, ">"), ",")
	if !fixed {
		return typeLayout{}, false
	}
	elem, ok := resolveTypeLayout(strings.TrimSpace(elemName), known)
	if !ok {
		return typeLayout{}, false
	}
	count, err := strconv.ParseUint(strings.TrimSpace(countText), 10, 64)
	if err != nil {
		return typeLayout{}, false
	}
	stride := roundUpAlign(elem.align, elem.size)
	return typeLayout{count * stride, elem.align}, true
}

// computeStructSizes lays out every struct whose members resolve, iterating until
// no more structs can be resolved so nested structs work in any declaration order.
func computeStructSizes(structs []parsedStruct) map[string]typeLayout {
	resolved := make(map[string]typeLayout, len(structs))
	remaining := structs
	for len(remaining) > 0 {
		var next []parsedStruct
		for _, ps := range remaining {
			if l, ok := structLayout(ps, resolved); ok {
				resolved[ps.name] = l
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}
	return resolved
}

func structLayout(ps parsedStruct, known map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	maxAlign := uint64(1)
	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		l, ok := resolveTypeLayout(f.typeName, known)
		if !ok {
			return typeLayout{}, false
		}
		offset = roundUpAlign(l.align, offset) + l.size
		maxAlign = max(maxAlign, l.align)
	}
	return typeLayout{roundUpAlign(maxAlign, offset), maxAlign}, true
}
