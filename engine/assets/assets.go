// Package assets provides the embedded color transform shader and the seven-entry LUT set,
// either generated in process or loaded from a directory described by luts.yaml.
package assets

import (
	_ "embed"
	"errors"
)

// ShaderSource is the annotated WGSL of the color transform.
//
//go:embed shaders/color_transform.wgsl
var ShaderSource string

// ErrManifest is returned when a LUT manifest is missing entries or malformed.
var ErrManifest = errors.New("invalid LUT manifest")

// SetSize is the number of LUTs in a set.
const SetSize = 7

// DefaultLutSize is the cube edge of generated LUTs.
const DefaultLutSize = 32

// LutNames names each slot of the set, index-aligned with the color transform's selection.
var LutNames = [SetSize]string{
	"passthrough",
	"simulation_protan",
	"simulation_deutan",
	"simulation_tritan",
	"correction_protan",
	"correction_deutan",
	"correction_tritan",
}
