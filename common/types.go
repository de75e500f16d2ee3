// package common contains plain data types shared across the engine packages. They are not interface-wrapped structs.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  int
	Height int
}

// Empty reports whether either dimension is non-positive.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is a screen-space rectangle in pixels, right and bottom exclusive.
type Rect struct {
	Left, Top, Right, Bottom int
}

// Size returns the width and height of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Right - r.Left, Height: r.Bottom - r.Top}
}

// TextureStagingData holds pixel data for a texture pending GPU upload.
// Pixels are tightly packed with 4 bytes per texel: Width texels per row, Height rows per image, Depth images.
type TextureStagingData struct {
	// Pixels is the raw texel memory, row-major, slice after slice.
	Pixels []byte
	// Width is the texture width in texels.
	Width uint32
	// Height is the texture height in texels.
	Height uint32
	// Depth is the number of 2D slices. Zero or one means a 2D texture.
	Depth uint32
	// Format is the GPU texture format the pixel bytes are laid out in.
	Format wgpu.TextureFormat
}

// BytesPerRow returns the tightly packed row pitch.
func (t TextureStagingData) BytesPerRow() uint32 {
	return t.Width * 4
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}
