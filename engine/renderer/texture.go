package renderer

import "github.com/cogentcore/webgpu/wgpu"

// Texture is a GPU texture together with its default view.
// The owner must call Release exactly once.
type Texture interface {
	// View returns the default texture view for binding or rendering.
	View() *wgpu.TextureView

	// Width returns the texture width in texels.
	Width() uint32

	// Height returns the texture height in texels.
	Height() uint32

	// Depth returns the depth (3D) or array layer count, 1 for plain 2D textures.
	Depth() uint32

	// Release frees the view and the texture.
	Release()
}

type gpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	extent  wgpu.Extent3D
}

var _ Texture = &gpuTexture{}

func (t *gpuTexture) View() *wgpu.TextureView {
	return t.view
}

func (t *gpuTexture) Width() uint32 {
	return t.extent.Width
}

func (t *gpuTexture) Height() uint32 {
	return t.extent.Height
}

func (t *gpuTexture) Depth() uint32 {
	return t.extent.DepthOrArrayLayers
}

func (t *gpuTexture) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
