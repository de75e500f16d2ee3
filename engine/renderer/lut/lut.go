package lut

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer"
	"github.com/Carmen-Shannon/colorchecker/internal/logger"
	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"
)

// ErrInvalidImage is returned when a LUT source image has no pixels.
var ErrInvalidImage = errors.New("lut: image is empty")

// SetSize is the number of LUTs the color transform selects from.
const SetSize = 7

// TextureAllocator creates GPU 3D textures. renderer.Renderer satisfies it.
type TextureAllocator interface {
	CreateTexture3D(label string, staging common.TextureStagingData) (renderer.Texture, error)
}

// Lut3D is an immutable cubic lookup texture on the GPU.
type Lut3D struct {
	renderer.Texture
	label string
}

// Label returns the debug label the texture was created with.
func (l *Lut3D) Label() string {
	return l.label
}

// Size returns the cube edge length.
func (l *Lut3D) Size() uint32 {
	return l.Width()
}

// Builder turns LUT images into 3D textures.
type Builder interface {
	// Extract reinterprets the image's pixel memory as a cube of edge Dy().
	// Texel (x, y, z) is pixel byte offset ((z*H+y)*H+x)*4 of the image
	// in row-major order; texels past the end of the image are zero.
	//
	// Parameters:
	//   - img: the source image
	//
	// Returns:
	//   - common.TextureStagingData: RGBA8 texel memory with Width = Height = Depth = H
	//   - error: ErrInvalidImage if the image is nil or empty
	Extract(img image.Image) (common.TextureStagingData, error)

	// Build extracts the image and uploads it as a 3D texture.
	//
	// Parameters:
	//   - label: debug label for the texture
	//   - img: the source image
	//
	// Returns:
	//   - *Lut3D: the GPU cube
	//   - error: an error if extraction or upload fails
	Build(label string, img image.Image) (*Lut3D, error)

	// BuildSet builds every LUT in the set. Extraction runs on the worker pool,
	// uploads happen on the calling goroutine.
	//
	// Parameters:
	//   - labels: debug label per slot
	//   - images: source image per slot
	//
	// Returns:
	//   - [SetSize]*Lut3D: the cubes, index-aligned with images
	//   - error: the first failure; already uploaded cubes are released
	BuildSet(labels [SetSize]string, images [SetSize]image.Image) ([SetSize]*Lut3D, error)
}

type lutBuilder struct {
	allocator  TextureAllocator
	maxWorkers int
}

var _ Builder = &lutBuilder{}

// NewBuilder creates a Builder that allocates textures through allocator.
//
// Parameters:
//   - allocator: the GPU texture allocator
//   - options: functional options
//
// Returns:
//   - Builder: the builder
func NewBuilder(allocator TextureAllocator, options ...BuilderOption) Builder {
	b := &lutBuilder{
		allocator:  allocator,
		maxWorkers: 4,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *lutBuilder) Extract(img image.Image) (common.TextureStagingData, error) {
	if img == nil {
		return common.TextureStagingData{}, ErrInvalidImage
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return common.TextureStagingData{}, ErrInvalidImage
	}

	rgba, ok := img.(*image.NRGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 {
		rgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	edge := uint32(bounds.Dy())
	cube := make([]byte, int(edge)*int(edge)*int(edge)*4)
	copy(cube, rgba.Pix)

	return common.TextureStagingData{
		Pixels: cube,
		Width:  edge,
		Height: edge,
		Depth:  edge,
		Format: wgpu.TextureFormatRGBA8Unorm,
	}, nil
}

func (b *lutBuilder) Build(label string, img image.Image) (*Lut3D, error) {
	staging, err := b.Extract(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return b.upload(label, staging)
}

func (b *lutBuilder) upload(label string, staging common.TextureStagingData) (*Lut3D, error) {
	tex, err := b.allocator.CreateTexture3D(label, staging)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", label, err)
	}
	logger.WithComponent("lut").Debug().
		Str("lut", label).
		Uint32("edge", staging.Width).
		Msg("LUT texture created")
	return &Lut3D{Texture: tex, label: label}, nil
}

func (b *lutBuilder) BuildSet(labels [SetSize]string, images [SetSize]image.Image) ([SetSize]*Lut3D, error) {
	var out [SetSize]*Lut3D

	var staged [SetSize]common.TextureStagingData
	var errs [SetSize]error

	pool := worker.NewDynamicWorkerPool(b.maxWorkers, SetSize, 1*time.Second)
	var wg sync.WaitGroup
	for i := range images {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				staged[i], errs[i] = b.Extract(images[i])
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	for i := range staged {
		if errs[i] != nil {
			return out, fmt.Errorf("%s: %w", labels[i], errs[i])
		}
	}

	for i := range staged {
		l, err := b.upload(labels[i], staged[i])
		if err != nil {
			ReleaseSet(out)
			return [SetSize]*Lut3D{}, err
		}
		out[i] = l
	}
	return out, nil
}

// ReleaseSet releases every non-nil cube in the set.
func ReleaseSet(set [SetSize]*Lut3D) {
	for _, l := range set {
		if l != nil {
			l.Release()
		}
	}
}
