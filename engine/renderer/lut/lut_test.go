package lut

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeTexture struct {
	staging  common.TextureStagingData
	released bool
}

func (f *fakeTexture) View() *wgpu.TextureView { return nil }
func (f *fakeTexture) Width() uint32           { return f.staging.Width }
func (f *fakeTexture) Height() uint32          { return f.staging.Height }
func (f *fakeTexture) Depth() uint32           { return f.staging.Depth }
func (f *fakeTexture) Release()                { f.released = true }

type fakeAllocator struct {
	created []*fakeTexture
	failAt  int
}

func (a *fakeAllocator) CreateTexture3D(label string, staging common.TextureStagingData) (renderer.Texture, error) {
	if a.failAt > 0 && len(a.created)+1 == a.failAt {
		return nil, errors.New("out of memory")
	}
	tex := &fakeTexture{staging: staging}
	a.created = append(a.created, tex)
	return tex, nil
}

func squareImage(edge int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, edge, edge))
	for y := 0; y < edge; y++ {
		for x := 0; x < edge; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 7, A: 255})
		}
	}
	return img
}

// stripImage lays out an identity cube as edge slices side by side along x.
func stripImage(edge int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, edge*edge, edge))
	for z := 0; z < edge; z++ {
		for c := 0; c < edge*edge; c++ {
			img.SetNRGBA(c, z, color.NRGBA{R: uint8(c % edge), G: uint8(c / edge), B: uint8(z), A: 255})
		}
	}
	return img
}

func TestBuildSquareImageDimensions(t *testing.T) {
	alloc := &fakeAllocator{}
	b := NewBuilder(alloc)

	l, err := b.Build("square", squareImage(8))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if l.Width() != 8 || l.Height() != 8 || l.Depth() != 8 {
		t.Fatalf("dims = %dx%dx%d, want 8x8x8", l.Width(), l.Height(), l.Depth())
	}
	if l.Size() != 8 || l.Label() != "square" {
		t.Fatalf("Size/Label = %d/%q", l.Size(), l.Label())
	}

	staging := alloc.created[0].staging
	if staging.Format != wgpu.TextureFormatRGBA8Unorm {
		t.Fatalf("format = %v, want RGBA8Unorm", staging.Format)
	}
	if got, want := len(staging.Pixels), 8*8*8*4; got != want {
		t.Fatalf("staged %d bytes, want %d", got, want)
	}
	// The image covers only the first slice; the rest of the cube is zero.
	if !bytes.Equal(staging.Pixels[8*8*4:], make([]byte, 8*8*7*4)) {
		t.Fatalf("cube beyond the image is not zero padded")
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	b := NewBuilder(&fakeAllocator{})
	img := squareImage(6)

	first, err := b.Extract(img)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	second, err := b.Extract(img)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !bytes.Equal(first.Pixels, second.Pixels) {
		t.Fatalf("two builds from the same image differ")
	}
}

func TestExtractStripAddressing(t *testing.T) {
	const edge = 4
	b := NewBuilder(&fakeAllocator{})

	staging, err := b.Extract(stripImage(edge))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for z := 0; z < edge; z++ {
		for y := 0; y < edge; y++ {
			for x := 0; x < edge; x++ {
				off := ((z*edge+y)*edge + x) * 4
				got := staging.Pixels[off : off+3]
				if got[0] != uint8(x) || got[1] != uint8(y) || got[2] != uint8(z) {
					t.Fatalf("texel (%d,%d,%d) = %v", x, y, z, got)
				}
			}
		}
	}
}

func TestExtractConvertsNonNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 13, 13))
	src.Set(10, 10, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	staging, err := NewBuilder(&fakeAllocator{}).Extract(src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := staging.Pixels[:4]; !bytes.Equal(got, []byte{200, 100, 50, 255}) {
		t.Fatalf("first texel = %v", got)
	}
}

func TestExtractRejectsEmptyImage(t *testing.T) {
	b := NewBuilder(&fakeAllocator{})
	if _, err := b.Extract(nil); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("nil image err = %v", err)
	}
	if _, err := b.Extract(image.NewNRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("empty image err = %v", err)
	}
	if _, err := b.Build("empty", nil); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("Build err = %v", err)
	}
}

func TestBuildSet(t *testing.T) {
	var labels [SetSize]string
	var images [SetSize]image.Image
	for i := range images {
		labels[i] = string(rune('a' + i))
		images[i] = stripImage(4)
	}

	alloc := &fakeAllocator{}
	set, err := NewBuilder(alloc, WithMaxWorkers(2)).BuildSet(labels, images)
	if err != nil {
		t.Fatalf("BuildSet: %v", err)
	}
	for i, l := range set {
		if l == nil || l.Label() != labels[i] || l.Size() != 4 {
			t.Fatalf("slot %d = %+v", i, l)
		}
	}
	ReleaseSet(set)
	for i, tex := range alloc.created {
		if !tex.released {
			t.Fatalf("texture %d not released", i)
		}
	}
}

func TestBuildSetReleasesOnUploadFailure(t *testing.T) {
	var labels [SetSize]string
	var images [SetSize]image.Image
	for i := range images {
		images[i] = squareImage(2)
	}

	alloc := &fakeAllocator{failAt: 3}
	if _, err := NewBuilder(alloc).BuildSet(labels, images); err == nil {
		t.Fatalf("expected upload failure")
	}
	if len(alloc.created) != 2 {
		t.Fatalf("created %d textures before failure, want 2", len(alloc.created))
	}
	for i, tex := range alloc.created {
		if !tex.released {
			t.Fatalf("texture %d leaked after failure", i)
		}
	}
}

func TestBuildSetReportsExtractFailure(t *testing.T) {
	var labels [SetSize]string
	var images [SetSize]image.Image
	for i := range images {
		labels[i] = "lut"
		images[i] = squareImage(2)
	}
	images[5] = nil

	alloc := &fakeAllocator{}
	if _, err := NewBuilder(alloc).BuildSet(labels, images); !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("err = %v, want ErrInvalidImage", err)
	}
	if len(alloc.created) != 0 {
		t.Fatalf("uploaded %d textures despite extract failure", len(alloc.created))
	}
}
