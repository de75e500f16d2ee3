package assets

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/colorchecker/internal/logger"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest's file name inside a LUT directory.
const ManifestFile = "luts.yaml"

// ManifestEntry names the image for one slot of the set.
type ManifestEntry struct {
	Index int    `yaml:"index"`
	Name  string `yaml:"name"`
	File  string `yaml:"file"`
}

// Manifest describes a LUT directory.
type Manifest struct {
	Version int             `yaml:"version"`
	Size    int             `yaml:"size"`
	Luts    []ManifestEntry `yaml:"luts"`
}

// Validate checks that every slot appears exactly once with a file.
func (m *Manifest) Validate() error {
	var seen [SetSize]bool
	for _, e := range m.Luts {
		if e.Index < 0 || e.Index >= SetSize {
			return fmt.Errorf("%w: index %d out of range", ErrManifest, e.Index)
		}
		if seen[e.Index] {
			return fmt.Errorf("%w: index %d listed twice", ErrManifest, e.Index)
		}
		if e.File == "" {
			return fmt.Errorf("%w: index %d has no file", ErrManifest, e.Index)
		}
		seen[e.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("%w: missing index %d (%s)", ErrManifest, i, LutNames[i])
		}
	}
	return nil
}

// LoadManifest reads and validates dir/luts.yaml.
//
// Parameters:
//   - dir: the LUT directory
//
// Returns:
//   - *Manifest: the manifest
//   - error: a read error or an ErrManifest-wrapped validation error
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadSet decodes the seven images listed by dir/luts.yaml. File paths are relative to dir.
//
// Parameters:
//   - dir: the LUT directory
//
// Returns:
//   - [SetSize]image.Image: the images in slot order
//   - error: a manifest or decode error
func LoadSet(dir string) ([SetSize]image.Image, error) {
	var out [SetSize]image.Image

	m, err := LoadManifest(dir)
	if err != nil {
		return out, err
	}
	for _, e := range m.Luts {
		path := e.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		img, err := decodePNG(path)
		if err != nil {
			return [SetSize]image.Image{}, fmt.Errorf("loading %s: %w", LutNames[e.Index], err)
		}
		out[e.Index] = img
	}
	logger.WithComponent("assets").Info().Str("dir", dir).Msg("LUT set loaded")
	return out, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

// Set returns the LUT images from dir when it is set, otherwise generates them.
//
// Parameters:
//   - dir: the LUT directory, or "" to generate
//   - size: the cube edge for generated LUTs
//   - maxWorkers: the worker pool size for generation
//
// Returns:
//   - [SetSize]image.Image: the images in slot order
//   - error: a load or generation error
func Set(dir string, size, maxWorkers int) ([SetSize]image.Image, error) {
	if dir != "" {
		return LoadSet(dir)
	}
	set, err := GenerateSet(size, maxWorkers)
	if err != nil {
		return set, err
	}
	logger.WithComponent("assets").Debug().Int("size", size).Msg("LUT set generated")
	return set, nil
}

// ExportSet generates the set and writes one PNG per slot plus luts.yaml into dir.
//
// Parameters:
//   - dir: the output directory, created if missing
//   - size: the cube edge
//   - maxWorkers: the worker pool size for generation
//
// Returns:
//   - *Manifest: the written manifest
//   - error: a generation or write error
func ExportSet(dir string, size, maxWorkers int) (*Manifest, error) {
	set, err := GenerateSet(size, maxWorkers)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	m := &Manifest{Version: 1, Size: size}
	for i, img := range set {
		file := fmt.Sprintf("%d_%s.png", i, LutNames[i])
		if err := writePNG(filepath.Join(dir, file), img); err != nil {
			return nil, fmt.Errorf("writing %s: %w", file, err)
		}
		m.Luts = append(m.Luts, ManifestEntry{Index: i, Name: LutNames[i], File: file})
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return nil, err
	}
	logger.WithComponent("assets").Info().Str("dir", dir).Int("size", size).Msg("LUT set exported")
	return m, nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return png.Encode(f, img)
}
