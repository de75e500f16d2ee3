package assets

import (
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/colorchecker/common"
)

// Machado, Oliveira and Fernandes (2009) dichromacy simulation matrices at severity 1.0,
// applied to linear RGB.
var (
	ProtanSimulation = common.Mat3{
		{0.152286, 1.052583, -0.204868},
		{0.114503, 0.786281, 0.099216},
		{-0.003882, -0.048116, 1.051998},
	}
	DeutanSimulation = common.Mat3{
		{0.367322, 0.860646, -0.227968},
		{0.280085, 0.672501, 0.047413},
		{-0.011820, 0.042940, 0.968881},
	}
	TritanSimulation = common.Mat3{
		{1.255528, -0.076749, -0.178779},
		{-0.078411, 0.930809, 0.147602},
		{0.004733, 0.691367, 0.303900},
	}
)

// Daltonization error shift matrices: the information lost by the simulation is redistributed
// onto the channels the viewer still distinguishes.
var (
	redGreenShift = common.Mat3{
		{0, 0, 0},
		{0.7, 1, 0},
		{0.7, 0, 1},
	}
	blueYellowShift = common.Mat3{
		{1, 0, 0.7},
		{0, 1, 0.7},
		{0, 0, 0},
	}
)

// ColorFunc maps a linear RGB color in [0, 1] to another.
type ColorFunc func(rgb [3]float64) [3]float64

// Identity returns its input.
func Identity(rgb [3]float64) [3]float64 {
	return rgb
}

// Simulate returns a ColorFunc applying m.
func Simulate(m common.Mat3) ColorFunc {
	return m.MulVec
}

// Daltonize returns a ColorFunc that adds shift * (rgb - simulation(rgb)) to rgb.
func Daltonize(simulation, shift common.Mat3) ColorFunc {
	return func(rgb [3]float64) [3]float64 {
		sim := simulation.MulVec(rgb)
		lost := shift.MulVec([3]float64{rgb[0] - sim[0], rgb[1] - sim[1], rgb[2] - sim[2]})
		return [3]float64{rgb[0] + lost[0], rgb[1] + lost[1], rgb[2] + lost[2]}
	}
}

// SetFuncs are the color functions of the LUT set in slot order.
var SetFuncs = [SetSize]ColorFunc{
	Identity,
	Simulate(ProtanSimulation),
	Simulate(DeutanSimulation),
	Simulate(TritanSimulation),
	Daltonize(ProtanSimulation, redGreenShift),
	Daltonize(DeutanSimulation, redGreenShift),
	Daltonize(TritanSimulation, blueYellowShift),
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func linearToSRGB(c float64) float64 {
	c = common.Clamp(c, 0, 1)
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

func toByte(c float64) uint8 {
	return uint8(math.Round(common.Clamp(c, 0, 1) * 255))
}

// GenerateStrip renders fn as a horizontal-strip LUT image of edge size: size*size pixels wide
// and size rows tall. Row is blue; column c holds red c%size and green c/size. Read row-major,
// the pixel memory is the cube the LUT builder expects.
//
// Parameters:
//   - size: the cube edge, at least 2
//   - fn: the color function, applied in linear RGB
//
// Returns:
//   - *image.NRGBA: the strip image
//   - error: an error if size is below 2
func GenerateStrip(size int, fn ColorFunc) (*image.NRGBA, error) {
	if size < 2 {
		return nil, fmt.Errorf("lut size %d: must be at least 2", size)
	}
	img := image.NewNRGBA(image.Rect(0, 0, size*size, size))
	step := 1 / float64(size-1)

	// Precompute the decoded grid values once.
	levels := make([]float64, size)
	for i := range levels {
		levels[i] = srgbToLinear(float64(i) * step)
	}

	for b := 0; b < size; b++ {
		row := img.Pix[b*img.Stride:]
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				out := fn([3]float64{levels[r], levels[g], levels[b]})
				i := (g*size + r) * 4
				row[i+0] = toByte(linearToSRGB(out[0]))
				row[i+1] = toByte(linearToSRGB(out[1]))
				row[i+2] = toByte(linearToSRGB(out[2]))
				row[i+3] = 0xFF
			}
		}
	}
	return img, nil
}

// GenerateSet renders all seven LUTs on a worker pool.
//
// Parameters:
//   - size: the cube edge
//   - maxWorkers: the worker pool size
//
// Returns:
//   - [SetSize]image.Image: the strips in slot order
//   - error: the first generation error
func GenerateSet(size, maxWorkers int) ([SetSize]image.Image, error) {
	var out [SetSize]image.Image
	var errs [SetSize]error

	pool := worker.NewDynamicWorkerPool(max(maxWorkers, 1), SetSize, 1*time.Second)
	var wg sync.WaitGroup
	for i := range SetFuncs {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				img, err := GenerateStrip(size, SetFuncs[i])
				if err == nil {
					out[i] = img
				}
				errs[i] = err
				return nil, err
			},
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return [SetSize]image.Image{}, fmt.Errorf("generating %s: %w", LutNames[i], err)
		}
	}
	return out, nil
}
