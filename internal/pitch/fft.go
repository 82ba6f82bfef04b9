package pitch

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Engine names accepted by Config.Engine.
const (
	EngineGonum = "gonum"
	EngineGoDSP = "godsp"
)

// FFTEngine transforms an interleaved complex buffer (re0, im0, re1, im1, ...) forward
// in place. The transform is unnormalised and uses the exp(-2πi·jk/n) kernel.
type FFTEngine interface {
	// Forward transforms buf, which must hold exactly 2*Size() values.
	Forward(buf []float64)

	// Size returns the number of complex points.
	Size() int
}

// newEngine builds the named engine for size complex points.
func newEngine(name string, size int) (FFTEngine, error) {
	switch name {
	case "", EngineGonum:
		return NewGonumEngine(size), nil
	case EngineGoDSP:
		return NewGoDSPEngine(size), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// GonumEngine runs gonum's complex FFT over preallocated buffers. Forward does not allocate.
type GonumEngine struct {
	plan *fourier.CmplxFFT
	in   []complex128
	out  []complex128
}

// NewGonumEngine creates an engine for size complex points
func NewGonumEngine(size int) *GonumEngine {
	return &GonumEngine{
		plan: fourier.NewCmplxFFT(size),
		in:   make([]complex128, size),
		out:  make([]complex128, size),
	}
}

// Size returns the number of complex points
func (e *GonumEngine) Size() int {
	return len(e.in)
}

// Forward transforms buf in place
func (e *GonumEngine) Forward(buf []float64) {
	for i := range e.in {
		e.in[i] = complex(buf[2*i], buf[2*i+1])
	}

	e.plan.Coefficients(e.out, e.in)

	for i, c := range e.out {
		buf[2*i] = real(c)
		buf[2*i+1] = imag(c)
	}
}

// GoDSPEngine uses go-dsp's FFT. go-dsp returns a fresh slice on every call, so this
// engine allocates once per hop.
type GoDSPEngine struct {
	in []complex128
}

// NewGoDSPEngine creates an engine for size complex points
func NewGoDSPEngine(size int) *GoDSPEngine {
	return &GoDSPEngine{in: make([]complex128, size)}
}

// Size returns the number of complex points
func (e *GoDSPEngine) Size() int {
	return len(e.in)
}

// Forward transforms buf in place
func (e *GoDSPEngine) Forward(buf []float64) {
	for i := range e.in {
		e.in[i] = complex(buf[2*i], buf[2*i+1])
	}

	// Perform FFT
	out := fft.FFT(e.in)

	for i, c := range out {
		buf[2*i] = real(c)
		buf[2*i+1] = imag(c)
	}
}
