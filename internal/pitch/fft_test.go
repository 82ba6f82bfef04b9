package pitch

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engines(size int) map[string]FFTEngine {
	return map[string]FFTEngine{
		EngineGonum: NewGonumEngine(size),
		EngineGoDSP: NewGoDSPEngine(size),
	}
}

func TestEngineImpulse(t *testing.T) {
	for name, e := range engines(64) {
		t.Run(name, func(t *testing.T) {
			buf := make([]float64, 2*e.Size())
			buf[0] = 1

			e.Forward(buf)

			for i := 0; i < e.Size(); i++ {
				assert.InDelta(t, 1, buf[2*i], 1e-12)
				assert.InDelta(t, 0, buf[2*i+1], 1e-12)
			}
		})
	}
}

func TestEngineForwardKernelSign(t *testing.T) {
	const size, k0 = 32, 5
	for name, e := range engines(size) {
		t.Run(name, func(t *testing.T) {
			// exp(+2πi·k0·j/N) lands in bin k0 under the exp(-2πi) kernel.
			buf := make([]float64, 2*size)
			for j := 0; j < size; j++ {
				phase := 2 * math.Pi * k0 * float64(j) / size
				buf[2*j] = math.Cos(phase)
				buf[2*j+1] = math.Sin(phase)
			}

			e.Forward(buf)

			for k := 0; k < size; k++ {
				want := 0.0
				if k == k0 {
					want = size
				}
				assert.InDelta(t, want, math.Hypot(buf[2*k], buf[2*k+1]), 1e-9, "bin %d", k)
			}
		})
	}
}

func TestEnginesAgreeOnRandomInput(t *testing.T) {
	const size = 256
	rng := rand.New(rand.NewSource(1))
	in := make([]float64, 2*size)
	for i := range in {
		in[i] = 2*rng.Float64() - 1
	}

	a := append([]float64(nil), in...)
	b := append([]float64(nil), in...)
	NewGonumEngine(size).Forward(a)
	NewGoDSPEngine(size).Forward(b)

	for i := range a {
		require.InDelta(t, b[i], a[i], 1e-9, "index %d", i)
	}
}

func TestNewEngine(t *testing.T) {
	e, err := newEngine("", 128)
	require.NoError(t, err)
	assert.IsType(t, &GonumEngine{}, e)
	assert.Equal(t, 128, e.Size())

	e, err = newEngine(EngineGoDSP, 128)
	require.NoError(t, err)
	assert.IsType(t, &GoDSPEngine{}, e)

	_, err = newEngine("kissfft", 128)
	assert.ErrorIs(t, err, ErrUnknownEngine)
}
