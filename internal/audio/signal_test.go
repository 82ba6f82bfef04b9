package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSineZeroCrossings(t *testing.T) {
	const sr = 44100
	samples := Render(Sine(441, 0.5, sr), 0, sr)

	crossings := 0
	for i := 1; i < len(samples); i++ {
		if samples[i-1] < 0 && samples[i] >= 0 {
			crossings++
		}
	}
	assert.InDelta(t, 441, crossings, 2)

	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	assert.InDelta(t, 0.5, peak, 1e-3)
}

func TestHarmonicsIsSumOfSines(t *testing.T) {
	const sr = 48000
	h := Harmonics(200, sr, 0.3, 0.2, 0.1)
	sum := Mix(Sine(200, 0.3, sr), Sine(400, 0.2, sr), Sine(600, 0.1, sr))

	for i := 0; i < 1000; i += 37 {
		assert.InDelta(t, sum.At(i), h.At(i), 1e-12)
	}
}

func TestSweepHoldsEndFrequency(t *testing.T) {
	const sr = 8000
	sweep := Sweep(100, 200, 0.5, 1, sr)

	// Past the sweep the chirp is a 200 Hz tone with a phase offset; compare the
	// spacing of rising zero crossings.
	var prev, count int
	first := -1
	for i := sr; i < 2*sr; i++ {
		if sweep.At(i-1) < 0 && sweep.At(i) >= 0 {
			if first < 0 {
				first = i
			}
			prev = i
			count++
		}
	}
	require.Greater(t, count, 1)
	period := float64(prev-first) / float64(count-1)
	assert.InDelta(t, float64(sr)/200, period, 0.5)
}

func TestNoiseDeterministic(t *testing.T) {
	a := Render(Noise(0.25, 7), 0, 512)
	b := Render(Noise(0.25, 7), 0, 512)
	c := Render(Noise(0.25, 8), 0, 512)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	for _, s := range a {
		assert.LessOrEqual(t, math.Abs(float64(s)), 0.25)
	}
}

func TestSilence(t *testing.T) {
	for _, s := range Render(Silence(), 100, 64) {
		assert.Zero(t, s)
	}
}
