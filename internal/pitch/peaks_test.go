package pitch

import (
	"testing"

	"github.com/0xlemi/ptrack/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPeaksSine(t *testing.T) {
	const hop, sr, freq = 1024, 44100, 660.0
	b, total := buildHops(hop, 4, audio.Sine(freq, 0.5, sr))
	n := 2 * hop

	peaks := make([]Peak, DefaultMaxPeaks)
	npeak := extractPeaks(peaks, b.spec, n, total)
	require.Greater(t, npeak, 0)

	strongest := peaks[0]
	for _, p := range peaks[1:npeak] {
		if p.Power > strongest.Power {
			strongest = p
		}
	}

	hzPerBin := float64(sr) / float64(2*n)
	assert.InEpsilon(t, freq, strongest.Frequency*hzPerBin, 0.005)
	assert.Greater(t, strongest.Bandwidth, 0.0)
	assert.InEpsilon(t, strongest.Loudness*strongest.Loudness*strongest.Loudness*strongest.Loudness, strongest.Power, 1e-9)
}

func TestExtractPeaksRespectsCapacity(t *testing.T) {
	const hop = 1024
	sig := audio.Harmonics(200, 44100, 0.2, 0.2, 0.2, 0.2, 0.2)
	b, total := buildHops(hop, 4, sig)

	all := make([]Peak, 50)
	require.Greater(t, extractPeaks(all, b.spec, 2*hop, total), 2)

	two := make([]Peak, 2)
	assert.Equal(t, 2, extractPeaks(two, b.spec, 2*hop, total))
	assert.Equal(t, all[:2], two)
}

func TestExtractPeaksNoiseFloor(t *testing.T) {
	const n = 64
	spec := make([]float64, 4*n+specGuard)

	// A lone spike whose neighbours are below the noise floor is not a peak.
	spec[4*10+2] = 1

	assert.Zero(t, extractPeaks(make([]Peak, 4), spec, n, 1))
}

// triplet returns a spectrum with three unit-power bins centred on bin b. The real parts
// make the offsets measured from bins b-1 and b+1 agree exactly at zero; skew moves the
// estimate from bin b alone to skew²/2, which spreads the three estimates apart.
func triplet(n, b int, skew float64) []float64 {
	spec := make([]float64, 4*n+specGuard)
	for _, k := range []int{b - 1, b, b + 1} {
		spec[4*k+2] = 1
	}
	spec[4*(b-1)] = 0.5
	spec[4*(b+1)] = 2
	spec[4*(b+2)] = skew
	spec[4*(b+3)] = 1.5
	return spec
}

func TestExtractPeaksVarianceGates(t *testing.T) {
	const n, b = 64, 10

	tests := []struct {
		name       string
		skew       float64
		totalPower float64
		wantFreq   float64 // zero when the candidate is rejected
		wantVar    float64
	}{
		{name: "degenerate variance", skew: 0, totalPower: 3},
		{name: "concordant", skew: 0.1, totalPower: 3, wantFreq: b + 0.005/3, wantVar: 1e-4 / 12},
		{name: "spread but quiet frame", skew: 2, totalPower: 3, wantFreq: b + 2.0/3, wantVar: 4.0 / 3},
		{name: "unstable", skew: 2, totalPower: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peaks := make([]Peak, 4)
			npeak := extractPeaks(peaks, triplet(n, b, tt.skew), n, tt.totalPower)

			if tt.wantFreq == 0 {
				assert.Zero(t, npeak)
				return
			}
			require.Equal(t, 1, npeak)
			assert.InDelta(t, tt.wantFreq, peaks[0].Frequency, 1e-12)
			assert.InEpsilon(t, tt.wantVar, peaks[0].Bandwidth*peaks[0].Bandwidth, 1e-9)
			assert.Equal(t, 1.0, peaks[0].Power)
			assert.Equal(t, 1.0, peaks[0].Loudness)
		})
	}
}

func TestExtractPeaksClampsLowFrequency(t *testing.T) {
	const n = 64

	peaks := make([]Peak, 4)
	require.Equal(t, 1, extractPeaks(peaks, triplet(n, minBin, 0.1), n, 3))
	assert.Equal(t, peakMinFreqInBins, peaks[0].Frequency)

	require.Equal(t, 1, extractPeaks(peaks, triplet(n, minBin+2, 0.1), n, 3))
	assert.InDelta(t, minBin+2+0.005/3, peaks[0].Frequency, 1e-12)
}
