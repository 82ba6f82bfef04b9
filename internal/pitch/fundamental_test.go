package pitch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr, err := NewTracker(44100, 1024, 20)
	require.NoError(t, err)
	return tr
}

// harmonicPeaks returns count peaks at integer multiples of fundamental bins.
func harmonicPeaks(fundamental float64, count int) []Peak {
	peaks := make([]Peak, count)
	for h := range peaks {
		peaks[h] = Peak{
			Frequency: fundamental * float64(h+1),
			Bandwidth: 0.05,
			Power:     1,
			Loudness:  1,
		}
	}
	return peaks
}

func TestPartialOnsets(t *testing.T) {
	for j, onset := range partialOnsets {
		assert.InDelta(t, binsPerOctave*math.Log2(float64(j+1)), onset, 1e-9, "harmonic %d", j+1)
	}
}

func TestPitchUnits(t *testing.T) {
	assert.InDelta(t, 48, pitchUnits(40)-pitchUnits(20), 1e-6)
	for _, bins := range []float64{4, 20, 123.4, 2000} {
		assert.InEpsilon(t, bins, binsFromPitchUnits(pitchUnits(bins)), 1e-12)
	}
}

func TestVoteSinglePeak(t *testing.T) {
	tr := newTestTracker(t)
	peaks := harmonicPeaks(50, 1)

	tr.vote(peaks, 1)

	best, index := 0.0, -1
	for j, v := range tr.hist {
		if v > best {
			best, index = v, j
		}
	}
	assert.InDelta(t, pitchUnits(50), float64(index), 0.5)
}

func TestEstimateHarmonicSeries(t *testing.T) {
	tr := newTestTracker(t)
	peaks := harmonicPeaks(20, 8)

	est := tr.estimate(peaks, 8, math.Sqrt(math.Sqrt(8)))

	require.True(t, est.voiced)
	assert.InDelta(t, 20, est.freqInBins, 1e-9)
	assert.Equal(t, 8, est.partials)
	assert.Greater(t, est.score, 0.0)
}

func TestEstimateRejectsWeakPartials(t *testing.T) {
	tr := newTestTracker(t)
	peaks := harmonicPeaks(20, 1)

	// One confirmed partial carrying 0.1% of the frame power.
	est := tr.estimate(peaks, 1000, math.Sqrt(math.Sqrt(1000)))

	assert.False(t, est.voiced)
	assert.Equal(t, 1, est.partials)
}

func TestEstimateAcceptsDominantPartial(t *testing.T) {
	tr := newTestTracker(t)
	peaks := harmonicPeaks(30, 1)

	est := tr.estimate(peaks, 1, 1)

	require.True(t, est.voiced)
	assert.InDelta(t, 30, est.freqInBins, 1e-9)
}

func TestEstimateBelowMinimumFrequency(t *testing.T) {
	tr := newTestTracker(t)
	peaks := harmonicPeaks(4.5, 1)

	est := tr.estimate(peaks, 1, 1)

	assert.False(t, est.voiced)
	assert.Equal(t, 1, est.partials)
}

func TestEstimateNoPeaks(t *testing.T) {
	tr := newTestTracker(t)

	est := tr.estimate(nil, 1, 1)

	assert.False(t, est.voiced)
	assert.Zero(t, est.score)
}

func TestEstimateIgnoresInharmonicPeak(t *testing.T) {
	tr := newTestTracker(t)
	peaks := harmonicPeaks(20, 8)
	// 2.5 times the fundamental is not a partial.
	peaks = append(peaks, Peak{Frequency: 50, Bandwidth: 0.05, Power: 0.1, Loudness: math.Sqrt(math.Sqrt(0.1))})

	est := tr.estimate(peaks, 8.1, math.Sqrt(math.Sqrt(8.1)))

	require.True(t, est.voiced)
	assert.Equal(t, 8, est.partials)
	assert.InDelta(t, 20, est.freqInBins, 1e-9)
}

func TestVoteStopsBelowHistogramGuard(t *testing.T) {
	tr := newTestTracker(t)

	// A peak 40 units up the pitch axis with a 60-bin vote kernel. Its fundamental vote
	// covers bins 10..70; the octave-below vote would start at bin -37 and is dropped
	// along with every higher harmonic, even though its kernel reaches bin 22.
	freq := binsFromPitchUnits(40)
	peak := Peak{Frequency: freq, Bandwidth: freq * 60 / bandwidthToBins, Power: 1, Loudness: 1}

	tr.vote([]Peak{peak}, 1)

	for k := 0; k < 10; k++ {
		assert.Zero(t, tr.hist[k], "bin %d", k)
	}
	for k := 10; k <= 70; k++ {
		assert.Greater(t, tr.hist[k], 0.0, "bin %d", k)
	}
	for k := 71; k < len(tr.hist); k++ {
		assert.Zero(t, tr.hist[k], "bin %d", k)
	}
}
