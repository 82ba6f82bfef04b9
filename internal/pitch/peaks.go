package pitch

import "math"

// Peak is a spectral peak with sub-bin frequency.
type Peak struct {
	Frequency float64 // Frequency in fractional bins
	Bandwidth float64 // Standard deviation of the frequency estimate, in bins
	Power     float64
	Loudness  float64 // Power^(1/4)
}

// extractPeaks scans the reconstructed spectrum for local power maxima and fills peaks
// with the stable ones. It returns the number written, at most len(peaks).
func extractPeaks(peaks []Peak, spec []float64, n int, totalPower float64) int {
	npeak := 0
	floor := peakNoiseFloor * totalPower

	for i := 4 * minBin; i < 4*(n-2) && npeak < len(peaks); i += 4 {
		height, h1, h2 := spec[i+2], spec[i-2], spec[i+6]
		if height < h1 || height < h2 || h1 < floor || h2 < floor {
			continue
		}

		// Three estimates of the offset from bin i/4, centred on the bin and its neighbours.
		peakfr := quadraticOffset(spec, i, height)
		fr1 := quadraticOffset(spec, i-4, h1) - 1
		fr2 := quadraticOffset(spec, i+4, h2) + 1

		m := (peakfr + fr1 + fr2) / 3
		variance := 0.5 * ((peakfr-m)*(peakfr-m) + (fr1-m)*(fr1-m) + (fr2-m)*(fr2-m))
		if variance*totalPower > peakInstability*height || variance < peakMinVariance {
			continue
		}

		freq := float64(i>>2) + m
		if freq < peakMinFreqInBins {
			freq = peakMinFreqInBins
		}

		peaks[npeak] = Peak{
			Frequency: freq,
			Bandwidth: math.Sqrt(variance),
			Power:     height,
			Loudness:  math.Sqrt(math.Sqrt(height)),
		}
		npeak++
	}

	return npeak
}

// quadraticOffset estimates the peak position relative to the bin at spec[i] from the
// complex values two bins either side, normalised by the bin's power.
func quadraticOffset(spec []float64, i int, height float64) float64 {
	return ((spec[i-8]-spec[i+8])*(2*spec[i]-spec[i+8]-spec[i-8]) +
		(spec[i-7]-spec[i+9])*(2*spec[i+1]-spec[i+9]-spec[i-7])) / (2 * height)
}
