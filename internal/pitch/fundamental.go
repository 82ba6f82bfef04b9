package pitch

import "math"

// estimate is the outcome of fundamental estimation for one hop.
type estimate struct {
	voiced     bool
	freqInBins float64
	pitchDb    float64
	score      float64
	partials   int
}

// pitchUnits maps a frequency in bins onto the 48-bins-per-octave histogram axis.
func pitchUnits(freqInBins float64) float64 {
	return binsPerOctaveOverLog2*math.Log(freqInBins) - pitchAxisOffset
}

// binsFromPitchUnits is the inverse of pitchUnits.
func binsFromPitchUnits(units float64) float64 {
	return math.Exp((units + pitchAxisOffset) / binsPerOctaveOverLog2)
}

// estimate votes the peaks into the pitch histogram, takes the best-scoring bin as the
// hypothesis and refines it from the peaks that line up with its harmonics.
func (t *Tracker) estimate(peaks []Peak, totalPower, totalLoudness float64) estimate {
	t.vote(peaks, totalLoudness)

	best, index := 0.0, -1
	for j, v := range t.hist {
		if v > best {
			best, index = v, j
		}
	}
	est := estimate{score: best}
	if index < 0 {
		return est
	}

	hypothesis := binsFromPitchUnits(float64(index))

	var (
		cumPower, cumStrength float64
		freqNum, freqDen      float64
		npartials, nbelow8    int
	)
	for _, p := range peaks {
		ratio := p.Frequency / hypothesis
		harmonic := int(ratio + 0.5)
		if harmonic > numPartials || harmonic < 1 {
			continue
		}
		h := float64(harmonic)
		deviation := 1 - ratio/h
		if deviation <= -partialDeviance || deviation >= partialDeviance {
			continue
		}

		npartials++
		if harmonic < 8 {
			nbelow8++
		}
		cumPower += p.Power
		cumStrength += math.Sqrt(math.Sqrt(p.Power))

		stdev := max(p.Bandwidth, minBandwidth)
		weight := 1 / ((stdev * h) * (stdev * h))
		freqDen += weight
		freqNum += weight * p.Frequency / h
	}
	est.partials = npartials

	if (nbelow8 < minPartialsBelow8 || npartials < minPartials) && cumPower < minPartialPower*totalPower {
		return est
	}

	freqInBins := freqNum / freqDen
	if freqInBins < minFreqInBins {
		return est
	}

	pitchPower := (cumStrength * cumStrength) * (cumStrength * cumStrength)
	est.voiced = true
	est.freqInBins = freqInBins
	est.pitchDb = dbScale * math.Log(pitchPower/float64(t.windowSize))
	return est
}

// vote fills the histogram. Each peak votes for the fundamentals it could be a harmonic
// of, with a parabolic kernel whose width follows the peak's bandwidth.
func (t *Tracker) vote(peaks []Peak, totalLoudness float64) {
	clear(t.hist)
	maxBin := float64(t.maxBin)

	for _, p := range peaks {
		pit := pitchUnits(p.Frequency)
		binBandwidth := bandwidthToBins * p.Bandwidth / p.Frequency
		putBandwidth := max(binBandwidth, 2)
		weightBandwidth := max(binBandwidth, 1)
		weightAmp := 4 * p.Loudness / totalLoudness
		para := 1 / (putBandwidth * putBandwidth)

		for j, onset := range partialOnsets {
			bin := pit - onset
			if bin >= maxBin {
				continue
			}
			score := 30 * weightAmp / ((float64(j) + t.cfg.PartialWeightBase) * weightBandwidth)
			firstBin := int(bin + 0.5 - 0.5*putBandwidth)
			lastBin := int(bin + 0.5 + 0.5*putBandwidth)
			if firstBin < -histogramGuard {
				break
			}

			phase := float64(firstBin) - bin
			for k := firstBin; k <= lastBin; k, phase = k+1, phase+1 {
				if k >= 0 && k < t.maxBin {
					t.hist[k] += score * (1 - para*phase*phase)
				}
			}
		}
	}
}
