package pitch

import "math"

// spectralBuilder turns a hop of samples into a spectrum with twice the FFT's frequency
// resolution. Bin b of the output occupies spec[4b:4b+4] as (re, im, power, cumulative
// power). prev carries the rearranged raw coefficients of the previous hop and is only
// touched by build and reset.
type spectralBuilder struct {
	hop   int
	n     int       // window size
	sinus []float64 // exp(-iπk/n) per sample, interleaved
	spec  []float64
	tmp   []float64
	prev  []float64
}

// specGuard pads spec so the peak scan can look four bins past the last candidate.
const specGuard = 16

func newSpectralBuilder(hop int) *spectralBuilder {
	n := 2 * hop
	b := &spectralBuilder{
		hop:   hop,
		n:     n,
		sinus: make([]float64, n),
		spec:  make([]float64, 4*n+specGuard),
		tmp:   make([]float64, 4*n+4*filterLength),
		prev:  make([]float64, n+4*filterLength),
	}
	for i := 0; i < hop; i++ {
		b.sinus[2*i] = math.Cos(math.Pi * float64(i) / float64(n))
		b.sinus[2*i+1] = -math.Sin(math.Pi * float64(i) / float64(n))
	}
	return b
}

func (b *spectralBuilder) reset() {
	clear(b.spec)
	clear(b.tmp)
	clear(b.prev)
}

// build analyses signal and returns the total power of the frame.
func (b *spectralBuilder) build(signal []float64, engine FFTEngine) float64 {
	spec, tmp, prev := b.spec, b.tmp, b.prev
	hop, n := b.hop, b.n
	const f2 = 2 * filterLength

	for i, k := 0, 0; i < hop; i, k = i+1, k+2 {
		spec[k] = signal[i] * b.sinus[k]
		spec[k+1] = signal[i] * b.sinus[k+1]
	}

	engine.Forward(spec[:n])

	// Lower half of the FFT into the even slots, the whole FFT reversed and conjugated into
	// the odd slots, then mirror both ends so the filter can run past the edges.
	for i, k := 0, f2; i < hop; i, k = i+2, k+4 {
		tmp[k] = spec[i]
		tmp[k+1] = spec[i+1]
	}
	for i, k := n-2, f2+2; i >= 0; i, k = i-2, k+4 {
		tmp[k] = spec[i]
		tmp[k+1] = -spec[i+1]
	}
	for i, k := f2, f2-2; i < 4*filterLength; i, k = i+2, k-2 {
		tmp[k] = tmp[i]
		tmp[k+1] = -tmp[i+1]
	}
	for i, k := f2+n-2, f2+n; i >= 0; i, k = i-2, k+2 {
		tmp[k] = tmp[i]
		tmp[k+1] = -tmp[k+1]
	}

	for i, j, k := 0, 0, f2; i < hop/2; i, j, k = i+1, j+16, k+4 {
		pre, pim := hilbert(prev, k)
		cre, cim := hilbert(tmp, k)
		re, im := pre+cre, pim+cim
		spec[j] = sqrtHalf * (re + im)
		spec[j+1] = sqrtHalf * (im - re)
		spec[j+4] = prev[k] + tmp[k+1]
		spec[j+5] = prev[k+1] - tmp[k]

		pre, pim = hilbert(prev, k+2)
		cre, cim = hilbert(tmp, k+2)
		re, im = pre-cre, pim-cim
		spec[j+8] = sqrtHalf * (re + im)
		spec[j+9] = sqrtHalf * (im - re)
		spec[j+12] = prev[k+2] - tmp[k+3]
		spec[j+13] = prev[k+3] + tmp[k+2]
	}

	copy(prev, tmp[:n+4*filterLength])

	for i := 0; i < minBin; i++ {
		spec[4*i+2] = 0
		spec[4*i+3] = 0
	}

	// Power after removing the linear trend through the bins two either side.
	var total float64
	for i := 4 * minBin; i < 4*(n-2); i += 4 {
		re := spec[i] - 0.5*(spec[i-8]+spec[i+8])
		im := spec[i+1] - 0.5*(spec[i-7]+spec[i+9])
		spec[i+2] = re*re + im*im
		total += spec[i+2]
		spec[i+3] = total
	}

	return total
}

// hilbert applies the reconstruction filter to x around index k.
func hilbert(x []float64, k int) (re, im float64) {
	for _, tap := range filterTaps {
		re += tap.coef * tap.reSign * (x[k+tap.reLo] - x[k+tap.reHi])
		im += tap.coef * tap.imSign * (x[k+tap.imLo] + x[k+tap.imHi])
	}
	return re, im
}
