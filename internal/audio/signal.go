package audio

import "math"

// Signal is a deterministic test signal: At returns the sample at index i in [-1, 1].
type Signal interface {
	At(i int) float64
}

// SignalFunc adapts a function to Signal
type SignalFunc func(i int) float64

// At returns f(i)
func (f SignalFunc) At(i int) float64 {
	return f(i)
}

// Sine returns a sine of the given frequency (Hz) and peak amplitude
func Sine(frequency, amplitude float64, sampleRate int) Signal {
	w := 2 * math.Pi * frequency / float64(sampleRate)
	return SignalFunc(func(i int) float64 {
		return amplitude * math.Sin(w*float64(i))
	})
}

// Harmonics returns a harmonic series on fundamental. amplitudes[h] is the peak amplitude
// of harmonic h+1.
func Harmonics(fundamental float64, sampleRate int, amplitudes ...float64) Signal {
	amps := append([]float64(nil), amplitudes...)
	w := 2 * math.Pi * fundamental / float64(sampleRate)
	return SignalFunc(func(i int) float64 {
		var s float64
		for h, a := range amps {
			s += a * math.Sin(w*float64(h+1)*float64(i))
		}
		return s
	})
}

// Sweep returns a linear chirp from one frequency to another over duration seconds. After
// duration it holds the end frequency.
func Sweep(from, to, duration, amplitude float64, sampleRate int) Signal {
	sr := float64(sampleRate)
	rate := (to - from) / duration
	return SignalFunc(func(i int) float64 {
		t := float64(i) / sr
		var phase float64
		if t <= duration {
			phase = from*t + 0.5*rate*t*t
		} else {
			phase = from*duration + 0.5*rate*duration*duration + to*(t-duration)
		}
		return amplitude * math.Sin(2*math.Pi*phase)
	})
}

// Silence returns a signal that is always zero
func Silence() Signal {
	return SignalFunc(func(int) float64 { return 0 })
}

// Noise returns uniform white noise in [-amplitude, amplitude]. The same seed and index
// always give the same sample.
func Noise(amplitude float64, seed uint64) Signal {
	return SignalFunc(func(i int) float64 {
		u := float64(splitmix64(seed^uint64(i))>>11) / (1 << 53)
		return amplitude * (2*u - 1)
	})
}

// Mix sums signals
func Mix(signals ...Signal) Signal {
	sigs := append([]Signal(nil), signals...)
	return SignalFunc(func(i int) float64 {
		var s float64
		for _, sig := range sigs {
			s += sig.At(i)
		}
		return s
	})
}

// Render returns n samples of sig starting at index offset
func Render(sig Signal, offset, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(sig.At(offset + i))
	}
	return out
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
