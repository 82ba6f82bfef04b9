package pitch

// Window limits. The analysis window is twice the hop size.
const (
	minWindowSize = 128
	maxWindowSize = 8192
)

// Defaults used by DefaultConfig.
const (
	DefaultHopSize           = 1024
	DefaultMaxPeaks          = 20
	DefaultAmplitudeFloorDb  = 40.0
	DefaultDBFullScale       = 32768.0
	DefaultPartialWeightBase = 7.0
)

const (
	// Length of the circular loudness history.
	loudnessHistorySize = 20

	// Pitch axis calibration: 48 histogram bins per octave, and 48/ln(2).
	binsPerOctave         = 48
	binsPerOctaveOverLog2 = 69.24936196
	pitchAxisOffset       = 96.0

	// Converts a peak's relative bandwidth into histogram bins.
	bandwidthToBins = 4 / 0.0145453

	// Histogram votes may start this many bins below zero before a peak stops voting.
	histogramGuard = 10

	numPartials     = 16
	partialDeviance = 0.023
	minBandwidth    = 0.03
	minFreqInBins   = 5

	dbScale  = 3.333
	dbOffset = -92.3

	// Bins below minBin are zeroed after reconstruction.
	minBin = 3

	// Peak gates.
	peakNoiseFloor      = 1e-5
	peakInstability     = 10.0
	peakMinVariance     = 1e-30
	peakMinFreqInBins   = 4.0
	silencePowerEpsilon = 1e-9

	// Partial confirmation gates.
	minPartialsBelow8 = 4
	minPartials       = 7
	minPartialPower   = 0.01
)

// partialOnsets holds 48*log2(h) for harmonics h = 1..16: the distance in histogram bins
// between a harmonic and its fundamental.
var partialOnsets = [numPartials]float64{
	0.0,
	48.0,
	76.0782000346154967102,
	96.0,
	111.45254855459339269887,
	124.07820003461549671089,
	134.75303625876499715823,
	144.0,
	152.15640006923099342109,
	159.45254855459339269887,
	166.05271769459026829915,
	172.07820003461549671088,
	177.62110647077242370064,
	182.75303625876499715892,
	187.53074858920888940907,
	192.0,
}

// filterLength is the number of taps of the single-sideband reconstruction filter.
const filterLength = 5

// sqrtHalf is 1/sqrt(2), used to rotate the reconstructed odd bins by 45 degrees.
const sqrtHalf = 0.707106781186547524400844362104849

// filterTap is one tap of the length-5 Hilbert approximation. For a spectrum x and a
// centre index k, the tap contributes
//
//	re += coef * reSign * (x[k+reLo] - x[k+reHi])
//	im += coef * imSign * (x[k+imLo] + x[k+imHi])
type filterTap struct {
	coef       float64
	reLo, reHi int
	reSign     float64
	imLo, imHi int
	imSign     float64
}

// filterTaps are the Hilbert coefficients from Puckette's fiddle~/Csound ptrack, halved.
var filterTaps = [filterLength]filterTap{
	{coef: .5 * 1.227054, reLo: -2, reHi: 1, reSign: 1, imLo: -1, imHi: 0, imSign: 1},
	{coef: .5 * -0.302385, reLo: -3, reHi: 2, reSign: 1, imLo: -4, imHi: 3, imSign: -1},
	{coef: .5 * 0.095326, reLo: -6, reHi: 5, reSign: -1, imLo: -5, imHi: 4, imSign: -1},
	{coef: .5 * -0.022748, reLo: -7, reHi: 6, reSign: -1, imLo: -8, imHi: 7, imSign: 1},
	{coef: .5 * 0.002533, reLo: -10, reHi: 9, reSign: 1, imLo: -9, imHi: 8, imSign: 1},
}
