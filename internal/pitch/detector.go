package pitch

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/0xlemi/ptrack/internal/logging"
)

// Errors
var (
	ErrInvalidWindowSize = errors.New("window size must be a power of two between 128 and 8192")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidMaxPeaks   = errors.New("max peaks must be at least 1")
	ErrUnknownEngine     = errors.New("unknown fft engine")
	ErrInvalidThreshold  = errors.New("invalid tracker threshold")
)

// Config holds the tracker's construction parameters.
type Config struct {
	SampleRate float64 // Audio sample rate in Hz
	HopSize    int     // Samples per analysis hop; the window is twice this
	MaxPeaks   int     // Upper bound on spectral peaks kept per hop

	AmplitudeFloorDb  float64 // Hops quieter than this are not searched for a pitch
	DBFullScale       float64 // Input samples are multiplied by this before analysis
	PartialWeightBase float64 // Added to the harmonic index when weighting histogram votes
	InitialFrequency  float64 // Frequency reported until the first voiced hop

	Engine string // FFT engine name, EngineGonum when empty

	// OnFrame, when set, is called after every analysis pass.
	OnFrame func(Frame)

	Logger logging.Logger
}

// DefaultConfig returns a configuration for the given sample rate with the tuned defaults.
func DefaultConfig(sampleRate float64) Config {
	return Config{
		SampleRate:        sampleRate,
		HopSize:           DefaultHopSize,
		MaxPeaks:          DefaultMaxPeaks,
		AmplitudeFloorDb:  DefaultAmplitudeFloorDb,
		DBFullScale:       DefaultDBFullScale,
		PartialWeightBase: DefaultPartialWeightBase,
		Engine:            EngineGonum,
	}
}

// Frame describes the most recent analysis pass.
type Frame struct {
	Hop       uint64  // 1-based index of the pass
	LevelDb   float64 // Frame level before the loudness calibration offset
	PitchDb   float64 // Loudness of the confirmed partials, voiced hops only
	Silent    bool    // Total power was below the silence epsilon
	Voiced    bool    // The frequency estimate was updated
	Peaks     int     // Peaks extracted
	Partials  int     // Peaks confirmed as partials of the hypothesis
	Score     float64 // Best histogram score
	Frequency float64 // Frequency in Hz after this pass
}

// Tracker estimates the fundamental frequency and amplitude of a mono signal one sample
// at a time. A Tracker is not safe for concurrent use.
type Tracker struct {
	cfg        Config
	hopSize    int
	windowSize int
	hzPerBin   float64
	maxBin     int

	engine FFTEngine

	signal   []float64 // hop-sized accumulation window
	fill     int
	spectrum *spectralBuilder
	peaks    []Peak
	hist     []float64
	loudness *loudnessTracker

	frequency float64
	hops      uint64
	frame     Frame

	log logging.Logger
}

// NewTracker creates a tracker with default thresholds.
func NewTracker(sampleRate float64, hopSize, maxPeaks int) (*Tracker, error) {
	cfg := DefaultConfig(sampleRate)
	cfg.HopSize = hopSize
	cfg.MaxPeaks = maxPeaks
	return New(cfg)
}

// New creates a tracker from cfg. Every buffer the tracker needs is allocated here.
func New(cfg Config) (*Tracker, error) {
	windowSize := 2 * cfg.HopSize
	if cfg.HopSize <= 0 || windowSize < minWindowSize || windowSize > maxWindowSize ||
		bits.OnesCount(uint(windowSize)) != 1 {
		return nil, fmt.Errorf("%w: hop size %d gives window %d", ErrInvalidWindowSize, cfg.HopSize, windowSize)
	}
	if cfg.SampleRate <= 0 || !isFinite(cfg.SampleRate) {
		return nil, fmt.Errorf("%w: %g", ErrInvalidSampleRate, cfg.SampleRate)
	}
	if cfg.MaxPeaks < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxPeaks, cfg.MaxPeaks)
	}
	if err := validateThresholds(cfg); err != nil {
		return nil, err
	}

	engine, err := newEngine(cfg.Engine, cfg.HopSize)
	if err != nil {
		return nil, err
	}

	if cfg.Logger == nil {
		cfg.Logger = &logging.NoOpLogger{}
	}

	// log2(windowSize) - 2 octaves of histogram
	logn := bits.Len(uint(windowSize)) - 1
	maxBin := binsPerOctave * (logn - 2)

	t := &Tracker{
		cfg:        cfg,
		hopSize:    cfg.HopSize,
		windowSize: windowSize,
		hzPerBin:   cfg.SampleRate / float64(2*windowSize),
		maxBin:     maxBin,
		engine:     engine,
		signal:     make([]float64, cfg.HopSize),
		spectrum:   newSpectralBuilder(cfg.HopSize),
		peaks:      make([]Peak, cfg.MaxPeaks+1),
		hist:       make([]float64, maxBin),
		loudness:   newLoudnessTracker(),
		frequency:  cfg.InitialFrequency,
		log:        cfg.Logger,
	}

	t.log.Debug("pitch tracker created", logging.Fields{
		"sample_rate": cfg.SampleRate,
		"hop_size":    cfg.HopSize,
		"window_size": windowSize,
		"max_peaks":   cfg.MaxPeaks,
		"engine":      cfg.Engine,
	})

	return t, nil
}

// validateThresholds rejects tuning values that would leave the tracker silent or make
// the histogram scores non-finite.
func validateThresholds(cfg Config) error {
	switch {
	case cfg.DBFullScale == 0 || !isFinite(cfg.DBFullScale):
		return fmt.Errorf("%w: db full scale %g", ErrInvalidThreshold, cfg.DBFullScale)
	case cfg.PartialWeightBase <= 0 || !isFinite(cfg.PartialWeightBase):
		return fmt.Errorf("%w: partial weight base %g must be positive", ErrInvalidThreshold, cfg.PartialWeightBase)
	case !isFinite(cfg.AmplitudeFloorDb):
		return fmt.Errorf("%w: amplitude floor %g", ErrInvalidThreshold, cfg.AmplitudeFloorDb)
	case !isFinite(cfg.InitialFrequency) || cfg.InitialFrequency < 0:
		return fmt.Errorf("%w: initial frequency %g", ErrInvalidThreshold, cfg.InitialFrequency)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Process feeds one sample and returns the current frequency in Hz and linear amplitude.
// Both values change only when a hop completes.
func (t *Tracker) Process(sample float64) (frequency, amplitude float64) {
	if t.fill == t.hopSize {
		t.analyze()
		t.fill = 0
	}
	t.signal[t.fill] = sample * t.cfg.DBFullScale
	t.fill++

	return t.frequency, t.loudness.amplitude()
}

// Analyze feeds every sample of a host buffer and returns the result after the last one.
func (t *Tracker) Analyze(samples []float32) (frequency, amplitude float64) {
	frequency, amplitude = t.frequency, t.loudness.amplitude()
	for _, s := range samples {
		frequency, amplitude = t.Process(float64(s))
	}
	return frequency, amplitude
}

// Frequency returns the last accepted fundamental frequency in Hz
func (t *Tracker) Frequency() float64 {
	return t.frequency
}

// Amplitude returns the linear amplitude of the most recent hop
func (t *Tracker) Amplitude() float64 {
	return t.loudness.amplitude()
}

// MeanLevelDb returns the mean calibrated level over the loudness history.
func (t *Tracker) MeanLevelDb() float64 {
	return t.loudness.mean()
}

// Hops returns the number of analysis passes run so far
func (t *Tracker) Hops() uint64 {
	return t.hops
}

// LastFrame returns diagnostics for the most recent analysis pass
func (t *Tracker) LastFrame() Frame {
	return t.frame
}

// HopSize returns the number of samples per hop
func (t *Tracker) HopSize() int {
	return t.hopSize
}

// WindowSize returns the analysis window length
func (t *Tracker) WindowSize() int {
	return t.windowSize
}

// Reset returns the tracker to its freshly constructed state without reallocating.
func (t *Tracker) Reset() {
	clear(t.signal)
	t.fill = 0
	t.spectrum.reset()
	clear(t.peaks)
	clear(t.hist)
	t.loudness.reset()
	t.frequency = t.cfg.InitialFrequency
	t.hops = 0
	t.frame = Frame{}
}

// analyze runs one full pass over the accumulated window.
func (t *Tracker) analyze() {
	t.hops++
	frame := Frame{Hop: t.hops}

	totalPower := t.spectrum.build(t.signal, t.engine)

	var levelDb, totalLoudness float64
	if totalPower > silencePowerEpsilon {
		levelDb, totalLoudness = frameLevel(totalPower, t.windowSize)
	} else {
		frame.Silent = true
	}
	t.loudness.push(levelDb + dbOffset)
	frame.LevelDb = levelDb

	if !frame.Silent && levelDb >= t.cfg.AmplitudeFloorDb {
		npeak := extractPeaks(t.peaks[:t.cfg.MaxPeaks], t.spectrum.spec, t.windowSize, totalPower)
		frame.Peaks = npeak
		est := t.estimate(t.peaks[:npeak], totalPower, totalLoudness)
		frame.Score = est.score
		frame.Partials = est.partials
		if est.voiced {
			t.frequency = t.hzPerBin * est.freqInBins
			frame.Voiced = true
			frame.PitchDb = est.pitchDb
		}
	}

	frame.Frequency = t.frequency
	t.frame = frame
	if t.cfg.OnFrame != nil {
		t.cfg.OnFrame(frame)
	}
}
