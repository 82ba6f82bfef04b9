package audio

import (
	"errors"
	"sync"
)

// Errors
var (
	ErrAlreadyCapturing = errors.New("audio capture already started")
	ErrNotCapturing     = errors.New("audio capture not started")
)

// AudioBuffer represents a buffer of audio samples
type AudioBuffer struct {
	Samples    []float32
	SampleRate int
}

// Capturer defines the interface for audio capture
type Capturer interface {
	// Start begins audio capture
	Start() error

	// Stop ends audio capture
	Stop() error

	// GetBuffer returns the next audio buffer
	GetBuffer() (*AudioBuffer, error)

	// IsCapturing returns true if currently capturing audio
	IsCapturing() bool
}

// SynthCapturer implements Capturer over a synthetic Signal. Each GetBuffer call returns
// the next bufferSize samples, so consecutive buffers are phase-continuous.
type SynthCapturer struct {
	mu            sync.Mutex
	isCapturing   bool
	signal        Signal
	bufferSize    int
	sampleRate    int
	position      int
	amplification float32
}

// NewSynthCapturer creates a capturer producing signal in buffers of bufferSize samples
func NewSynthCapturer(signal Signal, bufferSize, sampleRate int) *SynthCapturer {
	return &SynthCapturer{
		signal:        signal,
		bufferSize:    bufferSize,
		sampleRate:    sampleRate,
		amplification: 1.0,
	}
}

// Start begins audio capture
func (c *SynthCapturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isCapturing {
		return ErrAlreadyCapturing
	}
	c.isCapturing = true
	return nil
}

// Stop ends audio capture
func (c *SynthCapturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCapturing {
		return ErrNotCapturing
	}
	c.isCapturing = false
	return nil
}

// GetBuffer returns the next block of the signal
func (c *SynthCapturer) GetBuffer() (*AudioBuffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isCapturing {
		return nil, ErrNotCapturing
	}

	samples := Render(c.signal, c.position, c.bufferSize)
	for i := range samples {
		samples[i] *= c.amplification
	}
	c.position += c.bufferSize

	return &AudioBuffer{Samples: samples, SampleRate: c.sampleRate}, nil
}

// IsCapturing returns true if currently capturing audio
func (c *SynthCapturer) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCapturing
}

// Position returns the index of the next sample GetBuffer will produce
func (c *SynthCapturer) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// SetAmplification sets the audio amplification factor
func (c *SynthCapturer) SetAmplification(factor float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Ensure amplification is positive
	if factor < 0.1 {
		factor = 0.1
	}

	c.amplification = factor
}
