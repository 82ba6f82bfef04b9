package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xlemi/ptrack/internal/audio"
	"github.com/0xlemi/ptrack/internal/pitch"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override configuration
const EnvPrefix = "PTRACK"

// Signal kinds
const (
	SignalSine      = "sine"
	SignalHarmonics = "harmonics"
	SignalSweep     = "sweep"
	SignalSilence   = "silence"
)

// Config represents the application configuration
type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	Tracker  TrackerConfig `mapstructure:"tracker"`
	Signal   SignalConfig  `mapstructure:"signal"`
}

// TrackerConfig contains pitch tracker settings
type TrackerConfig struct {
	SampleRate        int     `mapstructure:"sample_rate"`
	HopSize           int     `mapstructure:"hop_size"`
	MaxPeaks          int     `mapstructure:"max_peaks"`
	AmplitudeFloorDb  float64 `mapstructure:"amplitude_floor_db"`
	DBFullScale       float64 `mapstructure:"db_full_scale"`
	PartialWeightBase float64 `mapstructure:"partial_weight_base"`
	InitialFrequency  float64 `mapstructure:"initial_frequency"`
	FFTEngine         string  `mapstructure:"fft_engine"`
}

// SignalConfig describes the synthetic input signal
type SignalConfig struct {
	Kind         string    `mapstructure:"kind"`
	Frequency    float64   `mapstructure:"frequency"`
	EndFrequency float64   `mapstructure:"end_frequency"`
	Amplitude    float64   `mapstructure:"amplitude"`
	Harmonics    []float64 `mapstructure:"harmonics"`
	Noise        float64   `mapstructure:"noise"`
	Duration     float64   `mapstructure:"duration"`
	Seed         uint64    `mapstructure:"seed"`
}

// New creates a viper instance that reads configFile, or ptrack.yaml from the usual
// locations when configFile is empty, plus PTRACK_* environment variables.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ptrack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ptrack"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return v, nil
}

// Load unmarshals v into a Config and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that the tracker does not check itself
func (c *Config) Validate() error {
	switch c.Signal.Kind {
	case SignalSine, SignalHarmonics, SignalSweep, SignalSilence:
	default:
		return fmt.Errorf("unknown signal kind %q", c.Signal.Kind)
	}
	if c.Signal.Duration <= 0 {
		return fmt.Errorf("signal duration must be positive, got %g", c.Signal.Duration)
	}
	if c.Tracker.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.Tracker.SampleRate)
	}
	if c.Tracker.DBFullScale == 0 {
		return errors.New("db full scale must be non-zero")
	}
	if c.Tracker.PartialWeightBase <= 0 {
		return fmt.Errorf("partial weight base must be positive, got %g", c.Tracker.PartialWeightBase)
	}
	return nil
}

// PitchConfig converts the tracker section to a pitch.Config
func (c *Config) PitchConfig() pitch.Config {
	t := c.Tracker
	return pitch.Config{
		SampleRate:        float64(t.SampleRate),
		HopSize:           t.HopSize,
		MaxPeaks:          t.MaxPeaks,
		AmplitudeFloorDb:  t.AmplitudeFloorDb,
		DBFullScale:       t.DBFullScale,
		PartialWeightBase: t.PartialWeightBase,
		InitialFrequency:  t.InitialFrequency,
		Engine:            t.FFTEngine,
	}
}

// BuildSignal returns the configured test signal, with noise mixed in when set
func (c *Config) BuildSignal() audio.Signal {
	s := c.Signal
	sr := c.Tracker.SampleRate

	var sig audio.Signal
	switch s.Kind {
	case SignalHarmonics:
		amps := s.Harmonics
		if len(amps) == 0 {
			amps = []float64{s.Amplitude}
		}
		sig = audio.Harmonics(s.Frequency, sr, amps...)
	case SignalSweep:
		sig = audio.Sweep(s.Frequency, s.EndFrequency, s.Duration, s.Amplitude, sr)
	case SignalSilence:
		sig = audio.Silence()
	default:
		sig = audio.Sine(s.Frequency, s.Amplitude, sr)
	}

	if s.Noise > 0 {
		sig = audio.Mix(sig, audio.Noise(s.Noise, s.Seed))
	}
	return sig
}

// Samples returns the number of samples in the configured signal duration
func (c *Config) Samples() int {
	return int(c.Signal.Duration * float64(c.Tracker.SampleRate))
}
