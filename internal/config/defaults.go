package config

import (
	"github.com/0xlemi/ptrack/internal/pitch"
	"github.com/spf13/viper"
)

// setDefaults sets default configuration values for all components
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	// Tracker defaults
	v.SetDefault("tracker.sample_rate", 44100)
	v.SetDefault("tracker.hop_size", pitch.DefaultHopSize)
	v.SetDefault("tracker.max_peaks", pitch.DefaultMaxPeaks)
	v.SetDefault("tracker.amplitude_floor_db", pitch.DefaultAmplitudeFloorDb)
	v.SetDefault("tracker.db_full_scale", pitch.DefaultDBFullScale)
	v.SetDefault("tracker.partial_weight_base", pitch.DefaultPartialWeightBase)
	v.SetDefault("tracker.initial_frequency", 0.0)
	v.SetDefault("tracker.fft_engine", pitch.EngineGonum)

	// Signal defaults
	v.SetDefault("signal.kind", SignalSine)
	v.SetDefault("signal.frequency", 440.0)
	v.SetDefault("signal.end_frequency", 880.0)
	v.SetDefault("signal.amplitude", 0.5)
	v.SetDefault("signal.harmonics", []float64{})
	v.SetDefault("signal.noise", 0.0)
	v.SetDefault("signal.duration", 1.0)
	v.SetDefault("signal.seed", 1)
}
