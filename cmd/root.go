package main

import (
	"fmt"
	"os"

	"github.com/0xlemi/ptrack/internal/config"
	"github.com/0xlemi/ptrack/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFile string

	appConfig *config.Config
	logger    logging.Logger = &logging.NoOpLogger{}
)

// flagBindings maps command-line flags onto configuration keys
var flagBindings = map[string]string{
	"log-level":   "log_level",
	"sample-rate": "tracker.sample_rate",
	"hop":         "tracker.hop_size",
	"peaks":       "tracker.max_peaks",
	"floor":       "tracker.amplitude_floor_db",
	"engine":      "tracker.fft_engine",
	"signal":      "signal.kind",
	"freq":        "signal.frequency",
	"end-freq":    "signal.end_frequency",
	"amp":         "signal.amplitude",
	"noise":       "signal.noise",
	"duration":    "signal.duration",
	"seed":        "signal.seed",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ptrack",
	Short: "Real-time monophonic pitch tracker",
	Long: `ptrack estimates the fundamental frequency and amplitude of a mono signal
sample by sample, using an FFT with single-sideband refinement, sub-bin peak
interpolation and a log-frequency harmonic voting histogram.

The commands run the tracker over synthetic test signals.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if zl, ok := logger.(*logging.ZapLogger); ok {
			_ = zl.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&configFile, "config", "", "config file (default is ./ptrack.yaml or $HOME/.config/ptrack/ptrack.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	// Tracker flags
	flags.Int("sample-rate", 44100, "sample rate in Hz")
	flags.Int("hop", 1024, "hop size in samples (window is twice this)")
	flags.Int("peaks", 20, "maximum spectral peaks per hop")
	flags.Float64("floor", 40, "amplitude floor in dB below which hops are not analysed")
	flags.String("engine", "gonum", "FFT engine (gonum, godsp)")

	// Signal flags
	flags.String("signal", "sine", "signal kind (sine, harmonics, sweep, silence)")
	flags.Float64("freq", 440, "frequency in Hz (sweep start frequency)")
	flags.Float64("end-freq", 880, "sweep end frequency in Hz")
	flags.Float64("amp", 0.5, "peak amplitude")
	flags.Float64Slice("harmonics", nil, "harmonic amplitudes, fundamental first")
	flags.Float64("noise", 0, "white noise amplitude mixed into the signal")
	flags.Float64("duration", 1, "signal duration in seconds")
	flags.Uint64("seed", 1, "noise seed")
}

// initializeConfig loads configuration after flags are parsed
func initializeConfig(cmd *cobra.Command) error {
	v, err := config.New(configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(cmd, v); err != nil {
		return err
	}
	// Slice flags are set directly; viper would hand them to the decoder as a string.
	if f := cmd.Flags().Lookup("harmonics"); f != nil && f.Changed {
		harmonics, err := cmd.Flags().GetFloat64Slice("harmonics")
		if err != nil {
			return err
		}
		v.Set("signal.harmonics", harmonics)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	zl, err := logging.NewZapLogger(level)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	appConfig = cfg
	logger = zl
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", logging.Fields{"path": used})
	}
	return nil
}

// bindFlags binds each flag to its configuration key. Unset flags leave file and
// environment values in place.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for name, key := range flagBindings {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}
