package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/0xlemi/ptrack/internal/audio"
	"github.com/0xlemi/ptrack/internal/config"
	"github.com/0xlemi/ptrack/internal/logging"
	"github.com/0xlemi/ptrack/internal/pitch"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

var (
	printEvery int
	quiet      bool
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run the tracker over a synthetic signal and print per-hop estimates",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := runTrack(appConfig, logger, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), appConfig, summary)
		return nil
	},
}

func init() {
	trackCmd.Flags().IntVar(&printEvery, "every", 1, "print every Nth hop")
	trackCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the summary")
	rootCmd.AddCommand(trackCmd)
}

// trackSummary aggregates a track run
type trackSummary struct {
	Hops      int
	Voiced    int
	Final     float64
	Amplitude float64
	Estimates []float64 // frequency after each voiced hop
}

// runTrack feeds the configured signal through a tracker one hop-sized buffer at a time
func runTrack(cfg *config.Config, log logging.Logger, out io.Writer) (*trackSummary, error) {
	summary := &trackSummary{}

	var tw *tabwriter.Writer
	if !quiet {
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "hop\ttime (s)\tfreq (Hz)\tlevel (dB)\tpeaks\tpartials\tvoiced\t")
	}

	pc := cfg.PitchConfig()
	pc.Logger = log
	hopSeconds := float64(pc.HopSize) / pc.SampleRate
	pc.OnFrame = func(f pitch.Frame) {
		summary.Hops++
		if f.Voiced {
			summary.Voiced++
			summary.Estimates = append(summary.Estimates, f.Frequency)
		}
		log.Debug("frame", logging.Fields{
			"hop":      f.Hop,
			"level_db": f.LevelDb,
			"voiced":   f.Voiced,
			"freq":     f.Frequency,
		})
		if tw != nil && printEvery > 0 && int(f.Hop)%printEvery == 0 {
			fmt.Fprintf(tw, "%d\t%.3f\t%.2f\t%.1f\t%d\t%d\t%v\t\n",
				f.Hop, float64(f.Hop)*hopSeconds, f.Frequency, f.LevelDb, f.Peaks, f.Partials, f.Voiced)
		}
	}

	tracker, err := pitch.New(pc)
	if err != nil {
		return nil, err
	}

	capturer := audio.NewSynthCapturer(cfg.BuildSignal(), pc.HopSize, cfg.Tracker.SampleRate)
	if err := capturer.Start(); err != nil {
		return nil, err
	}
	defer capturer.Stop()

	total := cfg.Samples()
	for capturer.Position() < total {
		buffer, err := capturer.GetBuffer()
		if err != nil {
			return nil, err
		}
		summary.Final, summary.Amplitude = tracker.Analyze(buffer.Samples)
	}

	if tw != nil {
		if err := tw.Flush(); err != nil {
			return nil, err
		}
	}

	log.Info("track finished", logging.Fields{
		"hops":   summary.Hops,
		"voiced": summary.Voiced,
	})
	return summary, nil
}

func printSummary(out io.Writer, cfg *config.Config, s *trackSummary) {
	fmt.Fprintf(out, "\nhops: %d  voiced: %d\n", s.Hops, s.Voiced)
	fmt.Fprintf(out, "final: %.2f Hz  amplitude: %.4f (%.1f dBFS)\n", s.Final, s.Amplitude, 20*math.Log10(s.Amplitude))

	if len(s.Estimates) == 0 {
		return
	}
	mean, std := stat.MeanStdDev(s.Estimates, nil)
	fmt.Fprintf(out, "voiced estimates: mean %.2f Hz  std-dev %.2f Hz\n", mean, std)

	if cfg.Signal.Kind == config.SignalSine || cfg.Signal.Kind == config.SignalHarmonics {
		errPct := 100 * (s.Final - cfg.Signal.Frequency) / cfg.Signal.Frequency
		fmt.Fprintf(out, "error vs %.2f Hz: %+.3f%%\n", cfg.Signal.Frequency, errPct)
	}
}
