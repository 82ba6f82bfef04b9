package main

import (
	"context"
	"fmt"
	"time"

	"github.com/0xlemi/ptrack/internal/audio"
	"github.com/0xlemi/ptrack/internal/config"
	"github.com/0xlemi/ptrack/internal/logging"
	"github.com/0xlemi/ptrack/internal/pitch"
	"github.com/0xlemi/ptrack/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// Minimum interval between UI updates
const uiUpdateInterval = 80 * time.Millisecond

var amplification float32

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show live tracker output for a synthetic signal played in real time",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context(), appConfig, logger)
	},
}

func init() {
	watchCmd.Flags().Float32Var(&amplification, "gain", 1, "input amplification factor")
	rootCmd.AddCommand(watchCmd)
}

func describeSignal(cfg *config.Config) string {
	s := cfg.Signal
	var d string
	switch s.Kind {
	case config.SignalSweep:
		d = fmt.Sprintf("sweep %.1f → %.1f Hz over %.1fs", s.Frequency, s.EndFrequency, s.Duration)
	case config.SignalHarmonics:
		d = fmt.Sprintf("harmonics on %.1f Hz %v", s.Frequency, s.Harmonics)
	case config.SignalSilence:
		d = "silence"
	default:
		d = fmt.Sprintf("sine %.1f Hz", s.Frequency)
	}
	if s.Noise > 0 {
		d += fmt.Sprintf(" + noise %.3f", s.Noise)
	}
	return d
}

func runWatch(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pc := cfg.PitchConfig()
	pc.Logger = log
	tracker, err := pitch.New(pc)
	if err != nil {
		return err
	}

	capturer := audio.NewSynthCapturer(cfg.BuildSignal(), pc.HopSize, cfg.Tracker.SampleRate)
	capturer.SetAmplification(amplification)
	if err := capturer.Start(); err != nil {
		return err
	}
	defer capturer.Stop()

	p := tea.NewProgram(ui.NewModel(), tea.WithAltScreen(), tea.WithContext(ctx))

	// Feed one hop per hop duration so the display runs in real time
	go func() {
		hopDuration := time.Duration(float64(time.Second) * float64(pc.HopSize) / pc.SampleRate)
		ticker := time.NewTicker(hopDuration)
		defer ticker.Stop()

		p.Send(ui.SourceMsg(describeSignal(cfg)))
		lastSent := time.Time{}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			buffer, err := capturer.GetBuffer()
			if err != nil {
				log.Error(err, "reading buffer")
				return
			}
			freq, amp := tracker.Analyze(buffer.Samples)

			if time.Since(lastSent) >= uiUpdateInterval {
				p.Send(ui.UpdatePitchMsg{Frequency: freq, Amplitude: amp, Frame: tracker.LastFrame()})
				lastSent = time.Now()
			}
		}
	}()

	_, err = p.Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
