package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/0xlemi/ptrack/internal/pitch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestModelSteadyAfterAgreeingEstimates(t *testing.T) {
	m := NewModel()
	for i := 0; i < stabilityWindow-1; i++ {
		m = update(t, m, UpdatePitchMsg{Frequency: 440 + 0.1*float64(i), Amplitude: 0.3, Frame: pitch.Frame{Voiced: true}})
		assert.False(t, m.Steady())
	}

	m = update(t, m, UpdatePitchMsg{Frequency: 440.2, Amplitude: 0.3, Frame: pitch.Frame{Voiced: true}})
	assert.True(t, m.Steady())

	m = update(t, m, UpdatePitchMsg{Frequency: 470, Amplitude: 0.3, Frame: pitch.Frame{Voiced: true}})
	assert.False(t, m.Steady())
	assert.Len(t, m.recent, stabilityWindow)
}

func TestModelIgnoresUnvoicedForStability(t *testing.T) {
	m := NewModel()
	m = update(t, m, UpdatePitchMsg{Frequency: 440, Frame: pitch.Frame{Voiced: false}})
	assert.Empty(t, m.recent)
}

func TestModelView(t *testing.T) {
	m := NewModel()
	assert.Contains(t, m.View(), "Listening for a pitch")

	m = update(t, m, SourceMsg("sine 440 Hz"))
	m = update(t, m, UpdatePitchMsg{Frequency: 440, Amplitude: 0.5, Frame: pitch.Frame{Hop: 12, Voiced: true, Peaks: 3}})

	view := m.View()
	assert.Contains(t, view, "440.00 Hz")
	assert.Contains(t, view, "sine 440 Hz")
	assert.Contains(t, view, "Hop: 12")
}

func TestModelQuit(t *testing.T) {
	_, cmd := NewModel().Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestLevelMeter(t *testing.T) {
	assert.Contains(t, levelMeter(1), "0.0 dB")
	assert.Contains(t, levelMeter(0), "-90.0 dB")
	assert.Equal(t, meterWidth, strings.Count(levelMeter(1), "█"))
}

func TestModelStale(t *testing.T) {
	m := NewModel()
	m = update(t, m, UpdatePitchMsg{Frequency: 440, Amplitude: 0.5, Frame: pitch.Frame{Voiced: true}})
	assert.False(t, m.Stale())
	assert.NotContains(t, m.View(), "No input")

	m.lastUpdated = time.Now().Add(-5 * time.Second)
	assert.True(t, m.Stale())
	assert.Contains(t, m.View(), "No input for 5s")

	m = update(t, m, UpdatePitchMsg{Frequency: 441, Amplitude: 0.5, Frame: pitch.Frame{Voiced: true}})
	assert.False(t, m.Stale())
}
