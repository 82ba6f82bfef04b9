package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/0xlemi/ptrack/internal/pitch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Constants for UI behavior
const (
	// Number of recent voiced estimates used to decide whether the pitch is steady
	stabilityWindow = 8

	// Maximum relative spread of the window for a steady pitch
	stabilityTolerance = 0.005

	// Width of the level meter in cells
	meterWidth = 40

	// Levels mapped onto the meter, in dBFS
	meterFloorDb = -90.0
	meterCeilDb  = 0.0

	tickInterval = 100 * time.Millisecond

	// Time without tracker updates after which the display is greyed out
	staleAfter = 2 * time.Second
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	frequencyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333333")).
			Padding(1, 4).
			MarginBottom(1)

	steadyColor   = lipgloss.Color("#00AA00")
	unsteadyColor = lipgloss.Color("#A020F0")
	unvoicedColor = lipgloss.Color("#555555")

	meterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500"))
)

// TickMsg represents a timer tick
type TickMsg time.Time

// UpdatePitchMsg carries the tracker output after a block of samples
type UpdatePitchMsg struct {
	Frequency float64
	Amplitude float64
	Frame     pitch.Frame
}

// SourceMsg describes the signal being analysed
type SourceMsg string

// Model represents the UI state
type Model struct {
	frequency   float64
	amplitude   float64
	frame       pitch.Frame
	recent      []float64 // recent voiced estimates, oldest first
	source      string
	lastUpdated time.Time
	width       int
	height      int
}

// NewModel creates a new UI model
func NewModel() Model {
	return Model{
		recent:      make([]float64, 0, stabilityWindow),
		lastUpdated: time.Now(),
	}
}

// Init initializes the UI model
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update updates the UI model based on messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		return m, tick()

	case SourceMsg:
		m.source = string(msg)

	case UpdatePitchMsg:
		m.frequency = msg.Frequency
		m.amplitude = msg.Amplitude
		m.frame = msg.Frame
		if msg.Frame.Voiced {
			if len(m.recent) == stabilityWindow {
				m.recent = append(m.recent[:0], m.recent[1:]...)
			}
			m.recent = append(m.recent, msg.Frequency)
		}
		m.lastUpdated = time.Now()
	}

	return m, nil
}

// Steady reports whether the recent voiced estimates agree within stabilityTolerance
func (m Model) Steady() bool {
	if len(m.recent) < stabilityWindow {
		return false
	}
	lo, hi := m.recent[0], m.recent[0]
	for _, f := range m.recent[1:] {
		lo = math.Min(lo, f)
		hi = math.Max(hi, f)
	}
	return lo > 0 && (hi-lo)/lo <= stabilityTolerance
}

// Stale reports whether no tracker update has arrived for staleAfter
func (m Model) Stale() bool {
	return time.Since(m.lastUpdated) > staleAfter
}

// levelMeter renders amplitude as a bar between meterFloorDb and meterCeilDb
func levelMeter(amplitude float64) string {
	db := meterFloorDb
	if amplitude > 0 {
		db = 20 * math.Log10(amplitude)
	}
	frac := (db - meterFloorDb) / (meterCeilDb - meterFloorDb)
	frac = math.Max(0, math.Min(1, frac))
	filled := int(math.Round(frac * meterWidth))

	return meterStyle.Render(strings.Repeat("█", filled)) +
		infoStyle.Render(strings.Repeat("░", meterWidth-filled)) +
		infoStyle.Render(fmt.Sprintf(" %6.1f dB", db))
}

// View renders the UI
func (m Model) View() string {
	s := titleStyle.Render("ptrack - Pitch Tracker")
	s += "\n"

	if m.source != "" {
		s += infoStyle.Render("Source: "+m.source) + "\n\n"
	}

	if m.frequency > 0 {
		color := unsteadyColor
		switch {
		case !m.frame.Voiced, m.Stale():
			color = unvoicedColor
		case m.Steady():
			color = steadyColor
		}
		s += frequencyStyle.Background(color).Render(fmt.Sprintf("%8.2f Hz", m.frequency))
	} else {
		s += infoStyle.Render("Listening for a pitch...")
	}
	s += "\n"

	s += levelMeter(m.amplitude) + "\n"

	info := fmt.Sprintf("Hop: %d | Level: %.1f dB | Peaks: %d | Partials: %d",
		m.frame.Hop,
		m.frame.LevelDb,
		m.frame.Peaks,
		m.frame.Partials)
	s += infoStyle.Render(info)

	if m.Stale() {
		s += "\n" + infoStyle.Render(fmt.Sprintf("No input for %s", time.Since(m.lastUpdated).Truncate(time.Second)))
	}

	s += "\n\n"
	s += infoStyle.Render("Press q to quit")

	return s
}
