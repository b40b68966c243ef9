// SPDX-License-Identifier: MIT
/*
Package tui renders bar heights in the terminal with bubbletea.

The model ticks at the display frame rate. On each tick it optionally drives
a pull-mode frame (playback), then copies the latest heights from its
provider, so the same model serves live capture and file playback.
*/
package tui

import (
	"barscope/internal/analysis"
	"barscope/internal/driver"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// chromeRows is the number of terminal rows used by the title, the status
// line and the help line.
const chromeRows = 4

// VolumeGate is the volume scalar adjusted from the keyboard.
type VolumeGate interface {
	Volume() float64
	Adjust(delta float64) float64
}

// Playback is a pausable position source.
type Playback interface {
	Position() time.Duration
	Duration() time.Duration
	TogglePause()
	Paused() bool
}

// Options configures a Model.
type Options struct {
	Title       string
	Provider    analysis.HeightsProvider // read every frame
	Ticker      driver.Ticker            // pull driver in playback mode, nil for capture
	Volume      VolumeGate
	OnVolume    func(v float64) // mirrors gate changes, e.g. to the audio output
	Playback    Playback        // nil for capture
	Status      string          // extra status text, e.g. the recording path
	FPS         int
	PixelHeight int
	PeakCaps    bool
	Color       string
}

type frameMsg time.Time

// Model is the bubbletea model of the bar display.
type Model struct {
	opts     Options
	keys     keyMap
	interval time.Duration
	bars     lipgloss.Style

	heights []int
	peaks   peakField
	frames  int
	state   driver.State
	err     error

	width, height int
	quitting      bool
}

// NewModel creates a model. FPS must be positive.
func NewModel(opts Options) Model {
	bars := opts.Provider.Bars()
	return Model{
		opts:     opts,
		keys:     newKeyMap(opts.Playback != nil),
		interval: time.Second / time.Duration(max(opts.FPS, 1)),
		bars:     barStyle(opts.Color),
		heights:  make([]int, bars),
		peaks:    newPeakField(max(opts.FPS, 1), bars),
		width:    80,
		height:   24,
	}
}

// State is the last state returned by the pull driver.
func (m Model) State() driver.State {
	return m.state
}

// Err returns the error that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Init starts the frame ticker.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles window, keyboard and frame messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		return m.frame()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.opts.Playback.TogglePause()

	case key.Matches(msg, m.keys.VolumeUp):
		m.adjustVolume(volumeStep)

	case key.Matches(msg, m.keys.VolumeDown):
		m.adjustVolume(-volumeStep)

	case key.Matches(msg, m.keys.Peaks):
		m.opts.PeakCaps = !m.opts.PeakCaps
	}
	return m, nil
}

func (m Model) adjustVolume(delta float64) {
	if m.opts.Volume == nil {
		return
	}
	v := m.opts.Volume.Adjust(delta)
	if m.opts.OnVolume != nil {
		m.opts.OnVolume(v)
	}
}

// frame runs one render tick.
func (m Model) frame() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}

	if m.opts.Ticker != nil && (m.opts.Playback == nil || !m.opts.Playback.Paused()) {
		m.state = m.opts.Ticker.Tick()
		if m.state.Done() {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if err := m.opts.Provider.HeightsInto(m.heights); err != nil {
		m.err = err
		m.quitting = true
		return m, tea.Quit
	}
	m.peaks.update(m.heights)
	m.frames++

	return m, m.tick()
}

// View draws the title, the bars, a status line and the key help.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.opts.Title))
	sb.WriteString("\n")

	var peaks []float64
	if m.opts.PeakCaps {
		peaks = m.peaks.pos
	}
	rows := max(m.height-chromeRows, 1)
	lines, kinds := renderBars(m.heights, peaks, m.width, rows, m.opts.PixelHeight)
	for r := range lines {
		sb.WriteString(m.styleLine(lines[r], kinds[r]))
		sb.WriteString("\n")
	}

	sb.WriteString(statusStyle.Render(m.status()))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render(m.keys.helpText()))
	return sb.String()
}

// styleLine renders runs of equal cell kind with their style.
func (m Model) styleLine(line []rune, kinds []cell) string {
	var sb strings.Builder
	start := 0
	for i := 1; i <= len(line); i++ {
		if i < len(line) && kinds[i] == kinds[start] {
			continue
		}
		run := string(line[start:i])
		switch kinds[start] {
		case cellBar:
			sb.WriteString(m.bars.Render(run))
		case cellCap:
			sb.WriteString(peakStyle.Render(run))
		default:
			sb.WriteString(run)
		}
		start = i
	}
	return sb.String()
}

func (m Model) status() string {
	var parts []string
	if m.opts.Playback != nil {
		pos := m.opts.Playback.Position().Truncate(time.Second)
		dur := m.opts.Playback.Duration().Truncate(time.Second)
		s := fmt.Sprintf("%s / %s", formatDuration(pos), formatDuration(dur))
		if m.opts.Playback.Paused() {
			s += " (paused)"
		}
		parts = append(parts, s)
	}
	if m.opts.Volume != nil {
		v := m.opts.Volume.Volume()
		if v <= 0 {
			parts = append(parts, "gate closed")
		} else {
			parts = append(parts, fmt.Sprintf("vol %d%%", int(v*100+0.5)))
		}
	}
	if m.opts.Status != "" {
		parts = append(parts, m.opts.Status)
	}
	return strings.Join(parts, "  ")
}

func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
