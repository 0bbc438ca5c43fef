// Package dashboard renders controller state in the terminal, either read
// from a local source or polled from a receiver's status API.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/apiclient"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/apitypes"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/device"
	"github.com/jaruizra/Remote-SteamDeck-RC-for-OpenHD/protocol"
)

const (
	defaultBarWidth = 40
	minBarWidth     = 10
	pollTimeout     = 500 * time.Millisecond
)

// Sample is one refresh worth of data.
type Sample struct {
	Snapshot protocol.Snapshot
	// Status is set when the sample comes from a receiver.
	Status *apitypes.StatusResponse
}

// Poller fetches the next sample.
type Poller func(ctx context.Context) (Sample, error)

// LocalPoller reads src directly.
func LocalPoller(src device.Source) Poller {
	return func(context.Context) (Sample, error) {
		snap, err := src.ReadSnapshot()
		return Sample{Snapshot: snap}, err
	}
}

// RemotePoller polls the status endpoint of a receiver.
func RemotePoller(c *apiclient.Client) Poller {
	return func(ctx context.Context) (Sample, error) {
		st, err := c.Status(ctx)
		if err != nil {
			return Sample{}, err
		}
		s := Sample{Status: st}
		copy(s.Snapshot.Axes[:], st.Axes)
		for i, v := range st.Buttons {
			if i < protocol.NumButtons {
				s.Snapshot.Buttons[i] = uint8(v)
			}
		}
		return s, nil
	}
}

type sampleMsg struct {
	sample Sample
	err    error
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle    = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("7"))
	valueStyle    = lipgloss.NewStyle().Width(7).Align(lipgloss.Right)
	pressedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Padding(0, 1)
	releasedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)
	liveStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Padding(0, 1)
	staleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")).Padding(0, 1)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Model is the bubbletea model of the dashboard.
type Model struct {
	title    string
	poll     Poller
	interval time.Duration
	bar      progress.Model
	sample   Sample
	err      error
	samples  uint64
	width    int
}

// New creates a dashboard refreshing every interval.
func New(title string, poll Poller, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return Model{
		title:    title,
		poll:     poll,
		interval: interval,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(defaultBarWidth), progress.WithoutPercentage()),
	}
}

func (m Model) Init() tea.Cmd { return m.fetch() }

func (m Model) fetch() tea.Cmd {
	poll := m.poll
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
		defer cancel()
		s, err := poll(ctx)
		return sampleMsg{sample: s, err: err}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(minBarWidth, min(defaultBarWidth, msg.Width-labelStyle.GetWidth()-valueStyle.GetWidth()-4))
	case sampleMsg:
		m.err = msg.err
		if msg.err == nil {
			m.sample = msg.sample
			m.samples++
		}
		return m, m.fetch()
	}
	return m, nil
}

// Sample returns the most recent successful sample.
func (m Model) Sample() Sample { return m.sample }

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	if st := m.sample.Status; st != nil {
		b.WriteString("  ")
		b.WriteString(modeBadge(st.Mode))
	}
	b.WriteString("\n\n")

	for a := protocol.AxisLeftStickX; a <= protocol.AxisRightTrigger; a++ {
		v := m.sample.Snapshot.Axis(a)
		b.WriteString(labelStyle.Render(a.String()))
		b.WriteString(valueStyle.Render(fmt.Sprint(v)))
		b.WriteString("  ")
		b.WriteString(m.bar.ViewAs(AxisPercent(a, v)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	buttons := make([]string, 0, protocol.NumButtons)
	for i := 0; i < protocol.NumButtons; i++ {
		btn := protocol.Button(i)
		style := releasedStyle
		if m.sample.Snapshot.Pressed(btn) {
			style = pressedStyle
		}
		buttons = append(buttons, style.Render(btn.String()))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	b.WriteString("\n\n")

	if st := m.sample.Status; st != nil {
		fmt.Fprintf(&b, "seq %d  frames %d  malformed %d  errors %d  last %dms ago  timeout %dms\n",
			st.LastSequence, st.Frames, st.Malformed, st.TransientErrors, st.SinceLastMs, st.TimeoutMs)
	}
	if m.err != nil {
		msg := "error: " + m.err.Error()
		if m.width > 0 {
			msg = wordwrap.String(msg, m.width)
		}
		b.WriteString(errStyle.Render(msg))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("q to quit"))
	b.WriteString("\n")
	return b.String()
}

func modeBadge(mode string) string {
	if mode == "stale" {
		return staleStyle.Render("STALE")
	}
	return liveStyle.Render(strings.ToUpper(mode))
}

// AxisPercent maps an axis value to [0, 1] for display. Sticks are centred
// at 0.5, triggers start at 0.
func AxisPercent(a protocol.Axis, v int16) float64 {
	if a.IsStick() {
		return (float64(v) + 32768) / 65535
	}
	if v <= 0 {
		return 0
	}
	return float64(v) / 32767
}
