// Package tui renders the playable terminal client. Committed game text is
// printed to the terminal scrollback via tea.Println; the live view holds
// only the activity bar, the input line, and the status bar.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/bardlabs/minstrel/activity"
	"github.com/bardlabs/minstrel/client"
	"github.com/bardlabs/minstrel/config"
	"github.com/bardlabs/minstrel/protocol"
	"github.com/bardlabs/minstrel/session"
)

// tickMsg drives the cooperative event pump at the configured frame rate.
type tickMsg time.Time

// Model is the root bubbletea model.
type Model struct {
	client  *client.Client
	conf    *config.Config
	pending *pendingLines

	input textinput.Model
	bar   progress.Model

	autoLogin bool
	lastTick  time.Time
	width     int
	quitting  bool
}

// New assembles the full client stack behind a fresh model.
func New(conf *config.Config, logger zerolog.Logger) Model {
	return newModel(conf, nil, logger)
}

// newModel lets tests swap the WebSocket dialer for a fake transport.
func newModel(conf *config.Config, dial session.DialFunc, logger zerolog.Logger) Model {
	pending := &pendingLines{}

	notify := activity.Notifications{
		Completed: func(final activity.Session, rewards protocol.Rewards) {
			pending.add(formatRewards(final, rewards))
		},
	}

	var c *client.Client
	if dial == nil {
		c = client.New(conf, notify, logger)
	} else {
		c = client.NewWithDialer(conf, dial, notify, logger)
	}

	c.Subscribe(session.Events{
		Connected: func() {
			pending.add(dimStyle.Render("Connected."))
		},
		Disconnected: func(err error) {
			if err != nil {
				pending.add(errorStyle.Render("Connection lost: " + err.Error()))
				return
			}
			pending.add(dimStyle.Render("Disconnected."))
		},
		Authenticated: func(ok bool, id session.Identity, reason string) {
			if !ok {
				pending.add(errorStyle.Render("Login failed: " + reason))
				return
			}
			pending.add(formatWelcome(id))
		},
		Error: func(err error) {
			pending.add(errorStyle.Render("Error: " + err.Error()))
		},
		Message: func(env protocol.Envelope) {
			pending.add(formatEnvelope(env))
		},
	})

	ti := textinput.New()
	ti.Placeholder = "Chat with your mentor or type /help"
	ti.CharLimit = 512
	ti.Focus()

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return Model{
		client:    c,
		conf:      conf,
		pending:   pending,
		input:     ti,
		bar:       bar,
		autoLogin: conf.HasCredentials(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.conf.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(20, msg.Width-4)
		m.bar.Width = min(60, max(16, msg.Width-34))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m.quit()
		case tea.KeyEnter:
			return m.handleSubmit()
		}

	case tickMsg:
		return m.handleTick(time.Time(msg))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleTick pumps the client and flushes scrollback lines the callbacks
// collected while it ran.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	var delta time.Duration
	if !m.lastTick.IsZero() {
		delta = now.Sub(m.lastTick)
	}
	m.lastTick = now

	m.client.Tick(delta)

	if m.autoLogin && m.client.State() == session.StateConnected {
		m.autoLogin = false
		if err := m.client.Authenticate(m.conf.Username, m.conf.Password); err != nil {
			m.pending.add(errorStyle.Render("Error: " + err.Error()))
		}
	}

	cmds := []tea.Cmd{m.tick()}
	if lines := m.pending.take(); len(lines) > 0 {
		cmds = append(cmds, tea.Println(strings.Join(lines, "\n")))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if text == "" {
		return m, nil
	}

	if text == "/quit" || text == "/exit" {
		return m.quit()
	}

	lines := append([]string{youPrefixStyle.Render("You: ") + text}, m.execute(text)...)
	return m, tea.Println(strings.Join(lines, "\n"))
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.client.Disconnect()
	m.quitting = true
	return m, tea.Quit
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := make([]string, 0, 3)
	if view := m.activityView(); view != "" {
		sections = append(sections, view)
	}
	sections = append(sections, m.input.View(), m.statusView())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// activityView renders the live practice bar, or nothing when idle.
func (m Model) activityView() string {
	act, ok := m.client.Activity()
	if !ok {
		return ""
	}

	var tail string
	if m.client.ActivityPhase() == activity.PhaseAwaitingConfirm {
		tail = dimStyle.Render("awaiting confirmation...")
	} else {
		tail = dimStyle.Render(fmt.Sprintf("%.0fs left", act.Remaining()))
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		activityStyle.Render(act.Label)+" ",
		m.bar.ViewAs(act.Fraction()),
		" "+tail,
	)
}

func (m Model) statusView() string {
	st := m.client.State()
	parts := []string{stateDot(st) + " " + st.String()}

	if st == session.StateAuthenticated {
		id := m.client.Identity()
		if name, _ := id.Profile["name"].(string); name != "" {
			parts = append(parts, name)
		} else if id.PlayerID != "" {
			parts = append(parts, id.PlayerID)
		}
	}

	parts = append(parts, m.conf.ServerURL)

	if n := m.client.DroppedFrames(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d dropped", n))
	}

	return statusStyle.Render(" " + strings.Join(parts, " | "))
}

// Run connects and drives the TUI until the player quits.
func Run(conf *config.Config, logger zerolog.Logger) error {
	m := New(conf, logger)

	m.pending.add(dimStyle.Render("Connecting to " + conf.ServerURL + "..."))
	if err := m.client.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
