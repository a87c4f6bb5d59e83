// Package ui provides the Bubble Tea controls panel for hangar.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openflight/hangar/internal/controls"
	"github.com/openflight/hangar/internal/prefs"
	"github.com/openflight/hangar/internal/session"
	"github.com/openflight/hangar/internal/state"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Session   *session.Session
	Inbox     *state.Inbox
	Prefs     prefs.Prefs
	PrefsPath string
	Tick      time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	sess      *session.Session
	inbox     *state.Inbox
	prefs     prefs.Prefs
	prefsPath string
	tick      time.Duration
	keys      keyMap

	// UI state
	theme       Theme
	width       int
	height      int
	ready       bool
	focusedPane int // 0 = slots, 1 = detail

	// Data state
	view        controls.View
	link        state.Link
	lastUpdated time.Time
	restored    bool

	detailViewport viewport.Model

	showHelp   bool
	showExport bool
	modal      Modal

	flash      string
	flashIsErr bool
	flashAt    time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:       ctx,
		sess:      opts.Session,
		inbox:     opts.Inbox,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		tick:      tick,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.Prefs.Theme),
		// a viewer with no saved player has nothing to restore
		restored: opts.Prefs.LastViewed == "",
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(m.tick),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.detailViewport = viewport.New(0, 0)
		}
		m.ready = true
		m.updateDetailViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.modal != nil {
		return m.updateModal(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		m.focusedPane = 1 - m.focusedPane
		return m, nil

	case key.Matches(msg, m.keys.Export):
		m.showExport = !m.showExport
		m.updateDetailViewport()
		return m, nil
	}

	if m.focusedPane == 1 {
		if handled := m.scrollDetail(msg); handled {
			return m, nil
		}
	}

	m.handleAction(msg)
	m.refresh()
	return m, nil
}

func (m *Model) scrollDetail(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.detailViewport.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.detailViewport.LineDown(1)
	case key.Matches(msg, m.keys.Top):
		m.detailViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.detailViewport.GotoBottom()
	default:
		return false
	}
	return true
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd, done := m.modal.Update(msg, m.keys)
	if !done {
		m.modal = next
		return m, cmd
	}
	m.modal = nil
	m.finishModal(next)
	m.refresh()
	return m, cmd
}

// handleTick applies everything the receiver queued since the last tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.inbox != nil && m.sess != nil {
		for _, ev := range m.inbox.Drain() {
			m.sess.Apply(ev)
		}
		m.link = m.inbox.Link()
	}
	m.restoreLastViewed()
	m.refresh()

	if m.ctx.Err() != nil {
		return m, tea.Quit
	}
	return m, tickCmd(m.tick)
}

// restoreLastViewed reopens the player that was on screen when the UI last
// quit, once that player's data has arrived.
func (m *Model) restoreLastViewed() {
	if m.restored || m.sess == nil {
		return
	}
	if err := m.sess.Controls().SetReference(m.prefs.LastViewed); err == nil {
		m.restored = true
	}
}

// refresh re-reads the panel snapshot.
func (m *Model) refresh() {
	if m.sess == nil {
		return
	}
	m.view = m.sess.Controls().Snapshot()
	m.lastUpdated = time.Now()
	m.updateDetailViewport()
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashIsErr = isErr
	m.flashAt = time.Now()
}

// activeFlash returns the flash message while it is still fresh.
func (m Model) activeFlash() (string, bool) {
	if m.flash == "" || time.Since(m.flashAt) > FlashDuration {
		return "", false
	}
	return m.flash, m.flashIsErr
}

func (m *Model) savePrefs() {
	m.prefs.Theme = m.theme.Name
	if m.sess != nil {
		m.prefs.LastViewed = m.view.Player
		if m.view.IsLocal {
			m.prefs.LastViewed = ""
		}
	}
	if m.prefsPath != "" {
		_ = prefs.Save(m.prefsPath, m.prefs)
	}
}

// Messages

type tickMsg time.Time

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
