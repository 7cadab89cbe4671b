// Package ui renders the usbwatch dashboard with Bubble Tea. It is a pure
// consumer of the reconciled model: it reads snapshots and notification
// lists, and its only write paths are the narrow Control surface (rescan,
// dismiss a notification, clear the error banner).
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkolbus/usbwatch/internal/monitor"
	"github.com/mkolbus/usbwatch/internal/notify"
	"github.com/mkolbus/usbwatch/internal/state"
	"github.com/mkolbus/usbwatch/internal/stream"
	"github.com/mkolbus/usbwatch/internal/view"
)

// Control is what the dashboard may ask of the sync engine. It performs no
// merge logic itself.
type Control interface {
	Rescan()
	ConnectionState() stream.State
	DismissNotification(id int64)
	DismissError()
}

// Options configure the UI.
type Options struct {
	Context context.Context
	Store   *state.Store
	Notes   *notify.Queue
	Control Control
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx     context.Context
	store   *state.Store
	notes   *notify.Queue
	control Control

	storeCh <-chan struct{}
	notesCh <-chan struct{}

	theme Theme

	width  int
	height int
	ready  bool

	snapshot      state.Snapshot
	notifications []notify.Notification
	conn          stream.State
	now           time.Time

	filterInput   textinput.Model
	filterFocused bool
	statusFilter  monitor.DeviceStatus // empty means all
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	input := textinput.New()
	input.Placeholder = "name, manufacturer, or id"
	input.Prompt = "/ "
	input.CharLimit = 64

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		notes:       opts.Notes,
		control:     opts.Control,
		theme:       DefaultTheme(),
		filterInput: input,
		now:         time.Now(),
	}
	if opts.Store != nil {
		m.storeCh = opts.Store.Subscribe()
		m.snapshot = opts.Store.Snapshot()
	}
	if opts.Notes != nil {
		m.notesCh = opts.Notes.Subscribe()
		m.notifications = opts.Notes.List()
	}
	if opts.Control != nil {
		m.conn = opts.Control.ConnectionState()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(),
	}
	if m.storeCh != nil {
		cmds = append(cmds, waitChangeCmd(m.storeCh, func() tea.Msg { return storeChangedMsg{} }))
	}
	if m.notesCh != nil {
		cmds = append(cmds, waitChangeCmd(m.notesCh, func() tea.Msg { return notesChangedMsg{} }))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		if m.control != nil {
			m.conn = m.control.ConnectionState()
		}
		return m, tickCmd()

	case storeChangedMsg:
		if m.store != nil {
			m.snapshot = m.store.Snapshot()
		}
		return m, waitChangeCmd(m.storeCh, func() tea.Msg { return storeChangedMsg{} })

	case notesChangedMsg:
		if m.notes != nil {
			m.notifications = m.notes.List()
		}
		return m, waitChangeCmd(m.notesCh, func() tea.Msg { return notesChangedMsg{} })
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading USB monitor dashboard..."
	}
	return m.renderDashboard()
}

// filter assembles the active device filter from the input field and the
// status cycle.
func (m Model) filter() view.Filter {
	return view.Filter{
		Text:   m.filterInput.Value(),
		Status: m.statusFilter,
	}
}

// Messages

type tickMsg time.Time

type storeChangedMsg struct{}

type notesChangedMsg struct{}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitChangeCmd blocks on a subscription channel and converts the wake-up
// into a Bubble Tea message. The channel coalesces, so bursts of model
// mutations cost one redraw.
func waitChangeCmd(ch <-chan struct{}, msg func() tea.Msg) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return msg()
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
