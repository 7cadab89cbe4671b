package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkolbus/usbwatch/internal/monitor"
)

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the filter input is focused it swallows everything except the
	// keys that leave it.
	if m.filterFocused {
		switch msg.String() {
		case "esc":
			m.filterFocused = false
			m.filterInput.Blur()
			m.filterInput.SetValue("")
			return m, nil
		case "enter":
			m.filterFocused = false
			m.filterInput.Blur()
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		if m.control != nil {
			m.control.Rescan()
		}
		return m, nil

	case "/":
		m.filterFocused = true
		return m, m.filterInput.Focus()

	case "s":
		m.statusFilter = nextStatusFilter(m.statusFilter)
		return m, nil

	case "esc":
		m.filterInput.SetValue("")
		m.statusFilter = ""
		return m, nil

	case "d":
		if m.control != nil {
			m.control.DismissError()
		}
		return m, nil

	case "x":
		if m.control != nil && len(m.notifications) > 0 {
			m.control.DismissNotification(m.notifications[0].ID)
		}
		return m, nil
	}

	return m, nil
}

// nextStatusFilter cycles all → connected → disconnected → all.
func nextStatusFilter(current monitor.DeviceStatus) monitor.DeviceStatus {
	switch current {
	case "":
		return monitor.StatusConnected
	case monitor.StatusConnected:
		return monitor.StatusDisconnected
	default:
		return ""
	}
}
