package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkolbus/usbwatch/internal/monitor"
	"github.com/mkolbus/usbwatch/internal/notify"
	"github.com/mkolbus/usbwatch/internal/stream"
	"github.com/mkolbus/usbwatch/internal/view"
)

const (
	maxHistoryRows = 10
	maxDeviceRows  = 12
)

func (m Model) renderDashboard() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(m.renderHeader(styles))
	b.WriteString("\n")

	if banner := m.renderErrorBanner(styles); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	if notes := m.renderNotifications(styles); notes != "" {
		b.WriteString(notes)
		b.WriteString("\n")
	}

	b.WriteString(m.renderOverview(styles))
	b.WriteString("\n")
	b.WriteString(m.renderDevices(styles))
	b.WriteString("\n")
	b.WriteString(m.renderHistory(styles))
	b.WriteString("\n")
	b.WriteString(m.renderFooter(styles))

	return b.String()
}

func (m Model) renderHeader(styles Styles) string {
	title := styles.AccentText.Render("usbwatch")
	sub := styles.MutedText.Render("real-time USB device monitor")

	var conn string
	switch m.conn {
	case stream.StateConnected:
		conn = styles.SuccessText.Render("● connected")
	case stream.StateConnecting:
		conn = styles.WarningText.Render("◌ connecting")
	default:
		conn = styles.DangerText.Render("○ disconnected (polling)")
	}

	left := title + "  " + sub
	right := conn
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderErrorBanner(styles Styles) string {
	if m.snapshot.LastError == "" {
		return ""
	}
	return styles.DangerText.Render("✗ "+m.snapshot.LastError) +
		styles.MutedText.Render("  (d to dismiss)")
}

func (m Model) renderNotifications(styles Styles) string {
	if len(m.notifications) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.notifications))
	for _, n := range m.notifications {
		lines = append(lines, severityStyle(styles, n.Severity).Render(severityMark(n.Severity)+" "+n.Message)+
			styles.MutedText.Render("  "+n.CreatedAt.Local().Format("15:04:05")))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderOverview(styles Styles) string {
	connected := view.Connected(m.snapshot.Devices)
	disconnected := view.Disconnected(m.snapshot.Devices)
	recent := view.RecentConnections(m.snapshot.History, m.now)

	parts := []string{
		styles.SuccessText.Render(fmt.Sprintf("%d connected", len(connected))),
		styles.DangerText.Render(fmt.Sprintf("%d disconnected", len(disconnected))),
		styles.InfoText.Render(fmt.Sprintf("%d connections today", len(recent))),
	}

	if m.snapshot.HasStatus {
		s := m.snapshot.Status
		monitoring := "inactive"
		style := styles.WarningText
		if s.IsMonitoring {
			monitoring = "active"
			style = styles.SuccessText
		}
		parts = append(parts,
			styles.Text.Render("detection: ")+styles.AccentText.Render(methodLabel(s.MonitoringMethod)),
			styles.Text.Render("monitoring: ")+style.Render(monitoring),
			styles.MutedText.Render("uptime "+formatUptime(s.Uptime)),
		)
	}
	if m.snapshot.HasStats {
		parts = append(parts, styles.MutedText.Render(fmt.Sprintf(
			"%d connects / %d disconnects all-time",
			m.snapshot.Stats.Events.Connects, m.snapshot.Stats.Events.Disconnects)))
	}

	line := strings.Join(parts, styles.MutedText.Render("  │  "))
	out := styles.Section.Width(max(m.width-2, 20)).Render(line)

	if m.snapshot.HasStats && len(m.snapshot.Stats.Manufacturers) > 0 {
		out += "\n" + styles.MutedText.Render("top manufacturers: "+topManufacturers(m.snapshot.Stats.Manufacturers, 3))
	}
	return out
}

func (m Model) renderDevices(styles Styles) string {
	filter := m.filter()
	devices := view.Apply(m.snapshot.Devices, filter)

	title := styles.SectionTitle.Render(fmt.Sprintf("Devices (%d/%d)", len(devices), len(m.snapshot.Devices)))
	filterLine := m.renderFilterLine(styles)

	if len(m.snapshot.Devices) == 0 {
		return title + "\n" + filterLine + "\n" +
			styles.MutedText.Render("  no USB devices detected, press r to scan")
	}
	if len(devices) == 0 {
		return title + "\n" + filterLine + "\n" +
			styles.MutedText.Render("  no devices match the filter")
	}

	rows := make([]string, 0, len(devices))
	for i, d := range devices {
		if i == maxDeviceRows {
			rows = append(rows, styles.MutedText.Render(fmt.Sprintf("  … %d more", len(devices)-i)))
			break
		}
		rows = append(rows, m.renderDeviceRow(styles, d))
	}
	return title + "\n" + filterLine + "\n" + strings.Join(rows, "\n")
}

func (m Model) renderDeviceRow(styles Styles, d monitor.Device) string {
	var status string
	if d.Status == monitor.StatusConnected {
		status = styles.SuccessText.Render("●")
	} else {
		status = styles.DangerText.Render("○")
	}

	name := d.ProductName
	if name == "" {
		name = "Unknown device"
	}

	cols := []string{
		"  " + status,
		styles.Text.Render(padRight(name, 28)),
		styles.MutedText.Render(padRight(d.Manufacturer, 20)),
		styles.InfoText.Render(vidPid(d)),
	}
	if d.SerialNumber != "" {
		cols = append(cols, styles.MutedText.Render("sn:"+d.SerialNumber))
	}
	if dur := connectionDuration(d.ConnectedAt, d.DisconnectedAt, m.now); dur != "" {
		cols = append(cols, styles.MutedText.Render(dur))
	}
	return strings.Join(cols, " ")
}

func (m Model) renderFilterLine(styles Styles) string {
	statusLabel := "all"
	switch m.statusFilter {
	case monitor.StatusConnected:
		statusLabel = "connected"
	case monitor.StatusDisconnected:
		statusLabel = "disconnected"
	}

	var input string
	if m.filterFocused || m.filterInput.Value() != "" {
		input = m.filterInput.View()
	} else {
		input = styles.MutedText.Render("/ to filter")
	}
	return "  " + input + styles.MutedText.Render("   status: ") + styles.AccentText.Render(statusLabel)
}

func (m Model) renderHistory(styles Styles) string {
	title := styles.SectionTitle.Render(fmt.Sprintf("Connection history (%d)", len(m.snapshot.History)))
	if len(m.snapshot.History) == 0 {
		return title + "\n" + styles.MutedText.Render("  device connection events will appear here")
	}

	// Most-recent-first is a display choice; the store keeps source order.
	entries := make([]monitor.HistoryEntry, len(m.snapshot.History))
	copy(entries, m.snapshot.History)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	rows := make([]string, 0, maxHistoryRows)
	for i, h := range entries {
		if i == maxHistoryRows {
			break
		}
		mark := styles.SuccessText.Render("▲")
		label := "connected"
		if h.EventType == monitor.EventDisconnect {
			mark = styles.DangerText.Render("▼")
			label = "disconnected"
		}
		name := h.Device.ProductName
		if name == "" {
			name = "Unknown device"
		}
		rows = append(rows, fmt.Sprintf("  %s %s %s %s",
			mark,
			styles.Text.Render(padRight(name, 28)),
			styles.MutedText.Render(padRight(label, 12)),
			styles.MutedText.Render(timeAgo(h.Timestamp, m.now)),
		))
	}
	return title + "\n" + strings.Join(rows, "\n")
}

func (m Model) renderFooter(styles Styles) string {
	return styles.MutedText.Render("  r rescan  / filter  s status  x dismiss note  d dismiss error  q quit")
}

func severityStyle(styles Styles, s notify.Severity) lipgloss.Style {
	switch s {
	case notify.SeveritySuccess:
		return styles.SuccessText
	case notify.SeverityError:
		return styles.DangerText
	case notify.SeverityWarning:
		return styles.WarningText
	default:
		return styles.InfoText
	}
}

func severityMark(s notify.Severity) string {
	switch s {
	case notify.SeveritySuccess:
		return "✓"
	case notify.SeverityError:
		return "✗"
	case notify.SeverityWarning:
		return "!"
	default:
		return "·"
	}
}

// topManufacturers renders the n most frequent manufacturers.
func topManufacturers(counts map[string]int, n int) string {
	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for name, count := range counts {
		pairs = append(pairs, pair{name, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s (%d)", p.name, p.count))
	}
	return strings.Join(parts, ", ")
}

// padRight pads or truncates by runes so multibyte names keep the columns
// aligned and never emit a split rune.
func padRight(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
