// Package view derives read-only projections from reconciled snapshots:
// connected/disconnected subsets, the last-24-hours activity window, and
// the free-text/status device filter. Everything here is a pure function
// of its inputs; filter state lives with the caller, never in the model.
package view

import (
	"strings"
	"time"

	"github.com/mkolbus/usbwatch/internal/monitor"
)

// RecentWindow is how far back RecentConnections looks.
const RecentWindow = 24 * time.Hour

// Connected returns the subset of devices with status connected.
func Connected(devices []monitor.Device) []monitor.Device {
	return byStatus(devices, monitor.StatusConnected)
}

// Disconnected returns the subset of devices with status disconnected.
func Disconnected(devices []monitor.Device) []monitor.Device {
	return byStatus(devices, monitor.StatusDisconnected)
}

func byStatus(devices []monitor.Device, status monitor.DeviceStatus) []monitor.Device {
	var out []monitor.Device
	for _, d := range devices {
		if d.Status == status {
			out = append(out, d)
		}
	}
	return out
}

// RecentConnections returns the connect events whose timestamp is strictly
// after now minus RecentWindow.
func RecentConnections(history []monitor.HistoryEntry, now time.Time) []monitor.HistoryEntry {
	cutoff := now.Add(-RecentWindow)
	var out []monitor.HistoryEntry
	for _, h := range history {
		if h.EventType == monitor.EventConnect && h.Timestamp.After(cutoff) {
			out = append(out, h)
		}
	}
	return out
}

// Filter selects devices by free text and/or lifecycle status. The zero
// value matches everything.
type Filter struct {
	Text   string
	Status monitor.DeviceStatus // empty means all statuses
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Text) == "" && f.Status == ""
}

// Match reports whether the device passes the filter: a case-insensitive
// substring match on product name or manufacturer, or an exact identifier
// match, intersected with the optional status predicate.
func (f Filter) Match(d monitor.Device) bool {
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	text := strings.TrimSpace(f.Text)
	if text == "" {
		return true
	}
	if d.ID == text {
		return true
	}
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(d.ProductName), needle) ||
		strings.Contains(strings.ToLower(d.Manufacturer), needle)
}

// Apply returns the devices passing the filter, preserving input order.
func Apply(devices []monitor.Device, f Filter) []monitor.Device {
	if f.IsZero() {
		return devices
	}
	var out []monitor.Device
	for _, d := range devices {
		if f.Match(d) {
			out = append(out, d)
		}
	}
	return out
}
