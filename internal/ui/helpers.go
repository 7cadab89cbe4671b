package ui

import (
	"fmt"
	"time"

	"github.com/mkolbus/usbwatch/internal/monitor"
)

// formatTime renders an absolute timestamp, or a dash when unknown.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// timeAgo renders a relative timestamp for the history list.
func timeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Local().Format("2006-01-02")
	}
}

// connectionDuration renders how long a device has been (or was) attached.
func connectionDuration(connectedAt, disconnectedAt, now time.Time) string {
	if connectedAt.IsZero() {
		return ""
	}
	end := now
	if !disconnectedAt.IsZero() {
		end = disconnectedAt
	}
	d := end.Sub(connectedAt)
	if d < 0 {
		return ""
	}
	seconds := int(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// formatUptime renders service uptime given in seconds.
func formatUptime(seconds float64) string {
	total := int(seconds)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// vidPid renders the vendor/product pair in the usual hex form.
func vidPid(d monitor.Device) string {
	if d.VendorID == 0 && d.ProductID == 0 {
		return "-"
	}
	return fmt.Sprintf("%04x:%04x", d.VendorID, d.ProductID)
}

// methodLabel maps the service's monitoring method to a short display name.
func methodLabel(method string) string {
	switch method {
	case "node-usb-detection":
		return "Native"
	case "usb-polling":
		return "Library polling"
	case "system-polling":
		return "System polling"
	case "":
		return "-"
	default:
		return method
	}
}
