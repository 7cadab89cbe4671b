package ui

import (
	"testing"
	"time"

	"github.com/mkolbus/usbwatch/internal/monitor"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero time", time.Time{}, "-"},
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3h ago"},
		{"days ago", now.Add(-2 * 24 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timeAgo(tt.t, now); got != tt.want {
				t.Fatalf("timeAgo = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnectionDuration(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		connectedAt    time.Time
		disconnectedAt time.Time
		want           string
	}{
		{"unknown start", time.Time{}, time.Time{}, ""},
		{"still attached seconds", now.Add(-42 * time.Second), time.Time{}, "42s"},
		{"still attached minutes", now.Add(-90 * time.Second), time.Time{}, "1m 30s"},
		{"still attached hours", now.Add(-150 * time.Minute), time.Time{}, "2h 30m"},
		{"ended session", now.Add(-time.Hour), now.Add(-55 * time.Minute), "5m 0s"},
		{"clock skew", now.Add(time.Minute), time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connectionDuration(tt.connectedAt, tt.disconnectedAt, now); got != tt.want {
				t.Fatalf("connectionDuration = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"under a minute", 42, "0m"},
		{"minutes", 300, "5m"},
		{"hours", 3725, "1h 2m"},
		{"days", 90061, "1d 1h 1m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatUptime(tt.seconds); got != tt.want {
				t.Fatalf("formatUptime(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestVidPid(t *testing.T) {
	if got := vidPid(monitor.Device{VendorID: 0x046d, ProductID: 0xc52b}); got != "046d:c52b" {
		t.Fatalf("vidPid = %q, want %q", got, "046d:c52b")
	}
	if got := vidPid(monitor.Device{}); got != "-" {
		t.Fatalf("vidPid(zero) = %q, want %q", got, "-")
	}
}

func TestMethodLabel(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"node-usb-detection", "Native"},
		{"usb-polling", "Library polling"},
		{"system-polling", "System polling"},
		{"", "-"},
		{"something-new", "something-new"},
	}
	for _, tt := range tests {
		if got := methodLabel(tt.method); got != tt.want {
			t.Fatalf("methodLabel(%q) = %q, want %q", tt.method, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		width int
		want  string
	}{
		{"pads short ascii", "Hub", 5, "Hub  "},
		{"truncates long ascii", "Logitech Mouse", 8, "Logitech"},
		{"pads by rune count", "Pöll", 6, "Pöll  "},
		{"truncates on a rune boundary", "Gehäusehub", 4, "Gehä"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := padRight(tt.s, tt.width)
			if got != tt.want {
				t.Fatalf("padRight(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
			}
			for _, r := range got {
				if r == '�' {
					t.Fatalf("padRight(%q, %d) produced invalid UTF-8: %q", tt.s, tt.width, got)
				}
			}
		})
	}
}

func TestNextStatusFilterCycles(t *testing.T) {
	var f monitor.DeviceStatus
	f = nextStatusFilter(f)
	if f != monitor.StatusConnected {
		t.Fatalf("first step = %q, want connected", f)
	}
	f = nextStatusFilter(f)
	if f != monitor.StatusDisconnected {
		t.Fatalf("second step = %q, want disconnected", f)
	}
	f = nextStatusFilter(f)
	if f != "" {
		t.Fatalf("third step = %q, want empty", f)
	}
}
