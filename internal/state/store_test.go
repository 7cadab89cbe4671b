package state

import (
	"testing"
	"time"

	"github.com/mkolbus/usbwatch/internal/monitor"
)

func device(id string, status monitor.DeviceStatus) monitor.Device {
	return monitor.Device{
		ID:          id,
		ProductName: "Device " + id,
		Status:      status,
		ConnectedAt: time.Now().Add(-time.Minute),
		LastSeen:    time.Now(),
	}
}

func ids(devices []monitor.Device) []string {
	out := make([]string, 0, len(devices))
	for _, d := range devices {
		out = append(out, d.ID)
	}
	return out
}

func TestStore_UpsertNeverDuplicates(t *testing.T) {
	var s Store
	s.ReplaceDevices([]monitor.Device{device("A", monitor.StatusConnected)})

	// Arbitrary connect/disconnect churn on the same identifiers.
	s.UpsertDevice(device("A", monitor.StatusConnected))
	s.UpsertDevice(device("B", monitor.StatusConnected))
	s.MarkDisconnected("A", time.Now())
	s.UpsertDevice(device("A", monitor.StatusDisconnected))
	s.UpsertDevice(device("B", monitor.StatusConnected))
	s.MarkDisconnected("B", time.Now())
	s.UpsertDevice(device("B", monitor.StatusConnected))

	seen := map[string]int{}
	for _, d := range s.Snapshot().Devices {
		seen[d.ID]++
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("device %q appears %d times, want exactly 1", id, count)
		}
	}
	if len(seen) != 2 {
		t.Fatalf("device set = %v, want exactly A and B", seen)
	}
}

func TestStore_ConnectAlwaysWinsOverStaleDisconnect(t *testing.T) {
	var s Store
	s.ReplaceDevices([]monitor.Device{device("A", monitor.StatusConnected)})
	if !s.MarkDisconnected("A", time.Now()) {
		t.Fatalf("MarkDisconnected(A) = false, want true")
	}

	// Reconnect: the incoming record claims disconnected, but a connect
	// event forces connected status.
	d := device("A", monitor.StatusDisconnected)
	d.DisconnectedAt = time.Now()
	s.UpsertDevice(d)

	devices := s.Snapshot().Devices
	if len(devices) != 1 {
		t.Fatalf("device count = %d, want 1", len(devices))
	}
	if devices[0].Status != monitor.StatusConnected {
		t.Fatalf("status = %q, want connected", devices[0].Status)
	}
	if !devices[0].DisconnectedAt.IsZero() {
		t.Fatalf("DisconnectedAt = %v, want zero after reconnect", devices[0].DisconnectedAt)
	}
}

func TestStore_DisconnectUnknownIsNoOp(t *testing.T) {
	var s Store
	s.ReplaceDevices([]monitor.Device{device("A", monitor.StatusConnected)})
	before := s.Snapshot()
	rev := s.Revision()

	if s.MarkDisconnected("ghost", time.Now()) {
		t.Fatalf("MarkDisconnected(ghost) = true, want false")
	}

	after := s.Snapshot()
	if s.Revision() != rev {
		t.Fatalf("revision changed on no-op: %d -> %d", rev, s.Revision())
	}
	if len(after.Devices) != len(before.Devices) || after.Devices[0] != before.Devices[0] {
		t.Fatalf("model changed on no-op: %#v -> %#v", before.Devices, after.Devices)
	}
}

func TestStore_ReplaceDevicesRemovesAbsent(t *testing.T) {
	var s Store
	s.ReplaceDevices([]monitor.Device{
		device("A", monitor.StatusConnected),
		device("B", monitor.StatusConnected),
	})

	s.ReplaceDevices([]monitor.Device{device("C", monitor.StatusConnected)})

	got := ids(s.Snapshot().Devices)
	if len(got) != 1 || got[0] != "C" {
		t.Fatalf("device ids = %v, want [C]", got)
	}
}

func TestStore_ReplaceDevicesAtRejectsStaleSnapshot(t *testing.T) {
	var s Store
	rev := s.Revision()

	// A delta lands while the snapshot fetch is in flight.
	s.UpsertDevice(device("B", monitor.StatusConnected))

	if s.ReplaceDevicesAt(rev, []monitor.Device{device("A", monitor.StatusConnected)}) {
		t.Fatalf("ReplaceDevicesAt accepted a stale snapshot")
	}
	got := ids(s.Snapshot().Devices)
	if len(got) != 1 || got[0] != "B" {
		t.Fatalf("device ids = %v, want [B] (delta wins)", got)
	}

	// With no intervening mutation the snapshot applies.
	rev = s.Revision()
	if !s.ReplaceDevicesAt(rev, []monitor.Device{device("A", monitor.StatusConnected)}) {
		t.Fatalf("ReplaceDevicesAt rejected a current snapshot")
	}
	got = ids(s.Snapshot().Devices)
	if len(got) != 1 || got[0] != "A" {
		t.Fatalf("device ids = %v, want [A]", got)
	}
}

func TestStore_BootstrapConnectDisconnectScenario(t *testing.T) {
	var s Store

	// Bootstrap returns A connected.
	s.ReplaceDevices([]monitor.Device{device("A", monitor.StatusConnected)})

	// device:connected for B.
	s.UpsertDevice(device("B", monitor.StatusConnected))

	connected := map[string]bool{}
	for _, d := range s.Snapshot().Devices {
		if d.Status == monitor.StatusConnected {
			connected[d.ID] = true
		}
	}
	if !connected["A"] || !connected["B"] || len(connected) != 2 {
		t.Fatalf("connected set = %v, want {A,B}", connected)
	}

	// device:disconnected for A.
	if !s.MarkDisconnected("A", time.Now()) {
		t.Fatalf("MarkDisconnected(A) = false, want true")
	}

	var gotConnected, gotDisconnected []string
	for _, d := range s.Snapshot().Devices {
		if d.Status == monitor.StatusConnected {
			gotConnected = append(gotConnected, d.ID)
		} else {
			gotDisconnected = append(gotDisconnected, d.ID)
		}
	}
	if len(gotConnected) != 1 || gotConnected[0] != "B" {
		t.Fatalf("connected = %v, want [B]", gotConnected)
	}
	if len(gotDisconnected) != 1 || gotDisconnected[0] != "A" {
		t.Fatalf("disconnected = %v, want [A]", gotDisconnected)
	}
}

func TestStore_SnapshotIsIndependentCopy(t *testing.T) {
	var s Store
	s.ReplaceDevices([]monitor.Device{device("A", monitor.StatusConnected)})
	s.SetStatus(monitor.Status{
		MonitoringMethod:   "node-usb-detection",
		IsMonitoring:       true,
		LibrariesAvailable: map[string]bool{"usb": true},
	})
	s.SetStats(monitor.Stats{Manufacturers: map[string]int{"Logitech": 2}})

	snap := s.Snapshot()
	snap.Devices[0].ID = "mutated"
	snap.Status.LibrariesAvailable["usb"] = false
	snap.Stats.Manufacturers["Logitech"] = 99

	fresh := s.Snapshot()
	if fresh.Devices[0].ID != "A" {
		t.Fatalf("snapshot shares device slice with store")
	}
	if !fresh.Status.LibrariesAvailable["usb"] {
		t.Fatalf("snapshot shares libraries map with store")
	}
	if fresh.Stats.Manufacturers["Logitech"] != 2 {
		t.Fatalf("snapshot shares manufacturers map with store")
	}
}

func TestStore_ErrorBannerKeepsModel(t *testing.T) {
	var s Store
	s.ReplaceDevices([]monitor.Device{device("A", monitor.StatusConnected)})

	s.SetError("fetch failed")
	snap := s.Snapshot()
	if snap.LastError != "fetch failed" {
		t.Fatalf("LastError = %q, want %q", snap.LastError, "fetch failed")
	}
	if len(snap.Devices) != 1 {
		t.Fatalf("device set changed when error recorded")
	}

	s.ClearError()
	if got := s.Snapshot().LastError; got != "" {
		t.Fatalf("LastError after clear = %q, want empty", got)
	}
}

func TestStore_SubscribeSignalsOnMutation(t *testing.T) {
	var s Store
	ch := s.Subscribe()

	s.UpsertDevice(device("A", monitor.StatusConnected))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatalf("no signal after mutation")
	}

	// A rejected no-op wakes nobody.
	s.MarkDisconnected("ghost", time.Now())
	select {
	case <-ch:
		t.Fatalf("signal delivered for a no-op mutation")
	default:
	}
}
