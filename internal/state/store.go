package state

import (
	"sync"
	"time"

	"github.com/mkolbus/usbwatch/internal/monitor"
)

// Snapshot is a read-only copy of the reconciled model at a point in time.
type Snapshot struct {
	Devices     []monitor.Device
	History     []monitor.HistoryEntry
	Status      monitor.Status
	HasStatus   bool
	Stats       monitor.Stats
	HasStats    bool
	LastError   string // persisted error banner text; empty when clear
	Revision    uint64
	LastUpdated time.Time
}

// Store owns the reconciled device/history/status model. All mutation goes
// through its methods; readers only ever see defensively-copied snapshots.
type Store struct {
	mu          sync.RWMutex
	devices     []monitor.Device
	history     []monitor.HistoryEntry
	status      *monitor.Status
	stats       *monitor.Stats
	lastError   string
	revision    uint64
	lastUpdated time.Time
	subs        []chan struct{}
}

// Revision returns the device-set revision. It increases on every accepted
// device mutation and gates stale snapshot application (ReplaceDevicesAt).
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// ReplaceDevices installs a full device set. This is the only operation that
// removes devices from the visible set.
func (s *Store) ReplaceDevices(devices []monitor.Device) {
	s.mu.Lock()
	s.devices = cloneDevices(devices)
	s.bumpDevicesLocked()
	s.mu.Unlock()
	s.notify()
}

// ReplaceDevicesAt installs a full device set only if no device mutation has
// been accepted since rev was observed. It reports whether the replacement
// was applied. A snapshot fetch that raced with newer push-channel deltas
// loses and should be retried rather than clobbering fresher state.
func (s *Store) ReplaceDevicesAt(rev uint64, devices []monitor.Device) bool {
	s.mu.Lock()
	if s.revision != rev {
		s.mu.Unlock()
		return false
	}
	s.devices = cloneDevices(devices)
	s.bumpDevicesLocked()
	s.mu.Unlock()
	s.notify()
	return true
}

// UpsertDevice applies a device:connected delta: any existing record with
// the same identifier is removed and the new record is appended with status
// connected. A reconnect therefore always wins over a stale disconnected
// record, and the set never holds two records for one identifier.
func (s *Store) UpsertDevice(device monitor.Device) {
	device.Status = monitor.StatusConnected
	device.DisconnectedAt = time.Time{}

	s.mu.Lock()
	kept := make([]monitor.Device, 0, len(s.devices)+1)
	for _, d := range s.devices {
		if d.ID != device.ID {
			kept = append(kept, d)
		}
	}
	s.devices = append(kept, device)
	s.bumpDevicesLocked()
	s.mu.Unlock()
	s.notify()
}

// MarkDisconnected applies a device:disconnected delta as an in-place field
// update on the matching identifier. It reports whether a record matched;
// an unknown identifier leaves the model untouched (the event cannot
// resurrect a device the dashboard never saw).
func (s *Store) MarkDisconnected(id string, at time.Time) bool {
	s.mu.Lock()
	for i := range s.devices {
		if s.devices[i].ID != id {
			continue
		}
		s.devices[i].Status = monitor.StatusDisconnected
		s.devices[i].DisconnectedAt = at
		if at.After(s.devices[i].LastSeen) {
			s.devices[i].LastSeen = at
		}
		s.bumpDevicesLocked()
		s.mu.Unlock()
		s.notify()
		return true
	}
	s.mu.Unlock()
	return false
}

// ReplaceHistory installs the history bootstrap. Insertion order from the
// source is preserved; ordering for display is a presentation concern.
func (s *Store) ReplaceHistory(entries []monitor.HistoryEntry) {
	s.mu.Lock()
	s.history = cloneHistory(entries)
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
}

// SetStatus replaces the service status record wholesale.
func (s *Store) SetStatus(status monitor.Status) {
	copied := status
	copied.LibrariesAvailable = cloneBoolMap(status.LibrariesAvailable)
	s.mu.Lock()
	s.status = &copied
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
}

// SetStats replaces the aggregate statistics wholesale.
func (s *Store) SetStats(stats monitor.Stats) {
	copied := stats
	copied.Manufacturers = cloneIntMap(stats.Manufacturers)
	s.mu.Lock()
	s.stats = &copied
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
}

// SetError records the persisted error banner for the most recent fetch or
// transport failure. The rest of the model is left as-is.
func (s *Store) SetError(message string) {
	s.mu.Lock()
	s.lastError = message
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
}

// ClearError dismisses the error banner. Clearing an already-clear banner
// is a no-op and wakes no subscribers.
func (s *Store) ClearError() {
	s.mu.Lock()
	if s.lastError == "" {
		s.mu.Unlock()
		return
	}
	s.lastError = ""
	s.touchLocked()
	s.mu.Unlock()
	s.notify()
}

// Snapshot returns a copy of the current model. The copy is independent of
// the store; callers may not mutate reconciled state through it.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Devices:     cloneDevices(s.devices),
		History:     cloneHistory(s.history),
		LastError:   s.lastError,
		Revision:    s.revision,
		LastUpdated: s.lastUpdated,
	}
	if s.status != nil {
		snap.Status = *s.status
		snap.Status.LibrariesAvailable = cloneBoolMap(s.status.LibrariesAvailable)
		snap.HasStatus = true
	}
	if s.stats != nil {
		snap.Stats = *s.stats
		snap.Stats.Manufacturers = cloneIntMap(s.stats.Manufacturers)
		snap.HasStats = true
	}
	return snap
}

// Subscribe returns a channel that receives a coalescing signal after every
// accepted mutation. Consumers re-read Snapshot when woken; a slow consumer
// sees at least one signal for any burst of mutations.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Store) bumpDevicesLocked() {
	s.revision++
	s.lastUpdated = time.Now()
}

func (s *Store) touchLocked() {
	s.lastUpdated = time.Now()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func cloneDevices(devices []monitor.Device) []monitor.Device {
	if len(devices) == 0 {
		return nil
	}
	dup := make([]monitor.Device, len(devices))
	copy(dup, devices)
	return dup
}

func cloneHistory(entries []monitor.HistoryEntry) []monitor.HistoryEntry {
	if len(entries) == 0 {
		return nil
	}
	dup := make([]monitor.HistoryEntry, len(entries))
	copy(dup, entries)
	return dup
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	if len(m) == 0 {
		return nil
	}
	dup := make(map[string]bool, len(m))
	for k, v := range m {
		dup[k] = v
	}
	return dup
}

func cloneIntMap(m map[string]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	dup := make(map[string]int, len(m))
	for k, v := range m {
		dup[k] = v
	}
	return dup
}
