package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mkolbus/usbwatch/internal/monitor"
	"github.com/mkolbus/usbwatch/internal/notify"
	"github.com/mkolbus/usbwatch/internal/state"
	"github.com/mkolbus/usbwatch/internal/stream"
)

// streamEvents applies push-channel activity to the reconciled model and
// the notification feed. Callbacks arrive from the stream manager's read
// goroutine in arrival order; the store makes each application atomic.
type streamEvents struct {
	store *state.Store
	notes *notify.Queue
	log   zerolog.Logger
}

var _ stream.Events = (*streamEvents)(nil)

func (e *streamEvents) StateChanged(s stream.State, detail string) {
	e.log.Info().Stringer("state", s).Str("detail", detail).Msg("connection state changed")
	switch s {
	case stream.StateConnected:
		e.store.ClearError()
		e.notes.Push("Connected to USB monitor service", notify.SeveritySuccess)
	case stream.StateDisconnected:
		if detail != "" && detail != "closed" {
			e.notes.Push(fmt.Sprintf("Disconnected: %s", detail), notify.SeverityError)
		}
	}
}

func (e *streamEvents) ConnectFailed(err error) {
	e.log.Error().Err(err).Msg("push channel connect failed")
	e.store.SetError(fmt.Sprintf("Failed to connect to service: %v", err))
	e.notes.Push("Failed to connect to service", notify.SeverityError)
}

func (e *streamEvents) DevicesReplaced(devices []monitor.Device, refreshed bool) {
	e.store.ReplaceDevices(devices)
	if refreshed {
		e.notes.Push("Device list refreshed", notify.SeverityInfo)
	}
}

func (e *streamEvents) DeviceConnected(device monitor.Device) {
	e.store.UpsertDevice(device)
	e.notes.Push(fmt.Sprintf("Device connected: %s", deviceLabel(device)), notify.SeveritySuccess)
}

func (e *streamEvents) DeviceDisconnected(device monitor.Device) {
	if !e.store.MarkDisconnected(device.ID, device.DisconnectedAt) {
		// The service can report a disconnect for a device this client never
		// saw (e.g. it attached and detached while we were offline). Policy:
		// log it, leave the model alone.
		e.log.Debug().Str("id", device.ID).Msg("disconnect for unknown device ignored")
	}
	e.notes.Push(fmt.Sprintf("Device disconnected: %s", deviceLabel(device)), notify.SeverityWarning)
}

func (e *streamEvents) HistoryReplaced(entries []monitor.HistoryEntry) {
	e.store.ReplaceHistory(entries)
}

func (e *streamEvents) StatusUpdated(status monitor.Status) {
	e.store.SetStatus(status)
}

func (e *streamEvents) ServerError(message string) {
	e.log.Warn().Str("message", message).Msg("server reported error")
	e.store.SetError(message)
	e.notes.Push(fmt.Sprintf("Error: %s", message), notify.SeverityError)
}

func deviceLabel(d monitor.Device) string {
	if d.ProductName != "" {
		return d.ProductName
	}
	return d.ID
}
