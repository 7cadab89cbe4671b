package monitor

import "encoding/json"

// Push-channel event names. Inbound unless noted.
const (
	EventDevicesInitial     = "devices:initial"
	EventDeviceConnected    = "device:connected"
	EventDeviceDisconnected = "device:disconnected"
	EventDevicesRefreshed   = "devices:refreshed"
	EventHistoryInitial     = "history:initial"
	EventStatusInitial      = "status:initial"
	EventStatusUpdate       = "status:update"
	EventError              = "error"

	// EventDevicesRefresh is the outbound rescan request.
	EventDevicesRefresh = "devices:refresh"
)

// Frame is the envelope for every push-channel message. Data is decoded
// lazily so routing can happen before the payload shape is known.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// DevicesPayload carries a full device set (devices:initial, devices:refreshed).
type DevicesPayload struct {
	Devices []Device `json:"devices"`
}

// DevicePayload carries a single device (device:connected, device:disconnected).
type DevicePayload struct {
	Device Device `json:"device"`
}

// HistoryPayload carries the history bootstrap (history:initial).
type HistoryPayload struct {
	History []HistoryEntry `json:"history"`
}

// StatusPayload carries a status replacement (status:initial, status:update).
type StatusPayload struct {
	Status Status `json:"status"`
}

// ErrorPayload carries a server-reported error message.
type ErrorPayload struct {
	Message string `json:"message"`
}
