package monitor

import "time"

// DeviceStatus is the lifecycle state of a device as reported by the service.
type DeviceStatus string

const (
	StatusConnected    DeviceStatus = "connected"
	StatusDisconnected DeviceStatus = "disconnected"
)

// Device mirrors a device record from the USB monitor service. The ID is
// assigned by the service and is the only identity the dashboard relies on.
type Device struct {
	ID             string       `json:"id"`
	ProductName    string       `json:"productName"`
	Manufacturer   string       `json:"manufacturer"`
	VendorID       int          `json:"vendorId"`
	ProductID      int          `json:"productId"`
	SerialNumber   string       `json:"serialNumber,omitempty"`
	LocationID     int          `json:"locationId,omitempty"`
	Status         DeviceStatus `json:"status"`
	ConnectedAt    time.Time    `json:"connectedAt,omitzero"`
	DisconnectedAt time.Time    `json:"disconnectedAt,omitzero"`
	LastSeen       time.Time    `json:"lastSeen,omitzero"`
}

// EventType classifies a history entry.
type EventType string

const (
	EventConnect    EventType = "connect"
	EventDisconnect EventType = "disconnect"
)

// HistoryEntry is an immutable record of a past connect or disconnect
// transition. The device attributes are a denormalized snapshot taken at
// event time, not a reference into the live device set.
type HistoryEntry struct {
	ID        string    `json:"id"`
	EventType EventType `json:"eventType"`
	Device    Device    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
}

// Status describes the monitor service itself. It is replaced wholesale on
// every update; there are no per-field merge semantics.
type Status struct {
	MonitoringMethod   string          `json:"monitoringMethod"`
	IsMonitoring       bool            `json:"isMonitoring"`
	Uptime             float64         `json:"uptime"`
	DeviceCount        int             `json:"deviceCount"`
	HistoryCount       int             `json:"historyCount"`
	LibrariesAvailable map[string]bool `json:"librariesAvailable,omitempty"`
}

// EventCounts aggregates lifetime connect/disconnect totals.
type EventCounts struct {
	Connects    int `json:"connects"`
	Disconnects int `json:"disconnects"`
}

// Stats is the derived aggregate served by /api/stats, refreshed on its own
// cadence independent of the push channel.
type Stats struct {
	Events        EventCounts    `json:"events"`
	Manufacturers map[string]int `json:"manufacturers,omitempty"`
}
