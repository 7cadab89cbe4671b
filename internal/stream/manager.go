package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mkolbus/usbwatch/internal/monitor"
)

// State is the tri-state connectivity signal owned by the Manager.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ErrNotConnected is returned by RequestRefresh when the push channel is
// down; callers fall back to the request path.
var ErrNotConnected = errors.New("push channel not connected")

// Events receives routed push-channel activity. Callbacks fire from a
// single goroutine in arrival order; implementations apply them to the
// reconciled model and the notification feed.
type Events interface {
	// StateChanged reports a connectivity transition. detail carries the
	// close reason for disconnections and is empty otherwise.
	StateChanged(s State, detail string)

	// ConnectFailed reports that the retry budget is exhausted. The manager
	// stays alive; the dashboard continues on fallback polling.
	ConnectFailed(err error)

	// DevicesReplaced delivers a full device set. refreshed distinguishes a
	// devices:refreshed frame (rescan result) from the connect bootstrap.
	DevicesReplaced(devices []monitor.Device, refreshed bool)

	DeviceConnected(device monitor.Device)
	DeviceDisconnected(device monitor.Device)
	HistoryReplaced(entries []monitor.HistoryEntry)
	StatusUpdated(status monitor.Status)

	// ServerError delivers a server-reported error frame. It does not alter
	// connectivity or reconciled state.
	ServerError(message string)
}

const (
	defaultAttempts  = 5
	defaultDelay     = time.Second
	defaultHandshake = 20 * time.Second
	writeTimeout     = 5 * time.Second
)

// Options configure a Manager.
type Options struct {
	// URL is the websocket endpoint, e.g. ws://127.0.0.1:3001/ws.
	URL string

	// Attempts caps dial attempts per Open before ConnectFailed; zero uses
	// the default of 5. The count resets after an established connection.
	Attempts int

	// Delay is the fixed wait between attempts; zero uses 1s.
	Delay time.Duration

	// Handshake bounds the websocket dial; zero uses 20s.
	Handshake time.Duration

	Events Events
	Logger zerolog.Logger
}

// Manager owns the push-channel lifecycle: dialing, the read loop, bounded
// reconnection with a fixed inter-attempt delay, and routing of inbound
// frames to the Events handler. Construct one per dashboard session and
// tear it down with Close; nothing here lives at process scope.
type Manager struct {
	opts Options

	mu     sync.Mutex
	state  State
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}

	// writeMu serializes outbound data frames. The websocket connection
	// supports one concurrent writer, and rescan requests can arrive from
	// multiple goroutines.
	writeMu sync.Mutex
}

// New builds a Manager. It does not connect; call Open.
func New(opts Options) *Manager {
	if opts.Attempts <= 0 {
		opts.Attempts = defaultAttempts
	}
	if opts.Delay <= 0 {
		opts.Delay = defaultDelay
	}
	if opts.Handshake <= 0 {
		opts.Handshake = defaultHandshake
	}
	if opts.Events == nil {
		opts.Events = nopEvents{}
	}
	return &Manager{opts: opts}
}

type nopEvents struct{}

func (nopEvents) StateChanged(State, string)                 {}
func (nopEvents) ConnectFailed(error)                        {}
func (nopEvents) DevicesReplaced([]monitor.Device, bool)     {}
func (nopEvents) DeviceConnected(monitor.Device)             {}
func (nopEvents) DeviceDisconnected(monitor.Device)          {}
func (nopEvents) HistoryReplaced([]monitor.HistoryEntry)     {}
func (nopEvents) StatusUpdated(monitor.Status)               {}
func (nopEvents) ServerError(string)                         {}

// State returns the current connectivity state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Open establishes the push channel and schedules reconnection on failure.
// If a previous session is still open it is fully closed first, so a single
// server-sent event can never be delivered twice through two readers.
func (m *Manager) Open() {
	m.closeSession()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m.mu.Lock()
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	m.setState(StateConnecting, "")
	go m.run(ctx, done)
}

// Close tears the channel down, cancels any pending reconnect wait, and
// detaches routing: no further events are delivered after Close returns.
func (m *Manager) Close() {
	m.closeSession()
	m.setState(StateDisconnected, "closed")
}

// RequestRefresh sends the outbound devices:refresh frame. The rescan
// result arrives asynchronously as a devices:refreshed event.
func (m *Manager) RequestRefresh() error {
	m.mu.Lock()
	conn := m.conn
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !connected || conn == nil {
		return ErrNotConnected
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(monitor.Frame{Event: monitor.EventDevicesRefresh}); err != nil {
		return fmt.Errorf("send refresh request: %w", err)
	}
	return nil
}

// closeSession cancels the active session, closes its socket to unblock the
// reader, and waits for the run goroutine to exit.
func (m *Manager) closeSession() {
	m.mu.Lock()
	cancel := m.cancel
	conn := m.conn
	done := m.done
	m.cancel = nil
	m.conn = nil
	m.done = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := m.dial(ctx)
		if err != nil {
			attempt++
			m.opts.Logger.Warn().Err(err).Int("attempt", attempt).Msg("push channel dial failed")
			if attempt >= m.opts.Attempts {
				m.setState(StateDisconnected, "")
				m.opts.Events.ConnectFailed(err)
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.opts.Delay):
			}
			continue
		}

		m.mu.Lock()
		if ctx.Err() != nil {
			m.mu.Unlock()
			_ = conn.Close()
			return
		}
		m.conn = conn
		m.mu.Unlock()

		attempt = 0
		m.setState(StateConnected, "")
		m.opts.Logger.Info().Str("url", m.opts.URL).Msg("push channel connected")

		reason := m.readLoop(ctx, conn)

		m.mu.Lock()
		if m.conn == conn {
			m.conn = nil
		}
		m.mu.Unlock()
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}

		m.opts.Logger.Warn().Str("reason", reason).Msg("push channel dropped")
		m.setState(StateDisconnected, reason)
		m.setState(StateConnecting, "")
	}
}

func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: m.opts.Handshake}
	conn, resp, err := dialer.DialContext(ctx, m.opts.URL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %s)", m.opts.URL, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", m.opts.URL, err)
	}
	return conn, nil
}

// readLoop applies inbound frames in arrival order until the connection
// fails or the session is cancelled. It returns a human-readable reason.
func (m *Manager) readLoop(ctx context.Context, conn *websocket.Conn) string {
	for {
		var frame monitor.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() != nil {
				return "closed"
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return err.Error()
			}
			return "connection closed"
		}
		if ctx.Err() != nil {
			return "closed"
		}
		m.route(frame)
	}
}

func (m *Manager) route(frame monitor.Frame) {
	ev := m.opts.Events
	switch frame.Event {
	case monitor.EventDevicesInitial, monitor.EventDevicesRefreshed:
		var p monitor.DevicesPayload
		if !m.decode(frame, &p) {
			return
		}
		ev.DevicesReplaced(p.Devices, frame.Event == monitor.EventDevicesRefreshed)

	case monitor.EventDeviceConnected:
		var p monitor.DevicePayload
		if !m.decode(frame, &p) {
			return
		}
		ev.DeviceConnected(p.Device)

	case monitor.EventDeviceDisconnected:
		var p monitor.DevicePayload
		if !m.decode(frame, &p) {
			return
		}
		ev.DeviceDisconnected(p.Device)

	case monitor.EventHistoryInitial:
		var p monitor.HistoryPayload
		if !m.decode(frame, &p) {
			return
		}
		ev.HistoryReplaced(p.History)

	case monitor.EventStatusInitial, monitor.EventStatusUpdate:
		var p monitor.StatusPayload
		if !m.decode(frame, &p) {
			return
		}
		ev.StatusUpdated(p.Status)

	case monitor.EventError:
		var p monitor.ErrorPayload
		if !m.decode(frame, &p) {
			return
		}
		ev.ServerError(p.Message)

	default:
		m.opts.Logger.Debug().Str("event", frame.Event).Msg("ignoring unknown push event")
	}
}

func (m *Manager) decode(frame monitor.Frame, dest any) bool {
	if err := json.Unmarshal(frame.Data, dest); err != nil {
		m.opts.Logger.Warn().Err(err).Str("event", frame.Event).Msg("bad push payload")
		return false
	}
	return true
}

func (m *Manager) setState(s State, detail string) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	m.mu.Unlock()
	m.opts.Events.StateChanged(s, detail)
}
