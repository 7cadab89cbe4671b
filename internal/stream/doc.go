// Package stream owns the push-channel lifecycle for the usbwatch
// dashboard: the websocket connection to the USB monitor service, its
// reconnection policy, and the routing of inbound delta frames to a typed
// Events handler.
//
// # Lifecycle
//
// A Manager is constructed per dashboard session and driven with Open and
// Close. Open closes any previous session before starting a new one, so
// reopening never leaves a second reader attached. Close cancels the
// session context, interrupts any pending reconnect wait, and waits for
// the read goroutine to exit; after Close returns no further events fire.
//
// # Reconnection
//
// Dial failures retry a bounded number of times with a fixed delay (default
// five attempts, one second apart). The budget resets after an established
// connection. Exhausting it emits ConnectFailed and leaves the manager in
// the disconnected state; the dashboard remains usable through the
// snapshot-loader fallback, so a dead service never kills the process.
//
// # Ordering
//
// One goroutine reads and routes frames, so Events callbacks observe
// deltas exactly in arrival order. The connectivity signal is tri-state
// (connecting, connected, disconnected) and only this package sets it.
package stream
