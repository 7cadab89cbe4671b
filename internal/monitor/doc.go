// Package monitor defines the wire surface of the USB monitor service: the
// transport types shared by the REST bootstrap path and the websocket push
// channel, plus the HTTP client for the bootstrap endpoints.
//
// # REST endpoints
//
// The Client covers the five request/response operations:
//
//	GET  /api/devices          full device set
//	GET  /api/history?limit=N  recent connection history
//	GET  /api/status           service status record
//	GET  /api/stats            aggregate statistics
//	POST /api/devices/refresh  rescan request (fallback path, ack only)
//
// Responses arrive in a {success, data} envelope; the client unwraps data
// and surfaces HTTP failures as errors without retrying. Retry and fallback
// policy belongs to the callers (internal/app, internal/stream).
//
// # Push-channel frames
//
// Every websocket message is a Frame{event, data}. The payload structs in
// frames.go describe the data shape for each event name. Decoding happens
// in two steps so the stream manager can route on the event name before
// committing to a payload type.
//
// This package performs no state merging. The reconciliation semantics for
// these types live in internal/state.
package monitor
