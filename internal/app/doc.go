// Package app is the composition root for usbwatch. It loads configuration,
// builds the monitor client, the reconciled-state store, the notification
// queue, the push-channel manager and the snapshot loader, performs the
// initial bootstrap, and hands read-only access plus a narrow control
// surface to the TUI.
//
// # Data flow
//
//	snapshot loader ──► state.Store ◄── stream events (push channel)
//	                        │
//	                        ▼
//	            view projections → internal/ui
//
// Both the loader and the stream adapter emit into the notification queue.
// The loader is also the fallback path: when the push channel is down the
// dashboard stays alive on one-shot fetches, and the periodic statistics
// refresh runs on its own 30 second cadence regardless of connectivity.
//
// # Error policy
//
// Transport and fetch errors are converted at this boundary into a
// notification plus, where relevant, the persisted error banner; nothing
// propagates into the reconciliation core, and only configuration or
// client construction failures abort Run.
package app
