// Package state holds the reconciled model for the usbwatch dashboard: the
// single in-memory source of truth for devices, history, service status,
// and statistics after merging REST snapshots with push-channel deltas.
//
// # Merge semantics
//
// The Store exposes one method per merge operation rather than a generic
// update, because each kind of data has different semantics:
//
//   - ReplaceDevices / ReplaceDevicesAt: bootstrap, full replace. The only
//     way a device leaves the visible set.
//   - UpsertDevice: device:connected. Delete-then-insert by identifier, so
//     the set never holds duplicates and a reconnect supersedes a stale
//     disconnected record.
//   - MarkDisconnected: device:disconnected. In-place patch; unknown
//     identifiers are reported back as unmatched and change nothing.
//   - ReplaceHistory, SetStatus, SetStats: full replace, no field merging.
//
// # Ordering
//
// Device mutations bump a revision counter. A caller that starts a snapshot
// fetch records Revision() first and applies the result with
// ReplaceDevicesAt; if deltas landed in between, the stale snapshot is
// rejected. This makes the bootstrap-versus-delta race deterministic: the
// push channel wins, and the loser is retried.
//
// # Concurrency
//
// One RWMutex guards the model. Mutations are atomic with respect to reads:
// no Snapshot ever observes a partially-applied update. Snapshots are deep
// copies, so neither the UI nor the view projections can mutate reconciled
// state. Subscribe provides a coalescing wake-up signal per accepted
// mutation for consumers that want to re-project without polling.
package state
