package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkolbus/usbwatch/internal/monitor"
	"github.com/mkolbus/usbwatch/internal/notify"
	"github.com/mkolbus/usbwatch/internal/state"
	"github.com/mkolbus/usbwatch/internal/stream"
)

const (
	defaultHistoryLimit  = 20
	defaultStatsInterval = 30 * time.Second
)

// refresher is the slice of the stream manager the loader needs: enough to
// route a rescan over the push channel when it is up.
type refresher interface {
	State() stream.State
	RequestRefresh() error
}

// Loader performs the bootstrap and fallback fetches against the monitor
// service and applies the results to the reconciled model. It backs the
// dashboard whenever the push channel is down and always owns the periodic
// statistics refresh.
type Loader struct {
	client       monitor.API
	store        *state.Store
	notes        *notify.Queue
	stream       refresher
	log          zerolog.Logger
	historyLimit int
}

// NewLoader wires a Loader. stream may be nil in tests; rescans then always
// take the fallback path.
func NewLoader(client monitor.API, store *state.Store, notes *notify.Queue, stream refresher, log zerolog.Logger, historyLimit int) *Loader {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Loader{
		client:       client,
		store:        store,
		notes:        notes,
		stream:       stream,
		log:          log,
		historyLimit: historyLimit,
	}
}

// LoadAll performs the four bootstrap fetches and applies whatever
// succeeded. Failed fetches never corrupt state already held: the prior
// model is retained, the error banner is set, and exactly one error
// notification is recorded no matter how many fetches failed.
//
// The device set is applied through the store's revision gate, so a load
// that raced with newer push-channel deltas is discarded rather than
// clobbering fresher state.
func (l *Loader) LoadAll(ctx context.Context) error {
	rev := l.store.Revision()

	var errs []error

	devices, err := l.client.FetchDevices(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("devices: %w", err))
	} else if !l.store.ReplaceDevicesAt(rev, devices) {
		l.log.Debug().Uint64("revision", rev).Msg("device snapshot superseded by newer deltas")
	}

	history, err := l.client.FetchHistory(ctx, l.historyLimit)
	if err != nil {
		errs = append(errs, fmt.Errorf("history: %w", err))
	} else {
		l.store.ReplaceHistory(history)
	}

	status, err := l.client.FetchStatus(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("status: %w", err))
	} else {
		l.store.SetStatus(*status)
	}

	stats, err := l.client.FetchStats(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("stats: %w", err))
	} else {
		l.store.SetStats(*stats)
	}

	if len(errs) > 0 {
		combined := errors.Join(errs...)
		l.log.Error().Err(combined).Msg("bootstrap fetch failed")
		l.store.SetError(fmt.Sprintf("Failed to fetch data: %v", errs[0]))
		l.notes.Push("Failed to fetch data from service", notify.SeverityError)
		return combined
	}

	l.store.ClearError()
	return nil
}

// RefreshStats performs only the statistics fetch. Failures are logged and
// otherwise ignored; the periodic cadence is unaffected and the error
// banner is not touched.
func (l *Loader) RefreshStats(ctx context.Context) {
	stats, err := l.client.FetchStats(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("stats refresh failed")
		return
	}
	l.store.SetStats(*stats)
}

// StartStatsTicker refreshes statistics at a fixed cadence for the lifetime
// of ctx, independent of push-channel connectivity. It returns immediately.
func (l *Loader) StartStatsTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			l.RefreshStats(ctx)
		}
	}()
}

// Rescan asks the service to re-enumerate devices. A "refreshing"
// notification is emitted up front regardless of eventual success. With the
// push channel connected the request rides the channel and the result
// arrives as a devices:refreshed delta; otherwise the fallback request path
// is used and a full load picks up the result synchronously.
func (l *Loader) Rescan(ctx context.Context) {
	l.notes.Push("Refreshing device list...", notify.SeverityInfo)

	if l.stream != nil && l.stream.State() == stream.StateConnected {
		err := l.stream.RequestRefresh()
		if err == nil {
			return
		}
		if !errors.Is(err, stream.ErrNotConnected) {
			l.log.Warn().Err(err).Msg("rescan over push channel failed")
			l.notes.Push("Failed to refresh devices", notify.SeverityError)
			return
		}
		// Channel dropped between the check and the send; fall through.
	}

	if err := l.client.TriggerRescan(ctx); err != nil {
		l.log.Warn().Err(err).Msg("rescan request failed")
		l.notes.Push("Failed to refresh devices", notify.SeverityError)
		return
	}
	if err := l.LoadAll(ctx); err != nil {
		l.log.Warn().Err(err).Msg("reload after rescan failed")
	}
}
