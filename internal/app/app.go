package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkolbus/usbwatch/internal/config"
	"github.com/mkolbus/usbwatch/internal/monitor"
	"github.com/mkolbus/usbwatch/internal/notify"
	"github.com/mkolbus/usbwatch/internal/state"
	"github.com/mkolbus/usbwatch/internal/stream"
	"github.com/mkolbus/usbwatch/internal/ui"
)

// Options configure the usbwatch application.
type Options struct {
	ConfigPath string
	ServerURL  string // overrides the configured service URL
	LogPath    string // overrides the configured log file
	LogLevel   string
}

// Run boots the usbwatch dashboard until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.ServerURL != "" {
		cfg.ServerURL = opts.ServerURL
	}
	if opts.LogPath != "" {
		cfg.LogFile = opts.LogPath
	}

	logger, closeLog, err := newLogger(cfg.LogFile, opts.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	client, err := monitor.NewClient(cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("init monitor client: %w", err)
	}

	store := &state.Store{}
	notes := notify.New()
	defer notes.Stop()

	manager := stream.New(stream.Options{
		URL:      client.WebSocketURL(),
		Attempts: cfg.ReconnectAttempts,
		Delay:    cfg.ReconnectDelay,
		Events: &streamEvents{
			store: store,
			notes: notes,
			log:   logger.With().Str("component", "stream").Logger(),
		},
		Logger: logger.With().Str("component", "stream").Logger(),
	})

	loader := NewLoader(client, store, notes, manager,
		logger.With().Str("component", "loader").Logger(), cfg.HistoryLimit)

	// Bootstrap before the UI starts so the first frame has data; a dead
	// service just means an error banner and the reconnect loop.
	if err := loader.LoadAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial load failed")
	}

	manager.Open()
	defer manager.Close()

	loader.StartStatsTicker(ctx, cfg.StatsInterval)

	return ui.Run(ui.Options{
		Context: ctx,
		Store:   store,
		Notes:   notes,
		Control: &uiControl{ctx: ctx, loader: loader, manager: manager, store: store, notes: notes},
	})
}

// uiControl is the narrow write surface the presentation layer gets: it may
// request a rescan, dismiss a notification, or clear the error banner, and
// nothing else.
type uiControl struct {
	ctx     context.Context
	loader  *Loader
	manager *stream.Manager
	store   *state.Store
	notes   *notify.Queue
}

var _ ui.Control = (*uiControl)(nil)

func (c *uiControl) Rescan() {
	go c.loader.Rescan(c.ctx)
}

func (c *uiControl) ConnectionState() stream.State {
	return c.manager.State()
}

func (c *uiControl) DismissNotification(id int64) {
	c.notes.Dismiss(id)
}

func (c *uiControl) DismissError() {
	c.store.ClearError()
}

// newLogger writes zerolog output to the configured file. The TUI owns
// stdout, so file logging is the only sane sink; failures fall back to a
// disabled logger rather than scribbling over the interface.
func newLogger(path, level string) (zerolog.Logger, func(), error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if path == "" {
		return zerolog.Nop(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}, nil
	}

	logger := zerolog.New(file).Level(parseLevel(level)).With().
		Timestamp().Str("service", "usbwatch").Logger()
	return logger, func() { _ = file.Close() }, nil
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
