package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkolbus/usbwatch/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	serverURL := flag.String("server", "", "override monitor service URL (optional)")
	logPath := flag.String("log", "", "override log file path (optional)")
	logLevel := flag.String("log-level", "", "log level: trace, debug, info, warn, error")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		ServerURL:  *serverURL,
		LogPath:    *logPath,
		LogLevel:   *logLevel,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "usbwatch: %v\n", err)
		return 1
	}
	return 0
}
