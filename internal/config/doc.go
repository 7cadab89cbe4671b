// Package config loads usbwatch settings from a TOML file, falling back to
// sensible defaults when the file is absent. Values cover the monitor
// service address, the log file location, and the tunables for polling and
// push-channel reconnection.
package config
