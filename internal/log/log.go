// Package log wires the process-wide structured logger: a syslog sink,
// optionally mirrored to the console in foreground mode, optionally
// duplicated to a rotated file.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"log/syslog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init builds the default slog.Logger from the configured level and
// foreground flag. In daemon mode it writes to syslog only; in foreground
// mode the console is additionally mirrored.
// A non-empty file path adds a size-rotated log file.
func Init(levelStr, file string, foreground bool) error {
	level, err := parseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	var writers []io.Writer
	sw, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, "wifibeat")
	if err != nil {
		// Syslog is unavailable in this environment (containers without a
		// syslog daemon); fall back to stderr so the process still logs.
		writers = append(writers, os.Stderr)
	} else {
		writers = append(writers, sw)
	}
	if file != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	if foreground {
		writers = append(writers, os.Stdout)
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

// parseLevel accepts the configuration's level vocabulary, including the
// syslog-derived aliases (notice, alert, critical, warning) beyond slog's
// own four levels. The aliases collapse onto slog's nearest level since
// slog has no native notion of "notice"/"alert"/"critical".
func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "notice":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error", "critical", "alert":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level: %s", level)
	}
}
