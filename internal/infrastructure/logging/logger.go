package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/micaww/light-vst/internal/infrastructure/config"
)

// serviceName tags every log entry so lightvst lines are filterable
// when the daemon shares an output stream with other services.
const serviceName = "lightvst"

// Logger wraps slog.Logger for light-vst.
//
// Every entry carries the service name and build version as default
// fields. All methods are safe for concurrent use; the domain packages
// consume it through their local Logger interfaces, so a *Logger can be
// handed to any of them directly.
type Logger struct {
	*slog.Logger
}

// New creates a Logger from the logging section of config.yaml.
//
// Format selects the handler: "text" for human-readable development
// output, anything else gets JSON. Output selects the stream ("stderr"
// or stdout). Level filters entries below the configured severity.
func New(cfg config.LoggingConfig, version string) *Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", serviceName),
		slog.String("version", version),
	})

	return &Logger{Logger: slog.New(handler)}
}

// parseLevel maps a config level string to slog.Level.
// Unrecognised or empty values default to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a child Logger carrying additional default attributes.
//
//	tuyaLog := logger.With("component", "tuya")
//	tuyaLog.Info("connected") // includes component=tuya
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default returns a bootstrap logger for use before the configuration
// is loaded: JSON to stdout at info level, version "dev".
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
