// Package logger builds the structured loggers used by the binaries.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// FilePath is where the terminal binary writes its log, relative to the
// working directory. Raw-mode output must not be mixed with log lines.
const FilePath = "logs/airclash.log"

// Logger is an alias used by packages for dependency injection.
type Logger = log.Logger

// New returns a logger writing to w with a consistent service prefix.
// Unknown levels fall back to info.
func New(w io.Writer, service, level string) *Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          service,
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

// OpenFile creates the log directory and returns a logger appending to path
// together with the file, which the caller closes.
func OpenFile(path, service, level string) (*Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, service, level), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return log.New(io.Discard)
}
