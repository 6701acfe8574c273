package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	corelogger "github.com/ElectricVehicleChargingCoverage/EV-Routing-Algorithm/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// Config controls every logger created with New.
type Config struct {
	// Level is the minimum level, e.g. "debug" or "warn".
	Level string `json:"level"`
	// Format is "json" (default) or "console".
	Format string `json:"format"`
	// File additionally writes JSON logs to a rotated file.
	File      string `json:"file"`
	MaxSizeMB int    `json:"max_size_mb"`
}

var (
	mu     sync.RWMutex
	output io.Writer = os.Stdout
)

// Configure applies cfg globally. Zero fields keep the current setting.
func Configure(cfg Config) error {
	if cfg.Level != "" {
		if err := SetLevel(cfg.Level); err != nil {
			return err
		}
	}
	var out io.Writer = os.Stdout
	switch strings.ToLower(cfg.Format) {
	case "", "json":
	case "console":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	default:
		return fmt.Errorf("log format %q", cfg.Format)
	}
	if cfg.File != "" {
		size := cfg.MaxSizeMB
		if size <= 0 {
			size = 50
		}
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{Filename: cfg.File, MaxSize: size, MaxBackups: 3})
	}
	mu.Lock()
	output = out
	mu.Unlock()
	return nil
}

// New returns a Logger for the given component. APP_ENV=dev forces console
// output.
func New(component string) Logger {
	return NewZerologLogger(component)
}
