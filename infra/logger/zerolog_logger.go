package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger using rs/zerolog. Every entry carries the
// component it was created for.
type ZerologLogger struct {
	log zerolog.Logger
}

// SetLevel sets the global minimum level.
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func NewZerologLogger(component string) Logger {
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		return NewWithWriter(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}, component)
	}
	mu.RLock()
	out := output
	mu.RUnlock()
	return NewWithWriter(out, component)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, component string) Logger {
	return &ZerologLogger{log: zerolog.New(w).With().Timestamp().Str("component", component).Logger()}
}

func (l *ZerologLogger) Debugf(format string, args ...any) { l.log.Debug().Msgf(format, args...) }
func (l *ZerologLogger) Infof(format string, args ...any)  { l.log.Info().Msgf(format, args...) }
func (l *ZerologLogger) Warnf(format string, args ...any)  { l.log.Warn().Msgf(format, args...) }
func (l *ZerologLogger) Errorf(format string, args ...any) { l.log.Error().Msgf(format, args...) }

// Debugw writes fields in key order.
func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	if !ev.Enabled() {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev = ev.Interface(k, fields[k])
	}
	ev.Msg(msg)
}
