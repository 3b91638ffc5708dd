package badgerstore

import (
	"fmt"
	"log/slog"
	"strings"
)

// badgerSlogLogger forwards badger's printf-style logging to slog. Info
// output is demoted to debug; badger is chatty on open and compaction.
type badgerSlogLogger struct {
	logger *slog.Logger
}

func newBadgerSlogLogger(logger *slog.Logger) *badgerSlogLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &badgerSlogLogger{logger: logger.With("component", "badger")}
}

func (l *badgerSlogLogger) Errorf(format string, args ...any) {
	l.logger.Error(message(format, args))
}

func (l *badgerSlogLogger) Warningf(format string, args ...any) {
	l.logger.Warn(message(format, args))
}

func (l *badgerSlogLogger) Infof(format string, args ...any) {
	l.logger.Debug(message(format, args))
}

func (l *badgerSlogLogger) Debugf(format string, args ...any) {
	l.logger.Debug(message(format, args))
}

func message(format string, args []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
