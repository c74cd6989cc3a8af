package config

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	logMu  sync.RWMutex
	logger = zerolog.Nop()
)

// InitLogger installs a console logger writing to stderr at level. An
// unparseable level falls back to info.
func InitLogger(level string) zerolog.Logger {
	return InitLoggerTo(os.Stderr, level)
}

// InitLoggerTo is InitLogger with an explicit destination.
func InitLoggerTo(out io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}

	l := zerolog.New(consoleWriter).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	logMu.Lock()
	logger = l
	logMu.Unlock()

	return l
}

// Logger returns the logger installed by InitLogger, or a no-op logger.
func Logger() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}
