package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = zerolog.Nop()
)

// SetupLogger routes log output to w based on verbosity:
// 0 warn, 1 info, 2 debug, 3+ trace. A nil w means stderr.
//
// Until SetupLogger is called, every logger handed out by GetLogger is
// disabled, so importing the library never writes anything.
func SetupLogger(verbosity int, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}).Level(LevelFor(verbosity)).With().Timestamp().Logger()

	if verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}

	mu.Lock()
	base = logger
	mu.Unlock()

	logger.Debug().Int("verbosity", verbosity).Msg("Logger initialized")
}

// SetLogger replaces the base logger directly, e.g. with a JSON logger.
func SetLogger(logger zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = logger
}

// Disable turns logging back off.
func Disable() {
	SetLogger(zerolog.Nop())
}

// LevelFor maps a -v count onto a zerolog level.
func LevelFor(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Enabled reports whether loggers from GetLogger write events at level.
func Enabled(level zerolog.Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level >= base.GetLevel() && level >= zerolog.GlobalLevel()
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", name).Logger()
}
