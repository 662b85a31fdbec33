package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger zerolog.Logger

// Config represents logger configuration
type Config struct {
	// Level is a zerolog level name; anything unparseable means info.
	Level string
	// Format "json" writes one JSON object per line, anything else the console format.
	Format string
	// Output defaults to os.Stderr, stdout may carry the generated script.
	Output io.Writer
}

// Configure configures the package logger and zerolog's global logger.
func Configure(config Config) {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(config.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writer io.Writer = config.Output
	if !strings.EqualFold(config.Format, "json") {
		writer = zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: time.Kitchen,
		}
	}

	defaultLogger = zerolog.New(writer).With().Timestamp().Str("app", "seedgen").Logger()
	log.Logger = defaultLogger
}

// Get returns the configured logger for injection into components.
func Get() zerolog.Logger {
	return defaultLogger
}

func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

func Info() *zerolog.Event {
	return defaultLogger.Info()
}

func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

func init() {
	Configure(Config{Level: "info"})
}
