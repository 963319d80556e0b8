package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Debug mode switches to a
// human-readable console writer and lowers the level; otherwise structured
// JSON goes to stdout for the log collector.
func Init(serviceName string, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	var out = os.Stdout
	logger := zerolog.New(out)
	if debug {
		level = zerolog.DebugLevel
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	log.Logger = logger.
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	log.Info().Bool("debug", debug).Msg("logger initialized")
}

func Debug() *zerolog.Event { return log.Debug() }

func Info() *zerolog.Event { return log.Info() }

func Warn() *zerolog.Event { return log.Warn() }

func Error() *zerolog.Event { return log.Error() }

func Fatal() *zerolog.Event { return log.Fatal() }
