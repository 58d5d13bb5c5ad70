package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup returns the process logger: JSON at info level, or a console writer at debug level in dev mode.
func Setup(dev bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).With().Caller().Logger()
	}

	return logger
}
