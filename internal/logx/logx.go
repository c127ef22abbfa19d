package logx

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a zerolog logger configured for console output.
func New() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Logger()
}
