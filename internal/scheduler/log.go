package scheduler

import (
	"github.com/rs/zerolog"
)

// cronLogger routes engine messages into zerolog. The engine's info
// messages (wake, run, schedule) are per-tick noise, so they go to debug.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
