package scheduler

import "github.com/jhoicas/erp-automation/pkg/logger"

// cronLogger adapta cron.Logger a zerolog. Los mensajes informativos de cron son ruidosos: van a debug.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
